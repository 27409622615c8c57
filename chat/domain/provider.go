package domain

import "context"

// Reply é o texto gerado pelo provedor.
type Reply struct {
	Text string
}

// Provider transforma uma sequência ordenada de mensagens em texto.
// Qualquer erro é tratado pelo gateway como ErrProvider.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (Reply, error)
}

// ProviderFunc adapta uma função comum para Provider.
type ProviderFunc func(ctx context.Context, messages []Message) (Reply, error)

func (f ProviderFunc) Generate(ctx context.Context, messages []Message) (Reply, error) {
	return f(ctx, messages)
}
