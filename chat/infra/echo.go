package infra

import (
	"context"
	"strings"

	"chat-gateway/chat/domain"
)

const echoPrefix = "Mock response to: "

// Echo responde repetindo o último turno do usuário. Não sai da máquina;
// serve para rodar o gateway localmente sem chave de API.
type Echo struct{}

func (Echo) Generate(ctx context.Context, messages []domain.Message) (domain.Reply, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reply{}, err
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return domain.Reply{Text: echoPrefix + userText(messages[i].Content)}, nil
		}
	}
	return domain.Reply{Text: echoPrefix}, nil
}

func userText(c domain.Content) string {
	if !c.IsParts() {
		return c.Text()
	}
	var b strings.Builder
	for _, p := range c.Parts() {
		if p.Kind != domain.KindText {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
