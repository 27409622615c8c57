package infra

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"chat-gateway/chat/domain"
)

// Throttled limita a vazão de chamadas ao provedor com um token bucket
// compartilhado por todo o processo. A espera respeita o contexto da requisição.
type Throttled struct {
	next    domain.Provider
	limiter *rate.Limiter
}

func NewThrottled(next domain.Provider, rps float64, burst int) *Throttled {
	if burst <= 0 {
		burst = 1
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *Throttled) Generate(ctx context.Context, messages []domain.Message) (domain.Reply, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return domain.Reply{}, fmt.Errorf("provider throttle: %w", err)
	}
	return t.next.Generate(ctx, messages)
}
