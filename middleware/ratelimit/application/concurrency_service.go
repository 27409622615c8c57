package application

import (
	"context"
	"errors"
	"time"

	"chat-gateway/middleware/ratelimit/domain"
)

var ErrNoSlot = errors.New("concurrency: no slot available")

// ConcurrencyService limita quantas requisições ficam em andamento ao mesmo
// tempo, sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
// - Se `AcquireTimeout <= 0`, espera até ctx cancelar.
// - Se `AcquireTimeout > 0`, espera no máximo o timeout.
// Sem vaga, retorna ErrNoSlot (envolvendo o erro do ctx quando houver).
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(acqCtx)
	if !ok {
		if err := acqCtx.Err(); err != nil {
			return nil, errors.Join(ErrNoSlot, err)
		}
		return nil, ErrNoSlot
	}
	return release, nil
}
