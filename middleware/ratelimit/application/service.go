package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-gateway/middleware/ratelimit/domain"
)

const (
	DefaultLimit  = 10
	DefaultWindow = 60 * time.Second
)

var ErrNoStore = errors.New("ratelimit: no entry store configured")

// Service concentra a regra de janela fixa do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// O estado fica no Store injetado; o Service em si não guarda nada.
type Service struct {
	Store  domain.EntryStore
	Limit  int
	Window time.Duration

	// Now permite fixar o relógio nos testes. nil usa time.Now.
	Now func() time.Time
}

// Decide aplica a janela fixa para key:
//   - sem entry, ou now > ResetTime: abre nova janela com Count=1 e permite;
//   - Count >= Limit: rejeita sem incrementar;
//   - senão incrementa e permite.
func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{}, ErrNoStore
	}
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	window := s.Window
	if window <= 0 {
		window = DefaultWindow
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var dec domain.Decision
	_, err := s.Store.Update(ctx, key, func(cur domain.Entry, found bool) (domain.Entry, bool) {
		if !found || cur.Expired(now) {
			next := domain.Entry{Count: 1, ResetTime: now.Add(window)}
			dec = allowed(limit, next)
			return next, true
		}
		if cur.Count >= limit {
			dec = domain.Decision{
				Allowed:    false,
				Limit:      limit,
				Remaining:  0,
				ResetAt:    cur.ResetTime,
				RetryAfter: retryAfter(cur.ResetTime, now),
			}
			return cur, false
		}
		cur.Count++
		dec = allowed(limit, cur)
		return cur, true
	})
	if err != nil {
		return domain.Decision{}, fmt.Errorf("ratelimit: update %q: %w", key, err)
	}
	return dec, nil
}

func allowed(limit int, e domain.Entry) domain.Decision {
	return domain.Decision{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - e.Count,
		ResetAt:   e.ResetTime,
	}
}

// retryAfter arredonda para cima em segundos, mínimo 1s.
func retryAfter(reset, now time.Time) time.Duration {
	d := reset.Sub(now)
	if d < time.Second {
		return time.Second
	}
	return (d + time.Second - 1).Truncate(time.Second)
}
