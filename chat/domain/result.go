package domain

import (
	rldomain "chat-gateway/middleware/ratelimit/domain"
)

// Outcome é o desfecho de uma requisição pelo pipeline.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRateLimited
	OutcomeInvalid
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "failed"
	}
}

// Result substitui exceções atravessando camadas: exatamente um desfecho por
// requisição. Envelope só é preenchido em OutcomeOK; Err carrega o motivo
// interno (sempre envolvendo um dos sentinelas de errors.go) nos demais.
type Result struct {
	Outcome  Outcome
	Envelope ResponseEnvelope
	Err      error

	Key      rldomain.Key
	Decision rldomain.Decision
}
