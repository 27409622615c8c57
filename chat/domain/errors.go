package domain

import "errors"

var (
	// ErrRateLimited: a identidade já atingiu o limite da janela atual.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrInvalid: o corpo é JSON mas não passa na validação estrutural.
	ErrInvalid = errors.New("invalid request")
	// ErrMalformed: o corpo nem chega a ser JSON (ou não pôde ser lido).
	ErrMalformed = errors.New("malformed request body")
	// ErrProvider: o provedor falhou ou devolveu algo inutilizável.
	ErrProvider = errors.New("provider failure")
)
