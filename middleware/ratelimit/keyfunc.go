package ratelimit

import (
	"net/http"
	"strings"

	"chat-gateway/middleware/ratelimit/domain"
)

const DefaultKeyHeader = "X-Forwarded-For"

type KeyFunc func(r *http.Request) domain.Key

// ForwardedKeyFunc lê a identidade do cliente do header de endereço encaminhado.
//
// Com vários proxies o header vira uma lista "cliente, proxy1, proxy2"; usamos
// o primeiro item. Sem header (ou vazio) todos caem na mesma chave "unknown".
// A chave não é autenticada: serve só para o rate limit.
func ForwardedKeyFunc(header string) KeyFunc {
	if header == "" {
		header = DefaultKeyHeader
	}
	return func(r *http.Request) domain.Key {
		v := r.Header.Get(header)
		if v == "" {
			return domain.UnknownKey
		}
		first, _, _ := strings.Cut(v, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return domain.Key(ip)
		}
		return domain.UnknownKey
	}
}
