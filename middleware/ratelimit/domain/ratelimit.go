package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

// UnknownKey é a chave compartilhada por clientes sem endereço encaminhado.
const UnknownKey Key = "unknown"

// Entry é o contador de janela fixa de uma chave.
//
// Count nunca passa do limite configurado: ao atingir o limite a requisição é
// rejeitada sem incrementar.
type Entry struct {
	Count     int
	ResetTime time.Time
}

// Expired informa se a janela já terminou em `now`.
// Igualdade não conta: só reseta quando now > ResetTime.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ResetTime)
}

// Mutator calcula a próxima entry a partir da atual.
// found=false quando a chave ainda não tem entry.
// save=false mantém a entry armazenada como está.
//
// Pode ser chamado mais de uma vez por Update (ex: retry de transação otimista),
// então não deve ter efeitos colaterais além de variáveis locais do chamador.
type Mutator func(cur Entry, found bool) (next Entry, save bool)

// EntryStore guarda uma Entry por chave com leitura-modificação-escrita atômica.
//
// Chamadas de Update para a mesma chave são serializadas entre si; chaves
// diferentes são independentes. A implementação pode ser um map em memória
// (uma instância) ou um store externo como Redis (várias instâncias).
type EntryStore interface {
	Update(ctx context.Context, key Key, fn Mutator) (Entry, error)
}

type Decision struct {
	Allowed bool

	Limit     int
	Remaining int
	ResetAt   time.Time

	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
