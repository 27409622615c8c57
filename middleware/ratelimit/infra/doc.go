// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryStore: janela fixa por chave em memória, com janitor opcional
//   - RedisStore: janela fixa compartilhada via WATCH/MULTI no Redis
//   - MemoryStatsStore / RedisStatsStore: contadores por Outcome
//   - ChanPool: semáforo simples para limite de concorrência
package infra
