// Package ratelimit fornece os adapters HTTP (net/http) do rate limit por janela
// fixa e do limite de concorrência usados pelo gateway de chat.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (janela fixa allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (store em memória, Redis, semáforo, estatísticas)
//   - ratelimit (este pacote): extração de chave, tradução de Decision para
//     headers e middleware de concorrência
//
// Fluxo no gateway:
//
//  1. Extrai a chave do cliente (X-Forwarded-For ou "unknown")
//  2. O handler de chat chama application.Service.Decide com essa chave
//  3. Se bloqueado, responde 429 com Retry-After
//  4. Se permitido, segue para validação, montagem e provedor
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como RATE_LIMIT, RATE_WINDOW, RATE_STORE, CONCURRENCY_MAX e CONCURRENCY_TIMEOUT.
package ratelimit
