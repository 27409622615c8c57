// Package application contém o pipeline do gateway de chat:
// rate limit → validação → sanitização → montagem → provedor → Result.
//
// Não conhece net/http; o adapter HTTP fica no pacote chat.
package application
