// Package infra contém os provedores de resposta usados pelo gateway de chat:
// o cliente OpenAI-compatível, o provedor eco para desenvolvimento local e um
// wrapper que limita a vazão de saída.
package infra
