// Package chat expõe o gateway de conversa via HTTP.
//
// GET /chat responde o status do serviço; POST /chat passa pelo pipeline de
// application.Service e devolve um envelope de resposta ou de erro com o
// status HTTP correspondente (200, 400, 429 ou 500).
package chat
