// Package domain define os tipos do gateway de chat: partes multimodais,
// mensagens, requisição, envelopes de resposta/erro e o contrato do provedor.
//
// Content e Part são uniões discriminadas: o JSON só é aceito se casar com uma
// variante conhecida (string ou lista de partes; kind "text" ou "image").
package domain
