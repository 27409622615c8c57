package domain

import "time"

// TimestampLayout é ISO-8601 em UTC com milissegundos, o mesmo formato de
// Date.prototype.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

type ResponseEnvelope struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

type ErrorEnvelope struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// StatusEnvelope é a resposta do GET de saúde.
type StatusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Mensagens fixas devolvidas ao cliente. O motivo interno só vai para o log.
const (
	MsgRateLimited = "rate limit exceeded, please wait a moment and try again"
	MsgInvalid     = "invalid request: message and conversationHistory must be provided correctly"
	MsgFailed      = "an error occurred while generating the AI response"
	MsgRunning     = "Chat API is running"
)
