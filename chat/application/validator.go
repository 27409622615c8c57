package application

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chat-gateway/chat/domain"
)

const (
	DefaultMaxHistory    = 100
	DefaultMaxImageBytes = 5 * 1024 * 1024
)

// Validator decodifica o corpo bruto num domain.Request.
//
// JSON sintaticamente quebrado vira domain.ErrMalformed; qualquer outra falha
// vira domain.ErrInvalid com o motivo no texto do erro (para log, nunca para o
// cliente). Nunca devolve request parcial.
type Validator struct {
	MaxHistory    int
	MaxImageBytes int
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalid, fmt.Sprintf(format, args...))
}

func (v Validator) Validate(raw []byte) (domain.Request, error) {
	if !json.Valid(raw) {
		return domain.Request{}, domain.ErrMalformed
	}

	body, err := domain.DecodeFields(raw)
	if err != nil {
		return domain.Request{}, invalid("body: %v", err)
	}

	message, err := body.String("message")
	if err != nil {
		return domain.Request{}, invalid("%v", err)
	}
	if message == nil {
		return domain.Request{}, invalid("message is required")
	}
	if strings.TrimSpace(*message) == "" {
		return domain.Request{}, invalid("message is blank")
	}

	var entries []json.RawMessage
	found, err := body.Decode("conversationHistory", &entries)
	if err != nil {
		return domain.Request{}, invalid("%v", err)
	}
	if !found {
		return domain.Request{}, invalid("conversationHistory is required")
	}
	maxHistory := v.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if n := len(entries); n > maxHistory {
		return domain.Request{}, invalid("conversationHistory has %d entries, max %d", n, maxHistory)
	}

	history := make([]domain.Message, 0, len(entries))
	for i, entry := range entries {
		msg, err := v.message(entry)
		if err != nil {
			return domain.Request{}, invalid("conversationHistory[%d]: %v", i, err)
		}
		history = append(history, msg)
	}

	req := domain.Request{Message: *message, History: history}

	var img domain.Part
	found, err = body.Decode("image", &img)
	if err != nil {
		return domain.Request{}, invalid("%v", err)
	}
	if found {
		if img.Kind != domain.KindImage {
			return domain.Request{}, invalid("image: kind must be %q", domain.KindImage)
		}
		if err := v.image(img); err != nil {
			return domain.Request{}, invalid("image: %v", err)
		}
		req.Image = &img
	}
	return req, nil
}

func (v Validator) message(raw json.RawMessage) (domain.Message, error) {
	f, err := domain.DecodeFields(raw)
	if err != nil {
		return domain.Message{}, err
	}
	role, err := f.String("role")
	if err != nil {
		return domain.Message{}, err
	}
	if role == nil || !domain.Role(*role).Valid() {
		return domain.Message{}, errors.New("role must be user or assistant")
	}

	var content domain.Content
	found, err := f.Decode("content", &content)
	if err != nil {
		return domain.Message{}, err
	}
	if !found {
		return domain.Message{}, errors.New("content is required")
	}
	for j, p := range content.Parts() {
		if p.Kind != domain.KindImage {
			continue
		}
		if err := v.image(p); err != nil {
			return domain.Message{}, fmt.Errorf("content[%d]: %w", j, err)
		}
	}
	return domain.Message{Role: domain.Role(*role), Content: content}, nil
}

// image checa o que o decoder de Part não sabe: base64 válido e tamanho.
func (v Validator) image(p domain.Part) error {
	max := v.MaxImageBytes
	if max <= 0 {
		max = DefaultMaxImageBytes
	}
	if base64.StdEncoding.DecodedLen(len(p.Data)) > max+2 {
		return fmt.Errorf("image larger than %d bytes", max)
	}
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return fmt.Errorf("data is not base64: %w", err)
	}
	if len(data) > max {
		return fmt.Errorf("image larger than %d bytes", max)
	}
	return nil
}
