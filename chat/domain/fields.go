package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("expected a JSON object")

// Fields é um objeto JSON com as chaves exatamente como vieram no corpo.
// encoding/json casa nomes de campo sem diferenciar maiúsculas; aqui
// "Message" e "message" são chaves distintas.
type Fields map[string]json.RawMessage

func DecodeFields(b []byte) (Fields, error) {
	var f Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errNotObject
	}
	return f, nil
}

// Decode preenche v com o valor de key. Chave ausente ou null devolve false.
func (f Fields) Decode(key string, v any) (bool, error) {
	raw, ok := f[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%s: %w", key, err)
	}
	return true, nil
}

// String devolve nil quando key está ausente ou é null.
func (f Fields) String(key string) (*string, error) {
	var s string
	found, err := f.Decode(key, &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}
