package application

import "strings"

const DefaultMaxLength = 2000

// Sanitizer normaliza campos de texto.
type Sanitizer struct {
	// MaxLength em caracteres (code points). <= 0 usa DefaultMaxLength.
	MaxLength int
}

// Sanitize corta em MaxLength caracteres e só depois remove espaços das pontas.
// Nessa ordem, o resultado nunca passa de MaxLength e aplicar de novo não muda nada.
func (s Sanitizer) Sanitize(text string) string {
	max := s.MaxLength
	if max <= 0 {
		max = DefaultMaxLength
	}
	return strings.TrimSpace(truncate(text, max))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
