package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

type MediaType string

const (
	MediaJPEG MediaType = "image/jpeg"
	MediaPNG  MediaType = "image/png"
	MediaGIF  MediaType = "image/gif"
	MediaWebP MediaType = "image/webp"
)

// SupportedMediaTypes lista os formatos de imagem aceitos, na ordem da UI.
var SupportedMediaTypes = []MediaType{MediaJPEG, MediaPNG, MediaGIF, MediaWebP}

func (m MediaType) Supported() bool {
	for _, s := range SupportedMediaTypes {
		if m == s {
			return true
		}
	}
	return false
}

// Part é uma unidade de conteúdo: texto ou imagem em base64.
type Part struct {
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty"`
	Data      string    `json:"data,omitempty"`
}

func TextPart(text string) Part {
	return Part{Kind: KindText, Text: text}
}

func ImagePart(mediaType MediaType, data string) Part {
	return Part{Kind: KindImage, MediaType: mediaType, Data: data}
}

var (
	errUnknownKind  = errors.New("unknown part kind")
	errTextShape    = errors.New("text part requires a string text field")
	errImageShape   = errors.New("image part requires a supported mediaType and non-empty data")
	errContentShape = errors.New("content must be a string or an array of parts")
)

// UnmarshalJSON aceita só as duas variantes conhecidas, com as chaves
// kind, text, mediaType e data escritas exatamente assim.
func (p *Part) UnmarshalJSON(b []byte) error {
	f, err := DecodeFields(b)
	if err != nil {
		return err
	}
	kind, err := f.String("kind")
	if err != nil {
		return err
	}
	if kind == nil {
		return errUnknownKind
	}

	switch Kind(*kind) {
	case KindText:
		text, err := f.String("text")
		if err != nil {
			return err
		}
		if text == nil {
			return errTextShape
		}
		*p = TextPart(*text)
	case KindImage:
		mediaType, err := f.String("mediaType")
		if err != nil {
			return err
		}
		data, err := f.String("data")
		if err != nil {
			return err
		}
		if mediaType == nil || data == nil || *data == "" || !MediaType(*mediaType).Supported() {
			return errImageShape
		}
		*p = ImagePart(MediaType(*mediaType), *data)
	default:
		return fmt.Errorf("%w: %q", errUnknownKind, *kind)
	}
	return nil
}

// Content é texto puro ou uma sequência ordenada de partes.
type Content struct {
	text  string
	parts []Part
	multi bool
}

func TextContent(s string) Content {
	return Content{text: s}
}

func PartsContent(parts ...Part) Content {
	return Content{parts: parts, multi: true}
}

// IsParts informa se o conteúdo é a variante de partes.
func (c Content) IsParts() bool { return c.multi }

// Text retorna o texto da variante string ("" para partes).
func (c Content) Text() string { return c.text }

// Parts retorna as partes da variante multimodal (nil para string).
func (c Content) Parts() []Part { return c.parts }

func (c Content) MarshalJSON() ([]byte, error) {
	if c.multi {
		if c.parts == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.parts)
	}
	return json.Marshal(c.text)
}

func (c *Content) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errContentShape
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = TextContent(s)
	case '[':
		var parts []Part
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		*c = PartsContent(parts...)
	default:
		return errContentShape
	}
	return nil
}

type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}
