package application

import (
	"encoding/base64"
	"strings"
	"testing"

	"chat-gateway/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_AcceptsMinimalRequest(t *testing.T) {
	req, err := Validator{}.Validate([]byte(`{"message":"Hello, AI!","conversationHistory":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "Hello, AI!", req.Message)
	assert.Empty(t, req.History)
	assert.Nil(t, req.Image)
}

func TestValidator_AcceptsMixedHistoryAndIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"message": "and now?",
		"conversationHistory": [
			{"id": "1", "role": "user", "content": "hi", "timestamp": "2026-01-01T00:00:00.000Z"},
			{"role": "assistant", "content": "hello"},
			{"role": "user", "content": [{"kind":"text","text":"see"},{"kind":"image","mediaType":"image/jpeg","data":"/9j/"}]}
		],
		"image": null
	}`
	req, err := Validator{}.Validate([]byte(raw))
	require.NoError(t, err)
	require.Len(t, req.History, 3)
	assert.Equal(t, domain.RoleAssistant, req.History[1].Role)
	assert.True(t, req.History[2].Content.IsParts())
	assert.Nil(t, req.Image)
}

func TestValidator_Rejections(t *testing.T) {
	cases := map[string]string{
		"null body":             `null`,
		"array body":            `[]`,
		"string body":           `"hi"`,
		"missing message":       `{"conversationHistory":[]}`,
		"empty message":         `{"message":"","conversationHistory":[]}`,
		"blank message":         `{"message":"   ","conversationHistory":[]}`,
		"message not string":    `{"message":42,"conversationHistory":[]}`,
		"missing history":       `{"message":"hi"}`,
		"null history":          `{"message":"hi","conversationHistory":null}`,
		"history not array":     `{"message":"hi","conversationHistory":"nope"}`,
		"history null entry":    `{"message":"hi","conversationHistory":[null]}`,
		"moderator role":        `{"message":"hi","conversationHistory":[{"role":"moderator","content":"x"}]}`,
		"system role":           `{"message":"hi","conversationHistory":[{"role":"system","content":"x"}]}`,
		"missing role":          `{"message":"hi","conversationHistory":[{"content":"x"}]}`,
		"missing content":       `{"message":"hi","conversationHistory":[{"role":"user"}]}`,
		"numeric content":       `{"message":"hi","conversationHistory":[{"role":"user","content":1}]}`,
		"object content":        `{"message":"hi","conversationHistory":[{"role":"user","content":{"text":"x"}}]}`,
		"unknown part kind":     `{"message":"hi","conversationHistory":[{"role":"user","content":[{"kind":"video","data":"x"}]}]}`,
		"history bad image b64": `{"message":"hi","conversationHistory":[{"role":"user","content":[{"kind":"image","mediaType":"image/png","data":"***"}]}]}`,
		"image missing kind":    `{"message":"hi","conversationHistory":[],"image":{"mediaType":"image/png","data":"aGk="}}`,
		"image missing type":    `{"message":"hi","conversationHistory":[],"image":{"kind":"image","data":"aGk="}}`,
		"image missing data":    `{"message":"hi","conversationHistory":[],"image":{"kind":"image","mediaType":"image/png"}}`,
		"image empty data":      `{"message":"hi","conversationHistory":[],"image":{"kind":"image","mediaType":"image/png","data":""}}`,
		"image wrong kind":      `{"message":"hi","conversationHistory":[],"image":{"kind":"text","text":"x"}}`,
		"image bmp":             `{"message":"hi","conversationHistory":[],"image":{"kind":"image","mediaType":"image/bmp","data":"aGk="}}`,
		"image not base64":      `{"message":"hi","conversationHistory":[],"image":{"kind":"image","mediaType":"image/png","data":"not base64!"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Validator{}.Validate([]byte(raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalid)
			assert.NotErrorIs(t, err, domain.ErrMalformed)
		})
	}
}

func TestValidator_KeysAreCaseSensitive(t *testing.T) {
	cases := map[string]string{
		"upper-cased request keys": `{"MESSAGE":"hi","ConversationHistory":[{"ROLE":"user","Content":"x"}]}`,
		"message key":              `{"Message":"hi","conversationHistory":[]}`,
		"history key":              `{"message":"hi","conversationhistory":[]}`,
		"role key":                 `{"message":"hi","conversationHistory":[{"Role":"user","content":"x"}]}`,
		"content key":              `{"message":"hi","conversationHistory":[{"role":"user","Content":"x"}]}`,
		"part kind key":            `{"message":"hi","conversationHistory":[{"role":"user","content":[{"Kind":"text","text":"x"}]}]}`,
		"part text key":            `{"message":"hi","conversationHistory":[{"role":"user","content":[{"kind":"text","Text":"x"}]}]}`,
		"image mediaType key":      `{"message":"hi","conversationHistory":[],"image":{"kind":"image","mediatype":"image/png","data":"aGk="}}`,
		"image data key":           `{"message":"hi","conversationHistory":[],"image":{"kind":"image","mediaType":"image/png","Data":"aGk="}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Validator{}.Validate([]byte(raw))
			assert.ErrorIs(t, err, domain.ErrInvalid)
		})
	}
}

func TestValidator_WrongCasedImageKeyIsNotAnImage(t *testing.T) {
	req, err := Validator{}.Validate([]byte(`{"message":"hi","conversationHistory":[],"Image":{"kind":"image","mediaType":"image/png","data":"aGk="}}`))
	require.NoError(t, err)
	assert.Nil(t, req.Image, "unknown keys are ignored, including wrong-cased ones")
}

func TestValidator_MalformedJSON(t *testing.T) {
	for _, raw := range []string{``, `{`, `{"message": "hi",}`, `not json`} {
		_, err := Validator{}.Validate([]byte(raw))
		assert.ErrorIs(t, err, domain.ErrMalformed, raw)
	}
}

func TestValidator_AcceptsEachSupportedMediaType(t *testing.T) {
	for _, mt := range domain.SupportedMediaTypes {
		t.Run(string(mt), func(t *testing.T) {
			raw := `{"message":"hi","conversationHistory":[],"image":{"kind":"image","mediaType":"` + string(mt) + `","data":"aGVsbG8="}}`
			req, err := Validator{}.Validate([]byte(raw))
			require.NoError(t, err)
			require.NotNil(t, req.Image)
			assert.Equal(t, mt, req.Image.MediaType)
			assert.Equal(t, "aGVsbG8=", req.Image.Data)
		})
	}
}

func TestValidator_HistoryCap(t *testing.T) {
	entries := make([]string, 4)
	for i := range entries {
		entries[i] = `{"role":"user","content":"x"}`
	}
	raw := `{"message":"hi","conversationHistory":[` + strings.Join(entries, ",") + `]}`

	_, err := Validator{MaxHistory: 4}.Validate([]byte(raw))
	assert.NoError(t, err)

	_, err = Validator{MaxHistory: 3}.Validate([]byte(raw))
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestValidator_ImageSizeCap(t *testing.T) {
	data := base64.StdEncoding.EncodeToString(make([]byte, 100))
	raw := `{"message":"hi","conversationHistory":[],"image":{"kind":"image","mediaType":"image/png","data":"` + data + `"}}`

	_, err := Validator{MaxImageBytes: 100}.Validate([]byte(raw))
	assert.NoError(t, err)

	_, err = Validator{MaxImageBytes: 99}.Validate([]byte(raw))
	assert.ErrorIs(t, err, domain.ErrInvalid)
}
