package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_UnmarshalString(t *testing.T) {
	var c Content
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &c))
	assert.False(t, c.IsParts())
	assert.Equal(t, "hello", c.Text())
}

func TestContent_UnmarshalParts(t *testing.T) {
	var c Content
	raw := `[{"kind":"text","text":"look"},{"kind":"image","mediaType":"image/png","data":"aGk="}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	require.True(t, c.IsParts())
	assert.Equal(t, []Part{TextPart("look"), ImagePart(MediaPNG, "aGk=")}, c.Parts())
}

func TestContent_RejectsOtherShapes(t *testing.T) {
	for _, raw := range []string{`42`, `{"text":"x"}`, `true`} {
		var c Content
		assert.Error(t, json.Unmarshal([]byte(raw), &c), raw)
	}
}

func TestPart_RejectsUnknownOrIncompleteVariants(t *testing.T) {
	cases := map[string]string{
		"missing kind":        `{"text":"x"}`,
		"unknown kind":        `{"kind":"audio","data":"x"}`,
		"text without text":   `{"kind":"text"}`,
		"text not a string":   `{"kind":"text","text":3}`,
		"image no data":       `{"kind":"image","mediaType":"image/png"}`,
		"image empty data":    `{"kind":"image","mediaType":"image/png","data":""}`,
		"image bad mediatype": `{"kind":"image","mediaType":"image/bmp","data":"aGk="}`,
		"image no mediatype":  `{"kind":"image","data":"aGk="}`,
		"upper-cased kind":    `{"KIND":"text","text":"x"}`,
		"text key cased":      `{"kind":"text","Text":"x"}`,
		"mediaType key cased": `{"kind":"image","MediaType":"image/png","data":"aGk="}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var p Part
			assert.Error(t, json.Unmarshal([]byte(raw), &p))
		})
	}
}

func TestContent_MarshalKeepsVariant(t *testing.T) {
	b, err := json.Marshal(Message{Role: RoleUser, Content: TextContent("hi")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(b))

	b, err = json.Marshal(Message{Role: RoleUser, Content: PartsContent(TextPart("hi"), ImagePart(MediaGIF, "R0lG"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":[{"kind":"text","text":"hi"},{"kind":"image","mediaType":"image/gif","data":"R0lG"}]}`, string(b))

	b, err = json.Marshal(PartsContent())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestRoleAndMediaTypeSets(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("moderator").Valid())
	assert.False(t, Role("system").Valid())

	for _, m := range SupportedMediaTypes {
		assert.True(t, m.Supported())
	}
	assert.False(t, MediaType("image/svg+xml").Supported())
}
