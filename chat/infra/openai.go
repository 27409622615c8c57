package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaiapi "github.com/sashabaranov/go-openai"

	"chat-gateway/chat/domain"
)

const (
	DefaultModel = openaiapi.GPT4oMini

	DefaultSystemPrompt = `You are a casual, friendly AI assistant.
Have a relaxed, free-flowing conversation with the user.
Keep answers short and easy to follow, ask a question back when it helps the
conversation along, and stay honest. Avoid overly technical or stiff language.`
)

var ErrEmptyReply = errors.New("openai returned empty response")

type OpenAIConfig struct {
	APIKey string
	// BaseURL permite apontar para APIs compatíveis. Vazio usa a da OpenAI.
	BaseURL      string
	Model        string
	SystemPrompt string
	MaxTokens    int
}

// OpenAI implementa domain.Provider sobre chat completions.
type OpenAI struct {
	api    *openaiapi.Client
	model  string
	system string
	max    int
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	apiCfg := openaiapi.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAI{
		api:    openaiapi.NewClientWithConfig(apiCfg),
		model:  model,
		system: cfg.SystemPrompt,
		max:    cfg.MaxTokens,
	}
}

func (c *OpenAI) Generate(ctx context.Context, messages []domain.Message) (domain.Reply, error) {
	req := openaiapi.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: c.max,
		Messages:            toAPIMessages(c.system, messages),
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Reply{}, ErrEmptyReply
	}
	return domain.Reply{Text: resp.Choices[0].Message.Content}, nil
}

func toAPIMessages(system string, msgs []domain.Message) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(msgs)+1)
	if strings.TrimSpace(system) != "" {
		res = append(res, openaiapi.ChatCompletionMessage{
			Role:    openaiapi.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range msgs {
		if !m.Content.IsParts() {
			res = append(res, openaiapi.ChatCompletionMessage{
				Role:    string(m.Role),
				Content: m.Content.Text(),
			})
			continue
		}

		parts := make([]openaiapi.ChatMessagePart, 0, len(m.Content.Parts()))
		for _, p := range m.Content.Parts() {
			switch p.Kind {
			case domain.KindText:
				parts = append(parts, openaiapi.ChatMessagePart{
					Type: openaiapi.ChatMessagePartTypeText,
					Text: p.Text,
				})
			case domain.KindImage:
				parts = append(parts, openaiapi.ChatMessagePart{
					Type: openaiapi.ChatMessagePartTypeImageURL,
					ImageURL: &openaiapi.ChatMessageImageURL{
						URL:    dataURL(p),
						Detail: openaiapi.ImageURLDetailAuto,
					},
				})
			}
		}
		res = append(res, openaiapi.ChatCompletionMessage{
			Role:         string(m.Role),
			MultiContent: parts,
		})
	}
	return res
}

func dataURL(p domain.Part) string {
	return "data:" + string(p.MediaType) + ";base64," + p.Data
}
