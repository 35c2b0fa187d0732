package assistant

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient with the openai-go SDK. Gemini is reached
// through its OpenAI-compatible endpoint by setting BaseURL.
type OpenAILLM struct {
	client openai.Client
	model  string
}

// NewOpenAILLM returns a client, or an error when no API key is configured
func NewOpenAILLM(s Settings) (*OpenAILLM, error) {
	if s.APIKey == "" {
		return nil, errors.New("assistant api key missing")
	}
	if s.Model == "" {
		return nil, errors.New("assistant model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(s.APIKey), option.WithMaxRetries(0)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return &OpenAILLM{client: openai.NewClient(opts...), model: s.Model}, nil
}

// Model is the configured model name
func (o *OpenAILLM) Model() string { return o.model }

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt.Text())},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
