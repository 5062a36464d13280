package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ChatCompletionCreator is the minimal slice of the OpenAI client the
// provider needs, kept as an interface so tests can substitute a mock.
type ChatCompletionCreator interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider implements TextGenerator using an OpenAI-compatible chat
// completion API.
type OpenAIProvider struct {
	client ChatCompletionCreator
	model  string
}

func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not provided")
	}
	return &OpenAIProvider{client: openai.NewClient(apiKey), model: model}, nil
}

// NewOpenAIProviderWithClient wires an existing client, used by tests.
func NewOpenAIProviderWithClient(client ChatCompletionCreator, model string) *OpenAIProvider {
	return &OpenAIProvider{client: client, model: model}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ TextGenerator = (*OpenAIProvider)(nil)
