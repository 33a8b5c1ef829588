package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig describes an OpenAI-compatible chat-completions endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Proxy overrides HTTP_PROXY/HTTPS_PROXY when set.
	Proxy string
	// Timeout bounds one HTTP request; zero means no limit.
	Timeout time.Duration
}

// OpenAIClient is a Client for OpenAI-compatible servers.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client for cfg.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = makeHTTPClient(cfg.Proxy, cfg.Timeout)
	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
	}
}

// Complete sends prompt as the only user message and returns the content
// of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	msg := resp.Choices[0].Message
	if msg.Role != openai.ChatMessageRoleAssistant {
		return "", fmt.Errorf("%w: unexpected role %q", ErrMalformedResponse, msg.Role)
	}
	if msg.Content == "" {
		return "", fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}
	return msg.Content, nil
}
