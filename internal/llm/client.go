// Package llm wraps the chat completion API used for user-facing replies.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Message is one prompt message.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// System, User and Assistant build prompt messages.
func System(content string) Message    { return Message{Role: "system", Content: content} }
func User(content string) Message      { return Message{Role: "user", Content: content} }
func Assistant(content string) Message { return Message{Role: "assistant", Content: content} }

// Completer produces a completion for a prompt. The dialogue manager depends
// on this interface so tests can script replies.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Client is the openai-go backed Completer.
type Client struct {
	client      openai.Client
	model       string
	timeout     time.Duration
	temperature float64
	maxTokens   int64
}

// NewClient creates a completion client with a bounded per-call timeout.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		timeout:     timeout,
		temperature: 0.7,
		maxTokens:   2000,
	}
}

// Complete runs a chat completion and returns the assistant text.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Completer = (*Client)(nil)
