package provider

import (
	"context"

	"github.com/pkg/errors"
	go_openai "github.com/sashabaranov/go-openai"
)

// Remote is a Provider backed by an OpenAI-compatible chat completion
// endpoint. Gemini, OpenAI and most hosted backends expose this surface.
type Remote struct {
	client *go_openai.Client
	model  string
}

// NewRemote creates a remote provider for the given model.
func NewRemote(client *go_openai.Client, model string) *Remote {
	return &Remote{client: client, model: model}
}

// NewRemoteClient builds the shared API client. baseURL may be empty for the
// upstream OpenAI endpoint.
func NewRemoteClient(apiKey, baseURL string) *go_openai.Client {
	config := go_openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return go_openai.NewClientWithConfig(config)
}

// Identify implements Provider.
func (r *Remote) Identify() string {
	return r.model
}

// Generate implements Provider.
func (r *Remote) Generate(ctx context.Context, history []Turn, newText string) (string, error) {
	msgs := make([]go_openai.ChatCompletionMessage, 0, len(history)+1)
	for _, turn := range history {
		role := go_openai.ChatMessageRoleAssistant
		if turn.Role == RoleUser {
			role = go_openai.ChatMessageRoleUser
		}
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Text,
		})
	}
	msgs = append(msgs, go_openai.ChatCompletionMessage{
		Role:    go_openai.ChatMessageRoleUser,
		Content: newText,
	})

	resp, err := r.client.CreateChatCompletion(ctx, go_openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: msgs,
	})
	if err != nil {
		return "", errors.Wrapf(err, "chat completion against %s failed", r.model)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Errorf("model %s returned no choices", r.model)
	}

	return resp.Choices[0].Message.Content, nil
}
