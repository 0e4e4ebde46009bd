package provider

import (
	"context"

	"github.com/jmorganca/ollama/api"
	"github.com/pkg/errors"
)

// Local is a Provider backed by an on-device Ollama runtime. It sits last in
// the chain as the fallback when every remote model is out of reach.
type Local struct {
	client *api.Client
	model  string
}

// NewLocal creates a local provider for the given model.
func NewLocal(client *api.Client, model string) *Local {
	return &Local{client: client, model: model}
}

// NewLocalClient builds an Ollama client from OLLAMA_HOST or the default
// local address.
func NewLocalClient() (*api.Client, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ollama client")
	}
	return client, nil
}

// Identify implements Provider.
func (l *Local) Identify() string {
	return l.model + " (on-device)"
}

// Available implements AvailabilityChecker by probing the runtime.
func (l *Local) Available(ctx context.Context) error {
	if l.client == nil {
		return errors.New("no on-device runtime configured")
	}
	if err := l.client.Heartbeat(ctx); err != nil {
		return errors.Wrap(err, "on-device runtime is not responding")
	}
	return nil
}

// Generate implements Provider.
func (l *Local) Generate(ctx context.Context, history []Turn, newText string) (string, error) {
	msgs := make([]api.Message, 0, len(history)+1)
	for _, turn := range history {
		role := "assistant"
		if turn.Role == RoleUser {
			role = "user"
		}
		msgs = append(msgs, api.Message{Role: role, Content: turn.Text})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: newText})

	stream := false
	req := &api.ChatRequest{
		Model:    l.model,
		Messages: msgs,
		Stream:   &stream,
	}

	var reply string
	err := l.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "on-device chat against %s failed", l.model)
	}

	return reply, nil
}
