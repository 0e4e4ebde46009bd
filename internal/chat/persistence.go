package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gemchat/gemchat/internal/store"
	"github.com/gemchat/gemchat/pkg/models"
)

// Key scheme: one index key for the session list, one key per session for its
// transcript. Values are JSON; an absent key reads as the empty default.
const SessionIndexKey = "chat_sessions"

// MessageKey returns the store key holding a session's transcript.
func MessageKey(id int64) string {
	return fmt.Sprintf("session_%d", id)
}

func loadIndex(ctx context.Context, s store.Store) ([]models.Session, error) {
	raw, err := s.Get(ctx, SessionIndexKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session index")
	}

	var sessions []models.Session
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, errors.Wrap(err, "corrupt session index")
	}
	return sessions, nil
}

func saveIndex(ctx context.Context, s store.Store, sessions []models.Session) error {
	raw, err := json.Marshal(sessions)
	if err != nil {
		return errors.Wrap(err, "failed to encode session index")
	}
	return errors.Wrap(s.Set(ctx, SessionIndexKey, raw), "failed to persist session index")
}

func loadMessages(ctx context.Context, s store.Store, id int64) ([]models.Message, error) {
	raw, err := s.Get(ctx, MessageKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load messages for session %d", id)
	}

	var messages []models.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, errors.Wrapf(err, "corrupt transcript for session %d", id)
	}
	return messages, nil
}

func saveMessages(ctx context.Context, s store.Store, id int64, messages []models.Message) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return errors.Wrapf(err, "failed to encode messages for session %d", id)
	}
	return errors.Wrapf(s.Set(ctx, MessageKey(id), raw), "failed to persist messages for session %d", id)
}
