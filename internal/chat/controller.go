package chat

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/gemchat/gemchat/internal/store"
	"github.com/gemchat/gemchat/pkg/models"
)

// ErrSessionNotFound is returned when an operation names a session id that is
// not in the index.
var ErrSessionNotFound = errors.New("session not found")

const (
	defaultTitle   = "New chat"
	titlePrefixLen = 15
)

// Controller orchestrates create/select/delete of sessions and keeps the
// durable store consistent with the registry. The store is injected, never a
// process-wide singleton.
type Controller struct {
	store    store.Store
	registry *Registry
	log      zerolog.Logger

	// overridable for tests
	now func() time.Time

	// mu serializes every read-modify-write cycle over the persisted session
	// index. Controller methods run on separate command goroutines, and an
	// unserialized retitle racing a create would drop the new session from
	// the persisted index.
	mu     sync.Mutex
	lastID int64
}

// NewController creates a controller over the given store and registry.
func NewController(s store.Store, registry *Registry, log zerolog.Logger) *Controller {
	return &Controller{
		store:    s,
		registry: registry,
		log:      log,
		now:      time.Now,
	}
}

// Refresh reloads the persisted session index into the registry.
func (c *Controller) Refresh(ctx context.Context) error {
	sessions, err := loadIndex(ctx, c.store)
	if err != nil {
		return err
	}
	c.registry.SetSessions(sessions)
	return nil
}

// Bootstrap loads the persisted session index and selects the most recently
// created session, creating a fresh one when the index is empty.
func (c *Controller) Bootstrap(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}

	sessions := c.registry.Sessions()
	if len(sessions) == 0 {
		_, err := c.CreateSession(ctx)
		return err
	}
	return c.SelectSession(ctx, sessions[len(sessions)-1].ID)
}

// CreateSession appends a fresh session to the index, persists the index and
// makes the new session the active view with an empty transcript. The
// transcript itself is not persisted until the first message.
func (c *Controller) CreateSession(ctx context.Context) (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.createSession(ctx)
}

func (c *Controller) createSession(ctx context.Context) (models.Session, error) {
	sessions := c.registry.Sessions()

	id := c.nextID(sessions)

	session := models.Session{ID: id, Title: defaultTitle}
	updated := append(sessions, session)
	if err := saveIndex(ctx, c.store, updated); err != nil {
		return models.Session{}, err
	}

	c.registry.SetSessions(updated)
	c.registry.SetActive(id, nil)
	c.log.Info().Int64("session_id", id).Msg("created session")
	return session, nil
}

// SelectSession loads the persisted transcript for id and points the view at
// it. The processing set is untouched: a session may be reselected while it
// is still generating.
func (c *Controller) SelectSession(ctx context.Context, id int64) error {
	if !c.exists(id) {
		return ErrSessionNotFound
	}

	messages, err := loadMessages(ctx, c.store, id)
	if err != nil {
		return err
	}
	c.registry.SetActive(id, messages)
	return nil
}

// DeleteSession removes a session from the index, deletes its persisted
// transcript and discards its draft. Deleting the active session reselects
// the first remaining session, or creates a new one when none remain. An
// in-flight dispatch for the session is not cancelled; it will complete
// against the orphaned message key.
func (c *Controller) DeleteSession(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.exists(id) {
		return ErrSessionNotFound
	}

	sessions := c.registry.Sessions()
	remaining := make([]models.Session, 0, len(sessions)-1)
	for _, s := range sessions {
		if s.ID != id {
			remaining = append(remaining, s)
		}
	}

	if err := saveIndex(ctx, c.store, remaining); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, MessageKey(id)); err != nil {
		return err
	}

	c.registry.SetSessions(remaining)
	c.registry.DeleteDraft(id)
	c.log.Info().Int64("session_id", id).Msg("deleted session")

	if c.registry.ActiveSessionID() != id {
		return nil
	}
	if len(remaining) > 0 {
		return c.SelectSession(ctx, remaining[0].ID)
	}
	_, err := c.createSession(ctx)
	return err
}

// Retitle derives a session title from its first message and persists the
// updated index. Called once per session; later messages never alter the
// title.
func (c *Controller) Retitle(ctx context.Context, id int64, firstText string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	title := deriveTitle(firstText)

	sessions := c.registry.Sessions()
	for i := range sessions {
		if sessions[i].ID == id {
			sessions[i].Title = title
		}
	}
	if err := saveIndex(ctx, c.store, sessions); err != nil {
		return err
	}

	c.registry.UpdateTitle(id, title)
	return nil
}

// nextID issues a creation-timestamp id, bumped past any id already in the
// index and past anything issued earlier this process. Same-millisecond
// creations and a delete-then-recreate therefore never reuse an id.
// Caller holds c.mu.
func (c *Controller) nextID(sessions []models.Session) int64 {
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	for _, s := range sessions {
		if s.ID >= id {
			id = s.ID + 1
		}
	}
	c.lastID = id
	return id
}

func (c *Controller) exists(id int64) bool {
	for _, s := range c.registry.Sessions() {
		if s.ID == id {
			return true
		}
	}
	return false
}

// deriveTitle truncates the first message to a fixed rune prefix and marks
// the cut with an ellipsis.
func deriveTitle(text string) string {
	if utf8.RuneCountInString(text) <= titlePrefixLen {
		return text + "..."
	}
	runes := []rune(text)
	return string(runes[:titlePrefixLen]) + "..."
}
