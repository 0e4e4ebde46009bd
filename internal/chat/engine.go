package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gemchat/gemchat/internal/provider"
	"github.com/gemchat/gemchat/internal/store"
	"github.com/gemchat/gemchat/pkg/models"
)

// Engine runs the send-message protocol for one session at a time per
// session: accept the draft, persist the user turn, walk the provider chain,
// persist the outcome and reconcile with whatever session the user is viewing
// by then. Multiple sessions may have dispatches in flight concurrently; the
// processing set serializes dispatches within a session.
type Engine struct {
	store      store.Store
	registry   *Registry
	controller *Controller
	chain      *provider.Chain
	log        zerolog.Logger
}

// NewEngine creates a dispatch engine.
func NewEngine(s store.Store, registry *Registry, controller *Controller, chain *provider.Chain, log zerolog.Logger) *Engine {
	return &Engine{
		store:      s,
		registry:   registry,
		controller: controller,
		chain:      chain,
		log:        log,
	}
}

// Submit sends the session's current draft. It silently declines when the
// trimmed draft is empty or the session already has a request in flight, and
// blocks until the dispatch completes otherwise. Once accepted a dispatch
// always runs to completion: deleting or deselecting the session mid-flight
// does not cancel it.
func (e *Engine) Submit(ctx context.Context, sessionID int64) bool {
	userText, ok := e.registry.BeginDispatch(sessionID)
	if !ok {
		return false
	}
	// The one guaranteed cleanup step: the session leaves the processing set
	// on every path below.
	defer e.registry.EndDispatch(sessionID)

	log := e.log.With().
		Str("request_id", uuid.New().String()).
		Int64("session_id", sessionID).
		Logger()
	log.Debug().Msg("dispatch accepted")

	// Durable record of the user's turn, regardless of UI state.
	history, err := loadMessages(ctx, e.store, sessionID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load history, abandoning dispatch")
		return true
	}
	withUser := append(history, models.Message{Text: userText, IsUser: true})
	if err := saveMessages(ctx, e.store, sessionID, withUser); err != nil {
		log.Error().Err(err).Msg("failed to persist user turn, abandoning dispatch")
		return true
	}

	if len(history) == 0 {
		if err := e.controller.Retitle(ctx, sessionID, userText); err != nil {
			log.Error().Err(err).Msg("failed to persist derived title")
		}
	}

	outcome := e.chain.Generate(ctx, toTurns(history), userText)

	var reply models.Message
	if outcome.OK {
		reply = models.Message{Text: fmt.Sprintf("%s\n\nRunning on: %s", outcome.Text, outcome.ProviderID)}
		log.Info().Str("provider", outcome.ProviderID).Msg("dispatch succeeded")
	} else {
		reply = models.Message{Text: fmt.Sprintf("⚠️ Generation failed.\n\nCause: %s", outcome.LastCause)}
		log.Error().Err(outcome.LastCause).Msg("all providers exhausted")
	}

	// Re-read rather than reuse the earlier snapshot, so a concurrent writer
	// on this key is not clobbered.
	latest, err := loadMessages(ctx, e.store, sessionID)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload history, abandoning dispatch")
		return true
	}
	final := append(latest, reply)
	if err := saveMessages(ctx, e.store, sessionID, final); err != nil {
		log.Error().Err(err).Msg("failed to persist reply")
		return true
	}

	e.registry.ReconcileMessages(sessionID, final)
	return true
}

// toTurns converts a persisted transcript into the role-tagged context
// providers expect. The new user turn is excluded; it travels separately.
func toTurns(messages []models.Message) []provider.Turn {
	turns := make([]provider.Turn, 0, len(messages))
	for _, msg := range messages {
		role := provider.RoleModel
		if msg.IsUser {
			role = provider.RoleUser
		}
		turns = append(turns, provider.Turn{Role: role, Text: msg.Text})
	}
	return turns
}
