package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gemchat/gemchat/internal/chat"
)

// Message types for async operations
type (
	// dispatchDoneMsg indicates a send-message dispatch has completed (the
	// reply or error message is already persisted and reconciled).
	dispatchDoneMsg struct {
		SessionID int64
		Accepted  bool
	}

	// sessionChangedMsg indicates a controller operation finished and the
	// registry should be re-read.
	sessionChangedMsg struct {
		Err error
	}

	// tickMsg is sent periodically for spinner animation
	tickMsg time.Time
)

// submitCmd runs the dispatch engine for a session. The engine blocks until
// the failover loop settles, so it runs on the command goroutine.
func submitCmd(ctx context.Context, engine *chat.Engine, sessionID int64) tea.Cmd {
	return func() tea.Msg {
		accepted := engine.Submit(ctx, sessionID)
		return dispatchDoneMsg{SessionID: sessionID, Accepted: accepted}
	}
}

// createSessionCmd creates and selects a fresh session.
func createSessionCmd(ctx context.Context, controller *chat.Controller) tea.Cmd {
	return func() tea.Msg {
		_, err := controller.CreateSession(ctx)
		return sessionChangedMsg{Err: err}
	}
}

// selectSessionCmd loads and selects an existing session.
func selectSessionCmd(ctx context.Context, controller *chat.Controller, id int64) tea.Cmd {
	return func() tea.Msg {
		return sessionChangedMsg{Err: controller.SelectSession(ctx, id)}
	}
}

// deleteSessionCmd deletes a session after the confirm gate.
func deleteSessionCmd(ctx context.Context, controller *chat.Controller, id int64) tea.Cmd {
	return func() tea.Msg {
		return sessionChangedMsg{Err: controller.DeleteSession(ctx, id)}
	}
}

// tickCmd creates a ticker for spinner animation
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
