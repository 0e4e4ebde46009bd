package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gemchat/gemchat/internal/chat"
	"github.com/gemchat/gemchat/internal/config"
	"github.com/gemchat/gemchat/internal/store"
	"github.com/gemchat/gemchat/pkg/models"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [session-id]",
		Short: "Show sessions or a transcript without the TUI",
		Long: `Show sessions or a transcript in a non-interactive format.
Without arguments: lists all sessions
With a session id: prints that session's transcript`,
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	st, registry, controller, err := openForInspection()
	if err != nil {
		return err
	}
	defer st.Close()

	switch len(args) {
	case 0:
		return showSessions(registry)
	case 1:
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}
		return showTranscript(controller, registry, id)
	default:
		return fmt.Errorf("too many arguments. Usage: gemchat show [session-id]")
	}
}

func showSessions(registry *chat.Registry) error {
	sessions := registry.Sessions()
	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	fmt.Println("Sessions:")
	fmt.Println("=========")
	for i, session := range sessions {
		created := time.UnixMilli(session.ID)
		fmt.Printf("%d. %s\n", i+1, session.Title)
		fmt.Printf("   Id: %d\n", session.ID)
		fmt.Printf("   Created: %s\n", created.Format("2006-01-02 15:04"))
		fmt.Println()
	}
	return nil
}

func showTranscript(controller *chat.Controller, registry *chat.Registry, id int64) error {
	if err := controller.SelectSession(context.Background(), id); err != nil {
		return fmt.Errorf("failed to load session %d: %w", id, err)
	}

	messages := registry.Messages()
	if len(messages) == 0 {
		fmt.Println("No messages in this session")
		return nil
	}

	for _, msg := range messages {
		fmt.Println(speaker(msg) + ":")
		fmt.Println(msg.Text)
		fmt.Println()
	}
	return nil
}

func speaker(msg models.Message) string {
	if msg.IsUser {
		return "you"
	}
	return "model"
}

// openForInspection wires just enough of the core to read persisted state.
func openForInspection() (store.Store, *chat.Registry, *chat.Controller, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log, _, err := newLogger(cfg, false)
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	registry := chat.NewRegistry()
	controller := chat.NewController(st, registry, log)

	if err := controller.Refresh(context.Background()); err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	return st, registry, controller, nil
}
