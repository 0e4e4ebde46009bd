package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gemchat/gemchat/internal/chat"
	"github.com/gemchat/gemchat/internal/store"
)

// NewDebugCommand creates the debug command
func NewDebugCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-session <session-id>",
		Short: "Debug a specific session to see raw persisted data",
		Args:  cobra.ExactArgs(1),
		RunE:  runDebugSession,
	}
}

func runDebugSession(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", args[0])
	}

	st, _, _, err := openForInspection()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Printf("=== Raw data for session %d ===\n\n", id)

	fmt.Printf("index key %q:\n", chat.SessionIndexKey)
	printValue(ctx, st, chat.SessionIndexKey)

	fmt.Printf("\ntranscript key %q:\n", chat.MessageKey(id))
	printValue(ctx, st, chat.MessageKey(id))

	return nil
}

func printValue(ctx context.Context, st store.Store, key string) {
	raw, err := st.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Println("  (absent)")
		return
	}
	if err != nil {
		fmt.Printf("  error: %v\n", err)
		return
	}
	fmt.Printf("  %s\n", raw)
}
