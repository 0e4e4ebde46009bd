package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gemchat/gemchat/internal/chat"
	"github.com/gemchat/gemchat/internal/config"
	"github.com/gemchat/gemchat/internal/provider"
	"github.com/gemchat/gemchat/internal/store"
	"github.com/gemchat/gemchat/internal/tui"
)

var (
	configPath string
	debugMode  bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gemchat",
		Short: "Hold several independent chats against a chain of model backends",
		Long: `gemchat is a TUI chat client that keeps several independent conversation
sessions, persists each one, and falls back across an ordered list of model
backends (remote models first, an on-device model last) when one is down.`,
		RunE: runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.gemchat/config.yaml)")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Run in debug mode (list sessions without TUI)")
	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewDebugCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg, !debugMode)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	chain := buildChain(cfg, log)

	ctx := context.Background()
	registry := chat.NewRegistry()
	controller := chat.NewController(st, registry, log)
	engine := chat.NewEngine(st, registry, controller, chain, log)

	if err := controller.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	if debugMode {
		return runDebugMode(registry)
	}

	return tui.Run(ctx, registry, controller, engine)
}

func runDebugMode(registry *chat.Registry) error {
	fmt.Println("=== Debug Mode: Sessions ===")
	for i, session := range registry.Sessions() {
		marker := " "
		if session.ID == registry.ActiveSessionID() {
			marker = "*"
		}
		fmt.Printf("%s %d. %s (id: %d)\n", marker, i+1, session.Title, session.ID)
	}
	return nil
}

// newLogger writes to the configured log file in TUI mode so the alt screen
// stays clean, and to stderr otherwise.
func newLogger(cfg *config.Config, toFile bool) (zerolog.Logger, func(), error) {
	if !toFile {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		return log, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return zerolog.Nop(), nil, err
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	log := zerolog.New(f).With().Timestamp().Logger()
	return log, func() { _ = f.Close() }, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch store.StoreType(cfg.Store.Driver) {
	case store.StoreTypeMemory:
		return store.NewStore(store.StoreTypeMemory)

	case store.StoreTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		return store.NewStore(store.StoreTypeRedis, store.WithRedisClient(client))

	case store.StoreTypeDuckDB:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.DuckDB.Path), 0o755); err != nil {
			return nil, err
		}
		return store.NewStore(store.StoreTypeDuckDB, store.WithDuckDBPath(cfg.Store.DuckDB.Path))

	default:
		return nil, store.ErrInvalidStoreType
	}
}

// buildChain assembles the ordered provider chain from configuration. The
// local entry is always added; its availability is probed per attempt.
func buildChain(cfg *config.Config, log zerolog.Logger) *provider.Chain {
	remoteClient := provider.NewRemoteClient(cfg.Remote.APIKey, cfg.Remote.BaseURL)

	var providers []provider.Provider
	for _, spec := range cfg.Providers {
		switch spec.Kind {
		case "remote":
			providers = append(providers, provider.NewRemote(remoteClient, spec.Model))
		case "local":
			model := spec.Model
			if model == "" {
				model = cfg.LocalModel
			}
			client, err := provider.NewLocalClient()
			if err != nil {
				log.Warn().Err(err).Msg("skipping on-device provider")
				continue
			}
			providers = append(providers, provider.NewLocal(client, model))
		default:
			log.Warn().Str("kind", spec.Kind).Msg("skipping unknown provider kind")
		}
	}

	return provider.NewChain(log, providers...)
}
