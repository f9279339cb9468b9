package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizbot/internal/config"
	"github.com/abhisek/quizbot/internal/gate"
	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/logger"
	"github.com/abhisek/quizbot/internal/quizgen"
	"github.com/abhisek/quizbot/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "quizbot",
	Short:        "Generate quizzes from documents with LLMs",
	Long:         "quizbot turns study material into poll, open-answer and True/False/Not Given quizzes using Gemini, with DeepSeek, Groq and Claude as fallbacks.",
	SilenceUsage: true,
}

// ExecuteContext runs the command tree with ctx, which is cancelled on
// interrupt by main.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite usage ledger (overrides QUIZBOT_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./quizbot.yaml or $XDG_CONFIG_HOME/quizbot/quizbot.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then QUIZBOT_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// appEnv is what a generating command needs: a logger, a generator and
// the ledger that records its usage.
type appEnv struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	gen   *quizgen.Generator
}

func newAppEnv(ctx context.Context, cmd *cobra.Command) (*appEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	providers, err := llm.NewProviders(ctx, cfg.LLM, log)
	if err != nil {
		return nil, err
	}

	rt := &appEnv{cfg: cfg, log: log}
	opts := []quizgen.Option{
		quizgen.WithLogger(log.Named("quizgen")),
		quizgen.WithGate(gate.New(cfg.Generator.MaxConcurrency)),
	}

	// The ledger is best effort: generation works without it.
	if dbPath, err := resolveDBPath(cmd, cfg); err != nil {
		log.Warn("usage ledger disabled", zap.Error(err))
	} else if st, err := store.Open(dbPath); err != nil {
		log.Warn("usage ledger disabled", zap.String("path", dbPath), zap.Error(err))
	} else {
		rt.store = st
		opts = append(opts, quizgen.WithSink(st.UsageRepo()))
	}

	rt.gen, err = quizgen.New(providers, cfg.Generator, opts...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (r *appEnv) Close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.Warn("closing usage ledger", zap.Error(err))
		}
	}
	_ = r.log.Sync()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
