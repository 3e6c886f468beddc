package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/vavi-recipes/vavi/internal/config"
	"github.com/vavi-recipes/vavi/internal/logging"
	"go.uber.org/zap"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:          "vavi",
	Short:        "Vavi CLI: recipe recommendations from the ingredients you have",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Vavi matches a comma-separated list of ingredients against a built-in
recipe catalog using word embeddings trained on the catalog itself.
Trained artifacts are cached under ~/.vavi/models/.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log_level)")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime loads the effective configuration and builds the logger for a command.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load config: %w\nFix ~/.vavi/vavi.yaml or run 'vavi init'.", err)
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// interruptContext is cancelled on Ctrl-C so long training runs stop cleanly.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
