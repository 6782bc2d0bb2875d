package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/counterteams-service/pkg/config"
	"github.com/user/counterteams-service/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "counterteams",
	Short:         "counterteams scrapes Team GO Rocket counter guides and serves them over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		logLevel := logger.ParseLevel(cfg.LogLevel)
		if cfg.LogFormat == "text" {
			logger.InitText(os.Stderr, logLevel)
		} else {
			logger.Init(os.Stderr, logLevel)
		}
		slog.Debug("Logger initialized", "level", logLevel.String())
		return nil
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
