// Command legend serves and plays the NBA player guessing game.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/legend/internal/config"
	"github.com/okian/legend/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "legend",
	Short:         "legend guesses the NBA player you are thinking of",
	Long:          `legend asks adaptive yes/no questions about a player roster until one player remains.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("roster", "", "Roster file or URL (overrides LEGEND_ROSTER_SOURCE)")
}

// setup loads configuration and initializes logging for a command.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	if roster, _ := cmd.Flags().GetString("roster"); roster != "" {
		cfg.RosterSource = roster
	}
	if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
