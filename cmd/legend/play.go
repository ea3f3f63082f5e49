package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/legend/internal/adapters/roster"
	"github.com/okian/legend/internal/cli"
	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/pkg/logger"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the guessing game in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		players, err := roster.New(cfg.RosterSource,
			roster.WithLogger(logger.Named("roster")),
			roster.WithCacheTTL(cfg.RosterCacheTTL()),
		).Load(cmd.Context())
		if err != nil {
			return err
		}

		p := cli.New(players,
			cli.WithInput(cmd.InOrStdin()),
			cli.WithOutput(cmd.OutOrStdout()),
			cli.WithEngine(engine.New(engine.WithExplicitListThreshold(cfg.ExplicitListThreshold))),
		)
		_, err = p.Run(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}
