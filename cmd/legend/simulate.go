package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/legend/internal/adapters/roster"
	"github.com/okian/legend/internal/simulate"
	"github.com/okian/legend/pkg/logger"
)

// Default simulation constants.
const (
	defaultGames       = 200
	defaultTopN        = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunDeadline = 10 * time.Minute
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play automated games against a running server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		url, _ := flags.GetString("url")
		games, _ := flags.GetInt("games")
		workers, _ := flags.GetInt("workers")
		timeout, _ := flags.GetDuration("timeout")
		top, _ := flags.GetInt("top")
		replay, _ := flags.GetInt("replay-every")

		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunDeadline)
		defer cancel()

		players, err := roster.New(cfg.RosterSource, roster.WithLogger(logger.Named("roster"))).Load(ctx)
		if err != nil {
			return err
		}

		report, err := simulate.Run(ctx, simulate.Config{
			BaseURL:     url,
			Games:       games,
			Workers:     workers,
			Timeout:     timeout,
			TopN:        top,
			ReplayEvery: replay,
			Population:  players,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "played %d, correct %d, wrong %d, avg questions %.2f, max %d, in %s\n",
			report.Played, report.Correct, report.Wrong, report.AverageQuestions(), report.MaxQuestions, report.Duration)
		for _, e := range report.Top {
			fmt.Fprintf(out, "%3d. %s (%d)\n", e.Rank, e.Player, e.Guesses)
		}
		if report.Wrong > 0 {
			return fmt.Errorf("%d of %d games named the wrong player", report.Wrong, report.Played)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	f := simulateCmd.Flags()
	f.String("url", "http://localhost:9080", "Base URL of the service")
	f.Int("games", defaultGames, "Number of games to play")
	f.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent players")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.Int("top", defaultTopN, "Number of most-guessed players to print")
	f.Int("replay-every", 3, "Resend every Nth answer with the same idempotency key (0 disables)")
}
