// Package simulate drives the game API with automated players that answer
// truthfully for a secret player and checks the engine names them.
package simulate

import (
	"time"

	"github.com/okian/legend/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string         // Base URL of the service
	Games       int            // Number of games to play
	Workers     int            // Number of concurrent players
	Timeout     time.Duration  // HTTP request timeout
	TopN        int            // Number of top players to fetch after the run
	ReplayEvery int            // Resend every Nth answer with the same key; 0 disables
	Population  []model.Player // Roster the server was started with
}

// Result describes one simulated game.
type Result struct {
	GameID     string           `json:"game_id"`
	Conference model.Conference `json:"conference"`
	Secret     string           `json:"secret"`
	Guess      string           `json:"guess"`
	Outcome    string           `json:"outcome"`
	Questions  int              `json:"questions"`
	Replays    int              `json:"replays"`
}

// Correct reports whether the engine named the secret player.
func (r Result) Correct() bool {
	return r.Outcome == "guessed" && r.Guess == r.Secret
}

// Report holds run statistics.
type Report struct {
	Played         int
	Correct        int
	Wrong          int
	Failed         int
	Replays        int
	TotalQuestions int
	MaxQuestions   int
	Top            []TopEntry
	StartTime      time.Time
	Duration       time.Duration
	Results        []Result
}

// AverageQuestions returns the mean questions asked per played game.
func (r *Report) AverageQuestions() float64 {
	if r.Played == 0 {
		return 0
	}
	return float64(r.TotalQuestions) / float64(r.Played)
}

// TopEntry is one row of the most-guessed ranking.
type TopEntry struct {
	Rank    int    `json:"rank"`
	Player  string `json:"player"`
	Guesses int    `json:"guesses"`
}
