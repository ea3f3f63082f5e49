// Package tally aggregates finished games into summary statistics and a
// ranking of the most frequently guessed players.
package tally

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/legend/internal/domain/model"
	"github.com/okian/legend/internal/domain/types"
)

// ErrInvalidLimit is returned for a non-positive ranking size.
var ErrInvalidLimit = errors.New("invalid ranking limit")

// Tally is safe for concurrent use.
type Tally struct {
	mu           sync.RWMutex
	games        int
	guessed      int
	questions    int
	byConference map[model.Conference]int
	guesses      map[string]int
}

// New returns an empty tally.
func New() *Tally {
	return &Tally{
		byConference: make(map[model.Conference]int),
		guesses:      make(map[string]int),
	}
}

// Record adds a finished game.
func (t *Tally) Record(_ context.Context, o model.Outcome) error {
	if o.Matched && o.Guess == "" {
		return fmt.Errorf("tally: matched outcome %s without a guess", o.SessionID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.games++
	t.questions += o.QuestionsAsked
	t.byConference[o.Conference]++
	if o.Matched {
		t.guessed++
		t.guesses[o.Guess]++
	}
	return nil
}

// Summary returns the aggregate statistics.
func (t *Tally) Summary() types.Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := types.Summary{
		Games:        t.games,
		Guessed:      t.guessed,
		NoMatch:      t.games - t.guessed,
		ByConference: make(map[string]int, len(t.byConference)),
	}
	if t.games > 0 {
		s.AverageQuestions = float64(t.questions) / float64(t.games)
	}
	for c, n := range t.byConference {
		s.ByConference[string(c)] = n
	}
	return s
}

// TopN returns the n most guessed players, ties broken by name.
func (t *Tally) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	t.mu.RLock()
	entries := make([]types.Entry, 0, len(t.guesses))
	for name, count := range t.guesses {
		entries = append(entries, types.Entry{Player: name, Guesses: count})
	}
	t.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Guesses != entries[j].Guesses {
			return entries[i].Guesses > entries[j].Guesses
		}
		return entries[i].Player < entries[j].Player
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
