// Package game models a single guessing game and the transitions between
// its states.
//
// A Session is plain data owned by exactly one caller at a time; the
// Controller mutates it in place. Callers hosting several sessions must
// serialise access per session.
package game

import (
	"fmt"
	"time"

	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/model"
)

// State is the lifecycle state of a session.
type State string

// Session states.
const (
	StateIntro   State = "intro"
	StatePlaying State = "playing"
	StateResult  State = "result"
)

// Outcome describes how a finished game ended.
type Outcome string

// Outcomes.
const (
	OutcomeNone    Outcome = ""
	OutcomeGuessed Outcome = "guessed"
	OutcomeNoMatch Outcome = "no_match"
)

// LogEntry is one transcript line.
type LogEntry struct {
	Round   int       `json:"round"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Session is the full state of one game.
type Session struct {
	ID             string           `json:"id"`
	State          State            `json:"state"`
	Conference     model.Conference `json:"conference,omitempty"`
	Candidates     []model.Player   `json:"candidates"`
	Active         *engine.Question `json:"active,omitempty"`
	AwaitingChoice bool             `json:"awaiting_choice"`
	QuestionsAsked int              `json:"questions_asked"`
	Log            []LogEntry       `json:"log"`
	Outcome        Outcome          `json:"outcome,omitempty"`
	Guess          string           `json:"guess,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewSession returns a session in the intro state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateIntro,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Remaining returns the number of candidates still consistent with the
// answers.
func (s *Session) Remaining() int { return len(s.Candidates) }

// Finished reports whether the session reached a result.
func (s *Session) Finished() bool { return s.State == StateResult }

// OutcomeRecord summarises a finished session.
func (s *Session) OutcomeRecord() model.Outcome {
	return model.Outcome{
		SessionID:      s.ID,
		Conference:     s.Conference,
		Guess:          s.Guess,
		Matched:        s.Outcome == OutcomeGuessed,
		QuestionsAsked: s.QuestionsAsked,
		FinishedAt:     s.UpdatedAt,
	}
}

func (s *Session) logf(now time.Time, format string, args ...any) {
	s.Log = append(s.Log, LogEntry{
		Round:   s.QuestionsAsked,
		Message: fmt.Sprintf(format, args...),
		At:      now,
	})
}
