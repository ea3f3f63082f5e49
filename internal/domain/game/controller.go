package game

import (
	"fmt"
	"time"

	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/model"
)

// Controller drives sessions through their states using an engine.
type Controller struct {
	engine *engine.Engine
	now    func() time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController creates a controller bound to e.
func NewController(e *engine.Engine, opts ...ControllerOption) *Controller {
	c := &Controller{engine: e, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the engine the controller asks questions with.
func (c *Controller) Engine() *engine.Engine { return c.engine }

// Start moves s from intro to playing with the members of conference taken
// from population, and asks the first question.
func (c *Controller) Start(s *Session, conference model.Conference, population []model.Player) error {
	if s.State != StateIntro {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, s.State)
	}
	if !conference.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidConference, conference)
	}

	now := c.now()
	s.State = StatePlaying
	s.Conference = conference
	s.Candidates = model.FilterConference(population, conference)
	s.QuestionsAsked = 0
	s.Log = nil
	s.logf(now, "Think of an active NBA player from the %s Conference...", conference.Title())
	return c.advance(s, now)
}

// Answer applies a yes/no answer to the active question.
func (c *Controller) Answer(s *Session, answer bool) error {
	if s.State != StatePlaying {
		return fmt.Errorf("%w: answer in %s", ErrInvalidTransition, s.State)
	}
	if s.AwaitingChoice {
		return ErrAwaitingChoice
	}

	next, err := c.engine.ApplyAnswer(s.Candidates, s.Active, answer)
	if err != nil {
		return err
	}

	now := c.now()
	q := *s.Active
	s.QuestionsAsked++
	s.logf(now, "Q%d: %s %s", s.QuestionsAsked, q.Text, yesNo(answer))

	if answer && len(next) > 1 && q.Covers(s.Candidates) {
		s.Candidates = next
		s.AwaitingChoice = true
		s.UpdatedAt = now
		return nil
	}
	s.Candidates = next
	return c.advance(s, now)
}

// Choose resolves a session awaiting a choice to the named candidate.
func (c *Controller) Choose(s *Session, name string) error {
	if s.State != StatePlaying || !s.AwaitingChoice {
		return ErrNotAwaitingChoice
	}
	for _, p := range s.Candidates {
		if p.Name == name {
			now := c.now()
			s.AwaitingChoice = false
			s.Candidates = []model.Player{p}
			s.logf(now, "Your player is %s.", name)
			return c.advance(s, now)
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCandidate, name)
}

// Reset returns a finished session to the intro state.
func (c *Controller) Reset(s *Session) error {
	if s.State != StateResult {
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, s.State)
	}
	now := c.now()
	*s = Session{ID: s.ID, State: StateIntro, CreatedAt: s.CreatedAt, UpdatedAt: now}
	return nil
}

// advance either finishes the game or selects the next question.
func (c *Controller) advance(s *Session, now time.Time) error {
	s.UpdatedAt = now
	switch len(s.Candidates) {
	case 0:
		s.finish(OutcomeNoMatch, "")
		s.logf(now, "No players match these criteria.")
		return nil
	case 1:
		name := s.Candidates[0].Name
		s.finish(OutcomeGuessed, name)
		s.logf(now, "My guess is... %s!", name)
		return nil
	}

	q, err := c.engine.SelectQuestion(s.Candidates)
	if err != nil {
		return err
	}
	s.Active = &q
	return nil
}

func (s *Session) finish(outcome Outcome, guess string) {
	s.State = StateResult
	s.Outcome = outcome
	s.Guess = guess
	s.Active = nil
	s.AwaitingChoice = false
}

func yesNo(answer bool) string {
	if answer {
		return "Yes"
	}
	return "No"
}
