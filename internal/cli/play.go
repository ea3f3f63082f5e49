// Package cli runs the guessing game interactively in a terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/termenv"

	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/game"
	"github.com/okian/legend/internal/domain/model"
)

// ErrQuit is returned when the player leaves the game.
var ErrQuit = errors.New("quit")

// Player runs terminal games against a local roster.
type Player struct {
	population []model.Player
	controller *game.Controller
	in         *bufio.Scanner
	out        *termenv.Output
}

// Option configures a Player.
type Option func(*Player)

// WithInput sets where answers are read from.
func WithInput(r io.Reader) Option {
	return func(p *Player) {
		if r != nil {
			p.in = bufio.NewScanner(r)
		}
	}
}

// WithOutput sets where the game is printed.
func WithOutput(w io.Writer) Option {
	return func(p *Player) {
		if w != nil {
			p.out = termenv.NewOutput(w)
		}
	}
}

// WithEngine sets the engine used to pick questions.
func WithEngine(e *engine.Engine) Option {
	return func(p *Player) {
		if e != nil {
			p.controller = game.NewController(e)
		}
	}
}

// New creates a Player over population.
func New(population []model.Player, opts ...Option) *Player {
	p := &Player{
		population: population,
		controller: game.NewController(engine.New()),
		in:         bufio.NewScanner(os.Stdin),
		out:        termenv.NewOutput(os.Stdout),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run plays games until the player declines another round or input ends.
// It returns the number of finished games.
func (p *Player) Run(ctx context.Context) (int, error) {
	p.banner()
	sess := game.NewSession(uuid.NewString(), time.Now())
	played := 0
	for {
		if err := ctx.Err(); err != nil {
			return played, err
		}
		conf, err := p.askConference()
		if err != nil {
			return played, quitOK(err)
		}
		if err := p.controller.Start(sess, conf, p.population); err != nil {
			return played, err
		}
		p.printLog(sess, 0)

		if err := p.playRound(ctx, sess); err != nil {
			return played, quitOK(err)
		}
		played++

		again, err := p.askYesNo("Play again?")
		if err != nil || !again {
			return played, quitOK(err)
		}
		if err := p.controller.Reset(sess); err != nil {
			return played, err
		}
	}
}

func (p *Player) playRound(ctx context.Context, sess *game.Session) error {
	for !sess.Finished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen := len(sess.Log)
		if sess.AwaitingChoice {
			name, err := p.askChoice(sess.Candidates)
			if err != nil {
				return err
			}
			if err := p.controller.Choose(sess, name); err != nil {
				return err
			}
		} else {
			yes, err := p.askYesNo(p.out.String(sess.Active.Text).Bold().String())
			if err != nil {
				return err
			}
			if err := p.controller.Answer(sess, yes); err != nil {
				return err
			}
			seen++ // the Q&A line echoes what was just typed
		}
		p.printLog(sess, seen)
	}
	p.result(sess)
	return nil
}

func (p *Player) banner() {
	title := p.out.String(" legend ").Bold().Foreground(p.out.Color("#f97316"))
	fmt.Fprintf(p.out, "\n%s Think of an active NBA player and I will guess who it is.\n\n", title)
}

func (p *Player) printLog(sess *game.Session, from int) {
	for _, e := range sess.Log[from:] {
		fmt.Fprintln(p.out, p.out.String(e.Message).Faint())
	}
}

func (p *Player) result(sess *game.Session) {
	switch sess.Outcome {
	case game.OutcomeGuessed:
		name := p.out.String(sess.Guess).Bold().Foreground(p.out.Color("#22c55e"))
		fmt.Fprintf(p.out, "Got it in %d questions: %s\n", sess.QuestionsAsked, name)
	default:
		msg := p.out.String("No players match these answers.").Foreground(p.out.Color("#ef4444"))
		fmt.Fprintln(p.out, msg)
	}
}

func (p *Player) readLine(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s ", prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrQuit
	}
	line := strings.TrimSpace(p.in.Text())
	if strings.EqualFold(line, "q") || strings.EqualFold(line, "quit") {
		return "", ErrQuit
	}
	return line, nil
}

func (p *Player) askConference() (model.Conference, error) {
	for {
		line, err := p.readLine("Conference? [e]ast / [w]est:")
		if err != nil {
			return "", err
		}
		switch strings.ToLower(line) {
		case "e", "east":
			return model.East, nil
		case "w", "west":
			return model.West, nil
		}
		fmt.Fprintln(p.out, "Please type east or west.")
	}
}

func (p *Player) askYesNo(prompt string) (bool, error) {
	for {
		line, err := p.readLine(prompt + " [y/n]")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

func (p *Player) askChoice(candidates []model.Player) (string, error) {
	fmt.Fprintln(p.out, "Which one is it?")
	for i, c := range candidates {
		fmt.Fprintf(p.out, "  %d) %s (%s)\n", i+1, c.Name, c.Team)
	}
	for {
		line, err := p.readLine("Number or name:")
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(candidates) {
			return candidates[n-1].Name, nil
		}
		for _, c := range candidates {
			if strings.EqualFold(c.Name, line) {
				return c.Name, nil
			}
		}
		fmt.Fprintln(p.out, "Pick one of the listed players.")
	}
}

func quitOK(err error) error {
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}
