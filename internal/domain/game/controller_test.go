package game_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/game"
	"github.com/okian/legend/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newController() *game.Controller {
	return game.NewController(engine.New(), game.WithClock(func() time.Time { return fixedNow }))
}

// population returns n eastern players with distinct ages followed by two
// western players.
func population(n int) []model.Player {
	var players []model.Player
	for i := 0; i < n; i++ {
		players = append(players, model.Player{
			Name:       fmt.Sprintf("East %d", i+1),
			Conference: model.East,
			Team:       "Knicks",
			Position:   model.PositionGuard,
			Age:        20 + i,
		})
	}
	players = append(players,
		model.Player{Name: "West 1", Conference: model.West, Team: "Lakers", Position: model.PositionCenter},
		model.Player{Name: "West 2", Conference: model.West, Team: "Suns", Position: model.PositionForward},
	)
	return players
}

func TestController_Start(t *testing.T) {
	Convey("Given a session in the intro state", t, func() {
		c := newController()
		s := game.NewSession("s1", fixedNow)
		So(s.State, ShouldEqual, game.StateIntro)

		Convey("When starting with the eastern conference", func() {
			err := c.Start(s, model.East, population(8))
			So(err, ShouldBeNil)

			Convey("Then only eastern players are candidates", func() {
				So(s.State, ShouldEqual, game.StatePlaying)
				So(s.Remaining(), ShouldEqual, 8)
				So(s.QuestionsAsked, ShouldEqual, 0)
			})

			Convey("And a question is active", func() {
				So(s.Active, ShouldNotBeNil)
				So(s.Active.Text, ShouldNotBeEmpty)
			})

			Convey("And the transcript opens with the intro line", func() {
				So(s.Log, ShouldHaveLength, 1)
				So(s.Log[0].Message, ShouldEqual, "Think of an active NBA player from the Eastern Conference...")
			})

			Convey("And starting again is rejected", func() {
				err := c.Start(s, model.West, population(8))
				So(errors.Is(err, game.ErrInvalidTransition), ShouldBeTrue)
			})
		})

		Convey("When starting with an unknown conference", func() {
			err := c.Start(s, "north", population(8))
			So(errors.Is(err, game.ErrInvalidConference), ShouldBeTrue)
			So(s.State, ShouldEqual, game.StateIntro)
		})

		Convey("When the conference has no players", func() {
			err := c.Start(s, model.East, population(0))
			So(err, ShouldBeNil)
			So(s.State, ShouldEqual, game.StateResult)
			So(s.Outcome, ShouldEqual, game.OutcomeNoMatch)
		})

		Convey("When the conference has a single player", func() {
			err := c.Start(s, model.East, population(1))
			So(err, ShouldBeNil)
			So(s.Outcome, ShouldEqual, game.OutcomeGuessed)
			So(s.Guess, ShouldEqual, "East 1")
		})
	})
}

func TestController_Answer(t *testing.T) {
	Convey("Given a game in progress", t, func() {
		c := newController()
		s := game.NewSession("s1", fixedNow)
		So(c.Start(s, model.East, population(8)), ShouldBeNil)

		Convey("When answering the first question", func() {
			first := *s.Active
			So(first.Kind, ShouldEqual, engine.KindNumericThreshold)
			So(c.Answer(s, true), ShouldBeNil)

			Convey("Then the candidates shrink and the round is logged", func() {
				So(s.Remaining(), ShouldEqual, 4)
				So(s.QuestionsAsked, ShouldEqual, 1)
				So(s.Log[1].Message, ShouldEqual, fmt.Sprintf("Q1: %s Yes", first.Text))
			})

			Convey("And the next question lists the remaining names", func() {
				So(s.Active.Kind, ShouldEqual, engine.KindExplicitList)
				So(s.Active.Names, ShouldResemble, []string{"East 5", "East 6", "East 7", "East 8"})
			})

			Convey("And answering yes to the full list awaits a choice", func() {
				So(c.Answer(s, true), ShouldBeNil)
				So(s.AwaitingChoice, ShouldBeTrue)
				So(s.State, ShouldEqual, game.StatePlaying)
				So(s.Remaining(), ShouldEqual, 4)

				Convey("And further answers are rejected", func() {
					So(errors.Is(c.Answer(s, true), game.ErrAwaitingChoice), ShouldBeTrue)
				})

				Convey("And choosing an unknown name is rejected", func() {
					err := c.Choose(s, "East 1")
					So(errors.Is(err, game.ErrUnknownCandidate), ShouldBeTrue)
				})

				Convey("And choosing a listed name finishes the game", func() {
					So(c.Choose(s, "East 6"), ShouldBeNil)
					So(s.State, ShouldEqual, game.StateResult)
					So(s.Outcome, ShouldEqual, game.OutcomeGuessed)
					So(s.Guess, ShouldEqual, "East 6")
					So(s.Log[len(s.Log)-1].Message, ShouldEqual, "My guess is... East 6!")
				})
			})

			Convey("And answering no to the full list ends with no match", func() {
				So(c.Answer(s, false), ShouldBeNil)
				So(s.State, ShouldEqual, game.StateResult)
				So(s.Outcome, ShouldEqual, game.OutcomeNoMatch)
				So(s.Active, ShouldBeNil)

				record := s.OutcomeRecord()
				So(record.Matched, ShouldBeFalse)
				So(record.QuestionsAsked, ShouldEqual, 2)
				So(record.Conference, ShouldEqual, model.East)
			})
		})

		Convey("When choosing without a pending list", func() {
			So(errors.Is(c.Choose(s, "East 1"), game.ErrNotAwaitingChoice), ShouldBeTrue)
		})

		Convey("When resetting a game in progress", func() {
			So(errors.Is(c.Reset(s), game.ErrInvalidTransition), ShouldBeTrue)
		})

		Convey("When the active question is missing", func() {
			s.Active = nil
			So(errors.Is(c.Answer(s, true), engine.ErrInvalidState), ShouldBeTrue)
		})
	})

	Convey("Given a session that has not started", t, func() {
		c := newController()
		s := game.NewSession("s1", fixedNow)
		So(errors.Is(c.Answer(s, true), game.ErrInvalidTransition), ShouldBeTrue)
	})
}

func TestController_PlayToGuess(t *testing.T) {
	Convey("Given truthful answers about every eastern player", t, func() {
		players := population(40)
		for i := range players {
			players[i].HeightCm = float64(180 + (i*7)%31)
			players[i].Stats = model.Stats{model.StatPoints: float64((i * 13) % 29)}
		}

		for _, secret := range model.FilterConference(players, model.East) {
			c := newController()
			s := game.NewSession("s-"+secret.Name, fixedNow)
			So(c.Start(s, model.East, players), ShouldBeNil)

			for !s.Finished() {
				if s.AwaitingChoice {
					So(c.Choose(s, secret.Name), ShouldBeNil)
					continue
				}
				So(c.Answer(s, c.Engine().Matches(*s.Active, secret)), ShouldBeNil)
				So(s.QuestionsAsked, ShouldBeLessThanOrEqualTo, 40)
			}

			So(s.Outcome, ShouldEqual, game.OutcomeGuessed)
			So(s.Guess, ShouldEqual, secret.Name)
		}
	})
}

func TestController_Reset(t *testing.T) {
	Convey("Given a finished game", t, func() {
		c := newController()
		s := game.NewSession("s1", fixedNow)
		So(c.Start(s, model.East, population(1)), ShouldBeNil)
		So(s.Finished(), ShouldBeTrue)

		Convey("When resetting", func() {
			So(c.Reset(s), ShouldBeNil)

			Convey("Then the session is back in the intro state with its id", func() {
				So(s.ID, ShouldEqual, "s1")
				So(s.State, ShouldEqual, game.StateIntro)
				So(s.Candidates, ShouldBeEmpty)
				So(s.Log, ShouldBeEmpty)
				So(s.Outcome, ShouldEqual, game.OutcomeNone)
			})

			Convey("And a new game can start", func() {
				So(c.Start(s, model.West, population(1)), ShouldBeNil)
				So(s.Remaining(), ShouldEqual, 2)
			})
		})
	})
}
