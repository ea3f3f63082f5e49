package service_test

import (
	"context"
	"fmt"
	"time"

	service "github.com/okian/legend/internal/app"
	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/game"
	"github.com/okian/legend/internal/domain/model"
	"github.com/okian/legend/internal/domain/types"
)

func player(name, team string, conf model.Conference, pos model.Position, age int, height, points float64, awards int) model.Player {
	return model.Player{
		Name:       name,
		Conference: conf,
		Team:       team,
		Position:   pos,
		Age:        age,
		HeightCm:   height,
		WeightLbs:  200 + height/10,
		Stats: model.Stats{
			model.StatPoints:   points,
			model.StatAssists:  points / 4,
			model.StatRebounds: height / 30,
			model.StatSteals:   1,
			model.StatBlocks:   0.5,
		},
		AwardsCount: awards,
		HasAwards:   awards > 0,
	}
}

func testPopulation() []model.Player {
	return []model.Player{
		player("LeBron James", "Lakers", model.West, model.PositionForward, 39, 206, 25.7, 40),
		player("Anthony Davis", "Lakers", model.West, model.PositionForwardCenter, 31, 208, 24.7, 10),
		player("Stephen Curry", "Warriors", model.West, model.PositionGuard, 36, 188, 26.4, 20),
		player("Draymond Green", "Warriors", model.West, model.PositionForward, 34, 198, 8.6, 4),
		player("Nikola Jokic", "Nuggets", model.West, model.PositionCenter, 29, 211, 26.4, 12),
		player("Jamal Murray", "Nuggets", model.West, model.PositionGuard, 27, 193, 21.2, 0),
		player("Luka Doncic", "Mavericks", model.West, model.PositionGuardForward, 25, 201, 33.9, 8),
		player("Kyrie Irving", "Mavericks", model.West, model.PositionGuard, 32, 188, 25.6, 9),
		player("Jayson Tatum", "Celtics", model.East, model.PositionForward, 26, 203, 26.9, 6),
	}
}

// playToEnd answers truthfully for secret until the session finishes.
func playToEnd(ctx context.Context, svc *service.Service, oracle *engine.Engine, sess *game.Session, secret model.Player) (*game.Session, error) {
	var err error
	for i := 0; i < 64 && !sess.Finished(); i++ {
		if sess.AwaitingChoice {
			sess, err = svc.Choose(ctx, sess.ID, secret.Name)
		} else {
			round := sess.QuestionsAsked
			sess, _, err = svc.Answer(ctx, sess.ID, types.AnswerInput{
				Answer: oracle.Matches(*sess.Active, secret),
				Round:  &round,
			})
		}
		if err != nil {
			return nil, err
		}
	}
	if !sess.Finished() {
		return nil, fmt.Errorf("session %s did not finish", sess.ID)
	}
	return sess, nil
}

// eventually polls cond until it holds or a second passes.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
