package simulate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/model"
	"github.com/okian/legend/pkg/logger"
)

// Run plays cfg.Games games against the service and reports the results.
// A wrong guess is counted, not returned; transport failures abort the run.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if len(cfg.Population) == 0 {
		return nil, ErrNoPopulation
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	log := logger.Get().Named("simulate")
	report := &Report{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)
	oracle := engine.New()

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("games", cfg.Games),
		logger.Int("workers", cfg.Workers),
		logger.Int("population", len(cfg.Population)),
	)

	if err := client.Health(ctx); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Games; i++ {
		secret := cfg.Population[i%len(cfg.Population)]
		g.Go(func() error {
			res, err := play(gctx, client, oracle, secret, cfg.ReplayEvery)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				return err
			}
			report.add(res)
			if !res.Correct() {
				log.Warn(gctx, "wrong guess",
					logger.String("game", res.GameID),
					logger.String("secret", res.Secret),
					logger.String("guess", res.Guess),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("simulation: %w", err)
	}

	if cfg.TopN > 0 {
		top, err := client.Top(ctx, cfg.TopN)
		if err != nil {
			log.Warn(ctx, "fetch top players failed", logger.Error(err))
		}
		report.Top = top
	}

	report.Duration = time.Since(report.StartTime)
	log.Info(ctx, "simulation finished",
		logger.Int("played", report.Played),
		logger.Int("correct", report.Correct),
		logger.Int("wrong", report.Wrong),
		logger.Int("replays", report.Replays),
		logger.Float64("avgQuestions", report.AverageQuestions()),
		logger.Int("maxQuestions", report.MaxQuestions),
		logger.Duration("duration", report.Duration),
	)
	return report, nil
}

func (r *Report) add(res Result) {
	r.Played++
	r.Replays += res.Replays
	r.TotalQuestions += res.Questions
	if res.Questions > r.MaxQuestions {
		r.MaxQuestions = res.Questions
	}
	if res.Correct() {
		r.Correct++
	} else {
		r.Wrong++
	}
	r.Results = append(r.Results, res)
}

// play runs one game answering truthfully for secret.
func play(ctx context.Context, c *Client, oracle *engine.Engine, secret model.Player, replayEvery int) (Result, error) {
	res := Result{Conference: secret.Conference, Secret: secret.Name}
	g, err := c.NewGame(ctx, secret.Conference)
	if err != nil {
		return res, err
	}
	res.GameID = g.ID

	for n := 0; !g.Finished(); n++ {
		if n >= maxQuestions {
			return res, fmt.Errorf("%w: %s", ErrDidNotFinish, g.ID)
		}
		if g.AwaitingChoice {
			if g, err = c.Choose(ctx, g.ID, secret.Name); err != nil {
				return res, err
			}
			continue
		}
		if g.Active == nil {
			return res, fmt.Errorf("%w: %s has no active question", ErrDidNotFinish, g.ID)
		}

		answer := oracle.Matches(*g.Active, secret)
		round := g.QuestionsAsked
		key := uuid.NewString()
		next, err := c.Answer(ctx, g.ID, answer, round, key)
		if err != nil {
			return res, err
		}
		if replayEvery > 0 && (n+1)%replayEvery == 0 {
			again, err := c.Answer(ctx, g.ID, answer, round, key)
			if err != nil {
				return res, err
			}
			if !again.Duplicate || again.QuestionsAsked != next.QuestionsAsked {
				return res, fmt.Errorf("%w: %s round %d", ErrNotReplayed, g.ID, round)
			}
			res.Replays++
		}
		g = next
	}

	res.Guess = g.Guess
	res.Outcome = g.Outcome
	res.Questions = g.QuestionsAsked
	return res, nil
}
