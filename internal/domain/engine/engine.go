// Package engine selects the most discriminating yes/no question for a set
// of candidates and narrows the set from the answer.
//
// The engine holds no per-game state. Both operations are pure functions of
// their arguments, so one Engine may serve any number of sessions
// concurrently.
package engine

import (
	"fmt"
	"slices"
	"sort"

	"github.com/okian/legend/internal/domain/catalog"
	"github.com/okian/legend/internal/domain/model"
)

const defaultExplicitListThreshold = 5

// Engine is the question engine.
type Engine struct {
	catalog       *catalog.Catalog
	listThreshold int
}

// New creates an engine with the default catalog.
func New(opts ...Option) *Engine {
	e := &Engine{
		catalog:       catalog.New(),
		listThreshold: defaultExplicitListThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the attribute catalog the engine phrases questions with.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// ExplicitListThreshold returns the size at or below which SelectQuestion
// lists the remaining names.
func (e *Engine) ExplicitListThreshold() int { return e.listThreshold }

// Split is one candidate partition considered by the search.
type Split struct {
	Question Question // question without Text
	Yes      int      // candidates answering yes
	No       int      // candidates answering no
}

// Balance is |Yes - No|; lower is better.
func (s Split) Balance() int {
	if s.Yes > s.No {
		return s.Yes - s.No
	}
	return s.No - s.Yes
}

// Degenerate reports whether one side of the split is empty. Asking such a
// question cannot narrow the candidates.
func (s Split) Degenerate() bool {
	return s.Yes == 0 || s.No == 0
}

// Splits enumerates every candidate split in search order: each distinct
// team in first-seen order, each position tag present in fixed tag order,
// the awards flag, then each numeric attribute in catalog order with
// thresholds ascending.
func (e *Engine) Splits(candidates []model.Player) []Split {
	n := len(candidates)
	var splits []Split

	var teams []string
	teamCount := make(map[string]int)
	for _, p := range candidates {
		t := catalog.TeamOf(p)
		if _, ok := teamCount[t]; !ok {
			teams = append(teams, t)
		}
		teamCount[t]++
	}
	for _, t := range teams {
		splits = append(splits, Split{Question: TeamQuestion(t), Yes: teamCount[t], No: n - teamCount[t]})
	}

	posCount := make(map[model.Position]int)
	for _, p := range candidates {
		posCount[catalog.PositionOf(p)]++
	}
	for _, pos := range model.Positions() {
		c := posCount[pos]
		if c == 0 {
			continue
		}
		splits = append(splits, Split{Question: PositionQuestion(pos), Yes: c, No: n - c})
	}

	awarded := 0
	for _, p := range candidates {
		if catalog.AwardsOf(p) {
			awarded++
		}
	}
	splits = append(splits, Split{Question: AwardsQuestion(), Yes: awarded, No: n - awarded})

	for _, attr := range e.catalog.Numeric() {
		splits = append(splits, e.numericSplits(attr, candidates)...)
	}
	return splits
}

// numericSplits returns one split per midpoint between adjacent distinct
// values of attr.
func (e *Engine) numericSplits(attr catalog.AttributeID, candidates []model.Player) []Split {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b model.Player) int {
		return e.catalog.Compare(attr, a, b)
	})
	values := make([]float64, len(sorted))
	for i, p := range sorted {
		values[i] = e.catalog.Value(attr, p)
	}
	distinct := slices.Compact(slices.Clone(values))
	if len(distinct) < 2 {
		return nil
	}

	n := len(values)
	splits := make([]Split, 0, len(distinct)-1)
	for i := 0; i < len(distinct)-1; i++ {
		threshold := (distinct[i] + distinct[i+1]) / 2
		atOrBelow := sort.Search(n, func(j int) bool { return values[j] > threshold })
		splits = append(splits, Split{
			Question: ThresholdQuestion(attr, threshold),
			Yes:      n - atOrBelow,
			No:       atOrBelow,
		})
	}
	return splits
}

// SelectQuestion returns the next question for candidates, which must hold
// at least two players.
//
// At or below the explicit-list threshold every remaining name is listed.
// Otherwise the first non-degenerate split with the lowest balance wins.
// When no split can narrow the set, the first half of the candidates is
// listed instead.
func (e *Engine) SelectQuestion(candidates []model.Player) (Question, error) {
	if len(candidates) < 2 {
		return Question{}, fmt.Errorf("%w: cannot select a question for %d candidates", ErrInvalidState, len(candidates))
	}

	if len(candidates) <= e.listThreshold {
		return e.Render(ExplicitList(model.Names(candidates))), nil
	}

	var best *Split
	for _, s := range e.Splits(candidates) {
		if s.Degenerate() {
			continue
		}
		if best == nil || s.Balance() < best.Balance() {
			best = &s
		}
	}
	if best == nil {
		half := candidates[:len(candidates)/2]
		return e.Render(ExplicitList(model.Names(half))), nil
	}
	return e.Render(best.Question), nil
}

// Render fills q.Text from its kind and payload.
func (e *Engine) Render(q Question) Question {
	switch q.Kind {
	case KindExplicitList:
		q.Text = catalog.ListQuestion(q.Names)
	case KindTeam:
		q.Text = catalog.TeamQuestion(q.Team)
	case KindPosition:
		q.Text = catalog.PositionQuestion(q.Position)
	case KindHasAwards:
		q.Text = catalog.AwardsQuestion()
	case KindNumericThreshold:
		q.Text = e.catalog.ThresholdQuestion(q.Attribute, q.Threshold)
	default:
		panic(fmt.Sprintf("engine: unknown question kind %q", q.Kind))
	}
	return q
}

// Matches reports whether the truthful answer to q for p is yes.
func (e *Engine) Matches(q Question, p model.Player) bool {
	switch q.Kind {
	case KindExplicitList:
		return slices.Contains(q.Names, p.Name)
	case KindTeam:
		return catalog.TeamOf(p) == q.Team
	case KindPosition:
		return catalog.PositionOf(p) == q.Position
	case KindHasAwards:
		return catalog.AwardsOf(p)
	case KindNumericThreshold:
		return e.catalog.Value(q.Attribute, p) > q.Threshold
	default:
		panic(fmt.Sprintf("engine: unknown question kind %q", q.Kind))
	}
}

// ApplyAnswer keeps the candidates whose truthful answer to q equals
// answer, in input order. An empty result is valid and means no player is
// consistent with the answers given.
func (e *Engine) ApplyAnswer(candidates []model.Player, q *Question, answer bool) ([]model.Player, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: no active question", ErrInvalidState)
	}
	if err := e.validate(*q); err != nil {
		return nil, err
	}

	if q.Kind == KindExplicitList {
		listed := nameSet(q.Names)
		return filter(candidates, func(p model.Player) bool {
			_, ok := listed[p.Name]
			return ok == answer
		}), nil
	}
	return filter(candidates, func(p model.Player) bool {
		return e.Matches(*q, p) == answer
	}), nil
}

// validate rejects questions that did not come from SelectQuestion, such as
// a session restored from a corrupted store.
func (e *Engine) validate(q Question) error {
	switch q.Kind {
	case KindExplicitList, KindTeam, KindHasAwards:
		return nil
	case KindPosition:
		if !q.Position.Valid() {
			return fmt.Errorf("%w: unknown position %q", ErrInvalidState, q.Position)
		}
		return nil
	case KindNumericThreshold:
		if !e.catalog.IsNumeric(q.Attribute) {
			return fmt.Errorf("%w: unknown attribute %q", ErrInvalidState, q.Attribute)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown question kind %q", ErrInvalidState, q.Kind)
	}
}

func filter(players []model.Player, keep func(model.Player) bool) []model.Player {
	out := make([]model.Player, 0, len(players))
	for _, p := range players {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
