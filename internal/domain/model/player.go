// Package model contains domain models passed between layers.
package model

// Conference partitions the population before a game starts. It is never
// asked about; it only selects the initial candidate set.
type Conference string

// Known conferences.
const (
	East Conference = "east"
	West Conference = "west"
)

// Valid reports whether c is one of the known conferences.
func (c Conference) Valid() bool {
	return c == East || c == West
}

// Title returns the display name used in game transcripts.
func (c Conference) Title() string {
	switch c {
	case East:
		return "Eastern"
	case West:
		return "Western"
	default:
		return string(c)
	}
}

// Position is one of the five normalized position tags.
type Position string

// Position tags. The loader maps anything unrecognized to PositionForward.
const (
	PositionGuard         Position = "G"
	PositionForward       Position = "F"
	PositionCenter        Position = "C"
	PositionGuardForward  Position = "G-F"
	PositionForwardCenter Position = "F-C"
)

// Positions returns the tags in their fixed enumeration order.
func Positions() []Position {
	return []Position{
		PositionGuard,
		PositionForward,
		PositionCenter,
		PositionGuardForward,
		PositionForwardCenter,
	}
}

// Valid reports whether p is one of the five tags.
func (p Position) Valid() bool {
	switch p {
	case PositionGuard, PositionForward, PositionCenter, PositionGuardForward, PositionForwardCenter:
		return true
	}
	return false
}

// StatName identifies a per-game statistic.
type StatName string

// Per-game statistics.
const (
	StatPoints   StatName = "points"
	StatAssists  StatName = "assists"
	StatRebounds StatName = "rebounds"
	StatSteals   StatName = "steals"
	StatBlocks   StatName = "blocks"
)

// StatNames returns the statistics in their fixed enumeration order.
func StatNames() []StatName {
	return []StatName{StatPoints, StatAssists, StatRebounds, StatSteals, StatBlocks}
}

// Stats maps a statistic to its per-game average.
type Stats map[StatName]float64

// Player is one guessable candidate. All fields are normalized by the
// roster loader before a player reaches the engine.
type Player struct {
	Name        string     `json:"name" yaml:"name"`
	Conference  Conference `json:"conference" yaml:"conference"`
	Team        string     `json:"team" yaml:"team"`
	Position    Position   `json:"position" yaml:"position"`
	Age         int        `json:"age" yaml:"age"`
	HeightCm    float64    `json:"height_cm" yaml:"height_cm"`
	WeightLbs   float64    `json:"weight_lbs" yaml:"weight_lbs"`
	Stats       Stats      `json:"stats" yaml:"stats"`
	AwardsCount int        `json:"awards_count" yaml:"awards_count"`
	HasAwards   bool       `json:"has_awards" yaml:"has_awards"`
}

// Stat returns the per-game average for name, or 0 when absent.
func (p Player) Stat(name StatName) float64 {
	return p.Stats[name]
}

// FilterConference returns the players of conference c in input order.
func FilterConference(players []Player, c Conference) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if p.Conference == c {
			out = append(out, p)
		}
	}
	return out
}

// Names returns the player names in input order.
func Names(players []Player) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return names
}
