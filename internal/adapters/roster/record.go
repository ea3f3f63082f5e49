package roster

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/okian/legend/internal/domain/model"
)

// record is one roster entry as published by the data source.
type record struct {
	FullName        text   `json:"full_name" yaml:"full_name" validate:"required"`
	Team            text   `json:"team" yaml:"team"`
	Position        text   `json:"position" yaml:"position"`
	Height          number `json:"height" yaml:"height"`
	Weight          number `json:"weight" yaml:"weight"`
	Age             number `json:"age" yaml:"age"`
	AveragePoints   number `json:"average_points" yaml:"average_points"`
	AverageAssists  number `json:"average_assists" yaml:"average_assists"`
	AverageRebounds number `json:"average_rebounds" yaml:"average_rebounds"`
	AverageSteals   number `json:"average_steals" yaml:"average_steals"`
	AverageBlocks   number `json:"average_blocks" yaml:"average_blocks"`
	AwardsCount     number `json:"awards_count" yaml:"awards_count"`
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseLeading reads the numeric prefix of s, so "201cm" is 201.
// Anything without one is 0.
func parseLeading(s string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// number accepts JSON/YAML numbers or numeric strings.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil //nolint:nilerr // malformed values read as 0
		}
	} else {
		s = string(b)
	}
	*n = number(parseLeading(s))
	return nil
}

func (n *number) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		*n = 0
		return nil
	}
	*n = number(parseLeading(node.Value))
	return nil
}

func (n number) float() float64 { return float64(n) }

// integer truncates toward zero.
func (n number) integer() int { return int(math.Trunc(float64(n))) }

// text accepts any scalar and keeps its literal form.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	switch {
	case len(b) == 0 || string(b) == "null":
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
	case b[0] == '{' || b[0] == '[':
		*t = ""
	default:
		*t = text(b)
	}
	return nil
}

func (t *text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag != "!!null" {
		*t = text(node.Value)
	} else {
		*t = ""
	}
	return nil
}

func (t text) String() string { return strings.TrimSpace(string(t)) }

var (
	eastTeams = []string{
		"Celtics", "Knicks", "Nets", "76ers", "Raptors", "Bucks", "Bulls", "Cavaliers",
		"Pistons", "Pacers", "Hawks", "Heat", "Hornets", "Magic", "Wizards",
	}
	westTeams = []string{
		"Lakers", "Clippers", "Warriors", "Kings", "Suns", "Mavericks", "Spurs", "Rockets",
		"Grizzlies", "Pelicans", "Thunder", "Trail Blazers", "Timberwolves", "Nuggets", "Jazz",
	}
	conferenceByTeam = func() map[string]model.Conference {
		m := make(map[string]model.Conference, len(eastTeams)+len(westTeams))
		for _, t := range eastTeams {
			m[t] = model.East
		}
		for _, t := range westTeams {
			m[t] = model.West
		}
		return m
	}()
)

// ConferenceOf maps a team nickname to its conference. Free agents and
// unknown teams are placed in the east.
func ConferenceOf(team string) model.Conference {
	if c, ok := conferenceByTeam[team]; ok {
		return c
	}
	return model.East
}

// NormalizePosition maps a source position label to a position tag.
// Unknown labels become a forward.
func NormalizePosition(raw string) model.Position {
	switch raw {
	case "Center-Forward", "Forward-Center":
		return model.PositionForwardCenter
	case "Guard-Forward":
		return model.PositionGuardForward
	case "Forward":
		return model.PositionForward
	case "Guard":
		return model.PositionGuard
	case "Center":
		return model.PositionCenter
	}
	return model.PositionForward
}

func (r record) player() model.Player {
	team := r.Team.String()
	awards := r.AwardsCount.integer()
	return model.Player{
		Name:       r.FullName.String(),
		Conference: ConferenceOf(team),
		Team:       team,
		Position:   NormalizePosition(r.Position.String()),
		Age:        r.Age.integer(),
		HeightCm:   r.Height.float(),
		WeightLbs:  r.Weight.float(),
		Stats: model.Stats{
			model.StatPoints:   r.AveragePoints.float(),
			model.StatAssists:  r.AverageAssists.float(),
			model.StatRebounds: r.AverageRebounds.float(),
			model.StatSteals:   r.AverageSteals.float(),
			model.StatBlocks:   r.AverageBlocks.float(),
		},
		AwardsCount: awards,
		HasAwards:   awards > 0,
	}
}
