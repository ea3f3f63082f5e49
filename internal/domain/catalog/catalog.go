// Package catalog declares the fixed set of attributes the engine may ask
// about, how to read each one from a player and how to phrase it.
//
// Every function here is pure. Unknown attribute identifiers are programmer
// errors and panic.
package catalog

import (
	"cmp"
	"fmt"
	"math"
	"strings"

	"github.com/okian/legend/internal/domain/model"
)

// AttributeID names a queryable attribute.
type AttributeID string

// Categorical attributes.
const (
	Team      AttributeID = "team"
	Position  AttributeID = "position"
	HasAwards AttributeID = "has_awards"
)

// Numeric attributes.
const (
	Age      AttributeID = "age"
	Height   AttributeID = "height"
	Weight   AttributeID = "weight"
	Points   AttributeID = "points"
	Assists  AttributeID = "assists"
	Rebounds AttributeID = "rebounds"
	Steals   AttributeID = "steals"
	Blocks   AttributeID = "blocks"
)

const cmPerInch = 2.54

type numeric struct {
	id      AttributeID
	extract func(model.Player) float64
	phrase  func(threshold float64) string
}

// Catalog binds every attribute to its extraction and phrasing functions.
type Catalog struct {
	numeric []numeric
	byID    map[AttributeID]numeric
}

// New builds the catalog. The numeric order is the enumeration order used
// by question selection: age, height, weight, then the five statistics.
func New() *Catalog {
	c := &Catalog{
		numeric: []numeric{
			{id: Age, extract: func(p model.Player) float64 { return float64(p.Age) }, phrase: ageQuestion},
			{id: Height, extract: func(p model.Player) float64 { return p.HeightCm }, phrase: heightQuestion},
			{id: Weight, extract: func(p model.Player) float64 { return p.WeightLbs }, phrase: weightQuestion},
			statAttribute(Points, model.StatPoints),
			statAttribute(Assists, model.StatAssists),
			statAttribute(Rebounds, model.StatRebounds),
			statAttribute(Steals, model.StatSteals),
			statAttribute(Blocks, model.StatBlocks),
		},
	}
	c.byID = make(map[AttributeID]numeric, len(c.numeric))
	for _, n := range c.numeric {
		c.byID[n.id] = n
	}
	return c
}

func statAttribute(id AttributeID, stat model.StatName) numeric {
	return numeric{
		id:      id,
		extract: func(p model.Player) float64 { return p.Stat(stat) },
		phrase: func(threshold float64) string {
			return fmt.Sprintf("Does your player average more than %.1f %s?", threshold, stat)
		},
	}
}

// Numeric returns the numeric attributes in enumeration order.
func (c *Catalog) Numeric() []AttributeID {
	ids := make([]AttributeID, len(c.numeric))
	for i, n := range c.numeric {
		ids[i] = n.id
	}
	return ids
}

// IsNumeric reports whether id is a numeric attribute.
func (c *Catalog) IsNumeric(id AttributeID) bool {
	_, ok := c.byID[id]
	return ok
}

// Value extracts numeric attribute id from p.
func (c *Catalog) Value(id AttributeID, p model.Player) float64 {
	return c.lookup(id).extract(p)
}

// Compare orders two players by numeric attribute id.
func (c *Catalog) Compare(id AttributeID, a, b model.Player) int {
	n := c.lookup(id)
	return cmp.Compare(n.extract(a), n.extract(b))
}

// ThresholdQuestion phrases "value > threshold" for numeric attribute id.
func (c *Catalog) ThresholdQuestion(id AttributeID, threshold float64) string {
	return c.lookup(id).phrase(threshold)
}

func (c *Catalog) lookup(id AttributeID) numeric {
	n, ok := c.byID[id]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown numeric attribute %q", id))
	}
	return n
}

// TeamOf extracts the team.
func TeamOf(p model.Player) string { return p.Team }

// PositionOf extracts the position tag.
func PositionOf(p model.Player) model.Position { return p.Position }

// AwardsOf extracts the awards flag.
func AwardsOf(p model.Player) bool { return p.HasAwards }

// TeamQuestion phrases membership of team.
func TeamQuestion(team string) string {
	return fmt.Sprintf("Is your player on the %s?", team)
}

// PositionQuestion phrases an exact position match, distinguishing pure
// positions from hybrids.
func PositionQuestion(pos model.Position) string {
	switch pos {
	case model.PositionGuard:
		return "Is your player strictly a Guard (G), not a Guard-Forward hybrid?"
	case model.PositionForward:
		return "Is your player strictly a Forward (F), not a hybrid position?"
	case model.PositionCenter:
		return "Is your player strictly a Center (C), not a Forward-Center hybrid?"
	case model.PositionGuardForward:
		return "Is your player a Guard-Forward (G-F) hybrid?"
	case model.PositionForwardCenter:
		return "Is your player a Forward-Center (F-C) hybrid?"
	default:
		panic(fmt.Sprintf("catalog: unknown position %q", pos))
	}
}

// AwardsQuestion phrases the awards flag.
func AwardsQuestion() string {
	return "Has your player received any awards?"
}

// ListQuestion phrases membership of an explicit list of names.
func ListQuestion(names []string) string {
	return fmt.Sprintf("Is your player one of these: %s?", strings.Join(names, ", "))
}

func ageQuestion(threshold float64) string {
	return fmt.Sprintf("Is your player older than %d years?", int(math.Floor(threshold)))
}

func weightQuestion(threshold float64) string {
	return fmt.Sprintf("Is your player heavier than %d lbs?", int(math.Floor(threshold)))
}

func heightQuestion(threshold float64) string {
	return fmt.Sprintf("Is your player taller than %s?", FormatHeight(threshold))
}

// FormatHeight renders centimetres as feet'inches" rounded to the nearest
// inch, e.g. 201.5 -> 6'7".
func FormatHeight(cm float64) string {
	inches := cm / cmPerInch
	feet := int(math.Floor(inches / 12))
	rest := int(math.Round(math.Mod(inches, 12)))
	if rest == 12 {
		feet++
		rest = 0
	}
	return fmt.Sprintf("%d'%d\"", feet, rest)
}
