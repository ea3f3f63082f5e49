package engine

import (
	"github.com/okian/legend/internal/domain/catalog"
	"github.com/okian/legend/internal/domain/model"
)

// Kind identifies how a question partitions the candidates.
type Kind string

// Question kinds.
const (
	KindExplicitList     Kind = "explicit_list"
	KindTeam             Kind = "team"
	KindPosition         Kind = "position"
	KindHasAwards        Kind = "has_awards"
	KindNumericThreshold Kind = "numeric_threshold"
)

// Question is the structured form of a yes/no question. Filtering reads
// only Kind and the payload fields; Text is rendered once at selection time
// and never parsed back.
type Question struct {
	Kind Kind `json:"kind"`

	// Names is the payload of KindExplicitList, in candidate order.
	Names []string `json:"names,omitempty"`
	// Team is the payload of KindTeam.
	Team string `json:"team,omitempty"`
	// Position is the payload of KindPosition.
	Position model.Position `json:"position,omitempty"`
	// Attribute and Threshold are the payload of KindNumericThreshold.
	Attribute catalog.AttributeID `json:"attribute,omitempty"`
	Threshold float64             `json:"threshold"`

	Text string `json:"text"`
}

// ExplicitList builds a list question over names.
func ExplicitList(names []string) Question {
	return Question{Kind: KindExplicitList, Names: append([]string(nil), names...)}
}

// TeamQuestion builds a team membership question.
func TeamQuestion(team string) Question {
	return Question{Kind: KindTeam, Team: team}
}

// PositionQuestion builds an exact position question.
func PositionQuestion(pos model.Position) Question {
	return Question{Kind: KindPosition, Position: pos}
}

// AwardsQuestion builds the awards question.
func AwardsQuestion() Question {
	return Question{Kind: KindHasAwards}
}

// ThresholdQuestion builds a "value > threshold" question.
func ThresholdQuestion(attr catalog.AttributeID, threshold float64) Question {
	return Question{Kind: KindNumericThreshold, Attribute: attr, Threshold: threshold}
}

// Covers reports whether q is an explicit list naming every candidate.
func (q Question) Covers(candidates []model.Player) bool {
	if q.Kind != KindExplicitList || len(q.Names) < len(candidates) {
		return false
	}
	listed := nameSet(q.Names)
	for _, p := range candidates {
		if _, ok := listed[p.Name]; !ok {
			return false
		}
	}
	return true
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
