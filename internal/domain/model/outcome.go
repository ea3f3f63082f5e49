package model

import "time"

// Outcome is published when a game reaches a terminal state.
type Outcome struct {
	SessionID      string     // game session identifier
	Conference     Conference // population the game was played on
	Guess          string     // guessed player name, empty when nothing matched
	Matched        bool       // false when the candidate set became empty
	QuestionsAsked int        // questions answered before the result
	FinishedAt     time.Time
}
