// Package types contains common types used across the application
package types

// Entry is one row of the most-guessed players ranking.
type Entry struct {
	Rank    int    `json:"rank"`
	Player  string `json:"player"`
	Guesses int    `json:"guesses"`
}

// Summary aggregates finished games.
type Summary struct {
	Games            int            `json:"games"`
	Guessed          int            `json:"guessed"`
	NoMatch          int            `json:"no_match"`
	AverageQuestions float64        `json:"average_questions"`
	ByConference     map[string]int `json:"by_conference"`
}

// Stats is the operational snapshot served by GET /stats.
type Stats struct {
	Started        bool           `json:"started"`
	Summary        Summary        `json:"summary"`
	ActiveSessions int            `json:"active_sessions"`
	QueueLength    int            `json:"queue_length"`
	Workers        int            `json:"workers"`
	RosterSize     map[string]int `json:"roster_size"`
	SeenAnswerKeys int64          `json:"seen_answer_keys"`
}

// AnswerInput is one yes/no submission for a session.
type AnswerInput struct {
	Answer bool
	// Round, when set, must equal the session's questions asked so far.
	Round *int
	// IdempotencyKey makes retries of the same submission return the
	// current session instead of answering twice.
	IdempotencyKey string
}
