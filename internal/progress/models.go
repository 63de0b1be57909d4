package progress

// ConceptProgress is the per-user aggregate for one concept. Created
// lazily on first attempt, mutated only by the Aggregator.
type ConceptProgress struct {
	UserID        string `json:"user_id"`
	ConceptID     string `json:"concept_id"`
	TopicID       string `json:"topic_id"`
	Attempts      int    `json:"attempts"`
	Correct       int    `json:"correct"`
	Streak        int    `json:"streak"`
	BestStreak    int    `json:"best_streak"`
	Level         int    `json:"level"` // current difficulty level served for this concept
	XP            int    `json:"xp"`
	TimeSpentMs   int64  `json:"time_spent_ms"`
	LastAttemptAt int64  `json:"last_attempt_at"` // unix millis
	Band          Band   `json:"band"`
}

// Accuracy returns the lifetime accuracy ratio.
func (p ConceptProgress) Accuracy() float64 {
	if p.Attempts == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Attempts)
}

// TopicProgress is the per-user aggregate for a whole topic.
type TopicProgress struct {
	UserID        string `json:"user_id"`
	TopicID       string `json:"topic_id"`
	Attempts      int    `json:"attempts"`
	Correct       int    `json:"correct"`
	Streak        int    `json:"streak"`
	BestStreak    int    `json:"best_streak"`
	XP            int    `json:"xp"`
	TimeSpentMs   int64  `json:"time_spent_ms"`
	LastAttemptAt int64  `json:"last_attempt_at"`
	Band          Band   `json:"band"`
}

func (p TopicProgress) Accuracy() float64 {
	if p.Attempts == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Attempts)
}
