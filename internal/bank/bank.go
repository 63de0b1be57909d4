package bank

import "context"

type Choice struct {
	ID        string `json:"id"`
	LabelHTML string `json:"label_html,omitempty"`
}

type Question struct {
	ID         string   `json:"id"`
	TopicID    string   `json:"topic_id"`
	ConceptID  string   `json:"concept_id"`
	Type       string   `json:"type"` // mcq_single, true_false, short_word, numeric
	Difficulty int      `json:"difficulty"`
	PromptHTML string   `json:"prompt_html,omitempty"`
	Choices    []Choice `json:"choices,omitempty"`
	AnswerKey  []string `json:"answer_key,omitempty"`
	BaseXP     int      `json:"base_xp"`
}

// Sanitized returns a copy safe to serve to students.
func (q Question) Sanitized() Question {
	q.AnswerKey = nil
	return q
}

type Concept struct {
	ID            string `json:"id"`
	TopicID       string `json:"topic_id"`
	Name          string `json:"name"`
	MinDifficulty int    `json:"min_difficulty"`
	MaxDifficulty int    `json:"max_difficulty"`
}

// Bank is the read-only view of the curriculum catalog (theme → topic →
// concept → question) that the session engine queries. The catalog itself
// is owned elsewhere.
type Bank interface {
	Concept(ctx context.Context, id string) (Concept, error)
	// Questions returns all questions for a concept at a difficulty level,
	// excluding the given question IDs. An empty result is not an error.
	Questions(ctx context.Context, conceptID string, difficulty int, exclude map[string]bool) ([]Question, error)
	// Question returns the full question (answer key included) for grading.
	Question(ctx context.Context, id string) (Question, error)
}
