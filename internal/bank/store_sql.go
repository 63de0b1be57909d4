package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("bank: not found")

// SQLBank reads the catalog tables (topics, concepts, questions).
type SQLBank struct {
	db *sql.DB
}

func NewSQLBank(db *sql.DB) *SQLBank { return &SQLBank{db: db} }

func (b *SQLBank) Concept(ctx context.Context, id string) (Concept, error) {
	row := b.db.QueryRowContext(ctx,
		`SELECT id, topic_id, name, min_difficulty, max_difficulty FROM concepts WHERE id=$1`, id)
	var c Concept
	if err := row.Scan(&c.ID, &c.TopicID, &c.Name, &c.MinDifficulty, &c.MaxDifficulty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Concept{}, ErrNotFound
		}
		return Concept{}, err
	}
	return c, nil
}

func (b *SQLBank) Questions(ctx context.Context, conceptID string, difficulty int, exclude map[string]bool) ([]Question, error) {
	args := []any{conceptID, difficulty}
	q := `SELECT id, topic_id, concept_id, qtype, difficulty, prompt_html, choices_json, answer_key_json, base_xp
	      FROM questions WHERE concept_id=$1 AND difficulty=$2`
	if len(exclude) > 0 {
		ph := make([]string, 0, len(exclude))
		for id := range exclude {
			args = append(args, id)
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		q += " AND id NOT IN (" + strings.Join(ph, ",") + ")"
	}
	q += " ORDER BY id"

	rows, err := b.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		qu, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, qu)
	}
	return out, rows.Err()
}

func (b *SQLBank) Question(ctx context.Context, id string) (Question, error) {
	row := b.db.QueryRowContext(ctx,
		`SELECT id, topic_id, concept_id, qtype, difficulty, prompt_html, choices_json, answer_key_json, base_xp
		 FROM questions WHERE id=$1`, id)
	qu, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, err
	}
	return qu, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (Question, error) {
	var q Question
	var choicesJSON, keyJSON string
	if err := row.Scan(&q.ID, &q.TopicID, &q.ConceptID, &q.Type, &q.Difficulty,
		&q.PromptHTML, &choicesJSON, &keyJSON, &q.BaseXP); err != nil {
		return Question{}, err
	}
	if choicesJSON != "" {
		if err := json.Unmarshal([]byte(choicesJSON), &q.Choices); err != nil {
			return Question{}, err
		}
	}
	if keyJSON != "" {
		if err := json.Unmarshal([]byte(keyJSON), &q.AnswerKey); err != nil {
			return Question{}, err
		}
	}
	return q, nil
}
