package progress

import (
	"context"
	"database/sql"
	"errors"
)

// SQLStore persists progress aggregates in concept_progress and
// topic_progress. Upserts keep one row per (user, concept/topic).
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) GetConcept(ctx context.Context, userID, conceptID string) (ConceptProgress, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, concept_id, topic_id, attempts, correct, streak, best_streak, level, xp, time_spent_ms, last_attempt_at, band
		 FROM concept_progress WHERE user_id=$1 AND concept_id=$2`, userID, conceptID)
	var p ConceptProgress
	err := row.Scan(&p.UserID, &p.ConceptID, &p.TopicID, &p.Attempts, &p.Correct, &p.Streak,
		&p.BestStreak, &p.Level, &p.XP, &p.TimeSpentMs, &p.LastAttemptAt, &p.Band)
	if errors.Is(err, sql.ErrNoRows) {
		return ConceptProgress{}, false, nil
	}
	if err != nil {
		return ConceptProgress{}, false, err
	}
	return p, true, nil
}

func (s *SQLStore) PutConcept(ctx context.Context, p ConceptProgress) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO concept_progress (user_id, concept_id, topic_id, attempts, correct, streak, best_streak, level, xp, time_spent_ms, last_attempt_at, band)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (user_id, concept_id) DO UPDATE SET
		   attempts=EXCLUDED.attempts, correct=EXCLUDED.correct, streak=EXCLUDED.streak,
		   best_streak=EXCLUDED.best_streak, level=EXCLUDED.level, xp=EXCLUDED.xp,
		   time_spent_ms=EXCLUDED.time_spent_ms, last_attempt_at=EXCLUDED.last_attempt_at, band=EXCLUDED.band`,
		p.UserID, p.ConceptID, p.TopicID, p.Attempts, p.Correct, p.Streak,
		p.BestStreak, p.Level, p.XP, p.TimeSpentMs, p.LastAttemptAt, string(p.Band))
	return err
}

func (s *SQLStore) ListConcepts(ctx context.Context, userID string) ([]ConceptProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, concept_id, topic_id, attempts, correct, streak, best_streak, level, xp, time_spent_ms, last_attempt_at, band
		 FROM concept_progress WHERE user_id=$1 ORDER BY concept_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ConceptProgress
	for rows.Next() {
		var p ConceptProgress
		if err := rows.Scan(&p.UserID, &p.ConceptID, &p.TopicID, &p.Attempts, &p.Correct, &p.Streak,
			&p.BestStreak, &p.Level, &p.XP, &p.TimeSpentMs, &p.LastAttemptAt, &p.Band); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetTopic(ctx context.Context, userID, topicID string) (TopicProgress, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, topic_id, attempts, correct, streak, best_streak, xp, time_spent_ms, last_attempt_at, band
		 FROM topic_progress WHERE user_id=$1 AND topic_id=$2`, userID, topicID)
	var p TopicProgress
	err := row.Scan(&p.UserID, &p.TopicID, &p.Attempts, &p.Correct, &p.Streak,
		&p.BestStreak, &p.XP, &p.TimeSpentMs, &p.LastAttemptAt, &p.Band)
	if errors.Is(err, sql.ErrNoRows) {
		return TopicProgress{}, false, nil
	}
	if err != nil {
		return TopicProgress{}, false, err
	}
	return p, true, nil
}

func (s *SQLStore) PutTopic(ctx context.Context, p TopicProgress) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topic_progress (user_id, topic_id, attempts, correct, streak, best_streak, xp, time_spent_ms, last_attempt_at, band)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (user_id, topic_id) DO UPDATE SET
		   attempts=EXCLUDED.attempts, correct=EXCLUDED.correct, streak=EXCLUDED.streak,
		   best_streak=EXCLUDED.best_streak, xp=EXCLUDED.xp,
		   time_spent_ms=EXCLUDED.time_spent_ms, last_attempt_at=EXCLUDED.last_attempt_at, band=EXCLUDED.band`,
		p.UserID, p.TopicID, p.Attempts, p.Correct, p.Streak,
		p.BestStreak, p.XP, p.TimeSpentMs, p.LastAttemptAt, string(p.Band))
	return err
}

func (s *SQLStore) ListTopics(ctx context.Context, userID string) ([]TopicProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, topic_id, attempts, correct, streak, best_streak, xp, time_spent_ms, last_attempt_at, band
		 FROM topic_progress WHERE user_id=$1 ORDER BY topic_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopicProgress
	for rows.Next() {
		var p TopicProgress
		if err := rows.Scan(&p.UserID, &p.TopicID, &p.Attempts, &p.Correct, &p.Streak,
			&p.BestStreak, &p.XP, &p.TimeSpentMs, &p.LastAttemptAt, &p.Band); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
