package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLStore persists sessions in the sessions table. Slots and answers
// live in a JSON column, so every update is a single-row, all-or-nothing
// write. The single-open-session rule is enforced by the partial unique
// index idx_sessions_one_open; the NOT EXISTS guard in the insert is not
// atomic under Postgres READ COMMITTED (two concurrent creates can both
// pass it), so the index violation is the authoritative signal.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateSession(ctx context.Context, sess *Session) error {
	scopeJSON, err := json.Marshal(sess.Scope)
	if err != nil {
		return err
	}
	slotsJSON, err := json.Marshal(sess.Slots)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, scope_json, time_mode, status, cursor, slots_json,
		                       created_at, started_at, resumed_at, paused_at, active_ms, ended_at)
		 SELECT $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
		 WHERE NOT EXISTS (
		   SELECT 1 FROM sessions WHERE user_id=$2 AND status IN ('created','active','paused')
		 )`,
		sess.ID, sess.UserID, string(scopeJSON), string(sess.TimeMode), string(sess.Status),
		sess.Cursor, string(slotsJSON), sess.CreatedAt, sess.StartedAt, sess.ResumedAt,
		sess.PausedAt, sess.ActiveMs, sess.EndedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConcurrentSession
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConcurrentSession
	}
	return nil
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, scope_json, time_mode, status, cursor, slots_json,
		        created_at, started_at, resumed_at, paused_at, active_ms, ended_at
		 FROM sessions WHERE id=$1`, id)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *SQLStore) UpdateSession(ctx context.Context, sess *Session) error {
	slotsJSON, err := json.Marshal(sess.Slots)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status=$1, cursor=$2, slots_json=$3, started_at=$4,
		        resumed_at=$5, paused_at=$6, active_ms=$7, ended_at=$8
		 WHERE id=$9`,
		string(sess.Status), sess.Cursor, string(slotsJSON), sess.StartedAt,
		sess.ResumedAt, sess.PausedAt, sess.ActiveMs, sess.EndedAt, sess.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLStore) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, scope_json, time_mode, status, cursor, slots_json,
		        created_at, started_at, resumed_at, paused_at, active_ms, ended_at
		 FROM sessions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// isUniqueViolation recognizes the one-open-session index firing on
// either driver: SQLSTATE 23505 from pgx, constraint text from sqlite.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var scopeJSON, slotsJSON, mode, status string
	if err := row.Scan(&sess.ID, &sess.UserID, &scopeJSON, &mode, &status, &sess.Cursor,
		&slotsJSON, &sess.CreatedAt, &sess.StartedAt, &sess.ResumedAt, &sess.PausedAt,
		&sess.ActiveMs, &sess.EndedAt); err != nil {
		return nil, err
	}
	sess.TimeMode = TimeMode(mode)
	sess.Status = Status(status)
	if err := json.Unmarshal([]byte(scopeJSON), &sess.Scope); err != nil {
		return nil, fmt.Errorf("decode session %s scope: %w", sess.ID, err)
	}
	if err := json.Unmarshal([]byte(slotsJSON), &sess.Slots); err != nil {
		return nil, fmt.Errorf("decode session %s slots: %w", sess.ID, err)
	}
	return &sess, nil
}
