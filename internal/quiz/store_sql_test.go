package quiz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgDup := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_sessions_one_open",
	}
	assert.True(t, isUniqueViolation(pgDup))
	assert.True(t, isUniqueViolation(fmt.Errorf("exec insert: %w", pgDup)),
		"wrapped driver errors still match")

	sqliteDup := errors.New("constraint failed: UNIQUE constraint failed: sessions.user_id (2067)")
	assert.True(t, isUniqueViolation(sqliteDup))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}),
		"other constraint classes are not the open-session rule")
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}
