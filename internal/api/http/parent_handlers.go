package http

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studyarc/studyarc-api/internal/progress"
	"github.com/studyarc/studyarc-api/internal/quiz"
	"github.com/studyarc/studyarc-api/internal/rbac"
)

// ParentAPI serves read-only monitoring views of a linked child. The
// consent relationship lives in parent_links, maintained by the
// parent-linking collaborator; these handlers only check that a row
// exists before reading on the child's behalf.
type ParentAPI struct {
	Engine   *quiz.Engine
	Progress progress.Store
	DB       *sql.DB
}

func (p *ParentAPI) linked(r *http.Request, childID string) (bool, error) {
	parentID := rbac.SubjectFromContext(r.Context())
	var one int
	err := p.DB.QueryRowContext(r.Context(),
		`SELECT 1 FROM parent_links WHERE parent_id=$1 AND child_id=$2`, parentID, childID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *ParentAPI) guard(w http.ResponseWriter, r *http.Request) (string, bool) {
	childID := chi.URLParam(r, "childID")
	ok, err := p.linked(r, childID)
	if err != nil {
		http.Error(w, "temporary failure, retry", http.StatusServiceUnavailable)
		return "", false
	}
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return childID, true
}

// GET /children/{childID}/sessions
func (p *ParentAPI) ListChildSessions(w http.ResponseWriter, r *http.Request) {
	childID, ok := p.guard(w, r)
	if !ok {
		return
	}
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	list, err := p.Engine.ListSessions(r.Context(), childID, limit, offset)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if list == nil {
		list = []*quiz.Session{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /children/{childID}/sessions/{sessionID}/summary
func (p *ParentAPI) ChildSessionSummary(w http.ResponseWriter, r *http.Request) {
	childID, ok := p.guard(w, r)
	if !ok {
		return
	}
	sum, err := p.Engine.Summary(r.Context(), chi.URLParam(r, "sessionID"), childID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GET /children/{childID}/progress
func (p *ParentAPI) ChildProgress(w http.ResponseWriter, r *http.Request) {
	childID, ok := p.guard(w, r)
	if !ok {
		return
	}
	writeProgress(w, r, p.Progress, childID)
}
