package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studyarc/studyarc-api/internal/bank"
	"github.com/studyarc/studyarc-api/internal/quiz"
	"github.com/studyarc/studyarc-api/internal/rbac"
)

// POST /sessions  { "scope": {...}, "time_mode": "3min" }
func CreateSessionHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		var req struct {
			Scope    quiz.Scope    `json:"scope"`
			TimeMode quiz.TimeMode `json:"time_mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		s, err := engine.Create(r.Context(), sub, req.Scope, req.TimeMode)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, s)
	}
}

// GET /sessions?limit=50&offset=0
func ListSessionsHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
		list, err := engine.ListSessions(r.Context(), sub, limit, offset)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if list == nil {
			list = []*quiz.Session{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /sessions/{sessionID}
func GetSessionHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		s, err := engine.Get(r.Context(), chi.URLParam(r, "sessionID"), sub)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// POST /sessions/{sessionID}/start
func StartSessionHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		s, err := engine.Start(r.Context(), chi.URLParam(r, "sessionID"), sub)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

type slotResponse struct {
	Session  *quiz.Session  `json:"session"`
	Slot     *quiz.Slot     `json:"slot,omitempty"`
	Question *bank.Question `json:"question,omitempty"`
}

// GET /sessions/{sessionID}/question. May record a timeout and complete
// the session, in which case slot and question are absent.
func CurrentSlotHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		s, slot, q, err := engine.CurrentSlot(r.Context(), chi.URLParam(r, "sessionID"), sub)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, slotResponse{Session: s, Slot: slot, Question: q})
	}
}

type answerResponse struct {
	Session *quiz.Session `json:"session"`
	Answer  *quiz.Answer  `json:"answer"`
}

// POST /sessions/{sessionID}/answer  { "slot_index": 0, "response": "42" }
func SubmitAnswerHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		var req struct {
			SlotIndex *int   `json:"slot_index"`
			Response  string `json:"response"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.SlotIndex == nil {
			http.Error(w, "slot_index required", http.StatusBadRequest)
			return
		}
		s, a, err := engine.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), sub, *req.SlotIndex, req.Response)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, answerResponse{Session: s, Answer: a})
	}
}

// POST /sessions/{sessionID}/skip
func SkipSlotHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		s, a, err := engine.Skip(r.Context(), chi.URLParam(r, "sessionID"), sub)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, answerResponse{Session: s, Answer: a})
	}
}

// POST /sessions/{sessionID}/pause
func PauseSessionHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		s, err := engine.Pause(r.Context(), chi.URLParam(r, "sessionID"), sub)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// POST /sessions/{sessionID}/resume
func ResumeSessionHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		s, err := engine.Resume(r.Context(), chi.URLParam(r, "sessionID"), sub)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

type endResponse struct {
	Session *quiz.Session `json:"session"`
	Summary *quiz.Summary `json:"summary"`
}

// POST /sessions/{sessionID}/end. Idempotent.
func EndSessionHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		s, sum, err := engine.End(r.Context(), chi.URLParam(r, "sessionID"), sub)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, endResponse{Session: s, Summary: sum})
	}
}

// GET /sessions/{sessionID}/summary
func SessionSummaryHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		sum, err := engine.Summary(r.Context(), chi.URLParam(r, "sessionID"), sub)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}
