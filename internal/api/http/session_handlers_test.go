package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyarc/studyarc-api/internal/bank"
	"github.com/studyarc/studyarc-api/internal/progress"
	"github.com/studyarc/studyarc-api/internal/quiz"
	"github.com/studyarc/studyarc-api/internal/rbac"
)

func testRouter(t *testing.T) (chi.Router, *quiz.Engine) {
	t.Helper()
	b := bank.NewMemoryBank()
	b.PutConcept(bank.Concept{ID: "c1", TopicID: "t1", MinDifficulty: 1, MaxDifficulty: 2})
	for lvl := 1; lvl <= 2; lvl++ {
		for i := 0; i < 4; i++ {
			b.PutQuestion(bank.Question{
				ID:         fmt.Sprintf("q-l%d-%d", lvl, i),
				TopicID:    "t1",
				ConceptID:  "c1",
				Type:       "mcq_single",
				Difficulty: lvl,
				AnswerKey:  []string{"a"},
			})
		}
	}
	engine := quiz.NewEngine(quiz.NewMemoryStore(), b, progress.NewMemoryStore())

	r := chi.NewRouter()
	r.Post("/sessions", CreateSessionHandler(engine))
	r.Get("/sessions", ListSessionsHandler(engine))
	r.Get("/sessions/{sessionID}", GetSessionHandler(engine))
	r.Post("/sessions/{sessionID}/start", StartSessionHandler(engine))
	r.Get("/sessions/{sessionID}/question", CurrentSlotHandler(engine))
	r.Post("/sessions/{sessionID}/answer", SubmitAnswerHandler(engine))
	r.Post("/sessions/{sessionID}/end", EndSessionHandler(engine))
	return r, engine
}

func doAs(t *testing.T, r chi.Router, userID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	ctx := rbac.WithSubject(rbac.WithRole(context.Background(), "student"), userID)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	r, _ := testRouter(t)

	// Create.
	w := doAs(t, r, "u1", "POST", "/sessions", map[string]any{
		"scope":     map[string]any{"topic_id": "t1", "concept_ids": []string{"c1"}},
		"time_mode": "unlimited",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created quiz.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// A second open session conflicts.
	w = doAs(t, r, "u1", "POST", "/sessions", map[string]any{
		"scope":     map[string]any{"topic_id": "t1", "concept_ids": []string{"c1"}},
		"time_mode": "unlimited",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Start.
	w = doAs(t, r, "u1", "POST", "/sessions/"+created.ID+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The served question hides its answer key.
	w = doAs(t, r, "u1", "GET", "/sessions/"+created.ID+"/question", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slotResp struct {
		Slot     *quiz.Slot     `json:"slot"`
		Question *bank.Question `json:"question"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slotResp))
	require.NotNil(t, slotResp.Question)
	assert.Empty(t, slotResp.Question.AnswerKey)

	// Answer.
	w = doAs(t, r, "u1", "POST", "/sessions/"+created.ID+"/answer", map[string]any{
		"slot_index": 0, "response": "a",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ansResp struct {
		Answer *quiz.Answer `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ansResp))
	assert.True(t, ansResp.Answer.Correct)

	// Stale slot index is a conflict.
	w = doAs(t, r, "u1", "POST", "/sessions/"+created.ID+"/answer", map[string]any{
		"slot_index": 0, "response": "a",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Missing slot_index is a bad request.
	w = doAs(t, r, "u1", "POST", "/sessions/"+created.ID+"/answer", map[string]any{
		"response": "a",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// End returns session plus summary.
	w = doAs(t, r, "u1", "POST", "/sessions/"+created.ID+"/end", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ended struct {
		Session *quiz.Session `json:"session"`
		Summary *quiz.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ended))
	assert.Equal(t, quiz.StatusCompleted, ended.Session.Status)
	assert.Equal(t, 1, ended.Summary.Correct)
}

func TestSessionOwnershipOverHTTP(t *testing.T) {
	r, _ := testRouter(t)

	w := doAs(t, r, "u1", "POST", "/sessions", map[string]any{
		"scope":     map[string]any{"topic_id": "t1", "concept_ids": []string{"c1"}},
		"time_mode": "unlimited",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created quiz.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Someone else's session reads as not found.
	w = doAs(t, r, "u2", "GET", "/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unknown ID too.
	w = doAs(t, r, "u1", "GET", "/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bad input is a 400.
	w = doAs(t, r, "u2", "POST", "/sessions", map[string]any{
		"scope":     map[string]any{"topic_id": "", "concept_ids": []string{}},
		"time_mode": "unlimited",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
