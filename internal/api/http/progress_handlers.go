package http

import (
	"net/http"

	"github.com/studyarc/studyarc-api/internal/progress"
	"github.com/studyarc/studyarc-api/internal/rbac"
)

type progressResponse struct {
	Concepts []progress.ConceptProgress `json:"concepts"`
	Topics   []progress.TopicProgress   `json:"topics"`
}

// GET /progress returns the caller's own concept and topic aggregates.
func GetProgressHandler(store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		writeProgress(w, r, store, sub)
	}
}

func writeProgress(w http.ResponseWriter, r *http.Request, store progress.Store, userID string) {
	concepts, err := store.ListConcepts(r.Context(), userID)
	if err != nil {
		http.Error(w, "temporary failure, retry", http.StatusServiceUnavailable)
		return
	}
	topics, err := store.ListTopics(r.Context(), userID)
	if err != nil {
		http.Error(w, "temporary failure, retry", http.StatusServiceUnavailable)
		return
	}
	if concepts == nil {
		concepts = []progress.ConceptProgress{}
	}
	if topics == nil {
		topics = []progress.TopicProgress{}
	}
	writeJSON(w, http.StatusOK, progressResponse{Concepts: concepts, Topics: topics})
}
