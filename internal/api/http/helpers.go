package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/studyarc/studyarc-api/internal/bank"
	"github.com/studyarc/studyarc-api/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeEngineError maps engine error kinds to HTTP statuses. Everything
// the engine classifies is a 4xx; anything else is treated as a retryable
// storage failure.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrSessionNotFound), errors.Is(err, bank.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, quiz.ErrConcurrentSession):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, quiz.ErrInvalidStateTransition), errors.Is(err, quiz.ErrStaleSlot):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, quiz.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "temporary failure, retry", http.StatusServiceUnavailable)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
