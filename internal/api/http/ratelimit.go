package http

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/studyarc/studyarc-api/internal/rbac"
)

// RateLimit applies a per-subject token bucket. Unauthenticated requests
// share one bucket keyed by the empty subject, which is fine because the
// limited routes all sit behind the JWT middleware.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}

	limiterFor := func(sub string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[sub]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[sub] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := rbac.SubjectFromContext(r.Context())
			if !limiterFor(sub).Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
