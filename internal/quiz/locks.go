package quiz

import "sync"

// sessionLocks serializes mutating operations per session ID. One mutex
// per session; entries live as long as the process, which is bounded by
// the number of sessions touched.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{m: map[string]*sync.Mutex{}}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	mu, ok := l.m[id]
	if !ok {
		mu = &sync.Mutex{}
		l.m[id] = mu
	}
	l.mu.Unlock()
	mu.Lock()
	return mu.Unlock
}
