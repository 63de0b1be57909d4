package progress

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	concepts map[string]ConceptProgress // userID|conceptID
	topics   map[string]TopicProgress   // userID|topicID
}

// NewMemoryStore returns an in-memory Store for tests and offline use.
func NewMemoryStore() Store {
	return &memoryStore{
		concepts: map[string]ConceptProgress{},
		topics:   map[string]TopicProgress{},
	}
}

func pkey(userID, id string) string { return userID + "|" + id }

func (m *memoryStore) GetConcept(_ context.Context, userID, conceptID string) (ConceptProgress, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.concepts[pkey(userID, conceptID)]
	return p, ok, nil
}

func (m *memoryStore) PutConcept(_ context.Context, p ConceptProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concepts[pkey(p.UserID, p.ConceptID)] = p
	return nil
}

func (m *memoryStore) ListConcepts(_ context.Context, userID string) ([]ConceptProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ConceptProgress
	for _, p := range m.concepts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConceptID < out[j].ConceptID })
	return out, nil
}

func (m *memoryStore) GetTopic(_ context.Context, userID, topicID string) (TopicProgress, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.topics[pkey(userID, topicID)]
	return p, ok, nil
}

func (m *memoryStore) PutTopic(_ context.Context, p TopicProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics[pkey(p.UserID, p.TopicID)] = p
	return nil
}

func (m *memoryStore) ListTopics(_ context.Context, userID string) ([]TopicProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []TopicProgress
	for _, p := range m.topics {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TopicID < out[j].TopicID })
	return out, nil
}
