package bank

import (
	"context"
	"sort"
	"sync"
)

// MemoryBank is an in-memory catalog, used for tests and offline seeding.
type MemoryBank struct {
	mu        sync.RWMutex
	concepts  map[string]Concept
	questions map[string]Question
}

func NewMemoryBank() *MemoryBank {
	return &MemoryBank{
		concepts:  map[string]Concept{},
		questions: map[string]Question{},
	}
}

func (b *MemoryBank) PutConcept(c Concept) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.concepts[c.ID] = c
}

func (b *MemoryBank) PutQuestion(q Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions[q.ID] = q
}

func (b *MemoryBank) Concept(_ context.Context, id string) (Concept, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.concepts[id]
	if !ok {
		return Concept{}, ErrNotFound
	}
	return c, nil
}

func (b *MemoryBank) Questions(_ context.Context, conceptID string, difficulty int, exclude map[string]bool) ([]Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Question
	for _, q := range b.questions {
		if q.ConceptID != conceptID || q.Difficulty != difficulty || exclude[q.ID] {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *MemoryBank) Question(_ context.Context, id string) (Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}
