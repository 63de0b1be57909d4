package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/studyarc/studyarc-api/internal/bank"
)

// ConceptState is the selector's view of one in-scope concept: lifetime
// accuracy, current streak and the difficulty level currently served.
type ConceptState struct {
	Accuracy float64
	Streak   int
	Attempts int
	Level    int
}

// weightFloor keeps fully-mastered concepts reachable: even at 100%
// accuracy a concept keeps this much selection weight.
const weightFloor = 0.15

// Selector picks the next question for a session. Concepts with lower
// accuracy are favored (weight = 1 - accuracy, floored), and difficulty
// follows the concept's current level, which the aggregator escalates on
// streaks and de-escalates on misses.
//
// Engine operations are serialized per session, not globally, so draws
// from the shared rand source are guarded by a mutex.
type Selector struct {
	bank bank.Bank

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector(b bank.Bank, rng *rand.Rand) *Selector {
	return &Selector{bank: b, rng: rng}
}

func (sel *Selector) randFloat64() float64 {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	return sel.rng.Float64()
}

func (sel *Selector) randIntn(n int) int {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	return sel.rng.Intn(n)
}

// Next chooses an unserved question within scope, or errScopeExhausted
// when nothing eligible remains.
func (sel *Selector) Next(ctx context.Context, scope Scope, served map[string]bool, states map[string]ConceptState) (bank.Question, error) {
	candidates := append([]string(nil), scope.ConceptIDs...)
	sort.Strings(candidates)

	for len(candidates) > 0 {
		idx := sel.pickWeighted(candidates, states)
		conceptID := candidates[idx]

		q, ok, err := sel.pickQuestion(ctx, conceptID, states[conceptID], served)
		if err != nil {
			return bank.Question{}, err
		}
		if ok {
			return q, nil
		}
		// Concept has no unserved questions left; drop it and retry.
		candidates = append(candidates[:idx], candidates[idx+1:]...)
	}
	return bank.Question{}, errScopeExhausted
}

func (sel *Selector) pickWeighted(conceptIDs []string, states map[string]ConceptState) int {
	weights := make([]float64, len(conceptIDs))
	total := 0.0
	for i, id := range conceptIDs {
		w := 1.0
		if st, ok := states[id]; ok && st.Attempts > 0 {
			w = 1 - st.Accuracy
			if w < weightFloor {
				w = weightFloor
			}
		}
		weights[i] = w
		total += w
	}
	r := sel.randFloat64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(conceptIDs) - 1
}

// pickQuestion tries the concept's current level first, then walks the
// remaining levels of its difficulty range nearest-first.
func (sel *Selector) pickQuestion(ctx context.Context, conceptID string, st ConceptState, served map[string]bool) (bank.Question, bool, error) {
	c, err := sel.bank.Concept(ctx, conceptID)
	if err != nil {
		return bank.Question{}, false, fmt.Errorf("look up concept %s: %w", conceptID, err)
	}
	target := st.Level
	if target < c.MinDifficulty {
		target = c.MinDifficulty
	}
	if target > c.MaxDifficulty {
		target = c.MaxDifficulty
	}
	for _, level := range levelOrder(target, c.MinDifficulty, c.MaxDifficulty) {
		qs, err := sel.bank.Questions(ctx, conceptID, level, served)
		if err != nil {
			return bank.Question{}, false, fmt.Errorf("query bank for %s: %w", conceptID, err)
		}
		if len(qs) > 0 {
			return qs[sel.randIntn(len(qs))], true, nil
		}
	}
	return bank.Question{}, false, nil
}

// levelOrder yields target, then alternating neighbors within [min, max].
func levelOrder(target, min, max int) []int {
	out := []int{target}
	for d := 1; ; d++ {
		lo, hi := target-d, target+d
		if lo < min && hi > max {
			return out
		}
		if hi <= max {
			out = append(out, hi)
		}
		if lo >= min {
			out = append(out, lo)
		}
	}
}
