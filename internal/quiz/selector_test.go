package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyarc/studyarc-api/internal/bank"
)

func seedBank(t *testing.T, concepts int, perLevel int, minLevel, maxLevel int) *bank.MemoryBank {
	t.Helper()
	b := bank.NewMemoryBank()
	for c := 1; c <= concepts; c++ {
		cid := fmt.Sprintf("c%d", c)
		b.PutConcept(bank.Concept{
			ID:            cid,
			TopicID:       "t1",
			MinDifficulty: minLevel,
			MaxDifficulty: maxLevel,
		})
		for lvl := minLevel; lvl <= maxLevel; lvl++ {
			for i := 0; i < perLevel; i++ {
				b.PutQuestion(bank.Question{
					ID:         fmt.Sprintf("%s-l%d-q%d", cid, lvl, i),
					TopicID:    "t1",
					ConceptID:  cid,
					Type:       "mcq_single",
					Difficulty: lvl,
					AnswerKey:  []string{"a"},
				})
			}
		}
	}
	return b
}

func TestSelectorNeverRepeatsWithinSession(t *testing.T) {
	b := seedBank(t, 2, 3, 1, 2)
	sel := NewSelector(b, rand.New(rand.NewSource(1)))
	scope := Scope{TopicID: "t1", ConceptIDs: []string{"c1", "c2"}}

	served := map[string]bool{}
	for i := 0; i < 12; i++ {
		q, err := sel.Next(context.Background(), scope, served, nil)
		require.NoError(t, err)
		require.False(t, served[q.ID], "question %s served twice", q.ID)
		served[q.ID] = true
	}
	// 2 concepts x 2 levels x 3 questions = 12; the 13th draw exhausts scope.
	_, err := sel.Next(context.Background(), scope, served, nil)
	assert.ErrorIs(t, err, errScopeExhausted)
}

func TestSelectorFavorsWeakConcepts(t *testing.T) {
	b := seedBank(t, 2, 200, 1, 1)
	sel := NewSelector(b, rand.New(rand.NewSource(42)))
	scope := Scope{TopicID: "t1", ConceptIDs: []string{"c1", "c2"}}
	states := map[string]ConceptState{
		"c1": {Accuracy: 0.10, Attempts: 10, Level: 1}, // weight 0.90
		"c2": {Accuracy: 0.90, Attempts: 10, Level: 1}, // weight floored later
	}

	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		q, err := sel.Next(context.Background(), scope, nil, states)
		require.NoError(t, err)
		counts[q.ConceptID]++
	}
	assert.Greater(t, counts["c1"], counts["c2"]*3,
		"a 10%% concept should be drawn far more often than a 90%% one")
	assert.Greater(t, counts["c2"], 0, "strong concepts stay reachable")
}

func TestSelectorWeightFloorKeepsMasteredConceptsInPlay(t *testing.T) {
	b := seedBank(t, 2, 200, 1, 1)
	sel := NewSelector(b, rand.New(rand.NewSource(7)))
	scope := Scope{TopicID: "t1", ConceptIDs: []string{"c1", "c2"}}
	states := map[string]ConceptState{
		"c1": {Accuracy: 1.0, Attempts: 50, Level: 1}, // floored at 0.15
		"c2": {Accuracy: 0.0, Attempts: 50, Level: 1}, // weight 1.0
	}

	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		q, err := sel.Next(context.Background(), scope, nil, states)
		require.NoError(t, err)
		counts[q.ConceptID]++
	}
	// Expected share for c1 is 0.15/1.15 ≈ 13%; allow generous slack.
	assert.Greater(t, counts["c1"], 100)
	assert.Less(t, counts["c1"], 500)
}

func TestSelectorServesConceptLevel(t *testing.T) {
	b := seedBank(t, 1, 3, 1, 3)
	sel := NewSelector(b, rand.New(rand.NewSource(3)))
	scope := Scope{TopicID: "t1", ConceptIDs: []string{"c1"}}

	q, err := sel.Next(context.Background(), scope, nil,
		map[string]ConceptState{"c1": {Attempts: 6, Accuracy: 1, Level: 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Difficulty)

	// Unknown concepts default to the concept's minimum level.
	q, err = sel.Next(context.Background(), scope, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Difficulty)

	// A level above the concept's range clamps down.
	q, err = sel.Next(context.Background(), scope, nil,
		map[string]ConceptState{"c1": {Attempts: 30, Accuracy: 1, Level: 9}})
	require.NoError(t, err)
	assert.Equal(t, 3, q.Difficulty)
}

func TestSelectorFallsBackToNeighborLevels(t *testing.T) {
	b := seedBank(t, 1, 1, 1, 3)
	sel := NewSelector(b, rand.New(rand.NewSource(5)))
	scope := Scope{TopicID: "t1", ConceptIDs: []string{"c1"}}

	// The only level-2 question is already served; nearest neighbor wins.
	served := map[string]bool{"c1-l2-q0": true}
	q, err := sel.Next(context.Background(), scope, served,
		map[string]ConceptState{"c1": {Attempts: 3, Level: 2}})
	require.NoError(t, err)
	assert.NotEqual(t, 2, q.Difficulty)
	assert.Contains(t, []int{1, 3}, q.Difficulty)
}

func TestLevelOrder(t *testing.T) {
	assert.Equal(t, []int{2, 3, 1}, levelOrder(2, 1, 3))
	assert.Equal(t, []int{1, 2, 3}, levelOrder(1, 1, 3))
	assert.Equal(t, []int{3, 2, 1}, levelOrder(3, 1, 3))
	assert.Equal(t, []int{1}, levelOrder(1, 1, 1))
}
