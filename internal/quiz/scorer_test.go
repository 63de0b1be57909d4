package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/studyarc/studyarc-api/internal/bank"
)

func q(typ string, difficulty int, keys ...string) bank.Question {
	return bank.Question{
		ID:         "q1",
		Type:       typ,
		Difficulty: difficulty,
		AnswerKey:  keys,
	}
}

func TestScoreExactMatchAfterNormalization(t *testing.T) {
	s := NewScorer()
	cases := []struct {
		name     string
		question bank.Question
		response string
		correct  bool
	}{
		{"mcq exact", q("mcq_single", 1, "b"), "b", true},
		{"mcq case folded", q("mcq_single", 1, "b"), "B", true},
		{"mcq surrounding space", q("mcq_single", 1, "b"), "  b  ", true},
		{"mcq wrong choice", q("mcq_single", 1, "b"), "a", false},
		{"true_false", q("true_false", 1, "true"), "TRUE", true},
		{"short word punctuation stripped", q("short_word", 2, "photosynthesis"), "Photosynthesis!", true},
		{"short word apostrophe and spaces collapse", q("short_word", 2, "ohms law"), "Ohm's   Law", true},
		{"numeric decimal kept", q("numeric", 2, "3.5"), " 3.5 ", true},
		{"numeric negative kept", q("numeric", 2, "-2"), "-2", true},
		{"numeric fraction kept", q("numeric", 2, "1/2"), "1/2", true},
		{"numeric wrong value", q("numeric", 2, "3.5"), "3.6", false},
		{"multiple accepted keys", q("numeric", 2, "0.5", "1/2"), "1/2", true},
		{"empty response", q("numeric", 2, "3.5"), "", false},
		{"whitespace only response", q("numeric", 2, "3.5"), "   ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := s.Score(tc.question, tc.response, 20*time.Second, false, false)
			assert.Equal(t, tc.correct, res.Correct)
		})
	}
}

func TestScoreXP(t *testing.T) {
	s := NewScorer()

	// Base XP scales with difficulty when the question carries none.
	slow := s.Score(q("mcq_single", 3, "b"), "b", time.Hour, false, false)
	assert.Equal(t, 30, slow.XP, "no bonus past the reference time")

	// Instant answers earn the full 50% bonus.
	fast := s.Score(q("mcq_single", 3, "b"), "b", time.Millisecond, false, false)
	assert.InDelta(t, 45, fast.XP, 1)

	// Halfway to the reference time earns roughly half the bonus.
	// Reference for difficulty 3 is 25s.
	half := s.Score(q("mcq_single", 3, "b"), "b", 12500*time.Millisecond, false, false)
	assert.InDelta(t, 37, half.XP, 1)

	// The bonus decays monotonically.
	assert.Greater(t, fast.XP, half.XP)
	assert.Greater(t, half.XP, slow.XP)

	// An explicit base_xp overrides the difficulty-scaled default.
	custom := q("mcq_single", 3, "b")
	custom.BaseXP = 100
	assert.Equal(t, 100, s.Score(custom, "b", time.Hour, false, false).XP)

	// Wrong answers score nothing.
	assert.Equal(t, 0, s.Score(q("mcq_single", 3, "b"), "a", time.Second, false, false).XP)
}

func TestScoreSkippedAndTimedOut(t *testing.T) {
	s := NewScorer()
	question := q("mcq_single", 2, "b")

	res := s.Score(question, "b", time.Second, false, true)
	assert.False(t, res.Correct, "a skip scores zero even with the right response attached")
	assert.Equal(t, 0, res.XP)

	res = s.Score(question, "b", time.Second, true, false)
	assert.False(t, res.Correct)
	assert.Equal(t, 0, res.XP)
}

func TestScorerOptions(t *testing.T) {
	s := NewScorer(WithBaseXPPerLevel(20), WithTimeBonus(0))
	res := s.Score(q("mcq_single", 2, "b"), "b", time.Millisecond, false, false)
	assert.Equal(t, 40, res.XP, "custom base, bonus disabled")
}
