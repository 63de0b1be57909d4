package quiz

import (
	"time"
	"unicode"

	"github.com/studyarc/studyarc-api/internal/bank"
)

// ScoreResult is the outcome of grading one submission.
type ScoreResult struct {
	Correct bool
	XP      int
}

// ScorerOption tunes scoring constants.
type ScorerOption func(*Scorer)

// WithBaseXPPerLevel overrides the per-difficulty base XP used when a
// question carries no base_xp of its own.
func WithBaseXPPerLevel(xp int) ScorerOption {
	return func(s *Scorer) { s.baseXPPerLevel = xp }
}

// WithTimeBonus overrides the maximum fast-answer bonus fraction.
func WithTimeBonus(frac float64) ScorerOption {
	return func(s *Scorer) { s.timeBonus = frac }
}

// Scorer grades a submission against the canonical answer key.
// Objective types only, exact match after normalization; no partial
// credit. Malformed input is an incorrect answer, never an error.
type Scorer struct {
	baseXPPerLevel int
	timeBonus      float64
}

func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		baseXPPerLevel: 10,
		timeBonus:      0.5,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score grades response against q. Timed-out and skipped slots always
// score zero.
func (s *Scorer) Score(q bank.Question, response string, timeTaken time.Duration, timedOut, skipped bool) ScoreResult {
	if timedOut || skipped {
		return ScoreResult{}
	}
	norm := normalizeResponse(response)
	if norm == "" {
		return ScoreResult{}
	}
	correct := false
	for _, key := range q.AnswerKey {
		if norm == normalizeResponse(key) {
			correct = true
			break
		}
	}
	if !correct {
		return ScoreResult{}
	}
	base := q.BaseXP
	if base <= 0 {
		base = s.baseXPPerLevel * q.Difficulty
	}
	xp := base
	if ref := referenceTime(q.Difficulty); timeTaken > 0 && timeTaken < ref {
		// Fast answers earn up to timeBonus extra, decaying linearly.
		frac := 1 - float64(timeTaken)/float64(ref)
		xp += int(float64(base) * s.timeBonus * frac)
	}
	return ScoreResult{Correct: true, XP: xp}
}

// referenceTime is the per-difficulty threshold under which a time bonus
// applies. Harder questions get more headroom.
func referenceTime(difficulty int) time.Duration {
	if difficulty < 1 {
		difficulty = 1
	}
	return time.Duration(10+5*difficulty) * time.Second
}

// normalizeResponse casefolds and strips punctuation and repeated
// whitespace so " B) " and "b" grade alike. Dots, dashes and slashes
// survive because they matter for numeric and fraction answers.
func normalizeResponse(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r) && r != '.' && r != '-' && r != '/':
			// keep runes that matter for numeric answers
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
