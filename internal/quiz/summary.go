package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/studyarc/studyarc-api/internal/progress"
)

// ConceptSummary is the per-concept slice of a session summary, including
// the concept's current proficiency band after the session's attempts.
type ConceptSummary struct {
	ConceptID string        `json:"concept_id"`
	Attempts  int           `json:"attempts"`
	Correct   int           `json:"correct"`
	XP        int           `json:"xp"`
	Band      progress.Band `json:"band,omitempty"`
}

// Summary aggregates a session's results. Available for in-progress and
// terminal sessions alike.
type Summary struct {
	SessionID   string           `json:"session_id"`
	UserID      string           `json:"user_id"`
	Status      Status           `json:"status"`
	TimeMode    TimeMode         `json:"time_mode"`
	Served      int              `json:"served"`
	Answered    int              `json:"answered"`
	Correct     int              `json:"correct"`
	Skipped     int              `json:"skipped"`
	TimedOut    int              `json:"timed_out"`
	Accuracy    float64          `json:"accuracy"`
	XP          int              `json:"xp"`
	ActiveMs    int64            `json:"active_ms"`
	RemainingMs int64            `json:"remaining_ms"`
	Concepts    []ConceptSummary `json:"concepts"`
}

func (e *Engine) buildSummary(ctx context.Context, s *Session, now time.Time) (*Summary, error) {
	sum := &Summary{
		SessionID: s.ID,
		UserID:    s.UserID,
		Status:    s.Status,
		TimeMode:  s.TimeMode,
		Served:    len(s.Slots),
		ActiveMs:  ActiveDuration(s, now).Milliseconds(),
	}
	if rem := RemainingSessionTime(s, now); rem != UnlimitedRemaining {
		sum.RemainingMs = rem.Milliseconds()
	} else {
		sum.RemainingMs = -1
	}

	byConcept := map[string]*ConceptSummary{}
	order := []string{}
	for i := range s.Slots {
		slot := &s.Slots[i]
		a := slot.Answer
		if a == nil {
			continue
		}
		cs, ok := byConcept[slot.ConceptID]
		if !ok {
			cs = &ConceptSummary{ConceptID: slot.ConceptID}
			byConcept[slot.ConceptID] = cs
			order = append(order, slot.ConceptID)
		}
		sum.Answered++
		cs.Attempts++
		switch {
		case a.Skipped:
			sum.Skipped++
		case a.TimedOut:
			sum.TimedOut++
		case a.Correct:
			sum.Correct++
			cs.Correct++
		}
		sum.XP += a.XP
		cs.XP += a.XP
	}
	if sum.Answered > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(sum.Answered)
	}
	for _, id := range order {
		cs := byConcept[id]
		p, found, err := e.progress.GetConcept(ctx, s.UserID, id)
		if err != nil {
			return nil, fmt.Errorf("read progress for %s: %w", id, err)
		}
		if found {
			cs.Band = p.Band
		}
		sum.Concepts = append(sum.Concepts, *cs)
	}
	return sum, nil
}
