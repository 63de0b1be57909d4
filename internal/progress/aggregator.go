package progress

import (
	"context"
	"fmt"
	"time"
)

// Outcome is one graded attempt as seen by the aggregator. Timeouts and
// skips are attempts too: they break the streak and score zero XP but are
// not errors.
type Outcome struct {
	UserID    string
	ConceptID string
	TopicID   string
	Correct   bool
	Skipped   bool
	TimedOut  bool
	TimeTaken time.Duration
	XP        int
	// Difficulty bounds of the concept, used to clamp level moves.
	MinLevel int
	MaxLevel int
	At       time.Time
}

// escalateEvery: every third consecutive correct answer raises the served
// difficulty one level; any miss lowers it one level.
const escalateEvery = 3

// Aggregator folds answer outcomes into per-concept and per-topic
// aggregates. It is the only writer of progress state.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator { return &Aggregator{store: store} }

// Record applies one outcome to both the concept and its parent topic,
// creating the rows lazily on first attempt.
func (a *Aggregator) Record(ctx context.Context, o Outcome) (ConceptProgress, TopicProgress, error) {
	cp, found, err := a.store.GetConcept(ctx, o.UserID, o.ConceptID)
	if err != nil {
		return ConceptProgress{}, TopicProgress{}, fmt.Errorf("load concept progress: %w", err)
	}
	if !found {
		cp = ConceptProgress{
			UserID:    o.UserID,
			ConceptID: o.ConceptID,
			TopicID:   o.TopicID,
			Level:     o.MinLevel,
		}
	}
	cp = applyToConcept(cp, o)
	if err := a.store.PutConcept(ctx, cp); err != nil {
		return ConceptProgress{}, TopicProgress{}, fmt.Errorf("save concept progress: %w", err)
	}

	tp, found, err := a.store.GetTopic(ctx, o.UserID, o.TopicID)
	if err != nil {
		return ConceptProgress{}, TopicProgress{}, fmt.Errorf("load topic progress: %w", err)
	}
	if !found {
		tp = TopicProgress{UserID: o.UserID, TopicID: o.TopicID}
	}
	tp = applyToTopic(tp, o)
	if err := a.store.PutTopic(ctx, tp); err != nil {
		return ConceptProgress{}, TopicProgress{}, fmt.Errorf("save topic progress: %w", err)
	}
	return cp, tp, nil
}

func applyToConcept(p ConceptProgress, o Outcome) ConceptProgress {
	p.Attempts++
	p.TimeSpentMs += o.TimeTaken.Milliseconds()
	p.XP += o.XP
	p.LastAttemptAt = o.At.UnixMilli()
	if p.Level < o.MinLevel {
		p.Level = o.MinLevel
	}
	if o.Correct {
		p.Correct++
		p.Streak++
		if p.Streak > p.BestStreak {
			p.BestStreak = p.Streak
		}
		if p.Streak >= escalateEvery && p.Streak%escalateEvery == 0 && p.Level < o.MaxLevel {
			p.Level++
		}
	} else {
		p.Streak = 0
		if p.Level > o.MinLevel {
			p.Level--
		}
	}
	p.Band = ComputeBand(p.Attempts, p.Correct, p.Streak)
	return p
}

func applyToTopic(p TopicProgress, o Outcome) TopicProgress {
	p.Attempts++
	p.TimeSpentMs += o.TimeTaken.Milliseconds()
	p.XP += o.XP
	p.LastAttemptAt = o.At.UnixMilli()
	if o.Correct {
		p.Correct++
		p.Streak++
		if p.Streak > p.BestStreak {
			p.BestStreak = p.Streak
		}
	} else {
		p.Streak = 0
	}
	p.Band = ComputeBand(p.Attempts, p.Correct, p.Streak)
	return p
}
