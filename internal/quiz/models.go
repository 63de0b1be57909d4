package quiz

import "time"

// TimeMode is the session-wide time budget policy.
type TimeMode string

const (
	TimeModeUnlimited TimeMode = "unlimited"
	TimeMode10Min     TimeMode = "10min"
	TimeMode5Min      TimeMode = "5min"
	TimeMode3Min      TimeMode = "3min"
)

// Budget returns the active-time budget, or 0 for unlimited.
func (m TimeMode) Budget() time.Duration {
	switch m {
	case TimeMode10Min:
		return 10 * time.Minute
	case TimeMode5Min:
		return 5 * time.Minute
	case TimeMode3Min:
		return 3 * time.Minute
	default:
		return 0
	}
}

func (m TimeMode) Valid() bool {
	switch m {
	case TimeModeUnlimited, TimeMode10Min, TimeMode5Min, TimeMode3Min:
		return true
	}
	return false
}

// Status is the session lifecycle state.
type Status string

const (
	StatusCreated   Status = "created"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Scope is the curriculum slice a session draws questions from: one or
// more concepts within a topic.
type Scope struct {
	TopicID    string   `json:"topic_id"`
	ConceptIDs []string `json:"concept_ids"`
}

// Answer is the immutable record of one resolved slot. Skipped and
// timed-out slots are recorded as zero-XP answers, distinct from wrong.
type Answer struct {
	Response    string `json:"response,omitempty"`
	Correct     bool   `json:"correct"`
	TimeTakenMs int64  `json:"time_taken_ms"`
	XP          int    `json:"xp"`
	Skipped     bool   `json:"skipped,omitempty"`
	TimedOut    bool   `json:"timed_out,omitempty"`
	AnsweredAt  int64  `json:"answered_at"` // unix millis
}

// Slot is one question position in the session sequence.
type Slot struct {
	Index      int     `json:"index"`
	QuestionID string  `json:"question_id"`
	ConceptID  string  `json:"concept_id"`
	TopicID    string  `json:"topic_id"`
	Difficulty int     `json:"difficulty"`
	ServedAt   int64   `json:"served_at"` // unix millis
	Answer     *Answer `json:"answer,omitempty"`
}

// Session is the authoritative state of one practice run.
//
// Timing invariant: ActiveMs accumulates completed active spans; while the
// session is active, the span since ResumedAt is still open and is folded
// in on the next pause/end. ActiveMs never advances while paused.
type Session struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Scope     Scope    `json:"scope"`
	TimeMode  TimeMode `json:"time_mode"`
	Status    Status   `json:"status"`
	Slots     []Slot   `json:"slots"`
	Cursor    int      `json:"cursor"`
	CreatedAt int64    `json:"created_at"`           // unix millis
	StartedAt int64    `json:"started_at,omitempty"` // unix millis, 0 until started
	ResumedAt int64    `json:"resumed_at,omitempty"` // start of the open active span
	PausedAt  int64    `json:"paused_at,omitempty"`  // unix millis, 0 unless paused
	ActiveMs  int64    `json:"active_ms"`            // closed active spans only
	EndedAt   int64    `json:"ended_at,omitempty"`
}

// CurrentSlot returns the slot at the cursor, or nil when none is open.
func (s *Session) CurrentSlot() *Slot {
	if s.Cursor < 0 || s.Cursor >= len(s.Slots) {
		return nil
	}
	return &s.Slots[s.Cursor]
}

// ServedQuestionIDs returns the IDs of every question assigned so far.
func (s *Session) ServedQuestionIDs() map[string]bool {
	out := make(map[string]bool, len(s.Slots))
	for i := range s.Slots {
		out[s.Slots[i].QuestionID] = true
	}
	return out
}

// AnsweredCount returns the number of resolved slots.
func (s *Session) AnsweredCount() int {
	n := 0
	for i := range s.Slots {
		if s.Slots[i].Answer != nil {
			n++
		}
	}
	return n
}
