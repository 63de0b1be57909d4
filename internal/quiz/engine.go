package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/studyarc/studyarc-api/internal/bank"
	"github.com/studyarc/studyarc-api/internal/progress"
)

// Events receives session lifecycle events. Implemented by the event log;
// a no-op sink is installed by default.
type Events interface {
	Append(ctx context.Context, typ, key, data string) error
}

type noopEvents struct{}

func (noopEvents) Append(context.Context, string, string, string) error { return nil }

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock injects the time source. Tests use this to drive expiry.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithRand injects the selector's randomness source.
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// WithEvents installs an event sink for lifecycle events.
func WithEvents(ev Events) EngineOption {
	return func(e *Engine) { e.events = ev }
}

// WithScorer overrides the default scorer.
func WithScorer(s *Scorer) EngineOption {
	return func(e *Engine) { e.scorer = s }
}

// Engine is the session state machine. It is the only component that
// mutates a session's authoritative state, and it serializes all mutating
// operations per session with a keyed mutex.
type Engine struct {
	store    Store
	bank     bank.Bank
	progress progress.Store
	agg      *progress.Aggregator
	scorer   *Scorer
	events   Events
	now      func() time.Time
	rng      *rand.Rand
	selector *Selector
	locks    *sessionLocks
}

func NewEngine(store Store, b bank.Bank, progStore progress.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		bank:     b,
		progress: progStore,
		agg:      progress.NewAggregator(progStore),
		scorer:   NewScorer(),
		events:   noopEvents{},
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		locks:    newSessionLocks(),
	}
	for _, o := range opts {
		o(e)
	}
	e.selector = NewSelector(b, e.rng)
	return e
}

// Create allocates a session in created state. Slots are allocated lazily:
// the first question is chosen on Start, not here. The single-open-session
// rule is enforced atomically by the store.
func (e *Engine) Create(ctx context.Context, userID string, scope Scope, mode TimeMode) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrValidation)
	}
	if scope.TopicID == "" || len(scope.ConceptIDs) == 0 {
		return nil, fmt.Errorf("%w: scope needs a topic and at least one concept", ErrValidation)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown time mode %q", ErrValidation, string(mode))
	}
	for _, id := range scope.ConceptIDs {
		if _, err := e.bank.Concept(ctx, id); err != nil {
			return nil, fmt.Errorf("%w: unknown concept %q", ErrValidation, id)
		}
	}
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Scope:     scope,
		TimeMode:  mode,
		Status:    StatusCreated,
		CreatedAt: e.now().UnixMilli(),
	}
	if err := e.store.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	e.emit(ctx, "SessionCreated", s)
	return s, nil
}

// Start transitions created → active and serves the first slot.
func (e *Engine) Start(ctx context.Context, sessionID, userID string) (*Session, error) {
	defer e.locks.lock(sessionID)()
	s, err := e.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusCreated {
		return nil, fmt.Errorf("%w: cannot start a %s session", ErrInvalidStateTransition, s.Status)
	}
	now := e.now()
	s.Status = StatusActive
	s.StartedAt = now.UnixMilli()
	s.ResumedAt = now.UnixMilli()

	if err := e.serveNext(ctx, s, now); err != nil {
		return nil, err
	}
	if err := e.store.UpdateSession(ctx, s); err != nil {
		return nil, err
	}
	// An empty scope settles the session immediately; with nothing
	// answered that is abandoned, not started.
	if s.Status.Terminal() {
		e.emit(ctx, "SessionAbandoned", s)
	} else {
		e.emit(ctx, "SessionStarted", s)
	}
	return s, nil
}

// CurrentSlot returns the open slot and its (answer-key-stripped)
// question. Expiry is reconciled first, so this can complete the session;
// in that case the returned slot and question are nil.
func (e *Engine) CurrentSlot(ctx context.Context, sessionID, userID string) (*Session, *Slot, *bank.Question, error) {
	defer e.locks.lock(sessionID)()
	s, err := e.load(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if s.Status != StatusActive {
		return nil, nil, nil, fmt.Errorf("%w: session is %s", ErrInvalidStateTransition, s.Status)
	}
	now := e.now()
	if Expired(s, now) {
		if err := e.expire(ctx, s, now); err != nil {
			return nil, nil, nil, err
		}
		return s, nil, nil, nil
	}
	slot := s.CurrentSlot()
	if slot == nil {
		// Cursor ran past the slots; nothing left to serve.
		if err := e.finalize(ctx, s, now); err != nil {
			return nil, nil, nil, err
		}
		return s, nil, nil, nil
	}
	q, err := e.bank.Question(ctx, slot.QuestionID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load question %s: %w", slot.QuestionID, err)
	}
	sq := q.Sanitized()
	return s, slot, &sq, nil
}

// SubmitAnswer grades the response for the slot at slotIndex, which must
// be the cursor, then advances and serves the next slot or completes the
// session when scope or time runs out.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID, userID string, slotIndex int, response string) (*Session, *Answer, error) {
	return e.resolveSlot(ctx, sessionID, userID, &slotIndex, response, false)
}

// Skip records the current slot as an unanswered, zero-XP, streak-breaking
// attempt and advances exactly like a wrong answer.
func (e *Engine) Skip(ctx context.Context, sessionID, userID string) (*Session, *Answer, error) {
	return e.resolveSlot(ctx, sessionID, userID, nil, "", true)
}

func (e *Engine) resolveSlot(ctx context.Context, sessionID, userID string, slotIndex *int, response string, skipped bool) (*Session, *Answer, error) {
	defer e.locks.lock(sessionID)()
	s, err := e.load(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	if s.Status != StatusActive {
		return nil, nil, fmt.Errorf("%w: session is %s", ErrInvalidStateTransition, s.Status)
	}
	now := e.now()
	if Expired(s, now) {
		if err := e.expire(ctx, s, now); err != nil {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: session time is up", ErrInvalidStateTransition)
	}
	if slotIndex != nil && *slotIndex != s.Cursor {
		return nil, nil, fmt.Errorf("%w: got slot %d, current is %d", ErrStaleSlot, *slotIndex, s.Cursor)
	}
	slot := s.CurrentSlot()
	if slot == nil {
		return nil, nil, fmt.Errorf("%w: no open slot", ErrStaleSlot)
	}

	q, err := e.bank.Question(ctx, slot.QuestionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load question %s: %w", slot.QuestionID, err)
	}
	timeTaken := time.Duration(now.UnixMilli()-slot.ServedAt) * time.Millisecond
	res := e.scorer.Score(q, response, timeTaken, false, skipped)
	ans := &Answer{
		Response:    response,
		Correct:     res.Correct,
		TimeTakenMs: timeTaken.Milliseconds(),
		XP:          res.XP,
		Skipped:     skipped,
		AnsweredAt:  now.UnixMilli(),
	}
	slot.Answer = ans
	s.Cursor++

	if err := e.recordOutcome(ctx, s, slot, now); err != nil {
		return nil, nil, err
	}
	if err := e.serveNext(ctx, s, now); err != nil {
		return nil, nil, err
	}
	if err := e.store.UpdateSession(ctx, s); err != nil {
		return nil, nil, err
	}
	if skipped {
		e.emit(ctx, "SlotSkipped", s)
	} else {
		e.emit(ctx, "AnswerSubmitted", s)
	}
	if s.Status == StatusCompleted {
		e.emit(ctx, "SessionCompleted", s)
	}
	return s, ans, nil
}

// Pause freezes active time. Pausing a session with no time left is
// rejected; expiry is reconciled instead.
func (e *Engine) Pause(ctx context.Context, sessionID, userID string) (*Session, error) {
	defer e.locks.lock(sessionID)()
	s, err := e.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusActive {
		return nil, fmt.Errorf("%w: cannot pause a %s session", ErrInvalidStateTransition, s.Status)
	}
	now := e.now()
	if Expired(s, now) {
		if err := e.expire(ctx, s, now); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: session time is up", ErrInvalidStateTransition)
	}
	s.ActiveMs += now.UnixMilli() - s.ResumedAt
	s.ResumedAt = 0
	s.PausedAt = now.UnixMilli()
	s.Status = StatusPaused
	if err := e.store.UpdateSession(ctx, s); err != nil {
		return nil, err
	}
	e.emit(ctx, "SessionPaused", s)
	return s, nil
}

// Resume reopens the active span. The paused interval is discarded, so
// remaining time depends only on accumulated active duration.
func (e *Engine) Resume(ctx context.Context, sessionID, userID string) (*Session, error) {
	defer e.locks.lock(sessionID)()
	s, err := e.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusPaused {
		return nil, fmt.Errorf("%w: cannot resume a %s session", ErrInvalidStateTransition, s.Status)
	}
	now := e.now()
	s.Status = StatusActive
	s.ResumedAt = now.UnixMilli()
	s.PausedAt = 0
	if err := e.store.UpdateSession(ctx, s); err != nil {
		return nil, err
	}
	e.emit(ctx, "SessionResumed", s)
	return s, nil
}

// End finalizes from any non-terminal state: completed when at least one
// slot was answered, abandoned otherwise. Ending a terminal session is
// idempotent and returns the existing summary.
func (e *Engine) End(ctx context.Context, sessionID, userID string) (*Session, *Summary, error) {
	defer e.locks.lock(sessionID)()
	s, err := e.load(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	now := e.now()
	if !s.Status.Terminal() {
		if err := e.finalize(ctx, s, now); err != nil {
			return nil, nil, err
		}
	}
	sum, err := e.buildSummary(ctx, s, now)
	if err != nil {
		return nil, nil, err
	}
	return s, sum, nil
}

// Summary is a pure read, available for in-progress and terminal sessions.
func (e *Engine) Summary(ctx context.Context, sessionID, userID string) (*Summary, error) {
	s, err := e.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return e.buildSummary(ctx, s, e.now())
}

// Get returns the session, owner-checked.
func (e *Engine) Get(ctx context.Context, sessionID, userID string) (*Session, error) {
	return e.load(ctx, sessionID, userID)
}

// ListSessions returns the user's sessions, newest first.
func (e *Engine) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return e.store.ListSessions(ctx, userID, limit, offset)
}

// ---- internals ----

// load fetches the session and enforces ownership. A session owned by
// someone else reads as not found.
func (e *Engine) load(ctx context.Context, sessionID, userID string) (*Session, error) {
	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// serveNext selects and appends the next slot, or completes the session
// when the scope is exhausted.
func (e *Engine) serveNext(ctx context.Context, s *Session, now time.Time) error {
	states, err := e.conceptStates(ctx, s)
	if err != nil {
		return err
	}
	q, err := e.selector.Next(ctx, s.Scope, s.ServedQuestionIDs(), states)
	if err != nil {
		if err == errScopeExhausted {
			e.close(s, now)
			return nil
		}
		return err
	}
	s.Slots = append(s.Slots, Slot{
		Index:      len(s.Slots),
		QuestionID: q.ID,
		ConceptID:  q.ConceptID,
		TopicID:    q.TopicID,
		Difficulty: q.Difficulty,
		ServedAt:   now.UnixMilli(),
	})
	return nil
}

func (e *Engine) conceptStates(ctx context.Context, s *Session) (map[string]ConceptState, error) {
	states := make(map[string]ConceptState, len(s.Scope.ConceptIDs))
	for _, id := range s.Scope.ConceptIDs {
		p, found, err := e.progress.GetConcept(ctx, s.UserID, id)
		if err != nil {
			return nil, fmt.Errorf("read progress for %s: %w", id, err)
		}
		if !found {
			continue
		}
		states[id] = ConceptState{
			Accuracy: p.Accuracy(),
			Streak:   p.Streak,
			Attempts: p.Attempts,
			Level:    p.Level,
		}
	}
	return states, nil
}

// recordOutcome feeds the slot's answer into the proficiency aggregates.
func (e *Engine) recordOutcome(ctx context.Context, s *Session, slot *Slot, now time.Time) error {
	c, err := e.bank.Concept(ctx, slot.ConceptID)
	if err != nil {
		return fmt.Errorf("look up concept %s: %w", slot.ConceptID, err)
	}
	a := slot.Answer
	_, _, err = e.agg.Record(ctx, progress.Outcome{
		UserID:    s.UserID,
		ConceptID: slot.ConceptID,
		TopicID:   slot.TopicID,
		Correct:   a.Correct,
		Skipped:   a.Skipped,
		TimedOut:  a.TimedOut,
		TimeTaken: time.Duration(a.TimeTakenMs) * time.Millisecond,
		XP:        a.XP,
		MinLevel:  c.MinDifficulty,
		MaxLevel:  c.MaxDifficulty,
		At:        now,
	})
	return err
}

// expire records a timed-out answer for the open slot, then completes the
// session and persists it.
func (e *Engine) expire(ctx context.Context, s *Session, now time.Time) error {
	if slot := s.CurrentSlot(); slot != nil && slot.Answer == nil {
		slot.Answer = &Answer{
			TimedOut:    true,
			TimeTakenMs: now.UnixMilli() - slot.ServedAt,
			AnsweredAt:  now.UnixMilli(),
		}
		s.Cursor++
		if err := e.recordOutcome(ctx, s, slot, now); err != nil {
			return err
		}
	}
	return e.finalize(ctx, s, now)
}

// finalize closes the active span, settles the terminal status and
// persists the session.
func (e *Engine) finalize(ctx context.Context, s *Session, now time.Time) error {
	e.close(s, now)
	if err := e.store.UpdateSession(ctx, s); err != nil {
		return err
	}
	if s.Status == StatusCompleted {
		e.emit(ctx, "SessionCompleted", s)
	} else {
		e.emit(ctx, "SessionAbandoned", s)
	}
	return nil
}

// close settles terminal status in memory without persisting.
func (e *Engine) close(s *Session, now time.Time) {
	if s.Status == StatusActive && s.ResumedAt > 0 {
		s.ActiveMs += now.UnixMilli() - s.ResumedAt
		s.ResumedAt = 0
	}
	s.PausedAt = 0
	if s.AnsweredCount() > 0 {
		s.Status = StatusCompleted
	} else {
		s.Status = StatusAbandoned
	}
	s.EndedAt = now.UnixMilli()
}

func (e *Engine) emit(ctx context.Context, typ string, s *Session) {
	data, _ := json.Marshal(map[string]any{
		"session_id": s.ID,
		"user_id":    s.UserID,
		"status":     s.Status,
		"cursor":     s.Cursor,
		"active_ms":  s.ActiveMs,
	})
	// Event append is best-effort; the session write already succeeded.
	_ = e.events.Append(ctx, typ, s.ID, string(data))
}
