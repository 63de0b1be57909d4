package quiz

import "time"

// UnlimitedRemaining is the sentinel remaining time reported for sessions
// with no time budget.
const UnlimitedRemaining = 1000 * time.Hour

// ActiveDuration returns accumulated active time: closed spans plus the
// open span if the session is currently active. Paused spans never count.
func ActiveDuration(s *Session, now time.Time) time.Duration {
	d := time.Duration(s.ActiveMs) * time.Millisecond
	if s.Status == StatusActive && s.ResumedAt > 0 {
		if open := now.UnixMilli() - s.ResumedAt; open > 0 {
			d += time.Duration(open) * time.Millisecond
		}
	}
	return d
}

// RemainingSessionTime returns the budget minus accumulated active time,
// clamped at zero. Timing is session-wide: individual slots carry no
// deadline of their own.
func RemainingSessionTime(s *Session, now time.Time) time.Duration {
	budget := s.TimeMode.Budget()
	if budget == 0 {
		return UnlimitedRemaining
	}
	rem := budget - ActiveDuration(s, now)
	if rem < 0 {
		return 0
	}
	return rem
}

// Expired reports whether the session's budget is used up. Expiry is
// detected lazily on access; nothing pushes it.
func Expired(s *Session, now time.Time) bool {
	if s.TimeMode.Budget() == 0 {
		return false
	}
	return RemainingSessionTime(s, now) == 0
}
