package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeModeBudget(t *testing.T) {
	assert.Equal(t, time.Duration(0), TimeModeUnlimited.Budget())
	assert.Equal(t, 10*time.Minute, TimeMode10Min.Budget())
	assert.Equal(t, 5*time.Minute, TimeMode5Min.Budget())
	assert.Equal(t, 3*time.Minute, TimeMode3Min.Budget())
	assert.False(t, TimeMode("90s").Valid())
	assert.True(t, TimeMode3Min.Valid())
}

func TestActiveDurationExcludesPauses(t *testing.T) {
	base := time.UnixMilli(1_000_000)

	// Two closed spans of 60s total, currently paused.
	s := &Session{
		Status:   StatusPaused,
		TimeMode: TimeMode5Min,
		ActiveMs: 60_000,
		PausedAt: base.UnixMilli(),
	}
	assert.Equal(t, time.Minute, ActiveDuration(s, base.Add(time.Hour)),
		"paused time never accrues, however long the pause")

	// Active with an open span of 30s.
	s = &Session{
		Status:    StatusActive,
		TimeMode:  TimeMode5Min,
		ActiveMs:  60_000,
		ResumedAt: base.UnixMilli(),
	}
	assert.Equal(t, 90*time.Second, ActiveDuration(s, base.Add(30*time.Second)))
}

func TestRemainingSessionTime(t *testing.T) {
	base := time.UnixMilli(1_000_000)
	s := &Session{
		Status:    StatusActive,
		TimeMode:  TimeMode3Min,
		ResumedAt: base.UnixMilli(),
	}
	assert.Equal(t, 3*time.Minute, RemainingSessionTime(s, base))
	assert.Equal(t, 2*time.Minute, RemainingSessionTime(s, base.Add(time.Minute)))
	assert.Equal(t, time.Duration(0), RemainingSessionTime(s, base.Add(time.Hour)),
		"remaining time clamps at zero, never negative")
	assert.False(t, Expired(s, base.Add(179*time.Second)))
	assert.True(t, Expired(s, base.Add(3*time.Minute)))
}

func TestUnlimitedNeverExpires(t *testing.T) {
	base := time.UnixMilli(1_000_000)
	s := &Session{
		Status:    StatusActive,
		TimeMode:  TimeModeUnlimited,
		ResumedAt: base.UnixMilli(),
	}
	assert.Equal(t, UnlimitedRemaining, RemainingSessionTime(s, base.Add(1000*time.Hour)))
	assert.False(t, Expired(s, base.Add(1000*time.Hour)))
}

func TestPauseResumeCycleKeepsRemainingStable(t *testing.T) {
	base := time.UnixMilli(1_000_000)
	s := &Session{
		Status:    StatusActive,
		TimeMode:  TimeMode10Min,
		ResumedAt: base.UnixMilli(),
	}

	// 2 minutes active, then pause.
	now := base.Add(2 * time.Minute)
	s.ActiveMs += now.UnixMilli() - s.ResumedAt
	s.ResumedAt = 0
	s.PausedAt = now.UnixMilli()
	s.Status = StatusPaused

	remAtPause := RemainingSessionTime(s, now)
	assert.Equal(t, 8*time.Minute, remAtPause)

	// Resume 45 minutes later; remaining is unchanged.
	now = now.Add(45 * time.Minute)
	s.Status = StatusActive
	s.ResumedAt = now.UnixMilli()
	s.PausedAt = 0
	assert.Equal(t, remAtPause, RemainingSessionTime(s, now))
}
