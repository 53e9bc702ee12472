package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int) (*Limiter, *time.Time) {
	now := time.Date(2025, 12, 25, 12, 0, 0, 0, time.UTC)
	l := New(limit, 60*time.Second).WithClock(func() time.Time { return now })
	return l, &now
}

func TestAdmitUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(20)

	for i := 0; i < 20; i++ {
		assert.True(t, l.Admit(42), "request %d should be admitted", i)
	}
	assert.False(t, l.Admit(42), "request past the ceiling must be denied")
}

func TestWindowSlides(t *testing.T) {
	l, now := newTestLimiter(20)

	for i := 0; i < 20; i++ {
		l.Admit(42)
	}
	assert.False(t, l.Admit(42))

	// 61 seconds later every entry of the burst has aged out.
	*now = now.Add(61 * time.Second)
	assert.True(t, l.Admit(42))
}

func TestDeniedAttemptsExtendWindow(t *testing.T) {
	l, now := newTestLimiter(2)

	assert.True(t, l.Admit(7))
	assert.True(t, l.Admit(7))

	*now = now.Add(30 * time.Second)
	assert.False(t, l.Admit(7))

	// 61s after the admissions they have aged out, but the denied attempt
	// at +30s was recorded too and still occupies a slot.
	*now = now.Add(31 * time.Second)
	assert.True(t, l.Admit(7))
	assert.False(t, l.Admit(7))
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1)

	assert.True(t, l.Admit(1))
	assert.False(t, l.Admit(1))
	assert.True(t, l.Admit(2))
}
