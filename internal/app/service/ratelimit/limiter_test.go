package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/leaselens/leaselens/pkg/config"
)

func newTestLimiter() *Limiter {
	return New(&cfgpkg.Config{
		RateLimit: cfgpkg.RateLimitConfig{UserLimit: 3, IPLimit: 20, WindowHours: 24},
	})
}

func TestUserCap(t *testing.T) {
	l := newTestLimiter()

	for i := 0; i < 3; i++ {
		allowed, remaining, scope := l.Check("u1", "1.2.3.4")
		require.True(t, allowed, "attempt %d", i)
		assert.Equal(t, 2-i, remaining)
		assert.Empty(t, scope)
	}

	allowed, remaining, scope := l.Check("u1", "1.2.3.4")
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.Equal(t, ScopeUser, scope)
}

func TestDenialIsNotRecorded(t *testing.T) {
	l := newTestLimiter()
	base := time.Now()
	l.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		allowed, _, _ := l.Check("u1", "1.2.3.4")
		require.True(t, allowed)
	}
	for i := 0; i < 10; i++ {
		allowed, _, _ := l.Check("u1", "1.2.3.4")
		require.False(t, allowed)
	}

	// One second past the window the original three attempts expire all at
	// once; the denied attempts left no trace.
	l.now = func() time.Time { return base.Add(24*time.Hour + time.Second) }
	allowed, remaining, _ := l.Check("u1", "1.2.3.4")
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
}

func TestIPCapReportsTrueUserRemaining(t *testing.T) {
	l := newTestLimiter()

	// 20 distinct users exhaust the IP cap.
	for i := 0; i < 20; i++ {
		allowed, _, _ := l.Check(fmt.Sprintf("u%d", i), "1.2.3.4")
		require.True(t, allowed)
	}

	allowed, remaining, scope := l.Check("fresh-user", "1.2.3.4")
	assert.False(t, allowed)
	assert.Equal(t, ScopeIP, scope)
	assert.Equal(t, 3, remaining)
}

func TestWindowsAreIndependentPerKey(t *testing.T) {
	l := newTestLimiter()

	for i := 0; i < 3; i++ {
		allowed, _, _ := l.Check("u1", "1.2.3.4")
		require.True(t, allowed)
	}

	// Another user on another IP is unaffected.
	allowed, remaining, _ := l.Check("u2", "5.6.7.8")
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
}

func TestSlidingExpiry(t *testing.T) {
	l := newTestLimiter()
	base := time.Now()

	l.now = func() time.Time { return base }
	_, _, _ = l.Check("u1", "1.2.3.4")

	l.now = func() time.Time { return base.Add(12 * time.Hour) }
	_, _, _ = l.Check("u1", "1.2.3.4")
	allowed, _, _ := l.Check("u1", "1.2.3.4")
	require.True(t, allowed)

	// At base+24h+1s only the first attempt has aged out.
	l.now = func() time.Time { return base.Add(24*time.Hour + time.Second) }
	allowed, remaining, _ := l.Check("u1", "1.2.3.4")
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, scope := l.Check("u1", "1.2.3.4")
	assert.False(t, allowed)
	assert.Equal(t, ScopeUser, scope)
}
