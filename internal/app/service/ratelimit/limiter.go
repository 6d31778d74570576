// Package ratelimit guards the free clause-preview endpoint with two
// independent sliding windows: a tight per-user cap and a looser per-IP cap
// that blunts identity-rotation abuse.
package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/fx"

	cfgpkg "github.com/leaselens/leaselens/pkg/config"
)

// Scope labels for denials, used in logs and metrics.
const (
	ScopeUser = "user"
	ScopeIP   = "ip"
)

type Limiter struct {
	mu       sync.Mutex
	cfg      cfgpkg.RateLimitConfig
	userHits map[string][]time.Time
	ipHits   map[string][]time.Time
	now      func() time.Time
}

func New(cfg *cfgpkg.Config) *Limiter {
	return &Limiter{
		cfg:      cfg.RateLimit,
		userHits: make(map[string][]time.Time),
		ipHits:   make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Check decides one attempt. A denied attempt is not recorded, so being
// denied never pushes the allowance further away. Returns whether the
// attempt is allowed, the user's remaining quota after this attempt, and
// the denying scope ("" when allowed).
//
// An IP-cap denial still reports the user's true remaining count: the user
// did not spend anything, and showing zero would misstate their quota.
func (l *Limiter) Check(userID, ip string) (allowed bool, remaining int, deniedScope string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.cfg.Window())
	l.userHits[userID] = prune(l.userHits[userID], cutoff)
	l.ipHits[ip] = prune(l.ipHits[ip], cutoff)

	userCount := len(l.userHits[userID])
	if userCount >= l.cfg.UserLimit {
		return false, 0, ScopeUser
	}
	if len(l.ipHits[ip]) >= l.cfg.IPLimit {
		return false, floorZero(l.cfg.UserLimit - userCount), ScopeIP
	}

	l.userHits[userID] = append(l.userHits[userID], now)
	l.ipHits[ip] = append(l.ipHits[ip], now)
	return true, floorZero(l.cfg.UserLimit - userCount - 1), ""
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

var Module = fx.Options(
	fx.Provide(New),
)
