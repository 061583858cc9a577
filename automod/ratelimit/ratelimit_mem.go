package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultSweepEvery is how many Admit calls pass between sweeps of idle clients.
const DefaultSweepEvery = 1024

// In-process limiter. Each client's read-prune-append runs inside the map's per-key critical section, so concurrent requests from one client can't double-admit, while different clients never contend on a global lock.
//
// Clients whose whole window has expired are dropped by Sweep, which Admit runs every SweepEvery calls, so the map only holds clients seen within the last window (plus at most one sweep interval of stragglers).
type MemLimiter struct {
	Ceiling int
	Window  time.Duration
	// clock, overridable for tests
	Now        func() time.Time
	SweepEvery uint64

	windows *xsync.MapOf[string, []time.Time]
	calls   atomic.Uint64
}

var _ Limiter = (*MemLimiter)(nil)

func NewMemLimiter(ceiling int, window time.Duration) *MemLimiter {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemLimiter{
		Ceiling:    ceiling,
		Window:     window,
		Now:        time.Now,
		SweepEvery: DefaultSweepEvery,
		windows:    xsync.NewMapOf[string, []time.Time](),
	}
}

func (l *MemLimiter) Admit(ctx context.Context, clientID string) bool {
	now := l.Now()
	cutoff := now.Add(-l.Window)
	admitted := false

	l.windows.Compute(clientKey(clientID), func(stamps []time.Time, loaded bool) ([]time.Time, bool) {
		// timestamps are appended in order, so everything expired is a prefix
		i := 0
		for i < len(stamps) && !stamps[i].After(cutoff) {
			i++
		}
		stamps = stamps[i:]
		if len(stamps) >= l.Ceiling {
			return stamps, false
		}
		admitted = true
		return append(stamps, now), false
	})

	if !admitted {
		rateLimitedCount.WithLabelValues("mem").Inc()
	}
	if l.SweepEvery > 0 && l.calls.Add(1)%l.SweepEvery == 0 {
		l.Sweep()
	}
	return admitted
}

// Drops clients with no request inside the current window. Returns how many were removed.
func (l *MemLimiter) Sweep() int {
	cutoff := l.Now().Add(-l.Window)
	removed := 0
	l.windows.Range(func(key string, _ []time.Time) bool {
		// re-checked under the key's lock, in case the client came back since Range read it
		l.windows.Compute(key, func(stamps []time.Time, loaded bool) ([]time.Time, bool) {
			if !loaded {
				return stamps, true
			}
			if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
				removed++
				return nil, true
			}
			return stamps, false
		})
		return true
	})
	return removed
}

// Number of tracked client identities.
func (l *MemLimiter) Clients() int {
	return l.windows.Size()
}
