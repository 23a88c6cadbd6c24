package store

import (
	"time"

	"github.com/jffjs/kyev/internal/metrics"
)

// Scheduler arms one-shot background timers for keyed expirations. A fired
// timer re-reads the key's current TTL before removing anything, so a
// stale timer left over from a re-arm is harmless (see fire).
type Scheduler struct {
	ks *Keyspace
}

func newScheduler(ks *Keyspace) *Scheduler {
	return &Scheduler{ks: ks}
}

// schedule arms a timer that fires at (or immediately after) at and
// returns its handle so the caller can cancel it on replacement.
func (sch *Scheduler) schedule(key string, at time.Time) *time.Timer {
	d := time.Until(at)
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, func() { sch.fire(key) })
}

// fire runs on timer expiry. It re-reads the key's TTL under the write
// lock: a positive remaining TTL means the key was re-armed since this
// timer was scheduled, NoExpiration means the TTL was explicitly cleared,
// and KeyNotFound means someone already removed it. The key is removed only
// when the whole-second remaining TTL (floored, as TTL reports it) is zero
// or negative; a re-armed deadline less than one second away also counts
// as zero and is removed.
func (sch *Scheduler) fire(key string) {
	sch.ks.Lock()
	defer sch.ks.Unlock()

	res := sch.ks.Raw().TTL(key)
	if res.Status == Expires && res.Seconds <= 0 {
		sch.ks.Raw().Remove(key)
		metrics.KeysExpired.Inc()
	}
}
