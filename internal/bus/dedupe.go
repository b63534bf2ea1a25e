package bus

import (
	"sync"
	"time"
)

// DedupeCache remembers recently seen message IDs so redelivered queue
// messages can be dropped. Entries expire after a TTL; a hard cap bounds
// memory when the queue is busy.
type DedupeCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]time.Time
}

// NewDedupeCache creates a cache holding at most max IDs for ttl each.
func NewDedupeCache(ttl time.Duration, max int) *DedupeCache {
	return &DedupeCache{
		ttl:     ttl,
		max:     max,
		entries: make(map[string]time.Time),
	}
}

// Seen records id and reports whether it was already present (and fresh).
func (d *DedupeCache) Seen(id string) bool {
	if id == "" {
		return false
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.entries[id]; ok && now.Sub(t) < d.ttl {
		return true
	}

	if len(d.entries) >= d.max {
		d.evictExpired(now)
		// Still full after expiry sweep: drop the oldest entry.
		if len(d.entries) >= d.max {
			var oldestID string
			var oldest time.Time
			for k, t := range d.entries {
				if oldestID == "" || t.Before(oldest) {
					oldestID, oldest = k, t
				}
			}
			delete(d.entries, oldestID)
		}
	}

	d.entries[id] = now
	return false
}

func (d *DedupeCache) evictExpired(now time.Time) {
	for k, t := range d.entries {
		if now.Sub(t) >= d.ttl {
			delete(d.entries, k)
		}
	}
}
