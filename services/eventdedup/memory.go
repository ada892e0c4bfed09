package eventdedup

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long an event id is remembered
const DefaultTTL = time.Hour

// MemoryDeduplicator remembers event ids in process memory for ttl
type MemoryDeduplicator struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryDeduplicator(ttl time.Duration) *MemoryDeduplicator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryDeduplicator{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// FirstSeen records eventID and reports whether it was not seen within ttl
func (d *MemoryDeduplicator) FirstSeen(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, seenAt := range d.seen {
		if now.Sub(seenAt) >= d.ttl {
			delete(d.seen, id)
		}
	}

	if _, exists := d.seen[eventID]; exists {
		return false, nil
	}
	d.seen[eventID] = now
	return true, nil
}
