package env

import "sync"

// Ring is a fixed-capacity circular buffer of samples. Pushing past the
// capacity silently evicts the oldest entry. Arrival order is preserved;
// snapshots are returned newest first.
type Ring struct {
	mu   sync.Mutex
	buf  []Sample
	head int // next write slot
	size int
}

// NewRing creates a ring holding at most capacity samples.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]Sample, capacity)}
}

// PushFront inserts a sample, evicting the oldest when full.
func (r *Ring) PushFront(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.head] = s
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// Len returns the number of samples currently held.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Snapshot returns up to limit samples, newest first, as an independent copy
// safe to hand to concurrent readers. A non-positive limit returns them all.
func (r *Ring) Snapshot(limit int) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Sample, n)
	c := len(r.buf)
	for i := 0; i < n; i++ {
		out[i] = r.buf[(r.head-1-i+2*c)%c]
	}
	return out
}
