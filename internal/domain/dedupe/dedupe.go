// Package dedupe tracks already-processed attempt IDs so a resubmitted
// screening attempt is assessed at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen attempt IDs for at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an ID so the attempt can be retried. Used when an
	// attempt was recorded but failed to enter the pipeline, e.g. on queue
	// backpressure.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// entry is one element of the recency list.
type entry struct {
	id   string
	next *entry
}

func (e *entry) reset() {
	e.id = ""
	e.next = nil
}

// attemptDeduper keeps seen IDs in a map. In bounded mode a singly linked
// list ordered newest-first backs LIFO eviction, and entries are pooled; with
// maxSize <= 0 the map grows without limit.
type attemptDeduper struct {
	mu      sync.Mutex
	seen    map[string]*entry
	head    *entry
	maxSize int
	size    atomic.Int64
	pool    sync.Pool
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &attemptDeduper{
		maxSize: 50_000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*entry)
	if d.maxSize > 0 {
		d.pool = sync.Pool{New: func() any { return &entry{} }}
	}
	return d
}

func (d *attemptDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
		e := d.pool.Get().(*entry)
		e.id = id
		e.next = d.head
		d.head = e
		d.seen[id] = e
	} else {
		d.seen[id] = nil
	}
	d.size.Add(1)
	return false
}

func (d *attemptDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)

	if d.maxSize <= 0 {
		return
	}

	if d.head == e {
		d.head = e.next
	} else {
		for cur := d.head; cur != nil; cur = cur.next {
			if cur.next == e {
				cur.next = e.next
				break
			}
		}
	}
	e.reset()
	d.pool.Put(e)
}

// evictOldest drops the tail of the recency list. Caller holds d.mu.
func (d *attemptDeduper) evictOldest() {
	if d.head == nil {
		return
	}

	var prev *entry
	cur := d.head
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}

	if prev == nil {
		d.head = nil
	} else {
		prev.next = nil
	}
	delete(d.seen, cur.id)
	cur.reset()
	d.pool.Put(cur)
	d.size.Add(-1)
}

// Size returns the current number of recorded IDs.
func (d *attemptDeduper) Size() int64 {
	return d.size.Load()
}
