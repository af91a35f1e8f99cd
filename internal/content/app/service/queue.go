package service

import (
	"sync"
	"time"
)

// reconcileEntry is one url awaiting search index repair.
type reconcileEntry struct {
	URL        string
	Attempts   int
	LastError  string
	EnqueuedAt time.Time
}

// reconcileQueue is the bounded buffer between foreground writers and the
// background reconciler. When full, the oldest entry is dropped and counted;
// bounded lag is preferred over unbounded memory. One entry per url.
type reconcileQueue struct {
	mu   sync.Mutex
	cond *sync.Cond

	entries []reconcileEntry
	byURL   map[string]int
	max     int
	drops   uint64
	closed  bool
}

func newReconcileQueue(max int) *reconcileQueue {
	if max <= 0 {
		max = 10000
	}
	q := &reconcileQueue{
		byURL: make(map[string]int),
		max:   max,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue registers url for repair and reports whether a full queue had to
// drop its oldest entry to make room. A url already queued has its error
// refreshed instead of being duplicated.
func (q *reconcileQueue) Enqueue(url, lastError string) (dropped bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if i, ok := q.byURL[url]; ok {
		q.entries[i].LastError = lastError
		return false
	}

	if len(q.entries) >= q.max {
		oldest := q.entries[0]
		q.entries = q.entries[1:]
		delete(q.byURL, oldest.URL)
		q.drops++
		dropped = true
		q.reindexLocked()
	}

	q.entries = append(q.entries, reconcileEntry{
		URL:        url,
		LastError:  lastError,
		EnqueuedAt: time.Now(),
	})
	q.byURL[url] = len(q.entries) - 1
	q.cond.Signal()
	return dropped
}

// Snapshot copies the current entries for one reconciler pass.
func (q *reconcileQueue) Snapshot() []reconcileEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]reconcileEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Remove drops url from the queue after a successful repair.
func (q *reconcileQueue) Remove(url string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i, ok := q.byURL[url]
	if !ok {
		return
	}
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	delete(q.byURL, url)
	q.reindexLocked()

	if len(q.entries) == 0 {
		q.cond.Broadcast()
	}
}

// Fail records another failed attempt for url and returns the new count.
func (q *reconcileQueue) Fail(url, lastError string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	i, ok := q.byURL[url]
	if !ok {
		return 0
	}
	q.entries[i].Attempts++
	q.entries[i].LastError = lastError
	return q.entries[i].Attempts
}

// Len returns the current queue depth.
func (q *reconcileQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Drops returns the number of entries dropped because the queue was full.
func (q *reconcileQueue) Drops() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.drops
}

// WaitUntilEmpty blocks until the queue drains or the grace period expires.
// Used during shutdown so in-flight repairs get a chance to land.
func (q *reconcileQueue) WaitUntilEmpty(grace time.Duration) bool {
	deadline := time.Now().Add(grace)

	timer := time.AfterFunc(grace, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.entries) > 0 && !q.closed && time.Now().Before(deadline) {
		q.cond.Wait()
	}
	return len(q.entries) == 0
}

// Close stops accepting entries and wakes all waiters.
func (q *reconcileQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *reconcileQueue) reindexLocked() {
	for i := range q.entries {
		q.byURL[q.entries[i].URL] = i
	}
}
