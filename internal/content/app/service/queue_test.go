package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEnqueueDedupesByURL(t *testing.T) {
	q := newReconcileQueue(10)

	q.Enqueue("https://a", "timeout")
	q.Enqueue("https://a", "connection reset")
	q.Enqueue("https://b", "timeout")

	assert.Equal(t, 2, q.Len())

	entries := q.Snapshot()
	require.Len(t, entries, 2)
	assert.Equal(t, "https://a", entries[0].URL)
	assert.Equal(t, "connection reset", entries[0].LastError)
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := newReconcileQueue(3)

	assert.False(t, q.Enqueue("https://a", "e"))
	assert.False(t, q.Enqueue("https://b", "e"))
	assert.False(t, q.Enqueue("https://c", "e"))
	assert.True(t, q.Enqueue("https://d", "e"))

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, uint64(1), q.Drops())

	entries := q.Snapshot()
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		urls = append(urls, e.URL)
	}
	assert.Equal(t, []string{"https://b", "https://c", "https://d"}, urls)
}

func TestQueueRemove(t *testing.T) {
	q := newReconcileQueue(10)
	q.Enqueue("https://a", "e")
	q.Enqueue("https://b", "e")

	q.Remove("https://a")
	assert.Equal(t, 1, q.Len())

	// Removing an absent url is a no-op.
	q.Remove("https://a")
	assert.Equal(t, 1, q.Len())

	// The index map must stay consistent after removal.
	q.Remove("https://b")
	assert.Equal(t, 0, q.Len())
}

func TestQueueFailCountsAttempts(t *testing.T) {
	q := newReconcileQueue(10)
	q.Enqueue("https://a", "first")

	assert.Equal(t, 1, q.Fail("https://a", "second"))
	assert.Equal(t, 2, q.Fail("https://a", "third"))
	assert.Equal(t, 0, q.Fail("https://missing", "x"))

	entries := q.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Attempts)
	assert.Equal(t, "third", entries[0].LastError)
}

func TestQueueWaitUntilEmpty(t *testing.T) {
	q := newReconcileQueue(10)
	assert.True(t, q.WaitUntilEmpty(10*time.Millisecond))

	q.Enqueue("https://a", "e")

	done := make(chan bool, 1)
	go func() {
		done <- q.WaitUntilEmpty(time.Second)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Remove("https://a")

	select {
	case drained := <-done:
		assert.True(t, drained)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitUntilEmpty did not return after drain")
	}
}

func TestQueueWaitUntilEmptyTimesOut(t *testing.T) {
	q := newReconcileQueue(10)
	q.Enqueue("https://a", "e")

	start := time.Now()
	assert.False(t, q.WaitUntilEmpty(20*time.Millisecond))
	assert.Less(t, time.Since(start), time.Second)
}

func TestQueueClosedRejectsEnqueue(t *testing.T) {
	q := newReconcileQueue(10)
	q.Close()
	q.Enqueue("https://a", "e")
	assert.Equal(t, 0, q.Len())
}
