package message

import (
	"sort"
	"sync"
)

// inMemoryQueue implements a queue that stores messages in memory. Messages
// can be enqueued concurrently but the returned iterator is not safe for
// concurrent access.
//
// When the queue is configured with a reducer, the first call to the
// iterator's Next method merges all pending messages into a single value.
// Messages are sorted before being merged so that the outcome does not
// depend on the order in which concurrent senders enqueued them.
type inMemoryQueue struct {
	mu      sync.Mutex
	msgs    []float64
	reducer Reducer
	merged  bool

	latchedMsg float64
}

// NewInMemoryQueue creates a new in-memory queue instance. This function can
// serve as a QueueFactory.
func NewInMemoryQueue(r Reducer) Queue {
	return &inMemoryQueue{reducer: r}
}

// Enqueue implements Queue.
func (q *inMemoryQueue) Enqueue(msg float64) error {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.merged = false
	q.mu.Unlock()
	return nil
}

// PendingMessages implements Queue.
func (q *inMemoryQueue) PendingMessages() bool {
	q.mu.Lock()
	pending := len(q.msgs) != 0
	q.mu.Unlock()
	return pending
}

// DiscardMessages implements Queue.
func (q *inMemoryQueue) DiscardMessages() error {
	q.mu.Lock()
	q.msgs = q.msgs[:0]
	q.merged = false
	q.latchedMsg = 0
	q.mu.Unlock()
	return nil
}

// Close implements Queue.
func (*inMemoryQueue) Close() error { return nil }

// Messages implements Queue.
func (q *inMemoryQueue) Messages() Iterator { return q }

// Next implements Iterator.
func (q *inMemoryQueue) Next() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.merged {
		q.merge()
	}

	qLen := len(q.msgs)
	if qLen == 0 {
		return false
	}

	// Dequeue message from the tail of the queue.
	q.latchedMsg = q.msgs[qLen-1]
	q.msgs = q.msgs[:qLen-1]
	return true
}

// merge orders the pending messages and, if a reducer is configured,
// replaces them with their reduced value. It must be called while holding
// the queue lock.
func (q *inMemoryQueue) merge() {
	q.merged = true
	if len(q.msgs) == 0 {
		return
	}

	// Sort in descending order so that dequeueing from the tail yields
	// the messages in ascending order.
	sort.Sort(sort.Reverse(sort.Float64Slice(q.msgs)))
	if q.reducer == nil {
		return
	}

	acc := q.reducer.Identity()
	for i := len(q.msgs) - 1; i >= 0; i-- {
		acc = q.reducer.Reduce(acc, q.msgs[i])
	}
	q.msgs = append(q.msgs[:0], acc)
}

// Message implements Iterator.
func (q *inMemoryQueue) Message() float64 {
	q.mu.Lock()
	msg := q.latchedMsg
	q.mu.Unlock()
	return msg
}

// Error implements Iterator.
func (*inMemoryQueue) Error() error { return nil }
