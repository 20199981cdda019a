package message

import (
	"math"
	"sync/atomic"
)

// atomicQueue implements a lock-free queue that reduces messages as soon as
// they are enqueued. The reduced value is stored as the bit pattern of a
// float64 and updated with compare-and-swap operations.
//
// The result of floating-point reducers such as Sum may differ in the least
// significant bits depending on the order in which concurrent senders
// enqueue their messages. Use NewInMemoryQueue when bit-identical results
// across runs are required.
type atomicQueue struct {
	// Accessed atomically; keep 64-bit aligned.
	bits  uint64
	count int64

	reducer Reducer
	drained bool
}

// NewAtomicQueue creates a new lock-free reducing queue. This function can
// serve as a QueueFactory. Since the queue stores a single reduced value, a
// nil reducer falls back to an in-memory queue.
func NewAtomicQueue(r Reducer) Queue {
	if r == nil {
		return NewInMemoryQueue(nil)
	}
	return &atomicQueue{
		bits:    math.Float64bits(r.Identity()),
		reducer: r,
	}
}

// Enqueue implements Queue.
func (q *atomicQueue) Enqueue(msg float64) error {
	for {
		oldBits := atomic.LoadUint64(&q.bits)
		newV := q.reducer.Reduce(math.Float64frombits(oldBits), msg)
		if atomic.CompareAndSwapUint64(&q.bits, oldBits, math.Float64bits(newV)) {
			break
		}
	}
	_ = atomic.AddInt64(&q.count, 1)
	return nil
}

// PendingMessages implements Queue.
func (q *atomicQueue) PendingMessages() bool {
	return atomic.LoadInt64(&q.count) != 0
}

// DiscardMessages implements Queue.
func (q *atomicQueue) DiscardMessages() error {
	atomic.StoreUint64(&q.bits, math.Float64bits(q.reducer.Identity()))
	atomic.StoreInt64(&q.count, 0)
	q.drained = false
	return nil
}

// Close implements Queue.
func (*atomicQueue) Close() error { return nil }

// Messages implements Queue.
func (q *atomicQueue) Messages() Iterator { return q }

// Next implements Iterator. The reduced value is yielded exactly once.
func (q *atomicQueue) Next() bool {
	if q.drained || atomic.LoadInt64(&q.count) == 0 {
		return false
	}
	q.drained = true
	return true
}

// Message implements Iterator.
func (q *atomicQueue) Message() float64 {
	return math.Float64frombits(atomic.LoadUint64(&q.bits))
}

// Error implements Iterator.
func (*atomicQueue) Error() error { return nil }
