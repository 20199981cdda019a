package message

// Queue is implemented by types that can serve as per-vertex message inboxes.
type Queue interface {
	// Cleanly shutdown the queue.
	Close() error

	// Enqueue inserts a message to the queue. Enqueue may be invoked
	// concurrently by multiple senders.
	Enqueue(msg float64) error

	// PendingMessages returns true if the queue contains any messages.
	PendingMessages() bool

	// DiscardMessages drops all pending messages from the queue.
	DiscardMessages() error

	// Messages returns an iterator for accessing the queued messages.
	Messages() Iterator
}

// Iterator provides an API for iterating a list of messages.
type Iterator interface {
	// Next advances the iterator so that the next message can be retrieved
	// via a call to Message(). If no more messages are available or an
	// error occurs, Next() returns false.
	Next() bool

	// Message returns the message currently pointed to by the iterator.
	Message() float64

	// Error returns the last error that the iterator encountered.
	Error() error
}

// QueueFactory is a function that can create new Queue instances. If r is
// not nil, queues are expected to combine pending messages using r before
// they are delivered.
type QueueFactory func(r Reducer) Queue

// Drain consumes it and folds all messages using r. The second return
// value is false if the iterator yielded no messages in which case the
// returned value is r.Identity().
func Drain(it Iterator, r Reducer) (float64, bool, error) {
	acc, found := r.Identity(), false
	for it.Next() {
		acc, found = r.Reduce(acc, it.Message()), true
	}
	return acc, found, it.Error()
}
