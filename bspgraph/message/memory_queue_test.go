package message_test

import (
	"math"
	"sync"
	"testing"

	"github.com/xlab/openrank/bspgraph/message"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(InMemoryQueueTest))
var _ = gc.Suite(new(AtomicQueueTest))
var _ = gc.Suite(new(ReducerTest))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type InMemoryQueueTest struct {
	q message.Queue
}

func (s *InMemoryQueueTest) SetUpTest(c *gc.C) {
	s.q = message.NewInMemoryQueue(nil)
}

func (s *InMemoryQueueTest) TearDownTest(c *gc.C) {
	c.Assert(s.q.Close(), gc.IsNil)
}

func (s *InMemoryQueueTest) TestEnqueueDequeue(c *gc.C) {
	for _, v := range []float64{3, 9, 0, 7, 1, 8, 2, 6, 4, 5} {
		c.Assert(s.q.Enqueue(v), gc.IsNil)
	}
	c.Assert(s.q.PendingMessages(), gc.Equals, true)

	// Without a reducer we expect the raw messages in ascending order
	var (
		it        = s.q.Messages()
		processed int
	)
	for expNext := 0.0; it.Next(); expNext++ {
		c.Assert(it.Message(), gc.Equals, expNext)
		processed++
	}
	c.Assert(processed, gc.Equals, 10)
	c.Assert(it.Error(), gc.IsNil)
}

func (s *InMemoryQueueTest) TestDiscard(c *gc.C) {
	for i := 0; i < 10; i++ {
		c.Assert(s.q.Enqueue(float64(i)), gc.IsNil)
	}
	c.Assert(s.q.PendingMessages(), gc.Equals, true)
	c.Assert(s.q.DiscardMessages(), gc.IsNil)
	c.Assert(s.q.PendingMessages(), gc.Equals, false)
	c.Assert(s.q.Messages().Next(), gc.Equals, false)
}

func (s *InMemoryQueueTest) TestReduceOnIteration(c *gc.C) {
	q := message.NewInMemoryQueue(message.Sum)
	for i := 1; i <= 4; i++ {
		c.Assert(q.Enqueue(float64(i)), gc.IsNil)
	}

	it := q.Messages()
	c.Assert(it.Next(), gc.Equals, true)
	c.Assert(it.Message(), gc.Equals, 10.0)
	c.Assert(it.Next(), gc.Equals, false)
}

func (s *InMemoryQueueTest) TestConcurrentSendersAreOrderIndependent(c *gc.C) {
	values := []float64{0.1, 1e16, 0.2, -1e16, 0.3, 1.0 / 3.0, 7e-12}

	var first uint64
	for attempt := 0; attempt < 20; attempt++ {
		q := message.NewInMemoryQueue(message.Sum)
		var wg sync.WaitGroup
		for _, v := range values {
			wg.Add(1)
			go func(v float64) {
				defer wg.Done()
				_ = q.Enqueue(v)
			}(v)
		}
		wg.Wait()

		got, found, err := message.Drain(q.Messages(), message.Sum)
		c.Assert(err, gc.IsNil)
		c.Assert(found, gc.Equals, true)
		if attempt == 0 {
			first = math.Float64bits(got)
			continue
		}
		c.Assert(math.Float64bits(got), gc.Equals, first, gc.Commentf("attempt %d produced a different sum", attempt))
	}
}

type AtomicQueueTest struct{}

func (s *AtomicQueueTest) TestConcurrentEnqueue(c *gc.C) {
	q := message.NewAtomicQueue(message.Sum)
	defer func() { c.Assert(q.Close(), gc.IsNil) }()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Enqueue(1.0)
		}()
	}
	wg.Wait()

	c.Assert(q.PendingMessages(), gc.Equals, true)
	it := q.Messages()
	c.Assert(it.Next(), gc.Equals, true)
	c.Assert(it.Message(), gc.Equals, 100.0)
	c.Assert(it.Next(), gc.Equals, false)
	c.Assert(it.Error(), gc.IsNil)
}

func (s *AtomicQueueTest) TestEmptyQueue(c *gc.C) {
	q := message.NewAtomicQueue(message.Max)
	c.Assert(q.PendingMessages(), gc.Equals, false)
	c.Assert(q.Messages().Next(), gc.Equals, false)

	c.Assert(q.Enqueue(-3), gc.IsNil)
	c.Assert(q.Enqueue(-7), gc.IsNil)
	it := q.Messages()
	c.Assert(it.Next(), gc.Equals, true)
	c.Assert(it.Message(), gc.Equals, -3.0)

	c.Assert(q.DiscardMessages(), gc.IsNil)
	c.Assert(q.PendingMessages(), gc.Equals, false)
	c.Assert(q.Messages().Next(), gc.Equals, false)
}

func (s *AtomicQueueTest) TestNilReducerFallsBackToBuffering(c *gc.C) {
	q := message.NewAtomicQueue(nil)
	c.Assert(q.Enqueue(2), gc.IsNil)
	c.Assert(q.Enqueue(1), gc.IsNil)

	var got []float64
	for it := q.Messages(); it.Next(); {
		got = append(got, it.Message())
	}
	c.Assert(got, gc.DeepEquals, []float64{1, 2})
}

type ReducerTest struct{}

func (s *ReducerTest) TestBuiltInReducers(c *gc.C) {
	specs := []struct {
		r   message.Reducer
		in  []float64
		exp float64
	}{
		{message.Sum, []float64{1, 2, 3.5}, 6.5},
		{message.Min, []float64{4, -2, 9}, -2},
		{message.Max, []float64{4, -2, 9}, 9},
		{message.NewReducer(1, func(a, b float64) float64 { return a * b }), []float64{2, 3, 4}, 24},
	}

	for i, spec := range specs {
		q := message.NewInMemoryQueue(nil)
		for _, v := range spec.in {
			c.Assert(q.Enqueue(v), gc.IsNil)
		}
		got, found, err := message.Drain(q.Messages(), spec.r)
		c.Assert(err, gc.IsNil)
		c.Assert(found, gc.Equals, true)
		c.Assert(got, gc.Equals, spec.exp, gc.Commentf("spec %d", i))
	}
}

func (s *ReducerTest) TestDrainEmptyYieldsIdentity(c *gc.C) {
	got, found, err := message.Drain(message.NewInMemoryQueue(message.Sum).Messages(), message.Sum)
	c.Assert(err, gc.IsNil)
	c.Assert(found, gc.Equals, false)
	c.Assert(got, gc.Equals, 0.0)
	c.Assert(math.Signbit(got), gc.Equals, false)

	got, found, _ = message.Drain(message.NewInMemoryQueue(nil).Messages(), message.Min)
	c.Assert(found, gc.Equals, false)
	c.Assert(math.IsInf(got, 1), gc.Equals, true)
}
