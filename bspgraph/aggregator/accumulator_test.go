package aggregator

import (
	"math"
	"math/rand"
	"testing"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(AccumulatorTestSuite))

type aggregator interface {
	Set(interface{})
	Get() interface{}
	Aggregate(interface{})
	Delta() interface{}
}

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type AccumulatorTestSuite struct {
}

func (s *AccumulatorTestSuite) TestFloat64Accumulator(c *gc.C) {
	numValues := 100
	values := make([]interface{}, numValues)
	var exp float64
	for i := 0; i < numValues; i++ {
		next := rand.Float64()
		values[i] = next
		exp += next
	}

	got := s.testConcurrentAccess(new(Float64Accumulator), values).(float64)
	absDelta := math.Abs(exp - got)
	c.Assert(absDelta < 1e-6, gc.Equals, true, gc.Commentf("expected to get %f; got %f; |delta| %f > 1e-6", exp, got, absDelta))
}

func (s *AccumulatorTestSuite) TestFloat64AccumulatorDelta(c *gc.C) {
	a := new(Float64Accumulator)
	a.Set(1.5)
	a.Add(2.0)
	c.Assert(a.Delta(), gc.Equals, 2.0)
	a.Add(0.25)
	c.Assert(a.Delta(), gc.Equals, 0.25)
	c.Assert(a.Delta(), gc.Equals, 0.0)
	c.Assert(a.Get(), gc.Equals, 3.75)
}

func (s *AccumulatorTestSuite) TestIntAccumulator(c *gc.C) {
	numValues := 100
	values := make([]interface{}, numValues)
	var exp int
	for i := 0; i < numValues; i++ {
		next := rand.Intn(1 << 20)
		values[i] = next
		exp += next
	}

	got := s.testConcurrentAccess(new(IntAccumulator), values).(int)
	c.Assert(got, gc.Equals, exp)
}

func (s *AccumulatorTestSuite) TestIntAccumulatorDelta(c *gc.C) {
	a := new(IntAccumulator)
	a.Set(10)
	a.Add(3)
	a.Aggregate(4)
	c.Assert(a.Delta(), gc.Equals, 7)
	c.Assert(a.Delta(), gc.Equals, 0)
	c.Assert(a.Get(), gc.Equals, 17)
}

func (s *AccumulatorTestSuite) TestFloat64Max(c *gc.C) {
	numValues := 100
	values := make([]interface{}, numValues)
	exp := math.Inf(-1)
	for i := 0; i < numValues; i++ {
		next := rand.NormFloat64()
		values[i] = next
		exp = math.Max(exp, next)
	}

	a := new(Float64Max)
	c.Assert(math.IsInf(a.Get().(float64), -1), gc.Equals, true)

	got := s.testConcurrentAccess(a, values).(float64)
	c.Assert(got, gc.Equals, exp)

	c.Assert(a.Delta(), gc.Equals, exp)
	c.Assert(math.IsInf(a.Get().(float64), -1), gc.Equals, true, gc.Commentf("expected Delta to reset the aggregator"))
}

func (s *AccumulatorTestSuite) testConcurrentAccess(a aggregator, values []interface{}) interface{} {
	startedCh := make(chan struct{})
	syncCh := make(chan struct{})
	doneCh := make(chan struct{})
	for i := 0; i < len(values); i++ {
		go func(i int) {
			startedCh <- struct{}{}
			<-syncCh
			a.Aggregate(values[i])
			doneCh <- struct{}{}
		}(i)
	}

	// Wait for all go-routines to start
	for i := 0; i < len(values); i++ {
		<-startedCh
	}

	// Allow each go-routine to update the aggregator
	close(syncCh)

	// Wait for all go-routines to exit
	for i := 0; i < len(values); i++ {
		<-doneCh
	}

	return a.Get()
}
