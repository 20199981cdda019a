package aggregator

import (
	"math"
	"sync"
	"sync/atomic"
)

// Float64Accumulator implements a concurrent-safe accumulator for float64 values.
type Float64Accumulator struct {
	prevSum uint64
	curSum  uint64
}

// Type implements bspgraph.Aggregator.
func (a *Float64Accumulator) Type() string {
	return "Float64Accumulator"
}

// Get returns the current value of the accumulator.
func (a *Float64Accumulator) Get() interface{} {
	return loadFloat64(&a.curSum)
}

// Set the current value of the accumulator.
func (a *Float64Accumulator) Set(v interface{}) {
	bits := math.Float64bits(v.(float64))
	atomic.StoreUint64(&a.curSum, bits)
	atomic.StoreUint64(&a.prevSum, bits)
}

// Aggregate adds a float64 value to the accumulator.
func (a *Float64Accumulator) Aggregate(v interface{}) {
	a.Add(v.(float64))
}

// Add is a type-safe version of Aggregate.
func (a *Float64Accumulator) Add(v float64) {
	for {
		oldBits := atomic.LoadUint64(&a.curSum)
		newV := math.Float64frombits(oldBits) + v
		if atomic.CompareAndSwapUint64(&a.curSum, oldBits, math.Float64bits(newV)) {
			return
		}
	}
}

// Delta returns the delta change in the accumulator value since the last time
// it was invoked or the last time that Set was invoked.
func (a *Float64Accumulator) Delta() interface{} {
	for {
		curBits := atomic.LoadUint64(&a.curSum)
		prevBits := atomic.LoadUint64(&a.prevSum)
		if atomic.CompareAndSwapUint64(&a.prevSum, prevBits, curBits) {
			return math.Float64frombits(curBits) - math.Float64frombits(prevBits)
		}
	}
}

// Float64Max tracks the largest float64 value it has been fed. Its Delta
// method returns the maximum observed since the previous call to Delta and
// resets the tracked value.
type Float64Max struct {
	mu  sync.Mutex
	cur float64
	set bool
}

// Type implements bspgraph.Aggregator.
func (a *Float64Max) Type() string {
	return "Float64Max"
}

// Get returns the largest value observed so far or -Inf if no value has
// been aggregated.
func (a *Float64Max) Get() interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.get()
}

func (a *Float64Max) get() float64 {
	if !a.set {
		return math.Inf(-1)
	}
	return a.cur
}

// Set the current value of the aggregator.
func (a *Float64Max) Set(v interface{}) {
	a.mu.Lock()
	a.cur, a.set = v.(float64), true
	a.mu.Unlock()
}

// Aggregate updates the aggregator if v exceeds the current maximum.
func (a *Float64Max) Aggregate(v interface{}) {
	v64 := v.(float64)
	a.mu.Lock()
	if !a.set || v64 > a.cur {
		a.cur, a.set = v64, true
	}
	a.mu.Unlock()
}

// Delta returns the maximum since the last call to Delta and resets the
// aggregator.
func (a *Float64Max) Delta() interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.get()
	a.cur, a.set = 0, false
	return v
}

func loadFloat64(v *uint64) float64 {
	return math.Float64frombits(atomic.LoadUint64(v))
}

// IntAccumulator implements a concurrent-safe accumulator for int values.
type IntAccumulator struct {
	prevSum int64
	curSum  int64
}

// Type implements bspgraph.Aggregator.
func (a *IntAccumulator) Type() string {
	return "IntAccumulator"
}

// Get returns the current value of the accumulator.
func (a *IntAccumulator) Get() interface{} {
	return int(atomic.LoadInt64(&a.curSum))
}

// Set the current value of the accumulator.
func (a *IntAccumulator) Set(v interface{}) {
	v64 := int64(v.(int))
	atomic.StoreInt64(&a.curSum, v64)
	atomic.StoreInt64(&a.prevSum, v64)
}

// Aggregate adds a int value to the accumulator.
func (a *IntAccumulator) Aggregate(v interface{}) {
	a.Add(v.(int))
}

// Add is a type-safe version of Aggregate.
func (a *IntAccumulator) Add(v int) {
	_ = atomic.AddInt64(&a.curSum, int64(v))
}

// Delta returns the delta change in the accumulator value since the last time
// it was invoked or the last time that Set was invoked.
func (a *IntAccumulator) Delta() interface{} {
	for {
		curSum := atomic.LoadInt64(&a.curSum)
		prevSum := atomic.LoadInt64(&a.prevSum)
		if atomic.CompareAndSwapInt64(&a.prevSum, prevSum, curSum) {
			return int(curSum - prevSum)
		}
	}
}
