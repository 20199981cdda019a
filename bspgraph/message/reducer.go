package message

import "math"

// Reducer is implemented by associative and commutative binary operations
// that can combine messages addressed to the same vertex.
type Reducer interface {
	// Identity returns the identity element for Reduce.
	Identity() float64

	// Reduce combines two values.
	Reduce(a, b float64) float64
}

var (
	// Sum adds up messages.
	Sum Reducer = NewReducer(0, func(a, b float64) float64 { return a + b })

	// Min keeps the smallest message.
	Min Reducer = NewReducer(math.Inf(1), math.Min)

	// Max keeps the largest message.
	Max Reducer = NewReducer(math.Inf(-1), math.Max)
)

type reducerFunc struct {
	identity float64
	fn       func(a, b float64) float64
}

// NewReducer returns a Reducer that combines values with fn. Callers must
// ensure that fn is associative and commutative and that identity is its
// identity element.
func NewReducer(identity float64, fn func(a, b float64) float64) Reducer {
	return reducerFunc{identity: identity, fn: fn}
}

func (r reducerFunc) Identity() float64           { return r.identity }
func (r reducerFunc) Reduce(a, b float64) float64 { return r.fn(a, b) }
