package openrank

import (
	"math"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Variant selects how vertices behave once they have halted.
type Variant uint8

const (
	// VariantRecompute recomputes the rank of every vertex at every
	// superstep. The halt flag is sticky; once set it stays set even if
	// the rank of the vertex changes again.
	VariantRecompute Variant = iota

	// VariantFreezeOnHalt stops recomputing the rank of halted vertices
	// but keeps forwarding their last rank to their neighbors.
	VariantFreezeOnHalt
)

func (v Variant) String() string {
	switch v {
	case VariantRecompute:
		return "recompute"
	case VariantFreezeOnHalt:
		return "freeze"
	default:
		return "unknown"
	}
}

// ParseVariant maps a variant name to a Variant.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(name) {
	case "recompute":
		return VariantRecompute, nil
	case "freeze", "freeze-on-halt":
		return VariantFreezeOnHalt, nil
	default:
		return 0, xerrors.Errorf("unknown OpenRank variant %q", name)
	}
}

// Config defines an OpenRank program. Config values are validated once when
// the program is created and never change afterwards.
//
// Zero values are used as-is; a retention factor of 0 and an initial value
// of 0 are both valid. Callers that want the reference behavior should start
// from Default().
type Config struct {
	// The behavior of halted vertices.
	Variant Variant

	// DefaultRetentionFactor is used for vertices when the graph does not
	// provide the retention factor property. It must be in the [0, 1]
	// range.
	DefaultRetentionFactor float64

	// DefaultInitValue is used for vertices when the graph does not
	// provide the init value property.
	DefaultInitValue float64
}

// Default returns the configuration of the reference OpenRank program.
func Default() Config {
	return Config{
		Variant:                VariantRecompute,
		DefaultRetentionFactor: 0.85,
		DefaultInitValue:       1.0,
	}
}

// LowRetention returns a configuration that favors propagated rank over
// the initial value of each vertex and freezes halted vertices.
func LowRetention() Config {
	return Config{
		Variant:                VariantFreezeOnHalt,
		DefaultRetentionFactor: 0.15,
		DefaultInitValue:       1.0,
	}
}

// validate checks whether the program configuration is valid.
func (c *Config) validate() error {
	var err error
	if c.Variant != VariantRecompute && c.Variant != VariantFreezeOnHalt {
		err = multierror.Append(err, xerrors.Errorf("unsupported variant %d", c.Variant))
	}

	if c.DefaultRetentionFactor < 0 || c.DefaultRetentionFactor > 1.0 || math.IsNaN(c.DefaultRetentionFactor) {
		err = multierror.Append(err, xerrors.New("DefaultRetentionFactor must be in the range [0, 1]"))
	}

	if math.IsNaN(c.DefaultInitValue) || math.IsInf(c.DefaultInitValue, 0) {
		err = multierror.Append(err, xerrors.New("DefaultInitValue must be a finite value"))
	}

	return err
}
