package bspgraph

import (
	"fmt"

	"golang.org/x/xerrors"
)

var (
	// ErrInvalidConfig is matched (via xerrors.Is) by errors returned for
	// runs configured with invalid options.
	ErrInvalidConfig = xerrors.New("invalid configuration")

	// ErrSchemaConflict is returned when a program declares a property
	// that collides with another declared property or with an existing
	// graph property that the caller did not allow to be overwritten.
	ErrSchemaConflict = xerrors.New("schema conflict")

	// ErrUnknownProperty is returned when looking up a property that was
	// not declared by the program schema or is not public.
	ErrUnknownProperty = xerrors.New("unknown property")

	// ErrInvalidMessageDestination is returned by calls to SendTo when the
	// destination cannot be resolved to any vertex.
	ErrInvalidMessageDestination = xerrors.New("invalid message destination")

	// ErrNonFiniteValue is returned when a vertex attempts to store or send
	// a NaN or infinite value.
	ErrNonFiniteValue = xerrors.New("non-finite value")

	// ErrInvalidRelationshipWeight is returned when a relationship weight
	// is negative, NaN or infinite.
	ErrInvalidRelationshipWeight = xerrors.New("invalid relationship weight")

	// ErrExecutorAlreadyRun is returned when Run is invoked more than once
	// on the same executor.
	ErrExecutorAlreadyRun = xerrors.New("executor has already been run")
)

// ConfigError is returned when a run is configured with invalid options. It
// wraps every individual validation failure.
type ConfigError struct {
	Err error
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("run config validation failed: %v", e.Err)
}

// Unwrap returns the underlying validation errors.
func (e *ConfigError) Unwrap() error { return e.Err }

// Is allows ConfigError to be matched against ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// ComputeError is returned when the init or compute step of a vertex fails,
// panics or produces a non-finite value. A ComputeError aborts the run.
type ComputeError struct {
	// The vertex whose init or compute step failed.
	NodeID int

	// The superstep in which the failure occurred; 0 refers to the
	// initialization step.
	Superstep int

	// The underlying error.
	Err error
}

// Error implements error.
func (e *ComputeError) Error() string {
	if e.Superstep == 0 {
		return fmt.Sprintf("running init function for vertex %d failed: %v", e.NodeID, e.Err)
	}
	return fmt.Sprintf("running compute function for vertex %d at superstep %d failed: %v", e.NodeID, e.Superstep, e.Err)
}

// Unwrap returns the underlying error.
func (e *ComputeError) Unwrap() error { return e.Err }
