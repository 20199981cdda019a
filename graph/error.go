package graph

import "golang.org/x/xerrors"

var (
	// ErrUnknownNode is returned when a node lookup fails.
	ErrUnknownNode = xerrors.New("unknown node")

	// ErrDuplicateNode is returned when attempting to insert a node whose
	// name is already in use.
	ErrDuplicateNode = xerrors.New("duplicate node name")

	// ErrUnknownProperty is returned when a property lookup fails.
	ErrUnknownProperty = xerrors.New("unknown property")
)
