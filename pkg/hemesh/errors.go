package hemesh

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntity is returned when an operation references a vertex,
	// edge, or face ID that does not exist or has been retired. This is a
	// programming error on the caller's side, not a recoverable condition.
	ErrUnknownEntity = errors.New("hemesh: unknown entity")

	// ErrCorrupt is returned when the mesh fails a structural consistency
	// check. A corrupt mesh is left in an unspecified state and must be
	// discarded; it is never repaired in place.
	ErrCorrupt = errors.New("hemesh: corrupt topology")
)

// TopologyError describes a single structural-consistency violation.
// It matches ErrCorrupt under errors.Is.
type TopologyError struct {
	Kind   string // "vertex", "edge", or "face"
	ID     int    // which entity has the problem
	Detail string // human-readable description
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("hemesh: %s %d: %s", e.Kind, e.ID, e.Detail)
}

func (e *TopologyError) Unwrap() error {
	return ErrCorrupt
}

func corruptEdge(id EdgeID, detail string) error {
	return &TopologyError{Kind: "edge", ID: int(id), Detail: detail}
}

func corruptFace(id FaceID, detail string) error {
	return &TopologyError{Kind: "face", ID: int(id), Detail: detail}
}
