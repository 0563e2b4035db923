package search

import (
	"github.com/google/uuid"

	"github.com/matzehuels/convroute/pkg/format"
)

// State is the kind of a path event.
type State string

const (
	// StateSearching is emitted when a node is expanded. Path is the route
	// that reached it.
	StateSearching State = "searching"

	// StateFound is emitted for every route handed to the caller.
	StateFound State = "found"

	// StateSkipped is emitted for a route that reached the destination but
	// was rejected by the safety or handler-affinity filter.
	StateSkipped State = "skipped"
)

// PathEvent describes one step of a search. Every listener receives its own
// copy of Path.
type PathEvent struct {
	SearchID uuid.UUID
	State    State
	Path     []format.PathStep
}

// Listener receives path events synchronously on the searching goroutine.
type Listener func(PathEvent)

type listenerEntry struct {
	id int
	fn Listener
}
