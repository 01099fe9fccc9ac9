package memo

import (
	errorkind "gopkg.in/src-d/go-errors.v1"

	"github.com/mostafa-java/graphview-go/graphmodel"
)

// ErrNoAdmissibleState is raised when the beam empties without ever reaching
// a complete state. The orchestration layer (graphview.Planner.Plan)
// reports it as planner.ErrNoAdmissibleState; it is declared locally so this
// package does not depend on planner.
var ErrNoAdmissibleState = errorkind.NewKind(
	"no admissible join-order state exists for component containing %q")

func errNoInitialState(comp *graphmodel.ConnectedComponent) error {
	name := "<empty>"
	for alias := range comp.Nodes {
		name = alias
		break
	}
	return ErrNoAdmissibleState.New(name)
}
