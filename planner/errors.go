package planner

import errorkind "gopkg.in/src-d/go-errors.v1"

// User-visible validator failures: each surfaces as a single message naming
// the offending alias, edge, or table. Catalog-probe failures are not
// declared here; they are wrapped with github.com/pkg/errors at the call
// site and propagate unchanged.
var (
	ErrNotANodeTable = errorkind.NewKind(
		"alias %q is bound to %q, which is not a node table")
	ErrEdgeNotDeclared = errorkind.NewKind(
		"edge column %q is not declared on node table %q")
	ErrAmbiguousEdgeAlias = errorkind.NewKind(
		"column reference %q could refer to more than one edge alias: %v")
	ErrInvalidPathLength = errorkind.NewKind(
		"edge %q has invalid path length bounds [%d, %d]")
	ErrSinkTableUnknown = errorkind.NewKind(
		"edge %q declares a sink table %q that does not exist")
	ErrSinkNotReachable = errorkind.NewKind(
		"node %q is bound to %q, which is not among the declared sinks of edge %q")
	ErrNoAdmissibleState = errorkind.NewKind(
		"no admissible join-order state exists for component containing %q; this indicates a validated pattern was rejected by the planner, which should not happen")
)
