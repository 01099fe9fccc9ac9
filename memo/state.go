// Package memo enumerates and costs join orders for one ConnectedComponent
// via a bounded-state DP.
package memo

import (
	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/graphmodel"
)

// Direction records whether a materialized edge was traversed from source to
// sink or the reverse within a MatchComponent's partial join tree.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// MatchComponent is one DP state: a partial join tree over a subset of a
// pattern component's nodes and edges.
type MatchComponent struct {
	ID string

	Nodes          map[string]*graphmodel.MatchNode
	Edges          map[*graphmodel.MatchEdge]Direction
	Unmaterialized map[string]*graphmodel.MatchNode

	Size float64
	Cost float64

	TableRef ast.TableExpr

	// MaterializedNodeSplitCount counts how many replicas of a given node
	// appear in this component's join tree, keyed by alias (the alias the
	// node was first registered under). >0 means the node was joined back
	// through a second (or further) time; emit attaches that alias's
	// DOWNSIZE guard as a WHERE predicate, which is equivalent to an
	// ON-clause guard since every join in a component is INNER/CROSS.
	MaterializedNodeSplitCount map[string]int

	chosenEdges map[*graphmodel.MatchEdge]bool
}

// clone deep-copies the bookkeeping maps but not the underlying
// graphmodel/ast pointers, which are shared (read-only from the DP's
// perspective) across every state derived from one component.
func (m *MatchComponent) clone() *MatchComponent {
	n := &MatchComponent{
		Nodes:                      make(map[string]*graphmodel.MatchNode, len(m.Nodes)),
		Edges:                      make(map[*graphmodel.MatchEdge]Direction, len(m.Edges)),
		Unmaterialized:             make(map[string]*graphmodel.MatchNode, len(m.Unmaterialized)),
		Size:                       m.Size,
		Cost:                       m.Cost,
		TableRef:                   m.TableRef,
		MaterializedNodeSplitCount: make(map[string]int, len(m.MaterializedNodeSplitCount)),
		chosenEdges:                make(map[*graphmodel.MatchEdge]bool, len(m.chosenEdges)),
	}
	for k, v := range m.Nodes {
		n.Nodes[k] = v
	}
	for k, v := range m.Edges {
		n.Edges[k] = v
	}
	for k, v := range m.Unmaterialized {
		n.Unmaterialized[k] = v
	}
	for k, v := range m.MaterializedNodeSplitCount {
		n.MaterializedNodeSplitCount[k] = v
	}
	for k, v := range m.chosenEdges {
		n.chosenEdges[k] = v
	}
	return n
}

// EdgeCount returns the number of materialized edges, used by the beam's
// cost-per-edge ratio (floored to 1).
func (m *MatchComponent) EdgeCount() int {
	if len(m.Edges) == 0 {
		return 1
	}
	return len(m.Edges)
}

// Complete reports whether this state has no admissible extension left: no
// pending unmaterialized targets and no un-chosen incident edge on any
// materialized node.
func (m *MatchComponent) Complete(comp *graphmodel.ConnectedComponent) bool {
	if len(m.Unmaterialized) > 0 {
		return false
	}
	for _, n := range m.Nodes {
		for _, e := range comp.IncidentEdges(n) {
			if !m.chosenEdges[e] {
				return false
			}
		}
	}
	return true
}
