package graphmodel

import "github.com/mostafa-java/graphview-go/ast"

// MatchNode is a pattern vertex.
type MatchNode struct {
	Alias string
	Table ast.TableName

	// Neighbors holds the edges whose source is this node, in declaration
	// order, matching the invariant that a node's neighbor list contains
	// exactly the edges where the node is the source.
	Neighbors []*MatchEdge

	// External is true when Alias is inherited from an outer scope.
	External bool

	Predicates []ast.Expr

	EstimatedRows        float64
	TableRowCount        int64
	GlobalNodeIDDensity  float64
}

// AddPredicate appends a predicate pushed down onto this node.
func (n *MatchNode) AddPredicate(e ast.Expr) {
	n.Predicates = append(n.Predicates, e)
}
