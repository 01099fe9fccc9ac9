package planner

import (
	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/graphmodel"
)

// splitConjuncts flattens a WHERE tree along top-level AND into its
// individual predicates, the unit of attachment for push-down.
func splitConjuncts(e ast.Expr) []ast.Expr {
	if e == nil {
		return nil
	}
	if b, ok := e.(ast.BinaryExpr); ok && b.Op == "AND" {
		return append(splitConjuncts(b.Left), splitConjuncts(b.Right)...)
	}
	return []ast.Expr{e}
}

// collectAliases walks an expression tree gathering every alias referenced
// by a ColumnRef within it.
func collectAliases(e ast.Expr, into map[string]bool) {
	switch v := e.(type) {
	case ast.ColumnRef:
		if v.Alias != "" {
			into[v.Alias] = true
		}
	case ast.BinaryExpr:
		collectAliases(v.Left, into)
		collectAliases(v.Right, into)
	case ast.FuncExpr:
		for _, a := range v.Args {
			collectAliases(a, into)
		}
	}
}

// AttachPredicates walks stmt.Where, pushing each top-level conjunct down
// onto the single node or edge alias it exclusively references, leaving
// everything else in the residual WHERE clause.
func AttachPredicates(graph *graphmodel.MatchGraph, stmt *ast.SelectStatement) {
	nodeAliases := graph.NodeAliasSet()
	edgeAliases := graph.EdgeAliasSet()

	conjuncts := splitConjuncts(stmt.Where)
	var residual ast.Expr

	for _, pred := range conjuncts {
		refs := make(map[string]bool)
		collectAliases(pred, refs)

		switch {
		case len(refs) == 1 && isSubsetOf(refs, nodeAliases):
			for alias := range refs {
				if n, ok := graph.NodeByAlias(alias); ok {
					n.AddPredicate(pred)
				}
			}
		case len(refs) == 1 && isSubsetOf(refs, edgeAliases):
			for alias := range refs {
				if e, ok := graph.EdgeByAlias(alias); ok {
					e.AddPredicate(pred)
				}
			}
		default:
			residual = conjoinExpr(residual, pred)
		}
	}

	stmt.Where = residual
}

func isSubsetOf(small, big map[string]bool) bool {
	for k := range small {
		if !big[k] {
			return false
		}
	}
	return true
}

func conjoinExpr(a, b ast.Expr) ast.Expr {
	if a == nil {
		return b
	}
	return ast.BinaryExpr{Op: "AND", Left: a, Right: b}
}
