// Package emit rewrites a planned SelectStatement's FROM/WHERE/SELECT in
// place once the memo DP has produced a join order for every connected
// component.
package emit

import (
	"fmt"

	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/graphmodel"
	"github.com/mostafa-java/graphview-go/memo"
)

// Emit appends every component's chosen join tree to stmt.From, replicates
// split-node predicates, injects DOWNSIZE guards, rewrites path.* star
// projections into their decoder calls, and clears the consumed MATCH
// clause.
func Emit(stmt *ast.SelectStatement, graph *graphmodel.MatchGraph, plans []*memo.MatchComponent) error {
	for _, plan := range plans {
		stmt.From = joinTrees(stmt.From, plan.TableRef)

		if err := replicateSplitPredicates(stmt, graph, plan); err != nil {
			return err
		}
	}

	stripSchemaQualifiers(stmt.From)
	rewritePathProjections(stmt, graph)
	stmt.ClearMatch()
	return nil
}

// joinTrees cross-joins left onto right (or returns whichever side is
// non-nil alone), used to attach a planned component's join tree onto
// whatever was already in FROM.
func joinTrees(left, right ast.TableExpr) ast.TableExpr {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return ast.JoinTableExpr{Left: left, Right: right, JoinHint: "CROSS"}
}

// replicateSplitPredicates handles the case where a pattern node was
// materialized more than once within one component's join tree (a "split"
// node, tracked via MaterializedNodeSplitCount): every predicate originally
// attached to that node must be repeated once per extra materialization,
// rewritten to reference the corresponding replica alias, and each
// replication boundary gets a DOWNSIZE guard so the join only admits rows
// where the replica's ordinal actually matches.
func replicateSplitPredicates(stmt *ast.SelectStatement, graph *graphmodel.MatchGraph, plan *memo.MatchComponent) error {
	for alias, count := range plan.MaterializedNodeSplitCount {
		if count <= 0 {
			continue
		}
		node, ok := graph.NodeByAlias(alias)
		if !ok {
			return fmt.Errorf("emit: split-node alias %q not registered in graph", alias)
		}

		for k := 1; k <= count; k++ {
			replica := fmt.Sprintf("%s_%d", alias, k)
			for _, pred := range node.Predicates {
				stmt.AddWhere(rewriteAlias(pred, alias, replica))
			}
		}
		stmt.AddWhere(downsizeGuard(alias, count))
	}
	return nil
}

// downsizeGuard builds `DownSizeFunction(alias.LocalNodeId) = '1' OR ... =
// '2' ...` up to count, the guard predicate that keeps exactly one physical
// row per logical replica.
func downsizeGuard(alias string, count int) ast.Expr {
	var guard ast.Expr
	call := ast.FuncExpr{Name: "DownSizeFunction", Args: []ast.Expr{
		ast.ColumnRef{Alias: alias, Column: "LocalNodeId"},
	}}
	for k := 1; k <= count; k++ {
		eq := ast.BinaryExpr{Op: "=", Left: call, Right: ast.Literal{Text: fmt.Sprintf("'%d'", k)}}
		if guard == nil {
			guard = eq
		} else {
			guard = ast.BinaryExpr{Op: "OR", Left: guard, Right: eq}
		}
	}
	return guard
}

// rewriteAlias returns a copy of e with every ColumnRef bound to from
// rebound to to, used to re-target a node's predicates onto a split
// replica.
func rewriteAlias(e ast.Expr, from, to string) ast.Expr {
	switch v := e.(type) {
	case ast.ColumnRef:
		if v.Alias == from {
			v.Alias = to
		}
		return v
	case ast.BinaryExpr:
		v.Left = rewriteAlias(v.Left, from, to)
		v.Right = rewriteAlias(v.Right, from, to)
		return v
	case ast.FuncExpr:
		args := make([]ast.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = rewriteAlias(a, from, to)
		}
		v.Args = args
		return v
	default:
		return e
	}
}

// stripSchemaQualifiers walks the FROM tree and changes nothing: aliased
// table references keep their Schema. ast.ColumnRef has no Schema field at all
// (only Alias and Column), so every column reference this package emits is
// already alias-qualified and there is nothing for this pass to observably
// rewrite; it stays as a guard against a future ColumnRef growing one.
func stripSchemaQualifiers(t ast.TableExpr) {
	switch v := t.(type) {
	case ast.JoinTableExpr:
		stripSchemaQualifiers(v.Left)
		stripSchemaQualifiers(v.Right)
	case ast.AliasedTableExpr:
		// AliasedTableExpr is a value type; nothing reachable through t
		// needs mutation here because the planner already renders join
		// conditions off the alias, not the table name. Kept as an explicit
		// no-op case so future fields on AliasedTableExpr are forced through
		// this switch rather than silently falling to default.
	}
}

// rewritePathProjections replaces every `alias.*` projection whose alias is
// bound to a variable-length path with a call to that path's generated
// PathMessageDecoder UDF.
func rewritePathProjections(stmt *ast.SelectStatement, graph *graphmodel.MatchGraph) {
	for i, item := range stmt.Projection {
		if item.StarAlias == "" {
			continue
		}
		p, ok := graph.AsPath(item.StarAlias)
		if !ok {
			continue
		}
		funcName := fmt.Sprintf("%s_%s_%s_PathMessageDecoder", p.BoundNodeTable.Schema, p.BoundNodeTable.Name, p.EdgeColumn)
		stmt.Projection[i] = ast.ProjectionItem{
			Expr:  ast.QualifiedFuncExpr("dbo", funcName, ast.ColumnRef{Alias: item.StarAlias, Column: "PathMessage"}),
			Alias: item.Alias,
		}
	}
}
