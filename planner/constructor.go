package planner

import (
	"fmt"
	"sort"

	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/catalog"
	"github.com/mostafa-java/graphview-go/graphmodel"
)

// ConstructResult is everything the pattern constructor produces beyond the
// MatchGraph itself: the edge-column-to-alias index used by the
// alias-replacement pass that runs after union-find assignment.
type ConstructResult struct {
	Graph *graphmodel.MatchGraph
	// EdgeColumnToAliases maps a bare edge-column name to every synthesized
	// edge alias that name could refer to, so the alias-replacement pass can
	// detect ambiguity.
	EdgeColumnToAliases map[string][]string
}

// Construct builds a MatchGraph from an already-validated MATCH clause.
func Construct(meta *catalog.GraphMetaData, stmt *ast.SelectStatement) (*ConstructResult, error) {
	graph := graphmodel.NewMatchGraph()
	res := &ConstructResult{Graph: graph, EdgeColumnToAliases: make(map[string][]string)}
	uf := graphmodel.NewUnionFind()

	getOrCreate := func(alias string, table ast.TableName) *graphmodel.MatchNode {
		if n, ok := graph.NodeByAlias(alias); ok {
			return n
		}
		schema := table.Schema
		if schema == "" {
			schema = defaultSchema
		}
		n := &graphmodel.MatchNode{Alias: alias, Table: ast.TableName{Schema: schema, Name: table.Name}}
		graph.RegisterNode(n)
		uf.Add(alias)
		return n
	}

	for _, path := range stmt.Match.Paths {
		var previousEdge *graphmodel.MatchEdge
		for _, step := range path.Steps {
			source := getOrCreate(step.Node, step.NodeTable)

			alias := step.EdgeAlias
			synthesized := alias == ""
			if synthesized {
				alias = fmt.Sprintf("%s_%s_%s", step.Node, step.EdgeColumn, step.NextNode)
				res.EdgeColumnToAliases[step.EdgeColumn] = append(res.EdgeColumnToAliases[step.EdgeColumn], alias)
			}

			binding, ok := resolveEdge(meta, step.NodeTable, step.EdgeColumn)
			if !ok {
				return nil, ErrEdgeNotDeclared.New(step.EdgeColumn, step.NodeTable.String())
			}

			base := graphmodel.MatchEdge{
				Source:         source,
				EdgeColumn:     step.EdgeColumn,
				Alias:          alias,
				BoundNodeTable: binding.BoundTable,
			}

			var edge *graphmodel.MatchEdge
			if step.MinLength == 1 && step.MaxLength == 1 {
				e := base
				edge = &e
			} else {
				maxLen := step.MaxLength
				if maxLen < 0 {
					maxLen = graphmodel.Unbounded
				}
				mp := &graphmodel.MatchPath{
					MatchEdge:         base,
					MinLength:         step.MinLength,
					MaxLength:         maxLen,
					ReferencePathInfo: step.ProjectPath,
					Attributes:        make(map[string]string),
				}
				edge = &mp.MatchEdge
				graph.RegisterEdge(edge)
				graph.RegisterPath(mp)
				source.Neighbors = append(source.Neighbors, edge)
				if previousEdge != nil {
					previousEdge.Sink = source
				}
				previousEdge = edge
				if step.NextNode != "" {
					uf.Union(step.Node, step.NextNode)
				}
				continue
			}

			graph.RegisterEdge(edge)
			source.Neighbors = append(source.Neighbors, edge)
			if previousEdge != nil {
				previousEdge.Sink = source
			}
			previousEdge = edge
			if step.NextNode != "" {
				uf.Union(step.Node, step.NextNode)
			}
		}
		// The path's final node has no outgoing edge recorded yet; close the
		// chain by creating it if a next table was declared on the last step.
		if len(path.Steps) > 0 {
			last := path.Steps[len(path.Steps)-1]
			if last.NextNode != "" {
				next := getOrCreate(last.NextNode, last.NextTable)
				if previousEdge != nil {
					previousEdge.Sink = next
				}
			}
		}
	}

	rematerializeExternal(graph, stmt)
	assignComponents(graph, uf)

	if err := replaceAmbiguousEdgeAliases(res, stmt); err != nil {
		return nil, err
	}

	return res, nil
}

// replaceAmbiguousEdgeAliases rewrites every unqualified column reference in
// stmt.Where and stmt.Projection whose name matches a synthesized edge
// alias's edge-column name, binding it to that alias. A name that more than
// one synthesized alias could refer to is rejected rather than guessed at.
func replaceAmbiguousEdgeAliases(res *ConstructResult, stmt *ast.SelectStatement) error {
	where, err := rewriteEdgeColumnRefs(stmt.Where, res.EdgeColumnToAliases)
	if err != nil {
		return err
	}
	stmt.Where = where

	for i, item := range stmt.Projection {
		rewritten, err := rewriteEdgeColumnRefs(item.Expr, res.EdgeColumnToAliases)
		if err != nil {
			return err
		}
		stmt.Projection[i].Expr = rewritten
	}
	return nil
}

// rewriteEdgeColumnRefs walks e, rebinding every unqualified ColumnRef whose
// Column names a synthesized edge alias's edge column to that alias.
// References already bound to an alias are left untouched.
func rewriteEdgeColumnRefs(e ast.Expr, columnToAliases map[string][]string) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch v := e.(type) {
	case ast.ColumnRef:
		if v.Alias != "" {
			return v, nil
		}
		aliases, ok := columnToAliases[v.Column]
		if !ok {
			return v, nil
		}
		if len(aliases) > 1 {
			return nil, ErrAmbiguousEdgeAlias.New(v.Column, aliases)
		}
		v.Alias = aliases[0]
		return v, nil
	case ast.BinaryExpr:
		left, err := rewriteEdgeColumnRefs(v.Left, columnToAliases)
		if err != nil {
			return nil, err
		}
		right, err := rewriteEdgeColumnRefs(v.Right, columnToAliases)
		if err != nil {
			return nil, err
		}
		v.Left, v.Right = left, right
		return v, nil
	case ast.FuncExpr:
		args := make([]ast.Expr, len(v.Args))
		for i, a := range v.Args {
			r, err := rewriteEdgeColumnRefs(a, columnToAliases)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		v.Args = args
		return v, nil
	default:
		return e, nil
	}
}

// assignComponents scans every node and assigns it to the ConnectedComponent
// indexed by its union-find root, populating that component's edge map from
// every node's neighbor list.
func assignComponents(graph *graphmodel.MatchGraph, uf *graphmodel.UnionFind) {
	aliases := graph.AllNodeAliases()
	sortedAliases := make([]string, len(aliases))
	copy(sortedAliases, aliases)
	// Deterministic order: AllNodeAliases is in map order, so sort before
	// discovering roots; components are then appended in root order.
	sort.Strings(sortedAliases)
	roots := uf.Roots(sortedAliases)

	rootToComponent := make(map[string]*graphmodel.ConnectedComponent, len(roots))
	for _, r := range roots {
		rootToComponent[r] = graphmodel.NewConnectedComponent()
	}

	for _, alias := range sortedAliases {
		n, _ := graph.NodeByAlias(alias)
		root := uf.Find(alias)
		comp := rootToComponent[root]
		// External nodes are already bound by the enclosing scope: they take
		// part in the component's edge set (so an internal neighbor's join
		// condition can still reference them) but never become a DP join
		// target themselves.
		if !n.External {
			comp.Nodes[alias] = n
		}
		for _, e := range n.Neighbors {
			comp.Edges[e.Alias] = e
		}
	}

	for _, r := range roots {
		comp := rootToComponent[r]
		comp.MarkTail()
		graph.Components = append(graph.Components, comp)
	}
}

// rematerializeExternal marks every node whose alias is inherited from an
// outer scope as External, removing it from consideration as an internal
// join target. The node's alias is already bound by the surrounding FROM
// clause, so no fresh table reference or glue predicate is introduced here:
// an internal node's edge into an external one still renders the usual
// GlobalNodeId equality (see memo.joinCondition), just against the alias
// the outer scope already materialized rather than one assigned by this
// pass.
func rematerializeExternal(graph *graphmodel.MatchGraph, stmt *ast.SelectStatement) {
	if len(stmt.ExternalAliases) == 0 {
		return
	}
	for outerAlias := range stmt.ExternalAliases {
		n, ok := graph.NodeByAlias(outerAlias)
		if !ok {
			continue
		}
		n.External = true
	}
}
