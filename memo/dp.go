package memo

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/graphmodel"
)

// Config bounds the search; duplicated from planner.Config rather than
// imported, so this package has no dependency on planner. The root
// graphview package translates one into the other.
type Config struct {
	MaxStates          int
	LowerBoundLogFloor float64
}

func nodeAliasIndex(comp *graphmodel.ConnectedComponent) map[*graphmodel.MatchNode]string {
	idx := make(map[*graphmodel.MatchNode]string, len(comp.Nodes))
	for alias, n := range comp.Nodes {
		idx[n] = alias
	}
	return idx
}

// nonEmptySubsets enumerates all 2^k-1 non-empty subsets of edges, used only
// during initialization.
func nonEmptySubsets(edges []*graphmodel.MatchEdge) [][]*graphmodel.MatchEdge {
	k := len(edges)
	var subsets [][]*graphmodel.MatchEdge
	for mask := 1; mask < (1 << uint(k)); mask++ {
		var subset []*graphmodel.MatchEdge
		for i := 0; i < k; i++ {
			if mask&(1<<uint(i)) != 0 {
				subset = append(subset, edges[i])
			}
		}
		subsets = append(subsets, subset)
	}
	return subsets
}

func baseTableRef(n *graphmodel.MatchNode) ast.TableExpr {
	return ast.AliasedTableExpr{Table: n.Table, As: n.Alias}
}

// otherEnd returns the edge's endpoint that is not n, and the direction n
// observes the edge in.
func otherEnd(e *graphmodel.MatchEdge, n *graphmodel.MatchNode) (*graphmodel.MatchNode, Direction) {
	if e.Source == n {
		return e.Sink, Outgoing
	}
	return e.Source, Incoming
}

// Plan runs the DP over one connected component and returns the cheapest
// complete join-order state. An error indicates every state was exhausted
// without reaching completeness, which should not happen for a validated,
// non-empty pattern.
func Plan(comp *graphmodel.ConnectedComponent, cfg Config, log logrus.FieldLogger) (*MatchComponent, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.MaxStates <= 0 {
		cfg.MaxStates = 100
	}

	aliasOf := nodeAliasIndex(comp)
	pool := newStatePool()
	b := newBeam(cfg.MaxStates)

	for alias, n := range comp.Nodes {
		if comp.IsTail[n] {
			continue
		}
		incident := comp.IncidentEdges(n)
		if len(incident) == 0 {
			continue
		}
		for _, subset := range nonEmptySubsets(incident) {
			st := pool.Get()
			st.Nodes = map[string]*graphmodel.MatchNode{alias: n}
			st.Edges = make(map[*graphmodel.MatchEdge]Direction)
			st.Unmaterialized = make(map[string]*graphmodel.MatchNode)
			st.chosenEdges = make(map[*graphmodel.MatchEdge]bool)
			st.MaterializedNodeSplitCount = make(map[string]int)
			st.TableRef = baseTableRef(n)

			var mats, unmats []*graphmodel.MatchEdge
			for _, e := range subset {
				other, dir := otherEnd(e, n)
				st.Edges[e] = dir
				st.chosenEdges[e] = true
				if other == nil {
					continue
				}
				// An external neighbor is already bound by the enclosing
				// scope: the edge into it is a filter against a known row,
				// not a new join target to enumerate.
				if other.External {
					mats = append(mats, e)
					continue
				}
				st.Unmaterialized[aliasOf[other]] = other
				unmats = append(unmats, e)
			}
			st.Size = candidateSize(n, mats, unmats)
			st.Cost = costIncrement(st.Size, mats)
			b.Insert(st)
		}
	}

	if b.Len() == 0 {
		return nil, errNoInitialState(comp)
	}

	var best *MatchComponent
	bestCost := math.Inf(1)
	seen := make(map[uint64]bool)

	for b.Len() > 0 {
		batch := b.Drain()
		for _, state := range batch {
			if state.Complete(comp) {
				if state.Cost < bestCost {
					bestCost = state.Cost
					best = state
				}
				continue
			}
			for _, ext := range extend(comp, aliasOf, state) {
				next := ext.state
				key, err := shapeKey(next)
				if err == nil && seen[key] {
					pool.Put(next)
					continue
				}
				lb := lowerBound(state, next.Size-state.Size, cfg.LowerBoundLogFloor, ext.hasMaterializedEdge)
				if !math.IsInf(bestCost, 1) && lb > bestCost {
					pool.Put(next)
					continue
				}
				if err == nil {
					seen[key] = true
				}
				b.Insert(next)
			}
		}
	}

	if best == nil {
		return nil, errNoInitialState(comp)
	}
	log.WithField("cost", best.Cost).Debug("memo: selected join order")
	return best, nil
}

// extension pairs a candidate state with whether its one-height tree closed
// at least one joint (cycle-closing) edge, which the lower bound's
// logarithmic floor treats differently.
type extension struct {
	state               *MatchComponent
	hasMaterializedEdge bool
}

// extend enumerates admissible one-height-tree extensions of state: one per
// candidate root, taking every one of the root's still-unchosen incident
// edges at once (see DESIGN.md for why this trades exhaustive per-root
// subset enumeration for a single bounded candidate per root).
func extend(comp *graphmodel.ConnectedComponent, aliasOf map[*graphmodel.MatchNode]string, state *MatchComponent) []extension {
	var out []extension

	// Condition (b): root already has an unmaterialized edge into it.
	for rootAlias, root := range state.Unmaterialized {
		out = append(out, materializeRoot(comp, aliasOf, state, rootAlias, root))
	}

	// Condition (c): root is a split-copy of an already-materialized node
	// with remaining unmaterialized incident edges (self-traversal cycles).
	for alias, n := range state.Nodes {
		hasUnchosen := false
		for _, e := range comp.IncidentEdges(n) {
			if !state.chosenEdges[e] {
				hasUnchosen = true
				break
			}
		}
		if hasUnchosen {
			out = append(out, materializeRoot(comp, aliasOf, state, alias, n))
		}
	}

	return out
}

func materializeRoot(comp *graphmodel.ConnectedComponent, aliasOf map[*graphmodel.MatchNode]string, state *MatchComponent, rootAlias string, root *graphmodel.MatchNode) extension {
	next := state.clone()
	delete(next.Unmaterialized, rootAlias)
	next.Nodes[rootAlias] = root

	var materialized, unmaterialized []*graphmodel.MatchEdge
	for _, e := range comp.IncidentEdges(root) {
		if next.chosenEdges[e] {
			continue
		}
		other, dir := otherEnd(e, root)
		next.Edges[e] = dir
		next.chosenEdges[e] = true
		switch _, already := next.Nodes[aliasOf[other]]; {
		case already:
			materialized = append(materialized, e)
			if len(other.Predicates) > 0 {
				next.MaterializedNodeSplitCount[aliasOf[other]]++
			}
		case other.External:
			// Bound by the enclosing scope already; the join condition
			// below references its alias directly rather than treating it
			// as a new table to bring into the tree.
			materialized = append(materialized, e)
		default:
			next.Unmaterialized[aliasOf[other]] = other
			unmaterialized = append(unmaterialized, e)
		}
	}

	size := candidateSize(root, materialized, unmaterialized)
	next.Size = state.Size + size
	next.Cost = state.Cost + costIncrement(size, materialized)
	next.TableRef = ast.JoinTableExpr{
		Left:     state.TableRef,
		Right:    baseTableRef(root),
		JoinHint: "INNER",
		Cond:     joinCondition(materialized, unmaterialized),
	}
	return extension{state: next, hasMaterializedEdge: len(materialized) > 0}
}

// joinCondition renders the ON clause for a one-height-tree join: an
// equality between the edge's source and sink GlobalNodeId-equivalent
// column for every materialized and newly-unmaterialized edge brought in by
// this root.
func joinCondition(sets ...[]*graphmodel.MatchEdge) ast.Expr {
	var cond ast.Expr
	for _, set := range sets {
		for _, e := range set {
			eq := ast.BinaryExpr{
				Op:   "=",
				Left: ast.ColumnRef{Alias: e.Source.Alias, Column: e.EdgeColumn},
				Right: ast.ColumnRef{Alias: aliasForSink(e), Column: "GlobalNodeId"},
			}
			if cond == nil {
				cond = eq
			} else {
				cond = ast.BinaryExpr{Op: "AND", Left: cond, Right: eq}
			}
		}
	}
	return cond
}

func aliasForSink(e *graphmodel.MatchEdge) string {
	if e.Sink != nil {
		return e.Sink.Alias
	}
	return ""
}
