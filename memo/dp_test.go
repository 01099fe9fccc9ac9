package memo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/graphmodel"
)

func newTestNode(alias string, rows float64) *graphmodel.MatchNode {
	return &graphmodel.MatchNode{
		Alias:         alias,
		Table:         ast.TableName{Schema: "dbo", Name: alias + "_table"},
		EstimatedRows: rows,
	}
}

func newTestEdge(alias string, source, sink *graphmodel.MatchNode, avgDegree float64) *graphmodel.MatchEdge {
	e := &graphmodel.MatchEdge{
		Source:     source,
		Sink:       sink,
		EdgeColumn: alias + "Id",
		Alias:      alias,
		Stats:      graphmodel.Statistics{AverageDegree: avgDegree},
	}
	source.Neighbors = append(source.Neighbors, e)
	return e
}

func testConfig() Config {
	return Config{MaxStates: 16, LowerBoundLogFloor: 1.0}
}

// Two-hop simple path: a -[e1]-> b -[e2]-> c, no cycles.
func TestPlan_TwoHopChain(t *testing.T) {
	a := newTestNode("a", 100)
	b := newTestNode("b", 50)
	c := newTestNode("c", 10)
	e1 := newTestEdge("e1", a, b, 2)
	e2 := newTestEdge("e2", b, c, 3)

	comp := graphmodel.NewConnectedComponent()
	comp.Nodes["a"] = a
	comp.Nodes["b"] = b
	comp.Nodes["c"] = c
	comp.Edges["e1"] = e1
	comp.Edges["e2"] = e2
	comp.MarkTail()

	best, err := Plan(comp, testConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, best)
	require.Len(t, best.Nodes, 3)
	require.Len(t, best.Edges, 2)
	require.Empty(t, best.Unmaterialized)
	require.True(t, best.Complete(comp))
}

// Triangle: a -[e1]-> b -[e2]-> c -[e3]-> a. The chosen plan must be complete
// and cover all three nodes and all three edges, cycle-closing edge
// included.
func TestPlan_TriangleClosesCycle(t *testing.T) {
	a := newTestNode("a", 100)
	b := newTestNode("b", 50)
	c := newTestNode("c", 20)
	e1 := newTestEdge("e1", a, b, 2)
	e2 := newTestEdge("e2", b, c, 2)
	e3 := newTestEdge("e3", c, a, 1)

	comp := graphmodel.NewConnectedComponent()
	comp.Nodes["a"] = a
	comp.Nodes["b"] = b
	comp.Nodes["c"] = c
	comp.Edges["e1"] = e1
	comp.Edges["e2"] = e2
	comp.Edges["e3"] = e3
	comp.MarkTail()

	best, err := Plan(comp, testConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, best)
	require.Len(t, best.Nodes, 3)
	require.Len(t, best.Edges, 3)
	require.True(t, best.Complete(comp))
}

// A node with an attached predicate is never marked tail even with a single
// incident edge, so it remains eligible as an initialization root.
func TestPlan_PredicatedLeafIsNotTail(t *testing.T) {
	a := newTestNode("a", 100)
	b := newTestNode("b", 10)
	b.AddPredicate(ast.BinaryExpr{Op: "=", Left: ast.ColumnRef{Alias: "b", Column: "Status"}, Right: ast.Literal{Text: "'active'"}})
	newTestEdge("e1", a, b, 2)

	comp := graphmodel.NewConnectedComponent()
	comp.Nodes["a"] = a
	comp.Nodes["b"] = b
	for _, n := range []*graphmodel.MatchNode{a, b} {
		for _, e := range n.Neighbors {
			comp.Edges[e.Alias] = e
		}
	}
	comp.MarkTail()

	require.False(t, comp.IsTail[b])

	best, err := Plan(comp, testConfig(), nil)
	require.NoError(t, err)
	require.True(t, best.Complete(comp))
}

// Two disconnected edges sharing no node form two distinct components; each
// is planned independently and both must reach completeness.
func TestPlan_DisconnectedComponentsPlanIndependently(t *testing.T) {
	a := newTestNode("a", 100)
	b := newTestNode("b", 50)
	newTestEdge("e1", a, b, 2)
	compAB := graphmodel.NewConnectedComponent()
	compAB.Nodes["a"] = a
	compAB.Nodes["b"] = b
	compAB.Edges["e1"] = a.Neighbors[0]
	compAB.MarkTail()

	c := newTestNode("c", 30)
	d := newTestNode("d", 15)
	newTestEdge("e2", c, d, 4)
	compCD := graphmodel.NewConnectedComponent()
	compCD.Nodes["c"] = c
	compCD.Nodes["d"] = d
	compCD.Edges["e2"] = c.Neighbors[0]
	compCD.MarkTail()

	bestAB, err := Plan(compAB, testConfig(), nil)
	require.NoError(t, err)
	require.True(t, bestAB.Complete(compAB))

	bestCD, err := Plan(compCD, testConfig(), nil)
	require.NoError(t, err)
	require.True(t, bestCD.Complete(compCD))
}
