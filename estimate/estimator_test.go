package estimate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/graphmodel"
)

func TestApplyNodeRowCounts_SumsAcrossConcreteTables(t *testing.T) {
	a := &graphmodel.MatchNode{Alias: "a"}
	comp := graphmodel.NewConnectedComponent()
	comp.Nodes["a"] = a

	rows := []NodeRowCount{
		{Alias: "a", ConcreteTable: "Employee", EstimatedRows: 100, RealRowCount: 90},
		{Alias: "a", ConcreteTable: "Contractor", EstimatedRows: 20, RealRowCount: 15},
	}
	ApplyNodeRowCounts(comp, rows)

	require.Equal(t, float64(120), a.EstimatedRows)
	require.Equal(t, int64(105), a.TableRowCount)
}

func TestDecodeHistogram_CountsFrequencyAndScale(t *testing.T) {
	blob := make([]byte, 0, 24)
	for _, id := range []int64{1, 1, 2} {
		b := make([]byte, 8)
		for i := 7; i >= 0; i-- {
			b[i] = byte(id & 0xff)
			id >>= 8
		}
		blob = append(blob, b...)
	}

	hist, scale := DecodeHistogram(blob, 3)
	require.Len(t, hist, 2)
	require.Equal(t, float64(2), hist[1].Frequency)
	require.Equal(t, float64(1), hist[2].Frequency)
	require.Equal(t, 1.0, scale)
}

func TestApplyDensity_FallsBackToDefaultOnDegenerateValues(t *testing.T) {
	n := &graphmodel.MatchNode{}

	require.NoError(t, ApplyDensity(n, nil, 0.25))
	require.Equal(t, 0.25, n.GlobalNodeIDDensity)

	require.NoError(t, ApplyDensity(n, 1.0, 0.25))
	require.Equal(t, 0.25, n.GlobalNodeIDDensity)

	require.NoError(t, ApplyDensity(n, 0.02, 0.25))
	require.Equal(t, 0.02, n.GlobalNodeIDDensity)
}

func TestApplyEdgeDegree_AppliesPathFormulaForVariableLength(t *testing.T) {
	comp := graphmodel.NewConnectedComponent()
	path := &graphmodel.MatchPath{
		MatchEdge: graphmodel.MatchEdge{Alias: "p"},
		MinLength: 1,
		MaxLength: 2,
	}
	comp.Edges["p"] = &path.MatchEdge

	fake := fakePathGraph{paths: map[string]*graphmodel.MatchPath{"p": path}}
	row := EdgeDegreeRow{EdgeAlias: "p", SampleBlob: make([]byte, 8), SampleRowCount: 1, AverageDegree: 3}
	ApplyEdgeDegree(comp, fake, row)

	require.Equal(t, path.Degree(3), path.Stats.AverageDegree)
}

func TestRenderPredicates_JoinsWithAnd(t *testing.T) {
	preds := []ast.Expr{
		ast.BinaryExpr{Op: "=", Left: ast.ColumnRef{Alias: "a", Column: "X"}, Right: ast.Literal{Text: "1"}},
		ast.BinaryExpr{Op: ">", Left: ast.ColumnRef{Alias: "a", Column: "Y"}, Right: ast.Literal{Text: "0"}},
	}
	require.Equal(t, " WHERE (a.X = 1) AND (a.Y > 0)", renderPredicates(preds))
}

type fakePathGraph struct {
	paths map[string]*graphmodel.MatchPath
}

func (f fakePathGraph) AsPath(alias string) (*graphmodel.MatchPath, bool) {
	p, ok := f.paths[alias]
	return p, ok
}
