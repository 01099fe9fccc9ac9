package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mostafa-java/graphview-go/ast"
)

func twoHopMatch() *ast.SelectStatement {
	return &ast.SelectStatement{
		Match: &ast.MatchClause{Paths: []ast.MatchPathDecl{{Steps: []ast.MatchStep{
			{
				Node: "a", NodeTable: ast.TableName{Schema: "dbo", Name: "Person"},
				EdgeColumn: "Knows", MinLength: 1, MaxLength: 1,
				NextNode: "b", NextTable: ast.TableName{Schema: "dbo", Name: "Person"},
			},
			{
				Node: "b", NodeTable: ast.TableName{Schema: "dbo", Name: "Person"},
				EdgeColumn: "Knows", MinLength: 1, MaxLength: 1,
				NextNode: "c", NextTable: ast.TableName{Schema: "dbo", Name: "Person"},
			},
		}}}},
	}
}

func TestConstruct_BuildsSingleConnectedComponent(t *testing.T) {
	meta := personKnowsMeta()
	stmt := twoHopMatch()

	res, err := Construct(meta, stmt)
	require.NoError(t, err)
	require.Len(t, res.Graph.Components, 1)

	comp := res.Graph.Components[0]
	require.Len(t, comp.Nodes, 3)
	require.Len(t, comp.Edges, 2)
}

func TestConstruct_SynthesizesDeterministicEdgeAlias(t *testing.T) {
	meta := personKnowsMeta()
	stmt := twoHopMatch()

	res, err := Construct(meta, stmt)
	require.NoError(t, err)
	require.Equal(t, []string{"a_Knows_b"}, res.EdgeColumnToAliases["Knows"][:1])
}

func TestConstruct_TwoDisjointPathsFormTwoComponents(t *testing.T) {
	meta := personKnowsMeta()
	stmt := &ast.SelectStatement{
		Match: &ast.MatchClause{Paths: []ast.MatchPathDecl{
			{Steps: []ast.MatchStep{{
				Node: "a", NodeTable: ast.TableName{Schema: "dbo", Name: "Person"},
				EdgeColumn: "Knows", MinLength: 1, MaxLength: 1,
				NextNode: "b", NextTable: ast.TableName{Schema: "dbo", Name: "Person"},
			}}},
			{Steps: []ast.MatchStep{{
				Node: "c", NodeTable: ast.TableName{Schema: "dbo", Name: "Person"},
				EdgeColumn: "Knows", MinLength: 1, MaxLength: 1,
				NextNode: "d", NextTable: ast.TableName{Schema: "dbo", Name: "Person"},
			}}},
		}},
	}

	res, err := Construct(meta, stmt)
	require.NoError(t, err)
	require.Len(t, res.Graph.Components, 2)
}

func TestConstruct_ExcludesExternalAliasFromComponentNodes(t *testing.T) {
	meta := personKnowsMeta()
	stmt := twoHopMatch()
	stmt.ExternalAliases = map[string]ast.TableName{"a": {Schema: "dbo", Name: "Person"}}

	res, err := Construct(meta, stmt)
	require.NoError(t, err)

	n, ok := res.Graph.NodeByAlias("a")
	require.True(t, ok)
	require.True(t, n.External)

	require.Len(t, res.Graph.Components, 1)
	comp := res.Graph.Components[0]
	_, stillPresent := comp.Nodes["a"]
	require.False(t, stillPresent, "external alias must not be a DP join target")
	require.Len(t, comp.Nodes, 2)
	// The edge from the external node into "b" still carries through, so
	// the join condition can reference "a" directly without a glue predicate.
	require.Contains(t, comp.Edges, "a_Knows_b")
	require.Nil(t, stmt.Where)
}

func TestConstruct_VariableLengthStepRegistersAsPath(t *testing.T) {
	meta := personKnowsMeta()
	stmt := &ast.SelectStatement{
		Match: &ast.MatchClause{Paths: []ast.MatchPathDecl{{Steps: []ast.MatchStep{
			{
				Node: "a", NodeTable: ast.TableName{Schema: "dbo", Name: "Person"},
				EdgeColumn: "Knows", EdgeAlias: "p", MinLength: 1, MaxLength: 3,
				NextNode: "b", NextTable: ast.TableName{Schema: "dbo", Name: "Person"},
			},
		}}}},
	}

	res, err := Construct(meta, stmt)
	require.NoError(t, err)

	p, ok := res.Graph.AsPath("p")
	require.True(t, ok)
	require.Equal(t, 1, p.MinLength)
	require.Equal(t, 3, p.MaxLength)
}
