package memo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mostafa-java/graphview-go/graphmodel"
)

func TestCandidateSize_MultipliesRootByEveryEdgeDegree(t *testing.T) {
	root := &graphmodel.MatchNode{EstimatedRows: 10}
	e1 := &graphmodel.MatchEdge{Stats: graphmodel.Statistics{AverageDegree: 2}}
	e2 := &graphmodel.MatchEdge{Stats: graphmodel.Statistics{AverageDegree: 3}}

	got := candidateSize(root, []*graphmodel.MatchEdge{e1}, []*graphmodel.MatchEdge{e2})
	require.Equal(t, 60.0, got)
}

func TestCandidateSize_FloorsNonPositiveRootRows(t *testing.T) {
	root := &graphmodel.MatchNode{EstimatedRows: 0}
	got := candidateSize(root, nil, nil)
	require.Equal(t, 1.0, got)
}

func TestCostIncrement_DiscountsByMaterializedSelectivity(t *testing.T) {
	e := &graphmodel.MatchEdge{Stats: graphmodel.Statistics{Selectivity: 0.5}}
	got := costIncrement(100, []*graphmodel.MatchEdge{e})
	require.Equal(t, 50.0, got)
}

func TestSelectivity_FallsBackToInverseDegree(t *testing.T) {
	e := &graphmodel.MatchEdge{Stats: graphmodel.Statistics{AverageDegree: 4}}
	require.Equal(t, 0.25, selectivity(e))
}

func TestLowerBound_AddsLogFloorOnlyWithoutMaterializedEdge(t *testing.T) {
	st := &MatchComponent{Cost: 10, Size: 5}
	withMat := lowerBound(st, 2, 1.0, true)
	withoutMat := lowerBound(st, 2, 1.0, false)
	require.Equal(t, 17.0, withMat)
	require.Equal(t, 18.0, withoutMat)
}
