package graphmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchPath_Degree_UnboundedIsInfinite(t *testing.T) {
	p := &MatchPath{MinLength: 1, MaxLength: Unbounded}
	require.True(t, math.IsInf(p.Degree(2), 1))
}

func TestMatchPath_Degree_NoGrowthWhenPerHopAtMostOne(t *testing.T) {
	p := &MatchPath{MinLength: 1, MaxLength: 5}
	require.Equal(t, 0.5, p.Degree(0.5))
	require.Equal(t, 1.0, p.Degree(1))
}

func TestMatchPath_Degree_BoundedGrowthSubtractsFloor(t *testing.T) {
	p := &MatchPath{MinLength: 2, MaxLength: 3}
	got := p.Degree(2)
	want := math.Pow(2, 3) - math.Pow(2, 1)
	require.Equal(t, want, got)
}

func TestMatchPath_Degree_ZeroMinLengthHasNoFloor(t *testing.T) {
	p := &MatchPath{MinLength: 0, MaxLength: 3}
	got := p.Degree(2)
	require.Equal(t, math.Pow(2, 3), got)
}

func TestMatchEdge_IsPath(t *testing.T) {
	e := &MatchEdge{}
	require.False(t, e.IsPath())

	p := &MatchPath{}
	require.True(t, p.IsPath())
}
