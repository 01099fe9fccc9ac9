package memo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeam_InsertsUpToCapacityThenEvictsWorstRatio(t *testing.T) {
	b := newBeam(2)
	good := &MatchComponent{Cost: 1}
	bad := &MatchComponent{Cost: 100}
	b.Insert(good)
	b.Insert(bad)
	require.Equal(t, 2, b.Len())

	// First overflow only primes worstIdx; it must not insert yet
	// (deliberately replicated, not fixed).
	trigger := &MatchComponent{Cost: 0.5}
	b.Insert(trigger)
	require.Equal(t, 2, b.Len())
	require.True(t, b.primed)

	better := &MatchComponent{Cost: 0.1}
	b.Insert(better)
	require.Equal(t, 2, b.Len())

	drained := b.Drain()
	require.Len(t, drained, 2)
	require.Equal(t, 0, b.Len())
	require.False(t, b.primed)
}

func TestBeam_NeverEvictsUnderCapacity(t *testing.T) {
	b := newBeam(5)
	for i := 0; i < 3; i++ {
		b.Insert(&MatchComponent{Cost: float64(i)})
	}
	require.Equal(t, 3, b.Len())
}
