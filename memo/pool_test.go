package memo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatePool_ReusesFreedState(t *testing.T) {
	p := newStatePool()
	a := p.Get()
	a.Cost = 42
	p.Put(a)

	b := p.Get()
	require.Same(t, a, b)
	require.Equal(t, 0.0, b.Cost)
	require.NotEmpty(t, b.ID)
}

func TestStatePool_AllocatesFreshWhenEmpty(t *testing.T) {
	p := newStatePool()
	a := p.Get()
	b := p.Get()
	require.NotSame(t, a, b)
	require.NotEqual(t, a.ID, b.ID)
}
