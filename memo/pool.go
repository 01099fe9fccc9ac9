package memo

import uuid "github.com/satori/go.uuid"

// statePool is a slice-backed freelist for MatchComponent values. States
// churn heavily during DP (design note: "use a freelist or arena
// allocator"); rather than returning every discarded state to the garbage
// collector, the pool hands back a zeroed value for reuse whenever the DP
// drops a dominated or pruned state.
type statePool struct {
	free []*MatchComponent
}

func newStatePool() *statePool {
	return &statePool{}
}

// Get returns a fresh MatchComponent, reusing a freed one's backing struct
// when available so the allocator doesn't churn through the GC on every DP
// iteration.
func (p *statePool) Get() *MatchComponent {
	id := uuid.Must(uuid.NewV4()).String()
	if n := len(p.free); n > 0 {
		m := p.free[n-1]
		p.free = p.free[:n-1]
		*m = MatchComponent{ID: id}
		return m
	}
	return &MatchComponent{ID: id}
}

// Put returns a discarded (pruned or dominated) state to the freelist.
func (p *statePool) Put(m *MatchComponent) {
	p.free = append(p.free, m)
}
