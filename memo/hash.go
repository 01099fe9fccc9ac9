package memo

import (
	"sort"

	"github.com/mitchellh/hashstructure"
)

// shapeKey identifies a MatchComponent's materialized-node and
// materialized-edge set, independent of accumulated cost or the order
// extensions were applied in. Two different extension sequences that reach
// the same shape are redundant work; the DP keeps the first state inserted
// for a shape and drops every later state with that shape, whatever its
// cost.
func shapeKey(m *MatchComponent) (uint64, error) {
	nodeAliases := make([]string, 0, len(m.Nodes))
	for alias := range m.Nodes {
		nodeAliases = append(nodeAliases, alias)
	}
	edgeAliases := make([]string, 0, len(m.Edges))
	for e := range m.Edges {
		edgeAliases = append(edgeAliases, e.Alias)
	}
	sort.Strings(nodeAliases)
	sort.Strings(edgeAliases)
	shape := struct {
		Nodes []string
		Edges []string
	}{Nodes: nodeAliases, Edges: edgeAliases}
	return hashstructure.Hash(shape, nil)
}
