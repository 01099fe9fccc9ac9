package graphmodel

// ConnectedComponent is a maximal set of pattern nodes transitively linked
// by pattern edges.
type ConnectedComponent struct {
	Nodes map[string]*MatchNode
	Edges map[string]*MatchEdge
	// IsTail marks nodes that contribute no usable columns beyond
	// terminating an edge; these may be elided from the emitted join tree.
	IsTail map[*MatchNode]bool
}

// NewConnectedComponent returns an empty component ready for the pattern
// constructor to populate.
func NewConnectedComponent() *ConnectedComponent {
	return &ConnectedComponent{
		Nodes:  make(map[string]*MatchNode),
		Edges:  make(map[string]*MatchEdge),
		IsTail: make(map[*MatchNode]bool),
	}
}

// IncidentEdges returns every edge in the component touching node, whether
// node is the edge's source or its sink.
func (c *ConnectedComponent) IncidentEdges(node *MatchNode) []*MatchEdge {
	var out []*MatchEdge
	for _, e := range c.Edges {
		if e.Source == node || e.Sink == node {
			out = append(out, e)
		}
	}
	return out
}

// MarkTail computes and stores IsTail for every node: a node is a tail if it
// has at most one incident edge and no attached predicates. Whether the
// node is referenced by a projection is not considered.
func (c *ConnectedComponent) MarkTail() {
	for _, n := range c.Nodes {
		incident := c.IncidentEdges(n)
		c.IsTail[n] = len(incident) <= 1 && len(n.Predicates) == 0
	}
}

// MatchGraph is the full decomposition of one query block's MATCH clause
// into connected components.
type MatchGraph struct {
	Components []*ConnectedComponent

	// aliasToNode and edgeAliasToEdge index every alias globally across all
	// components, enforcing the "every alias is globally unique" invariant.
	aliasToNode     map[string]*MatchNode
	edgeAliasToEdge map[string]*MatchEdge
	pathsByAlias    map[string]*MatchPath
}

// NewMatchGraph returns an empty graph ready for pattern construction to
// populate.
func NewMatchGraph() *MatchGraph {
	return &MatchGraph{
		aliasToNode:     make(map[string]*MatchNode),
		edgeAliasToEdge: make(map[string]*MatchEdge),
		pathsByAlias:    make(map[string]*MatchPath),
	}
}

// RegisterPath indexes a MatchPath by its edge alias, in addition to the
// plain RegisterEdge indexing of its embedded MatchEdge, so later passes can
// recover path-specific fields (length bounds, projection flag) from an
// alias alone.
func (g *MatchGraph) RegisterPath(p *MatchPath) {
	g.pathsByAlias[p.Alias] = p
}

// AsPath returns the MatchPath behind alias, if the edge with that alias is
// variable-length.
func (g *MatchGraph) AsPath(alias string) (*MatchPath, bool) {
	p, ok := g.pathsByAlias[alias]
	return p, ok
}

// NodeByAlias looks up a node by its globally unique alias across every
// component.
func (g *MatchGraph) NodeByAlias(alias string) (*MatchNode, bool) {
	n, ok := g.aliasToNode[alias]
	return n, ok
}

// EdgeByAlias looks up an edge by its globally unique alias.
func (g *MatchGraph) EdgeByAlias(alias string) (*MatchEdge, bool) {
	e, ok := g.edgeAliasToEdge[alias]
	return e, ok
}

// RegisterNode indexes node by alias, failing the global-uniqueness
// invariant loudly (as a panic) if called twice for the same alias — the
// constructor is responsible for get-or-create semantics and must not call
// this twice for one alias.
func (g *MatchGraph) RegisterNode(n *MatchNode) {
	if _, dup := g.aliasToNode[n.Alias]; dup {
		panic("graphmodel: node alias " + n.Alias + " registered twice")
	}
	g.aliasToNode[n.Alias] = n
}

// RegisterEdge indexes e by alias.
func (g *MatchGraph) RegisterEdge(e *MatchEdge) {
	g.edgeAliasToEdge[e.Alias] = e
}

// AllNodeAliases returns every registered node alias, in map order (callers
// needing determinism should sort or track their own declaration order).
func (g *MatchGraph) AllNodeAliases() []string {
	out := make([]string, 0, len(g.aliasToNode))
	for a := range g.aliasToNode {
		out = append(out, a)
	}
	return out
}

// NodeAliasSet returns the set of every node alias, used by predicate
// attachment to test whether all references in a conjunct fall under one
// node alias (EdgeAliasSet covers edges).
func (g *MatchGraph) NodeAliasSet() map[string]bool {
	set := make(map[string]bool, len(g.aliasToNode))
	for a := range g.aliasToNode {
		set[a] = true
	}
	return set
}

// EdgeAliasSet returns the set of every edge alias.
func (g *MatchGraph) EdgeAliasSet() map[string]bool {
	set := make(map[string]bool, len(g.edgeAliasToEdge))
	for a := range g.edgeAliasToEdge {
		set[a] = true
	}
	return set
}
