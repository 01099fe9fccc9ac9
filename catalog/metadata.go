// Package catalog loads and holds GraphMetaData, the process-scoped schema
// description the planner consults to validate a pattern and to resolve
// edge-column bindings.
package catalog

import (
	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// FoldKey normalizes a schema/table/column/alias identifier so that catalog
// and pattern lookups are case-insensitive everywhere. All case folding for
// identifiers goes through this one function so the comparison can't drift.
func FoldKey(s string) string {
	return foldCaser.String(s)
}

// ColumnRole classifies a node-table column per the catalog's role code.
// Non-negative roles are node-table columns; negative roles describe
// auxiliary rows (edge attributes, view mappings) folded into the same
// probe.
type ColumnRole int

const (
	RoleProperty ColumnRole = iota
	RoleEdge
	RoleEdgeView
	RoleNodeID
)

// EdgeInfo describes one edge column: its declared sink node tables, the
// concrete edges backing it if it is itself an edge view, and its attribute
// columns.
type EdgeInfo struct {
	// SinkNodes is insertion-ordered, not a set, so that FirstSink is
	// deterministic rather than picking an arbitrary entry each time.
	SinkNodes []string
	// EdgeColumns is populated only when this EdgeInfo describes an edge
	// view: the concrete (source-table, edge-column-name) pairs it unions.
	EdgeColumns      []EdgeViewMember
	ColumnAttributes []string
}

// FirstSink returns the first declared sink table name, deterministically.
func (e EdgeInfo) FirstSink() (string, bool) {
	if len(e.SinkNodes) == 0 {
		return "", false
	}
	return e.SinkNodes[0], true
}

// HasSink reports whether table is among the edge's declared sinks
// (case-insensitively).
func (e EdgeInfo) HasSink(table string) bool {
	want := FoldKey(table)
	for _, s := range e.SinkNodes {
		if FoldKey(s) == want {
			return true
		}
	}
	return false
}

// EdgeViewMember is one concrete edge unioned by an edge view.
type EdgeViewMember struct {
	SourceTable string
	EdgeColumn  string
}

// NodeColumns is the catalog's per-column record for a node table.
type NodeColumns struct {
	Role ColumnRole
	Edge *EdgeInfo // non-nil iff Role is RoleEdge or RoleEdgeView
}

// tableKey is the case-folded (schema, table) catalog key.
type tableKey struct {
	Schema string
	Table  string
}

func newTableKey(schema, table string) tableKey {
	return tableKey{Schema: FoldKey(schema), Table: FoldKey(table)}
}

// GraphMetaData is the process-scoped, read-only-after-load schema
// description. It is safe to share across concurrent planner invocations
// once Load returns.
type GraphMetaData struct {
	columnsOfNodeTables map[tableKey]map[string]NodeColumns
	nodeViewMapping     map[tableKey]map[string]bool
	edgeViewMapping     map[tableKey]map[string]bool
	nodeTables          map[tableKey]bool
}

func newGraphMetaData() *GraphMetaData {
	return &GraphMetaData{
		columnsOfNodeTables: make(map[tableKey]map[string]NodeColumns),
		nodeViewMapping:     make(map[tableKey]map[string]bool),
		edgeViewMapping:     make(map[tableKey]map[string]bool),
		nodeTables:          make(map[tableKey]bool),
	}
}

// IsNodeTable reports whether (schema, table) is a concrete node table or a
// node view with at least one mapped concrete table.
func (g *GraphMetaData) IsNodeTable(schema, table string) bool {
	k := newTableKey(schema, table)
	if g.nodeTables[k] {
		return true
	}
	_, isView := g.nodeViewMapping[k]
	return isView
}

// ConcreteNodeTables resolves a node table or node view name to the set of
// concrete table names behind it (a single-element slice for a concrete
// table).
func (g *GraphMetaData) ConcreteNodeTables(schema, table string) []string {
	k := newTableKey(schema, table)
	if views, ok := g.nodeViewMapping[k]; ok {
		out := make([]string, 0, len(views))
		for name := range views {
			out = append(out, name)
		}
		return out
	}
	return []string{table}
}

// Columns returns the column map for a concrete node table, or nil if the
// table is unknown.
func (g *GraphMetaData) Columns(schema, table string) map[string]NodeColumns {
	return g.columnsOfNodeTables[newTableKey(schema, table)]
}

// EdgeColumn looks up the EdgeInfo for an edge column declared on a concrete
// node table.
func (g *GraphMetaData) EdgeColumn(schema, table, column string) (EdgeInfo, bool) {
	cols := g.Columns(schema, table)
	if cols == nil {
		return EdgeInfo{}, false
	}
	nc, ok := cols[FoldKey(column)]
	if !ok || nc.Edge == nil {
		return EdgeInfo{}, false
	}
	return *nc.Edge, true
}
