package catalog

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// catalogProbeSQL reads the GraphViewCatalogProbe relation, whose rows
// union node-column, edge-attribute, node-view-mapping and edge-view-mapping
// records tagged by RoleCode, ordered by ColumnId so that edge-view mapping
// rows observe their component edges already loaded.
const catalogProbeSQL = `
SELECT TableSchema, TableName, ColumnName, RoleCode, Reference, ColumnId, AttributeId, ViewTableId, ConcreteId
FROM GraphViewCatalogProbe
ORDER BY ColumnId ASC
`

const (
	roleEdgeAttribute  = -1
	roleNodeViewMember = -2
	roleEdgeViewMember = -3
)

// Load executes the catalog probe and builds the process-scoped
// GraphMetaData. Any probe error is returned wrapped, with no partial
// metadata handed back.
func Load(ctx context.Context, p Prober, log logrus.FieldLogger) (*GraphMetaData, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	rows, err := p.QueryxContext(ctx, catalogProbeSQL)
	if err != nil {
		return nil, errors.Wrap(err, "catalog: probe query")
	}
	defer rows.Close()

	var scanned []CatalogRow
	for rows.Next() {
		var r CatalogRow
		if err := rows.StructScan(&r); err != nil {
			return nil, errors.Wrap(err, "catalog: scan row")
		}
		scanned = append(scanned, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "catalog: row iteration")
	}
	log.WithField("rows", len(scanned)).Debug("catalog: loaded metadata rows")
	return buildGraphMetaData(scanned), nil
}

// BuildGraphMetaData exposes buildGraphMetaData for callers that already
// have catalog rows in hand (offline tooling, or another package's tests)
// and don't need to run the probe query itself. Rows must already be in
// ColumnId ascending order.
func BuildGraphMetaData(rows []CatalogRow) *GraphMetaData {
	return buildGraphMetaData(rows)
}

// buildGraphMetaData consumes the rows in the order they were scanned (the
// caller must have ordered by ColumnId ascending) and constructs the
// GraphMetaData graph. Exposed at package level so the row-interpretation
// logic is unit-testable without a live database.
func buildGraphMetaData(rows []CatalogRow) *GraphMetaData {
	g := newGraphMetaData()

	for _, r := range rows {
		switch {
		case r.RoleCode >= 0:
			applyNodeColumnRow(g, r)
		case r.RoleCode == roleEdgeAttribute:
			applyEdgeAttributeRow(g, r)
		case r.RoleCode == roleNodeViewMember:
			applyNodeViewRow(g, r)
		case r.RoleCode == roleEdgeViewMember:
			applyEdgeViewRow(g, r)
		}
	}
	return g
}

func applyNodeColumnRow(g *GraphMetaData, r CatalogRow) {
	k := newTableKey(r.TableSchema, r.TableName)
	g.nodeTables[k] = true
	cols, ok := g.columnsOfNodeTables[k]
	if !ok {
		cols = make(map[string]NodeColumns)
		g.columnsOfNodeTables[k] = cols
	}

	role := ColumnRole(r.RoleCode)
	nc := NodeColumns{Role: role}
	if role == RoleEdge || role == RoleEdgeView {
		nc.Edge = &EdgeInfo{}
		if r.Reference != "" {
			nc.Edge.SinkNodes = append(nc.Edge.SinkNodes, r.Reference)
		}
	}
	if existing, ok := cols[FoldKey(r.ColumnName)]; ok && existing.Edge != nil {
		// A later node-column row for the same (table, column) adds another
		// declared sink; preserve insertion order.
		if nc.Edge != nil {
			existing.Edge.SinkNodes = append(existing.Edge.SinkNodes, nc.Edge.SinkNodes...)
		}
		cols[FoldKey(r.ColumnName)] = existing
		return
	}
	cols[FoldKey(r.ColumnName)] = nc
}

func applyEdgeAttributeRow(g *GraphMetaData, r CatalogRow) {
	k := newTableKey(r.TableSchema, r.TableName)
	cols := g.columnsOfNodeTables[k]
	if cols == nil {
		return
	}
	nc, ok := cols[FoldKey(r.ColumnName)]
	if !ok || nc.Edge == nil {
		return
	}
	nc.Edge.ColumnAttributes = append(nc.Edge.ColumnAttributes, r.Reference)
}

func applyNodeViewRow(g *GraphMetaData, r CatalogRow) {
	k := newTableKey(r.TableSchema, r.TableName)
	members, ok := g.nodeViewMapping[k]
	if !ok {
		members = make(map[string]bool)
		g.nodeViewMapping[k] = members
	}
	members[r.Reference] = true
}

// applyEdgeViewRow folds a concrete edge into the edge-view's EdgeColumns
// list. Because rows arrive in ColumnId order, the edge view's own
// node-column row (RoleEdgeView) was already applied, so Edge is non-nil.
func applyEdgeViewRow(g *GraphMetaData, r CatalogRow) {
	k := newTableKey(r.TableSchema, r.TableName)
	cols := g.columnsOfNodeTables[k]
	if cols == nil {
		return
	}
	nc, ok := cols[FoldKey(r.ColumnName)]
	if !ok || nc.Edge == nil {
		return
	}
	nc.Edge.EdgeColumns = append(nc.Edge.EdgeColumns, EdgeViewMember{
		SourceTable: r.TableName,
		EdgeColumn:  r.Reference,
	})
}
