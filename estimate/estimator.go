// Package estimate builds the catalog probes that estimate row counts, edge
// degrees, and node-table density, and back-annotates a ConnectedComponent
// with the results.
package estimate

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/catalog"
	"github.com/mostafa-java/graphview-go/graphmodel"
)

// NodeRowCount is one row of the per-node cardinality probe: the estimated
// row count for one concrete table behind a (possibly viewed) node alias.
type NodeRowCount struct {
	Alias         string `db:"Alias"`
	ConcreteTable string `db:"ConcreteTable"`
	EstimatedRows int64  `db:"EstimatedRows"`
	RealRowCount  int64  `db:"RealRowCount"`
}

// EdgeDegreeRow is one row of the per-edge sampling probe.
type EdgeDegreeRow struct {
	EdgeAlias      string `db:"EdgeAlias"`
	SampleBlob     []byte `db:"SampleBlob"`
	SampleRowCount int64  `db:"SampleRowCount"`
	AverageDegree  float64 `db:"AverageDegree"`
}

// DensityRow is one row of the DBCC SHOW_STATISTICS-equivalent probe.
type DensityRow struct {
	TableAlias string      `db:"TableAlias"`
	Density    interface{} `db:"Density"`
}

// BuildNodeProbeSQL renders one `SELECT <alias>, <concrete table>,
// COUNT(GlobalNodeId), COUNT(GlobalNodeId) FROM <schema>.<table> AS [alias]
// WITH (ForceScan) WHERE <predicates>` per concrete table behind a node,
// unioned across every node in the component. EstimatedRows and
// RealRowCount both come from that same filtered count.
func BuildNodeProbeSQL(meta *catalog.GraphMetaData, comp *graphmodel.ConnectedComponent) string {
	var parts []string
	for alias, n := range comp.Nodes {
		schema := n.Table.Schema
		for _, concrete := range meta.ConcreteNodeTables(schema, n.Table.Name) {
			where := renderPredicates(n.Predicates)
			parts = append(parts, fmt.Sprintf(
				"SELECT %q AS Alias, %q AS ConcreteTable, COUNT(GlobalNodeId) AS EstimatedRows, COUNT(GlobalNodeId) AS RealRowCount FROM %s.%s AS [%s] WITH (ForceScan)%s",
				alias, concrete, schema, concrete, alias, where,
			))
		}
	}
	return strings.Join(parts, "\nUNION ALL\n")
}

func renderPredicates(preds []ast.Expr) string {
	if len(preds) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" WHERE ")
	for i, p := range preds {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(p.String())
	}
	return sb.String()
}

// BuildEdgeProbeSQL renders one probe per fixed or variable-length edge in
// comp over the edge's bound node table: the sink ids aggregated into a
// binary blob, the scanned row count, and an AverageDegree column, the
// inputs DecodeHistogram and ApplyEdgeDegree need. The scan is not limited
// to a sample, no sampling table or degree statistics table is read, and
// AverageDegree is the constant 1.0.
func BuildEdgeProbeSQL(comp *graphmodel.ConnectedComponent) string {
	var parts []string
	for alias, e := range comp.Edges {
		src := e.Source.Alias
		parts = append(parts, fmt.Sprintf(
			"SELECT %q AS EdgeAlias, CAST(dbo.SinkIdSampleAgg(%s) AS varbinary(max)) AS SampleBlob, "+
				"COUNT(*) AS SampleRowCount, AVG(CAST(1.0 AS float)) AS AverageDegree FROM %s AS [%s]",
			alias, e.EdgeColumn, e.BoundNodeTable.String(), src,
		))
	}
	return strings.Join(parts, "\nUNION ALL\n")
}

// BuildDensityProbeSQL renders one density lookup per node table behind
// comp, mirroring the catalog statistics columns.
func BuildDensityProbeSQL(meta *catalog.GraphMetaData, comp *graphmodel.ConnectedComponent) string {
	var parts []string
	for alias, n := range comp.Nodes {
		parts = append(parts, fmt.Sprintf(
			"SELECT %q AS TableAlias, stat.Density AS Density FROM sys.stats stat WHERE stat.object_id = OBJECT_ID(%q)",
			alias, n.Table.String(),
		))
	}
	return strings.Join(parts, "\nUNION ALL\n")
}

// ApplyNodeRowCounts back-annotates every node in comp from the probe's
// rows, summing across concrete tables behind a node view: a node whose
// table is a view over k concrete tables gets estimated_rows = Σ k
// children.
func ApplyNodeRowCounts(comp *graphmodel.ConnectedComponent, rows []NodeRowCount) {
	sums := make(map[string]struct {
		est, real int64
	})
	for _, r := range rows {
		s := sums[r.Alias]
		s.est += r.EstimatedRows
		s.real += r.RealRowCount
		sums[r.Alias] = s
	}
	for alias, n := range comp.Nodes {
		s := sums[alias]
		n.EstimatedRows = float64(s.est)
		n.TableRowCount = s.real
	}
}

// DecodeHistogram builds a sink-id -> frequency histogram from the sampled
// sink-id blob, treating it as a sequence of big-endian int64 sink ids.
// Degree is scaled by blob_size/sample_row_count.
func DecodeHistogram(blob []byte, sampleRowCount int64) (map[int64]graphmodel.HistogramEntry, float64) {
	hist := make(map[int64]graphmodel.HistogramEntry)
	n := len(blob) / 8
	for i := 0; i < n; i++ {
		id := int64(binary.BigEndian.Uint64(blob[i*8 : i*8+8]))
		e := hist[id]
		e.SinkID = id
		e.Frequency++
		hist[id] = e
	}
	scale := 1.0
	if sampleRowCount > 0 {
		scale = float64(n) / float64(sampleRowCount)
	}
	return hist, scale
}

// ApplyEdgeDegree back-annotates a fixed edge or path from one
// EdgeDegreeRow, applying the MatchPath length-bound formula when the edge
// is variable-length.
func ApplyEdgeDegree(comp *graphmodel.ConnectedComponent, graph interface {
	AsPath(alias string) (*graphmodel.MatchPath, bool)
}, row EdgeDegreeRow) {
	e, ok := comp.Edges[row.EdgeAlias]
	if !ok {
		return
	}
	hist, scale := DecodeHistogram(row.SampleBlob, row.SampleRowCount)
	perHop := row.AverageDegree * scale

	e.Stats.Histogram = hist
	e.Stats.RowCount = row.SampleRowCount

	if p, isPath := graph.AsPath(row.EdgeAlias); isPath {
		e.Stats.AverageDegree = p.Degree(perHop)
		return
	}
	e.Stats.AverageDegree = perHop
}

// ApplyDensity sets a node's density, falling back to cfg's default when the
// catalog reports an absent or 1.0 density.
func ApplyDensity(n *graphmodel.MatchNode, raw interface{}, defaultDensity float64) error {
	if raw == nil {
		n.GlobalNodeIDDensity = defaultDensity
		return nil
	}
	d, err := cast.ToFloat64E(raw)
	if err != nil {
		return errors.Wrap(err, "estimate: coerce density")
	}
	if d == 0 || d == 1.0 {
		d = defaultDensity
	}
	n.GlobalNodeIDDensity = d
	return nil
}

// Prober is the query interface the estimator needs; declared locally, with
// rows returned through Scanner rather than *sqlx.Rows, so Run does not
// depend on catalog.Prober and can be exercised against a fake.
type Prober interface {
	QueryRows(ctx context.Context, query string) (Scanner, error)
}

// Scanner abstracts row iteration so the estimator's orchestration can be
// exercised against a fake in tests without a live sqlx.Rows.
type Scanner interface {
	Next() bool
	StructScan(dest interface{}) error
	Close() error
	Err() error
}

// Run executes all three catalog probes for comp and back-annotates it. The
// SQL of all three probes is built here; density is probed per node through
// BuildDensityProbeSQL's sys.stats lookup, standing in for "DBCC
// SHOW_STATISTICS".
func Run(ctx context.Context, p Prober, meta *catalog.GraphMetaData, graph interface {
	AsPath(alias string) (*graphmodel.MatchPath, bool)
}, comp *graphmodel.ConnectedComponent, defaultDensity float64, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}

	nodeSQL := BuildNodeProbeSQL(meta, comp)
	if nodeSQL != "" {
		rows, err := p.QueryRows(ctx, nodeSQL)
		if err != nil {
			return errors.Wrap(err, "estimate: node probe")
		}
		var scanned []NodeRowCount
		for rows.Next() {
			var r NodeRowCount
			if err := rows.StructScan(&r); err != nil {
				rows.Close()
				return errors.Wrap(err, "estimate: scan node row")
			}
			scanned = append(scanned, r)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return errors.Wrap(err, "estimate: node probe iteration")
		}
		ApplyNodeRowCounts(comp, scanned)
	}

	edgeSQL := BuildEdgeProbeSQL(comp)
	if edgeSQL != "" {
		rows, err := p.QueryRows(ctx, edgeSQL)
		if err != nil {
			return errors.Wrap(err, "estimate: edge probe")
		}
		var scanErr error
		for rows.Next() {
			var r EdgeDegreeRow
			if err := rows.StructScan(&r); err != nil {
				scanErr = err
				break
			}
			ApplyEdgeDegree(comp, graph, r)
		}
		if scanErr == nil {
			scanErr = rows.Err()
		}
		rows.Close()
		if scanErr != nil {
			return errors.Wrap(scanErr, "estimate: edge probe iteration")
		}
	}

	densitySQL := BuildDensityProbeSQL(meta, comp)
	if densitySQL != "" {
		rows, err := p.QueryRows(ctx, densitySQL)
		if err != nil {
			return errors.Wrap(err, "estimate: density probe")
		}
		var scanErr error
		for rows.Next() {
			var r DensityRow
			if err := rows.StructScan(&r); err != nil {
				scanErr = err
				break
			}
			if n, ok := comp.Nodes[r.TableAlias]; ok {
				if err := ApplyDensity(n, r.Density, defaultDensity); err != nil {
					scanErr = err
					break
				}
			}
		}
		if scanErr == nil {
			scanErr = rows.Err()
		}
		rows.Close()
		if scanErr != nil {
			return errors.Wrap(scanErr, "estimate: density probe iteration")
		}
	}

	var totalRows int64
	for _, n := range comp.Nodes {
		totalRows += n.TableRowCount
	}
	log.WithFields(logrus.Fields{
		"nodes":      len(comp.Nodes),
		"total_rows": humanize.Comma(totalRows),
	}).Debug("estimate: cardinalities and degrees applied")
	return nil
}
