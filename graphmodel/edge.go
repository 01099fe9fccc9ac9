package graphmodel

import (
	"math"

	"github.com/mostafa-java/graphview-go/ast"
)

// Unbounded represents max_length = +∞.
const Unbounded = math.MaxInt32

// HistogramEntry is one sink-id bucket of an edge's degree histogram.
type HistogramEntry struct {
	SinkID    int64
	Frequency float64
	IsRange   bool
}

// Statistics holds the per-edge cardinality figures back-annotated by the
// estimator.
type Statistics struct {
	Density         float64
	Histogram       map[int64]HistogramEntry
	RowCount        int64
	MaxValue        int64
	Selectivity     float64
	AverageDegree   float64
}

// MatchEdge is a fixed-length pattern edge.
type MatchEdge struct {
	Source *MatchNode
	Sink   *MatchNode // nil until pattern construction chains the next node in

	EdgeColumn string
	Alias      string

	// BoundNodeTable is the concrete node table on whose schema EdgeColumn
	// is declared, resolved through any node-view indirection.
	BoundNodeTable ast.TableName

	Predicates []ast.Expr
	Stats      Statistics
}

// AddPredicate appends a predicate pushed down onto this edge.
func (e *MatchEdge) AddPredicate(p ast.Expr) {
	e.Predicates = append(e.Predicates, p)
}

// IsPath always reports false for a MatchEdge, including the MatchEdge
// embedded in a MatchPath when reached through a *MatchEdge; only a
// *MatchPath receiver reports true. MatchGraph.AsPath finds a path by alias.
func (e *MatchEdge) IsPath() bool { return false }

// MatchPath is a MatchEdge extended with length bounds. It embeds
// MatchEdge so every DP/estimator function that accepts *MatchEdge keeps
// working; callers that need path-specific fields type-assert via AsPath
// on the component's edge registry.
type MatchPath struct {
	MatchEdge

	MinLength int
	MaxLength int // Unbounded for +∞

	ReferencePathInfo bool
	Attributes        map[string]string
}

func (p *MatchPath) IsPath() bool { return true }

// Degree returns the estimated average out-degree of the multi-hop path:
//
//	degree(path) = d^b - (d^(a-1) if a>0 else 0)   for b < ∞, d > 1
//	degree(path) = +Inf                             for b = ∞
//	degree(path) = d                                 for d <= 1 (no growth)
func (p *MatchPath) Degree(perHopDegree float64) float64 {
	if p.MaxLength >= Unbounded {
		return math.Inf(1)
	}
	if perHopDegree <= 1 {
		return perHopDegree
	}
	hi := math.Pow(perHopDegree, float64(p.MaxLength))
	if p.MinLength > 0 {
		hi -= math.Pow(perHopDegree, float64(p.MinLength-1))
	}
	return hi
}
