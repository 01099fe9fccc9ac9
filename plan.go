// Package graphview wires catalog loading, pattern validation and
// construction, cost estimation, and join-order search into the single
// entry point a query-processing engine calls once per MATCH-bearing query
// block.
package graphview

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/catalog"
	"github.com/mostafa-java/graphview-go/emit"
	"github.com/mostafa-java/graphview-go/estimate"
	"github.com/mostafa-java/graphview-go/graphmodel"
	"github.com/mostafa-java/graphview-go/memo"
	"github.com/mostafa-java/graphview-go/planner"
)

// Planner holds the process-scoped catalog metadata and configuration a
// single host connects once and then calls Plan on for every incoming
// query block.
type Planner struct {
	Meta   *catalog.GraphMetaData
	Config planner.Config
	Log    logrus.FieldLogger
}

// NewPlanner loads the catalog through p and returns a Planner ready to
// plan query blocks. Catalog load failure is fatal.
func NewPlanner(ctx context.Context, p catalog.Prober, cfg planner.Config, log logrus.FieldLogger) (*Planner, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	meta, err := catalog.Load(ctx, p, log)
	if err != nil {
		return nil, errors.Wrap(err, "graphview: load catalog")
	}
	return &Planner{Meta: meta, Config: cfg, Log: log}, nil
}

// estimateProber adapts catalog.Prober to estimate.Prober; *sqlx.Rows
// already satisfies estimate.Scanner, so no row-level adapter is needed.
type estimateProber struct {
	cp catalog.Prober
}

func (e estimateProber) QueryRows(ctx context.Context, query string) (estimate.Scanner, error) {
	rows, err := e.cp.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Plan validates and rewrites stmt in place: it resolves the MATCH clause
// against the catalog, decomposes it into connected components, estimates
// and costs a join order for each, and emits the rewritten
// FROM/WHERE/SELECT with the MATCH clause consumed. stmt.Match must be
// non-nil; a query block without a MATCH clause should never reach Plan.
func (pl *Planner) Plan(ctx context.Context, p catalog.Prober, stmt *ast.SelectStatement) error {
	if stmt.Match == nil {
		return errors.New("graphview: Plan called on a statement with no MATCH clause")
	}

	if err := planner.Validate(pl.Meta, stmt.Match); err != nil {
		return err
	}

	res, err := planner.Construct(pl.Meta, stmt)
	if err != nil {
		return err
	}
	planner.AttachPredicates(res.Graph, stmt)

	eProber := estimateProber{cp: p}
	memoCfg := memo.Config{MaxStates: pl.Config.MaxStates, LowerBoundLogFloor: pl.Config.LowerBoundLogFloor}

	plans := make([]*memo.MatchComponent, 0, len(res.Graph.Components))
	for _, comp := range res.Graph.Components {
		if err := estimate.Run(ctx, eProber, pl.Meta, res.Graph, comp, pl.Config.DefaultDensity, pl.Log); err != nil {
			return errors.Wrap(err, "graphview: estimate component")
		}

		plan, err := memo.Plan(comp, memoCfg, pl.Log)
		if err != nil {
			return planner.ErrNoAdmissibleState.New(firstAlias(comp))
		}
		plans = append(plans, plan)
	}

	return emit.Emit(stmt, res.Graph, plans)
}

// firstAlias picks a representative node alias for an error message; which
// one is arbitrary, only the component's identity matters to the reader.
func firstAlias(comp *graphmodel.ConnectedComponent) string {
	for alias := range comp.Nodes {
		return alias
	}
	return "<empty>"
}
