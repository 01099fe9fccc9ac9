package memo

import "github.com/mostafa-java/graphview-go/graphmodel"

// degree returns an edge's estimated average out-degree, the factor the
// cost model multiplies into candidate size for every edge in a one-height
// tree.
func degree(e *graphmodel.MatchEdge) float64 {
	if e.Stats.AverageDegree > 0 {
		return e.Stats.AverageDegree
	}
	return 1
}

// selectivity returns the estimate for a joint (cycle-closing) edge: the
// fraction of the materialized side's rows expected to survive the join.
// It is Stats.Selectivity when that is positive and 1/degree otherwise; the
// edge's histogram is not consulted.
func selectivity(e *graphmodel.MatchEdge) float64 {
	if e.Stats.Selectivity > 0 {
		return e.Stats.Selectivity
	}
	if d := degree(e); d > 0 {
		return 1 / d
	}
	return 1
}

// candidateSize computes root.estimated_rows × Π degree(unmaterialized) ×
// Π degree(materialized).
func candidateSize(root *graphmodel.MatchNode, materialized, unmaterialized []*graphmodel.MatchEdge) float64 {
	size := root.EstimatedRows
	if size <= 0 {
		size = 1
	}
	for _, e := range unmaterialized {
		size *= degree(e)
	}
	for _, e := range materialized {
		size *= degree(e)
	}
	return size
}

// costIncrement folds joint-edge selectivity into the cost delta a
// candidate one-height tree contributes: unmaterialized (fan-out) edges
// contribute their full candidate weight, while materialized (cycle-
// closing) edges are discounted by their selectivity, reflecting that a
// join back into already-materialized rows is expected to filter, not
// multiply.
func costIncrement(size float64, materialized []*graphmodel.MatchEdge) float64 {
	cost := size
	for _, e := range materialized {
		cost *= selectivity(e)
	}
	return cost
}

// lowerBound is the beam's pruning check: current.cost + current.size +
// candidate_size, with a logarithmic floor applied when the candidate has
// no materialized (joint) edge. This can understate joint-edge savings on
// dense graphs; the floor is preserved as-is rather than tuned away.
func lowerBound(current *MatchComponent, candidateSize, logFloor float64, hasMaterializedEdge bool) float64 {
	lb := current.Cost + current.Size + candidateSize
	if !hasMaterializedEdge {
		lb += logFloor
	}
	return lb
}
