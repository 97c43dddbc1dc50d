/*
   Implements a bulk-synchronous parallel https://en.wikipedia.org/wiki/Bulk_synchronous_parallel
   graph processor specialized for propagating PageRank score mass along the
   edges of a link graph. Vertices carry a float64 score; during each
   superstep a vertex may push score fractions to its out-neighbors which
   receive them at the following superstep.
*/
package bsp

import (
	"golang.org/x/xerrors"
)

var (
	// ErrUnknownEdgeSource is returned by AddEdge when the source vertex
	// is not part of the graph.
	ErrUnknownEdgeSource = xerrors.New("source vertex is not part of the graph")

	// ErrInvalidScoreDestination is returned by SendScore when the
	// destination vertex is not part of the graph.
	ErrInvalidScoreDestination = xerrors.New("score destination is not part of the graph")
)

// Aggregator is implemented by concurrency-safe accumulators that collect a
// scalar statistic across all vertices while a superstep executes.
type Aggregator interface {
	Type() string
	Set(val float64)
	Get() float64
	// Aggregate folds val into the aggregator's current value.
	Aggregate(val float64)
}

// ScoreIterator is implemented by the per-vertex queues that hand a compute
// function the scores sent to its vertex during the previous superstep.
type ScoreIterator interface {
	// Next advances the iterator. It returns false when no scores remain.
	Next() bool
	// Score returns the score that the iterator currently points to.
	Score() float64
}
