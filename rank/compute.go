package rank

import (
	"math"

	"github.com/Ahmed-Sermani/pageranker/bsp"
)

// maxDeltaAggName is the aggregator tracking the largest absolute rank
// change of any page within a superstep.
const maxDeltaAggName = "max_delta"

// makeRankerComputeFunc returns a ComputeFunc that executes the PageRank
// recurrence using the provided dampingFactor over a graph of pageCount
// vertices.
func makeRankerComputeFunc(dampingFactor float64, pageCount int) bsp.ComputeFunc {
	n := float64(pageCount)
	return func(g *bsp.Graph, v *bsp.Vertex, scores bsp.ScoreIterator) error {
		superstep := g.Superstep()

		newScore := v.Value()
		if superstep > 0 {
			// The incoming scores were all computed from the
			// previous superstep's ranks, so every page updates
			// against the same snapshot.
			newScore = (1.0 - dampingFactor) / n
			for scores.Next() {
				newScore += dampingFactor * scores.Score()
			}

			// Add the accumulated residual rank of the dangling
			// pages encountered during the previous step.
			newScore += dampingFactor * g.Aggregator(residualInputAggName(superstep)).Get()

			g.Aggregator(maxDeltaAggName).Aggregate(math.Abs(v.Value() - newScore))
			v.SetValue(newScore)
		}

		// A dangling page spreads its rank across the whole corpus.
		// There is no primitive for reaching every vertex, so its
		// uniform share goes into an accumulator that is folded into
		// the scores calculated over the next round.
		numOutLinks := float64(len(v.Edges()))
		if numOutLinks == 0.0 {
			g.Aggregator(residualOutputAggName(superstep)).Aggregate(newScore / n)
			return nil
		}

		// Otherwise, evenly distribute this page's rank to all the
		// pages it links to.
		return g.BroadcastToNeighbors(v, newScore/numOutLinks)
	}
}

// residualOutputAggName returns the name of the aggregator where the
// residual rank of dangling pages for the specified superstep is to be
// written to.
func residualOutputAggName(superstep int) string {
	if superstep%2 == 0 {
		return "residual_0"
	}
	return "residual_1"
}

// residualInputAggName returns the name of the aggregator where the
// residual rank of dangling pages for the specified superstep is to be
// read from.
func residualInputAggName(superstep int) string {
	if (superstep+1)%2 == 0 {
		return "residual_0"
	}
	return "residual_1"
}
