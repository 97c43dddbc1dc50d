/*
   Implements Google's famous and first
   PageRank algorithm https://en.wikipedia.org/wiki/PageRank
*/
package rank

import (
	"context"
	"io"

	"github.com/Ahmed-Sermani/pageranker/corpus"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

/*
   PageRank works by counting the number and quality of links to a page to
   determine a rough estimate of how important the page is. The underlying
   assumption is that more important pages are likely to receive more links
   from other pages.

   To assign a score to each page of a corpus, PageRank utilizes the model
   of the random surfer. Under this model, a surfer starts out on a page
   drawn at random from the corpus. From that point on, the surfer
   repeatedly selects one of the following two options:

       Follow one of the outgoing links of the current page, chosen
       uniformly at random. Surfers choose this option with a predefined
       probability referred to as the damping factor.

       Alternatively, abandon the current page and teleport to a page
       drawn uniformly at random from the whole corpus.

   A page with no outgoing links leaves the surfer with nowhere to click;
   it is interpreted as linking to every page of the corpus, so the surfer
   moves to a uniformly random page regardless of the damping factor.

   The PageRank score of a page is the probability that a surfer who keeps
   this up in perpetuity is found on that page. By this definition:

       Each PageRank score is a value in the [0, 1] range.
       The sum of all assigned PageRank scores is equal to 1.

   This package provides two independent estimators for the scores: a
   Monte-Carlo Sampler that simulates the surfer for a fixed number of
   steps and reports empirical visit frequencies, and an iterative Ranker
   that applies the PageRank recurrence as a fixed-point computation until
   the scores stabilize.
*/

var (
	// ErrInvalidDampingFactor is returned when the damping factor does
	// not lie strictly between 0 and 1.
	ErrInvalidDampingFactor = xerrors.New("damping factor must lie strictly between 0 and 1")

	// ErrInvalidSampleCount is returned when the requested number of
	// random-surfer samples is less than 1.
	ErrInvalidSampleCount = xerrors.New("sample count must be at least 1")

	// ErrEmptyCorpus is returned when an estimator is given a corpus
	// with no pages.
	ErrEmptyCorpus = xerrors.New("corpus contains no pages")

	// ErrUnknownPage is returned by TransitionModel when the current
	// page is not part of the corpus.
	ErrUnknownPage = xerrors.New("page is not part of the corpus")

	// ErrNotConverged is returned when the iterative ranker exhausts its
	// iteration limit before the rank estimates stabilize.
	ErrNotConverged = xerrors.New("rank estimates did not converge within the iteration limit")
)

// Default parameter values used by the estimators and the CLI driver.
const (
	DefaultDampingFactor        = 0.85
	DefaultSampleCount          = 10000
	DefaultConvergenceThreshold = 0.001
	DefaultMaxIterations        = 10000
)

// Distribution maps each page of a corpus to a probability mass.
type Distribution map[string]float64

// Sum returns the total probability mass of the distribution.
func (d Distribution) Sum() float64 {
	var sum float64
	for _, mass := range d {
		sum += mass
	}
	return sum
}

// Normalize rescales the distribution so its masses sum to 1, correcting
// any accumulated floating-point drift. Distributions with no mass are left
// untouched.
func (d Distribution) Normalize() {
	sum := d.Sum()
	if sum == 0 {
		return
	}
	for page := range d {
		d[page] /= sum
	}
}

// Sample estimates the PageRank scores of every page in c by simulating a
// random surfer for n steps. It is a convenience wrapper around Sampler
// with a time-seeded random source.
func Sample(c corpus.Corpus, dampingFactor float64, n int) (Distribution, error) {
	sampler, err := NewSampler(SamplerConfig{
		Corpus:        c,
		DampingFactor: dampingFactor,
		SampleCount:   n,
	})
	if err != nil {
		return nil, err
	}
	return sampler.Estimate()
}

// Iterate estimates the PageRank scores of every page in c by running the
// PageRank recurrence to convergence. It is a convenience wrapper around
// Ranker with the default convergence threshold and iteration limit.
func Iterate(ctx context.Context, c corpus.Corpus, dampingFactor float64) (Distribution, error) {
	ranker, err := NewRanker(RankerConfig{
		Corpus:        c,
		DampingFactor: dampingFactor,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = ranker.Close() }()
	return ranker.Estimate(ctx)
}

// nullLogger returns a logger entry that discards everything written to it.
// Used as the fallback when a config does not provide a logger.
func nullLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
