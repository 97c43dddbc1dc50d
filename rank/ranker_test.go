package rank_test

import (
	"context"
	"math/rand"

	"github.com/Ahmed-Sermani/pageranker/bsp"
	"github.com/Ahmed-Sermani/pageranker/corpus"
	"github.com/Ahmed-Sermani/pageranker/rank"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(RankerTestSuite))

type RankerTestSuite struct{}

func (s *RankerTestSuite) TestMutualLinkPair(c *gc.C) {
	corp := mutualCorpus()
	est := s.estimate(c, rank.RankerConfig{Corpus: corp, DampingFactor: 0.85})

	assertValidEstimate(c, corp, est, 1e-9)
	assertInDelta(c, est["1.html"], 0.5, 0.01, gc.Commentf("1.html"))
	assertInDelta(c, est["2.html"], 0.5, 0.01, gc.Commentf("2.html"))
}

func (s *RankerTestSuite) TestSingleDanglingPage(c *gc.C) {
	corp := corpus.Corpus{"1.html": corpus.NewLinkSet()}
	est := s.estimate(c, rank.RankerConfig{Corpus: corp, DampingFactor: 0.85})

	assertInDelta(c, est["1.html"], 1.0, 1e-9, gc.Commentf("1.html"))
}

func (s *RankerTestSuite) TestThreePageCycle(c *gc.C) {
	corp := cycleCorpus()
	est := s.estimate(c, rank.RankerConfig{Corpus: corp, DampingFactor: 0.85})

	assertValidEstimate(c, corp, est, 1e-9)
	for _, page := range corp.Pages() {
		assertInDelta(c, est[page], 1.0/3.0, 0.01, gc.Commentf("page %q", page))
	}
}

func (s *RankerTestSuite) TestAllDanglingCorpus(c *gc.C) {
	corp := corpus.Corpus{
		"1.html": corpus.NewLinkSet(),
		"2.html": corpus.NewLinkSet(),
		"3.html": corpus.NewLinkSet(),
	}
	est := s.estimate(c, rank.RankerConfig{Corpus: corp, DampingFactor: 0.85})

	assertValidEstimate(c, corp, est, 1e-9)
	for _, page := range corp.Pages() {
		assertInDelta(c, est[page], 1.0/3.0, 0.01, gc.Commentf("page %q", page))
	}
}

func (s *RankerTestSuite) TestHighDampingWithDanglingPageTerminates(c *gc.C) {
	// The dangling page keeps recycling its rank uniformly; even with the
	// damping factor close to 1 the recurrence must stay well-defined and
	// reach a stable estimate.
	corp := corpus.Corpus{
		"1.html": corpus.NewLinkSet("2.html"),
		"2.html": corpus.NewLinkSet(),
	}
	est := s.estimate(c, rank.RankerConfig{Corpus: corp, DampingFactor: 0.999})

	assertValidEstimate(c, corp, est, 1e-9)
}

func (s *RankerTestSuite) TestSamplerAgreement(c *gc.C) {
	corp := lopsidedCorpus()
	iterated := s.estimate(c, rank.RankerConfig{Corpus: corp, DampingFactor: 0.85})

	sampler, err := rank.NewSampler(rank.SamplerConfig{
		Corpus:        corp,
		DampingFactor: 0.85,
		SampleCount:   20000,
		RNG:           rand.New(rand.NewSource(42)),
	})
	c.Assert(err, gc.IsNil)
	sampled, err := sampler.Estimate()
	c.Assert(err, gc.IsNil)

	// Two independent estimators approximating the same stationary
	// distribution.
	for _, page := range corp.Pages() {
		assertInDelta(c, sampled[page], iterated[page], 0.05, gc.Commentf("page %q", page))
	}
}

func (s *RankerTestSuite) TestNonConvergenceReported(c *gc.C) {
	ranker, err := rank.NewRanker(rank.RankerConfig{
		Corpus:        lopsidedCorpus(),
		DampingFactor: 0.85,
		MaxIterations: 1,
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(ranker.Close(), gc.IsNil) }()

	_, err = ranker.Estimate(context.TODO())
	c.Assert(xerrors.Is(err, rank.ErrNotConverged), gc.Equals, true, gc.Commentf("got %v", err))
}

func (s *RankerTestSuite) TestConvergenceIsIdempotent(c *gc.C) {
	// Running with a generous iteration budget must produce the same
	// estimate as stopping exactly at the threshold crossing.
	corp := lopsidedCorpus()
	ranker, err := rank.NewRanker(rank.RankerConfig{
		Corpus:        corp,
		DampingFactor: 0.85,
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(ranker.Close(), gc.IsNil) }()

	var exec *bsp.Executor
	ranker.SetExecutorFactory(func(g *bsp.Graph, cb bsp.ExecutorHooks) *bsp.Executor {
		exec = bsp.NewExecutor(g, cb)
		return exec
	})

	unconstrained, err := ranker.Estimate(context.TODO())
	c.Assert(err, gc.IsNil)
	iterations := exec.Superstep()
	c.Assert(iterations > 1, gc.Equals, true, gc.Commentf("converged after %d iterations", iterations))

	capped, err := rank.NewRanker(rank.RankerConfig{
		Corpus:        lopsidedCorpus(),
		DampingFactor: 0.85,
		MaxIterations: iterations,
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(capped.Close(), gc.IsNil) }()

	cappedEst, err := capped.Estimate(context.TODO())
	c.Assert(err, gc.IsNil)
	for _, page := range corp.Pages() {
		assertInDelta(c, cappedEst[page], unconstrained[page], 1e-12, gc.Commentf("page %q", page))
	}
}

func (s *RankerTestSuite) TestMultipleComputeWorkers(c *gc.C) {
	corp := cycleCorpus()
	single := s.estimate(c, rank.RankerConfig{Corpus: corp, DampingFactor: 0.85})
	parallel := s.estimate(c, rank.RankerConfig{Corpus: corp, DampingFactor: 0.85, ComputeWorkers: 4})

	for _, page := range corp.Pages() {
		assertInDelta(c, parallel[page], single[page], 1e-9, gc.Commentf("page %q", page))
	}
}

func (s *RankerTestSuite) TestContextCancellation(c *gc.C) {
	ranker, err := rank.NewRanker(rank.RankerConfig{
		Corpus:        lopsidedCorpus(),
		DampingFactor: 0.85,
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(ranker.Close(), gc.IsNil) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ranker.Estimate(ctx)
	c.Assert(err, gc.ErrorMatches, "context canceled")
}

func (s *RankerTestSuite) TestConfigValidation(c *gc.C) {
	_, err := rank.NewRanker(rank.RankerConfig{
		Corpus:        corpus.Corpus{},
		DampingFactor: 0.85,
	})
	c.Assert(xerrors.Is(err, rank.ErrEmptyCorpus), gc.Equals, true, gc.Commentf("got %v", err))

	_, err = rank.NewRanker(rank.RankerConfig{
		Corpus:        mutualCorpus(),
		DampingFactor: 1.5,
	})
	c.Assert(xerrors.Is(err, rank.ErrInvalidDampingFactor), gc.Equals, true, gc.Commentf("got %v", err))

	_, err = rank.NewRanker(rank.RankerConfig{
		Corpus:               mutualCorpus(),
		DampingFactor:        0.85,
		ConvergenceThreshold: -0.1,
	})
	c.Assert(err, gc.ErrorMatches, `(?s)ranker config validation failed: .*ConvergenceThreshold.*`)

	_, err = rank.NewRanker(rank.RankerConfig{
		Corpus: corpus.Corpus{
			"1.html": corpus.NewLinkSet("missing.html"),
		},
		DampingFactor: 0.85,
	})
	c.Assert(err, gc.ErrorMatches, `(?s)ranker config validation failed: .*"missing.html".*`)
}

func (s *RankerTestSuite) estimate(c *gc.C, cfg rank.RankerConfig) rank.Distribution {
	ranker, err := rank.NewRanker(cfg)
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(ranker.Close(), gc.IsNil) }()

	est, err := ranker.Estimate(context.TODO())
	c.Assert(err, gc.IsNil)
	return est
}
