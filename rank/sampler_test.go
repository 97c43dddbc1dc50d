package rank_test

import (
	"math"
	"math/rand"

	"github.com/Ahmed-Sermani/pageranker/corpus"
	"github.com/Ahmed-Sermani/pageranker/rank"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(SamplerTestSuite))

type SamplerTestSuite struct{}

func (s *SamplerTestSuite) TestSingleSampleIsAPointMass(c *gc.C) {
	est := s.estimate(c, cycleCorpus(), 0.85, 1, 42)

	var pagesWithMass int
	for page, mass := range est {
		if mass != 0 {
			c.Assert(mass, gc.Equals, 1.0, gc.Commentf("page %q", page))
			pagesWithMass++
		}
	}
	c.Assert(pagesWithMass, gc.Equals, 1)
	c.Assert(est.Sum(), gc.Equals, 1.0)
}

func (s *SamplerTestSuite) TestSeededRunsAreReproducible(c *gc.C) {
	first := s.estimate(c, lopsidedCorpus(), 0.85, 500, 42)
	second := s.estimate(c, lopsidedCorpus(), 0.85, 500, 42)
	c.Assert(first, gc.DeepEquals, second)
}

func (s *SamplerTestSuite) TestMutualLinkPair(c *gc.C) {
	corp := mutualCorpus()
	est := s.estimate(c, corp, 0.85, 20000, 42)

	assertValidEstimate(c, corp, est, 1e-9)
	assertInDelta(c, est["1.html"], 0.5, 0.05, gc.Commentf("1.html"))
	assertInDelta(c, est["2.html"], 0.5, 0.05, gc.Commentf("2.html"))
}

func (s *SamplerTestSuite) TestThreePageCycle(c *gc.C) {
	corp := cycleCorpus()
	est := s.estimate(c, corp, 0.85, 20000, 42)

	assertValidEstimate(c, corp, est, 1e-9)
	for _, page := range corp.Pages() {
		assertInDelta(c, est[page], 1.0/3.0, 0.05, gc.Commentf("page %q", page))
	}
}

func (s *SamplerTestSuite) TestEstimatesAreMultiplesOfSampleFraction(c *gc.C) {
	sampleCount := 777
	est := s.estimate(c, lopsidedCorpus(), 0.85, sampleCount, 42)

	for page, mass := range est {
		scaled := mass * float64(sampleCount)
		assertInDelta(c, scaled, math.Round(scaled), 1e-6,
			gc.Commentf("page %q mass %v is not a multiple of 1/%d", page, mass, sampleCount))
	}
}

func (s *SamplerTestSuite) TestDanglingOnlyCorpus(c *gc.C) {
	corp := corpus.Corpus{"1.html": corpus.NewLinkSet()}
	est := s.estimate(c, corp, 0.85, 50, 42)
	c.Assert(est, gc.DeepEquals, rank.Distribution{"1.html": 1.0})
}

func (s *SamplerTestSuite) TestConfigValidation(c *gc.C) {
	_, err := rank.NewSampler(rank.SamplerConfig{
		Corpus:        corpus.Corpus{},
		DampingFactor: 0.85,
		SampleCount:   100,
	})
	c.Assert(xerrors.Is(err, rank.ErrEmptyCorpus), gc.Equals, true, gc.Commentf("got %v", err))

	_, err = rank.NewSampler(rank.SamplerConfig{
		Corpus:        mutualCorpus(),
		DampingFactor: 1.0,
		SampleCount:   100,
	})
	c.Assert(xerrors.Is(err, rank.ErrInvalidDampingFactor), gc.Equals, true, gc.Commentf("got %v", err))

	_, err = rank.NewSampler(rank.SamplerConfig{
		Corpus:        mutualCorpus(),
		DampingFactor: 0.85,
	})
	c.Assert(xerrors.Is(err, rank.ErrInvalidSampleCount), gc.Equals, true, gc.Commentf("got %v", err))

	_, err = rank.NewSampler(rank.SamplerConfig{
		Corpus: corpus.Corpus{
			"1.html": corpus.NewLinkSet("missing.html"),
		},
		DampingFactor: 0.85,
		SampleCount:   100,
	})
	c.Assert(err, gc.ErrorMatches, `(?s)sampler config validation failed: .*"missing.html".*`)
}

func (s *SamplerTestSuite) estimate(c *gc.C, corp corpus.Corpus, dampingFactor float64, sampleCount int, seed int64) rank.Distribution {
	sampler, err := rank.NewSampler(rank.SamplerConfig{
		Corpus:        corp,
		DampingFactor: dampingFactor,
		SampleCount:   sampleCount,
		RNG:           rand.New(rand.NewSource(seed)),
	})
	c.Assert(err, gc.IsNil)

	est, err := sampler.Estimate()
	c.Assert(err, gc.IsNil)
	return est
}
