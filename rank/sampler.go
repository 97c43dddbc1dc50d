package rank

import (
	"math/rand"
	"time"

	"github.com/Ahmed-Sermani/pageranker/corpus"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// SamplerConfig encapsulates the parameters for creating a new Sampler
// instance.
type SamplerConfig struct {
	// Corpus is the link graph whose page ranks are to be estimated.
	Corpus corpus.Corpus

	// DampingFactor is the probability that the random surfer follows
	// one of the outgoing links of the page they are currently visiting
	// instead of teleporting to a random page of the corpus. It must lie
	// strictly between 0 and 1.
	DampingFactor float64

	// SampleCount is the number of surfer steps to simulate. It must be
	// at least 1.
	SampleCount int

	// RNG is the pseudo-random source that drives the walk. Two runs
	// configured with sources seeded identically visit the same page
	// sequence. If not specified, a time-seeded source will be used
	// instead.
	RNG *rand.Rand

	// Logger is the logger for recording sampler progress. If not
	// specified, log entries are discarded.
	Logger *logrus.Entry
}

// validate checks whether the sampler configuration is valid and sets the
// default values where required.
func (cfg *SamplerConfig) validate() error {
	var err error
	if cfg.Corpus.Len() == 0 {
		err = multierror.Append(err, ErrEmptyCorpus)
	} else if vErr := cfg.Corpus.Validate(); vErr != nil {
		err = multierror.Append(err, vErr)
	}

	if cfg.DampingFactor <= 0 || cfg.DampingFactor >= 1 {
		err = multierror.Append(err, ErrInvalidDampingFactor)
	}

	if cfg.SampleCount < 1 {
		err = multierror.Append(err, ErrInvalidSampleCount)
	}

	if cfg.RNG == nil {
		cfg.RNG = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if cfg.Logger == nil {
		cfg.Logger = nullLogger()
	}

	return err
}

// Sampler estimates PageRank scores empirically: it simulates a random
// surfer for a fixed number of steps and reports the fraction of steps
// spent on each page.
type Sampler struct {
	cfg SamplerConfig

	// pages is the stable enumeration order for every random draw; with
	// it a fixed RNG seed reproduces the exact same walk.
	pages []string

	// models caches the transition distribution of each visited page.
	// The distribution only depends on the page itself, so it can be
	// reused every time the surfer comes back around.
	models map[string]Distribution
}

// NewSampler returns a new Sampler instance using the provided config
// options.
func NewSampler(cfg SamplerConfig) (*Sampler, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("sampler config validation failed: %w", err)
	}

	return &Sampler{
		cfg:    cfg,
		pages:  cfg.Corpus.Pages(),
		models: make(map[string]Distribution, cfg.Corpus.Len()),
	}, nil
}

// Estimate simulates the random surfer for the configured number of steps
// and returns the visit frequency of each page. Every value of the
// returned distribution is an integer multiple of 1/SampleCount and the
// values sum to 1.
func (s *Sampler) Estimate() (Distribution, error) {
	visits := make(map[string]int, len(s.pages))
	current := s.pages[s.cfg.RNG.Intn(len(s.pages))]

	s.cfg.Logger.WithFields(logrus.Fields{
		"samples":    s.cfg.SampleCount,
		"first_page": current,
	}).Debug("starting random-surfer walk")

	for i := 0; i < s.cfg.SampleCount; i++ {
		visits[current]++

		model, err := s.transitionModel(current)
		if err != nil {
			return nil, err
		}
		current = s.pickWeighted(model)
	}

	est := make(Distribution, len(s.pages))
	for _, page := range s.pages {
		est[page] = float64(visits[page]) / float64(s.cfg.SampleCount)
	}
	return est, nil
}

func (s *Sampler) transitionModel(page string) (Distribution, error) {
	if model, cached := s.models[page]; cached {
		return model, nil
	}

	model, err := TransitionModel(s.cfg.Corpus, page, s.cfg.DampingFactor)
	if err != nil {
		return nil, err
	}
	s.models[page] = model
	return model, nil
}

// pickWeighted draws a page from the provided distribution. Pages are
// scanned in the stable enumeration order so the draw is fully determined
// by the RNG output.
func (s *Sampler) pickWeighted(model Distribution) string {
	var (
		target = s.cfg.RNG.Float64()
		cum    float64
	)
	for _, page := range s.pages {
		cum += model[page]
		if target < cum {
			return page
		}
	}

	// target may exceed the accumulated mass by a hair of floating-point
	// error; charge the draw to the last page.
	return s.pages[len(s.pages)-1]
}
