package rank

import (
	"context"

	"github.com/Ahmed-Sermani/pageranker/bsp"
	"github.com/Ahmed-Sermani/pageranker/bsp/aggregators"
	"github.com/Ahmed-Sermani/pageranker/corpus"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// RankerConfig encapsulates the parameters for creating a new Ranker
// instance.
type RankerConfig struct {
	// Corpus is the link graph whose page ranks are to be estimated. Its
	// link targets must all be pages of the corpus.
	Corpus corpus.Corpus

	// DampingFactor is the probability that the random surfer follows
	// one of the outgoing links of the page they are currently visiting
	// instead of teleporting to a random page of the corpus. It must lie
	// strictly between 0 and 1.
	DampingFactor float64

	// ConvergenceThreshold is the maximum change of any page's rank
	// between two consecutive iterations below which the estimate is
	// considered stable. If not specified, a default value of 0.001 will
	// be used instead.
	ConvergenceThreshold float64

	// MaxIterations caps the number of iterations the ranker executes
	// before giving up and reporting ErrNotConverged. If not specified,
	// a default value of 10000 will be used instead.
	MaxIterations int

	// ComputeWorkers is the number of workers that apply the PageRank
	// recurrence across the graph's vertices. The corpus is read-only
	// during a run so any worker count is safe. If not specified, a
	// default value of 1 will be used instead.
	ComputeWorkers int

	// Logger is the logger for recording ranker progress. If not
	// specified, log entries are discarded.
	Logger *logrus.Entry
}

// validate checks whether the ranker configuration is valid and sets the
// default values where required.
func (cfg *RankerConfig) validate() error {
	var err error
	if cfg.Corpus.Len() == 0 {
		err = multierror.Append(err, ErrEmptyCorpus)
	} else if vErr := cfg.Corpus.Validate(); vErr != nil {
		err = multierror.Append(err, vErr)
	}

	if cfg.DampingFactor <= 0 || cfg.DampingFactor >= 1 {
		err = multierror.Append(err, ErrInvalidDampingFactor)
	}

	if cfg.ConvergenceThreshold < 0 || cfg.ConvergenceThreshold >= 1 {
		err = multierror.Append(err, xerrors.New("ConvergenceThreshold must be in the range (0, 1)"))
	} else if cfg.ConvergenceThreshold == 0 {
		cfg.ConvergenceThreshold = DefaultConvergenceThreshold
	}

	if cfg.MaxIterations < 0 {
		err = multierror.Append(err, xerrors.New("MaxIterations must be a positive value"))
	} else if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	if cfg.ComputeWorkers <= 0 {
		cfg.ComputeWorkers = 1
	}

	if cfg.Logger == nil {
		cfg.Logger = nullLogger()
	}

	return err
}

// Ranker executes the iterative version of the PageRank algorithm on a
// corpus until the desired level of convergence is reached.
type Ranker struct {
	g   *bsp.Graph
	cfg RankerConfig

	executorFactory bsp.ExecutorFactory
}

// NewRanker returns a new Ranker instance using the provided config
// options.
func NewRanker(cfg RankerConfig) (*Ranker, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("ranker config validation failed: %w", err)
	}

	g, err := bsp.NewGraph(bsp.GraphConfig{
		ComputeWorkers: cfg.ComputeWorkers,
		ComputeFn:      makeRankerComputeFunc(cfg.DampingFactor, cfg.Corpus.Len()),
	})
	if err != nil {
		return nil, err
	}

	r := &Ranker{
		cfg:             cfg,
		g:               g,
		executorFactory: bsp.NewExecutor,
	}
	r.populateGraph()
	return r, nil
}

// Close releases any resources allocated by this Ranker instance.
func (r *Ranker) Close() error {
	return r.g.Close()
}

// SetExecutorFactory configures the ranker to use a custom executor
// factory when Estimate is invoked.
func (r *Ranker) SetExecutorFactory(factory bsp.ExecutorFactory) {
	r.executorFactory = factory
}

// populateGraph mirrors the corpus into the graph: one vertex per page
// initialized to the uniform 1/N rank, one edge per link. Link targets
// have been validated as corpus members so AddEdge cannot fail here.
func (r *Ranker) populateGraph() {
	initialRank := 1.0 / float64(r.cfg.Corpus.Len())
	for _, page := range r.cfg.Corpus.Pages() {
		r.g.AddVertex(page, initialRank)
	}
	for _, page := range r.cfg.Corpus.Pages() {
		for target := range r.cfg.Corpus[page] {
			_ = r.g.AddEdge(page, target)
		}
	}
}

// Estimate runs the PageRank recurrence until every page's rank changes by
// less than the configured convergence threshold, then returns the final
// rank of each page normalized to sum to 1. If the estimates are still
// moving after MaxIterations iterations, ErrNotConverged is reported.
func (r *Ranker) Estimate(ctx context.Context) (Distribution, error) {
	exec := r.executor()

	// Superstep 0 only distributes the initial uniform mass; the
	// recurrence itself runs during supersteps 1..MaxIterations.
	if err := exec.RunSteps(ctx, r.cfg.MaxIterations+1); err != nil {
		return nil, err
	}
	if !r.converged() {
		return nil, xerrors.Errorf("ranks still moving after %d iterations: %w", r.cfg.MaxIterations, ErrNotConverged)
	}

	r.cfg.Logger.WithFields(logrus.Fields{
		"iterations": r.g.Superstep(),
		"max_delta":  r.g.Aggregator(maxDeltaAggName).Get(),
	}).Debug("rank estimates converged")

	est := make(Distribution, r.cfg.Corpus.Len())
	for id, v := range r.g.Vertices() {
		est[id] = v.Value()
	}
	est.Normalize()
	return est, nil
}

func (r *Ranker) converged() bool {
	return r.g.Superstep() > 0 && r.g.Aggregator(maxDeltaAggName).Get() < r.cfg.ConvergenceThreshold
}

// executor creates and returns a bsp.Executor for running the PageRank
// recurrence over the already populated graph.
func (r *Ranker) executor() *bsp.Executor {
	r.registerAggregators()
	cb := bsp.ExecutorHooks{
		PreStep: func(_ context.Context, g *bsp.Graph) error {
			// Reset the max delta aggregator and the residual
			// aggregator for the next step.
			g.Aggregator(maxDeltaAggName).Set(0.0)
			g.Aggregator(residualOutputAggName(g.Superstep())).Set(0.0)
			return nil
		},
		PostStepKeepRunning: func(_ context.Context, g *bsp.Graph, _ int) (bool, error) {
			// Superstep 0 is part of the algorithm initialization;
			// the predicate should only be evaluated for later
			// supersteps.
			return !r.converged(), nil
		},
	}

	return r.executorFactory(r.g, cb)
}

// registerAggregators creates and registers the aggregator instances that
// are needed to run the PageRank recurrence.
func (r *Ranker) registerAggregators() {
	r.g.RegisterAggregator(maxDeltaAggName, new(aggregators.Float64MaxAggregator))
	r.g.RegisterAggregator("residual_0", new(aggregators.Float64SumAggregator))
	r.g.RegisterAggregator("residual_1", new(aggregators.Float64SumAggregator))
}
