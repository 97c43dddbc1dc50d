package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ahmed-Sermani/pageranker/corpus"
	"github.com/Ahmed-Sermani/pageranker/corpus/htmldir"
	"github.com/Ahmed-Sermani/pageranker/rank"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var appName = "pageranker"

func main() {
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":    appName,
		"run_id": uuid.New().String(),
	})

	if err := run(logger); err != nil {
		logger.WithField("err", err).Error("rank estimation failed")
		os.Exit(1)
	}
}

func run(logger *logrus.Entry) error {
	var (
		samplerCfg rank.SamplerConfig
		rankerCfg  rank.RankerConfig
	)

	flag.Float64Var(&samplerCfg.DampingFactor, "damping-factor", rank.DefaultDampingFactor, "The probability that the random surfer follows an outgoing link instead of jumping to a random page")
	flag.IntVar(&samplerCfg.SampleCount, "samples", rank.DefaultSampleCount, "The number of random-surfer samples to draw")
	seed := flag.Int64("seed", 0, "The seed for the sampler's random source; 0 seeds from the current time")
	flag.Float64Var(&rankerCfg.ConvergenceThreshold, "convergence-threshold", rank.DefaultConvergenceThreshold, "The maximum per-page rank change below which the iterative estimate is considered stable")
	flag.IntVar(&rankerCfg.MaxIterations, "max-iterations", rank.DefaultMaxIterations, "The number of iterations after which the iterative ranker reports non-convergence")
	flag.IntVar(&rankerCfg.ComputeWorkers, "ranker-num-workers", 1, "The number of workers to use for applying the PageRank recurrence")
	verbose := flag.Bool("v", false, "Enable debug log output")
	flag.Parse()

	if *verbose {
		logger.Logger.SetLevel(logrus.DebugLevel)
	}
	if flag.NArg() != 1 {
		return xerrors.Errorf("usage: %s [flags] CORPUS_DIR", appName)
	}

	c, err := htmldir.Load(flag.Arg(0))
	if err != nil {
		return err
	}
	logger.WithField("pages", c.Len()).Info("loaded corpus")

	rankerCfg.DampingFactor = samplerCfg.DampingFactor
	samplerCfg.Corpus, rankerCfg.Corpus = c, c
	samplerCfg.Logger = logger.WithField("estimator", "sampler")
	rankerCfg.Logger = logger.WithField("estimator", "ranker")
	if *seed != 0 {
		samplerCfg.RNG = rand.New(rand.NewSource(*seed))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sampler, err := rank.NewSampler(samplerCfg)
	if err != nil {
		return err
	}
	sampled, err := sampler.Estimate()
	if err != nil {
		return err
	}
	fmt.Printf("PageRank Results from Sampling (n = %d)\n", samplerCfg.SampleCount)
	printEstimate(c, sampled)

	ranker, err := rank.NewRanker(rankerCfg)
	if err != nil {
		return err
	}
	defer func() { _ = ranker.Close() }()

	iterated, err := ranker.Estimate(ctx)
	if err != nil {
		return err
	}
	fmt.Println("PageRank Results from Iteration")
	printEstimate(c, iterated)
	return nil
}

func printEstimate(c corpus.Corpus, est rank.Distribution) {
	for _, page := range c.Pages() {
		fmt.Printf("  %s: %.4f\n", page, est[page])
	}
}
