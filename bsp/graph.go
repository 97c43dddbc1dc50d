package bsp

import (
	"sync"
	"sync/atomic"

	"golang.org/x/xerrors"
)

// ComputeFunc is a function that a graph instance invokes on each vertex
// when executing a superstep.
type ComputeFunc func(g *Graph, v *Vertex, scores ScoreIterator) error

// Vertex is a page in the link graph annotated with its current rank score.
type Vertex struct {
	id     string
	value  float64
	active bool
	// two queues are needed:
	// one holds the scores delivered for the current superstep and the
	// other buffers the scores sent during it for the next superstep.
	// The queue at index superstep%2 holds the current superstep's scores,
	// the queue at (superstep+1)%2 buffers the next superstep's scores.
	scoreQueue [2]*scoreQueue
	edges      []*Edge
}

func (v *Vertex) ID() string { return v.id }

func (v *Vertex) Edges() []*Edge { return v.edges }

// Freeze marks the vertex as inactive. Inactive vertices are skipped in the
// following supersteps unless they receive a score, in which case they are
// re-activated.
func (v *Vertex) Freeze() { v.active = false }

func (v *Vertex) Value() float64 { return v.value }

func (v *Vertex) SetValue(val float64) { v.value = val }

// Edge is a directed link between two pages.
type Edge struct {
	dstID string
}

func (e *Edge) DstID() string { return e.dstID }

// Graph implements a parallel graph processor based on the concepts
// described in the Pregel paper https://15799.courses.cs.cmu.edu/fall2013/static/papers/p135-malewicz.pdf .
type Graph struct {
	superstep   int
	vertices    map[string]*Vertex
	aggregators map[string]Aggregator
	computeFunc ComputeFunc

	// wg used for compute workers
	wg sync.WaitGroup

	// vertexCh polled by compute workers to obtain the next vertex to be
	// processed
	vertexCh chan *Vertex

	// errCh is a buffered channel where workers publish any errors that
	// occur while invoking the compute function. When a worker detects an
	// error it attempts to publish it to the channel; if the channel is
	// full another error has already been written to it and the new error
	// is safely ignored.
	errCh chan error

	// stepCompletedCh allows compute workers to signal when the last
	// enqueued vertex has been processed.
	stepCompletedCh chan struct{}

	// activeInStep is the number of vertices that were processed in the
	// superstep; it is reset at the start of the superstep.
	activeInStep int64

	// pendingInStep is the number of vertices still to be processed in
	// the superstep; it is set to len(vertices) at the start of the
	// superstep.
	pendingInStep int64
}

// NewGraph creates a new Graph instance using the specified configuration.
// It is important for callers to invoke Close() on the returned graph
// instance when they are done using it.
func NewGraph(cfg GraphConfig) (*Graph, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("graph config validation failed: %w", err)
	}

	g := &Graph{
		computeFunc: cfg.ComputeFn,
		aggregators: make(map[string]Aggregator),
		vertices:    make(map[string]*Vertex),
	}
	g.startWorkers(cfg.ComputeWorkers)

	return g, nil
}

// Close releases any resources associated with the graph.
func (g *Graph) Close() error {
	close(g.vertexCh)
	g.wg.Wait()

	return g.Reset()
}

// Reset the state of the graph by removing any existing vertices or
// aggregators and resetting the superstep counter.
func (g *Graph) Reset() error {
	g.superstep = 0
	for _, v := range g.vertices {
		for i := 0; i < 2; i++ {
			v.scoreQueue[i].Discard()
		}
	}
	g.vertices = make(map[string]*Vertex)
	g.aggregators = make(map[string]Aggregator)
	return nil
}

// AddVertex inserts a new vertex with the specified id and initial score
// into the graph. If the vertex already exists, AddVertex just overwrites
// its score with the provided initValue.
func (g *Graph) AddVertex(id string, initValue float64) {
	v := g.vertices[id]
	if v == nil {
		v = &Vertex{
			id: id,
			scoreQueue: [2]*scoreQueue{
				new(scoreQueue),
				new(scoreQueue),
			},
			active: true,
		}
		g.vertices[id] = v
	}
	v.SetValue(initValue)
}

// AddEdge inserts a directed edge from src to dst. Edges are owned by their
// source vertex and therefore srcID must resolve to a known vertex;
// otherwise AddEdge returns an error.
func (g *Graph) AddEdge(srcID, dstID string) error {
	srcVertex := g.vertices[srcID]
	if srcVertex == nil {
		return xerrors.Errorf("create edge from %q to %q: %w", srcID, dstID, ErrUnknownEdgeSource)
	}

	srcVertex.edges = append(srcVertex.edges, &Edge{dstID: dstID})
	return nil
}

func (g *Graph) RegisterAggregator(name string, aggregator Aggregator) {
	g.aggregators[name] = aggregator
}

func (g *Graph) Aggregator(name string) Aggregator {
	return g.aggregators[name]
}

func (g *Graph) Aggregators() map[string]Aggregator { return g.aggregators }

func (g *Graph) Superstep() int { return g.superstep }

func (g *Graph) Vertices() map[string]*Vertex { return g.vertices }

// BroadcastToNeighbors sends the provided score to every neighbor of v.
// Neighbors will receive the score in the next superstep.
func (g *Graph) BroadcastToNeighbors(v *Vertex, score float64) error {
	for _, e := range v.edges {
		if err := g.SendScore(e.DstID(), score); err != nil {
			return err
		}
	}
	return nil
}

// SendScore delivers a score to the vertex with the specified destination
// ID. Scores are queued for delivery and are processed by the recipient in
// the next superstep.
func (g *Graph) SendScore(dst string, score float64) error {
	dstVertex := g.vertices[dst]
	if dstVertex == nil {
		return xerrors.Errorf("can't deliver score to %q: %w", dst, ErrInvalidScoreDestination)
	}

	dstVertex.scoreQueue[(g.superstep+1)%2].Enqueue(score)
	return nil
}

// startWorkers allocates the required channels and spins up numWorkers to
// execute each superstep.
func (g *Graph) startWorkers(numWorkers int) {
	g.vertexCh = make(chan *Vertex)
	g.errCh = make(chan error, 1)
	g.stepCompletedCh = make(chan struct{})

	g.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go g.stepWorker()
	}
}

// stepWorker polls vertexCh for incoming vertices and executes the
// configured ComputeFunc for each one. The worker exits when vertexCh gets
// closed.
func (g *Graph) stepWorker() {
	defer g.wg.Done()
	for v := range g.vertexCh {
		stepQueue := g.superstep % 2
		if v.active || v.scoreQueue[stepQueue].Pending() {
			_ = atomic.AddInt64(&g.activeInStep, 1)
			v.active = true

			err := g.computeFunc(g, v, v.scoreQueue[stepQueue])
			if err != nil {
				emitError(g.errCh, xerrors.Errorf("error while running compute function for vertex %q: %w", v.ID(), err))
			} else {
				// flush non-consumed scores
				v.scoreQueue[stepQueue].Discard()
			}
		}
		if atomic.AddInt64(&g.pendingInStep, -1) == 0 {
			g.stepCompletedCh <- struct{}{}
		}
	}
}

// step executes the next superstep and returns back the number of vertices
// that were processed either because they were still active or because they
// received a score.
func (g *Graph) step() (int, error) {
	// at the start of the superstep it's safe to assign values to these
	// variables directly
	g.activeInStep = 0
	g.pendingInStep = int64(len(g.vertices))

	// no work to do
	if g.pendingInStep == 0 {
		return 0, nil
	}

	// send vertices to the channel to be processed
	for _, v := range g.vertices {
		g.vertexCh <- v
	}

	// block until the worker pool has finished processing all vertices
	<-g.stepCompletedCh

	// get errors that happened while executing the step
	var err error
	select {
	case err = <-g.errCh:
	default: // no error
	}

	return int(g.activeInStep), err
}

func emitError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default: // the channel already contains an error
	}
}
