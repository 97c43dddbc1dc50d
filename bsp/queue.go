package bsp

import "sync"

var _ ScoreIterator = (*scoreQueue)(nil)

// scoreQueue buffers the scores delivered to a single vertex for one
// superstep. Enqueueing is safe for concurrent use by the compute workers;
// the iterator side is only touched by the one worker that processes the
// owning vertex during a step.
type scoreQueue struct {
	mu      sync.Mutex
	scores  []float64
	latched float64
}

func (q *scoreQueue) Enqueue(score float64) {
	q.mu.Lock()
	q.scores = append(q.scores, score)
	q.mu.Unlock()
}

func (q *scoreQueue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.scores) != 0
}

// Discard drops any scores that a compute function did not consume.
func (q *scoreQueue) Discard() {
	q.mu.Lock()
	q.scores = q.scores[:0]
	q.mu.Unlock()
}

func (q *scoreQueue) Next() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	qLen := len(q.scores)
	if qLen == 0 {
		return false
	}

	// Dequeue from the tail of the queue.
	q.latched = q.scores[qLen-1]
	q.scores = q.scores[:qLen-1]
	return true
}

func (q *scoreQueue) Score() float64 {
	q.mu.Lock()
	score := q.latched
	q.mu.Unlock()
	return score
}
