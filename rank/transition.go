package rank

import (
	"github.com/Ahmed-Sermani/pageranker/corpus"
	"golang.org/x/xerrors"
)

// TransitionModel returns the probability distribution over the page a
// random surfer visits next, given that they are currently on page.
//
// With probability dampingFactor the surfer follows one of the current
// page's outgoing links chosen uniformly at random; with probability
// 1-dampingFactor they teleport to a page drawn uniformly from the whole
// corpus. A dangling page is treated as if it linked to every page of the
// corpus, yielding a uniform distribution.
//
// The returned distribution covers every page of the corpus and its masses
// sum to 1 modulo floating-point error.
func TransitionModel(c corpus.Corpus, page string, dampingFactor float64) (Distribution, error) {
	if dampingFactor <= 0 || dampingFactor >= 1 {
		return nil, ErrInvalidDampingFactor
	}
	if c.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	links, exists := c[page]
	if !exists {
		return nil, xerrors.Errorf("transition model for %q: %w", page, ErrUnknownPage)
	}

	n := float64(c.Len())
	model := make(Distribution, c.Len())

	// The surfer on a dangling page jumps to a uniformly random page
	// regardless of the damping factor.
	if links.Len() == 0 {
		for candidate := range c {
			model[candidate] = 1.0 / n
		}
		return model, nil
	}

	teleport := (1.0 - dampingFactor) / n
	follow := dampingFactor / float64(links.Len())
	for candidate := range c {
		model[candidate] = teleport
		if links.Contains(candidate) {
			model[candidate] += follow
		}
	}
	return model, nil
}
