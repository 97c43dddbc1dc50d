/*
   Defines the link corpus: a directed graph that maps every page in a
   document collection to the set of pages it links to. A corpus is built
   once by a loader and treated as read-only by the rank estimators.
*/
package corpus

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// LinkSet holds the outgoing links of a single page.
type LinkSet map[string]struct{}

// NewLinkSet returns a LinkSet populated with the provided page names.
func NewLinkSet(pages ...string) LinkSet {
	set := make(LinkSet, len(pages))
	for _, page := range pages {
		set.Add(page)
	}
	return set
}

func (s LinkSet) Add(page string) { s[page] = struct{}{} }

func (s LinkSet) Contains(page string) bool {
	_, exists := s[page]
	return exists
}

func (s LinkSet) Len() int { return len(s) }

// Corpus maps each page in a collection to the set of pages it links to.
// A page with an empty link set is a dangling page; the rank estimators
// treat it as if it linked to every page in the corpus.
type Corpus map[string]LinkSet

func (c Corpus) Len() int { return len(c) }

func (c Corpus) Contains(page string) bool {
	_, exists := c[page]
	return exists
}

// NumLinks returns the number of outgoing links of page.
func (c Corpus) NumLinks(page string) int { return len(c[page]) }

// Pages returns the page names in lexicographic order. The estimators rely
// on this enumeration order being stable so that runs with a fixed random
// seed always visit the same page sequence.
func (c Corpus) Pages() []string {
	pages := make([]string, 0, len(c))
	for page := range c {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}

// Validate checks that every link target is itself a page in the corpus.
// Loaders are expected to have dropped links that point outside the
// collection; a corpus that violates this invariant would leak rank mass.
// All violations are reported, not just the first one encountered.
func (c Corpus) Validate() error {
	var err error
	for _, page := range c.Pages() {
		for target := range c[page] {
			if !c.Contains(target) {
				err = multierror.Append(err, xerrors.Errorf("page %q links to %q which is not part of the corpus", page, target))
			}
		}
	}
	return err
}
