/*
   Loads a link corpus from a directory of HTML documents. Each .html file
   becomes a page identified by its file name; the anchors inside it become
   the page's outgoing links. Links that point outside the corpus and
   self-referential links are dropped, so the resulting corpus satisfies
   the invariant that every link target is itself a corpus page.
*/
package htmldir

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ahmed-Sermani/pageranker/corpus"
	"golang.org/x/net/html"
	"golang.org/x/xerrors"
)

// Load parses every HTML document directly under dir and returns the
// corpus they form.
func Load(dir string) (corpus.Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerrors.Errorf("reading corpus directory: %w", err)
	}

	raw := make(map[string]corpus.LinkSet)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}

		links, err := extractLinks(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, xerrors.Errorf("extracting links from %q: %w", entry.Name(), err)
		}

		// A page linking to itself carries no rank information.
		delete(links, entry.Name())
		raw[entry.Name()] = links
	}

	// Only keep links that target other pages of the corpus.
	c := make(corpus.Corpus, len(raw))
	for page, links := range raw {
		kept := corpus.NewLinkSet()
		for target := range links {
			if _, exists := raw[target]; exists {
				kept.Add(target)
			}
		}
		c[page] = kept
	}
	return c, nil
}

// extractLinks tokenizes the document at path and collects the href target
// of every anchor tag.
func extractLinks(path string) (corpus.LinkSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	links := corpus.NewLinkSet()
	tokenizer := html.NewTokenizer(f)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return nil, err
			}
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key == "href" && attr.Val != "" {
					links.Add(attr.Val)
				}
			}
		}
	}
}
