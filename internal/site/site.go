// Package site computes the published subset of a content tree and the
// aggregate artifacts derived from it. It is the synchronization
// barrier of the pipeline: everything here requires the full document
// set, so it runs only after all per-document work has finished.
package site

import (
	"errors"
	"fmt"
	"sort"

	"stanza/internal/content"
	"stanza/internal/route"
)

// Page is a document together with its resolved route.
type Page struct {
	Doc   content.Document
	Route route.Route
}

// Options controls assembly. IncludeDrafts turns a production build
// into a preview build whose published subset is a superset of the
// production one.
type Options struct {
	IncludeDrafts bool
}

// Site is the assembled output model handed to the renderer.
type Site struct {
	// Pages is the published subset in publication order: publish date
	// descending, ties broken by source path descending.
	Pages []Page
	// Parameterized holds pages whose route contains a placeholder
	// segment. They have no concrete URL at build time and are left to
	// an external router, so they appear in no artifact.
	Parameterized []Page
	// Tags and Categories group the published pages by taxonomy term,
	// each group in publication order.
	Tags       []Taxonomy
	Categories []Taxonomy
}

// Taxonomy is one tag or category term and its pages.
type Taxonomy struct {
	Term  string
	Pages []Page
}

// RouteCollisionError reports two documents resolving to the same
// route. Fatal: a silent collision corrupts the published address
// space, so the build aborts rather than picking a winner.
type RouteCollisionError struct {
	Route  string
	First  string
	Second string
}

func (e *RouteCollisionError) Error() string {
	return fmt.Sprintf("route %s claimed by both %s and %s", e.Route, e.First, e.Second)
}

// Assemble filters, orders and groups the given pages. Draft pages are
// dropped unless opts.IncludeDrafts; parse failures never reach this
// point (they are recorded in the report instead).
//
// Route collisions are fatal, and every colliding pair is reported, not
// just the first one found.
func Assemble(pages []Page, opts Options) (*Site, error) {
	s := &Site{}

	// Work on a source-path-sorted copy so collision reports do not
	// depend on the order parse workers finished in.
	sorted := make([]Page, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Doc.SourcePath < sorted[j].Doc.SourcePath
	})

	var collisions []error
	byRoute := make(map[string]string, len(sorted))
	for _, p := range sorted {
		r := p.Route.String()
		if first, taken := byRoute[r]; taken {
			collisions = append(collisions, &RouteCollisionError{Route: r, First: first, Second: p.Doc.SourcePath})
			continue
		}
		byRoute[r] = p.Doc.SourcePath

		if p.Doc.Meta.Draft && !opts.IncludeDrafts {
			continue
		}
		if p.Route.IsParameterized() {
			s.Parameterized = append(s.Parameterized, p)
			continue
		}
		s.Pages = append(s.Pages, p)
	}
	if len(collisions) > 0 {
		return nil, errors.Join(collisions...)
	}

	sortPages(s.Pages)
	sortPages(s.Parameterized)

	s.Tags = groupBy(s.Pages, func(p Page) []string { return p.Doc.Meta.Tags })
	s.Categories = groupBy(s.Pages, func(p Page) []string { return p.Doc.Meta.Categories })
	return s, nil
}

func sortPages(pages []Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		di, dj := pages[i].Doc.Meta.Date, pages[j].Doc.Meta.Date
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return pages[i].Doc.SourcePath > pages[j].Doc.SourcePath
	})
}

func groupBy(pages []Page, terms func(Page) []string) []Taxonomy {
	groups := make(map[string][]Page)
	for _, p := range pages {
		for _, term := range terms(p) {
			groups[term] = append(groups[term], p)
		}
	}

	out := make([]Taxonomy, 0, len(groups))
	for term, ps := range groups {
		out = append(out, Taxonomy{Term: term, Pages: ps})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}
