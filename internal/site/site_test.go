package site

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stanza/internal/content"
	"stanza/internal/route"
)

func mustPage(t *testing.T, src, title string, date time.Time, draft bool) Page {
	t.Helper()
	r, err := route.Resolve(src)
	require.NoError(t, err)
	return Page{
		Doc: content.Document{
			SourcePath: src,
			Meta:       content.Metadata{Title: title, Date: date, Draft: draft},
		},
		Route: r,
	}
}

func day(d int) time.Time {
	return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC)
}

func routesOf(pages []Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Route.String())
	}
	return out
}

func TestAssemble_OrdersByDateDescending(t *testing.T) {
	pages := []Page{
		mustPage(t, "posts/a.md", "A", day(5), false),
		mustPage(t, "posts/c.md", "C", day(15), false),
		mustPage(t, "posts/b.md", "B", day(10), false),
	}

	s, err := Assemble(pages, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"/posts/c", "/posts/b", "/posts/a"}, routesOf(s.Pages))
}

func TestAssemble_TieBreaksBySourcePathDescending(t *testing.T) {
	pages := []Page{
		mustPage(t, "posts/a.md", "A", day(5), false),
		mustPage(t, "posts/z.md", "Z", day(5), false),
		mustPage(t, "posts/m.md", "M", day(5), false),
	}

	s, err := Assemble(pages, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"/posts/z", "/posts/m", "/posts/a"}, routesOf(s.Pages))
}

func TestAssemble_ExcludesDrafts(t *testing.T) {
	pages := []Page{
		mustPage(t, "posts/a.md", "A", day(5), false),
		mustPage(t, "posts/b.md", "B", day(10), true),
	}

	s, err := Assemble(pages, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"/posts/a"}, routesOf(s.Pages))
}

func TestAssemble_PreviewIsSupersetOfProduction(t *testing.T) {
	pages := []Page{
		mustPage(t, "index.md", "Home", time.Time{}, false),
		mustPage(t, "posts/a.md", "A", day(5), false),
		mustPage(t, "posts/b.md", "B", day(10), true),
	}

	production, err := Assemble(pages, Options{})
	require.NoError(t, err)
	preview, err := Assemble(pages, Options{IncludeDrafts: true})
	require.NoError(t, err)

	prodRoutes := routesOf(production.Pages)
	prevRoutes := routesOf(preview.Pages)
	require.ElementsMatch(t, []string{"/", "/posts/a"}, prodRoutes)
	require.ElementsMatch(t, []string{"/", "/posts/a", "/posts/b"}, prevRoutes)
	for _, r := range prodRoutes {
		require.Contains(t, prevRoutes, r)
	}
}

func TestAssemble_RouteCollisionIsFatal(t *testing.T) {
	pages := []Page{
		mustPage(t, "posts/a.md", "A", day(5), false),
		mustPage(t, "posts/a.html", "Other A", day(10), false),
	}

	_, err := Assemble(pages, Options{})
	require.Error(t, err)

	var rce *RouteCollisionError
	require.True(t, errors.As(err, &rce))
	require.Equal(t, "/posts/a", rce.Route)
	require.Equal(t, "posts/a.html", rce.First)
	require.Equal(t, "posts/a.md", rce.Second)
}

func TestAssemble_ReportsEveryCollidingPair(t *testing.T) {
	pages := []Page{
		mustPage(t, "posts/a.md", "A", day(5), false),
		mustPage(t, "posts/a.html", "A again", day(6), false),
		mustPage(t, "posts/b.md", "B", day(10), false),
		mustPage(t, "posts/b.html", "B again", day(11), false),
	}

	_, err := Assemble(pages, Options{})
	require.Error(t, err)
	require.Equal(t, 2, strings.Count(err.Error(), "claimed by"))
	require.Contains(t, err.Error(), "route /posts/a claimed by both posts/a.html and posts/a.md")
	require.Contains(t, err.Error(), "route /posts/b claimed by both posts/b.html and posts/b.md")
}

func TestAssemble_CollisionErrorIsDeterministicAcrossInputOrder(t *testing.T) {
	a := mustPage(t, "posts/a.md", "A", day(5), false)
	b := mustPage(t, "posts/a.html", "B", day(10), false)

	_, err1 := Assemble([]Page{a, b}, Options{})
	_, err2 := Assemble([]Page{b, a}, Options{})
	require.Error(t, err1)
	require.Error(t, err2)
	require.Equal(t, err1.Error(), err2.Error())
}

func TestAssemble_ParameterizedRoutesAreSeparated(t *testing.T) {
	pages := []Page{
		mustPage(t, "posts/a.md", "A", day(5), false),
		mustPage(t, "posts/[slug]/index.md", "Template", time.Time{}, false),
	}

	s, err := Assemble(pages, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"/posts/a"}, routesOf(s.Pages))
	require.Equal(t, []string{"/posts/[slug]"}, routesOf(s.Parameterized))
}

func TestAssemble_GroupsByTagAndCategory(t *testing.T) {
	a := mustPage(t, "posts/a.md", "A", day(5), false)
	a.Doc.Meta.Tags = []string{"vue"}
	a.Doc.Meta.Categories = []string{"web"}
	b := mustPage(t, "posts/b.md", "B", day(10), false)
	b.Doc.Meta.Tags = []string{"vue", "nuxt"}

	s, err := Assemble([]Page{a, b}, Options{})
	require.NoError(t, err)

	require.Len(t, s.Tags, 2)
	require.Equal(t, "nuxt", s.Tags[0].Term)
	require.Equal(t, "vue", s.Tags[1].Term)
	require.Equal(t, []string{"/posts/b", "/posts/a"}, routesOf(s.Tags[1].Pages))

	require.Len(t, s.Categories, 1)
	require.Equal(t, "web", s.Categories[0].Term)
}

func TestAssemble_IsDeterministic(t *testing.T) {
	pages := []Page{
		mustPage(t, "posts/a.md", "A", day(5), false),
		mustPage(t, "posts/b.md", "B", day(10), false),
		mustPage(t, "index.md", "Home", time.Time{}, false),
	}

	first, err := Assemble(pages, Options{})
	require.NoError(t, err)
	second, err := Assemble([]Page{pages[2], pages[0], pages[1]}, Options{})
	require.NoError(t, err)
	require.Equal(t, routesOf(first.Pages), routesOf(second.Pages))
}
