package builder_test

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stanza/internal/builder"
	"stanza/internal/config"
	"stanza/internal/content"
	"stanza/internal/scaffold"
	"stanza/internal/site"
)

type testSite struct {
	dir string
	cfg config.SiteConfig
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, scaffold.CreateNewSite(dir))

	cfg, err := config.Load(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	return &testSite{dir: dir, cfg: cfg}
}

func (s *testSite) writeContent(t *testing.T, rel, body string) {
	t.Helper()
	path := filepath.Join(s.dir, "content", filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func (s *testSite) build(t *testing.T, opts builder.BuildOptions) (*builder.Result, error) {
	t.Helper()
	tmpl, err := builder.LoadTemplates(filepath.Join(s.dir, "templates"), s.cfg.Theme)
	require.NoError(t, err)
	return builder.BuildSite(
		filepath.Join(s.dir, "public"),
		filepath.Join(s.dir, "content"),
		filepath.Join(s.dir, "static"),
		s.cfg, tmpl, opts)
}

func (s *testSite) outputExists(rel string) bool {
	_, err := os.Stat(filepath.Join(s.dir, "public", filepath.FromSlash(rel)))
	return err == nil
}

func (s *testSite) readOutput(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.dir, "public", filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

const postA = `---
title: A
date: 2024-02-05
tags:
  - vue
---
Some *emphasized* text.
`

const postB = `---
title: B
date: 2024-02-10
draft: true
---
Draft body.
`

func TestBuildSite_Scenario_DraftExcludedFromProduction(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/b.md", postB)

	result, err := s.build(t, builder.BuildOptions{CleanDestination: true})
	require.NoError(t, err)
	require.Empty(t, result.Skipped)

	require.True(t, s.outputExists("index.html"))
	require.True(t, s.outputExists("posts/a/index.html"))
	require.False(t, s.outputExists("posts/b/index.html"))

	sitemap := s.readOutput(t, "sitemap.xml")
	require.Contains(t, sitemap, "/posts/a</loc>")
	require.NotContains(t, sitemap, "/posts/b")
}

func TestBuildSite_PreviewIncludesDrafts(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/b.md", postB)

	_, err := s.build(t, builder.BuildOptions{CleanDestination: true, IncludeDrafts: true})
	require.NoError(t, err)

	require.True(t, s.outputExists("posts/a/index.html"))
	require.True(t, s.outputExists("posts/b/index.html"))
}

func TestBuildSite_RendersMarkdownThroughTheme(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)

	_, err := s.build(t, builder.BuildOptions{})
	require.NoError(t, err)

	page := s.readOutput(t, "posts/a/index.html")
	require.Contains(t, page, "<em>emphasized</em>")
	require.Contains(t, page, "<title>A | My Blog</title>")
	// Two levels deep, so asset links walk back up to the root.
	require.Contains(t, page, `href="../../css/style.css"`)
}

func TestBuildSite_WritesTaxonomyListings(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)

	_, err := s.build(t, builder.BuildOptions{})
	require.NoError(t, err)

	require.True(t, s.outputExists("tags/vue/index.html"))
	listing := s.readOutput(t, "tags/vue/index.html")
	require.Contains(t, listing, `<a href="../../posts/a/">A</a>`)
	require.Contains(t, listing, `<time datetime="2024-02-05">`)
}

func TestBuildSite_RelativeLinksResolveFromEachPageDepth(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "index.md", "---\ntitle: Home\n---\n[a](posts/a.md)\n")
	s.writeContent(t, "posts/index.md", "---\ntitle: Posts\n---\n[a](a.md)\n")
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/b.md", "---\ntitle: B\ndate: 2024-02-10\n---\n[a](a.md) [n](/notes/x.md)\n")

	_, err := s.build(t, builder.BuildOptions{})
	require.NoError(t, err)

	// The home page renders at the same depth as its source, so links
	// must not climb out of the site root.
	home := s.readOutput(t, "index.html")
	require.Contains(t, home, `href="posts/a/"`)
	require.NotContains(t, home, `href="../posts/a/"`)

	// Same for a section index: its links stay inside the section.
	postsIndex := s.readOutput(t, "posts/index.html")
	require.Contains(t, postsIndex, `href="a/"`)
	require.NotContains(t, postsIndex, `href="../a/"`)

	// A regular post renders one directory deeper than its source.
	postB := s.readOutput(t, "posts/b/index.html")
	require.Contains(t, postB, `href="../a/"`)
	require.Contains(t, postB, `href="/notes/x/"`)
}

func TestBuildSite_CollisionAbortReportsEveryPair(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/a.html", "---\ntitle: Other A\n---\n<p>hi</p>\n")
	s.writeContent(t, "posts/c.md", "---\ntitle: C\ndate: 2024-02-15\n---\nbody\n")
	s.writeContent(t, "posts/c.html", "---\ntitle: Other C\n---\n<p>hi</p>\n")

	_, err := s.build(t, builder.BuildOptions{})
	require.Error(t, err)

	var rce *site.RouteCollisionError
	require.True(t, errors.As(err, &rce))
	require.Equal(t, 2, strings.Count(err.Error(), "claimed by"))
	require.Contains(t, err.Error(), "/posts/a")
	require.Contains(t, err.Error(), "/posts/c")
}

func TestBuildSite_FatalAbortStillLogsSkippedDocuments(t *testing.T) {
	var logBuf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logBuf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	s := newTestSite(t)
	s.writeContent(t, "posts/bad.md", "---\ntitle: Bad\nno closing delimiter\n")
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/a.html", "---\ntitle: Other A\n---\n<p>hi</p>\n")

	_, err := s.build(t, builder.BuildOptions{})
	require.Error(t, err)
	require.Contains(t, logBuf.String(), "Document skipped")
	require.Contains(t, logBuf.String(), "posts/bad.md")
}

func TestBuildSite_PageCountMatchesWrittenFiles(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/b.md", "---\ntitle: B\ndate: 2024-02-10\n---\nbody\n")
	s.writeContent(t, "posts/bad.md", "---\ntitle: Bad\nno closing delimiter\n")

	result, err := s.build(t, builder.BuildOptions{})
	require.NoError(t, err)

	written := 0
	err = filepath.WalkDir(filepath.Join(s.dir, "public"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".html") {
			written++
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, written, result.Pages)
}

func TestBuildSite_MalformedDocumentDoesNotAbortBuild(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/bad.md", "---\ntitle: Bad\nno closing delimiter\n")

	result, err := s.build(t, builder.BuildOptions{})
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	var mfm *content.MalformedFrontMatterError
	require.True(t, errors.As(result.Skipped[0], &mfm))
	require.Equal(t, "posts/bad.md", mfm.Path)

	require.True(t, s.outputExists("posts/a/index.html"))
	require.False(t, s.outputExists("posts/bad/index.html"))
}

func TestBuildSite_MissingTitleIsReportedAndExcluded(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/untitled.md", "---\ndate: 2024-02-05\n---\nbody\n")

	result, err := s.build(t, builder.BuildOptions{})
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	var mfe *content.MissingFieldError
	require.True(t, errors.As(result.Skipped[0], &mfe))
	require.Equal(t, "title", mfe.Field)
	require.False(t, s.outputExists("posts/untitled/index.html"))
}

func TestBuildSite_RouteCollisionIsFatal(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/a.html", "---\ntitle: Other A\n---\n<p>hi</p>\n")

	_, err := s.build(t, builder.BuildOptions{})
	require.Error(t, err)

	var rce *site.RouteCollisionError
	require.True(t, errors.As(err, &rce))
	require.Equal(t, "/posts/a", rce.Route)
}

func TestBuildSite_MissingContentRootIsFatal(t *testing.T) {
	s := newTestSite(t)
	require.NoError(t, os.RemoveAll(filepath.Join(s.dir, "content")))

	_, err := s.build(t, builder.BuildOptions{})
	require.Error(t, err)

	var se *content.ScanError
	require.True(t, errors.As(err, &se))
}

func TestBuildSite_SuccessiveBuildsAreByteIdentical(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/b.md", "---\ntitle: B2\ndate: 2024-02-10\n---\nbody\n")
	s.writeContent(t, "posts/c.md", "---\ntitle: C\ndate: 2024-02-15\n---\nbody\n")

	_, err := s.build(t, builder.BuildOptions{CleanDestination: true, Workers: 4})
	require.NoError(t, err)
	firstSitemap := s.readOutput(t, "sitemap.xml")
	firstFeed := s.readOutput(t, "feed.xml")
	firstHome := s.readOutput(t, "index.html")

	_, err = s.build(t, builder.BuildOptions{CleanDestination: true, Workers: 4})
	require.NoError(t, err)
	require.Equal(t, firstSitemap, s.readOutput(t, "sitemap.xml"))
	require.Equal(t, firstFeed, s.readOutput(t, "feed.xml"))
	require.Equal(t, firstHome, s.readOutput(t, "index.html"))
}

func TestBuildSite_FeedOrderIsDateDescending(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", "---\ntitle: A\ndate: 2024-02-05\n---\nbody\n")
	s.writeContent(t, "posts/b.md", "---\ntitle: B\ndate: 2024-02-10\n---\nbody\n")
	s.writeContent(t, "posts/c.md", "---\ntitle: C\ndate: 2024-02-15\n---\nbody\n")

	_, err := s.build(t, builder.BuildOptions{})
	require.NoError(t, err)

	feed := s.readOutput(t, "feed.xml")
	posC := strings.Index(feed, "<title>C</title>")
	posB := strings.Index(feed, "<title>B</title>")
	posA := strings.Index(feed, "<title>A</title>")
	require.GreaterOrEqual(t, posC, 0)
	require.Less(t, posC, posB)
	require.Less(t, posB, posA)
}

func TestBuildSite_CopiesStaticAssets(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)

	_, err := s.build(t, builder.BuildOptions{})
	require.NoError(t, err)
	require.True(t, s.outputExists("css/style.css"))
}

func TestBuildSite_ParameterizedRoutesProduceNoOutput(t *testing.T) {
	s := newTestSite(t)
	s.writeContent(t, "posts/a.md", postA)
	s.writeContent(t, "posts/[slug]/index.md", "---\ntitle: Template\n---\nbody\n")

	result, err := s.build(t, builder.BuildOptions{})
	require.NoError(t, err)
	require.Empty(t, result.Skipped)

	require.False(t, s.outputExists("posts/[slug]/index.html"))
	require.NotContains(t, s.readOutput(t, "sitemap.xml"), "[slug]")
}
