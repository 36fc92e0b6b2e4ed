package builder

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stanza/internal/config"
	"stanza/internal/route"
	"stanza/internal/site"
)

var listingTmpl = template.Must(template.New("listing").Parse(`<h1>{{.Heading}}</h1>
<ul class="post-list">
{{- range .Entries}}
  <li><a href="{{.Href}}">{{.Title}}</a>{{if .Date}} <time datetime="{{.Date}}">{{.Date}}</time>{{end}}</li>
{{- end}}
</ul>
`))

type listingEntry struct {
	Href  string
	Title string
	Date  string
}

// renderListings emits the aggregate listing pages: the home index when
// no document claims the root route, and one page per tag and per
// category, all in publication order.
func renderListings(outputDir string, cfg config.SiteConfig, tmpl *template.Template, s *site.Site) (int, error) {
	claimed := make(map[string]bool, len(s.Pages))
	for _, p := range s.Pages {
		claimed[p.Route.String()] = true
	}

	count := 0
	write := func(r route.Route, heading string, pages []site.Page) error {
		if claimed[r.String()] {
			slog.Warn("Listing route claimed by a document, skipping listing",
				slog.String("route", r.String()))
			return nil
		}
		body, err := listingBody(heading, r, pages)
		if err != nil {
			return err
		}
		data := PageData{
			Content:     body,
			Title:       heading,
			Description: cfg.Description,
			Author:      cfg.Author,
			Route:       r.String(),
			BaseHref:    baseHref(r),
			Site:        cfg,
		}
		outPath := filepath.Join(outputDir, filepath.FromSlash(r.OutputPath()))
		if err := renderPage(tmpl, outPath, data); err != nil {
			return fmt.Errorf("failed to render listing %s: %w", r.String(), err)
		}
		count++
		return nil
	}

	if !claimed["/"] {
		if err := write(route.Route{}, cfg.Title, s.Pages); err != nil {
			return count, err
		}
	}
	for _, tax := range s.Tags {
		if err := write(taxonomyRoute("tags", tax.Term), tax.Term, tax.Pages); err != nil {
			return count, err
		}
	}
	for _, tax := range s.Categories {
		if err := write(taxonomyRoute("categories", tax.Term), tax.Term, tax.Pages); err != nil {
			return count, err
		}
	}
	return count, nil
}

func listingBody(heading string, at route.Route, pages []site.Page) (template.HTML, error) {
	base := baseHref(at)
	entries := make([]listingEntry, 0, len(pages))
	for _, p := range pages {
		e := listingEntry{
			Href:  base + strings.TrimPrefix(p.Route.String(), "/") + "/",
			Title: p.Doc.Meta.Title,
		}
		if p.Route.String() == "/" {
			e.Href = base
		}
		if !p.Doc.Meta.Date.IsZero() {
			e.Date = p.Doc.Meta.Date.Format("2006-01-02")
		}
		entries = append(entries, e)
	}

	var buf bytes.Buffer
	err := listingTmpl.Execute(&buf, struct {
		Heading string
		Entries []listingEntry
	}{heading, entries})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func taxonomyRoute(kind, term string) route.Route {
	return route.Route{Segments: []route.Segment{
		{Kind: route.Literal, Text: kind},
		{Kind: route.Literal, Text: slugify(term)},
	}}
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, s)
	return strings.Trim(s, "-")
}

// writeArtifacts emits the machine-readable aggregates: sitemap.xml and
// the RSS feed, both covering exactly the published subset.
func writeArtifacts(outputDir string, cfg config.SiteConfig, s *site.Site) error {
	sm, err := os.Create(filepath.Join(outputDir, "sitemap.xml"))
	if err != nil {
		return err
	}
	defer sm.Close()
	if err := site.WriteSitemap(sm, cfg.BaseURL, s.Pages); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}

	feed, err := os.Create(filepath.Join(outputDir, "feed.xml"))
	if err != nil {
		return err
	}
	defer feed.Close()
	if err := site.WriteFeed(feed, cfg, s.Pages); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}
	return nil
}
