package builder

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"stanza/internal/config"
	"stanza/internal/content"
	"stanza/internal/route"
	"stanza/internal/site"
)

// BuildSite runs the full pipeline: scan the content tree, parse and
// resolve every document, assemble the published subset, render pages
// and aggregate artifacts, and copy static assets.
//
// Per-document failures are collected in Result.Skipped and never abort
// the run. A scan failure or a route collision is fatal.
func BuildSite(outputDir, contentDir, staticDir string, cfg config.SiteConfig, tmpl *template.Template, opts BuildOptions) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	if opts.CleanDestination {
		slog.Debug("Cleaning destination directory", slog.String("dir", outputDir))
		entries, err := os.ReadDir(outputDir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(outputDir, entry.Name())); err != nil {
				return nil, err
			}
		}
	}

	paths, err := content.Scan(contentDir)
	if err != nil {
		return nil, err
	}

	report := &site.Report{}
	pages := parseAll(contentDir, paths, opts.Workers, report)

	// Per-document errors recorded so far must still surface when a
	// later stage aborts the build.
	fatal := func(err error) (*Result, error) {
		report.Log()
		return nil, err
	}

	assembled, err := site.Assemble(pages, site.Options{IncludeDrafts: opts.IncludeDrafts})
	if err != nil {
		return fatal(err)
	}

	result := &Result{}
	for _, p := range assembled.Pages {
		rendered, err := renderDocument(outputDir, cfg, tmpl, p, opts, report)
		if err != nil {
			return fatal(err)
		}
		if rendered {
			result.Pages++
		}
	}
	for _, p := range assembled.Parameterized {
		slog.Debug("Skipping parameterized route, no concrete URL at build time",
			slog.String("source", p.Doc.SourcePath), slog.String("route", p.Route.String()))
	}

	n, err := renderListings(outputDir, cfg, tmpl, assembled)
	if err != nil {
		return fatal(err)
	}
	result.Pages += n

	if err := writeArtifacts(outputDir, cfg, assembled); err != nil {
		return fatal(err)
	}

	if err := copyStaticAssets(staticDir, outputDir); err != nil {
		return fatal(err)
	}

	report.Log()
	result.Skipped = report.Errors()
	return result, nil
}

// parseAll fans the parse/resolve work out over a bounded worker pool.
// Documents are independent of each other, so the only shared state is
// the appended page slice (under a mutex) and the report.
func parseAll(contentDir string, paths []string, workers int, report *site.Report) []site.Page {
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var pages []site.Page
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range jobs {
				p, err := parseOne(contentDir, rel)
				if err != nil {
					report.Add(err)
					continue
				}
				mu.Lock()
				pages = append(pages, p)
				mu.Unlock()
			}
		}()
	}

	for _, rel := range paths {
		jobs <- rel
	}
	close(jobs)
	wg.Wait()
	return pages
}

func parseOne(contentDir, rel string) (site.Page, error) {
	raw, err := os.ReadFile(filepath.Join(contentDir, filepath.FromSlash(rel)))
	if err != nil {
		return site.Page{}, fmt.Errorf("%s: %w", rel, err)
	}
	if !utf8.Valid(raw) {
		return site.Page{}, fmt.Errorf("%s: content is not valid UTF-8", rel)
	}
	doc, err := content.Parse(rel, raw)
	if err != nil {
		return site.Page{}, err
	}
	r, err := route.Resolve(rel)
	if err != nil {
		return site.Page{}, err
	}
	return site.Page{Doc: doc, Route: r}, nil
}

// renderDocument writes one published page. The bool reports whether a
// file was actually written: a body render failure is recorded in the
// report and skipped like any other per-document error, so it must not
// count as an emitted page.
func renderDocument(outputDir string, cfg config.SiteConfig, tmpl *template.Template, p site.Page, opts BuildOptions, report *site.Report) (bool, error) {
	htmlOut, err := renderBody(p.Doc.Body, opts, sourceLinkPrefix(p.Doc.SourcePath))
	if err != nil {
		report.Add(fmt.Errorf("%s: %w", p.Doc.SourcePath, err))
		return false, nil
	}

	data := PageData{
		Content:     template.HTML(htmlOut),
		Title:       p.Doc.Meta.Title,
		Description: p.Doc.Meta.Description,
		Author:      firstAuthor(p.Doc.Meta.Authors, cfg.Author),
		Date:        p.Doc.Meta.Date,
		Tags:        p.Doc.Meta.Tags,
		Categories:  p.Doc.Meta.Categories,
		Route:       p.Route.String(),
		BaseHref:    baseHref(p.Route),
		Site:        cfg,
		Params:      p.Doc.Meta.Extra,
	}
	if data.Description == "" {
		data.Description = cfg.Description
	}

	outPath := filepath.Join(outputDir, filepath.FromSlash(p.Route.OutputPath()))
	if err := renderPage(tmpl, outPath, data); err != nil {
		return false, fmt.Errorf("failed to render page %s: %w", p.Doc.SourcePath, err)
	}
	return true, nil
}

// sourceLinkPrefix is the path from a document's rendered directory
// back to its source directory. Index documents render in place; every
// other document renders one directory deeper.
func sourceLinkPrefix(sourcePath string) string {
	name := path.Base(sourcePath)
	if strings.TrimSuffix(name, path.Ext(name)) == "index" {
		return ""
	}
	return "../"
}

func firstAuthor(authors []string, fallback string) string {
	if len(authors) > 0 {
		return authors[0]
	}
	return fallback
}

// baseHref is the relative path from a rendered page back to the site
// root, so css/js links work at any depth and under file://.
func baseHref(r route.Route) string {
	return strings.Repeat("../", len(r.Segments))
}

// renderPage executes the theme's "main" template into outPath.
func renderPage(tmpl *template.Template, outPath string, data PageData) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	return tmpl.ExecuteTemplate(outFile, "main", data)
}

// copyStaticAssets copies files from the static directory to the output
// directory, filtered by an asset extension allow-list.
func copyStaticAssets(staticDir, outputDir string) error {
	allowedExts := map[string]bool{
		".css": true, ".js": true, ".txt": true, ".svg": true,
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
		".ico": true, ".woff": true, ".woff2": true,
	}
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !allowedExts[filepath.Ext(info.Name())] {
			return nil
		}

		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer dst.Close()
		_, err = io.Copy(dst, src)
		return err
	})
}

// LoadTemplates parses the theme's template files. A theme is a layout
// plus header and footer partials under templates/<name>/.
func LoadTemplates(templateDir, themeName string) (*template.Template, error) {
	path := filepath.Join(templateDir, themeName)
	tmpl, err := template.ParseFiles(
		filepath.Join(path, "layout.html"),
		filepath.Join(path, "header.html"),
		filepath.Join(path, "footer.html"),
	)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}
