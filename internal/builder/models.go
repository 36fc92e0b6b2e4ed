package builder

import (
	"html/template"
	"time"

	"stanza/internal/config"
)

// BuildOptions controls a single pipeline run.
type BuildOptions struct {
	// CleanDestination empties the output directory before writing.
	CleanDestination bool
	// IncludeDrafts turns the run into a preview build: documents with
	// draft: true are published too.
	IncludeDrafts bool
	// Unsafe disables HTML sanitization of rendered Markdown.
	Unsafe bool
	// Workers bounds the parse/resolve fan-out. Zero picks a default.
	Workers int
}

// PageData is the struct passed to theme templates.
type PageData struct {
	Content     template.HTML
	Title       string
	Description string
	Author      string
	Date        time.Time
	Tags        []string
	Categories  []string
	Route       string
	BaseHref    string
	Site        config.SiteConfig
	Params      map[string]any
}

// Result summarizes a completed build.
type Result struct {
	// Pages is the number of rendered HTML files, listings included.
	Pages int
	// Skipped holds the per-document errors of the run. The build
	// succeeded despite them; callers decide how loudly to report.
	Skipped []error
}
