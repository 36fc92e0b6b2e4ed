package content

import "time"

// Metadata holds the recognized front matter fields of a document.
// Keys not listed here are kept in Extra so that themes and future
// versions can still see them.
type Metadata struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Date        time.Time      `yaml:"date"`
	Lastmod     time.Time      `yaml:"lastmod"`
	Draft       bool           `yaml:"draft"`
	Tags        []string       `yaml:"tags"`
	Categories  []string       `yaml:"categories"`
	Authors     []string       `yaml:"authors"`
	Extra       map[string]any `yaml:",inline"`
}

// Modified returns the date to advertise as the document's last
// modification: lastmod when set, otherwise the publish date.
func (m Metadata) Modified() time.Time {
	if !m.Lastmod.IsZero() {
		return m.Lastmod
	}
	return m.Date
}

// Document is one content unit: a blog post or standalone page.
// SourcePath is relative to the content root and never changes after
// discovery; the body is the raw Markdown following the front matter.
type Document struct {
	SourcePath string
	Meta       Metadata
	Body       []byte
}
