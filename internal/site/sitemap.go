package site

import (
	"encoding/xml"
	"io"
	"net/url"
	"path"
	"strings"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap emits a sitemaps.org urlset with one entry per published
// page, keyed by route. Parameterized pages never reach here.
func WriteSitemap(w io.Writer, baseURL string, pages []Page) error {
	urls := make([]sitemapURL, 0, len(pages))
	for _, p := range pages {
		u := sitemapURL{Loc: AbsoluteURL(baseURL, p.Route.String())}
		if mod := p.Doc.Meta.Modified(); !mod.IsZero() {
			u.LastMod = mod.Format("2006-01-02")
		}
		urls = append(urls, u)
	}

	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(set)
}

// AbsoluteURL joins the site base URL with a route path.
func AbsoluteURL(base, routePath string) string {
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimSuffix(base, "/") + routePath
	}
	u.Path = path.Join(u.Path, routePath)
	return u.String()
}
