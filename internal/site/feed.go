package site

import (
	"encoding/xml"
	"io"
	"time"

	"stanza/internal/config"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// WriteFeed emits an RSS 2.0 feed with one item per published page in
// publication order. The item GUID is the page URL, which keeps entries
// uniquely keyed by route.
func WriteFeed(w io.Writer, cfg config.SiteConfig, pages []Page) error {
	items := make([]rssItem, 0, len(pages))
	for _, p := range pages {
		pageURL := AbsoluteURL(cfg.BaseURL, p.Route.String())
		item := rssItem{
			Title:       p.Doc.Meta.Title,
			Link:        pageURL,
			Description: p.Doc.Meta.Description,
			GUID:        pageURL,
		}
		if !p.Doc.Meta.Date.IsZero() {
			item.PubDate = p.Doc.Meta.Date.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Title,
			Link:        cfg.BaseURL,
			Description: cfg.Description,
			Items:       items,
		},
	}
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}
