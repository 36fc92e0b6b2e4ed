// Package route derives canonical output paths from content source
// paths. Resolution is a pure function: the same source path always
// yields the same route, and nothing here touches the filesystem.
package route

import (
	"fmt"
	"path"
	"strings"
)

// SegmentKind distinguishes literal path segments from parameterized
// placeholders in the content tree.
type SegmentKind int

const (
	// Literal is a plain path segment.
	Literal SegmentKind = iota
	// SingleParam is a bracketed segment such as "[slug]" matching
	// exactly one path segment at serve time.
	SingleParam
	// CatchAllParam is a "[...rest]" segment matching one or more
	// trailing path segments at serve time.
	CatchAllParam
)

// Segment is one element of a route.
type Segment struct {
	Kind SegmentKind
	// Text is the literal segment for Literal, the parameter name for
	// SingleParam and CatchAllParam.
	Text string
}

// Route is the canonical output path of a document. An empty segment
// list is the site root.
type Route struct {
	Segments []Segment
}

// Resolve maps a source path (relative to the content root, slash
// separated) to its route. The extension is stripped, and a file named
// "index" collapses to the route of its containing directory.
//
// Parameterized segments are recorded, never bound: a route containing
// them is a template for an external router, and a catch-all is only
// valid as the final segment.
func Resolve(sourcePath string) (Route, error) {
	p := strings.TrimSuffix(sourcePath, path.Ext(sourcePath))
	p = strings.Trim(p, "/")

	parts := strings.Split(p, "/")
	if last := parts[len(parts)-1]; last == "index" {
		parts = parts[:len(parts)-1]
	}

	segs := make([]Segment, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return Route{}, fmt.Errorf("route %q: empty path segment", sourcePath)
		}
		seg, err := parseSegment(part)
		if err != nil {
			return Route{}, fmt.Errorf("route %q: %w", sourcePath, err)
		}
		if seg.Kind == CatchAllParam && i != len(parts)-1 {
			return Route{}, fmt.Errorf("route %q: catch-all segment [...%s] must be last", sourcePath, seg.Text)
		}
		segs = append(segs, seg)
	}

	return Route{Segments: segs}, nil
}

func parseSegment(part string) (Segment, error) {
	if !strings.HasPrefix(part, "[") || !strings.HasSuffix(part, "]") {
		return Segment{Kind: Literal, Text: part}, nil
	}

	name := part[1 : len(part)-1]
	kind := SingleParam
	if strings.HasPrefix(name, "...") {
		name = strings.TrimPrefix(name, "...")
		kind = CatchAllParam
	}
	if name == "" {
		return Segment{}, fmt.Errorf("placeholder segment %q has no parameter name", part)
	}
	return Segment{Kind: kind, Text: name}, nil
}

// String renders the route as an absolute URL path. Parameterized
// segments keep their bracketed spelling since they have no concrete
// value at build time.
func (r Route) String() string {
	if len(r.Segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range r.Segments {
		b.WriteByte('/')
		switch s.Kind {
		case SingleParam:
			b.WriteString("[" + s.Text + "]")
		case CatchAllParam:
			b.WriteString("[..." + s.Text + "]")
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// IsParameterized reports whether any segment is a placeholder. Such
// routes cannot appear in the sitemap or feed: there is no concrete URL
// to publish until a router binds the parameter.
func (r Route) IsParameterized() bool {
	for _, s := range r.Segments {
		if s.Kind != Literal {
			return true
		}
	}
	return false
}

// OutputPath is the relative filesystem path for the rendered page,
// using the directory-per-route layout ("posts/a" -> "posts/a/index.html").
func (r Route) OutputPath() string {
	if len(r.Segments) == 0 {
		return "index.html"
	}
	parts := make([]string, 0, len(r.Segments)+1)
	for _, s := range r.Segments {
		parts = append(parts, s.Text)
	}
	parts = append(parts, "index.html")
	return path.Join(parts...)
}
