package builder

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newMDLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	htmlSanitizer = bluemonday.UGCPolicy()
)

// renderBody converts a Markdown body to HTML. linkPrefix is the
// relative prefix the link transformer needs to point relative .md
// links at their published routes from this page's output directory.
// The output is run through the UGC sanitizer unless opts.Unsafe is set.
func renderBody(body []byte, opts BuildOptions, linkPrefix string) (string, error) {
	ctx := parser.NewContext()
	ctx.Set(linkPrefixKey, linkPrefix)

	var buf bytes.Buffer
	if err := markdownRenderer.Convert(body, &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	if opts.Unsafe {
		return buf.String(), nil
	}
	return string(htmlSanitizer.SanitizeBytes(buf.Bytes())), nil
}
