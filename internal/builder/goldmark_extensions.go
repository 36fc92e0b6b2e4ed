package builder

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// linkPrefixKey carries the relative prefix from a rendered page's
// directory back to its source directory. Non-index documents are
// emitted one directory deeper than their source ("posts/b.md" ->
// "posts/b/index.html"), so their relative links need a leading "../";
// index documents stay at their source depth and need none.
var linkPrefixKey = parser.NewContextKey()

// mdLinkTransformer rewrites relative links between Markdown sources
// into links between their published routes, so authors can link to
// "other-post.md" and have it resolve once rendered.
type mdLinkTransformer struct{}

func newMDLinkTransformer() parser.ASTTransformer {
	return &mdLinkTransformer{}
}

func (t *mdLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	prefix, _ := pc.Get(linkPrefixKey).(string)

	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest := link.Destination
		if !bytes.HasSuffix(dest, []byte(".md")) {
			return ast.WalkContinue, nil
		}
		newDest := bytes.TrimSuffix(dest, []byte(".md"))
		if base := bytes.TrimSuffix(newDest, []byte("index")); len(base) < len(newDest) {
			newDest = base
		}
		if !bytes.HasPrefix(newDest, []byte("/")) {
			newDest = append([]byte(prefix), newDest...)
		}
		if !bytes.HasSuffix(newDest, []byte("/")) {
			newDest = append(newDest, '/')
		}
		link.Destination = newDest
		return ast.WalkContinue, nil
	})
}
