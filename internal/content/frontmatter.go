package content

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// SplitFrontMatter separates the leading `---` delimited YAML block from
// the Markdown body.
//
// If the document does not start with a delimiter, had is false and body
// is the full input. An opening delimiter without a closing one is an
// error (ErrMissingClosingDelimiter) rather than silently treating the
// whole file as body, since that almost always means a typo in the block.
func SplitFrontMatter(raw []byte) (meta []byte, body []byte, had bool, err error) {
	nl := detectNewline(raw)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(raw, open) {
		return nil, raw, false, nil
	}

	rest := raw[len(open):]
	if bytes.HasPrefix(rest, open) {
		// Empty block: "---\n---\n".
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A file ending exactly at the closing delimiter has no trailing
		// newline after it.
		closeEnd := []byte(nl + "---")
		if bytes.HasSuffix(rest, closeEnd) {
			return rest[:len(rest)-len(closeEnd)+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
}

// Parse decodes a raw document into a Document. path is the source path
// relative to the content root and is used in error values only.
//
// Error policy follows the pipeline's per-document recovery rules: a
// malformed block yields *MalformedFrontMatterError, an absent title
// yields *MissingFieldError. Unrecognized fields land in Meta.Extra.
func Parse(path string, raw []byte) (Document, error) {
	block, body, had, err := SplitFrontMatter(raw)
	if err != nil {
		return Document{}, &MalformedFrontMatterError{Path: path, Err: err}
	}

	doc := Document{SourcePath: path, Body: body}
	if had {
		if err := yaml.Unmarshal(block, &doc.Meta); err != nil {
			return Document{}, &MalformedFrontMatterError{Path: path, Err: err}
		}
	}

	if doc.Meta.Title == "" {
		return Document{}, &MissingFieldError{Path: path, Field: "title"}
	}
	return doc, nil
}

func detectNewline(raw []byte) string {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\n' {
			if i > 0 && raw[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}
