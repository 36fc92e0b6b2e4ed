package content

import (
	"errors"
	"fmt"
)

// ErrMissingClosingDelimiter indicates a document started with a front
// matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter found but closing delimiter is missing")

// ScanError reports that the content root could not be read at all.
// It is fatal: a build without content is meaningless.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// MissingFieldError reports a required front matter field absent from a
// document. The document is excluded from the build; other documents
// are unaffected.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: required front matter field %q is missing", e.Path, e.Field)
}

// MalformedFrontMatterError reports a front matter block that could not
// be decoded. Same per-document recovery policy as MissingFieldError.
type MalformedFrontMatterError struct {
	Path string
	Err  error
}

func (e *MalformedFrontMatterError) Error() string {
	return fmt.Sprintf("%s: malformed front matter: %v", e.Path, e.Err)
}

func (e *MalformedFrontMatterError) Unwrap() error { return e.Err }
