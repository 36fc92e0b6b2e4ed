package content

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// documentExts is the extension allow-list for content documents.
// Theme assets and images living alongside posts are skipped here and
// handled by the static asset copy instead.
var documentExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
}

// Scan walks the content root and returns the source paths of every
// candidate document, relative to root and sorted for deterministic
// processing. A fresh scan is cheap and always allowed; nothing is
// cached between calls.
//
// An unreadable or missing root is a *ScanError and aborts the build.
func Scan(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !documentExts[filepath.Ext(d.Name())] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}

	sort.Strings(paths)
	return paths, nil
}
