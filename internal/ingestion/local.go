package ingestion

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/Divas-Gupta30/rag-agent/internal/processing"
	"github.com/pkg/errors"
)

// LoadLocalFiles walks root and returns every file the extractor supports,
// in lexical order.
func LoadLocalFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if processing.Supported(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	sort.Strings(out)
	return out, nil
}
