package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot indicates a file URI resolved to a path outside the
// resolver's configured root.
var ErrOutsideRoot = errors.New("source: path outside root")

// FileResolver opens local files. URIs may carry a file:// prefix or be
// bare paths.
type FileResolver struct {
	// Root, when non-empty, confines resolution to paths below it.
	// Relative paths are interpreted against it.
	Root string
}

func (r FileResolver) Resolve(uri string) (Source, error) {
	path := strings.TrimPrefix(uri, "file://")
	if r.Root != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.Root, path)
		}
		rel, err := filepath.Rel(r.Root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, path)
		}
	}
	return fileSource{path: path}, nil
}

type fileSource struct {
	path string
}

func (s fileSource) URI() string { return s.path }

func (s fileSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(s.path)
}
