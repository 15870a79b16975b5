package processor

import (
	"fmt"
	"os"
	"path/filepath"

	"doc-analytics/internal/domain"
)

// PathResolver maps a registered document identifier to a readable file
// path, or reports that no file exists.
type PathResolver interface {
	Resolve(path string) (string, error)
}

// fallbackResolver tries the requested path first and then the same filename
// under a fallback directory. Deployments mount documents under a fixed
// directory while callers register them by their original absolute paths.
type fallbackResolver struct {
	fallbackDir string
}

// NewFallbackResolver creates the default resolver.
func NewFallbackResolver(fallbackDir string) PathResolver {
	return &fallbackResolver{fallbackDir: fallbackDir}
}

func (r *fallbackResolver) Resolve(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if r.fallbackDir != "" {
		alt := filepath.Join(r.fallbackDir, filepath.Base(path))
		if _, err := os.Stat(alt); err == nil {
			return alt, nil
		}
	}

	return "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
}
