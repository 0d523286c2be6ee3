package walker

import (
	"io/fs"
	"path/filepath"

	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/models"
)

type ProjectWalker interface {
	Walk(root string) ([]models.FileDescriptor, error)
}

type ProjectWalkerImpl struct {
	Exclude []string
}

func defaultExcludes() []string {
	return []string{".git", "node_modules", "vendor", ".DS_Store"}
}

// NewProjectWalker skips the default excludes plus extra, matched against
// each path relative to the walk root.
func NewProjectWalker(extra ...string) *ProjectWalkerImpl {
	exclude := defaultExcludes()
	for _, ex := range extra {
		if ex != "" {
			exclude = append(exclude, filepath.Clean(ex))
		}
	}
	return &ProjectWalkerImpl{Exclude: exclude}
}

// Walk lists every entry under root in lexical traversal order.
func (w *ProjectWalkerImpl) Walk(root string) ([]models.FileDescriptor, error) {
	var discovered []models.FileDescriptor

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if w.isExcluded(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		discovered = append(discovered, models.NewFileDescriptor(path, d.IsDir()))
		return nil
	})

	logger.Debug("Walked %s: %d entries", root, len(discovered))
	return discovered, err
}

func (w *ProjectWalkerImpl) isExcluded(relPath string) bool {
	base := filepath.Base(relPath)
	for _, ex := range w.Exclude {
		if relPath == ex || base == ex {
			return true
		}
	}
	return false
}
