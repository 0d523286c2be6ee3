package docs

import (
	"path/filepath"
	"strings"

	"github.com/tristendillon/forge/core/models"
)

// Classify keeps the files under docsDir with extension ext, in input order.
//
// The directory test is a plain string prefix on the root relative path, so a
// sibling such as "docs-extra" also matches "docs".
func Classify(files []models.FileDescriptor, rootPath, docsDir, ext string) []models.FileDescriptor {
	var out []models.FileDescriptor
	for _, file := range files {
		relPath, err := filepath.Rel(rootPath, file.Path())
		if err != nil {
			continue
		}

		if !strings.HasPrefix(relPath, docsDir) {
			continue
		}

		if file.IsDir {
			continue
		}

		if file.Ext != ext {
			continue
		}

		out = append(out, file)
	}
	return out
}
