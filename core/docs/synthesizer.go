package docs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tristendillon/forge/core/formatter"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/models"
	"github.com/tristendillon/forge/core/shared"
	"github.com/tristendillon/forge/core/template_engine"
)

// ErrSynthesis marks a generated entry that could not be formatted. It points
// at a generator bug rather than a user mistake.
var ErrSynthesis = errors.New("entry synthesis failed")

type TemplateParams struct {
	// WrapperPath is the absolute path of the docs renderer module.
	WrapperPath string
}

// NewEntries binds each file to Doc<i> and an import path relative to the
// directory of entryPath.
func NewEntries(files []models.FileDescriptor, entryPath string) ([]models.DocEntry, error) {
	entryDir := filepath.Dir(entryPath)
	entries := make([]models.DocEntry, 0, len(files))
	for i, file := range files {
		rel, err := filepath.Rel(entryDir, file.Path())
		if err != nil {
			return nil, fmt.Errorf("failed to resolve import path for %s: %w", file.FullPath(), err)
		}
		entries = append(entries, models.DocEntry{
			File:        file,
			ImportAlias: fmt.Sprintf("Doc%d", i),
			ImportPath:  shared.EnsureRelative(filepath.ToSlash(rel)),
			DisplayName: file.Name,
		})
	}
	return entries, nil
}

// Synthesize renders the unformatted entry module source.
func Synthesize(entries []models.DocEntry, params TemplateParams) (string, error) {
	data := struct {
		WrapperPath string
		Entries     []models.DocEntry
	}{
		WrapperPath: filepath.ToSlash(params.WrapperPath),
		Entries:     entries,
	}

	out, err := template_engine.NewTemplateEngine().Render(template_engine.TEMPLATES.DOCS.ENTRY_TSX, data)
	if err != nil {
		return "", fmt.Errorf("failed to render docs entry: %w", err)
	}
	return out, nil
}

type Synthesizer struct {
	EntryPath string
	Params    TemplateParams
	Formatter formatter.Formatter
}

func NewSynthesizer(entryPath string, params TemplateParams, f formatter.Formatter) *Synthesizer {
	return &Synthesizer{EntryPath: entryPath, Params: params, Formatter: f}
}

// Generate returns the formatted entry module for files.
func (s *Synthesizer) Generate(ctx context.Context, files []models.FileDescriptor) (string, error) {
	entries, err := NewEntries(files, s.EntryPath)
	if err != nil {
		return "", err
	}

	source, err := Synthesize(entries, s.Params)
	if err != nil {
		return "", err
	}

	formatted, err := s.Formatter.Format(ctx, source, filepath.Base(s.EntryPath))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	return formatted, nil
}

// Write regenerates the entry module and replaces it in place. Nothing is
// written when generation fails.
func (s *Synthesizer) Write(ctx context.Context, files []models.FileDescriptor) error {
	content, err := s.Generate(ctx, files)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(s.EntryPath, []byte(content)); err != nil {
		return fmt.Errorf("failed to write docs entry %s: %w", s.EntryPath, err)
	}

	logger.Debug("Wrote docs entry %s with %d docs", s.EntryPath, len(files))
	return nil
}

// writeFileAtomic renames a sibling temp file over path so readers never see
// a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
