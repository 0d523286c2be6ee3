package docs

import (
	"context"

	"github.com/tristendillon/forge/core/analysis"
	"github.com/tristendillon/forge/core/models"
)

const HookName = "projectAnalyseDocs"

type Options struct {
	RootPath  string
	DocsDir   string
	Extension string
}

// Register installs the docs hook: every analysis pass classifies the listing,
// rewrites the entry module and hands the doc files to other listeners.
func Register(a *analysis.Analyzer, synth *Synthesizer, opts Options) {
	a.OnAnalyse(HookName, func(ctx context.Context, files []models.FileDescriptor) (any, error) {
		docFiles := Classify(files, opts.RootPath, opts.DocsDir, opts.Extension)

		result := models.AnalysisResult{Docs: make([]models.DocFile, 0, len(docFiles))}
		for _, file := range docFiles {
			result.Docs = append(result.Docs, models.DocFile{File: file})
		}

		if err := synth.Write(ctx, docFiles); err != nil {
			return nil, err
		}
		return result, nil
	})
}
