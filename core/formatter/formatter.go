package formatter

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tristendillon/forge/core/config"
	"github.com/tristendillon/forge/core/shell"
)

// Formatter turns generated source into its canonical form. A parse failure
// is an error; callers must not persist the input in that case.
type Formatter interface {
	Format(ctx context.Context, source, filename string) (string, error)
}

func New(cfg *config.Config, root string) Formatter {
	if cfg.Format.Command != "" {
		return &CommandFormatter{Command: cfg.Format.Command, Dir: root}
	}
	return &EsbuildFormatter{}
}

// EsbuildFormatter reprints TSX through esbuild's parser, keeping JSX and
// every import intact. No output format is set, so mixed import/require
// modules are printed as written instead of being wrapped.
type EsbuildFormatter struct{}

var loaders = map[string]api.Loader{
	".tsx": api.LoaderTSX,
	".ts":  api.LoaderTS,
	".jsx": api.LoaderJSX,
	".js":  api.LoaderJS,
}

func (f *EsbuildFormatter) Format(ctx context.Context, source, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	loader, ok := loaders[filepath.Ext(filename)]
	if !ok {
		loader = api.LoaderTSX
	}

	result := api.Transform(source, api.TransformOptions{
		Loader:      loader,
		Sourcefile:  filename,
		JSX:         api.JSXPreserve,
		Target:      api.ESNext,
		LogLevel:    api.LogLevelSilent,
		TsconfigRaw: `{"compilerOptions":{"verbatimModuleSyntax":true}}`,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("failed to format %s: %s", filename, formatMessages(result.Errors))
	}
	return string(result.Code), nil
}

func formatMessages(msgs []api.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			parts = append(parts, fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "; ")
}

// CommandFormatter pipes source through an external formatter such as
// "npx prettier --stdin-filepath docs-entry.tsx".
type CommandFormatter struct {
	Command string
	Dir     string
}

func (f *CommandFormatter) Format(ctx context.Context, source, filename string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := shell.Run(ctx, shell.Options{
		Dir:    f.Dir,
		Script: f.Command,
		Env:    []string{"FORGE_FORMAT_FILE=" + filename},
		Stdin:  strings.NewReader(source),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format %s: %w: %s", filename, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return "", fmt.Errorf("failed to format %s: formatter produced no output", filename)
	}
	return stdout.String(), nil
}
