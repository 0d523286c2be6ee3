package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tristendillon/forge/core/config"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/shell"
	te "github.com/tristendillon/forge/core/template_engine"
)

const wrapperFile = "docs-wrapper.tsx"

type Project struct {
	Root   string
	Config *config.Config
}

func New(root string, cfg *config.Config) *Project {
	return &Project{Root: root, Config: cfg}
}

// Resolve makes a config path absolute against the project root.
func (p *Project) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, rel)
}

func (p *Project) DocsPath() string {
	return p.Resolve(p.Config.Docs.Dir)
}

// WrapperPath is the renderer module the generated entry imports: the
// configured one, or the placeholder materialized in the temp directory.
func (p *Project) WrapperPath() string {
	if p.Config.Docs.Wrapper != "" {
		return p.Resolve(p.Config.Docs.Wrapper)
	}
	return p.Config.TempPath(p.Root, wrapperFile)
}

// Lint runs the configured lint command in the project root. No command
// means nothing to check.
func (p *Project) Lint(ctx context.Context) error {
	if p.Config.Lint.Command == "" {
		logger.Debug("No lint command configured, skipping")
		return nil
	}

	logger.Debug("Running lint: %s", p.Config.Lint.Command)
	err := shell.Run(ctx, shell.Options{
		Dir:    p.Root,
		Script: p.Config.Lint.Command,
		Stdout: logger.Writer(),
		Stderr: logger.Writer(),
	})
	if err != nil {
		return fmt.Errorf("failed to lint project: %w", err)
	}
	return nil
}

// EnsureProjectFiles creates whatever docs mode needs and the user has not
// provided yet. Existing user files are never touched, and no forge.yaml is
// written when the config file was given explicitly.
func (p *Project) EnsureProjectFiles() error {
	configPath := filepath.Join(p.Root, config.FileName)
	if override := config.ConfigFileOverride(); override != "" {
		logger.Debug("Using config file %s, not creating %s", override, configPath)
	} else if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		data, err := p.Config.Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(configPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", configPath, err)
		}
		logger.Info("Created %s", configPath)
	}

	for _, dir := range []string{p.DocsPath(), p.Config.TempPath(p.Root)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if p.Config.Docs.Wrapper == "" {
		if err := p.writeWrapper(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Project) writeWrapper() error {
	content, err := fs.ReadFile(te.TemplateFS, "templates/"+te.TEMPLATES.DOCS.WRAPPER.Path)
	if err != nil {
		return fmt.Errorf("failed to read docs wrapper template: %w", err)
	}

	path := p.WrapperPath()
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debug("Wrote docs wrapper to %s", path)
	return nil
}

// CheckProjectFiles verifies every file the server will read. All problems
// are reported together.
func (p *Project) CheckProjectFiles() error {
	var errs []error

	if stat, err := os.Stat(p.DocsPath()); err != nil {
		errs = append(errs, fmt.Errorf("docs directory %s: %w", p.DocsPath(), err))
	} else if !stat.IsDir() {
		errs = append(errs, fmt.Errorf("docs path %s is not a directory", p.DocsPath()))
	}

	requireFile := func(label, rel string) {
		path := p.Resolve(rel)
		stat, err := os.Stat(path)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s %s: %w", label, path, err))
		case stat.IsDir():
			errs = append(errs, fmt.Errorf("%s %s is a directory", label, path))
		}
	}

	requireFile("docs wrapper", p.WrapperPath())
	if p.Config.Server.HTMLTemplate != "" {
		requireFile("html template", p.Config.Server.HTMLTemplate)
	}
	if p.Config.Server.UseHTTPS {
		requireFile("certificate", p.Config.Server.CertFile)
		requireFile("key", p.Config.Server.KeyFile)
	}

	if len(errs) > 0 {
		return fmt.Errorf("project check failed: %w", errors.Join(errs...))
	}
	return nil
}
