package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tristendillon/forge/core/config"
	"github.com/tristendillon/forge/core/shell"
)

func newProject(t *testing.T) *Project {
	t.Helper()
	return New(t.TempDir(), config.Default())
}

func TestLintSkipsWithoutCommand(t *testing.T) {
	t.Parallel()

	if err := newProject(t).Lint(context.Background()); err != nil {
		t.Errorf("Lint() error: %v", err)
	}
}

func TestLint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		command  string
		wantCode int
	}{
		{"passes", "true", 0},
		{"fails", "exit 3", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := newProject(t)
			p.Config.Lint.Command = tt.command

			err := p.Lint(context.Background())
			if tt.wantCode == 0 {
				if err != nil {
					t.Errorf("Lint() error: %v", err)
				}
				return
			}
			var exitErr *shell.ExitError
			if !errors.As(err, &exitErr) || exitErr.Code != tt.wantCode {
				t.Errorf("Lint() error = %v, want exit code %d", err, tt.wantCode)
			}
		})
	}
}

func TestLintRunsInRoot(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	p.Config.Lint.Command = "touch linted"
	if err := p.Lint(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(p.Root, "linted")); err != nil {
		t.Errorf("lint did not run in project root: %v", err)
	}
}

func TestEnsureProjectFiles(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	if err := p.EnsureProjectFiles(); err != nil {
		t.Fatalf("EnsureProjectFiles() error: %v", err)
	}

	for _, path := range []string{
		filepath.Join(p.Root, config.FileName),
		filepath.Join(p.Root, "docs"),
		filepath.Join(p.Root, ".temp"),
		p.WrapperPath(),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}

	loaded, err := config.Load(p.Root)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if loaded.Docs.Dir != "docs" || loaded.Dll.GlobalName != "forgeDll" {
		t.Errorf("generated config = %+v", loaded)
	}

	wrapper, _ := os.ReadFile(p.WrapperPath())
	if !strings.Contains(string(wrapper), "export default class DocsWrapper") {
		t.Errorf("unexpected wrapper:\n%s", wrapper)
	}

	if err := p.CheckProjectFiles(); err != nil {
		t.Errorf("CheckProjectFiles() after ensure: %v", err)
	}
}

func TestEnsureKeepsUserConfig(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	configPath := filepath.Join(p.Root, config.FileName)
	if err := os.WriteFile(configPath, []byte("project_name: mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := p.EnsureProjectFiles(); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(configPath)
	if string(got) != "project_name: mine\n" {
		t.Errorf("user config overwritten: %q", got)
	}
}

// Not parallel: the config file override is process-wide.
func TestEnsureSkipsConfigWithOverride(t *testing.T) {
	p := newProject(t)
	override := filepath.Join(t.TempDir(), "custom.yaml")
	config.SetConfigFileOverride(override)
	t.Cleanup(func() { config.SetConfigFileOverride("") })

	if err := p.EnsureProjectFiles(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(p.Root, config.FileName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("forge.yaml written despite override: %v", err)
	}
	if _, err := os.Stat(override); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("override file should not be created: %v", err)
	}
	if _, err := os.Stat(p.DocsPath()); err != nil {
		t.Errorf("docs dir not created: %v", err)
	}
}

func TestCustomWrapperIsNotMaterialized(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	p.Config.Docs.Wrapper = "src/Wrapper.tsx"

	if err := p.EnsureProjectFiles(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(p.Root, ".temp", wrapperFile)); err == nil {
		t.Error("placeholder written despite configured wrapper")
	}

	err := p.CheckProjectFiles()
	if err == nil || !strings.Contains(err.Error(), "docs wrapper") {
		t.Errorf("CheckProjectFiles() = %v, want missing wrapper", err)
	}
}

func TestCheckProjectFiles(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	p.Config.Server.UseHTTPS = true
	p.Config.Server.CertFile = "cert.pem"
	p.Config.Server.KeyFile = "key.pem"
	p.Config.Server.HTMLTemplate = "index.html"

	err := p.CheckProjectFiles()
	if err == nil {
		t.Fatal("expected error for empty project")
	}
	for _, want := range []string{"docs directory", "docs wrapper", "html template", "certificate", "key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}

	if err := p.EnsureProjectFiles(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"cert.pem", "key.pem", "index.html"} {
		os.WriteFile(filepath.Join(p.Root, name), []byte("x"), 0o644)
	}
	if err := p.CheckProjectFiles(); err != nil {
		t.Errorf("CheckProjectFiles() error: %v", err)
	}
}

func TestCheckDocsPathIsFile(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	if err := p.EnsureProjectFiles(); err != nil {
		t.Fatal(err)
	}
	os.Remove(p.DocsPath())
	os.WriteFile(p.DocsPath(), []byte("x"), 0o644)

	err := p.CheckProjectFiles()
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("CheckProjectFiles() = %v", err)
	}
}
