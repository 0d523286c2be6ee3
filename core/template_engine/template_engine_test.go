package template_engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTemplateRefsExist(t *testing.T) {
	t.Parallel()

	engine := NewTemplateEngine()
	for _, ref := range []TemplateRef{
		TEMPLATES.DOCS.ENTRY_TSX,
		TEMPLATES.DOCS.WRAPPER,
		TEMPLATES.DOCS.INDEX_HTML,
		TEMPLATES.DLL.ENTRY_JS,
		TEMPLATES.INIT,
	} {
		if err := engine.ValidateTemplate(ref); err != nil {
			t.Errorf("ValidateTemplate(%s) error: %v", ref.Path, err)
		}
	}
}

func TestRenderDllEntry(t *testing.T) {
	t.Parallel()

	out, err := NewTemplateEngine().Render(TEMPLATES.DLL.ENTRY_JS, struct {
		GlobalName string
		Modules    []string
	}{GlobalName: "forgeDll", Modules: []string{"react", "react-dom"}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	for _, want := range []string{
		`window["forgeDll"] = {`,
		`"react": require("react"),`,
		`"react-dom": require("react-dom"),`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderRejectsDirectory(t *testing.T) {
	t.Parallel()

	if _, err := NewTemplateEngine().Render(TEMPLATES.INIT, nil); err == nil {
		t.Fatal("expected error rendering a directory reference")
	}
}

func TestGenerateFolder(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	err := NewTemplateEngine().GenerateFolder(TEMPLATES.INIT, out, map[string]string{"ProjectName": "handbook"})
	if err != nil {
		t.Fatalf("GenerateFolder() error: %v", err)
	}

	cfg, err := os.ReadFile(filepath.Join(out, "forge.yaml"))
	if err != nil {
		t.Fatalf("forge.yaml not generated: %v", err)
	}
	if !strings.Contains(string(cfg), "project_name: handbook") {
		t.Errorf("forge.yaml not rendered:\n%s", cfg)
	}

	for _, rel := range []string{"package.json", "tsconfig.json", ".gitignore", filepath.Join("docs", "introduction.tsx")} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "forge.yaml.tmpl")); !os.IsNotExist(err) {
		t.Error("template suffix should be stripped")
	}

	missing := TemplateRef{Path: "does-not-exist", IsDir: true}
	if err := NewTemplateEngine().GenerateFolder(missing, t.TempDir(), nil); err == nil {
		t.Error("GenerateFolder() on a missing template should fail")
	}
}

func TestRenderFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte(`<title>{{ .Title | upper }}</title>`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := NewTemplateEngine().RenderFile(path, struct{ Title string }{"docs"})
	if err != nil {
		t.Fatalf("RenderFile() error: %v", err)
	}
	if out != "<title>DOCS</title>" {
		t.Errorf("RenderFile() = %q", out)
	}
}
