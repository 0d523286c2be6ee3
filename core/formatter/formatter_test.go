package formatter

import (
	"context"
	"strings"
	"testing"

	"github.com/tristendillon/forge/core/config"
)

func TestEsbuildFormatterKeepsImportsAndJSX(t *testing.T) {
	t.Parallel()

	src := `import * as React from 'react'
import * as Doc0 from '../docs/a'
import * as Doc1 from '../docs/b'
const list = [{name: "a", element: Doc0}, {name: "b", element: Doc1}]
class Docs extends React.PureComponent { public render() { return <div data-docs={list} /> } }
`
	out, err := (&EsbuildFormatter{}).Format(context.Background(), src, "docs-entry.tsx")
	if err != nil {
		t.Fatalf("Format() error: %v", err)
	}

	a := strings.Index(out, `import * as Doc0 from "../docs/a";`)
	b := strings.Index(out, `import * as Doc1 from "../docs/b";`)
	if a < 0 || b < 0 || a > b {
		t.Fatalf("imports missing or reordered:\n%s", out)
	}
	if !strings.Contains(out, "<div") {
		t.Errorf("JSX should be preserved:\n%s", out)
	}

	again, err := (&EsbuildFormatter{}).Format(context.Background(), src, "docs-entry.tsx")
	if err != nil {
		t.Fatal(err)
	}
	if again != out {
		t.Error("formatting is not deterministic")
	}
}

func TestEsbuildFormatterRejectsMalformedSource(t *testing.T) {
	t.Parallel()

	_, err := (&EsbuildFormatter{}).Format(context.Background(), "const DocComponents = [{name: }", "docs-entry.tsx")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "docs-entry.tsx") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestCommandFormatter(t *testing.T) {
	t.Parallel()

	echo := &CommandFormatter{Command: `while read -r line; do echo "$line"; done`, Dir: t.TempDir()}
	out, err := echo.Format(context.Background(), "const a = 1\n", "docs-entry.tsx")
	if err != nil {
		t.Fatalf("Format() error: %v", err)
	}
	if out != "const a = 1\n" {
		t.Errorf("Format() = %q", out)
	}

	failing := &CommandFormatter{Command: `echo "bad syntax" >&2; exit 2`}
	if _, err := failing.Format(context.Background(), "x", "docs-entry.tsx"); err == nil || !strings.Contains(err.Error(), "bad syntax") {
		t.Errorf("Format() error = %v, want stderr in message", err)
	}
}

func TestNewSelectsFormatter(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	if _, ok := New(cfg, "/project").(*EsbuildFormatter); !ok {
		t.Error("default config should use esbuild")
	}

	cfg.Format.Command = "npx prettier --stdin-filepath docs-entry.tsx"
	if f, ok := New(cfg, "/project").(*CommandFormatter); !ok || f.Dir != "/project" {
		t.Errorf("command config should use CommandFormatter, got %#v", f)
	}
}
