package logger

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestDebugRequiresVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetWriterForAll(&buf)
	t.Cleanup(func() {
		SetWriterForAll(os.Stdout)
		SetVerbose(false)
	})

	SetVerbose(false)
	Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no debug output, got %q", buf.String())
	}

	SetVerbose(true)
	Debug("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}

func TestAddWriterForAllDuplicatesOutput(t *testing.T) {
	var first, second bytes.Buffer
	SetWriterForAll(&first)
	AddWriterForAll(&second)
	t.Cleanup(func() { SetWriterForAll(os.Stdout) })

	Info("hello %s", "docs")
	Error("broken %s", "entry")

	for name, buf := range map[string]*bytes.Buffer{"first": &first, "second": &second} {
		out := buf.String()
		if !strings.Contains(out, "hello docs") || !strings.Contains(out, "broken entry") {
			t.Errorf("%s writer missing messages: %q", name, out)
		}
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	SetWriterForAll(&buf)
	t.Cleanup(func() { SetWriterForAll(os.Stdout) })

	if err := Progress("Analyse project", func() error { return nil }); err != nil {
		t.Fatalf("Progress() error: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "✓") || !strings.Contains(out, "Analyse project") {
		t.Errorf("expected success line, got %q", buf.String())
	}

	buf.Reset()
	want := errors.New("boom")
	if err := Progress("Bundle dlls", func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("Progress() error = %v, want %v", err, want)
	}
	if out := buf.String(); !strings.Contains(out, "✗") || !strings.Contains(out, "Bundle dlls") {
		t.Errorf("expected failure line, got %q", buf.String())
	}
}
