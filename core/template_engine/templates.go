package template_engine

import "embed"

//go:embed all:templates
var TemplateFS embed.FS

var TEMPLATES = struct {
	DOCS struct {
		ENTRY_TSX  TemplateRef
		WRAPPER    TemplateRef
		INDEX_HTML TemplateRef
	}
	DLL struct {
		ENTRY_JS TemplateRef
	}
	INIT TemplateRef
}{
	DOCS: struct {
		ENTRY_TSX  TemplateRef
		WRAPPER    TemplateRef
		INDEX_HTML TemplateRef
	}{
		ENTRY_TSX:  TemplateRef{Path: "docs/entry.tsx.tmpl"},
		WRAPPER:    TemplateRef{Path: "docs/wrapper.tsx"},
		INDEX_HTML: TemplateRef{Path: "docs/index.html.tmpl"},
	},
	DLL: struct {
		ENTRY_JS TemplateRef
	}{
		ENTRY_JS: TemplateRef{Path: "dll/entry.js.tmpl"},
	},
	INIT: TemplateRef{Path: "init", IsDir: true},
}
