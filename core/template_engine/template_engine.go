package template_engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"text/template"

	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/shared"
)

type TemplateRef struct {
	Path  string
	IsDir bool
}

func (tr TemplateRef) IsFile() bool {
	return !tr.IsDir
}

func (tr TemplateRef) IsDirectory() bool {
	return tr.IsDir
}

type TemplateEngine struct {
	funcMap template.FuncMap
}

// jsString renders s as a double quoted JavaScript string literal.
func jsString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func getDefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"title":     shared.ToTitle,
		"trim":      strings.TrimSpace,
		"replace":   strings.ReplaceAll,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"join":      strings.Join,
		"toSlash":   filepath.ToSlash,
		"jsString":  jsString,

		"default": func(def, val interface{}) interface{} {
			if val == nil || val == "" {
				return def
			}
			return val
		},
		"add": func(a, b int) int { return a + b },
		"len": func(v interface{}) int { return reflect.ValueOf(v).Len() },
	}
}

func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap: getDefaultFuncMap(),
	}
}

func (te *TemplateEngine) parse(name string, content []byte) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(te.funcMap).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Render executes an embedded template and returns the output.
func (te *TemplateEngine) Render(templateRef TemplateRef, data interface{}) (string, error) {
	if templateRef.IsDirectory() {
		return "", fmt.Errorf("cannot render directory reference: %s", templateRef.Path)
	}

	content, err := fs.ReadFile(TemplateFS, filepath.ToSlash(filepath.Join("templates", templateRef.Path)))
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", templateRef.Path, err)
	}

	return te.render(filepath.Base(templateRef.Path), content, data)
}

// RenderFile executes a template read from disk, used for user supplied
// overrides of the embedded templates.
func (te *TemplateEngine) RenderFile(path string, data interface{}) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return te.render(filepath.Base(path), content, data)
}

func (te *TemplateEngine) render(name string, content []byte, data interface{}) (string, error) {
	tmpl, err := te.parse(name, content)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (te *TemplateEngine) GenerateFolder(templateRef TemplateRef, outputDir string, data interface{}) error {
	if templateRef.IsFile() {
		return fmt.Errorf("cannot generate folder from file reference: %s", templateRef.Path)
	}
	if err := te.ValidateTemplate(templateRef); err != nil {
		return err
	}

	templateDir := filepath.ToSlash(filepath.Join("templates", templateRef.Path))
	logger.Debug("Generating folder from template reference: %s", templateDir)

	return fs.WalkDir(TemplateFS, templateDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == templateDir {
			return nil
		}

		relPath := strings.TrimPrefix(path, templateDir+"/")
		outputPath := filepath.Join(outputDir, filepath.FromSlash(relPath))

		if d.IsDir() {
			return os.MkdirAll(outputPath, os.ModePerm)
		}

		logger.Debug("Generating file from path: %s", path)
		return te.generateFileFromPath(path, outputPath, data)
	})
}

// generateFileFromPath copies plain files and executes .tmpl files, dropping
// the suffix from the output name.
func (te *TemplateEngine) generateFileFromPath(templatePath, outputPath string, data interface{}) error {
	content, err := fs.ReadFile(TemplateFS, templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template file %s: %w", templatePath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if !strings.HasSuffix(templatePath, ".tmpl") {
		return os.WriteFile(outputPath, content, 0644)
	}

	outputPath = strings.TrimSuffix(outputPath, ".tmpl")

	out, err := te.render(filepath.Base(templatePath), content, data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outputPath, err)
	}

	return nil
}

func (te *TemplateEngine) ValidateTemplate(templateRef TemplateRef) error {
	templatePath := filepath.ToSlash(filepath.Join("templates", templateRef.Path))

	info, err := fs.Stat(TemplateFS, templatePath)
	if err != nil {
		return fmt.Errorf("template not found: %s", templateRef.Path)
	}

	if info.IsDir() != templateRef.IsDirectory() {
		return fmt.Errorf("template reference type mismatch for %s: expected dir=%t, got dir=%t",
			templateRef.Path, templateRef.IsDirectory(), info.IsDir())
	}

	return nil
}
