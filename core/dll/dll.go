package dll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tristendillon/forge/core/cache"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/models"
	te "github.com/tristendillon/forge/core/template_engine"
)

const ManifestFile = "manifest.json"

// Files whose content decides whether the bundle must be rebuilt.
var fingerprintFiles = []string{
	"package.json",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
}

type Options struct {
	Root       string
	Modules    []string
	OutDir     string
	GlobalName string
	// Cache defaults to the process-wide content cache.
	Cache *cache.ContentCache
}

type Result struct {
	Manifest     models.DllManifest
	ManifestPath string
	BundlePath   string
	// Skipped is set when an up to date bundle was reused.
	Skipped bool
}

// Bundle prebuilds the vendor modules into a single script that publishes
// them on window[GlobalName]. The build is skipped while the inputs keep
// the fingerprint recorded in the existing manifest.
func Bundle(ctx context.Context, opts Options) (*Result, error) {
	if opts.GlobalName == "" {
		return nil, fmt.Errorf("dll global name is required")
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("dll output directory is required")
	}
	cc := opts.Cache
	if cc == nil {
		cc = cache.GetContentCache()
	}

	paths := make([]string, len(fingerprintFiles))
	for i, name := range fingerprintFiles {
		paths[i] = filepath.Join(opts.Root, name)
	}
	hash, err := cc.Fingerprint(paths, append([]string{opts.GlobalName}, opts.Modules...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint dll inputs: %w", err)
	}
	stats := cc.GetStats()
	logger.Debug("Dll fingerprint %s (%d files, %d hits, %d misses, %.0f%% hit rate)",
		hash[:8], stats.TotalFiles, stats.CacheHits, stats.CacheMisses, stats.HitRate)

	manifest := models.DllManifest{
		Global:  opts.GlobalName,
		Modules: opts.Modules,
		File:    opts.GlobalName + ".dll.js",
		Hash:    hash,
	}
	result := &Result{
		Manifest:     manifest,
		ManifestPath: filepath.Join(opts.OutDir, ManifestFile),
		BundlePath:   filepath.Join(opts.OutDir, manifest.File),
	}

	if existing, err := ReadManifest(result.ManifestPath); err == nil && existing.Hash == hash {
		if _, err := os.Stat(result.BundlePath); err == nil {
			logger.Debug("Dll bundle up to date: %s", result.BundlePath)
			result.Skipped = true
			return result, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := EntrySource(opts.GlobalName, opts.Modules)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dll directory %s: %w", opts.OutDir, err)
	}

	logger.Debug("Building dll %s for %v", result.BundlePath, opts.Modules)
	build := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   source,
			ResolveDir: opts.Root,
			Sourcefile: "forge-dll-entry.js",
			Loader:     api.LoaderJS,
		},
		Outfile:       result.BundlePath,
		AbsWorkingDir: opts.Root,
		Bundle:        true,
		Write:         true,
		Format:        api.FormatIIFE,
		Platform:      api.PlatformBrowser,
		Target:        api.ES2017,
		Define:        map[string]string{"process.env.NODE_ENV": `"development"`},
		LogLevel:      api.LogLevelSilent,
	})
	if len(build.Errors) > 0 {
		return nil, fmt.Errorf("failed to bundle dll: %s", messages(build.Errors))
	}

	if err := WriteManifest(result.ManifestPath, manifest); err != nil {
		return nil, err
	}
	return result, nil
}

// EntrySource renders the script that requires every module and publishes
// it on the global.
func EntrySource(global string, modules []string) (string, error) {
	engine := te.NewTemplateEngine()
	src, err := engine.Render(te.TEMPLATES.DLL.ENTRY_JS, map[string]any{
		"GlobalName": global,
		"Modules":    modules,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render dll entry: %w", err)
	}
	return src, nil
}

func ReadManifest(path string) (models.DllManifest, error) {
	var m models.DllManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse dll manifest %s: %w", path, err)
	}
	return m, nil
}

func WriteManifest(path string, m models.DllManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dll manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+ManifestFile+".*")
	if err != nil {
		return fmt.Errorf("failed to write dll manifest: %w", err)
	}
	_, werr := tmp.Write(append(data, '\n'))
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write dll manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write dll manifest: %w", err)
	}
	return nil
}

func messages(msgs []api.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			parts = append(parts, fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "; ")
}
