package serve

import (
	"context"
	"fmt"

	"github.com/tristendillon/forge/core/analysis"
	"github.com/tristendillon/forge/core/config"
	"github.com/tristendillon/forge/core/dll"
	"github.com/tristendillon/forge/core/docs"
	"github.com/tristendillon/forge/core/formatter"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/models"
	"github.com/tristendillon/forge/core/port"
	"github.com/tristendillon/forge/core/project"
	"github.com/tristendillon/forge/core/server"
	"github.com/tristendillon/forge/core/walker"
	"github.com/tristendillon/forge/core/watcher"
)

// NewAnalyzer returns an analyzer with the docs hook installed.
func NewAnalyzer(root string, cfg *config.Config) *analysis.Analyzer {
	proj := project.New(root, cfg)
	exclude := append([]string{cfg.Temp.Dir}, cfg.Walk.Exclude...)

	a := analysis.NewAnalyzer(root, walker.NewProjectWalker(exclude...))
	synth := docs.NewSynthesizer(
		cfg.EntryPath(root),
		docs.TemplateParams{WrapperPath: proj.WrapperPath()},
		formatter.New(cfg, root),
	)
	docs.Register(a, synth, docs.Options{
		RootPath:  root,
		DocsDir:   cfg.Docs.Dir,
		Extension: cfg.Docs.Extension,
	})
	return a
}

// New wires the real collaborators for the project at root.
func New(root string, cfg *config.Config) *Orchestrator {
	proj := project.New(root, cfg)
	analyzer := NewAnalyzer(root, cfg)

	analyse := func(ctx context.Context) error {
		results, err := analyzer.Analyse(ctx)
		if err != nil {
			return err
		}
		if res, ok := results[docs.HookName].(models.AnalysisResult); ok {
			logger.Debug("Found %d doc files", len(res.Docs))
		}
		return nil
	}

	steps := Steps{
		Lint:               proj.Lint,
		EnsureProjectFiles: proj.EnsureProjectFiles,
		CheckProjectFiles:  proj.CheckProjectFiles,
		Analyse:            analyse,
		BundleDlls: func(ctx context.Context) (models.DllManifest, error) {
			res, err := dll.Bundle(ctx, dll.Options{
				Root:       root,
				Modules:    cfg.Dll.Modules,
				OutDir:     cfg.DllOutDir(root),
				GlobalName: cfg.Dll.GlobalName,
			})
			if err != nil {
				return models.DllManifest{}, err
			}
			return res.Manifest, nil
		},
		StartWatch: func(ctx context.Context) error {
			fw, err := watcher.NewFileWatcher(proj.DocsPath(), cfg.Watch.Ignore)
			if err != nil {
				return err
			}
			fw.FileWatcher.AddOnChangeFunc(func(ctx context.Context, event models.WatchEvent) error {
				logger.Info("Docs changed (%s %s), regenerating entry", event.Kind, event.Path)
				return analyse(ctx)
			})
			fw.FileWatcher.AddOnCloseFunc(func() error {
				logger.Debug("Stopped watching %s", proj.DocsPath())
				return nil
			})
			if err := fw.Start(ctx); err != nil {
				return fmt.Errorf("failed to watch %s: %w", proj.DocsPath(), err)
			}
			return nil
		},
		FreePort: func() (int, error) {
			return port.Free(cfg.Server.Host)
		},
		LaunchServer: func(ctx context.Context, opts server.LaunchOptions) (Server, error) {
			return server.Launch(ctx, opts)
		},
	}

	optionalPath := func(p string) string {
		if p == "" {
			return ""
		}
		return proj.Resolve(p)
	}
	certFile, keyFile := "", ""
	if cfg.Server.UseHTTPS {
		certFile, keyFile = optionalPath(cfg.Server.CertFile), optionalPath(cfg.Server.KeyFile)
	}

	return &Orchestrator{
		Steps: steps,
		Options: Options{
			Root:             root,
			Title:            cfg.ProjectName,
			EntryPath:        cfg.EntryPath(root),
			ServeDir:         cfg.ServeDir(root),
			Host:             cfg.Server.Host,
			PublicPath:       cfg.Server.PublicPath,
			HTMLTemplatePath: optionalPath(cfg.Server.HTMLTemplate),
			UseHTTPS:         cfg.Server.UseHTTPS,
			CertFile:         certFile,
			KeyFile:          keyFile,
			DllStaticPath:    cfg.Dll.StaticPath,
		},
	}
}
