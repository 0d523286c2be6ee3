package serve

import (
	"context"
	"fmt"

	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/models"
	"github.com/tristendillon/forge/core/pipeline"
	"github.com/tristendillon/forge/core/server"
)

const (
	StageLint    = "lint"
	StageProject = "project files"
	StageAnalyse = "analyse"
	StageBundle  = "bundle dlls"
	StageWatch   = "watch"
	StagePort    = "port"
	StageLaunch  = "launch server"
	StageServe   = "serve"
)

// StageError names the startup stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stage(name string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: name, Err: err}
}

type Server interface {
	Wait(ctx context.Context) error
}

// Steps are the collaborators the orchestrator drives, in run order.
type Steps struct {
	Lint               func(ctx context.Context) error
	EnsureProjectFiles func() error
	CheckProjectFiles  func() error
	Analyse            func(ctx context.Context) error
	BundleDlls         func(ctx context.Context) (models.DllManifest, error)
	// StartWatch must return once watching has begun.
	StartWatch   func(ctx context.Context) error
	FreePort     func() (int, error)
	LaunchServer func(ctx context.Context, opts server.LaunchOptions) (Server, error)
}

type Options struct {
	Root             string
	Title            string
	EntryPath        string
	ServeDir         string
	Host             string
	PublicPath       string
	HTMLTemplatePath string
	UseHTTPS         bool
	CertFile         string
	KeyFile          string
	DllStaticPath    string
}

type Orchestrator struct {
	Steps   Steps
	Options Options
}

// Run brings docs mode up one stage at a time and then serves until ctx is
// cancelled. The first failing stage aborts everything after it.
func (o *Orchestrator) Run(ctx context.Context) error {
	s := o.Steps

	if err := stage(StageLint, s.Lint(ctx)); err != nil {
		return err
	}

	if err := stage(StageProject, s.EnsureProjectFiles()); err != nil {
		return err
	}
	if err := stage(StageProject, s.CheckProjectFiles()); err != nil {
		return err
	}

	err := logger.Progress("Analyse project", func() error {
		return s.Analyse(ctx)
	})
	if err := stage(StageAnalyse, err); err != nil {
		return err
	}

	var manifest models.DllManifest
	err = logger.Progress("Bundle dependencies", func() error {
		var err error
		manifest, err = s.BundleDlls(ctx)
		return err
	})
	if err := stage(StageBundle, err); err != nil {
		return err
	}

	if err := stage(StageWatch, s.StartWatch(ctx)); err != nil {
		return err
	}

	port, err := s.FreePort()
	if err := stage(StagePort, err); err != nil {
		return err
	}

	srv, err := s.LaunchServer(ctx, o.LaunchOptions(port, manifest))
	if err := stage(StageLaunch, err); err != nil {
		return err
	}

	return stage(StageServe, srv.Wait(ctx))
}

// LaunchOptions builds the server options for port, wiring the prebuilt
// bundle in front of the entry.
func (o *Orchestrator) LaunchOptions(port int, manifest models.DllManifest) server.LaunchOptions {
	opts := o.Options
	return server.LaunchOptions{
		Root:             opts.Root,
		Title:            opts.Title,
		PublicPath:       opts.PublicPath,
		EntryPath:        opts.EntryPath,
		Port:             port,
		Host:             opts.Host,
		HTMLTemplatePath: opts.HTMLTemplatePath,
		ServeDir:         opts.ServeDir,
		CertFile:         opts.CertFile,
		KeyFile:          opts.KeyFile,
		PipeConfig:       PipeConfig(opts, port, manifest),
	}
}

func PipeConfig(opts Options, port int, manifest models.DllManifest) pipeline.Transform {
	p := pipeline.New()
	if manifest.File == "" {
		return p.Transform()
	}

	dllURL := server.DllURL(opts.UseHTTPS, opts.Host, port, opts.DllStaticPath, manifest.File)
	head, tail := server.DllLoaderScript(dllURL)
	logger.Debug("Dll loader url: %s", dllURL)

	return p.
		Pipe(pipeline.DevelopmentOnly(pipeline.DllReference(manifest))).
		Pipe(pipeline.WrapContent(head, tail)).
		Transform()
}
