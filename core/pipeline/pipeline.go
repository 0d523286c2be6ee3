package pipeline

import (
	"github.com/evanw/esbuild/pkg/api"
)

// BundlerConfig is the build description that transforms edit before it is
// handed to esbuild.
type BundlerConfig struct {
	EntryPoints   []string
	Outdir        string
	PublicPath    string
	AbsWorkingDir string
	Banner        string
	Footer        string
	External      []string
	Define        map[string]string
	Loader        map[string]api.Loader
	Plugins       []api.Plugin
	Sourcemap     bool
	Development   bool
}

// Transform returns the edited config. Returning nil leaves the input as is.
type Transform func(cfg *BundlerConfig) *BundlerConfig

type Pipeline struct {
	transforms []Transform
}

func New() *Pipeline {
	return &Pipeline{}
}

// Pipe appends t; transforms run in the order they were piped.
func (p *Pipeline) Pipe(t Transform) *Pipeline {
	if t != nil {
		p.transforms = append(p.transforms, t)
	}
	return p
}

func (p *Pipeline) Len() int {
	return len(p.transforms)
}

func (p *Pipeline) Apply(cfg *BundlerConfig) *BundlerConfig {
	for _, t := range p.transforms {
		if next := t(cfg); next != nil {
			cfg = next
		}
	}
	return cfg
}

// Transform exposes the whole pipeline as a single step.
func (p *Pipeline) Transform() Transform {
	return p.Apply
}

// DevelopmentOnly skips t for production configs.
func DevelopmentOnly(t Transform) Transform {
	return func(cfg *BundlerConfig) *BundlerConfig {
		if !cfg.Development {
			return cfg
		}
		return t(cfg)
	}
}

// WrapContent surrounds the bundle output with head and tail. Later wraps
// nest inside earlier ones.
func WrapContent(head, tail string) Transform {
	return func(cfg *BundlerConfig) *BundlerConfig {
		cfg.Banner = joinLines(cfg.Banner, head)
		cfg.Footer = joinLines(tail, cfg.Footer)
		return cfg
	}
}

func joinLines(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}

func AddPlugin(plugin api.Plugin) Transform {
	return func(cfg *BundlerConfig) *BundlerConfig {
		cfg.Plugins = append(cfg.Plugins, plugin)
		return cfg
	}
}

func ToBuildOptions(cfg *BundlerConfig) api.BuildOptions {
	nodeEnv := `"production"`
	if cfg.Development {
		nodeEnv = `"development"`
	}
	define := map[string]string{"process.env.NODE_ENV": nodeEnv}
	for k, v := range cfg.Define {
		define[k] = v
	}

	opts := api.BuildOptions{
		EntryPoints:   cfg.EntryPoints,
		Outdir:        cfg.Outdir,
		PublicPath:    cfg.PublicPath,
		AbsWorkingDir: cfg.AbsWorkingDir,
		External:      cfg.External,
		Define:        define,
		Loader:        cfg.Loader,
		Plugins:       cfg.Plugins,
		Bundle:        true,
		Write:         true,
		Format:        api.FormatIIFE,
		Platform:      api.PlatformBrowser,
		Target:        api.ES2017,
		JSX:           api.JSXTransform,
		LogLevel:      api.LogLevelSilent,
	}
	if cfg.Sourcemap {
		opts.Sourcemap = api.SourceMapLinked
	}
	if cfg.Banner != "" {
		opts.Banner = map[string]string{"js": cfg.Banner}
	}
	if cfg.Footer != "" {
		opts.Footer = map[string]string{"js": cfg.Footer}
	}
	if !cfg.Development {
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
	}
	return opts
}
