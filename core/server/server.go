package server

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/lithammer/dedent"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/pipeline"
	te "github.com/tristendillon/forge/core/template_engine"
)

type LaunchOptions struct {
	Root             string
	PublicPath       string
	EntryPath        string
	Port             int
	Host             string
	HTMLTemplatePath string
	ServeDir         string
	CertFile         string
	KeyFile          string
	Title            string
	// PipeConfig edits the default bundler config before the build starts.
	PipeConfig pipeline.Transform
}

// The entry hands its CommonJS module object to react-hot-loader; browser
// bundles have none, so a global stands in for it.
const moduleShim = "var module = window.module || {};"

type DevServer struct {
	URL  string
	Host string
	Port int

	build     api.BuildContext
	closeOnce sync.Once
}

// Launch renders the host page, starts an incremental esbuild build of the
// entry and serves it with live reload. Rebuild failures are logged and
// keep the last good output.
func Launch(ctx context.Context, opts LaunchOptions) (*DevServer, error) {
	if opts.EntryPath == "" {
		return nil, fmt.Errorf("entry path is required")
	}
	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", opts.Port)
	}
	if (opts.CertFile == "") != (opts.KeyFile == "") {
		return nil, fmt.Errorf("cert file and key file must be set together")
	}
	if opts.PublicPath == "" {
		opts.PublicPath = "/"
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.ServeDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create serve directory %s: %w", opts.ServeDir, err)
	}
	if err := WriteIndex(opts); err != nil {
		return nil, err
	}

	cfg := &pipeline.BundlerConfig{
		EntryPoints:   []string{opts.EntryPath},
		Outdir:        opts.ServeDir,
		PublicPath:    opts.PublicPath,
		AbsWorkingDir: opts.Root,
		Banner:        moduleShim,
		Development:   true,
		Sourcemap:     true,
		Loader: map[string]api.Loader{
			".png": api.LoaderFile,
			".jpg": api.LoaderFile,
			".svg": api.LoaderFile,
		},
		Plugins: []api.Plugin{buildLogPlugin()},
	}
	if opts.PipeConfig != nil {
		if next := opts.PipeConfig(cfg); next != nil {
			cfg = next
		}
	}

	build, ctxErr := api.Context(pipeline.ToBuildOptions(cfg))
	if ctxErr != nil {
		return nil, fmt.Errorf("failed to create build context: %s", messages(ctxErr.Errors))
	}

	if err := build.Watch(api.WatchOptions{}); err != nil {
		build.Dispose()
		return nil, fmt.Errorf("failed to watch entry: %w", err)
	}

	result, err := build.Serve(api.ServeOptions{
		Port:     uint16(opts.Port),
		Host:     opts.Host,
		Servedir: opts.ServeDir,
		Certfile: opts.CertFile,
		Keyfile:  opts.KeyFile,
	})
	if err != nil {
		build.Dispose()
		return nil, fmt.Errorf("failed to start dev server: %w", err)
	}

	host := opts.Host
	if host == "" {
		host = result.Host
	}
	s := &DevServer{
		URL:   ServerURL(opts.CertFile != "", host, int(result.Port), opts.PublicPath),
		Host:  host,
		Port:  int(result.Port),
		build: build,
	}
	logger.Info("Docs server running at %s", s.URL)
	return s, nil
}

// Wait blocks until ctx is cancelled and then shuts the server down.
func (s *DevServer) Wait(ctx context.Context) error {
	<-ctx.Done()
	s.Close()
	return nil
}

func (s *DevServer) Close() {
	s.closeOnce.Do(func() {
		logger.Debug("Stopping dev server on port %d", s.Port)
		s.build.Dispose()
	})
}

// EntryScript is the served name of the bundled entry.
func EntryScript(entryPath string) string {
	base := filepath.Base(entryPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".js"
}

// WriteIndex renders the host page into the serve directory, using the
// project's template when one is configured.
func WriteIndex(opts LaunchOptions) error {
	title := opts.Title
	if title == "" {
		title = "Docs"
	}
	data := map[string]any{
		"Title":      title,
		"ScriptURL":  path.Join(opts.PublicPath, EntryScript(opts.EntryPath)),
		"LiveReload": true,
	}

	engine := te.NewTemplateEngine()
	var (
		html string
		err  error
	)
	if opts.HTMLTemplatePath != "" {
		html, err = engine.RenderFile(opts.HTMLTemplatePath, data)
	} else {
		html, err = engine.Render(te.TEMPLATES.DOCS.INDEX_HTML, data)
	}
	if err != nil {
		return fmt.Errorf("failed to render index.html: %w", err)
	}

	indexPath := filepath.Join(opts.ServeDir, "index.html")
	if err := os.WriteFile(indexPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", indexPath, err)
	}
	return nil
}

// DllLoaderScript returns the code placed around the entry bundle so that
// it only runs once the prebuilt dependency script has loaded.
func DllLoaderScript(dllURL string) (head, tail string) {
	head = strings.TrimSpace(dedent.Dedent(fmt.Sprintf(`
		(function () {
		  var script = document.createElement("script");
		  script.src = %s;
		  script.onload = runEntry;
		  document.body.appendChild(script);
		})();
		function runEntry() {`, strconv.Quote(dllURL))))
	return head, "}"
}

// DllURL is the absolute address of a file under the static dll path.
func DllURL(useHTTPS bool, host string, port int, staticPath, file string) string {
	return ServerURL(useHTTPS, host, port, path.Join("/", staticPath, file))
}

func ServerURL(useHTTPS bool, host string, port int, p string) string {
	scheme := "http"
	if useHTTPS {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   p,
	}
	return u.String()
}

func buildLogPlugin() api.Plugin {
	return api.Plugin{
		Name: "forge-build-log",
		Setup: func(build api.PluginBuild) {
			var start time.Time
			build.OnStart(func() (api.OnStartResult, error) {
				start = time.Now()
				return api.OnStartResult{}, nil
			})
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					logger.Error("Build failed: %s", messages(result.Errors))
					return api.OnEndResult{}, nil
				}
				for _, w := range result.Warnings {
					logger.Warn("Build warning: %s", w.Text)
				}
				logger.Debug("Build finished in %s", time.Since(start).Round(time.Millisecond))
				return api.OnEndResult{}, nil
			})
		},
	}
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
