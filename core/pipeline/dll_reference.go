package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tristendillon/forge/core/models"
)

const dllNamespace = "forge-dll"

// DllReference routes imports of manifest modules to the prebuilt bundle's
// global instead of bundling them again.
func DllReference(manifest models.DllManifest) Transform {
	return AddPlugin(DllReferencePlugin(manifest))
}

func DllReferencePlugin(manifest models.DllManifest) api.Plugin {
	return api.Plugin{
		Name: "forge-dll-reference",
		Setup: func(build api.PluginBuild) {
			if len(manifest.Modules) == 0 {
				return
			}

			build.OnResolve(api.OnResolveOptions{Filter: moduleFilter(manifest.Modules)},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if !manifest.Provides(args.Path) {
						return api.OnResolveResult{}, nil
					}
					return api.OnResolveResult{Path: args.Path, Namespace: dllNamespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: dllNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					contents := ShimSource(manifest.Global, args.Path)
					return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJS}, nil
				})
		},
	}
}

// ShimSource is the module body that stands in for a bundled dependency.
func ShimSource(global, module string) string {
	return fmt.Sprintf("module.exports = window[%s][%s];", strconv.Quote(global), strconv.Quote(module))
}

func moduleFilter(modules []string) string {
	quoted := make([]string, len(modules))
	for i, m := range modules {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return "^(" + strings.Join(quoted, "|") + ")$"
}
