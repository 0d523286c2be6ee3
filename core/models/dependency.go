package models

// DllManifest describes a prebuilt dependency bundle. Each module in
// Modules is exposed as window[Global][module] once File has loaded.
type DllManifest struct {
	Global  string   `json:"global"`
	Modules []string `json:"modules"`
	File    string   `json:"file"` // bundle file name, relative to the manifest
	Hash    string   `json:"hash"` // fingerprint of the inputs the bundle was built from
}

// Provides reports whether importPath is served from the bundle.
func (m DllManifest) Provides(importPath string) bool {
	for _, mod := range m.Modules {
		if mod == importPath {
			return true
		}
	}
	return false
}
