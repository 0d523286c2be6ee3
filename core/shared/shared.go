package shared

import "strings"

func ToTitle(s string) string {
	if s == "" {
		return s
	}
	first := strings.ToUpper(s[:1])
	rest := s[1:]
	return first + rest
}

// EnsureRelative prefixes a slash separated relative path with "./" so module
// resolvers do not treat it as a package name.
func EnsureRelative(p string) string {
	if strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") || p == "." || p == ".." {
		return p
	}
	return "./" + p
}
