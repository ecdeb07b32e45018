package server

import (
	"os"
	"regexp"
)

var envDefaultPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-|-)([^}]*)\}`)

// expandEnvString resolves ${VAR}, $VAR, ${VAR:-default} (unset or empty)
// and ${VAR-default} (unset only) references.
func expandEnvString(value string, lookup func(string) (string, bool)) string {
	if value == "" {
		return value
	}
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	expanded := envDefaultPattern.ReplaceAllStringFunc(value, func(match string) string {
		parts := envDefaultPattern.FindStringSubmatch(match)
		if len(parts) != 4 {
			return match
		}
		val, ok := lookup(parts[1])
		switch {
		case parts[2] == ":-" && val != "":
			return val
		case parts[2] == "-" && ok:
			return val
		}
		return parts[3]
	})

	return os.Expand(expanded, func(key string) string {
		val, _ := lookup(key)
		return val
	})
}
