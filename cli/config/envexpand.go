// Package config handles YAML config file loading for the gamehub CLI.
package config

import (
	"os"
	"regexp"
)

// envRef matches ${NAME} and ${NAME:-fallback}.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv substitutes environment references in a config document.
//
// ${NAME} becomes the value of NAME. ${NAME:-fallback} becomes the value of
// NAME, or fallback when NAME is unset or empty. An unset reference with no
// fallback becomes the empty string; required values such as the adapter URL
// are rejected later by option parsing.
func ExpandEnv(input string) string {
	return envRef.ReplaceAllStringFunc(input, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[2]
	})
}
