package config

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Search path entries and the partitions override may reference environment
// variables as ${VAR} and the home directory as a leading ~/.
var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolate substitutes ${VAR} references from env, leaving unknown
// variables in place, then expands a leading ~/.
func interpolate(input string, env map[string]string) string {
	matches := varPattern.FindAllStringSubmatchIndex(input, -1)

	if len(matches) > 0 {
		var sb strings.Builder

		last := 0

		for _, m := range matches {
			sb.WriteString(input[last:m[0]])

			if value, ok := env[input[m[2]:m[3]]]; ok {
				sb.WriteString(value)
			} else {
				sb.WriteString(input[m[0]:m[1]])
			}

			last = m[1]
		}

		sb.WriteString(input[last:])
		input = sb.String()
	}

	return handleTilde(input, env["HOME"])
}

func handleTilde(path, home string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok && home != "" {
		return filepath.Join(home, rest)
	}

	return path
}
