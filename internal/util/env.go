package util

import (
	"os"
	"strings"
)

func Env() map[string]string {
	environ := os.Environ()

	env := make(map[string]string, len(environ))

	for _, pair := range environ {
		parts := strings.SplitN(pair, "=", 2)

		env[parts[0]] = parts[1]
	}

	return env
}

// EnvDefault returns the first non-empty value of keys in env, or fallback.
func EnvDefault(env map[string]string, fallback string, keys ...string) string {
	for _, key := range keys {
		if v := env[key]; v != "" {
			return v
		}
	}

	return fallback
}
