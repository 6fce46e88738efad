// Package config resolves the optional settings file through the home
// search path.
package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/amadigan/slackscan/internal/applog"
	"github.com/amadigan/slackscan/internal/util"
)

const Name = "slackscan"
const HomeEnv = "SLACKSCAN_HOME"
const SysHomeDir = "/etc/slackscan"
const userConfigDir = "~/.config"

var log = applog.New("config")

// Settings is the slackscan.jsonc file. Flags override every field.
type Settings struct {
	// LogLevel names the stderr log threshold.
	LogLevel string `json:"log_level,omitempty"`
	// Partitions overrides the device table consulted by single-file scans.
	Partitions string `json:"partitions,omitempty"`
	// JSON switches output to one JSON object per line.
	JSON bool `json:"json,omitempty"`
}

var settingsValidator = newFieldValidator(Settings{})

func (s *Settings) UnmarshalJSON(data []byte) error {
	if err := settingsValidator.Validate(data); err != nil {
		return err
	}

	type settings Settings

	//nolint:wrapcheck
	return json.Unmarshal(data, (*settings)(s))
}

// BuildHomePath resolves the settings search path: the override argument or
// $SLACKSCAN_HOME entries first, then the user config directory, then the
// system directory. Returns the primary entry and the full joined path.
func BuildHomePath(env map[string]string, path string) (string, string) {
	paths := util.List[string]{}

	home := path

	if home == "" {
		home = env[HomeEnv]
	}

	for _, part := range strings.Split(home, ":") {
		if part != "" {
			if abs, err := filepath.Abs(interpolate(part, env)); err == nil {
				paths.PushBack(abs)
			}
		}
	}

	user := util.EnvDefault(env, userConfigDir, "XDG_CONFIG_HOME")
	paths.PushBack(handleTilde(filepath.Join(user, Name), env["HOME"]))
	paths.PushBack(SysHomeDir)

	set := map[string]struct{}{}
	parts := make([]string, 0, paths.Len())

	for path := range paths.FromFront() {
		if _, ok := set[path]; ok {
			continue
		}

		set[path] = struct{}{}

		parts = append(parts, path)
	}

	front, _ := paths.Front()

	return front, strings.Join(parts, ":")
}

// LoadSettings reads the first slackscan.jsonc on the search path. A missing
// file is not an error, the zero Settings are the defaults.
func LoadSettings(env map[string]string, home string) (*Settings, string, error) {
	home, searchpath := BuildHomePath(env, home)
	env[HomeEnv] = searchpath

	settings := &Settings{}

	for _, dir := range strings.Split(searchpath, ":") {
		path := filepath.Join(dir, Name+".jsonc")

		found, err := util.ReadOptionalJsonConfig(path, settings)
		if err != nil {
			return nil, home, err
		}

		if found {
			log.Debugf("loaded settings from %s", path)

			return settings, home, nil
		}
	}

	log.Debugf("no %s.jsonc found, using defaults", Name)

	return settings, home, nil
}

// PartitionsPath resolves the device table override, empty when unset.
func (s *Settings) PartitionsPath(env map[string]string) string {
	if s.Partitions == "" {
		return ""
	}

	return interpolate(s.Partitions, env)
}
