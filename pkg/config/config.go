// Package config loads rigup's layered configuration: embedded defaults,
// then the user config file, then the per-rig config file, then RIGUP_*
// environment variables. Later layers win.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"rigup/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// UserConfigFile is the file name looked up under the XDG config dir.
const UserConfigFile = "config.toml"

// Config is the typed view of the merged configuration layers.
type Config struct {
	// LocalRoot overrides the install root. Empty means ~/.local/rigup.
	LocalRoot string `koanf:"local_root"`

	// RCFile overrides the shell rc file. Empty means pick from $SHELL.
	RCFile string `koanf:"rc_file"`

	Fetch  FetchConfig  `koanf:"fetch"`
	Sudo   SudoConfig   `koanf:"sudo"`
	Update UpdateConfig `koanf:"update"`
}

// FetchConfig tunes pkg/fetch.
type FetchConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// SudoConfig tunes the pkg/sudo keep-alive.
type SudoConfig struct {
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// UpdateConfig names the GitHub repository used for version checks.
type UpdateConfig struct {
	Owner      string `koanf:"owner"`
	Repository string `koanf:"repository"`
}

// envKeys maps RIGUP_-stripped environment variable names to config
// keys. An explicit table rather than a string transform because key
// names themselves contain underscores.
var envKeys = map[string]string{
	"LOCAL_ROOT":            "local_root",
	"RC_FILE":               "rc_file",
	"FETCH_TIMEOUT":         "fetch.timeout",
	"SUDO_REFRESH_INTERVAL": "sudo.refresh_interval",
	"UPDATE_OWNER":          "update.owner",
	"UPDATE_REPOSITORY":     "update.repository",
}

// rawBytesProvider implements the koanf provider interface for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Load merges the configuration layers for the given config directory
// and rig root. Missing files are fine; a file that exists but does not
// parse is an error.
func Load(configDir, rigRoot string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load built-in defaults")
	}

	// 2. User config under the XDG config dir
	if configDir != "" {
		if err := loadFileIfPresent(k, filepath.Join(configDir, UserConfigFile)); err != nil {
			return nil, err
		}
	}

	// 3. Per-rig config at the rig root
	if rigRoot != "" {
		if err := loadFileIfPresent(k, filepath.Join(rigRoot, ".rigup.toml")); err != nil {
			return nil, err
		}
	}

	// 4. RIGUP_* environment variables
	err := k.Load(env.Provider("RIGUP_", ".", func(s string) string {
		// Unknown variables map to the empty key, which koanf drops.
		return envKeys[strings.TrimPrefix(s, "RIGUP_")]
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	return &cfg, nil
}

func loadFileIfPresent(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
	}
	return nil
}
