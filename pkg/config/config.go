// Package config resolves the inputs of an export run from defaults, a config
// file, GSP_* environment variables and command-line overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/ini.v1"

	"github.com/lobinuxsoft/gamestream-presets/internal/logging"
	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
	"github.com/lobinuxsoft/gamestream-presets/pkg/shelllink"
)

const (
	// DefaultConfigFile is read from the working directory when no file is
	// given explicitly. Its absence is not an error.
	DefaultConfigFile = "conf.ini"

	// EnvPrefix marks environment variables that override the config file.
	EnvPrefix = "GSP_"

	// INISection holds the settings in legacy .ini files.
	INISection = "Config"
)

// Config keys, shared by the TOML file, the lower-cased INI keys and the
// environment (GSP_<KEY upper-cased>).
const (
	KeyTargets        = "targets"
	KeySteamConfigDir = "steam_config_dir"
	KeyDestFolder     = "dest_folder"
	KeyDefaultAsset   = "default_asset"
	KeyLinkWriter     = "link_writer"
)

// Config is the resolved, trimmed input of one run.
type Config struct {
	Targets        []string
	SteamConfigDir string
	DestFolder     string
	DefaultAsset   string
	LinkWriter     string
	// File is the config file that was loaded, empty when none was found.
	File string
}

// Source describes where Load reads from.
type Source struct {
	// File is an explicit config file. Empty means DefaultConfigFile, which
	// may be missing.
	File string
	// Overrides are values from command-line flags keyed by config key. Only
	// flags the user actually set should be present.
	Overrides map[string]string
}

// SteamLocator finds the Steam config dir when none is configured.
type SteamLocator interface {
	DiscoverConfigDir() (string, error)
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		KeyTargets:        "",
		KeySteamConfigDir: "",
		KeyDestFolder:     "",
		KeyDefaultAsset:   "",
		KeyLinkWriter:     shelllink.WriterNative,
	}
}

// Load layers defaults, the config file, the environment and src.Overrides,
// later layers winning.
func Load(src Source) (*Config, error) {
	logger := logging.Get("config")
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to load defaults")
	}

	loaded, err := loadFile(k, src.File)
	if err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to load environment")
	}

	for key, val := range src.Overrides {
		if err := k.Set(key, val); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfig, "failed to apply override").WithDetail("key", key)
		}
	}

	cfg := &Config{
		Targets:        SplitTargets(k.Get(KeyTargets)),
		SteamConfigDir: strings.TrimSpace(k.String(KeySteamConfigDir)),
		DestFolder:     strings.TrimSpace(k.String(KeyDestFolder)),
		DefaultAsset:   strings.TrimSpace(k.String(KeyDefaultAsset)),
		LinkWriter:     strings.TrimSpace(k.String(KeyLinkWriter)),
		File:           loaded,
	}

	logger.Debug().
		Str("file", cfg.File).
		Strs("targets", cfg.Targets).
		Str("steamConfigDir", cfg.SteamConfigDir).
		Str("destFolder", cfg.DestFolder).
		Str("linkWriter", cfg.LinkWriter).
		Msg("Configuration loaded")
	return cfg, nil
}

// envKey maps GSP_STEAM_CONFIG_DIR to steam_config_dir.
func envKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
}

// loadFile merges the config file into k and returns its path, or "" when
// the default file does not exist.
func loadFile(k *koanf.Koanf, path string) (string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return "", nil
		}
		return "", errors.Wrap(err, errors.ErrConfig, "config file is unavailable").WithDetail("path", path)
	}
	if info.IsDir() {
		return "", errors.New(errors.ErrConfig, "config file is a directory").WithDetail("path", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".ini") {
		values, err := readINI(path)
		if err != nil {
			return "", err
		}
		if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
			return "", errors.Wrap(err, errors.ErrConfig, "failed to merge ini config").WithDetail("path", path)
		}
		return path, nil
	}

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return "", errors.Wrap(err, errors.ErrConfig, "failed to parse config file").WithDetail("path", path)
	}
	return path, nil
}

// readINI returns the keys of the [Config] section, lower-cased so that
// TARGETS, STEAM_CONFIG_DIR and DEST_FOLDER map onto the TOML key names.
func readINI(path string) (map[string]interface{}, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys: true,
		// Windows folders in conf.ini often end in a backslash.
		IgnoreContinuation: true,
	}, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to parse ini config").WithDetail("path", path)
	}

	sec, err := f.GetSection(INISection)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfig, "missing [%s] section", INISection).WithDetail("path", path)
	}

	values := make(map[string]interface{}, len(sec.Keys()))
	for _, key := range sec.Keys() {
		values[key.Name()] = key.String()
	}
	return values, nil
}

// SplitTargets accepts a comma separated string or a list and returns the
// trimmed, non-empty targets in order.
func SplitTargets(v interface{}) []string {
	var parts []string
	switch t := v.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []string:
		parts = t
	case []interface{}:
		for _, p := range t {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
	}

	targets := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			targets = append(targets, p)
		}
	}
	return targets
}

// ResolveSteamConfigDir fills SteamConfigDir from loc when it is empty.
func (c *Config) ResolveSteamConfigDir(loc SteamLocator) error {
	if c.SteamConfigDir != "" {
		return nil
	}
	if loc == nil {
		return errors.New(errors.ErrConfig, "steam config dir is not set")
	}

	dir, err := loc.DiscoverConfigDir()
	if err != nil {
		return errors.Wrap(err, errors.ErrConfig, "steam config dir is not set and could not be discovered")
	}
	logger := logging.Get("config")
	logger.Info().Str("steamConfigDir", dir).Msg("Discovered Steam config dir")
	c.SteamConfigDir = dir
	return nil
}

// Validate checks the settings every export needs.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return errors.New(errors.ErrConfig, "no targets configured").WithDetail("key", KeyTargets)
	}
	if c.SteamConfigDir == "" {
		return errors.New(errors.ErrConfig, "steam config dir is not set").WithDetail("key", KeySteamConfigDir)
	}
	if c.DestFolder == "" {
		return errors.New(errors.ErrConfig, "destination folder is not set").WithDetail("key", KeyDestFolder)
	}
	switch c.LinkWriter {
	case "", shelllink.WriterNative, shelllink.WriterShell:
	default:
		return errors.Newf(errors.ErrConfig, "unknown link writer %q", c.LinkWriter).WithDetail("key", KeyLinkWriter)
	}
	return nil
}
