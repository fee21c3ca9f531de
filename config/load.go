package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/extfn/errors"
)

// Load reads the configuration from the default locations. A non-empty
// explicit path replaces the project file search; the user file still
// applies beneath it.
func Load(explicit string) (*Config, error) {
	v, err := NewViper(explicit)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates configuration from a prepared
// Viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a single file on top of the
// defaults, without environment variables.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	if err := mergeFile(v, path); err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// NewViper builds a Viper instance with every configuration source merged
// in precedence order.
func NewViper(explicit string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	for _, path := range configPaths(explicit) {
		if _, err := os.Stat(path); err != nil && path != explicit {
			continue
		}
		if err := mergeFile(v, path); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Sources lists the configuration files that exist, lowest precedence first.
func Sources(explicit string) []string {
	var found []string
	for _, path := range configPaths(explicit) {
		if _, err := os.Stat(path); err == nil || path == explicit {
			found = append(found, path)
		}
	}
	return found
}

// configPaths lists candidate files, lowest precedence first: the user file,
// then explicit or, without one, the nearest project file.
func configPaths(explicit string) []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, UserDirName, FileName))
	}
	if explicit != "" {
		return append(paths, explicit)
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, project)
	}
	return paths
}

// findProjectConfig walks up from the working directory to the nearest
// extfn.toml. Returns "" when there is none.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeFile layers one TOML file over v. Keys set in the file win over
// files merged before.
func mergeFile(v *viper.Viper, path string) error {
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("toml")

	if err := file.ReadInConfig(); err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "failed to read config file %s", path),
			"config files are TOML: [generate] suffix = \"_extfn.go\"")
	}

	// config layer, so EXTFN_* variables still win
	if err := v.MergeConfigMap(file.AllSettings()); err != nil {
		return errors.Wrapf(err, "failed to merge config file %s", path)
	}
	return nil
}
