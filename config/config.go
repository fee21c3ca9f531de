// Package config loads extfn settings from TOML files and the environment.
//
// Precedence, lowest to highest: defaults, ~/.extfn/extfn.toml, the nearest
// extfn.toml above the working directory, EXTFN_* environment variables.
package config

import "time"

// Config is the effective extfn configuration.
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" toml:"generate" yaml:"generate" json:"generate"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch" yaml:"watch" json:"watch"`
	Log      LogConfig      `mapstructure:"log" toml:"log" yaml:"log" json:"log"`
}

// GenerateConfig controls output files.
type GenerateConfig struct {
	Suffix string `mapstructure:"suffix" toml:"suffix" yaml:"suffix" json:"suffix"` // replaces ".go" of the template file name
	Header string `mapstructure:"header" toml:"header" yaml:"header" json:"header"` // first line of every generated file
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
}

// Debounce is the quiet period before a changed template is regenerated.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// LogConfig controls logger initialization.
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json" yaml:"json" json:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity" yaml:"verbosity" json:"verbosity"` // same scale as -v
}

// File names and locations
const (
	FileName     = "extfn.toml"
	UserDirName  = ".extfn"
	EnvPrefix    = "EXTFN"
	generatedTag = "Code generated "
	generatedEnd = " DO NOT EDIT."
)
