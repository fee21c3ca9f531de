package config

import (
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultSuffix     = "_extfn.go"
	DefaultHeader     = "// Code generated by extfn. DO NOT EDIT."
	DefaultDebounceMS = 300
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generate.suffix", DefaultSuffix)
	v.SetDefault("generate.header", DefaultHeader)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS) // editors write in bursts

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}
