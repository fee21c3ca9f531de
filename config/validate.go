package config

import (
	"strings"

	"github.com/teranos/extfn/errors"
)

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	// Suffix must keep the output a Go file distinct from its template
	if !strings.HasSuffix(c.Generate.Suffix, ".go") || c.Generate.Suffix == ".go" {
		return errors.WithHint(
			errors.Newf("generate.suffix must end in .go and not be .go itself, got %q", c.Generate.Suffix),
			"the default is "+DefaultSuffix)
	}
	if strings.ContainsRune(c.Generate.Suffix, '/') {
		return errors.Newf("generate.suffix must not contain a path separator, got %q", c.Generate.Suffix)
	}

	// Go tooling recognizes generated files by this exact line shape
	h := c.Generate.Header
	if !strings.HasPrefix(h, "// "+generatedTag) || !strings.HasSuffix(h, generatedEnd) || strings.Contains(h, "\n") {
		return errors.WithHint(
			errors.Newf("generate.header must match \"// Code generated ... DO NOT EDIT.\", got %q", h),
			"the default is "+DefaultHeader)
	}

	// Watch debounce: 0 = regenerate on every event, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}
