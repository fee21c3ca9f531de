package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolate points HOME and the working directory at empty temp dirs so no
// real configuration leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultSuffix, cfg.Generate.Suffix)
	assert.Equal(t, DefaultHeader, cfg.Generate.Header)
	assert.Equal(t, DefaultDebounceMS, cfg.Watch.DebounceMS)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce())
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, 0, cfg.Log.Verbosity)
}

func TestLoad_ProjectFileFoundUpward(t *testing.T) {
	root := isolate(t)
	writeFile(t, filepath.Join(root, FileName), "[generate]\nsuffix = \"_gen.go\"\n")

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "_gen.go", cfg.Generate.Suffix)
	assert.Equal(t, DefaultHeader, cfg.Generate.Header)
}

func TestLoad_Precedence(t *testing.T) {
	root := isolate(t)
	home := os.Getenv("HOME")

	writeFile(t, filepath.Join(home, UserDirName, FileName), "[watch]\ndebounce_ms = 100\n[log]\nverbosity = 1\n")
	writeFile(t, filepath.Join(root, FileName), "[watch]\ndebounce_ms = 200\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Watch.DebounceMS, "project file overrides user file")
	assert.Equal(t, 1, cfg.Log.Verbosity, "user file overrides defaults")

	t.Setenv("EXTFN_WATCH_DEBOUNCE_MS", "50")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Watch.DebounceMS, "environment overrides files")
}

func TestLoad_ExplicitFile(t *testing.T) {
	root := isolate(t)
	explicit := filepath.Join(root, "custom.toml")
	writeFile(t, explicit, "[log]\njson = true\n")

	cfg, err := Load(explicit)
	require.NoError(t, err)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, []string{explicit}, Sources(explicit))
}

func TestLoad_ExplicitFileSkipsProjectFile(t *testing.T) {
	root := isolate(t)
	home := os.Getenv("HOME")
	user := filepath.Join(home, UserDirName, FileName)
	writeFile(t, user, "[log]\nverbosity = 2\n")
	writeFile(t, filepath.Join(root, FileName), "[generate]\nsuffix = \"_gen.go\"\n[watch]\ndebounce_ms = 200\n")

	explicit := filepath.Join(t.TempDir(), "ci.toml")
	writeFile(t, explicit, "[watch]\ndebounce_ms = 10\n")

	cfg, err := Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, DefaultSuffix, cfg.Generate.Suffix, "project file not read")
	assert.Equal(t, 10, cfg.Watch.DebounceMS)
	assert.Equal(t, 2, cfg.Log.Verbosity, "user file still applies")
	assert.Equal(t, []string{user, explicit}, Sources(explicit))
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	root := isolate(t)

	_, err := Load(filepath.Join(root, "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.toml")
}

func TestLoad_MalformedFile(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "broken.toml")
	writeFile(t, path, "[generate\nsuffix = ")

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.toml")
}

func TestLoad_InvalidValueRejected(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, FileName)
	writeFile(t, path, "[generate]\nsuffix = \".txt\"\n")

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate.suffix")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Generate: GenerateConfig{Suffix: DefaultSuffix, Header: DefaultHeader},
			Watch:    WatchConfig{DebounceMS: DefaultDebounceMS},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"custom suffix", func(c *Config) { c.Generate.Suffix = ".gen.go" }, false},
		{"suffix without .go", func(c *Config) { c.Generate.Suffix = "_extfn" }, true},
		{"suffix is .go", func(c *Config) { c.Generate.Suffix = ".go" }, true},
		{"suffix with separator", func(c *Config) { c.Generate.Suffix = "/x.go" }, true},
		{"custom header", func(c *Config) { c.Generate.Header = "// Code generated by go generate; DO NOT EDIT." }, false},
		{"header without marker", func(c *Config) { c.Generate.Header = "// generated" }, true},
		{"multi-line header", func(c *Config) { c.Generate.Header = "// Code generated\n// by extfn. DO NOT EDIT." }, true},
		{"zero debounce is valid", func(c *Config) { c.Watch.DebounceMS = 0 }, false},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -1 }, true},
		{"negative verbosity", func(c *Config) { c.Log.Verbosity = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	cfg := &Config{
		Generate: GenerateConfig{Suffix: DefaultSuffix, Header: DefaultHeader},
		Watch:    WatchConfig{DebounceMS: 250},
		Log:      LogConfig{Verbosity: 2},
	}

	t.Run("toml", func(t *testing.T) {
		data, err := cfg.Marshal(FormatTOML)
		require.NoError(t, err)

		var back Config
		require.NoError(t, toml.Unmarshal(data, &back))
		assert.Equal(t, *cfg, back)
		assert.Contains(t, string(data), "debounce_ms = 250")
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := cfg.Marshal(FormatYAML)
		require.NoError(t, err)

		var back Config
		require.NoError(t, yaml.Unmarshal(data, &back))
		assert.Equal(t, *cfg, back)
	})

	t.Run("json", func(t *testing.T) {
		data, err := cfg.Marshal(FormatJSON)
		require.NoError(t, err)

		var back Config
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, *cfg, back)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := cfg.Marshal("xml")
		assert.Error(t, err)
	})
}
