package config

import (
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/extfn/errors"
)

// Output formats accepted by Marshal
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Marshal renders the configuration in the given format.
func (c *Config) Marshal(format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatTOML:
		data, err = toml.Marshal(c)
	case FormatYAML:
		data, err = yaml.Marshal(c)
	case FormatJSON:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	default:
		return nil, errors.WithHint(
			errors.Newf("unsupported format: %s", format),
			"supported formats: toml, yaml, json")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal config as %s", format)
	}
	return data, nil
}
