package prefs

import (
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// codec encodes the explicit preference values of a store.
type codec interface {
	Marshal(values map[string]any) ([]byte, error)
	Unmarshal(data []byte) (map[string]any, error)
	Name() string
}

type tomlCodec struct{}

func (tomlCodec) Marshal(values map[string]any) ([]byte, error) {
	return toml.Marshal(values)
}

func (tomlCodec) Unmarshal(data []byte) (map[string]any, error) {
	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (tomlCodec) Name() string { return "toml" }

type yamlCodec struct{}

func (yamlCodec) Marshal(values map[string]any) ([]byte, error) {
	return yaml.Marshal(values)
}

func (yamlCodec) Unmarshal(data []byte) (map[string]any, error) {
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (yamlCodec) Name() string { return "yaml" }

// codecFor picks the codec from the file extension.
func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec{}
	default:
		return tomlCodec{}
	}
}
