package settings

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// codec reads and writes the settings record in one file format.
type codec interface {
	encode(w io.Writer, cfg Config) error
	decode(r io.Reader, cfg *Config) error
}

func codecForPath(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec{}
	default:
		return jsonCodec{}
	}
}

type jsonCodec struct{}

func (jsonCodec) encode(w io.Writer, cfg Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

func (jsonCodec) decode(r io.Reader, cfg *Config) error {
	return json.NewDecoder(r).Decode(cfg)
}

type yamlCodec struct{}

func (yamlCodec) encode(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func (yamlCodec) decode(r io.Reader, cfg *Config) error {
	return yaml.NewDecoder(r).Decode(cfg)
}
