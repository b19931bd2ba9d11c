/*
config reads the optional YAML configuration file, which sets the server
port, the system prompt and the sampling parameters
*/
package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
	sampler "github.com/mutablelogic/go-llamachat/pkg/sampler"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Config struct {
	Port         uint16         `yaml:"port" json:"port"`
	SystemPrompt string         `yaml:"system_prompt" json:"system_prompt,omitempty"`
	Sampler      sampler.Config `yaml:"sampler" json:"sampler"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultPort = 8080
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Default returns the configuration used when there is no file
func Default() Config {
	return Config{
		Port:    DefaultPort,
		Sampler: sampler.Default(),
	}
}

// Load reads the configuration file at path over the defaults. An empty
// path or a missing file returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return Config{}, llamachat.ErrBadParameter.Withf("%s: %v", path, err)
	}
	return Read(bytes.NewReader(data))
}

// Read decodes YAML over the defaults and validates the result
func Read(r io.Reader) (Config, error) {
	config := Default()
	if err := yaml.NewDecoder(r).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, llamachat.ErrBadParameter.Withf("config: %v", err)
	}
	if config.Port == 0 {
		return Config{}, llamachat.ErrBadParameter.With("config: port is required")
	}
	if err := config.Sampler.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (c Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(data)
}
