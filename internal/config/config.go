// Package config loads project-wide compiler defaults from a glslesc.yaml
// file (SPEC_FULL.md Ambient Stack / Configuration): default precision
// overrides per shader stage, enabled #extension names, and the debug/
// optimize pragma defaults. Command-line flags in cmd/glslescc take
// precedence over anything loaded here — this package only supplies the
// starting values a flag may then override.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PrecisionDefaults mirrors the five default-precision slots a shading
// language scope carries (spec §3.2), expressed as the qualifier keywords a
// "precision" statement would use: "lowp"/"mediump"/"highp", or "" to leave
// the language's own default in place.
type PrecisionDefaults struct {
	Float       string `yaml:"float"`
	Int         string `yaml:"int"`
	Sampler2D   string `yaml:"sampler2D"`
	Sampler3D   string `yaml:"sampler3D"`
	SamplerCube string `yaml:"samplerCube"`
}

// StageConfig holds the settings that apply to one shader stage.
type StageConfig struct {
	Precision PrecisionDefaults `yaml:"precision"`
}

// Config is the shape of glslesc.yaml.
type Config struct {
	Vertex     StageConfig `yaml:"vertex"`
	Fragment   StageConfig `yaml:"fragment"`
	Extensions []string    `yaml:"extensions"`
	Debug      bool        `yaml:"debug"`
	Optimize   bool        `yaml:"optimize"`
}

// Default returns a Config with every field at its zero value: no
// precision overrides, no extensions enabled, both pragmas off — the same
// defaults the compiler has with no glslesc.yaml present at all.
func Default() Config {
	return Config{}
}

// Load reads and parses the YAML file at path. A missing file is not an
// error: it returns Default() unchanged, since glslesc.yaml is optional.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
