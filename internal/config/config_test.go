package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Debug != want.Debug || cfg.Optimize != want.Optimize || len(cfg.Extensions) != 0 ||
		cfg.Vertex != want.Vertex || cfg.Fragment != want.Fragment {
		t.Errorf("expected Default() for a missing file, got %+v", cfg)
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glslesc.yaml")
	const yaml = `
vertex:
  precision:
    float: highp
fragment:
  precision:
    float: mediump
extensions: [GL_OES_standard_derivatives]
debug: true
optimize: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vertex.Precision.Float != "highp" {
		t.Errorf("vertex float precision = %q, want highp", cfg.Vertex.Precision.Float)
	}
	if cfg.Fragment.Precision.Float != "mediump" {
		t.Errorf("fragment float precision = %q, want mediump", cfg.Fragment.Precision.Float)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != "GL_OES_standard_derivatives" {
		t.Errorf("extensions = %v", cfg.Extensions)
	}
	if !cfg.Debug || !cfg.Optimize {
		t.Errorf("expected debug and optimize both true, got %+v", cfg)
	}
}

func TestLoad_InvalidYamlReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glslesc.yaml")
	if err := os.WriteFile(path, []byte("not: [valid"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}
