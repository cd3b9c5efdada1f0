package main

import (
	"testing"

	"github.com/hmwill/glslesc/pkg/shaderc"
)

func TestResolveKind(t *testing.T) {
	cases := []struct {
		flagValue string
		path      string
		want      shaderc.ShaderKind
		wantErr   bool
	}{
		{"vertex", "ignored.txt", shaderc.Vertex, false},
		{"fragment", "ignored.txt", shaderc.Fragment, false},
		{"", "shader.vert", shaderc.Vertex, false},
		{"", "shader.vs", shaderc.Vertex, false},
		{"", "shader.frag", shaderc.Fragment, false},
		{"", "shader.fs", shaderc.Fragment, false},
		{"", "shader.glsl", 0, true},
		{"bogus", "shader.vert", 0, true},
	}

	for _, c := range cases {
		kind, err := resolveKind(c.flagValue, c.path)
		if c.wantErr {
			if err == nil {
				t.Errorf("resolveKind(%q, %q): expected error", c.flagValue, c.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("resolveKind(%q, %q): unexpected error: %v", c.flagValue, c.path, err)
			continue
		}
		if kind != c.want {
			t.Errorf("resolveKind(%q, %q) = %v, want %v", c.flagValue, c.path, kind, c.want)
		}
	}
}

func TestHasSuffix(t *testing.T) {
	if !hasSuffix("a/b/shader.vert", ".vert", ".vs") {
		t.Error("expected .vert to match")
	}
	if hasSuffix("a/b/shader.frag", ".vert", ".vs") {
		t.Error("expected .frag not to match")
	}
	if hasSuffix("short", ".verylongsuffix") {
		t.Error("a path shorter than the suffix must not match")
	}
}
