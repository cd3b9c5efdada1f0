// Command glslescc compiles a single OpenGL ES 2.0 Shading Language source
// file to register-level IL text, printing the IL to stdout and any
// diagnostics to stderr (spec §6). It loads glslesc.yaml next to the current
// directory for project-wide defaults (internal/config); command-line flags
// always take precedence over the file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/hmwill/glslesc/internal/config"
	"github.com/hmwill/glslesc/internal/diag"
	"github.com/hmwill/glslesc/pkg/shaderc"
)

func main() {
	var (
		kindFlag     = flag.String("kind", "", `shader kind: "vertex" or "fragment" (default: guessed from file extension)`)
		configPath   = flag.String("config", "glslesc.yaml", "path to the project configuration file")
		debugFlag    = flag.Bool("debug", false, "enable pragma_debug (overrides the config file)")
		optimizeFlag = flag.Bool("optimize", false, "enable pragma_optimize (overrides the config file)")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: glslescc [flags] <source-file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "glslescc: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Debug = *debugFlag
		case "optimize":
			cfg.Optimize = *optimizeFlag
		}
	})

	kind, err := resolveKind(*kindFlag, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "glslescc: %v\n", err)
		os.Exit(1)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "glslescc: reading %s: %v\n", path, err)
		os.Exit(1)
	}

	c := shaderc.NewCompilerWithConfig(cfg)
	shader := shaderc.NewShader(kind, string(src))

	ok := shaderc.CompileShader(c, shader)
	printDiagnostics(os.Stderr, shader)
	if !ok {
		os.Exit(1)
	}
	fmt.Print(shader.IL)
}

func resolveKind(flagValue, path string) (shaderc.ShaderKind, error) {
	switch flagValue {
	case "vertex":
		return shaderc.Vertex, nil
	case "fragment":
		return shaderc.Fragment, nil
	case "":
		// fall through to extension guessing
	default:
		return 0, fmt.Errorf(`invalid -kind %q: want "vertex" or "fragment"`, flagValue)
	}

	switch {
	case hasSuffix(path, ".vert", ".vs"):
		return shaderc.Vertex, nil
	case hasSuffix(path, ".frag", ".fs"):
		return shaderc.Fragment, nil
	default:
		return 0, fmt.Errorf("cannot infer shader kind from %q; pass -kind explicitly", path)
	}
}

func hasSuffix(path string, suffixes ...string) bool {
	for _, s := range suffixes {
		if len(path) >= len(s) && path[len(path)-len(s):] == s {
			return true
		}
	}
	return false
}

// printDiagnostics writes one colored line per diagnostic when w is a real
// terminal, and plain text otherwise (e.g. when output is piped to a file or
// another process).
func printDiagnostics(w *os.File, shader *shaderc.Shader) {
	const (
		red    = "\x1b[31m"
		yellow = "\x1b[33m"
		reset  = "\x1b[0m"
	)

	colored := isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
	for _, d := range shader.Log.Entries() {
		if !colored {
			fmt.Fprintln(w, d.String())
			continue
		}
		color := yellow
		if d.Code.Severity() == diag.SeverityError {
			color = red
		}
		fmt.Fprintln(w, color+d.String()+reset)
	}
}
