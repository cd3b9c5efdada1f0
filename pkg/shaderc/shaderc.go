// Package shaderc is the public driver (spec §6): it wires together the
// preprocessor, lexer, parser, lowerer and IL text writer into the single
// entry point a caller actually needs, following the teacher's
// pkg/compiler.Compile pipeline shape — preprocess, lex, parse, generate,
// assemble — generalized from a flat assembly string to the register IL of
// component K.
package shaderc

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/hmwill/glslesc/internal/arena"
	"github.com/hmwill/glslesc/internal/config"
	"github.com/hmwill/glslesc/internal/diag"
	"github.com/hmwill/glslesc/internal/gltype"
	"github.com/hmwill/glslesc/internal/ilcache"
	"github.com/hmwill/glslesc/internal/ir"
	"github.com/hmwill/glslesc/internal/iltext"
	"github.com/hmwill/glslesc/internal/lexer"
	"github.com/hmwill/glslesc/internal/lower"
	"github.com/hmwill/glslesc/internal/parser"
	"github.com/hmwill/glslesc/internal/prelude"
	"github.com/hmwill/glslesc/internal/preprocessor"
	"github.com/hmwill/glslesc/internal/sessionid"
	"github.com/hmwill/glslesc/internal/symbols"
)

// ShaderKind distinguishes the vertex and fragment pipeline stages (spec
// §6.2). It is package lower's own enum: the lowerer already needs to know
// which kind it is lowering for, so this package reuses that type instead
// of introducing a third parallel copy alongside prelude.ShaderKind.
type ShaderKind = lower.ShaderKind

const (
	Vertex   = lower.Vertex
	Fragment = lower.Fragment
)

// Shader is the driver's Shader object (spec §6.2): a kind, the
// concatenated source text, an appendable diagnostic log, and the IL slot
// the core fills in on success.
type Shader struct {
	Kind   ShaderKind
	Source string
	Log    diag.Log
	IL     string
}

// NewShader builds a Shader ready for CompileShader.
func NewShader(kind ShaderKind, source string) *Shader {
	return &Shader{Kind: kind, Source: source}
}

// Compiler is the caller-owned driver state of spec §6.1. It is not
// reentrant on the same value and carries no state beyond the two pragma
// flags, an optional loaded config, and a session identifier that callers
// such as internal/devserver report alongside its results. CompileShader
// does not pass the pragma flags to the preprocessor.
type Compiler struct {
	debug    bool
	optimize bool
	session  sessionid.ID
	cfg      config.Config
}

// NewCompiler is compiler_create with no driver_state to thread through:
// this port's allocator is the Go heap, so there is nothing else to hold
// beyond a freshly minted session identifier.
func NewCompiler() *Compiler { return &Compiler{session: sessionid.New()} }

// NewCompilerWithConfig is compiler_create seeded from a loaded glslesc.yaml
// (SPEC_FULL.md's Configuration section): cfg's debug/optimize become this
// Compiler's initial pragma state (a later PragmaDebug/PragmaOptimize call
// overrides it), and cfg's per-stage precision defaults are inserted into
// the prelude right after the built-in precision defaults on every compile
// (see prependPrelude).
func NewCompilerWithConfig(cfg config.Config) *Compiler {
	return &Compiler{session: sessionid.New(), debug: cfg.Debug, optimize: cfg.Optimize, cfg: cfg}
}

// SessionID returns the identifier stamped on this Compiler at creation.
func (c *Compiler) SessionID() sessionid.ID { return c.session }

// PragmaDebug is pragma_debug(c, on/off).
func (c *Compiler) PragmaDebug(on bool) { c.debug = on }

// PragmaOptimize is pragma_optimize(c, on/off).
func (c *Compiler) PragmaOptimize(on bool) { c.optimize = on }

// ilHeader is the literal banner spec §6.5 requires at the start of every
// emitted IL byte string.
const ilHeader = "# ------------------------------------------------------------\n" +
	"# IL Output\n" +
	"# ------------------------------------------------------------\n"

// CompileShader runs the six-step front-end pipeline of spec §4.9 over
// shader.Source. On success it returns true with shader.IL populated and
// shader.Log untouched; on failure it returns false with at least one
// diagnostic appended to shader.Log and shader.IL left empty — no partial
// IL is ever surfaced (spec §7). The three compilation arenas (expr,
// module, result) are released before return on every path, including the
// one taken when an allocator panics with *arena.OutOfMemory.
func CompileShader(c *Compiler, shader *Shader) (ok bool) {
	exprArena := arena.New("expr", 0)
	moduleArena := arena.New("module", 0)
	resultArena := arena.New("result", 0)

	defer func() {
		exprArena.Reset()
		moduleArena.Reset()
		resultArena.Reset()
		if r := recover(); r != nil {
			if _, isOOM := r.(*arena.OutOfMemory); !isOOM {
				panic(r)
			}
			shader.Log.Append(diag.New(diag.I0001, 0))
			shader.IL = ""
			ok = false
		}
	}()

	pp := preprocessor.New(&shader.Log)
	src := prependPrelude(shader.Kind, c.cfg, shader.Source)
	src = pp.Process(src)
	if shader.Log.HasErrors() {
		return false
	}

	toks := lexer.Lex(src, &shader.Log)
	if shader.Log.HasErrors() {
		return false
	}

	global := symbols.NewScope(nil, symbols.ScopeGlobal)
	prelude.RegisterBuiltinVariables(global, preludeKind(shader.Kind))
	prog := ir.NewProgram()

	ps := parser.New(toks, &shader.Log)
	tu := ps.ParseTranslationUnit()
	if shader.Log.HasErrors() {
		return false
	}

	lw := lower.New(prog, global, &shader.Log, shader.Kind)
	lw.LowerTranslationUnit(tu)
	if shader.Log.HasErrors() {
		return false
	}

	if !checkMain(global, &shader.Log) {
		return false
	}
	if !checkFunctionsDefined(prog, &shader.Log) {
		return false
	}

	shader.IL = ilHeader + iltext.Write(prog)
	return true
}

// prependPrelude assembles the four built-in strings ahead of the user's
// source, in the fixed order of spec §6.3. A loaded glslesc.yaml's per-stage
// precision defaults (config.StageConfig.Precision) are inserted between the
// built-in precision defaults and the builtin declarations, so they override
// the built-in defaults but can still be shadowed by an explicit precision
// statement in the user's own source, same as any other "later wins" scoping
// rule in spec §3.2.
func prependPrelude(kind ShaderKind, cfg config.Config, source string) string {
	if kind == Vertex {
		return prelude.PrecisionVertex + precisionOverrides(cfg.Vertex.Precision) + prelude.Common + prelude.VertexBuiltins + source
	}
	return prelude.PrecisionFragment + precisionOverrides(cfg.Fragment.Precision) + prelude.Common + prelude.FragmentBuiltins + source
}

// precisionOverrides renders any non-empty precision defaults in pd as
// "precision <qualifier> <type>;" statements, one per configured type.
func precisionOverrides(pd config.PrecisionDefaults) string {
	var b strings.Builder
	emit := func(qualifier, typeName string) {
		if qualifier != "" {
			b.WriteString("precision ")
			b.WriteString(qualifier)
			b.WriteString(" ")
			b.WriteString(typeName)
			b.WriteString(";\n")
		}
	}
	emit(pd.Float, "float")
	emit(pd.Int, "int")
	emit(pd.Sampler2D, "sampler2D")
	emit(pd.Sampler3D, "sampler3D")
	emit(pd.SamplerCube, "samplerCube")
	return b.String()
}

func preludeKind(kind ShaderKind) prelude.ShaderKind {
	if kind == Vertex {
		return prelude.Vertex
	}
	return prelude.Fragment
}

// checkMain verifies spec §4.9 step 5's entry-point requirement: exactly
// one "void main()" with no overloads and no parameters.
func checkMain(global *symbols.Scope, log *diag.Log) bool {
	sym := global.Find("main")
	if sym == nil || sym.Qualifier != symbols.QualFunction {
		log.Append(diag.New(diag.S0029, 0))
		return false
	}
	fi := sym.Function
	if len(fi.Overloads) != 0 || fi.ParamCount != 0 || sym.Type == nil || sym.Type.Kind != gltype.KindVoid {
		log.Append(diag.New(diag.S0029, 0))
		return false
	}
	return true
}

// checkFunctionsDefined catches functions that are called through a
// forward-declared prototype but never given a body: such a call leaves an
// ir.Label created (for the forward reference) but never bound, the same
// condition internal/iltext's reader rejects for a truncated IL program.
// Names are sorted before reporting so the diagnostic order does not
// depend on Go's randomized map iteration.
func checkFunctionsDefined(prog *ir.Program, log *diag.Log) bool {
	var unresolved []string
	for name, l := range prog.Labels {
		if l.Target == nil {
			unresolved = append(unresolved, name)
		}
	}
	if len(unresolved) == 0 {
		return true
	}
	sort.Strings(unresolved)
	for _, name := range unresolved {
		log.Append(diag.Named(diag.S0100, 0, strings.TrimPrefix(name, "fn_")))
	}
	return false
}

// errCompileFailed marks a failed compile inside CompileShaderCached's
// GetOrCompile closure, so ilcache.Cache never stores an empty string as if
// it were valid IL for that key — a diagnostic failure must be retried, not
// cached.
var errCompileFailed = errors.New("shaderc: compile failed")

// kindLabel renders a ShaderKind as the stable string internal/ilcache keys
// on, independent of how lower.ShaderKind happens to be represented.
func kindLabel(kind ShaderKind) string {
	if kind == Vertex {
		return "vertex"
	}
	return "fragment"
}

// CompileShaderCached behaves exactly like CompileShader, except that a
// successful compile's IL text is looked up in and stored back to cache,
// keyed on shader kind, the prelude version and the exact source text (spec
// §6.2's repeated State/Shader compilation pattern). A cache hit skips the
// entire pipeline and leaves shader.Log empty, matching a fresh successful
// compile's postcondition. A cache miss runs CompileShader as usual and
// populates the cache only on success — a failed compile is never cached, so
// a later retry (e.g. after the caller fixes an unrelated build issue and
// recompiles the same broken source) still reports diagnostics rather than a
// stale "not ok" with no log.
func CompileShaderCached(ctx context.Context, c *Compiler, cache *ilcache.Cache, shader *Shader) (bool, error) {
	key := ilcache.Key(kindLabel(shader.Kind), prelude.Version, shader.Source)

	il, err := cache.GetOrCompile(ctx, key, func() (string, error) {
		if !CompileShader(c, shader) {
			return "", errCompileFailed
		}
		return shader.IL, nil
	})
	if errors.Is(err, errCompileFailed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	shader.IL = il
	return true, nil
}
