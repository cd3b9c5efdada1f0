package shaderc

import (
	"context"
	"strings"
	"testing"

	"github.com/hmwill/glslesc/internal/config"
	"github.com/hmwill/glslesc/internal/ilcache"
)

func compile(t *testing.T, kind ShaderKind, source string) *Shader {
	t.Helper()
	shader := NewShader(kind, source)
	ok := CompileShader(NewCompiler(), shader)
	if !ok {
		t.Fatalf("CompileShader failed: %s", shader.Log.String())
	}
	return shader
}

func TestCompileShader_VertexMvpTransform(t *testing.T) {
	shader := compile(t, Vertex, `
		attribute vec4 aPos;
		uniform mat4 uMvp;
		void main() { gl_Position = uMvp * aPos; }
	`)

	if !strings.HasPrefix(shader.IL, ilHeader) {
		t.Errorf("IL missing the required banner:\n%s", shader.IL)
	}
	if !strings.Contains(shader.IL, "INPUT") {
		t.Errorf("expected an INPUT declaration for aPos, got:\n%s", shader.IL)
	}
	if !strings.Contains(shader.IL, "@ATTRIB") {
		t.Errorf("expected aPos bound to the ATTRIB segment, got:\n%s", shader.IL)
	}
	if !strings.Contains(shader.IL, "PARAM") {
		t.Errorf("expected a PARAM declaration for uMvp, got:\n%s", shader.IL)
	}
	if !strings.Contains(shader.IL, "OUTPUT") {
		t.Errorf("expected an OUTPUT declaration for gl_Position, got:\n%s", shader.IL)
	}
	if n := strings.Count(shader.IL, "DP4"); n != 4 {
		t.Errorf("expected four DP4 instructions for the matrix-vector product, got %d:\n%s", n, shader.IL)
	}
}

func TestCompileShader_FragmentFlatColor(t *testing.T) {
	shader := compile(t, Fragment, `
		uniform vec4 uColor;
		void main() { gl_FragColor = uColor; }
	`)

	if !strings.Contains(shader.IL, "gl_FragColor") {
		t.Errorf("expected gl_FragColor to appear in the declarations, got:\n%s", shader.IL)
	}
}

func TestCompileShader_PreludeMathFunction(t *testing.T) {
	shader := compile(t, Fragment, `
		void main() { gl_FragColor = vec4(sin(1.0)); }
	`)

	if !strings.Contains(shader.IL, "SIN") {
		t.Errorf("expected the prelude's sin() to lower to a SIN instruction, got:\n%s", shader.IL)
	}
}

func TestCompileShader_MissingMainRejected(t *testing.T) {
	shader := NewShader(Fragment, `void notMain() {}`)
	if CompileShader(NewCompiler(), shader) {
		t.Fatalf("expected failure for a shader with no main(), got IL:\n%s", shader.IL)
	}
	if !strings.Contains(shader.Log.String(), "S0029") {
		t.Errorf("expected S0029 in the log, got: %s", shader.Log.String())
	}
	if shader.IL != "" {
		t.Errorf("expected no partial IL on failure, got:\n%s", shader.IL)
	}
}

func TestCompileShader_DirectRecursionRejected(t *testing.T) {
	shader := NewShader(Fragment, `
		int f(int n) { return f(n - 1); }
		void main() { gl_FragColor = vec4(float(f(3))); }
	`)
	if CompileShader(NewCompiler(), shader) {
		t.Fatalf("expected failure for a directly recursive function, got IL:\n%s", shader.IL)
	}
	log := shader.Log.String()
	if !strings.Contains(log, "S0055") || !strings.Contains(log, "f") {
		t.Errorf("expected S0055 naming f, got: %s", log)
	}
}

func TestCompileShader_UndefinedFunctionRejected(t *testing.T) {
	shader := NewShader(Fragment, `
		void helper();
		void main() { helper(); gl_FragColor = vec4(0.0); }
	`)
	if CompileShader(NewCompiler(), shader) {
		t.Fatalf("expected failure for a declared-but-undefined function, got IL:\n%s", shader.IL)
	}
	log := shader.Log.String()
	if !strings.Contains(log, "S0100") || !strings.Contains(log, "helper") {
		t.Errorf("expected S0100 naming helper, got: %s", log)
	}
}

func TestCompileShader_ConfigPrecisionOverride(t *testing.T) {
	cfg := config.Config{
		Fragment: config.StageConfig{
			Precision: config.PrecisionDefaults{Float: "highp"},
		},
	}
	shader := NewShader(Fragment, `void main() { gl_FragColor = vec4(0.0); }`)
	if !CompileShader(NewCompilerWithConfig(cfg), shader) {
		t.Fatalf("CompileShader failed: %s", shader.Log.String())
	}
}

func TestCompileShaderCached_HitsAndMisses(t *testing.T) {
	cache, err := ilcache.Open(":memory:")
	if err != nil {
		t.Fatalf("ilcache.Open: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	src := `void main() { gl_FragColor = vec4(0.0); }`

	shader := NewShader(Fragment, src)
	ok, err := CompileShaderCached(ctx, NewCompiler(), cache, shader)
	if err != nil || !ok {
		t.Fatalf("first compile: ok=%v err=%v log=%s", ok, err, shader.Log.String())
	}
	firstIL := shader.IL

	shader2 := NewShader(Fragment, src)
	ok, err = CompileShaderCached(ctx, NewCompiler(), cache, shader2)
	if err != nil || !ok {
		t.Fatalf("second compile (expected cache hit): ok=%v err=%v", ok, err)
	}
	if shader2.IL != firstIL {
		t.Errorf("expected cached IL to match original, got:\n%s\nwant:\n%s", shader2.IL, firstIL)
	}
	if shader2.Log.HasErrors() {
		t.Errorf("expected no diagnostics on a cache hit, got: %s", shader2.Log.String())
	}
}

func TestCompileShaderCached_FailureNotCached(t *testing.T) {
	cache, err := ilcache.Open(":memory:")
	if err != nil {
		t.Fatalf("ilcache.Open: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	src := `void notMain() {}`

	shader := NewShader(Fragment, src)
	ok, err := CompileShaderCached(ctx, NewCompiler(), cache, shader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected failure for a shader with no main()")
	}
	if !strings.Contains(shader.Log.String(), "S0029") {
		t.Errorf("expected S0029 in the log, got: %s", shader.Log.String())
	}

	shader2 := NewShader(Fragment, src)
	ok, err = CompileShaderCached(ctx, NewCompiler(), cache, shader2)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if ok {
		t.Fatalf("expected the retry to fail again rather than return a cached empty success")
	}
	if !strings.Contains(shader2.Log.String(), "S0029") {
		t.Errorf("expected S0029 on the retry too, got: %s", shader2.Log.String())
	}
}

func TestCompileShader_PreprocessorArithmetic(t *testing.T) {
	shader := compile(t, Vertex, `
		#define N 3
		#if (N + 1) * 2 == 8
		int x = 1;
		#else
		int x = 0;
		#endif
		void main(){ gl_Position = vec4(float(x)); }
	`)
	if !strings.Contains(shader.IL, "=1;") && !strings.Contains(shader.IL, "=1.0;") && !strings.Contains(shader.IL, "={1") {
		t.Errorf("expected the folded constant 1 in the constant pool, got:\n%s", shader.IL)
	}
	if strings.Contains(shader.IL, "=0.0;") || strings.Contains(shader.IL, "=0;") {
		t.Errorf("did not expect the #else branch's 0 to appear, got:\n%s", shader.IL)
	}
}

func TestCompileShader_DynamicVectorIndexRejected(t *testing.T) {
	shader := NewShader(Fragment, `
		void main() {
			vec4 v;
			int i;
			gl_FragColor = vec4(v[i]);
		}
	`)
	if CompileShader(NewCompiler(), shader) {
		t.Fatalf("expected failure for a dynamically indexed vector, got IL:\n%s", shader.IL)
	}
	if !strings.Contains(shader.Log.String(), "X0005") {
		t.Errorf("expected X0005 in the log, got: %s", shader.Log.String())
	}
}

func TestCompileShader_ForLoopTripCount(t *testing.T) {
	shader := compile(t, Fragment, `
		void main() {
			float sum = 0.0;
			for (int i = 0; i < 10; ++i) sum += float(i);
			gl_FragColor = vec4(sum);
		}
	`)
	if !strings.Contains(shader.IL, "REP 10;") {
		t.Errorf("expected REP 10, got:\n%s", shader.IL)
	}
	if !strings.Contains(shader.IL, "ENDREP;") {
		t.Errorf("expected ENDREP, got:\n%s", shader.IL)
	}
}

func TestCompileShader_ForLoopUnboundedRejected(t *testing.T) {
	shader := NewShader(Fragment, `
		void main() {
			float sum = 0.0;
			for (int i = 0; i < 0; ++i) sum += float(i);
			gl_FragColor = vec4(sum);
		}
	`)
	if CompileShader(NewCompiler(), shader) {
		t.Fatalf("expected failure for an empty-range loop, got IL:\n%s", shader.IL)
	}
	if !strings.Contains(shader.Log.String(), "X0008") {
		t.Errorf("expected X0008 in the log, got: %s", shader.Log.String())
	}
}

func TestCompileShader_ForLoopNonWholeTripCountRejected(t *testing.T) {
	shader := NewShader(Fragment, `
		void main() {
			float sum = 0.0;
			for (int i = 0; i != 10; i += 3) sum += float(i);
			gl_FragColor = vec4(sum);
		}
	`)
	if CompileShader(NewCompiler(), shader) {
		t.Fatalf("expected failure for a non-whole trip count, got IL:\n%s", shader.IL)
	}
	if !strings.Contains(shader.Log.String(), "X0007") {
		t.Errorf("expected X0007 in the log, got: %s", shader.Log.String())
	}
}

func TestCompileShader_SwizzleAssignability(t *testing.T) {
	shader := compile(t, Fragment, `
		void main() {
			vec3 v;
			v.xy = vec2(1.0);
			gl_FragColor = vec4(v, 1.0);
		}
	`)
	if !strings.Contains(shader.IL, "MOV") {
		t.Errorf("expected a masked MOV for the swizzle write, got:\n%s", shader.IL)
	}
}

func TestCompileShader_DuplicateSwizzleComponentsRejected(t *testing.T) {
	shader := NewShader(Fragment, `
		void main() {
			vec3 v;
			v.xx = vec2(1.0);
			gl_FragColor = vec4(v, 1.0);
		}
	`)
	if CompileShader(NewCompiler(), shader) {
		t.Fatalf("expected failure for a duplicate-component swizzle target, got IL:\n%s", shader.IL)
	}
	if !strings.Contains(shader.Log.String(), "S0037") {
		t.Errorf("expected S0037 in the log, got: %s", shader.Log.String())
	}
}

func TestCompileShader_StructFieldAssign(t *testing.T) {
	shader := compile(t, Fragment, `
		struct Light { vec3 color; float intensity; };
		void main() {
			Light l;
			l.color = vec3(1.0, 0.0, 0.0);
			l.intensity = 2.0;
			gl_FragColor = vec4(l.color * l.intensity, 1.0);
		}
	`)
	if !strings.Contains(shader.IL, "TEMP") {
		t.Errorf("expected flattened struct leaves to appear as TEMP declarations, got:\n%s", shader.IL)
	}
}

func TestCompiler_Pragmas(t *testing.T) {
	c := NewCompiler()
	c.PragmaDebug(true)
	c.PragmaOptimize(true)
	if !c.debug || !c.optimize {
		t.Fatalf("expected both pragma flags to be recorded")
	}
	c.PragmaDebug(false)
	if c.debug {
		t.Fatalf("expected PragmaDebug(false) to clear the flag")
	}
}
