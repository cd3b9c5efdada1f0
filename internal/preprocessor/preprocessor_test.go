package preprocessor

import (
	"strings"
	"testing"

	"github.com/hmwill/glslesc/internal/diag"
)

func process(t *testing.T, src string) (string, *Preprocessor) {
	t.Helper()
	var log diag.Log
	pp := New(&log)
	out := pp.Process(src)
	if log.HasErrors() {
		t.Fatalf("unexpected preprocessor errors: %s", log.String())
	}
	return out, pp
}

func TestObjectMacroExpansion(t *testing.T) {
	out, _ := process(t, "#define N 3\nint x = N;")
	if !strings.Contains(out, "3") {
		t.Errorf("expected N to expand to 3, got: %q", out)
	}
}

func TestFunctionMacroExpansion(t *testing.T) {
	out, _ := process(t, "#define ADD(a, b) ((a) + (b))\nint x = ADD(1, 2);")
	if !strings.Contains(out, "((1) + (2))") {
		t.Errorf("expected function-like macro expansion, got: %q", out)
	}
}

func TestIfArithmeticTakesThenBranch(t *testing.T) {
	out, _ := process(t, "#define N 3\n#if (N + 1) * 2 == 8\nint x = 1;\n#else\nint x = 0;\n#endif\n")
	if !strings.Contains(out, "x = 1") {
		t.Errorf("expected the then-branch to survive, got: %q", out)
	}
	if strings.Contains(out, "x = 0") {
		t.Errorf("did not expect the else-branch to survive, got: %q", out)
	}
}

func TestIfElseTakesElseBranch(t *testing.T) {
	out, _ := process(t, "#if 0\nint x = 1;\n#else\nint x = 2;\n#endif\n")
	if !strings.Contains(out, "x = 2") || strings.Contains(out, "x = 1") {
		t.Errorf("expected only the else-branch to survive, got: %q", out)
	}
}

func TestPragmaDebugAndOptimize(t *testing.T) {
	_, pp := process(t, "#pragma debug(on)\n#pragma optimize(off)\nvoid main(){}\n")
	if !pp.Debug() {
		t.Errorf("expected Debug() true after #pragma debug(on)")
	}
	if pp.Optimize() {
		t.Errorf("expected Optimize() false after #pragma optimize(off)")
	}
}

func TestDefinedOperator(t *testing.T) {
	out, _ := process(t, "#define FOO\n#if defined(FOO)\nint x = 1;\n#endif\n")
	if !strings.Contains(out, "x = 1") {
		t.Errorf("expected defined(FOO) to be true, got: %q", out)
	}
}
