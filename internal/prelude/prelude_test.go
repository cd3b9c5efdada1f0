package prelude

import (
	"strings"
	"testing"

	"github.com/hmwill/glslesc/internal/symbols"
)

func TestRegisterBuiltinVariablesVertex(t *testing.T) {
	scope := symbols.NewScope(nil, symbols.ScopeGlobal)
	RegisterBuiltinVariables(scope, Vertex)
	if scope.Find("gl_Position") == nil {
		t.Errorf("expected gl_Position to be registered for the vertex stage")
	}
	if scope.Find("gl_FragColor") != nil {
		t.Errorf("did not expect gl_FragColor to be registered for the vertex stage")
	}
}

func TestRegisterBuiltinVariablesFragment(t *testing.T) {
	scope := symbols.NewScope(nil, symbols.ScopeGlobal)
	RegisterBuiltinVariables(scope, Fragment)
	if scope.Find("gl_FragColor") == nil {
		t.Errorf("expected gl_FragColor to be registered for the fragment stage")
	}
	if scope.Find("gl_Position") != nil {
		t.Errorf("did not expect gl_Position to be registered for the fragment stage")
	}
}

func TestPreludeTextNonEmpty(t *testing.T) {
	if strings.TrimSpace(Common) == "" {
		t.Errorf("expected Common prelude text to be non-empty")
	}
	if strings.TrimSpace(PrecisionVertex) == "" {
		t.Errorf("expected PrecisionVertex text to be non-empty")
	}
}
