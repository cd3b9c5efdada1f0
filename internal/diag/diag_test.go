package diag

import (
	"strings"
	"testing"
)

func TestSeverityWarningVsError(t *testing.T) {
	if W0001.Severity() != SeverityWarning {
		t.Errorf("expected W0001 to be a warning")
	}
	if S0001.Severity() != SeverityError {
		t.Errorf("expected S0001 to be an error")
	}
}

func TestLogHasErrorsIgnoresWarnings(t *testing.T) {
	var log Log
	log.Append(New(W0001, 1))
	if log.HasErrors() {
		t.Errorf("expected HasErrors() false with only a warning recorded")
	}
	log.Append(New(S0027, 2))
	if !log.HasErrors() {
		t.Errorf("expected HasErrors() true once an error is recorded")
	}
}

func TestNamedDiagnosticIncludesDetail(t *testing.T) {
	d := Named(S0055, 4, "f")
	if !strings.Contains(d.String(), "f") {
		t.Errorf("expected Named diagnostic to include the name, got: %s", d.String())
	}
	if !strings.Contains(d.String(), "S0055") {
		t.Errorf("expected the code to appear in the string, got: %s", d.String())
	}
}

func TestLogStringOrderPreserved(t *testing.T) {
	var log Log
	log.Append(New(X0005, 1))
	log.Append(New(X0007, 2))
	s := log.String()
	if strings.Index(s, "X0005") > strings.Index(s, "X0007") {
		t.Errorf("expected diagnostics in append order, got: %s", s)
	}
}
