// Package diag defines the compiler's diagnostic code taxonomy (spec §6.4)
// and the Diagnostic/Log types used to report it. The code -> message table
// is reproduced from the original compiler's ErrorMessages table rather than
// re-derived, since spec.md commits only to "a fixed single-line string" per
// code.
package diag

import (
	"fmt"
	"strings"
)

// Code identifies one diagnostic in the I/P/L/S/X/W families.
type Code string

// Severity classifies a Code for display purposes.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

const (
	I0000 Code = "I0000"
	I0001 Code = "I0001"

	P0001 Code = "P0001"
	P0002 Code = "P0002"
	P0003 Code = "P0003"
	P0004 Code = "P0004"
	P0005 Code = "P0005"
	P0006 Code = "P0006"
	P0007 Code = "P0007"
	P0008 Code = "P0008"
	P0009 Code = "P0009"
	P0010 Code = "P0010"
	P0011 Code = "P0011"
	P0012 Code = "P0012"
	P0013 Code = "P0013"

	L0001 Code = "L0001"
	L0002 Code = "L0002"
	L0003 Code = "L0003"

	S0001 Code = "S0001"
	S0002 Code = "S0002"
	S0003 Code = "S0003"
	S0004 Code = "S0004"
	S0005 Code = "S0005"
	S0006 Code = "S0006"
	S0007 Code = "S0007"
	S0008 Code = "S0008"
	S0009 Code = "S0009"
	S0010 Code = "S0010"
	S0011 Code = "S0011"
	S0012 Code = "S0012"
	S0013 Code = "S0013"
	S0014 Code = "S0014"
	S0015 Code = "S0015"
	S0016 Code = "S0016"
	S0017 Code = "S0017"
	S0018 Code = "S0018"
	S0019 Code = "S0019"
	S0020 Code = "S0020"
	S0021 Code = "S0021"
	S0022 Code = "S0022"
	S0023 Code = "S0023"
	S0024 Code = "S0024"
	S0025 Code = "S0025"
	S0026 Code = "S0026"
	S0027 Code = "S0027"
	S0028 Code = "S0028"
	S0029 Code = "S0029"
	S0030 Code = "S0030"
	S0031 Code = "S0031"
	S0032 Code = "S0032"
	S0033 Code = "S0033"
	S0034 Code = "S0034"
	S0035 Code = "S0035"
	S0037 Code = "S0037"
	S0038 Code = "S0038"
	S0039 Code = "S0039"
	S0040 Code = "S0040"
	S0041 Code = "S0041"
	S0042 Code = "S0042"
	S0043 Code = "S0043"
	S0044 Code = "S0044"
	S0045 Code = "S0045"
	S0046 Code = "S0046"
	S0047 Code = "S0047"
	S0048 Code = "S0048"
	S0049 Code = "S0049"
	S0050 Code = "S0050"
	S0051 Code = "S0051"
	S0052 Code = "S0052"
	S0053 Code = "S0053"
	S0054 Code = "S0054"
	S0055 Code = "S0055"
	S0100 Code = "S0100"

	X0001 Code = "X0001"
	X0002 Code = "X0002"
	X0003 Code = "X0003"
	X0004 Code = "X0004"
	X0005 Code = "X0005"
	X0006 Code = "X0006"
	X0007 Code = "X0007"
	X0008 Code = "X0008"
	X0009 Code = "X0009"

	W0001 Code = "W0001"
	W0002 Code = "W0002"
)

// messages is the fixed single-line text per code, reproduced from the
// original compiler's ErrorMessages table.
var messages = map[Code]string{
	I0000: "Internal compiler error",
	I0001: "Out of memory error",

	P0001: "Preprocessor syntax error",
	P0002: "",
	P0003: "#extension if a required extension extension_name is not supported, or if all is specified.",
	P0004: "High Precision not supported",
	P0005: "#version must be the 1st directive/statement in a program",
	P0006: "#line has wrong parameters",
	P0007: "Unsupported #version number",
	P0008: "#extension must be the 1st directive/statement in a program",
	P0009: "Duplicate macro definition",
	P0010: "Too many parameters for macro definition",
	P0011: "Maximum nesting depth of conditionals exceeded",
	P0012: "Maximum nesting depth for macro expansion exceeded",
	P0013: "Floating point arithmetic not allowed in preprocessor expressions",

	L0001: "Syntax error",
	L0002: "Undefined identifier.",
	L0003: "Use of reserved keywords",

	S0001: "Type mismatch in expression. e.g. 1 + 1.0;",
	S0002: "Array parameter must be an integer",
	S0003: "if parameter must be a bool",
	S0004: "Operator not supported for operand types (e.g. mat4 * vec3)",
	S0005: "?: parameter must be a bool",
	S0006: "2nd and 3rd parameters of ?: must have the same type",
	S0007: "Wrong arguments for constructor.",
	S0008: "Argument unused in constructor",
	S0009: "Too few arguments for constructor",
	S0010: "Cannot construct matrices from matrices",
	S0011: "Arguments in wrong order for struct constructor",
	S0012: "Expression must be a constant expression",
	S0013: "Initializer for const value must be a constant expression.",
	S0014: "Initializer for global variable must be a constant expression.",
	S0015: "Expression must be an integral constant expression",
	S0016: "Non-const index used to access unsized array",
	S0017: "Array size must be greater thn zero.",
	S0018: "Re-declaration of parameter type with different array size.",
	S0019: "Indexing an array with a non constant integral expression before its size has been declared.",
	S0020: "Indexing an array with an integral constant expression greater than its declared size.",
	S0021: "Indexing an array with a negative integral constant expression",
	S0022: "Redefinition of variable in same scope",
	S0023: "Redefinition of function in same scope",
	S0024: "Redefinition of name in same scope (e.g. declaring a function with the same name as a struct)",
	S0025: "Field selectors must be from the same set (cannot mix xyzw with rgba)",
	S0026: "Illegal field selector (e.g. using .z with a vec2)",
	S0027: "Target of assignment is not an lvalue",
	S0028: "Precision used with type other than int or float.",
	S0029: "Declaring a main function with the wrong signature or return type.",
	S0030: "Vertex shader does not compute the position of the vertex.",
	S0031: "const variable does not have initializer",
	S0032: "Use of float or int without a precision qualifier where the default precision is not defined.",
	S0033: "Expression that does not have an intrinsic precision where the default precision is not defined.",
	S0034: "Only output variables can be declared invariant",
	S0035: "All uses of invariant must be at the global scope",
	S0037: "L-value contains duplicate components (e.g. v.xx = q);",
	S0038: "Function declared with a return value but return statement has no argument.",
	S0039: "Function declared void but return statement has an argument",
	S0040: "Function declared with a return value but not all paths return a value.",
	S0041: "Function return type is an array.",
	S0042: "Return type of function definition must match return type of function declaration.",
	S0043: "Parameter qualifiers of function definition must match parameter qualifiers of function declaration.",
	S0044: "Declaring an attribute outside of a vertex shader",
	S0045: "Declaring an attribute inside a function",
	S0046: "Declaring a uniform inside a function",
	S0047: "Declaring a varying inside a function",
	S0048: "Illegal data type for varying (can only use float, vec2, vec3, vec4, mat2, mat3, and mat4 or arrays thereof).",
	S0049: "Illegal data type for attribute (can only use float, vec2, vec3, vec4, mat2, mat3, and mat4).",
	S0050: "Initializer for attribute",
	S0051: "Initializer for varying",
	S0052: "Initializer for uniform",
	S0053: "Invalid type for conditional expression",
	S0054: "Type mismatch for conditional expression",
	S0055: "Recursive function calls are not allowed: ",
	S0100: "Incomplete shader source (missing function definitions): ",

	X0001: "While and do-while loops not supported in this version",
	X0002: "Continue not supported in this version",
	X0003: "Loop index can be incremented only once",
	X0004: "Loop index variable must be of type int or float",
	X0005: "Dynamic indexing of vectors and matrices not implemented yet",
	X0006: "Loop index variable must be initialized to constant expression",
	X0007: "Loop index variable must be incremented with and compared to constant values",
	X0008: "Loop must be properly bounded and have at least one iteration",
	X0009: "Nesting depth for function calls exceeded",

	W0001: "Potentially unreachable statement",
	W0002: "Function not guaranteed to return a value",
}

// Message returns the fixed text for a code.
func Message(c Code) string { return messages[c] }

// Severity classifies a code as a warning or an error; only the W-family is
// a warning (spec §6.4/§7).
func (c Code) Severity() Severity {
	if strings.HasPrefix(string(c), "W") {
		return SeverityWarning
	}
	return SeverityError
}

// Diagnostic is one entry in a shader's compile log.
type Diagnostic struct {
	Code   Code
	Line   int
	Detail string // appended text: symbol name for S0055/S0100, free text for P0002
}

// String renders a diagnostic the way it is appended to the compile log:
// "<code>: <message>[<detail>]".
func (d Diagnostic) String() string {
	msg := Message(d.Code)
	if d.Detail != "" {
		if msg == "" {
			return fmt.Sprintf("%s: %s", d.Code, d.Detail)
		}
		return fmt.Sprintf("%s: %s%s", d.Code, msg, d.Detail)
	}
	return fmt.Sprintf("%s: %s", d.Code, msg)
}

// Error implements error, letting a Diagnostic be threaded through Go's
// normal error-return idiom for soft failures (spec §7).
func (d Diagnostic) Error() string { return d.String() }

// New builds a plain diagnostic with no extra detail.
func New(code Code, line int) Diagnostic {
	return Diagnostic{Code: code, Line: line}
}

// Named builds a diagnostic with an offending-symbol suffix, used by S0055
// and S0100.
func Named(code Code, line int, name string) Diagnostic {
	return Diagnostic{Code: code, Line: line, Detail: name}
}

// Text builds a diagnostic with caller-provided free text, used by P0002.
func Text(code Code, line int, text string) Diagnostic {
	return Diagnostic{Code: code, Line: line, Detail: text}
}

// Log accumulates diagnostics in encounter order — the shader's compile log
// of spec §6.1/§6.4.
type Log struct {
	entries []Diagnostic
}

// Append records one diagnostic.
func (l *Log) Append(d Diagnostic) { l.entries = append(l.entries, d) }

// HasErrors reports whether any non-warning diagnostic was recorded.
func (l *Log) HasErrors() bool {
	for _, d := range l.entries {
		if d.Code.Severity() == SeverityError {
			return true
		}
	}
	return false
}

// Entries returns the accumulated diagnostics in order.
func (l *Log) Entries() []Diagnostic {
	out := make([]Diagnostic, len(l.entries))
	copy(out, l.entries)
	return out
}

// String renders the whole log, one diagnostic per line.
func (l *Log) String() string {
	var b strings.Builder
	for _, d := range l.entries {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}
