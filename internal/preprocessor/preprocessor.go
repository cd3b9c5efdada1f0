// Package preprocessor implements the GLSL ES preprocessor (component E,
// spec §4.5.3): macro definition/expansion with cycle suppression, the
// conditional-compilation stack, and the integer-only #if expression
// evaluator. It is a from-scratch rewrite of the teacher's text-substitution
// preprocessor.go — the teacher only handles #include and object/function
// macros; this generalizes that substitution engine (applyDefines' paren-
// depth-aware argument splitting, disable-while-expanding recursion guard)
// to the full directive set GLSL ES requires, dropping #include entirely
// (shader sources are single translation units with no file system).
package preprocessor

import (
	"strconv"
	"strings"

	"github.com/hmwill/glslesc/internal/diag"
	"github.com/hmwill/glslesc/internal/lexer"
)

const (
	maxConditionalDepth = 64
	maxExpansionDepth   = 256
)

// Macro is one #define'd name.
type Macro struct {
	Params   []string // nil for object-like macros
	Variadic bool     // unused by GLSL ES; kept for symmetry with the grammar
	Body     string
}

// Preprocessor holds macro state across the whole translation unit.
type Preprocessor struct {
	macros map[string]*Macro
	log    *diag.Log
	line   int
	file   int

	sawNonDirective bool // for #version/#extension "must be first" checks
	debug           bool
	optimize        bool
}

// New creates a preprocessor with an empty macro table, appending
// diagnostics to log. __LINE__ and __FILE__ are substituted by expand
// rather than stored as macros.
func New(log *diag.Log) *Preprocessor {
	p := &Preprocessor{macros: map[string]*Macro{}, log: log, line: 1}
	return p
}

// Debug reports whether `#pragma debug(on)` was seen.
func (p *Preprocessor) Debug() bool { return p.debug }

// Optimize reports whether `#pragma optimize(on)` was seen (off until such
// a pragma appears, and turned off again by `#pragma optimize(off)`).
func (p *Preprocessor) Optimize() bool { return p.optimize }

type condFrame struct {
	inElse        bool
	currentlyTrue bool
	wasTrue       bool
}

// Process runs the preprocessor over src and returns the macro-expanded
// source text ready for lexing: directive lines have been consumed, and
// line breaks are kept so later diagnostics report source line numbers.
func (p *Preprocessor) Process(src string) string {
	var stack []condFrame
	var out strings.Builder

	active := func() bool {
		for _, f := range stack {
			if !f.currentlyTrue {
				return false
			}
		}
		return true
	}

	lines := strings.Split(src, "\n")
	for i, raw := range lines {
		p.line = i + 1
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "#") {
			p.directive(trimmed[1:], &stack, active)
			out.WriteByte('\n')
			continue
		}
		if active() {
			p.sawNonDirective = p.sawNonDirective || trimmed != ""
			out.WriteString(p.expand(raw, map[string]bool{}, 0))
		}
		out.WriteByte('\n')
	}

	if len(stack) != 0 {
		p.log.Append(diag.New(diag.P0011, p.line))
	}
	return out.String()
}

func (p *Preprocessor) directive(body string, stack *[]condFrame, active func() bool) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return
	}
	name := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body), name))

	switch name {
	case "define":
		if active() {
			p.define(rest)
		}
	case "undef":
		if active() {
			delete(p.macros, strings.TrimSpace(rest))
		}
	case "ifdef":
		ok := false
		if active() {
			_, ok = p.macros[strings.TrimSpace(rest)]
		}
		p.pushIf(stack, ok)
	case "ifndef":
		ok := true
		if active() {
			_, defined := p.macros[strings.TrimSpace(rest)]
			ok = !defined
		}
		p.pushIf(stack, ok)
	case "if":
		val := int64(0)
		if active() {
			val = p.evalExpr(rest)
		}
		p.pushIf(stack, val != 0)
	case "elif":
		p.elif(stack, rest)
	case "else":
		p.els(stack)
	case "endif":
		p.popIf(stack)
	case "error":
		if active() {
			p.log.Append(diag.Text(diag.P0002, p.line, rest))
		}
	case "pragma":
		if active() {
			p.pragma(rest)
		}
	case "extension":
		if p.sawNonDirective {
			p.log.Append(diag.New(diag.P0008, p.line))
			return
		}
		p.extension(rest)
	case "version":
		if p.sawNonDirective {
			p.log.Append(diag.New(diag.P0005, p.line))
			return
		}
		p.version(rest)
	case "line":
		p.lineDirective(rest)
	default:
		if active() {
			p.log.Append(diag.New(diag.P0001, p.line))
		}
	}
}

func (p *Preprocessor) pushIf(stack *[]condFrame, cond bool) {
	if len(*stack) >= maxConditionalDepth {
		p.log.Append(diag.New(diag.P0011, p.line))
		return
	}
	outer := true
	for _, f := range *stack {
		if !f.currentlyTrue {
			outer = false
		}
	}
	now := outer && cond
	*stack = append(*stack, condFrame{currentlyTrue: now, wasTrue: now})
}

func (p *Preprocessor) elif(stack *[]condFrame, rest string) {
	if len(*stack) == 0 {
		p.log.Append(diag.New(diag.P0001, p.line))
		return
	}
	top := &(*stack)[len(*stack)-1]
	if top.inElse {
		p.log.Append(diag.New(diag.P0001, p.line))
		return
	}
	outer := true
	for _, f := range (*stack)[:len(*stack)-1] {
		if !f.currentlyTrue {
			outer = false
		}
	}
	if top.wasTrue || !outer {
		top.currentlyTrue = false
		return
	}
	val := p.evalExpr(rest)
	top.currentlyTrue = val != 0
	if top.currentlyTrue {
		top.wasTrue = true
	}
}

func (p *Preprocessor) els(stack *[]condFrame) {
	if len(*stack) == 0 {
		p.log.Append(diag.New(diag.P0001, p.line))
		return
	}
	top := &(*stack)[len(*stack)-1]
	if top.inElse {
		p.log.Append(diag.New(diag.P0001, p.line))
		return
	}
	top.inElse = true
	outer := true
	for _, f := range (*stack)[:len(*stack)-1] {
		if !f.currentlyTrue {
			outer = false
		}
	}
	top.currentlyTrue = outer && !top.wasTrue
	if top.currentlyTrue {
		top.wasTrue = true
	}
}

func (p *Preprocessor) popIf(stack *[]condFrame) {
	if len(*stack) == 0 {
		p.log.Append(diag.New(diag.P0001, p.line))
		return
	}
	*stack = (*stack)[:len(*stack)-1]
}

func (p *Preprocessor) define(rest string) {
	rest = strings.TrimSpace(rest)
	i := 0
	for i < len(rest) && isIdentPart(rune(rest[i])) {
		i++
	}
	if i == 0 {
		p.log.Append(diag.New(diag.P0001, p.line))
		return
	}
	name := rest[:i]
	if _, exists := p.macros[name]; exists {
		p.log.Append(diag.New(diag.P0009, p.line))
	}

	m := &Macro{}
	if i < len(rest) && rest[i] == '(' {
		end := strings.IndexByte(rest[i:], ')')
		if end < 0 {
			p.log.Append(diag.New(diag.P0001, p.line))
			return
		}
		paramList := rest[i+1 : i+end]
		for _, param := range strings.Split(paramList, ",") {
			param = strings.TrimSpace(param)
			if param == "" {
				continue
			}
			if len(m.Params) >= 32 {
				p.log.Append(diag.New(diag.P0010, p.line))
				break
			}
			m.Params = append(m.Params, param)
		}
		m.Body = strings.TrimSpace(rest[i+end+1:])
	} else {
		m.Body = strings.TrimSpace(rest[i:])
	}
	p.macros[name] = m
}

func (p *Preprocessor) pragma(rest string) {
	rest = strings.TrimSpace(rest)
	switch {
	case strings.HasPrefix(rest, "debug(on)"):
		p.debug = true
	case strings.HasPrefix(rest, "debug(off)"):
		p.debug = false
	case strings.HasPrefix(rest, "optimize(on)"):
		p.optimize = true
	case strings.HasPrefix(rest, "optimize(off)"):
		p.optimize = false
	}
}

func (p *Preprocessor) extension(rest string) {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		p.log.Append(diag.New(diag.P0001, p.line))
		return
	}
	name := strings.TrimSpace(parts[0])
	behavior := strings.TrimSpace(parts[1])
	if behavior != "disable" && (name == "all" || !knownExtensions[name]) {
		p.log.Append(diag.New(diag.P0003, p.line))
	}
}

// knownExtensions is deliberately empty: this front-end implements no GLSL
// ES extensions, so any #extension other than "disable" is unsupported,
// matching spec §4.5.3 ("unknown extension with non-disable behavior").
var knownExtensions = map[string]bool{}

func (p *Preprocessor) version(rest string) {
	rest = strings.TrimSpace(rest)
	if rest != "100" {
		p.log.Append(diag.New(diag.P0007, p.line))
	}
}

func (p *Preprocessor) lineDirective(rest string) {
	fields := strings.Fields(rest)
	if len(fields) == 0 || len(fields) > 2 {
		p.log.Append(diag.New(diag.P0006, p.line))
		return
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		p.log.Append(diag.New(diag.P0006, p.line))
		return
	}
	p.line = n
	if len(fields) == 2 {
		f, err := strconv.Atoi(fields[1])
		if err != nil {
			p.log.Append(diag.New(diag.P0006, p.line))
			return
		}
		p.file = f
	}
}

func isIdentPart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// expand substitutes macro invocations in line. disabled carries the set of
// macro names currently being expanded (spec §4.5.3: "M is marked disabled
// to block recursion; re-enabled on pop"), preserved from the teacher's
// preprocessor.go applyDefines shape.
func (p *Preprocessor) expand(line string, disabled map[string]bool, depth int) string {
	if depth > maxExpansionDepth {
		p.log.Append(diag.New(diag.P0012, p.line))
		return line
	}
	var out strings.Builder
	i := 0
	for i < len(line) {
		r := rune(line[i])
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			j := i
			for j < len(line) && isIdentPart(rune(line[j])) {
				j++
			}
			name := line[i:j]
			if name == "__LINE__" {
				out.WriteString(strconv.Itoa(p.line))
				i = j
				continue
			}
			if name == "__FILE__" {
				out.WriteString(strconv.Itoa(p.file))
				i = j
				continue
			}
			if m, ok := p.macros[name]; ok && !disabled[name] {
				consumed, replacement, ok2 := p.invoke(name, m, line, j)
				if ok2 {
					disabled[name] = true
					out.WriteString(p.expand(replacement, disabled, depth+1))
					delete(disabled, name)
					i = consumed
					continue
				}
			}
			out.WriteString(name)
			i = j
		default:
			out.WriteByte(line[i])
			i++
		}
	}
	return out.String()
}

// invoke handles one macro use starting at name (already matched) whose
// arguments, if function-like, begin at pos in line. Returns the index just
// past the invocation and the (unexpanded-at-this-level) replacement text.
func (p *Preprocessor) invoke(name string, m *Macro, line string, pos int) (int, string, bool) {
	if m.Params == nil {
		return pos, m.Body, true
	}
	j := pos
	for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
		j++
	}
	if j >= len(line) || line[j] != '(' {
		return pos, "", false
	}
	j++
	var args []string
	depth := 1
	start := j
	for j < len(line) && depth > 0 {
		switch line[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				args = append(args, line[start:j])
			}
		case ',':
			if depth == 1 {
				args = append(args, line[start:j])
				start = j + 1
			}
		}
		j++
	}
	if depth != 0 {
		p.log.Append(diag.New(diag.P0001, p.line))
		return pos, "", false
	}
	if len(args) == 1 && strings.TrimSpace(args[0]) == "" && len(m.Params) == 0 {
		args = nil
	}
	argMap := map[string]string{}
	for idx, param := range m.Params {
		val := ""
		if idx < len(args) {
			val = p.expand(strings.TrimSpace(args[idx]), map[string]bool{}, 0)
		}
		argMap[param] = val
	}
	var out strings.Builder
	k := 0
	body := m.Body
	for k < len(body) {
		r := rune(body[k])
		if isIdentStart(r) {
			e := k
			for e < len(body) && isIdentPart(rune(body[e])) {
				e++
			}
			word := body[k:e]
			if val, ok := argMap[word]; ok {
				out.WriteString(val)
			} else {
				out.WriteString(word)
			}
			k = e
			continue
		}
		out.WriteByte(body[k])
		k++
	}
	return j, out.String(), true
}

// IsIdentifier re-exports the lexer's identifier predicate for callers that
// need to validate a macro parameter or argument without importing lexer
// directly (kept to avoid a second implementation drifting out of sync).
func IsIdentifier(s string) bool { return lexer.IsIdentifier(s) }
