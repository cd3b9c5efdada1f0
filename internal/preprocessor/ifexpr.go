package preprocessor

import (
	"strconv"
	"strings"

	"github.com/hmwill/glslesc/internal/diag"
)

// ifToken is one token of a #if expression; tokenizeIfExpr splits the
// directive line into a flat list of them, the way the original
// preprocessor's constant evaluator works directly over the directive line
// rather than going through the full GLSL ES tokenizer.
type ifToken struct {
	kind string // "num", "ident", "op", "lparen", "rparen"
	text string
	num  int64
}

func tokenizeIfExpr(s string) []ifToken {
	var toks []ifToken
	i := 0
	for i < len(s) {
		r := s[i]
		switch {
		case r == ' ' || r == '\t':
			i++
		case r >= '0' && r <= '9':
			j := i
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				j++
			}
			n, _ := strconv.ParseInt(s[i:j], 10, 64)
			isFloat := strings.Contains(s[i:j], ".")
			toks = append(toks, ifToken{kind: "num", text: s[i:j], num: n})
			if isFloat {
				toks[len(toks)-1].kind = "float"
			}
			i = j
		case isIdentStart(rune(r)):
			j := i
			for j < len(s) && isIdentPart(rune(s[j])) {
				j++
			}
			toks = append(toks, ifToken{kind: "ident", text: s[i:j]})
			i = j
		case r == '(':
			toks = append(toks, ifToken{kind: "lparen"})
			i++
		case r == ')':
			toks = append(toks, ifToken{kind: "rparen"})
			i++
		default:
			// greedily match the longest known operator spelling
			matched := false
			for _, op := range []string{"<<", ">>", "<=", ">=", "==", "!=", "&&", "||"} {
				if strings.HasPrefix(s[i:], op) {
					toks = append(toks, ifToken{kind: "op", text: op})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				toks = append(toks, ifToken{kind: "op", text: string(r)})
				i++
			}
		}
	}
	return toks
}

// ifParser is a precedence-climbing evaluator over the #if grammar of
// spec §4.5.3 (unary -,~,! tightest; ?: loosest).
type ifParser struct {
	toks  []ifToken
	pos   int
	p     *Preprocessor
	bad   bool
}

func (pp *Preprocessor) evalExpr(text string) int64 {
	ip := &ifParser{toks: tokenizeIfExpr(text), p: pp}
	val := ip.parseTernary()
	if ip.bad {
		pp.log.Append(diag.New(diag.P0001, pp.line))
	}
	return val
}

func (ip *ifParser) cur() ifToken {
	if ip.pos >= len(ip.toks) {
		return ifToken{kind: "eof"}
	}
	return ip.toks[ip.pos]
}

func (ip *ifParser) advance() ifToken {
	t := ip.cur()
	ip.pos++
	return t
}

func (ip *ifParser) isOp(s string) bool {
	t := ip.cur()
	return t.kind == "op" && t.text == s
}

func (ip *ifParser) parseTernary() int64 {
	cond := ip.parseOr()
	if ip.isOp("?") {
		ip.advance()
		then := ip.parseTernary()
		if !ip.isOp(":") {
			ip.bad = true
			return 0
		}
		ip.advance()
		els := ip.parseTernary()
		if cond != 0 {
			return then
		}
		return els
	}
	return cond
}

func (ip *ifParser) parseOr() int64 {
	v := ip.parseAnd()
	for ip.isOp("||") {
		ip.advance()
		r := ip.parseAnd()
		v = boolToInt(v != 0 || r != 0)
	}
	return v
}

func (ip *ifParser) parseAnd() int64 {
	v := ip.parseBitOr()
	for ip.isOp("&&") {
		ip.advance()
		r := ip.parseBitOr()
		v = boolToInt(v != 0 && r != 0)
	}
	return v
}

func (ip *ifParser) parseBitOr() int64 {
	v := ip.parseBitXor()
	for ip.isOp("|") {
		ip.advance()
		v |= ip.parseBitXor()
	}
	return v
}

func (ip *ifParser) parseBitXor() int64 {
	v := ip.parseBitAnd()
	for ip.isOp("^") {
		ip.advance()
		v ^= ip.parseBitAnd()
	}
	return v
}

func (ip *ifParser) parseBitAnd() int64 {
	v := ip.parseEquality()
	for ip.isOp("&") {
		ip.advance()
		v &= ip.parseEquality()
	}
	return v
}

func (ip *ifParser) parseEquality() int64 {
	v := ip.parseRelational()
	for ip.isOp("==") || ip.isOp("!=") {
		op := ip.advance().text
		r := ip.parseRelational()
		if op == "==" {
			v = boolToInt(v == r)
		} else {
			v = boolToInt(v != r)
		}
	}
	return v
}

func (ip *ifParser) parseRelational() int64 {
	v := ip.parseShift()
	for ip.isOp("<") || ip.isOp("<=") || ip.isOp(">") || ip.isOp(">=") {
		op := ip.advance().text
		r := ip.parseShift()
		switch op {
		case "<":
			v = boolToInt(v < r)
		case "<=":
			v = boolToInt(v <= r)
		case ">":
			v = boolToInt(v > r)
		case ">=":
			v = boolToInt(v >= r)
		}
	}
	return v
}

func (ip *ifParser) parseShift() int64 {
	v := ip.parseAdditive()
	for ip.isOp("<<") || ip.isOp(">>") {
		op := ip.advance().text
		r := ip.parseAdditive()
		if op == "<<" {
			v <<= uint(r)
		} else {
			v >>= uint(r)
		}
	}
	return v
}

func (ip *ifParser) parseAdditive() int64 {
	v := ip.parseMultiplicative()
	for ip.isOp("+") || ip.isOp("-") {
		op := ip.advance().text
		r := ip.parseMultiplicative()
		if op == "+" {
			v += r
		} else {
			v -= r
		}
	}
	return v
}

func (ip *ifParser) parseMultiplicative() int64 {
	v := ip.parseUnary()
	for ip.isOp("*") || ip.isOp("/") || ip.isOp("%") {
		op := ip.advance().text
		r := ip.parseUnary()
		switch op {
		case "*":
			v *= r
		case "/":
			if r == 0 {
				ip.bad = true
				return 0
			}
			v /= r
		case "%":
			if r == 0 {
				ip.bad = true
				return 0
			}
			v %= r
		}
	}
	return v
}

func (ip *ifParser) parseUnary() int64 {
	if ip.isOp("-") {
		ip.advance()
		return -ip.parseUnary()
	}
	if ip.isOp("~") {
		ip.advance()
		return ^ip.parseUnary()
	}
	if ip.isOp("!") {
		ip.advance()
		return boolToInt(ip.parseUnary() == 0)
	}
	return ip.parsePrimary()
}

func (ip *ifParser) parsePrimary() int64 {
	t := ip.cur()
	switch t.kind {
	case "num":
		ip.advance()
		return t.num
	case "float":
		ip.advance()
		ip.p.log.Append(diag.New(diag.P0013, ip.p.line))
		return 0
	case "lparen":
		ip.advance()
		v := ip.parseTernary()
		if ip.cur().kind != "rparen" {
			ip.bad = true
			return v
		}
		ip.advance()
		return v
	case "ident":
		ip.advance()
		if t.text == "defined" {
			return ip.parseDefined()
		}
		if _, ok := ip.p.macros[t.text]; ok {
			// A function-like or object-like macro name used bare in an
			// #if evaluates via its body only when it is itself a simple
			// integer literal; otherwise it is treated as 0 like any other
			// unknown identifier (spec §4.5.3: "Unknown identifiers
			// evaluate to 0").
			if n, err := strconv.ParseInt(strings.TrimSpace(ip.p.macros[t.text].Body), 10, 64); err == nil {
				return n
			}
		}
		return 0
	default:
		ip.bad = true
		return 0
	}
}

func (ip *ifParser) parseDefined() int64 {
	paren := false
	if ip.cur().kind == "lparen" {
		paren = true
		ip.advance()
	}
	if ip.cur().kind != "ident" {
		ip.bad = true
		return 0
	}
	name := ip.advance().text
	if paren {
		if ip.cur().kind != "rparen" {
			ip.bad = true
			return 0
		}
		ip.advance()
	}
	_, ok := ip.p.macros[name]
	return boolToInt(ok)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
