package iltext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hmwill/glslesc/internal/arena"
	"github.com/hmwill/glslesc/internal/gltype"
	"github.com/hmwill/glslesc/internal/ir"
)

var typeKeywords = map[string]gltype.Kind{
	"bool": gltype.KindBool, "bvec2": gltype.KindBVec2, "bvec3": gltype.KindBVec3, "bvec4": gltype.KindBVec4,
	"int": gltype.KindInt, "ivec2": gltype.KindIVec2, "ivec3": gltype.KindIVec3, "ivec4": gltype.KindIVec4,
	"float": gltype.KindFloat, "vec2": gltype.KindVec2, "vec3": gltype.KindVec3, "vec4": gltype.KindVec4,
	"mat2": gltype.KindMat2, "mat3": gltype.KindMat3, "mat4": gltype.KindMat4,
	"sampler2D": gltype.KindSampler2D, "sampler3D": gltype.KindSampler3D, "samplerCube": gltype.KindSamplerCube,
	"void": gltype.KindVoid,
}

// reader holds the three symbol tables of spec §4.10.5 (variables, address
// registers, labels), built up while walking the text top to bottom.
type reader struct {
	prog  *ir.Program
	vars  map[int]*ir.ProgVar
	addrs map[int]*ir.ProgVar
	line  int
}

// Read parses the IL text grammar of spec §4.10.4 into an equivalent
// in-memory *ir.Program, following the teacher's two-section (declarations,
// then body) assembler shape. A program with any unresolved label at
// end-of-input is rejected, per spec §4.10.5.
func Read(text string) (*ir.Program, error) {
	r := &reader{
		prog:  ir.NewProgram(),
		vars:  map[int]*ir.ProgVar{},
		addrs: map[int]*ir.ProgVar{},
	}

	for i, raw := range strings.Split(text, "\n") {
		r.line = i + 1
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := r.readLine(line); err != nil {
			return nil, err
		}
	}

	for name, l := range r.prog.Labels {
		if l.Target == nil {
			return nil, fmt.Errorf("iltext: unresolved label %q", name)
		}
	}

	return r.prog, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func (r *reader) readLine(line string) error {
	switch {
	case strings.HasPrefix(line, "INPUT"):
		return r.readVarDecl(line, "INPUT", ir.VarIn)
	case strings.HasPrefix(line, "OUTPUT"):
		return r.readVarDecl(line, "OUTPUT", ir.VarOut)
	case strings.HasPrefix(line, "PARAM"):
		return r.readParamDecl(line)
	case strings.HasPrefix(line, "TEMP"):
		return r.readVarDecl(line, "TEMP", ir.VarTemp)
	case strings.HasPrefix(line, "ADDRESS"):
		return r.readAddrDecl(line)
	case strings.HasPrefix(line, "b") && strings.HasSuffix(line, ":"):
		return r.readLabel(line)
	default:
		return r.readInstruction(line)
	}
}

func (r *reader) readLabel(line string) error {
	name := strings.TrimSuffix(line, ":")
	tail := r.prog.Tail()
	if len(tail.Instructions) != 0 || tail.Label != nil {
		tail = r.prog.NewBlock()
	}
	lbl := r.prog.NewLabel(name)
	r.prog.BindLabel(lbl, tail)
	return nil
}

// readVarDecl parses INPUT/OUTPUT/TEMP lines, all of the shape
// "<KEYWORD> $<id>[<size>]:<prec><type>[@<SEG>[<loc>]=<extname>];".
func (r *reader) readVarDecl(line, keyword string, kind ir.VarKind) error {
	rest := strings.TrimSpace(strings.TrimPrefix(line, keyword))
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ";")

	id, rest, err := parseVarRef(rest)
	if err != nil {
		return r.errf("%v", err)
	}
	isArray := strings.HasPrefix(rest, "[")
	size, rest := parseSizeBracket(rest)

	rest = strings.TrimPrefix(rest, ":")
	prec, rest := parsePrecisionPrefix(rest)

	var extName string
	var seg ir.Segment
	var loc int
	typeName := rest
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		typeName = rest[:at]
		segPart := rest[at+1:]
		seg, loc, extName, err = parseSegmentAnnotation(segPart)
		if err != nil {
			return r.errf("%v", err)
		}
	}
	kindTok := strings.TrimSpace(typeName)
	tk, ok := typeKeywords[kindTok]
	if !ok {
		return r.errf("unknown type keyword %q", kindTok)
	}
	t := gltype.BasicType(tk, prec)
	if isArray {
		t = gltype.NewArrayType(arena.New("il-read", 0), t, size)
	}

	v := &ir.ProgVar{ID: id, Kind: kind, Type: t, Segment: seg, Location: loc, ExtName: extName}
	r.vars[id] = v
	switch kind {
	case ir.VarIn:
		r.prog.Ins = append(r.prog.Ins, v)
	case ir.VarOut:
		r.prog.Outs = append(r.prog.Outs, v)
	case ir.VarTemp:
		r.prog.Temps = append(r.prog.Temps, v)
	}
	return nil
}

// readParamDecl handles both uniform PARAM lines (same shape as readVarDecl)
// and constant PARAM lines ("PARAM $<id>:<type>={...};").
func (r *reader) readParamDecl(line string) error {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "PARAM"))
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ";")

	id, afterID, err := parseVarRef(rest)
	if err != nil {
		return r.errf("%v", err)
	}
	afterID = strings.TrimSpace(afterID)

	if strings.HasPrefix(afterID, ":") && strings.Contains(afterID, "=") {
		// Constant form: ":<type>={...}"
		body := strings.TrimPrefix(afterID, ":")
		eq := strings.IndexByte(body, '=')
		kindTok := strings.TrimSpace(body[:eq])
		tk, ok := typeKeywords[kindTok]
		if !ok {
			return r.errf("unknown type keyword %q", kindTok)
		}
		t := gltype.BasicType(tk, gltype.PrecisionUndefined)
		values, err := parseConstValues(body[eq+1:], tk)
		if err != nil {
			return r.errf("%v", err)
		}
		v := &ir.ProgVar{ID: id, Kind: ir.VarConst, Type: t, Values: values}
		r.vars[id] = v
		r.prog.RegisterConst(v)
		return nil
	}

	// Uniform form: delegate to the shared "$<id>[<size>]:<prec><type>@PARAM..." parser.
	return r.readVarDecl(line, "PARAM", ir.VarParam)
}

func parseConstValues(s string, kind gltype.Kind) ([]ir.Value, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	parts := strings.Split(s, ",")
	values := make([]ir.Value, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(p, "{}"))
		if p == "" {
			continue
		}
		v, err := parseScalarValue(p, kind)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func parseScalarValue(s string, kind gltype.Kind) (ir.Value, error) {
	switch kind {
	case gltype.KindBool, gltype.KindBVec2, gltype.KindBVec3, gltype.KindBVec4:
		return ir.Value{Bool: s == "1"}, nil
	case gltype.KindInt, gltype.KindIVec2, gltype.KindIVec3, gltype.KindIVec4:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return ir.Value{}, fmt.Errorf("iltext: invalid integer constant %q", s)
		}
		return ir.Value{Int: int32(n)}, nil
	default:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return ir.Value{}, fmt.Errorf("iltext: invalid float constant %q", s)
		}
		return ir.Value{Float: float32(f)}, nil
	}
}

func (r *reader) readAddrDecl(line string) error {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "ADDRESS"))
	rest = strings.TrimSuffix(rest, ";")
	rest = strings.TrimSpace(rest)
	id, err := parseAddrRef(rest)
	if err != nil {
		return r.errf("%v", err)
	}
	v := &ir.ProgVar{ID: id, Kind: ir.VarTemp}
	r.addrs[id] = v
	r.prog.Addrs = append(r.prog.Addrs, v)
	return nil
}

func parseVarRef(s string) (int, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "$") {
		return 0, s, fmt.Errorf("iltext: expected '$<id>', got %q", s)
	}
	s = s[1:]
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, fmt.Errorf("iltext: expected digits after '$'")
	}
	n, _ := strconv.Atoi(s[:i])
	return n, s[i:], nil
}

func parseAddrRef(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "a") {
		return 0, fmt.Errorf("iltext: expected 'a<id>', got %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, fmt.Errorf("iltext: invalid address register %q", s)
	}
	return n, nil
}

func parseSizeBracket(s string) (int, string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return 1, s
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return 1, s
	}
	n, _ := strconv.Atoi(s[1:end])
	return n, s[end+1:]
}

func parsePrecisionPrefix(s string) (gltype.Precision, string) {
	s = strings.TrimLeft(s, " ")
	switch {
	case strings.HasPrefix(s, "low "):
		return gltype.PrecisionLow, s[len("low "):]
	case strings.HasPrefix(s, "medium "):
		return gltype.PrecisionMedium, s[len("medium "):]
	case strings.HasPrefix(s, "high "):
		return gltype.PrecisionHigh, s[len("high "):]
	default:
		return gltype.PrecisionUndefined, s
	}
}

func parseSegmentAnnotation(s string) (ir.Segment, int, string, error) {
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return ir.SegmentNone, 0, "", fmt.Errorf("iltext: missing external name in %q", s)
	}
	head, extName := s[:eq], s[eq+1:]
	bracket := strings.IndexByte(head, '[')
	if bracket < 0 {
		return ir.SegmentNone, 0, "", fmt.Errorf("iltext: missing location in %q", head)
	}
	segName := head[:bracket]
	end := strings.IndexByte(head, ']')
	if end < 0 {
		return ir.SegmentNone, 0, "", fmt.Errorf("iltext: malformed location in %q", head)
	}
	loc, err := strconv.Atoi(head[bracket+1 : end])
	if err != nil {
		return ir.SegmentNone, 0, "", fmt.Errorf("iltext: invalid location %q", head[bracket+1:end])
	}
	var seg ir.Segment
	switch segName {
	case "ATTRIB":
		seg = ir.SegmentAttrib
	case "VARYING":
		seg = ir.SegmentVarying
	case "PARAM":
		seg = ir.SegmentParam
	default:
		return ir.SegmentNone, 0, "", fmt.Errorf("iltext: unknown segment %q", segName)
	}
	return seg, loc, strings.TrimSpace(extName), nil
}

func (r *reader) errf(format string, args ...any) error {
	return fmt.Errorf("iltext: line %d: %s", r.line, fmt.Sprintf(format, args...))
}
