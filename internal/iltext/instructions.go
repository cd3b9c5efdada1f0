package iltext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hmwill/glslesc/internal/gltype"
	"github.com/hmwill/glslesc/internal/ir"
)

var condNames = map[string]ir.Cond{
	"F": ir.CondF, "LT": ir.CondLT, "EQ": ir.CondEQ, "LE": ir.CondLE,
	"GT": ir.CondGT, "NE": ir.CondNE, "GE": ir.CondGE, "T": ir.CondT,
}

func selectorFromRune(r rune) (ir.Selector, bool) {
	switch r {
	case 'x':
		return ir.SelX, true
	case 'y':
		return ir.SelY, true
	case 'z':
		return ir.SelZ, true
	case 'w':
		return ir.SelW, true
	}
	return 0, false
}

func (r *reader) readInstruction(line string) error {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	head, rest := splitField(line)
	opName, precSuffix := splitMnemonic(head)
	op, ok := ir.OpcodeByName(opName)
	if !ok {
		return r.errf("unknown opcode %q", opName)
	}

	inst := &ir.Instruction{Op: op, Precision: precisionFromSuffix(precSuffix)}

	switch op {
	case ir.OpARL:
		return r.readARL(inst, rest)
	case ir.OpSWZ:
		return r.readSWZ(inst, rest)
	case ir.OpTEX, ir.OpTXB, ir.OpTXL, ir.OpTXP:
		return r.readTex(inst, rest)
	case ir.OpREP:
		return r.readREP(inst, rest)
	case ir.OpCAL, ir.OpIF, ir.OpELSE, ir.OpENDIF, ir.OpLOOP, ir.OpENDLOOP,
		ir.OpENDREP, ir.OpRET, ir.OpBRK, ir.OpKIL:
		return r.readControl(inst, rest)
	default:
		return r.readALU(inst, rest)
	}
}

// splitField splits s at its first space (separating the mnemonic from its
// operands), returning the head and the trimmed remainder.
func splitField(s string) (string, string) {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func splitFields(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ", ")
}

func splitMnemonic(head string) (string, string) {
	if i := strings.IndexByte(head, '.'); i >= 0 {
		return head[:i], head[i+1:]
	}
	return head, ""
}

func precisionFromSuffix(s string) gltype.Precision {
	switch s {
	case "L":
		return gltype.PrecisionLow
	case "M":
		return gltype.PrecisionMedium
	case "H":
		return gltype.PrecisionHigh
	default:
		return gltype.PrecisionUndefined
	}
}

func (r *reader) lookupVar(id int) (*ir.ProgVar, error) {
	v, ok := r.vars[id]
	if !ok {
		return nil, fmt.Errorf("iltext: line %d: reference to undeclared variable $%d", r.line, id)
	}
	return v, nil
}

func (r *reader) lookupAddr(id int) (*ir.ProgVar, error) {
	v, ok := r.addrs[id]
	if !ok {
		return nil, fmt.Errorf("iltext: line %d: reference to undeclared address register a%d", r.line, id)
	}
	return v, nil
}

func (r *reader) parseDst(s string) (ir.Dst, error) {
	s = strings.TrimSpace(s)
	id, rest, err := parseVarRef(s)
	if err != nil {
		return ir.Dst{}, err
	}
	v, err := r.lookupVar(id)
	if err != nil {
		return ir.Dst{}, err
	}
	offset := 0
	if strings.HasPrefix(rest, "[") {
		offset, rest = parseSizeBracket(rest)
	}
	mask := [4]bool{true, true, true, true}
	if strings.HasPrefix(rest, ".") {
		mask = maskFromString(rest[1:])
	}
	return ir.Dst{Var: v, Offset: offset, Mask: mask}, nil
}

func (r *reader) parseSrc(s string) (ir.Src, error) {
	s = strings.TrimSpace(s)
	negate := false
	if strings.HasPrefix(s, "-") {
		negate = true
		s = s[1:]
	}
	id, rest, err := parseVarRef(s)
	if err != nil {
		return ir.Src{}, err
	}
	v, err := r.lookupVar(id)
	if err != nil {
		return ir.Src{}, err
	}
	src := ir.Src{Var: v, Negate: negate, Swizzle: [4]ir.Selector{ir.SelX, ir.SelY, ir.SelZ, ir.SelW}}
	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return ir.Src{}, fmt.Errorf("iltext: line %d: malformed operand %q", r.line, s)
		}
		inside := rest[1:end]
		rest = rest[end+1:]
		if strings.HasPrefix(inside, "a") {
			plus := strings.IndexByte(inside, '+')
			addrID, err := parseAddrRef(inside[:plus])
			if err != nil {
				return ir.Src{}, err
			}
			addrVar, err := r.lookupAddr(addrID)
			if err != nil {
				return ir.Src{}, err
			}
			delta, _ := strconv.Atoi(inside[plus+1:])
			src.AddrVar = addrVar
			src.AddrDelta = delta
		} else {
			offset, _ := strconv.Atoi(inside)
			src.Offset = offset
		}
	}
	if strings.HasPrefix(rest, ".") {
		for i, r := range rest[1:] {
			if i >= 4 {
				break
			}
			sel, ok := selectorFromRune(r)
			if ok {
				src.Swizzle[i] = sel
			}
		}
	}
	return src, nil
}

func maskFromString(s string) [4]bool {
	var m [4]bool
	for _, r := range s {
		switch r {
		case 'x':
			m[0] = true
		case 'y':
			m[1] = true
		case 'z':
			m[2] = true
		case 'w':
			m[3] = true
		}
	}
	return m
}

func (r *reader) readARL(inst *ir.Instruction, rest string) error {
	fields := splitFields(rest)
	if len(fields) != 2 {
		return r.errf("ARL expects 2 operands")
	}
	addrID, err := parseAddrRef(strings.TrimSpace(fields[0]))
	if err != nil {
		return err
	}
	addrVar, err := r.lookupAddr(addrID)
	if err != nil {
		return err
	}
	src, err := r.parseSrc(fields[1])
	if err != nil {
		return err
	}
	inst.Dst = ir.Dst{Var: addrVar}
	inst.Src0 = src
	r.prog.Tail().Append(inst)
	return nil
}

func (r *reader) readSWZ(inst *ir.Instruction, rest string) error {
	fields := splitFields(rest)
	if len(fields) != 2 {
		return r.errf("SWZ expects 2 operands")
	}
	dst, err := r.parseDst(fields[0])
	if err != nil {
		return err
	}
	parts := strings.Split(fields[1], ",")
	if len(parts) != 5 {
		return r.errf("SWZ extended-swizzle operand expects 5 fields")
	}
	id, _, err := parseVarRef(strings.TrimSpace(parts[0]))
	if err != nil {
		return err
	}
	v, err := r.lookupVar(id)
	if err != nil {
		return err
	}
	var extSel [4]ir.ExtSelector
	for i := 0; i < 4; i++ {
		extSel[i] = parseExtSelector(strings.TrimSpace(parts[i+1]))
	}
	inst.Dst = dst
	inst.Src0 = ir.Src{Var: v}
	inst.ExtSel = extSel
	r.prog.Tail().Append(inst)
	return nil
}

func parseExtSelector(s string) ir.ExtSelector {
	switch s {
	case "0":
		return ir.ExtSelector{IsConst: true, ConstVal: 0}
	case "-0":
		return ir.ExtSelector{IsConst: true, ConstVal: 0, Negate: true}
	case "1":
		return ir.ExtSelector{IsConst: true, ConstVal: 1}
	case "-1":
		return ir.ExtSelector{IsConst: true, ConstVal: 1, Negate: true}
	}
	negate := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	comp, _ := selectorFromRune(rune(s[0]))
	return ir.ExtSelector{Comp: comp, Negate: negate}
}

func (r *reader) readTex(inst *ir.Instruction, rest string) error {
	fields := splitFields(rest)
	if len(fields) != 4 {
		return r.errf("%s expects 4 operands", inst.Op)
	}
	dst, err := r.parseDst(fields[0])
	if err != nil {
		return err
	}
	coords, err := r.parseSrc(fields[1])
	if err != nil {
		return err
	}
	samplerID, _, err := parseVarRef(strings.TrimSpace(fields[2]))
	if err != nil {
		return err
	}
	sampler, err := r.lookupVar(samplerID)
	if err != nil {
		return err
	}
	var target ir.TexTarget
	switch strings.TrimSpace(fields[3]) {
	case "3D":
		target = ir.Tex3D
	case "CUBE":
		target = ir.TexCube
	default:
		target = ir.Tex2D
	}
	inst.Dst = dst
	inst.Src0 = coords
	inst.Sampler = sampler
	inst.Target = target
	r.prog.Tail().Append(inst)
	return nil
}

// readREP parses REP's literal trip count. Unlike the other control
// opcodes, REP never carries a label: its one operand is the constant
// iteration count package lower computed from the for-loop header.
func (r *reader) readREP(inst *ir.Instruction, rest string) error {
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return r.errf("invalid REP count %q", rest)
	}
	inst.RepCount = n
	r.prog.Tail().Append(inst)
	r.prog.NewBlock()
	return nil
}

func (r *reader) readControl(inst *ir.Instruction, rest string) error {
	if rest == "" {
		r.prog.Tail().Append(inst)
		if inst.Op.EndsBlock() {
			r.prog.NewBlock()
		}
		return nil
	}
	label := rest
	inst.Cond = ir.CondT
	if paren := strings.IndexByte(rest, '('); paren >= 0 {
		label = strings.TrimSpace(rest[:paren])
		inside := strings.TrimSuffix(rest[paren+1:], ")")
		condStr, maskStr := inside, "xyzw"
		if dot := strings.IndexByte(inside, '.'); dot >= 0 {
			condStr, maskStr = inside[:dot], inside[dot+1:]
		}
		cond, ok := condNames[condStr]
		if !ok {
			return r.errf("unknown condition %q", condStr)
		}
		inst.Cond = cond
		var sel [4]ir.Selector
		n := 0
		for _, c := range maskStr {
			s, ok := selectorFromRune(c)
			if ok {
				sel[n] = s
				n++
			}
		}
		inst.Sel = sel
		inst.NSel = n
	}
	label = strings.TrimSpace(label)
	if label != "" {
		inst.Label = r.prog.NewLabel(label)
	}
	r.prog.Tail().Append(inst)
	if inst.Op.EndsBlock() {
		r.prog.NewBlock()
	}
	return nil
}

func (r *reader) readALU(inst *ir.Instruction, rest string) error {
	fields := splitFields(rest)
	if len(fields) == 0 {
		r.prog.Tail().Append(inst)
		return nil
	}
	dst, err := r.parseDst(fields[0])
	if err != nil {
		return err
	}
	inst.Dst = dst
	srcs := fields[1:]
	if len(srcs) > 0 {
		inst.Src0, err = r.parseSrc(srcs[0])
		if err != nil {
			return err
		}
	}
	if len(srcs) > 1 {
		inst.Src1, err = r.parseSrc(srcs[1])
		if err != nil {
			return err
		}
	}
	if len(srcs) > 2 {
		inst.Src2, err = r.parseSrc(srcs[2])
		if err != nil {
			return err
		}
	}
	r.prog.Tail().Append(inst)
	return nil
}
