// Package iltext implements the IL text writer and reader (component K): a
// line-oriented, round-trippable pretty-printer/re-parser for an ir.Program,
// grounded on the teacher's pkg/asm/asm.go two-pass assembler (label pass,
// then encode pass) but targeting human-readable text rather than bytecode.
package iltext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hmwill/glslesc/internal/gltype"
	"github.com/hmwill/glslesc/internal/ir"
)

// Write renders prog in the IL text grammar of spec §4.10.4. It first marks
// every variable transitively reachable from an emitted instruction, so only
// live declarations appear in the header.
func Write(prog *ir.Program) string {
	prog.MarkUsed()

	var b strings.Builder
	writeDecls(&b, prog)
	writeBody(&b, prog)
	return b.String()
}

func precisionPrefix(p gltype.Precision) string {
	switch p {
	case gltype.PrecisionLow:
		return "low "
	case gltype.PrecisionMedium:
		return "medium "
	case gltype.PrecisionHigh:
		return "high "
	default:
		return ""
	}
}

func sizeSuffix(t *gltype.Type) string {
	if t.Kind == gltype.KindArray && t.Length > 0 {
		return fmt.Sprintf("[%d]", t.Length)
	}
	return ""
}

func declType(t *gltype.Type) *gltype.Type {
	if t.Kind == gltype.KindArray {
		return t.Element
	}
	return t
}

func sortByID(vs []*ir.ProgVar) []*ir.ProgVar {
	out := append([]*ir.ProgVar(nil), vs...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func writeDecls(b *strings.Builder, prog *ir.Program) {
	for _, v := range sortByID(prog.Ins) {
		if !v.Used {
			continue
		}
		t := declType(v.Type)
		seg := "ATTRIB"
		if v.Segment == ir.SegmentVarying {
			seg = "VARYING"
		}
		fmt.Fprintf(b, "INPUT  $%d%s:%s%s@%s[%d]=%s;\n",
			v.ID, sizeSuffix(v.Type), precisionPrefix(t.Precision), t.Kind, seg, v.Location, v.ExtName)
	}
	for _, v := range sortByID(prog.Outs) {
		if !v.Used {
			continue
		}
		t := declType(v.Type)
		fmt.Fprintf(b, "OUTPUT $%d%s:%s%s@VARYING[%d]=%s;\n",
			v.ID, sizeSuffix(v.Type), precisionPrefix(t.Precision), t.Kind, v.Location, v.ExtName)
	}
	for _, v := range sortByID(prog.Params) {
		if !v.Used {
			continue
		}
		t := declType(v.Type)
		fmt.Fprintf(b, "PARAM  $%d%s:%s%s@PARAM[%d]=%s;\n",
			v.ID, sizeSuffix(v.Type), precisionPrefix(t.Precision), t.Kind, v.Location, v.ExtName)
	}
	for _, v := range prog.UsedConsts() {
		fmt.Fprintf(b, "PARAM  $%d:%s=%s;\n", v.ID, v.Type.Kind, writeConstValues(v))
	}
	for _, v := range sortByID(prog.Temps) {
		if !v.Used {
			continue
		}
		t := declType(v.Type)
		fmt.Fprintf(b, "TEMP   $%d%s:%s%s;\n", v.ID, sizeSuffix(v.Type), precisionPrefix(t.Precision), t.Kind)
	}
	for _, v := range prog.Addrs {
		if !v.Used {
			continue
		}
		fmt.Fprintf(b, "ADDRESS a%d;\n", v.ID)
	}
}

func writeConstValues(v *ir.ProgVar) string {
	n := len(v.Values)
	if n <= 1 {
		if n == 0 {
			return "0"
		}
		return formatValue(v.Values[0], v.Type.Kind)
	}
	parts := make([]string, n)
	for i, val := range v.Values {
		parts[i] = formatValue(val, v.Type.Kind)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatValue(v ir.Value, kind gltype.Kind) string {
	switch kind {
	case gltype.KindBool, gltype.KindBVec2, gltype.KindBVec3, gltype.KindBVec4:
		if v.Bool {
			return "1"
		}
		return "0"
	case gltype.KindInt, gltype.KindIVec2, gltype.KindIVec3, gltype.KindIVec4:
		return fmt.Sprintf("%d", v.Int)
	default:
		return fmt.Sprintf("%g", v.Float)
	}
}

func writeBody(b *strings.Builder, prog *ir.Program) {
	for blk := prog.Blocks; blk != nil; blk = blk.Next {
		if blk.Label != nil {
			fmt.Fprintf(b, "b%d:\n", blk.ID)
		}
		for _, inst := range blk.Instructions {
			writeInstruction(b, inst)
		}
	}
}

func writeInstruction(b *strings.Builder, inst *ir.Instruction) {
	switch inst.Op {
	case ir.OpREP:
		fmt.Fprintf(b, "REP %d;\n", inst.RepCount)
	case ir.OpIF, ir.OpENDIF, ir.OpELSE, ir.OpLOOP, ir.OpENDLOOP, ir.OpENDREP,
		ir.OpRET, ir.OpBRK, ir.OpKIL, ir.OpCAL:
		writeControl(b, inst)
	case ir.OpARL:
		fmt.Fprintf(b, "ARL a%d, %s;\n", addrID(inst.Dst), writeSrc(inst.Src0))
	case ir.OpSWZ:
		fmt.Fprintf(b, "SWZ %s, %s;\n", writeDst(inst.Dst), writeExtSwizzleSrc(inst))
	case ir.OpTEX, ir.OpTXB, ir.OpTXL, ir.OpTXP:
		fmt.Fprintf(b, "%s.%s %s, %s, $%d, %s;\n",
			inst.Op, precisionSuffix(inst.Precision), writeDst(inst.Dst),
			writeSrc(inst.Src0), inst.Sampler.ID, inst.Target)
	default:
		writeALU(b, inst)
	}
}

func addrID(d ir.Dst) int {
	if d.Var == nil {
		return -1
	}
	return d.Var.ID
}

func writeControl(b *strings.Builder, inst *ir.Instruction) {
	if inst.Label == nil {
		fmt.Fprintf(b, "%s;\n", inst.Op)
		return
	}
	cond := ""
	if inst.Cond != ir.CondT || inst.NSel > 0 {
		cond = fmt.Sprintf(" (%s.%s)", inst.Cond, writeMaskSel(inst.Sel, inst.NSel))
	}
	fmt.Fprintf(b, "%s %s%s;\n", inst.Op, inst.Label.Name, cond)
}

func writeMaskSel(sel [4]ir.Selector, n int) string {
	if n == 0 {
		n = 4
	}
	var s strings.Builder
	for i := 0; i < n && i < 4; i++ {
		s.WriteString(sel[i].String())
	}
	return s.String()
}

func precisionSuffix(p gltype.Precision) string {
	switch p {
	case gltype.PrecisionLow:
		return "L"
	case gltype.PrecisionMedium:
		return "M"
	case gltype.PrecisionHigh:
		return "H"
	default:
		return "U"
	}
}

func writeALU(b *strings.Builder, inst *ir.Instruction) {
	srcs := []string{}
	for _, s := range []ir.Src{inst.Src0, inst.Src1, inst.Src2} {
		if s.Var != nil {
			srcs = append(srcs, writeSrc(s))
		}
	}
	if inst.Dst.Var != nil {
		parts := append([]string{writeDst(inst.Dst)}, srcs...)
		fmt.Fprintf(b, "%s.%s %s;\n", inst.Op, precisionSuffix(inst.Precision), strings.Join(parts, ", "))
		return
	}
	if len(srcs) > 0 {
		fmt.Fprintf(b, "%s.%s %s;\n", inst.Op, precisionSuffix(inst.Precision), strings.Join(srcs, ", "))
		return
	}
	fmt.Fprintf(b, "%s;\n", inst.Op)
}

func writeDst(d ir.Dst) string {
	s := fmt.Sprintf("$%d", d.Var.ID)
	if d.Offset != 0 {
		s += fmt.Sprintf("[%d]", d.Offset)
	}
	mask := maskString(d.Mask)
	if mask != "" && mask != "xyzw" {
		s += "." + mask
	}
	return s
}

func maskString(m [4]bool) string {
	letters := "xyzw"
	var s strings.Builder
	for i, on := range m {
		if on {
			s.WriteByte(letters[i])
		}
	}
	return s.String()
}

func writeSrc(s ir.Src) string {
	var out strings.Builder
	if s.Negate {
		out.WriteByte('-')
	}
	fmt.Fprintf(&out, "$%d", s.Var.ID)
	if s.AddrVar != nil {
		fmt.Fprintf(&out, "[a%d+%d]", s.AddrVar.ID, s.AddrDelta)
	} else if s.Offset != 0 {
		fmt.Fprintf(&out, "[%d]", s.Offset)
	}
	swz := writeSwizzle(s.Swizzle)
	if swz != "xyzw" {
		out.WriteByte('.')
		out.WriteString(swz)
	}
	return out.String()
}

func writeSwizzle(sel [4]ir.Selector) string {
	var s strings.Builder
	for _, c := range sel {
		s.WriteString(c.String())
	}
	return s.String()
}

func writeExtSwizzleSrc(inst *ir.Instruction) string {
	parts := make([]string, 4)
	for i, e := range inst.ExtSel {
		parts[i] = writeExtSelector(e)
	}
	return fmt.Sprintf("$%d,%s", inst.Src0.Var.ID, strings.Join(parts, ","))
}

func writeExtSelector(e ir.ExtSelector) string {
	if e.IsConst {
		if e.ConstVal == 0 {
			if e.Negate {
				return "-0"
			}
			return "0"
		}
		if e.Negate {
			return "-1"
		}
		return "1"
	}
	sign := ""
	if e.Negate {
		sign = "-"
	}
	return sign + e.Comp.String()
}
