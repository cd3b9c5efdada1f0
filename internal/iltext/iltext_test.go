package iltext

import (
	"strings"
	"testing"

	"github.com/hmwill/glslesc/internal/gltype"
	"github.com/hmwill/glslesc/internal/ir"
)

func TestWriteSimpleMove(t *testing.T) {
	prog := ir.NewProgram()
	ft := gltype.BasicType(gltype.KindFloat, gltype.PrecisionUndefined)
	in := prog.NewIn(ft, ir.SegmentAttrib, "aX", 0)
	out := prog.NewOut(ft, ir.SegmentVarying, "gl_Position", 0)
	prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: out, Mask: [4]bool{true, true, true, true}}, Src0: ir.Src{Var: in}})

	out_ := Write(prog)
	if !strings.Contains(out_, "INPUT") {
		t.Errorf("expected an INPUT declaration, got:\n%s", out_)
	}
	if !strings.Contains(out_, "OUTPUT") {
		t.Errorf("expected an OUTPUT declaration, got:\n%s", out_)
	}
	if !strings.Contains(out_, "MOV") {
		t.Errorf("expected a MOV instruction, got:\n%s", out_)
	}
}

func TestWriteRepCount(t *testing.T) {
	prog := ir.NewProgram()
	prog.Tail().Append(&ir.Instruction{Op: ir.OpREP, RepCount: 10})
	prog.NewBlock()
	prog.Tail().Append(&ir.Instruction{Op: ir.OpENDREP})
	prog.NewBlock()

	text := Write(prog)
	if !strings.Contains(text, "REP 10;") {
		t.Errorf("expected REP 10, got:\n%s", text)
	}
	if !strings.Contains(text, "ENDREP;") {
		t.Errorf("expected ENDREP, got:\n%s", text)
	}
}

func TestReadRoundTripsRepCount(t *testing.T) {
	prog := ir.NewProgram()
	prog.Tail().Append(&ir.Instruction{Op: ir.OpREP, RepCount: 5})
	prog.NewBlock()
	prog.Tail().Append(&ir.Instruction{Op: ir.OpENDREP})
	prog.NewBlock()
	text := Write(prog)

	reread, err := Read(text)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	found := false
	for blk := reread.Blocks; blk != nil; blk = blk.Next {
		for _, inst := range blk.Instructions {
			if inst.Op == ir.OpREP {
				found = true
				if inst.RepCount != 5 {
					t.Errorf("RepCount = %d, want 5", inst.RepCount)
				}
			}
		}
	}
	if !found {
		t.Errorf("expected a REP instruction to round-trip")
	}
}
