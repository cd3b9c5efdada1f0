package ir

import (
	"testing"

	"github.com/hmwill/glslesc/internal/gltype"
)

func TestNewTempAssignsDistinctIDs(t *testing.T) {
	prog := NewProgram()
	ft := gltype.BasicType(gltype.KindFloat, gltype.PrecisionUndefined)
	a := prog.NewTemp(ft)
	b := prog.NewTemp(ft)
	if a.ID == b.ID {
		t.Errorf("expected distinct temp IDs, both got %d", a.ID)
	}
}

func TestEndsBlockControlOpcodes(t *testing.T) {
	for _, op := range []Opcode{OpIF, OpELSE, OpENDIF, OpLOOP, OpENDLOOP, OpREP, OpENDREP, OpRET, OpBRK, OpKIL, OpCAL} {
		if !op.EndsBlock() {
			t.Errorf("expected %v.EndsBlock() true", op)
		}
	}
	if OpMOV.EndsBlock() {
		t.Errorf("expected OpMOV.EndsBlock() false")
	}
	if OpADD.EndsBlock() {
		t.Errorf("expected OpADD.EndsBlock() false")
	}
}

func TestOpcodeByNameRoundTrips(t *testing.T) {
	for _, op := range []Opcode{OpMOV, OpADD, OpREP, OpIF} {
		name := op.String()
		got, ok := OpcodeByName(name)
		if !ok || got != op {
			t.Errorf("OpcodeByName(%q) = %v, %v; want %v, true", name, got, ok, op)
		}
	}
}

func TestNewBlockAppendsAndLinks(t *testing.T) {
	prog := NewProgram()
	first := prog.Tail()
	first.Append(&Instruction{Op: OpMOV})
	prog.NewBlock()
	second := prog.Tail()
	if first == second {
		t.Fatalf("expected NewBlock to advance the tail block")
	}
	if len(first.Instructions) != 1 {
		t.Errorf("expected 1 instruction in the first block, got %d", len(first.Instructions))
	}
}

func TestMarkUsedOnlyReachableFromInstructions(t *testing.T) {
	prog := NewProgram()
	ft := gltype.BasicType(gltype.KindFloat, gltype.PrecisionUndefined)
	used := prog.NewTemp(ft)
	unused := prog.NewTemp(ft)
	prog.Tail().Append(&Instruction{Op: OpMOV, Dst: Dst{Var: used, Mask: [4]bool{true, true, true, true}}, Src0: Src{Var: used}})
	prog.MarkUsed()
	if !used.Used {
		t.Errorf("expected the referenced temp to be marked used")
	}
	if unused.Used {
		t.Errorf("expected the unreferenced temp to stay unused")
	}
}
