// Package ir implements the IL builder (component J): program-variable
// pools, the basic-block list, and the tagged-union instruction set of
// spec §4.10, built with dense index handles (spec §9's "option (b)") rather
// than the original's raw-pointer arena graph, so that the reader
// (component K) can round-trip a program without re-threading arena
// lifetimes.
package ir

import "github.com/hmwill/glslesc/internal/gltype"

// Opcode enumerates the IL instruction mnemonics of spec §4.10.1, including
// the saturating variants and the Vincent extensions (SCC, PHI).
type Opcode int

const (
	OpARL Opcode = iota
	OpABS
	OpABS_SAT
	OpADD
	OpADD_SAT
	OpCAL
	OpCMP
	OpCMP_SAT
	OpCOS
	OpCOS_SAT
	OpDP2
	OpDP2_SAT
	OpDP3
	OpDP3_SAT
	OpDP4
	OpDP4_SAT
	OpDPH
	OpDPH_SAT
	OpDST
	OpDST_SAT
	OpEX2
	OpEX2_SAT
	OpEXP
	OpEXP_SAT
	OpFLR
	OpFLR_SAT
	OpFRC
	OpFRC_SAT
	OpLG2
	OpLG2_SAT
	OpLOG
	OpLOG_SAT
	OpLRP
	OpLRP_SAT
	OpMAD
	OpMAD_SAT
	OpMAX
	OpMAX_SAT
	OpMIN
	OpMIN_SAT
	OpMOV
	OpMOV_SAT
	OpMUL
	OpMUL_SAT
	OpPOW
	OpPOW_SAT
	OpRCP
	OpRCP_SAT
	OpRSQ
	OpRSQ_SAT
	OpSCS
	OpSCS_SAT
	OpSIN
	OpSIN_SAT
	OpSSG
	OpSSG_SAT
	OpSUB
	OpSUB_SAT
	OpSEQ
	OpSNE
	OpSLT
	OpSLE
	OpSGT
	OpSGE
	OpSFL
	OpSTR
	OpSWZ
	OpTEX
	OpTXB
	OpTXL
	OpTXP
	OpXPD
	OpRET
	OpBRK
	OpIF
	OpELSE
	OpENDIF
	OpLOOP
	OpENDLOOP
	OpREP
	OpENDREP
	OpKIL
	OpSCC
	OpPHI
)

var opcodeNames = map[Opcode]string{
	OpARL: "ARL", OpABS: "ABS", OpABS_SAT: "ABS_SAT", OpADD: "ADD", OpADD_SAT: "ADD_SAT",
	OpCAL: "CAL", OpCMP: "CMP", OpCMP_SAT: "CMP_SAT", OpCOS: "COS", OpCOS_SAT: "COS_SAT",
	OpDP2: "DP2", OpDP2_SAT: "DP2_SAT", OpDP3: "DP3", OpDP3_SAT: "DP3_SAT",
	OpDP4: "DP4", OpDP4_SAT: "DP4_SAT", OpDPH: "DPH", OpDPH_SAT: "DPH_SAT",
	OpDST: "DST", OpDST_SAT: "DST_SAT", OpEX2: "EX2", OpEX2_SAT: "EX2_SAT",
	OpEXP: "EXP", OpEXP_SAT: "EXP_SAT", OpFLR: "FLR", OpFLR_SAT: "FLR_SAT",
	OpFRC: "FRC", OpFRC_SAT: "FRC_SAT", OpLG2: "LG2", OpLG2_SAT: "LG2_SAT",
	OpLOG: "LOG", OpLOG_SAT: "LOG_SAT", OpLRP: "LRP", OpLRP_SAT: "LRP_SAT",
	OpMAD: "MAD", OpMAD_SAT: "MAD_SAT", OpMAX: "MAX", OpMAX_SAT: "MAX_SAT",
	OpMIN: "MIN", OpMIN_SAT: "MIN_SAT", OpMOV: "MOV", OpMOV_SAT: "MOV_SAT",
	OpMUL: "MUL", OpMUL_SAT: "MUL_SAT", OpPOW: "POW", OpPOW_SAT: "POW_SAT",
	OpRCP: "RCP", OpRCP_SAT: "RCP_SAT", OpRSQ: "RSQ", OpRSQ_SAT: "RSQ_SAT",
	OpSCS: "SCS", OpSCS_SAT: "SCS_SAT", OpSIN: "SIN", OpSIN_SAT: "SIN_SAT",
	OpSSG: "SSG", OpSSG_SAT: "SSG_SAT", OpSUB: "SUB", OpSUB_SAT: "SUB_SAT",
	OpSEQ: "SEQ", OpSNE: "SNE", OpSLT: "SLT", OpSLE: "SLE", OpSGT: "SGT", OpSGE: "SGE",
	OpSFL: "SFL", OpSTR: "STR", OpSWZ: "SWZ",
	OpTEX: "TEX", OpTXB: "TXB", OpTXL: "TXL", OpTXP: "TXP", OpXPD: "XPD",
	OpRET: "RET", OpBRK: "BRK", OpIF: "IF", OpELSE: "ELSE", OpENDIF: "ENDIF",
	OpLOOP: "LOOP", OpENDLOOP: "ENDLOOP", OpREP: "REP", OpENDREP: "ENDREP",
	OpKIL: "KIL", OpSCC: "SCC", OpPHI: "PHI",
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		m[name] = op
	}
	return m
}()

func (op Opcode) String() string { return opcodeNames[op] }

// OpcodeByName looks up an opcode by its IL text mnemonic.
func OpcodeByName(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

// EndsBlock reports whether op is one of the control instructions that end
// the current basic block (spec §4.10.2).
func (op Opcode) EndsBlock() bool {
	switch op {
	case OpCAL, OpIF, OpELSE, OpENDIF, OpLOOP, OpENDLOOP, OpREP, OpENDREP, OpRET, OpBRK, OpKIL:
		return true
	}
	return false
}

// Cond is the condition-code predicate of spec §4.10.1.
type Cond int

const (
	CondF Cond = iota
	CondLT
	CondEQ
	CondLE
	CondGT
	CondNE
	CondGE
	CondT
)

var condNames = map[Cond]string{
	CondF: "F", CondLT: "LT", CondEQ: "EQ", CondLE: "LE",
	CondGT: "GT", CondNE: "NE", CondGE: "GE", CondT: "T",
}

func (c Cond) String() string { return condNames[c] }

// TexTarget selects the sampler dimensionality for TEX/TXB/TXL/TXP.
type TexTarget int

const (
	Tex2D TexTarget = iota
	Tex3D
	TexCube
)

func (t TexTarget) String() string {
	switch t {
	case Tex3D:
		return "3D"
	case TexCube:
		return "CUBE"
	default:
		return "2D"
	}
}

// Segment tags the memory space a ProgVar belongs to.
type Segment int

const (
	SegmentNone Segment = iota
	SegmentParam
	SegmentAttrib
	SegmentVarying
	SegmentLocal
)

// VarKind tags the ProgVar tagged-union variant (spec §3.4).
type VarKind int

const (
	VarConst VarKind = iota
	VarParam
	VarIn
	VarOut
	VarTemp
)

// ProgVar is a declared register/memory slot of the IL program.
type ProgVar struct {
	ID       int
	Kind     VarKind
	Type     *gltype.Type
	Segment  Segment
	Location int
	ExtName  string // external (user-visible) name for Param/In/Out
	Values   []Value
	Used     bool
	Special  bool // built-in gl_* slot
}

// Value is one scalar lane of a Const ProgVar's initializer, carried without
// importing package constant here (ir is a lower-level package than
// constant's consumers); the lowering layer fills this in with the bit
// patterns from constant.Constant.
type Value struct {
	Bool  bool
	Int   int32
	Float float32
}

// Selector indexes one of the four vector lanes.
type Selector int

const (
	SelX Selector = iota
	SelY
	SelZ
	SelW
)

func (s Selector) String() string { return "xyzw"[s : s+1] }

// Src is a source register operand (spec §4.10.4).
type Src struct {
	Var       *ProgVar
	Offset    int // constant slot offset, for arrays/matrix columns
	AddrVar   *ProgVar
	AddrDelta int // a<id>+delta addressing
	Negate    bool
	Swizzle   [4]Selector // component read order
}

// Dst is a destination register operand.
type Dst struct {
	Var    *ProgVar
	Offset int
	Mask   [4]bool // which of xyzw are written
}

// Label names a branch target. It may be referenced before the block it
// names has been created; Target is filled in once that block is emitted
// (spec §4.10.2).
type Label struct {
	Name   string
	Target *Block
}

// Instruction is the tagged union of spec §4.10.1.
type Instruction struct {
	Op Opcode

	Dst  Dst
	Src0 Src
	Src1 Src
	Src2 Src

	// Swizzle (extended, SWZ)
	ExtSel [4]ExtSelector

	// Tex
	Sampler *ProgVar
	Target  TexTarget

	// Branch/Cond
	Label *Label
	Cond  Cond
	Sel   [4]Selector
	NSel  int // number of lanes in Sel that are meaningful

	// RepCount is REP's literal trip count, computed at compile time from a
	// for-loop's header (spec §4.8.3); meaningful only when Op == OpREP.
	RepCount int

	// Precision suffix on ALU ops (.L/.M/.H/.U)
	Precision gltype.Precision
}

// ExtSelector is one lane selector for an extended swizzle (SWZ): a constant
// 0/1/-0/-1, or a signed component of the source reference.
type ExtSelector struct {
	IsConst  bool
	ConstVal float32 // 0 or 1; -0 and -1 set Negate as well
	Comp     Selector
	Negate   bool
}

// Block is a maximal straight-line instruction sequence.
type Block struct {
	ID           int
	Prev, Next   *Block
	Instructions []*Instruction
	Label        *Label // non-nil if some Label.Target == this block
}

// Append adds an instruction to the block.
func (b *Block) Append(inst *Instruction) {
	b.Instructions = append(b.Instructions, inst)
}

// Program is the ShaderProgram of spec §3.4: the block list, label table,
// and five variable pools.
type Program struct {
	Blocks *Block // head of the doubly linked block list
	tail   *Block

	nextVar   int
	nextBlock int
	nextAddr  int

	Params []*ProgVar
	Temps  []*ProgVar
	Ins    []*ProgVar
	Outs   []*ProgVar
	Addrs  []*ProgVar

	constants map[constKey]*ProgVar
	Labels    map[string]*Label
}

type constKey struct {
	hash uint32
	typ  *gltype.Type
}

// NewProgram creates an empty program with one initial block, matching
// spec §4.9 step 3.
func NewProgram() *Program {
	p := &Program{constants: map[constKey]*ProgVar{}, Labels: map[string]*Label{}}
	first := p.NewBlock()
	p.Blocks = first
	p.tail = first
	return p
}

// NewBlock allocates a fresh block and appends it to the program's block
// list, returning it as the new current tail.
func (p *Program) NewBlock() *Block {
	b := &Block{ID: p.nextBlock}
	p.nextBlock++
	if p.tail != nil {
		b.Prev = p.tail
		p.tail.Next = b
		p.tail = b
	} else {
		p.tail = b
	}
	return b
}

// Tail returns the current last block, the one new instructions append to.
func (p *Program) Tail() *Block { return p.tail }

// EndBlock starts a fresh block after a control instruction, per spec
// §4.10.2, and returns it.
func (p *Program) EndBlock() *Block { return p.NewBlock() }

// NewLabel creates (or, if name already exists, returns) a named label,
// supporting forward references per spec §4.10.2.
func (p *Program) NewLabel(name string) *Label {
	if l, ok := p.Labels[name]; ok {
		return l
	}
	l := &Label{Name: name}
	p.Labels[name] = l
	return l
}

// BindLabel resolves label to block, and records block.Label so the writer
// can emit "name:" before it.
func (p *Program) BindLabel(l *Label, b *Block) {
	l.Target = b
	b.Label = l
}

func (p *Program) newVar(kind VarKind, t *gltype.Type) *ProgVar {
	v := &ProgVar{ID: p.nextVar, Kind: kind, Type: t}
	p.nextVar++
	return v
}

// NewTemp allocates a fresh temporary ProgVar.
func (p *Program) NewTemp(t *gltype.Type) *ProgVar {
	v := p.newVar(VarTemp, t)
	v.Segment = SegmentLocal
	p.Temps = append([]*ProgVar{v}, p.Temps...)
	return v
}

// NewParam allocates a uniform parameter ProgVar with an external name.
func (p *Program) NewParam(t *gltype.Type, extName string, location int) *ProgVar {
	v := p.newVar(VarParam, t)
	v.Segment = SegmentParam
	v.ExtName = extName
	v.Location = location
	p.Params = append([]*ProgVar{v}, p.Params...)
	return v
}

// NewIn allocates an input (attribute or incoming varying) ProgVar.
func (p *Program) NewIn(t *gltype.Type, seg Segment, extName string, location int) *ProgVar {
	v := p.newVar(VarIn, t)
	v.Segment = seg
	v.ExtName = extName
	v.Location = location
	p.Ins = append([]*ProgVar{v}, p.Ins...)
	return v
}

// NewOut allocates an output (varying or built-in) ProgVar.
func (p *Program) NewOut(t *gltype.Type, seg Segment, extName string, location int) *ProgVar {
	v := p.newVar(VarOut, t)
	v.Segment = seg
	v.ExtName = extName
	v.Location = location
	p.Outs = append([]*ProgVar{v}, p.Outs...)
	return v
}

// NewAddr allocates a fresh address register.
func (p *Program) NewAddr() *ProgVar {
	v := &ProgVar{ID: p.nextAddr, Kind: VarTemp}
	p.nextAddr++
	p.Addrs = append(p.Addrs, v)
	return v
}

// InternConst deduplicates a constant ProgVar by (hash, type, values),
// matching spec §4.10.3's create_prog_var_const. hash and equals must be
// supplied by the caller (package lower, which owns package constant) so
// that ir does not need to import it.
func (p *Program) InternConst(t *gltype.Type, values []Value, hash uint32, equals func(a, b []Value) bool) *ProgVar {
	key := constKey{hash: hash, typ: t}
	if existing, ok := p.constants[key]; ok && equals(existing.Values, values) {
		return existing
	}
	v := p.newVar(VarConst, t)
	v.Values = values
	p.constants[key] = v
	return v
}

// RegisterConst inserts v directly into the constant pool, keyed by its own
// ID rather than a value hash. The IL text reader (component K) parses
// declarations that were already deduplicated by the writer that produced
// the text, so it only needs the pool populated well enough for UsedConsts
// to find v again; it does not need InternConst's value-equality dedup.
func (p *Program) RegisterConst(v *ProgVar) {
	p.constants[constKey{hash: uint32(v.ID), typ: v.Type}] = v
}

// MarkUsed walks every instruction in the program's block list, marking the
// `used` flag on every ProgVar it references, address registers included
// (spec §4.10.4's "writer first walks the whole program..."); labels are
// not tracked. It resets all
// Used flags to false before walking, matching "starting from a fresh
// all-unused state".
func (p *Program) MarkUsed() {
	for _, v := range p.allVars() {
		v.Used = false
	}
	mark := func(v *ProgVar) {
		if v != nil {
			v.Used = true
		}
	}
	for b := p.Blocks; b != nil; b = b.Next {
		for _, inst := range b.Instructions {
			mark(inst.Dst.Var)
			mark(inst.Src0.Var)
			mark(inst.Src1.Var)
			mark(inst.Src2.Var)
			mark(inst.Src0.AddrVar)
			mark(inst.Src1.AddrVar)
			mark(inst.Src2.AddrVar)
			mark(inst.Sampler)
		}
	}
}

func (p *Program) allVars() []*ProgVar {
	var all []*ProgVar
	all = append(all, p.Params...)
	all = append(all, p.Temps...)
	all = append(all, p.Ins...)
	all = append(all, p.Outs...)
	all = append(all, p.Addrs...)
	for _, v := range p.constants {
		all = append(all, v)
	}
	return all
}

// UsedConsts returns constant ProgVars with Used == true, in stable ID
// order, for the writer's header section.
func (p *Program) UsedConsts() []*ProgVar {
	var out []*ProgVar
	for _, v := range p.constants {
		if v.Used {
			out = append(out, v)
		}
	}
	sortByID(out)
	return out
}

func sortByID(vs []*ProgVar) {
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && vs[j-1].ID > vs[j].ID; j-- {
			vs[j-1], vs[j] = vs[j], vs[j-1]
		}
	}
}
