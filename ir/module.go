package ir

// EntryName is the function the host invokes. Kernels without it
// cannot be scheduled.
const EntryName = "top"

// Param is a formal argument of a function. Arguments are bound to
// registers before the entry block starts.
type Param struct {
	Name string
	Ty   Type
	Reg  RegID
}

// BasicBlock is an ordered run of instructions ending in a terminator.
type BasicBlock struct {
	Index  int
	Label  string
	Instrs []*Instruction
	Succs  []int
}

// Terminator returns the block's final instruction.
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

// Function groups basic blocks; Blocks[0] is the entry block. Instrs
// lists every instruction in program order, indexed by Instruction.ID.
type Function struct {
	Name    string
	RetTy   Type
	Params  []Param
	Blocks  []*BasicBlock
	Instrs  []*Instruction
	NumRegs int

	regNames []string
}

// RegName returns the source-level name of a register, for diagnostics.
func (f *Function) RegName(id RegID) string {
	if id >= 0 && int(id) < len(f.regNames) {
		return f.regNames[id]
	}
	return "?"
}

// Block resolves a block index.
func (f *Function) Block(idx int) *BasicBlock {
	if idx < 0 || idx >= len(f.Blocks) {
		return nil
	}
	return f.Blocks[idx]
}

// Module is one loaded kernel: a set of functions, one of which must
// be the entry function.
type Module struct {
	Name   string
	Funcs  []*Function
	byName map[string]*Function
}

// Function looks a function up by name.
func (m *Module) Function(name string) *Function {
	return m.byName[name]
}

// Entry returns the kernel's entry function.
func (m *Module) Entry() *Function {
	return m.byName[EntryName]
}

func (m *Module) addFunction(f *Function) {
	if m.byName == nil {
		m.byName = make(map[string]*Function)
	}
	m.Funcs = append(m.Funcs, f)
	m.byName[f.Name] = f
}
