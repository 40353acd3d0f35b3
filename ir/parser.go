package ir

import (
	"os"
	"strconv"
	"strings"
)

// Parse loads a textual IR module. The accepted dialect is the
// LLVM-flavored subset the accelerator models; see Instruction for the
// operand layout of each opcode.
func Parse(src string) (*Module, error) {
	return parseModule("module", src)
}

// ParseFile loads a module from a file.
func ParseFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseModule(path, string(data))
}

type rawLine struct {
	no   int
	text string
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func parseModule(name, src string) (*Module, error) {
	mod := &Module{Name: name}
	lines := strings.Split(src, "\n")

	i := 0
	for i < len(lines) {
		text := stripComment(lines[i])
		if text == "" {
			i++
			continue
		}

		if !strings.HasPrefix(text, "define ") {
			return nil, Malformedf(i+1, "unexpected top-level input %q", text)
		}

		header := rawLine{no: i + 1, text: text}
		var body []rawLine
		i++
		for i < len(lines) {
			t := stripComment(lines[i])
			if t == "}" {
				break
			}
			if t != "" {
				body = append(body, rawLine{no: i + 1, text: t})
			}
			i++
		}
		if i == len(lines) {
			return nil, Malformedf(header.no, "unterminated function body")
		}
		i++

		fn, err := parseFunction(header, body)
		if err != nil {
			return nil, err
		}
		if mod.Function(fn.Name) != nil {
			return nil, Malformedf(header.no, "duplicate function @%s", fn.Name)
		}
		mod.addFunction(fn)
	}

	if mod.Entry() == nil {
		return nil, Malformedf(0, "missing entry function @%s", EntryName)
	}
	return mod, nil
}

type funcBuilder struct {
	fn       *Function
	regs     map[string]RegID
	blockIdx map[string]int
	cur      *BasicBlock
}

func (b *funcBuilder) reg(name string) RegID {
	if id, ok := b.regs[name]; ok {
		return id
	}
	id := RegID(b.fn.NumRegs)
	b.fn.NumRegs++
	b.fn.regNames = append(b.fn.regNames, name)
	b.regs[name] = id
	return id
}

func (b *funcBuilder) newBlock(label string, line int) error {
	if _, ok := b.blockIdx[label]; ok {
		return Malformedf(line, "duplicate block label %q", label)
	}
	blk := &BasicBlock{Index: len(b.fn.Blocks), Label: label}
	b.blockIdx[label] = blk.Index
	b.fn.Blocks = append(b.fn.Blocks, blk)
	b.cur = blk
	return nil
}

func parseFunction(header rawLine, body []rawLine) (*Function, error) {
	fn, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	b := &funcBuilder{
		fn:       fn,
		regs:     make(map[string]RegID),
		blockIdx: make(map[string]int),
	}
	for pi := range fn.Params {
		fn.Params[pi].Reg = b.reg(fn.Params[pi].Name)
	}

	// First pass: establish block labels so branches and phis can
	// reference blocks that appear later in the text.
	for _, ln := range body {
		if label, ok := labelOf(ln.text); ok {
			if err := b.newBlock(label, ln.no); err != nil {
				return nil, err
			}
		} else if len(b.fn.Blocks) == 0 {
			if err := b.newBlock("entry", ln.no); err != nil {
				return nil, err
			}
		}
	}
	if len(fn.Blocks) == 0 {
		return nil, Malformedf(header.no, "function @%s has no body", fn.Name)
	}

	// Second pass: parse instructions into blocks.
	b.cur = fn.Blocks[0]
	for _, ln := range body {
		if label, ok := labelOf(ln.text); ok {
			b.cur = fn.Blocks[b.blockIdx[label]]
			continue
		}
		if err := b.parseInstruction(ln); err != nil {
			return nil, err
		}
	}

	if err := b.finish(header.no); err != nil {
		return nil, err
	}
	return fn, nil
}

func labelOf(text string) (string, bool) {
	if !strings.HasSuffix(text, ":") {
		return "", false
	}
	label := strings.TrimSuffix(text, ":")
	if label == "" || strings.ContainsAny(label, " \t,%") {
		return "", false
	}
	return label, true
}

func parseHeader(header rawLine) (*Function, error) {
	text := strings.TrimPrefix(header.text, "define ")
	if !strings.HasSuffix(text, "{") {
		return nil, Malformedf(header.no, "expected '{' at end of function header")
	}
	text = strings.TrimSpace(strings.TrimSuffix(text, "{"))

	at := strings.IndexByte(text, '@')
	open := strings.IndexByte(text, '(')
	end := strings.LastIndexByte(text, ')')
	if at < 0 || open < at || end < open {
		return nil, Malformedf(header.no, "unparseable function header %q", header.text)
	}

	retTy, ok := ParseType(strings.TrimSpace(text[:at]))
	if !ok {
		return nil, Malformedf(header.no, "unknown return type %q", strings.TrimSpace(text[:at]))
	}

	fn := &Function{
		Name:  strings.TrimSpace(text[at+1 : open]),
		RetTy: retTy,
	}
	if fn.Name == "" {
		return nil, Malformedf(header.no, "missing function name")
	}

	paramText := strings.TrimSpace(text[open+1 : end])
	if paramText != "" {
		for _, p := range strings.Split(paramText, ",") {
			fields := strings.Fields(p)
			if len(fields) != 2 || !strings.HasPrefix(fields[1], "%") {
				return nil, Malformedf(header.no, "unparseable parameter %q", p)
			}
			ty, ok := ParseType(fields[0])
			if !ok || ty == Void {
				return nil, Malformedf(header.no, "unknown parameter type %q", fields[0])
			}
			fn.Params = append(fn.Params, Param{
				Name: strings.TrimPrefix(fields[1], "%"),
				Ty:   ty,
			})
		}
	}
	return fn, nil
}

func (b *funcBuilder) parseInstruction(ln rawLine) error {
	text := ln.text
	result := NoReg
	resultName := ""

	if strings.HasPrefix(text, "%") {
		eq := strings.Index(text, "=")
		if eq < 0 {
			return Malformedf(ln.no, "expected '=' after result register")
		}
		resultName = strings.TrimSpace(strings.TrimPrefix(text[:eq], "%"))
		text = strings.TrimSpace(text[eq+1:])
	}

	opName := text
	if sp := strings.IndexAny(text, " \t"); sp >= 0 {
		opName = text[:sp]
		text = strings.TrimSpace(text[sp:])
	} else {
		text = ""
	}

	op, ok := opcodesByName[opName]
	if !ok {
		return Malformedf(ln.no, "unsupported opcode %q", opName)
	}

	inst := &Instruction{
		ID:     len(b.fn.Instrs),
		Op:     op,
		Result: NoReg,
		Block:  b.cur.Index,
	}

	var err error
	switch op {
	case OpAdd, OpSub, OpMul, OpUDiv, OpSDiv, OpURem, OpSRem,
		OpAnd, OpOr, OpXor, OpShl, OpLShr, OpAShr,
		OpFAdd, OpFSub, OpFMul, OpFDiv:
		err = b.parseBinary(inst, text, ln.no)
	case OpICmp, OpFCmp:
		err = b.parseCompare(inst, text, ln.no)
	case OpPhi:
		err = b.parsePhi(inst, text, ln.no)
	case OpBr:
		err = b.parseBranch(inst, text, ln.no)
	case OpLoad:
		err = b.parseLoad(inst, text, ln.no)
	case OpStore:
		err = b.parseStore(inst, text, ln.no)
	case OpGEP:
		err = b.parseGEP(inst, text, ln.no)
	case OpCall:
		err = b.parseCall(inst, text, ln.no)
	case OpRet:
		err = b.parseRet(inst, text, ln.no)
	default:
		err = Malformedf(ln.no, "unsupported opcode %q", opName)
	}
	if err != nil {
		return err
	}

	hasResult := inst.Ty != Void &&
		op != OpBr && op != OpStore && op != OpRet
	if hasResult && resultName == "" {
		return Malformedf(ln.no, "%s produces a value but no result register is named", opName)
	}
	if !hasResult && resultName != "" {
		return Malformedf(ln.no, "%s does not produce a value", opName)
	}
	if hasResult {
		result = b.reg(resultName)
	}
	inst.Result = result

	b.fn.Instrs = append(b.fn.Instrs, inst)
	b.cur.Instrs = append(b.cur.Instrs, inst)
	return nil
}

// splitArgs splits on top-level commas, leaving phi's bracketed pairs
// intact.
func splitArgs(text string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func (b *funcBuilder) parseOperand(tok string, ty Type, line int) (Operand, error) {
	tok = strings.TrimSpace(tok)
	if strings.HasPrefix(tok, "%") {
		return RegOperand(b.reg(strings.TrimPrefix(tok, "%"))), nil
	}

	if ty.IsFloat() {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Operand{}, Malformedf(line, "bad %s constant %q", ty, tok)
		}
		if ty == Float {
			return ConstOperand(FloatValue(float32(f))), nil
		}
		return ConstOperand(DoubleValue(f)), nil
	}

	switch tok {
	case "true":
		return ConstOperand(IntValue(I1, 1)), nil
	case "false":
		return ConstOperand(IntValue(I1, 0)), nil
	}

	n, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(tok, 0, 64)
		if uerr != nil {
			return Operand{}, Malformedf(line, "bad %s constant %q", ty, tok)
		}
		return ConstOperand(IntValue(ty, u)), nil
	}
	return ConstOperand(IntValue(ty, uint64(n))), nil
}

func (b *funcBuilder) parseTypedHead(text string, line int) (Type, string, error) {
	sp := strings.IndexAny(text, " \t")
	if sp < 0 {
		return Void, "", Malformedf(line, "missing operands")
	}
	ty, ok := ParseType(text[:sp])
	if !ok {
		return Void, "", Malformedf(line, "unknown type %q", text[:sp])
	}
	return ty, strings.TrimSpace(text[sp:]), nil
}

func (b *funcBuilder) parseBinary(inst *Instruction, text string, line int) error {
	ty, rest, err := b.parseTypedHead(text, line)
	if err != nil {
		return err
	}
	args := splitArgs(rest)
	if len(args) != 2 {
		return Malformedf(line, "%s expects two operands", inst.Op)
	}
	inst.Ty = ty
	for _, a := range args {
		opnd, err := b.parseOperand(a, ty, line)
		if err != nil {
			return err
		}
		inst.Operands = append(inst.Operands, opnd)
	}
	return nil
}

func (b *funcBuilder) parseCompare(inst *Instruction, text string, line int) error {
	sp := strings.IndexAny(text, " \t")
	if sp < 0 {
		return Malformedf(line, "%s expects a predicate", inst.Op)
	}
	pred, ok := predsByName[text[:sp]]
	if !ok {
		return Malformedf(line, "unknown comparison predicate %q", text[:sp])
	}
	inst.Pred = pred

	ty, rest, err := b.parseTypedHead(strings.TrimSpace(text[sp:]), line)
	if err != nil {
		return err
	}
	args := splitArgs(rest)
	if len(args) != 2 {
		return Malformedf(line, "%s expects two operands", inst.Op)
	}
	inst.Ty = I1
	inst.Elem = ty
	for _, a := range args {
		opnd, err := b.parseOperand(a, ty, line)
		if err != nil {
			return err
		}
		inst.Operands = append(inst.Operands, opnd)
	}
	return nil
}

func (b *funcBuilder) parsePhi(inst *Instruction, text string, line int) error {
	ty, rest, err := b.parseTypedHead(text, line)
	if err != nil {
		return err
	}
	inst.Ty = ty
	for _, pair := range splitArgs(rest) {
		pair = strings.TrimSpace(pair)
		if !strings.HasPrefix(pair, "[") || !strings.HasSuffix(pair, "]") {
			return Malformedf(line, "phi incoming must be '[ value, %%block ]', got %q", pair)
		}
		inner := splitArgs(strings.TrimSpace(pair[1 : len(pair)-1]))
		if len(inner) != 2 || !strings.HasPrefix(inner[1], "%") {
			return Malformedf(line, "phi incoming must be '[ value, %%block ]', got %q", pair)
		}
		opnd, err := b.parseOperand(inner[0], ty, line)
		if err != nil {
			return err
		}
		blk, ok := b.blockIdx[strings.TrimPrefix(inner[1], "%")]
		if !ok {
			return Malformedf(line, "phi references unknown block %q", inner[1])
		}
		inst.Operands = append(inst.Operands, opnd)
		inst.Incoming = append(inst.Incoming, blk)
	}
	if len(inst.Operands) == 0 {
		return Malformedf(line, "phi needs at least one incoming value")
	}
	return nil
}

func (b *funcBuilder) blockRef(tok string, line int) (Operand, error) {
	if !strings.HasPrefix(tok, "%") {
		return Operand{}, Malformedf(line, "expected block reference, got %q", tok)
	}
	idx, ok := b.blockIdx[strings.TrimPrefix(tok, "%")]
	if !ok {
		return Operand{}, Malformedf(line, "branch to unknown block %q", tok)
	}
	return BlockOperand(idx), nil
}

func (b *funcBuilder) parseBranch(inst *Instruction, text string, line int) error {
	fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
	inst.Ty = Void

	switch {
	case len(fields) == 2 && fields[0] == "label":
		target, err := b.blockRef(fields[1], line)
		if err != nil {
			return err
		}
		inst.Operands = []Operand{target}
		return nil
	case len(fields) == 6 && fields[0] == "i1" &&
		fields[2] == "label" && fields[4] == "label":
		cond, err := b.parseOperand(fields[1], I1, line)
		if err != nil {
			return err
		}
		taken, err := b.blockRef(fields[3], line)
		if err != nil {
			return err
		}
		fallthru, err := b.blockRef(fields[5], line)
		if err != nil {
			return err
		}
		inst.Operands = []Operand{cond, taken, fallthru}
		return nil
	}
	return Malformedf(line, "unparseable branch %q", text)
}

func (b *funcBuilder) parseLoad(inst *Instruction, text string, line int) error {
	args := splitArgs(text)
	if len(args) != 2 {
		return Malformedf(line, "load expects 'load <ty>, ptr <addr>'")
	}
	elem, ok := ParseType(args[0])
	if !ok || elem == Void {
		return Malformedf(line, "unknown load type %q", args[0])
	}
	ptr, err := b.pointerOperand(args[1], line)
	if err != nil {
		return err
	}
	inst.Ty = elem
	inst.Elem = elem
	inst.Operands = []Operand{ptr}
	return nil
}

func (b *funcBuilder) parseStore(inst *Instruction, text string, line int) error {
	args := splitArgs(text)
	if len(args) != 2 {
		return Malformedf(line, "store expects 'store <ty> <val>, ptr <addr>'")
	}
	elem, valTok, err := b.parseTypedHead(args[0], line)
	if err != nil {
		return err
	}
	val, err := b.parseOperand(valTok, elem, line)
	if err != nil {
		return err
	}
	ptr, err := b.pointerOperand(args[1], line)
	if err != nil {
		return err
	}
	inst.Ty = Void
	inst.Elem = elem
	inst.Operands = []Operand{val, ptr}
	return nil
}

func (b *funcBuilder) pointerOperand(tok string, line int) (Operand, error) {
	fields := strings.Fields(tok)
	if len(fields) != 2 || fields[0] != "ptr" {
		return Operand{}, Malformedf(line, "expected 'ptr <addr>', got %q", tok)
	}
	return b.parseOperand(fields[1], Ptr, line)
}

func (b *funcBuilder) parseGEP(inst *Instruction, text string, line int) error {
	args := splitArgs(text)
	if len(args) < 3 {
		return Malformedf(line, "getelementptr expects element type, base, and indices")
	}
	elem, ok := ParseType(args[0])
	if !ok || elem == Void {
		return Malformedf(line, "unknown element type %q", args[0])
	}
	base, err := b.pointerOperand(args[1], line)
	if err != nil {
		return err
	}
	inst.Ty = Ptr
	inst.Elem = elem
	inst.Operands = []Operand{base}
	for _, idx := range args[2:] {
		ty, tok, err := b.parseTypedHead(idx, line)
		if err != nil {
			return err
		}
		opnd, err := b.parseOperand(tok, ty, line)
		if err != nil {
			return err
		}
		inst.Operands = append(inst.Operands, opnd)
	}
	return nil
}

func (b *funcBuilder) parseCall(inst *Instruction, text string, line int) error {
	ty, rest, err := b.parseTypedHead(text, line)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(rest, "@") || !strings.HasSuffix(rest, ")") {
		return Malformedf(line, "call expects '@callee(args)'")
	}
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return Malformedf(line, "call expects '@callee(args)'")
	}
	inst.Ty = ty
	inst.Callee = strings.TrimSpace(rest[1:open])
	argText := strings.TrimSpace(rest[open+1 : len(rest)-1])
	if argText == "" {
		return nil
	}
	for _, a := range splitArgs(argText) {
		aty, tok, err := b.parseTypedHead(a, line)
		if err != nil {
			return err
		}
		opnd, err := b.parseOperand(tok, aty, line)
		if err != nil {
			return err
		}
		inst.Operands = append(inst.Operands, opnd)
	}
	return nil
}

func (b *funcBuilder) parseRet(inst *Instruction, text string, line int) error {
	inst.Ty = Void
	if text == "void" {
		return nil
	}
	ty, tok, err := b.parseTypedHead(text, line)
	if err != nil {
		return err
	}
	opnd, err := b.parseOperand(tok, ty, line)
	if err != nil {
		return err
	}
	inst.Elem = ty
	inst.Operands = []Operand{opnd}
	return nil
}

// finish validates block structure and wires successor sets.
func (b *funcBuilder) finish(headerLine int) error {
	for _, blk := range b.fn.Blocks {
		if len(blk.Instrs) == 0 {
			return Malformedf(headerLine, "block %q is empty", blk.Label)
		}

		seenNonPhi := false
		for i, in := range blk.Instrs {
			if in.Op == OpPhi {
				if seenNonPhi {
					return Malformedf(headerLine,
						"phi not at entry of block %q", blk.Label)
				}
			} else {
				seenNonPhi = true
			}
			if in.Op.IsTerminator() && i != len(blk.Instrs)-1 {
				return Malformedf(headerLine,
					"terminator in the middle of block %q", blk.Label)
			}
		}

		term := blk.Terminator()
		if !term.Op.IsTerminator() {
			return Malformedf(headerLine,
				"block %q does not end in a terminator", blk.Label)
		}
		if term.Op == OpBr {
			for _, opnd := range term.Operands {
				if opnd.Kind == OperandBlock {
					blk.Succs = append(blk.Succs, opnd.Block)
				}
			}
		}
	}
	return nil
}
