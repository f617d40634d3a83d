package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/lexer"
	"github.com/cslab-edu/gomips32/internal/log"
	"github.com/cslab-edu/gomips32/internal/memory"
	"github.com/cslab-edu/gomips32/internal/program"
)

// section names the current region of the source file.
type section int

const (
	sectionText section = iota
	sectionData
)

// Parser consumes a token stream line by line, populates the data segment
// directly through Memory, and produces an ordered Statement list for the
// text section plus the symbol table seen so far. Text labels are entered
// with a provisional address of zero; the assembler overwrites them once it
// knows the post-pseudo-expansion instruction count (§4.5).
type Parser struct {
	mem     *memory.Memory
	symbols program.SymbolTable

	section section
	dataPtr uint32

	statements []Statement
	errs       []error

	log *log.Logger
}

// New returns a Parser that writes .data contents into mem and starts in
// the text section per the language surface.
func New(mem *memory.Memory, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Parser{
		mem:     mem,
		symbols: program.NewSymbolTable(),
		section: sectionText,
		dataPtr: program.DataBase,
		log:     logger,
	}
}

// Parse tokenizes nothing itself; it consumes an already-lexed token stream
// grouped by source line and returns the accumulated parse error, if any
// (via errors.Join). Statements and Symbols are valid to read regardless.
func (p *Parser) Parse(tokens []lexer.Token) error {
	for _, lineToks := range groupByLine(tokens) {
		p.parseLine(lineToks)
	}

	p.checkLabelReferences()

	return errors.Join(p.errs...)
}

// Statements returns the parsed text-section statement list, in source
// order.
func (p *Parser) Statements() []Statement {
	return p.statements
}

// Symbols returns the symbol table built so far: data labels at their final
// address, text labels at a provisional zero address pending the
// assembler's fixup pass.
func (p *Parser) Symbols() program.SymbolTable {
	return p.symbols
}

func groupByLine(tokens []lexer.Token) [][]lexer.Token {
	var (
		out     [][]lexer.Token
		current []lexer.Token
		line    = -1
	)

	for _, t := range tokens {
		if t.Line != line {
			if current != nil {
				out = append(out, current)
			}

			current = nil
			line = t.Line
		}

		current = append(current, t)
	}

	if current != nil {
		out = append(out, current)
	}

	return out
}

func (p *Parser) fail(line int, text string, err error) {
	p.errs = append(p.errs, &ParsingError{Line: line, Text: text, Err: err})
}

func (p *Parser) parseLine(toks []lexer.Token) {
	if len(toks) == 0 {
		return
	}

	line := toks[0].Line

	// Strip a trailing comment; it carries no semantic content.
	if toks[len(toks)-1].Kind == lexer.Comment {
		toks = toks[:len(toks)-1]
	}

	if len(toks) == 0 {
		return
	}

	// Section-switching directive.
	if toks[0].Kind == lexer.Directive {
		switch strings.ToLower(toks[0].Lexeme) {
		case ".data":
			p.section = sectionData
			return
		case ".text":
			p.section = sectionText
			return
		case ".globl":
			return // Single-file assembler: no linkage to honor.
		}
	}

	// Leading label declaration, shared by both sections.
	var label string
	if len(toks) >= 2 && toks[0].Kind == lexer.Identifier && toks[1].Kind == lexer.Colon {
		label = toks[0].Lexeme
		toks = toks[2:]
	}

	switch p.section {
	case sectionData:
		p.parseDataLine(label, toks, line)
	case sectionText:
		p.parseTextLine(label, toks, line)
	}
}

func (p *Parser) parseTextLine(label string, toks []lexer.Token, line int) {
	if label != "" {
		if _, exists := p.symbols[label]; exists {
			p.fail(line, label, ErrDuplicateLabel)
		} else {
			p.symbols.Add(label, 0) // Provisional; assembler fills the real address.
		}

		p.statements = append(p.statements, Statement{Label: label, Line: line})
	}

	if len(toks) == 0 {
		return
	}

	if toks[0].Kind != lexer.Mnemonic {
		p.fail(line, toks[0].Lexeme, ErrParsing)
		return
	}

	mnemonic := strings.ToLower(toks[0].Lexeme)

	in, err := p.parseInstruction(mnemonic, toks[1:], line)
	if err != nil {
		if pe, ok := err.(*ParsingError); ok {
			p.errs = append(p.errs, pe)
		} else {
			p.fail(line, mnemonic, err)
		}

		return
	}

	in.Line = line
	p.statements = append(p.statements, Statement{Instruction: &in, Line: line})
}

// alignments gives the byte alignment a directive's natural width requires.
var alignments = map[string]uint32{
	".half": 2, ".word": 4, ".float": 4, ".double": 8,
}

func (p *Parser) parseDataLine(label string, toks []lexer.Token, line int) {
	if len(toks) == 0 {
		if label != "" {
			p.fail(line, label, ErrParsing)
		}

		return
	}

	if toks[0].Kind != lexer.Directive {
		p.fail(line, toks[0].Lexeme, ErrParsing)
		return
	}

	directive := strings.ToLower(toks[0].Lexeme)

	if align, ok := alignments[directive]; ok {
		if rem := p.dataPtr % align; rem != 0 {
			p.dataPtr += align - rem
		}
	}

	if label != "" {
		if _, exists := p.symbols[label]; exists {
			p.fail(line, label, ErrDuplicateLabel)
		} else {
			p.symbols.Add(label, p.dataPtr)
		}
	}

	ops := splitOperands(toks[1:], line)

	switch directive {
	case ".byte":
		p.writeNumeric(ops, line, 8, func(v int32) { _ = p.mem.SetByte(p.dataPtr, int8(v)); p.dataPtr++ })
	case ".half":
		p.writeNumeric(ops, line, 16, func(v int32) { _ = p.mem.SetHalfword(p.dataPtr, int16(v)); p.dataPtr += 2 })
	case ".word":
		p.writeNumeric(ops, line, 32, func(v int32) { _ = p.mem.SetWord(p.dataPtr, v); p.dataPtr += 4 })
	case ".float":
		p.writeFloat(ops, line)
	case ".double":
		p.writeDouble(ops, line)
	case ".space":
		p.writeSpace(ops, line)
	case ".ascii":
		p.writeString(ops, line, false)
	case ".asciiz":
		p.writeString(ops, line, true)
	default:
		p.fail(line, directive, ErrParsing)
	}
}

func (p *Parser) writeNumeric(ops []operand, line int, width int, write func(int32)) {
	for _, op := range ops {
		v, err := op.immediate(width)
		if err != nil {
			p.fail(line, op.text(), ErrInvalidImmediate)
			continue
		}

		write(v)
	}
}

func (p *Parser) writeFloat(ops []operand, line int) {
	for _, op := range ops {
		f, err := op.float()
		if err != nil {
			p.fail(line, op.text(), ErrInvalidImmediate)
			continue
		}

		_ = p.mem.SetFloat(p.dataPtr, float32(f))
		p.dataPtr += 4
	}
}

func (p *Parser) writeDouble(ops []operand, line int) {
	for _, op := range ops {
		f, err := op.float()
		if err != nil {
			p.fail(line, op.text(), ErrInvalidImmediate)
			continue
		}

		_ = p.mem.SetDouble(p.dataPtr, f)
		p.dataPtr += 8
	}
}

func (p *Parser) writeSpace(ops []operand, line int) {
	if len(ops) != 1 {
		p.fail(line, "space", ErrParsing)
		return
	}

	n, err := ops[0].immediate(32)
	if err != nil || n < 0 {
		p.fail(line, ops[0].text(), ErrInvalidImmediate)
		return
	}

	p.dataPtr += uint32(n)
}

func (p *Parser) writeString(ops []operand, line int, nulTerminate bool) {
	for _, op := range ops {
		if len(op.toks) != 1 || op.toks[0].Kind != lexer.QuotedString {
			p.fail(line, op.text(), ErrParsing)
			continue
		}

		s := op.toks[0].Lexeme
		if nulTerminate {
			s += "\x00"
		}

		_ = p.mem.SetString(p.dataPtr, s)
		p.dataPtr += uint32(len(s))
	}
}

// float extends operand with a parse that accepts both Integer and
// RealNumber literals, since ".float 3" is valid syntax.
func (o operand) float() (float64, error) {
	if len(o.toks) != 1 || (o.toks[0].Kind != lexer.Integer && o.toks[0].Kind != lexer.RealNumber) {
		return 0, o.err(ErrInvalidImmediate)
	}

	v, err := strconv.ParseFloat(o.toks[0].Lexeme, 64)
	if err != nil {
		return 0, o.err(ErrInvalidImmediate)
	}

	return v, nil
}

// checkLabelReferences walks every parsed instruction with a label operand
// and reports ErrUndefinedLabel for any name absent from the symbol table.
// Text labels are present (with a provisional address) by this point, so
// this check does not need to wait for the assembler's fixup pass.
func (p *Parser) checkLabelReferences() {
	for _, st := range p.statements {
		if st.Instruction == nil || st.Instruction.Label == "" {
			continue
		}

		if _, ok := p.symbols[st.Instruction.Label]; !ok {
			p.fail(st.Line, st.Instruction.Label, ErrUndefinedLabel)
		}
	}
}

func (p *Parser) parseInstruction(mnemonic string, rest []lexer.Token, line int) (inst.Instruction, error) {
	ops := splitOperands(rest, line)

	reg3 := func(op inst.Opcode) (inst.Instruction, error) {
		if len(ops) != 3 {
			return inst.Instruction{}, fmt.Errorf("%w: %s wants 3 operands", ErrParsing, mnemonic)
		}

		rd, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		rs, err := ops[1].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		rt, err := ops[2].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: op, Rd: rd, Rs: rs, Rt: rt}, nil
	}

	iType := func(op inst.Opcode) (inst.Instruction, error) {
		if len(ops) != 3 {
			return inst.Instruction{}, fmt.Errorf("%w: %s wants 3 operands", ErrParsing, mnemonic)
		}

		rt, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		rs, err := ops[1].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		imm, err := ops[2].immediate(16)
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: op, Rt: rt, Rs: rs, Imm: imm}, nil
	}

	shift := func(op inst.Opcode) (inst.Instruction, error) {
		if len(ops) != 3 {
			return inst.Instruction{}, fmt.Errorf("%w: %s wants 3 operands", ErrParsing, mnemonic)
		}

		rd, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		rt, err := ops[1].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		imm, err := ops[2].immediate(5)
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: op, Rd: rd, Rt: rt, Imm: imm}, nil
	}

	loadStore := func(op inst.Opcode) (inst.Instruction, error) {
		if len(ops) != 2 {
			return inst.Instruction{}, fmt.Errorf("%w: %s wants 2 operands", ErrParsing, mnemonic)
		}

		rt, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		// lw's label-operand pseudo form: "lw $rt, label" with no parens.
		if op == inst.Lw && len(ops[1].toks) == 1 && ops[1].toks[0].Kind == lexer.Identifier {
			label, _ := ops[1].label()
			return inst.Instruction{Opcode: inst.LwLabel, Rt: rt, Label: label}, nil
		}

		imm, rs, err := ops[1].baseOffset()
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: op, Rt: rt, Rs: rs, Imm: imm}, nil
	}

	branch := func(op inst.Opcode) (inst.Instruction, error) {
		if len(ops) != 3 {
			return inst.Instruction{}, fmt.Errorf("%w: %s wants 3 operands", ErrParsing, mnemonic)
		}

		rs, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		rt, err := ops[1].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		label, err := ops[2].label()
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: op, Rs: rs, Rt: rt, Label: label}, nil
	}

	switch mnemonic {
	case "add":
		return reg3(inst.Add)
	case "addu":
		return reg3(inst.Addu)
	case "sub":
		return reg3(inst.Sub)
	case "subu":
		return reg3(inst.Subu)
	case "and":
		return reg3(inst.And)
	case "or":
		return reg3(inst.Or)
	case "xor":
		return reg3(inst.Xor)
	case "nor":
		return reg3(inst.Nor)
	case "slt":
		return reg3(inst.Slt)
	case "sltu":
		return reg3(inst.Sltu)

	case "addi":
		return iType(inst.Addi)
	case "addiu":
		return iType(inst.Addiu)
	case "andi":
		return iType(inst.Andi)
	case "ori":
		return iType(inst.Ori)
	case "xori":
		return iType(inst.Xori)
	case "slti":
		return iType(inst.Slti)
	case "sltiu":
		return iType(inst.Sltiu)

	case "sll":
		return shift(inst.Sll)
	case "srl":
		return shift(inst.Srl)
	case "sra":
		return shift(inst.Sra)

	case "lui":
		if len(ops) != 2 {
			return inst.Instruction{}, fmt.Errorf("%w: lui wants 2 operands", ErrParsing)
		}

		rt, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		imm, err := ops[1].immediate(16)
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: inst.Lui, Rt: rt, Imm: imm}, nil

	case "lw":
		return loadStore(inst.Lw)
	case "sw":
		return loadStore(inst.Sw)
	case "lb":
		return loadStore(inst.Lb)
	case "sb":
		return loadStore(inst.Sb)
	case "lh":
		return loadStore(inst.Lh)
	case "sh":
		return loadStore(inst.Sh)

	case "j", "jal":
		if len(ops) != 1 {
			return inst.Instruction{}, fmt.Errorf("%w: %s wants 1 operand", ErrParsing, mnemonic)
		}

		label, err := ops[0].label()
		if err != nil {
			return inst.Instruction{}, err
		}

		op := inst.J
		if mnemonic == "jal" {
			op = inst.Jal
		}

		return inst.Instruction{Opcode: op, Label: label}, nil

	case "jr":
		if len(ops) != 1 {
			return inst.Instruction{}, fmt.Errorf("%w: jr wants 1 operand", ErrParsing)
		}

		rs, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: inst.Jr, Rs: rs}, nil

	case "beq":
		return branch(inst.Beq)
	case "bne":
		return branch(inst.Bne)
	case "blt":
		return branch(inst.Blt)
	case "bgt":
		return branch(inst.Bgt)
	case "ble":
		return branch(inst.Ble)
	case "bge":
		return branch(inst.Bge)

	case "mult", "multu", "div", "divu":
		if len(ops) != 2 {
			return inst.Instruction{}, fmt.Errorf("%w: %s wants 2 operands", ErrParsing, mnemonic)
		}

		rs, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		rt, err := ops[1].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		var op inst.Opcode

		switch mnemonic {
		case "mult":
			op = inst.Mult
		case "multu":
			op = inst.Multu
		case "div":
			op = inst.Div
		case "divu":
			op = inst.Divu
		}

		return inst.Instruction{Opcode: op, Rs: rs, Rt: rt}, nil

	case "mfhi", "mflo":
		if len(ops) != 1 {
			return inst.Instruction{}, fmt.Errorf("%w: %s wants 1 operand", ErrParsing, mnemonic)
		}

		rd, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		op := inst.Mfhi
		if mnemonic == "mflo" {
			op = inst.Mflo
		}

		return inst.Instruction{Opcode: op, Rd: rd}, nil

	case "li":
		if len(ops) != 2 {
			return inst.Instruction{}, fmt.Errorf("%w: li wants 2 operands", ErrParsing)
		}

		rt, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		imm, err := ops[1].immediate(32)
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: inst.Li, Rt: rt, Imm: imm}, nil

	case "la":
		if len(ops) != 2 {
			return inst.Instruction{}, fmt.Errorf("%w: la wants 2 operands", ErrParsing)
		}

		rt, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		label, err := ops[1].label()
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: inst.La, Rt: rt, Label: label}, nil

	case "move":
		if len(ops) != 2 {
			return inst.Instruction{}, fmt.Errorf("%w: move wants 2 operands", ErrParsing)
		}

		rd, err := ops[0].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		rs, err := ops[1].register()
		if err != nil {
			return inst.Instruction{}, err
		}

		return inst.Instruction{Opcode: inst.Move, Rd: rd, Rs: rs}, nil

	default:
		return inst.Instruction{}, fmt.Errorf("%w: unknown mnemonic %q", ErrParsing, mnemonic)
	}
}
