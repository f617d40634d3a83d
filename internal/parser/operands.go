package parser

import (
	"strconv"
	"strings"

	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/lexer"
)

// operand is one comma-separated argument to a mnemonic, still in token
// form, since a memory operand ("4($sp)") spans more than one token.
type operand struct {
	toks []lexer.Token
	line int
}

func (o operand) empty() bool { return len(o.toks) == 0 }

// register expects o to be exactly one RegisterName token.
func (o operand) register() (inst.GPR, error) {
	if len(o.toks) != 1 || o.toks[0].Kind != lexer.RegisterName {
		return inst.BadGPR, o.err(ErrInvalidRegister)
	}

	reg, ok := inst.LookupRegister(o.toks[0].Lexeme)
	if !ok {
		return inst.BadGPR, o.err(ErrInvalidRegister)
	}

	return reg, nil
}

// immediate expects o to be exactly one (optionally negative) Integer
// token, parsed as a width-bit two's-complement value.
func (o operand) immediate(width int) (int32, error) {
	if len(o.toks) != 1 || (o.toks[0].Kind != lexer.Integer) {
		return 0, o.err(ErrInvalidImmediate)
	}

	v, err := strconv.ParseInt(o.toks[0].Lexeme, 0, 64)
	if err != nil {
		return 0, o.err(ErrInvalidImmediate)
	}

	lo := -(int64(1) << (width - 1))
	hi := int64(1)<<(width-1) - 1
	unsignedHi := int64(1)<<width - 1

	signedFit := v >= lo && v <= hi
	unsignedFit := v >= 0 && v <= unsignedHi

	if !signedFit && !unsignedFit {
		return 0, o.err(ErrInvalidImmediate)
	}

	return int32(uint32(v)), nil
}

// label expects o to be exactly one Identifier token.
func (o operand) label() (string, error) {
	if len(o.toks) != 1 || o.toks[0].Kind != lexer.Identifier {
		return "", o.err(ErrInvalidImmediate)
	}

	return o.toks[0].Lexeme, nil
}

// baseOffset expects the MIPS memory-operand form "imm(rs)".
func (o operand) baseOffset() (int32, inst.GPR, error) {
	if len(o.toks) < 4 {
		return 0, inst.BadGPR, o.err(ErrParsing)
	}

	immTok := o.toks[0]
	if immTok.Kind != lexer.Integer {
		return 0, inst.BadGPR, o.err(ErrInvalidImmediate)
	}

	imm, err := strconv.ParseInt(immTok.Lexeme, 0, 32)
	if err != nil {
		return 0, inst.BadGPR, o.err(ErrInvalidImmediate)
	}

	if o.toks[1].Kind != lexer.LeftParen || o.toks[len(o.toks)-1].Kind != lexer.RightParen {
		return 0, inst.BadGPR, o.err(ErrParsing)
	}

	regTok := o.toks[2]
	if regTok.Kind != lexer.RegisterName {
		return 0, inst.BadGPR, o.err(ErrInvalidRegister)
	}

	reg, ok := inst.LookupRegister(regTok.Lexeme)
	if !ok {
		return 0, inst.BadGPR, o.err(ErrInvalidRegister)
	}

	return int32(imm), reg, nil
}

func (o operand) err(sentinel error) error {
	return &ParsingError{Line: o.line, Text: o.text(), Err: sentinel}
}

func (o operand) text() string {
	var sb strings.Builder

	for i, t := range o.toks {
		if i > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(t.Lexeme)
	}

	return sb.String()
}

// splitOperands groups the tokens following a mnemonic into comma-separated
// operands, preserving the LeftParen/RightParen grouping a memory operand
// needs.
func splitOperands(toks []lexer.Token, line int) []operand {
	var (
		out     []operand
		current []lexer.Token
	)

	flush := func() {
		out = append(out, operand{toks: current, line: line})
		current = nil
	}

	for _, t := range toks {
		if t.Kind == lexer.Delimiter {
			flush()
			continue
		}

		current = append(current, t)
	}

	if len(current) > 0 {
		flush()
	}

	return out
}
