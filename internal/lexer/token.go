// Package lexer turns MIPS assembly source text into a stream of Tokens,
// one line at a time, with no backtracking.
package lexer

import "fmt"

// Kind classifies a Token's lexeme.
type Kind uint8

const (
	Directive Kind = iota
	Identifier
	Mnemonic
	Comment
	Delimiter
	Colon
	RegisterName
	Integer
	RealNumber
	QuotedString
	LeftParen
	RightParen
	Unknown
)

var kindNames = [...]string{
	Directive:    "Directive",
	Identifier:   "Identifier",
	Mnemonic:     "Mnemonic",
	Comment:      "Comment",
	Delimiter:    "Delimiter",
	Colon:        "Colon",
	RegisterName: "RegisterName",
	Integer:      "Integer",
	RealNumber:   "RealNumber",
	QuotedString: "QuotedString",
	LeftParen:    "LeftParen",
	RightParen:   "RightParen",
	Unknown:      "Unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Token is one lexeme tagged with its kind and the 1-based source line it
// came from.
type Token struct {
	Lexeme string
	Kind   Kind
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Lexeme, t.Line)
}

// knownDirectives is the set of directive names recognized after a leading
// '.'; anything else classifies as Unknown rather than Directive.
var knownDirectives = map[string]bool{
	"data": true, "text": true, "globl": true,
	"ascii": true, "asciiz": true,
	"word": true, "byte": true, "half": true, "space": true,
	"float": true, "double": true,
}

// knownMnemonics is the set of recognized opcode lexemes, core and pseudo
// alike; an identifier-shaped lexeme not in this set classifies as
// Identifier rather than Mnemonic.
var knownMnemonics = map[string]bool{
	"add": true, "addu": true, "addi": true, "addiu": true,
	"sub": true, "subu": true,
	"and": true, "andi": true, "or": true, "ori": true, "xor": true, "xori": true, "nor": true,
	"sll": true, "srl": true, "sra": true,
	"slt": true, "sltu": true, "slti": true, "sltiu": true,
	"lui": true,
	"lw":  true, "sw": true, "lb": true, "sb": true, "lh": true, "sh": true,
	"j": true, "jal": true, "jr": true, "beq": true, "bne": true,
	"mult": true, "multu": true, "div": true, "divu": true, "mfhi": true, "mflo": true,
	"li": true, "la": true, "move": true,
	"blt": true, "bgt": true, "ble": true, "bge": true,
}
