// Package program defines the immutable, assembled unit the CPU executes:
// a flat core-instruction array, its symbol table, and a parallel
// source-line map, plus the address arithmetic between a PC value and an
// index into that array.
package program

import "github.com/cslab-edu/gomips32/internal/memory"

// SymbolTable maps a label name to its absolute 32-bit address. Text labels
// resolve into the text segment; data labels resolve wherever the parser
// placed them in the data segment.
type SymbolTable map[string]uint32

// NewSymbolTable returns an empty table.
func NewSymbolTable() SymbolTable {
	return make(SymbolTable)
}

// Add records sym at addr, overwriting any provisional entry the parser may
// have recorded for a forward-declared text label.
func (s SymbolTable) Add(sym string, addr uint32) {
	s[sym] = addr
}

// Lookup resolves sym to its address. ok is false if sym has never been
// defined.
func (s SymbolTable) Lookup(sym string) (uint32, bool) {
	addr, ok := s[sym]
	return addr, ok
}

// TextBase and DataBase mirror the segment bases memory.Memory uses, kept
// here too since Program's PC arithmetic is defined purely in terms of
// TextBase without needing a *memory.Memory.
const (
	TextBase = memory.TextBase
	DataBase = memory.StaticBase
)
