// Package memory implements the paged byte-addressable address space the
// CPU executes against: lazily-materialized 512-byte RAM pages below
// MMIOStart, and an ordered bus of virtual devices at and above it.
package memory

import (
	"errors"
	"fmt"
	"math"

	"github.com/cslab-edu/gomips32/internal/log"
)

// Sizes, in bytes, of the access widths the memory supports.
const (
	Word = 4
	Half = 2

	// PageSize is the granularity at which RAM is materialized; 2**9.
	PageSize = 512

	pageShift = 9
	pageMask  = PageSize - 1
)

// Segment base addresses, per the language surface's fixed memory layout.
const (
	TextBase    uint32 = 0x0040_0000
	StaticBase  uint32 = 0x1000_0000
	HeapBase    uint32 = 0x1000_8000
	StackBase   uint32 = 0x7FFF_FFFF
	InitialSP   uint32 = 0x7FFF_FFFC
	MMIOStart   uint32 = 0xFFFF_0000
)

var (
	// ErrMemory is the sentinel all memory-related errors wrap.
	ErrMemory = errors.New("memory error")

	// ErrAlignment is returned when an access width doesn't divide its address.
	ErrAlignment = fmt.Errorf("%w: misaligned access", ErrMemory)
)

// AccessError reports the address and width of a failed access so callers
// can render a precise diagnostic.
type AccessError struct {
	Addr  uint32
	Width int
	Err   error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: addr=0x%08x width=%d", e.Err, e.Addr, e.Width)
}

func (e *AccessError) Unwrap() error { return e.Err }

func (e *AccessError) Is(target error) bool {
	return target == ErrMemory
}

// page is one 512-byte unit of RAM, materialized on first write; a read of
// an unmaterialized page returns zero without creating it.
type page [PageSize]byte

// LastAccess records the address and width of the most recent memory or MMIO
// operation. Machine snapshots report the CPU's own cpu.LastMemAccess
// instead, which only loads and stores executed by a step set.
type LastAccess struct {
	Addr  uint32
	Width int
}

// Memory is the CPU's byte-addressable view of RAM and devices. Pages below
// MMIOStart are plain bytes; at or above MMIOStart, accesses route through
// Bus instead.
type Memory struct {
	pages map[uint32]*page
	Bus   *Bus

	last LastAccess

	log *log.Logger
}

// New returns an empty Memory with no pages materialized and an empty bus.
// Callers register devices on the returned Memory's Bus before use.
func New() *Memory {
	return &Memory{
		pages: make(map[uint32]*page),
		Bus:   NewBus(),
		log:   log.DefaultLogger(),
	}
}

// Reset discards every materialized page and bus registration, returning the
// Memory to its construction-time state. CPU.Reset re-registers the default
// device set immediately afterward.
func (m *Memory) Reset() {
	m.pages = make(map[uint32]*page)
	m.Bus = NewBus()
	m.last = LastAccess{}
}

// LastAccess returns the address and width of the most recent load or store,
// for inclusion in a snapshot.
func (m *Memory) LastAccess() LastAccess {
	return m.last
}

func (m *Memory) pageFor(addr uint32, write bool) *page {
	key := addr >> pageShift

	p, ok := m.pages[key]
	if !ok {
		if !write {
			return nil
		}

		p = &page{}
		m.pages[key] = p
	}

	return p
}

func (m *Memory) recordAccess(addr uint32, width int) {
	m.last = LastAccess{Addr: addr, Width: width}
}

// LoadByte reads a single byte. Addresses at or above MMIOStart are routed
// to the bus as a word read at addr &^ 3, from which the byte is taken at
// the big-endian lane 3 - addr%4.
func (m *Memory) LoadByte(addr uint32) (int8, error) {
	m.recordAccess(addr, 1)

	if addr >= MMIOStart {
		word, err := m.loadMMIOWord(addr &^ 3)
		if err != nil {
			return 0, err
		}

		lane := 3 - (addr % 4)

		return int8(byte(word >> (lane * 8))), nil
	}

	p := m.pageFor(addr, false)
	if p == nil {
		return 0, nil
	}

	return int8(p[addr&pageMask]), nil
}

// SetByte writes a single byte. See LoadByte for the MMIO lane rule.
func (m *Memory) SetByte(addr uint32, v int8) error {
	m.recordAccess(addr, 1)

	if addr >= MMIOStart {
		return m.storeMMIOByte(addr, byte(v))
	}

	p := m.pageFor(addr, true)
	p[addr&pageMask] = byte(v)

	return nil
}

// LoadHalfword reads a big-endian 16-bit value. MMIO halfword access reduces
// to a word operation at addr &^ 3, per the dispatch rule in §4.1.
func (m *Memory) LoadHalfword(addr uint32) (int16, error) {
	m.recordAccess(addr, Half)

	if addr >= MMIOStart {
		word, err := m.loadMMIOWord(addr &^ 3)
		if err != nil {
			return 0, err
		}

		return int16(word), nil
	}

	hi := m.loadRAMByte(addr)
	lo := m.loadRAMByte(addr + 1)

	return int16(uint16(hi)<<8 | uint16(lo)), nil
}

// SetHalfword writes a big-endian 16-bit value.
func (m *Memory) SetHalfword(addr uint32, v int16) error {
	m.recordAccess(addr, Half)

	if addr >= MMIOStart {
		word, err := m.loadMMIOWord(addr &^ 3)
		if err != nil {
			return err
		}

		word = (word &^ 0xFFFF) | uint32(uint16(v))

		return m.Bus.Store(addr&^3, word)
	}

	p := m.pageFor(addr, true)
	off := addr & pageMask
	p[off] = byte(v >> 8)
	p[off+1] = byte(v)

	return nil
}

// LoadWord reads a big-endian 32-bit value.
func (m *Memory) LoadWord(addr uint32) (int32, error) {
	m.recordAccess(addr, Word)

	if addr >= MMIOStart {
		word, err := m.loadMMIOWord(addr)
		return int32(word), err
	}

	return int32(m.loadRAMWord(addr)), nil
}

// SetWord writes a big-endian 32-bit value.
func (m *Memory) SetWord(addr uint32, v int32) error {
	m.recordAccess(addr, Word)

	if addr >= MMIOStart {
		return m.Bus.Store(addr, uint32(v))
	}

	m.storeRAMWord(addr, uint32(v))

	return nil
}

// LoadFloat reads a big-endian IEEE-754 single-precision value.
func (m *Memory) LoadFloat(addr uint32) (float32, error) {
	w, err := m.LoadWord(addr)
	return math.Float32frombits(uint32(w)), err
}

// SetFloat writes a big-endian IEEE-754 single-precision value.
func (m *Memory) SetFloat(addr uint32, v float32) error {
	return m.SetWord(addr, int32(math.Float32bits(v)))
}

// LoadDouble reads a big-endian IEEE-754 double-precision value.
func (m *Memory) LoadDouble(addr uint32) (float64, error) {
	hi, err := m.LoadWord(addr)
	if err != nil {
		return 0, err
	}

	lo, err := m.LoadWord(addr + 4)
	if err != nil {
		return 0, err
	}

	bits := uint64(uint32(hi))<<32 | uint64(uint32(lo))

	return math.Float64frombits(bits), nil
}

// SetDouble writes a big-endian IEEE-754 double-precision value.
func (m *Memory) SetDouble(addr uint32, v float64) error {
	bits := math.Float64bits(v)

	if err := m.SetWord(addr, int32(uint32(bits>>32))); err != nil {
		return err
	}

	return m.SetWord(addr+4, int32(uint32(bits)))
}

// SetString writes the raw bytes of s at successive addresses starting at
// addr. Callers wanting a NUL terminator (as .asciiz does) append it to s
// themselves.
func (m *Memory) SetString(addr uint32, s string) error {
	for i := 0; i < len(s); i++ {
		if err := m.SetByte(addr+uint32(i), int8(s[i])); err != nil {
			return err
		}
	}

	return nil
}

// GetMemorySlice returns a copy of n bytes of RAM starting at addr, for
// display and the autograder's memory-region assertions. It does not read
// through the MMIO bus.
func (m *Memory) GetMemorySlice(addr uint32, n int) []byte {
	out := make([]byte, n)

	for i := 0; i < n; i++ {
		out[i] = m.loadRAMByte(addr + uint32(i))
	}

	return out
}

func (m *Memory) loadRAMByte(addr uint32) byte {
	p := m.pageFor(addr, false)
	if p == nil {
		return 0
	}

	return p[addr&pageMask]
}

func (m *Memory) loadRAMWord(addr uint32) uint32 {
	var v uint32
	for i := 0; i < Word; i++ {
		v = v<<8 | uint32(m.loadRAMByte(addr+uint32(i)))
	}

	return v
}

func (m *Memory) storeRAMWord(addr uint32, v uint32) {
	// Each byte goes through pageFor on its own, so a word at an address that
	// is not word-aligned may straddle a page boundary.
	for i := uint32(0); i < Word; i++ {
		a := addr + i
		m.pageFor(a, true)[a&pageMask] = byte(v >> (24 - 8*i))
	}
}

func (m *Memory) loadMMIOWord(addr uint32) (uint32, error) {
	return m.Bus.Load(addr)
}

func (m *Memory) storeMMIOByte(addr uint32, v byte) error {
	aligned := addr &^ 3

	word, err := m.Bus.Load(aligned)
	if err != nil {
		return err
	}

	lane := 3 - (addr % 4)
	shift := lane * 8
	word = (word &^ (0xFF << shift)) | uint32(v)<<shift

	return m.Bus.Store(aligned, word)
}
