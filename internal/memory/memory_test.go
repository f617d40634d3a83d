package memory_test

import (
	"testing"

	"github.com/cslab-edu/gomips32/internal/memory"
)

func TestWordRoundTrip(t *testing.T) {
	t.Parallel()

	m := memory.New()

	if err := m.SetWord(memory.StaticBase, -1); err != nil {
		t.Fatalf("SetWord: %v", err)
	}

	got, err := m.LoadWord(memory.StaticBase)
	if err != nil {
		t.Fatalf("LoadWord: %v", err)
	}

	if got != -1 {
		t.Errorf("LoadWord() = %d, want -1", got)
	}
}

func TestUninitializedPageReadsZero(t *testing.T) {
	t.Parallel()

	m := memory.New()

	got, err := m.LoadWord(memory.HeapBase)
	if err != nil {
		t.Fatalf("LoadWord: %v", err)
	}

	if got != 0 {
		t.Errorf("LoadWord() on untouched page = %d, want 0", got)
	}
}

func TestByteHalfwordBigEndian(t *testing.T) {
	t.Parallel()

	m := memory.New()
	addr := memory.StaticBase

	if err := m.SetWord(addr, 0x0102_0304); err != nil {
		t.Fatalf("SetWord: %v", err)
	}

	b0, _ := m.LoadByte(addr)
	b1, _ := m.LoadByte(addr + 1)
	b2, _ := m.LoadByte(addr + 2)
	b3, _ := m.LoadByte(addr + 3)

	if b0 != 1 || b1 != 2 || b2 != 3 || b3 != 4 {
		t.Errorf("bytes = %d,%d,%d,%d, want 1,2,3,4", b0, b1, b2, b3)
	}

	half, err := m.LoadHalfword(addr)
	if err != nil {
		t.Fatalf("LoadHalfword: %v", err)
	}

	if half != 0x0102 {
		t.Errorf("LoadHalfword() = %#x, want 0x0102", half)
	}
}

func TestFloatDoubleRoundTrip(t *testing.T) {
	t.Parallel()

	m := memory.New()

	if err := m.SetFloat(memory.StaticBase, 3.5); err != nil {
		t.Fatalf("SetFloat: %v", err)
	}

	f, err := m.LoadFloat(memory.StaticBase)
	if err != nil {
		t.Fatalf("LoadFloat: %v", err)
	}

	if f != 3.5 {
		t.Errorf("LoadFloat() = %v, want 3.5", f)
	}

	if err := m.SetDouble(memory.StaticBase+8, -2.25); err != nil {
		t.Fatalf("SetDouble: %v", err)
	}

	d, err := m.LoadDouble(memory.StaticBase + 8)
	if err != nil {
		t.Fatalf("LoadDouble: %v", err)
	}

	if d != -2.25 {
		t.Errorf("LoadDouble() = %v, want -2.25", d)
	}
}

func TestSetString(t *testing.T) {
	t.Parallel()

	m := memory.New()

	if err := m.SetString(memory.StaticBase, "hi\x00"); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	got := m.GetMemorySlice(memory.StaticBase, 3)
	if string(got) != "hi\x00" {
		t.Errorf("GetMemorySlice() = %q, want %q", got, "hi\x00")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	m := memory.New()
	_ = m.SetWord(memory.StaticBase, 42)

	m.Reset()

	got, err := m.LoadWord(memory.StaticBase)
	if err != nil {
		t.Fatalf("LoadWord: %v", err)
	}

	if got != 0 {
		t.Errorf("LoadWord() after Reset = %d, want 0", got)
	}
}
