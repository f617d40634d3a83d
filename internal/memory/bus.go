package memory

import "fmt"

// Device is a virtual MMIO peripheral. Offset is relative to the device's
// base address as registered on the Bus.
type Device interface {
	// Name identifies the device in snapshots and log output.
	Name() string

	// Read returns the word at offset within the device's range.
	Read(offset uint32) uint32

	// Write stores a word at offset within the device's range.
	Write(offset uint32, value uint32)

	// State returns a snapshot of the device's registers, variant-tagged by
	// its concrete type so the host UI can render it without reflection.
	State() DeviceState
}

// DeviceState is the serializable, read-only view of one device's registers
// returned by Memory's snapshot.
type DeviceState struct {
	Name   string
	Fields map[string]uint32
}

// region is one entry in the bus's ordered device list.
type region struct {
	base, end uint32 // end is exclusive.
	dev       Device
}

// Bus routes MMIO addresses to devices by linear scan of an ordered region
// list, per the dispatch rule in §4.2: unmatched reads return 0, unmatched
// writes are silently dropped.
type Bus struct {
	regions []region
}

// NewBus returns an empty bus with no devices registered.
func NewBus() *Bus {
	return &Bus{}
}

// Register maps dev into the address range [base, base+length). Registering
// an overlapping range is a programming error and panics, since it can only
// happen from a hardcoded device table, never from user input.
func (b *Bus) Register(base uint32, length uint32, dev Device) {
	end := base + length

	for _, r := range b.regions {
		if base < r.end && end > r.base {
			panic(fmt.Sprintf("memory: mmio range for %s overlaps %s", dev.Name(), r.dev.Name()))
		}
	}

	b.regions = append(b.regions, region{base: base, end: end, dev: dev})
}

func (b *Bus) find(addr uint32) (region, bool) {
	for _, r := range b.regions {
		if addr >= r.base && addr < r.end {
			return r, true
		}
	}

	return region{}, false
}

// Load reads a word from addr. An address not covered by any registered
// device reads as zero.
func (b *Bus) Load(addr uint32) (uint32, error) {
	r, ok := b.find(addr)
	if !ok {
		return 0, nil
	}

	return r.dev.Read(addr - r.base), nil
}

// Store writes a word to addr. A write to an address not covered by any
// registered device is silently dropped; this is policy, not failure.
func (b *Bus) Store(addr uint32, value uint32) error {
	r, ok := b.find(addr)
	if !ok {
		return nil
	}

	r.dev.Write(addr-r.base, value)

	return nil
}

// Snapshot returns the state of every registered device, keyed by base
// address.
func (b *Bus) Snapshot() map[uint32]DeviceState {
	out := make(map[uint32]DeviceState, len(b.regions))

	for _, r := range b.regions {
		out[r.base] = r.dev.State()
	}

	return out
}
