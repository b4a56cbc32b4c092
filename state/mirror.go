// Package state holds the client-side mirror of the machine: 100 memory
// cells and six registers, each kept as fixed-width zero-padded text.
//
// Values never pass through integers, so leading zeros survive the round
// trip to and from the execution engine. A value of the wrong shape is a
// protocol violation between client and engine; the mirror panics with
// ErrWidth or ErrCarry rather than coercing it.
package state

import (
	"iter"
	"sync"

	"github.com/ezrec/lmcview/internal"
)

// Snapshot is the wire form of the whole machine state.
type Snapshot struct {
	Memory    map[string]string `json:"memory"`    // Address ("00".."99") to value.
	Registers map[string]string `json:"registers"` // Register code to value.
}

// Mirror is the displayed machine state.
type Mirror struct {
	// Changed, if set, is called after a write alters a location.
	Changed func(loc Location, value string)

	mu       sync.RWMutex
	memory   [MEMORY_SIZE]string
	register [REG_COUNT]string
}

// NewMirror creates a mirror with every cell and register zeroed.
func NewMirror() (m *Mirror) {
	m = &Mirror{}
	m.Reset()
	return
}

// Reset zeroes every cell and register.
func (m *Mirror) Reset() {
	m.mu.Lock()
	for n := range m.memory {
		m.memory[n] = zeros
	}
	for r := range Registers() {
		m.register[r] = r.Zero()
	}
	m.mu.Unlock()

	if m.Changed != nil {
		m.Changed(Location{}, "")
	}
}

// Memory returns the value of the cell at addr.
func (m *Mirror) Memory(addr int) string {
	if addr < 0 || addr >= MEMORY_SIZE {
		panic(ErrAddress(FormatAddress(addr)))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.memory[addr]
}

// Register returns the value of register r.
func (m *Mirror) Register(r Register) string {
	if !r.Valid() {
		panic(ErrRegisterUnknown(r.String()))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.register[r]
}

// Read returns the value at loc.
func (m *Mirror) Read(loc Location) string {
	if loc.Kind == LOC_MEMORY {
		return m.Memory(loc.Address)
	}
	return m.Register(loc.Register)
}

// WriteMemory sets the cell at addr. The value must be three digits.
func (m *Mirror) WriteMemory(addr int, value string) {
	loc := AtMemory(addr)
	if !loc.Valid() {
		panic(ErrAddress(FormatAddress(addr)))
	}
	if len(value) != MEMORY_WIDTH || !isDigits(value) {
		panic(ErrWidth{Location: loc, Value: value})
	}

	m.store(loc, &m.memory[addr], value)
}

// WriteRegister sets register r. The value must match the register width,
// and CARRY only accepts "0" or "1".
func (m *Mirror) WriteRegister(r Register, value string) {
	loc := AtRegister(r)
	if !loc.Valid() {
		panic(ErrRegisterUnknown(r.String()))
	}

	switch r {
	case REG_CARRY:
		if value != "0" && value != "1" {
			panic(ErrCarry(value))
		}
	default:
		if len(value) != r.Width() || !isDigits(value) {
			panic(ErrWidth{Location: loc, Value: value})
		}
	}

	m.store(loc, &m.register[r], value)
}

// Write sets the value at loc, dispatching on its kind.
func (m *Mirror) Write(loc Location, value string) {
	switch loc.Kind {
	case LOC_MEMORY:
		m.WriteMemory(loc.Address, value)
	case LOC_REGISTER:
		m.WriteRegister(loc.Register, value)
	default:
		panic(ErrLocation(loc))
	}
}

func (m *Mirror) store(loc Location, slot *string, value string) {
	m.mu.Lock()
	changed := *slot != value
	*slot = value
	m.mu.Unlock()

	if changed && m.Changed != nil {
		m.Changed(loc, value)
	}
}

// ReadAll snapshots the mirror for the execution engine.
func (m *Mirror) ReadAll() (snap Snapshot) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap.Memory = make(map[string]string, MEMORY_SIZE)
	for addr, value := range m.memory {
		snap.Memory[FormatAddress(addr)] = value
	}

	snap.Registers = make(map[string]string, REG_COUNT)
	for r := range Registers() {
		snap.Registers[r.String()] = m.register[r]
	}

	return
}

// Load writes every location present in snap. Locations absent from snap
// keep their values.
func (m *Mirror) Load(snap Snapshot) {
	for key, value := range snap.Memory {
		addr, err := ParseAddress(key)
		if err != nil {
			panic(err)
		}
		m.WriteMemory(addr, value)
	}

	for code, value := range snap.Registers {
		r, err := ParseRegister(code)
		if err != nil {
			panic(err)
		}
		m.WriteRegister(r, value)
	}
}

// All iterates over registers then memory cells, in display order.
func (m *Mirror) All() iter.Seq2[Location, string] {
	registers := internal.IterSeq2Index(REG_COUNT, func(n int) (Location, string) {
		return AtRegister(Register(n)), m.Register(Register(n))
	})
	memory := internal.IterSeq2Index(MEMORY_SIZE, func(n int) (Location, string) {
		return AtMemory(n), m.Memory(n)
	})

	return internal.IterSeq2Concat(registers, memory)
}
