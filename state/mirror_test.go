package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirror_Zeroed(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()

	assert.Equal("00", m.Register(REG_PC))
	assert.Equal("000", m.Register(REG_ACC))
	assert.Equal("0", m.Register(REG_IR))
	assert.Equal("00", m.Register(REG_MAR))
	assert.Equal("000", m.Register(REG_MDR))
	assert.Equal("0", m.Register(REG_CARRY))

	for addr := range MEMORY_SIZE {
		assert.Equal("000", m.Memory(addr))
	}
}

func TestMirror_WriteRegister(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()

	values := map[Register][]string{
		REG_PC:    {"00", "07", "99"},
		REG_ACC:   {"000", "042", "999"},
		REG_IR:    {"0", "5", "9"},
		REG_MAR:   {"00", "05", "99"},
		REG_MDR:   {"000", "901", "999"},
		REG_CARRY: {"0", "1"},
	}

	for r, list := range values {
		for _, value := range list {
			m.WriteRegister(r, value)
			assert.Equal(value, m.Register(r), "%v", r)
			assert.Len(m.Register(r), r.Width())
		}
	}
}

func TestMirror_WriteRegister_Width(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()

	assert.PanicsWithValue(ErrWidth{Location: AtRegister(REG_PC), Value: "7"}, func() {
		m.WriteRegister(REG_PC, "7")
	})
	assert.PanicsWithValue(ErrWidth{Location: AtRegister(REG_ACC), Value: "1000"}, func() {
		m.WriteRegister(REG_ACC, "1000")
	})
	assert.PanicsWithValue(ErrWidth{Location: AtRegister(REG_MDR), Value: "-12"}, func() {
		m.WriteRegister(REG_MDR, "-12")
	})
	assert.PanicsWithValue(ErrCarry("2"), func() {
		m.WriteRegister(REG_CARRY, "2")
	})
	assert.Panics(func() {
		m.WriteRegister(Register(42), "0")
	})

	// Nothing was coerced.
	assert.Equal("00", m.Register(REG_PC))
	assert.Equal("000", m.Register(REG_ACC))
}

func TestMirror_WriteMemory(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()

	for addr := range MEMORY_SIZE {
		value := fmt.Sprintf("%03d", (addr*37)%1000)
		m.WriteMemory(addr, value)
		assert.Equal(value, m.Memory(addr))
	}

	assert.Panics(func() { m.WriteMemory(5, "42") })
	assert.Panics(func() { m.WriteMemory(5, "0042") })
	assert.Panics(func() { m.WriteMemory(5, "4a2") })
	assert.Panics(func() { m.WriteMemory(100, "000") })
	assert.Panics(func() { m.WriteMemory(-1, "000") })
}

func TestMirror_WriteIdempotent(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()

	var changes []Location
	m.Changed = func(loc Location, value string) {
		changes = append(changes, loc)
	}

	m.WriteMemory(5, "042")
	m.WriteMemory(5, "042")
	m.WriteRegister(REG_ACC, "000")

	assert.Equal([]Location{AtMemory(5)}, changes)
	assert.Equal("042", m.Memory(5))
}

func TestMirror_ReadAll(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()
	m.WriteMemory(5, "042")
	m.WriteRegister(REG_PC, "12")

	snap := m.ReadAll()

	assert.Len(snap.Memory, MEMORY_SIZE)
	assert.Len(snap.Registers, REG_COUNT)
	assert.Equal("042", snap.Memory["05"])
	assert.Equal("000", snap.Memory["99"])
	assert.Equal("12", snap.Registers["PC"])
	assert.Equal("0", snap.Registers["CARRY"])

	_, ok := snap.Memory["5"]
	assert.False(ok)
}

func TestMirror_Load(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()
	m.WriteRegister(REG_CARRY, "1")

	m.Load(Snapshot{
		Memory:    map[string]string{"00": "901", "01": "902", "02": "000"},
		Registers: map[string]string{"PC": "00", "ACC": "000", "IR": "0", "MAR": "00", "MDR": "000"},
	})

	assert.Equal("901", m.Memory(0))
	assert.Equal("902", m.Memory(1))
	assert.Equal("1", m.Register(REG_CARRY))

	// The mirror can always be re-derived from a snapshot of itself.
	other := NewMirror()
	other.Load(m.ReadAll())
	assert.Equal(m.ReadAll(), other.ReadAll())

	assert.Panics(func() {
		m.Load(Snapshot{Registers: map[string]string{"XYZ": "0"}})
	})
	assert.Panics(func() {
		m.Load(Snapshot{Memory: map[string]string{"100": "000"}})
	})
}

func TestMirror_Write(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()

	m.Write(AtMemory(5), "042")
	m.Write(AtRegister(REG_MAR), "05")

	assert.Equal("042", m.Read(AtMemory(5)))
	assert.Equal("05", m.Read(AtRegister(REG_MAR)))
	assert.PanicsWithValue(ErrLocation(Location{}), func() { m.Write(Location{}, "000") })
}

func TestMirror_All(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()
	m.WriteMemory(99, "123")

	var locs []Location
	var last string
	for loc, value := range m.All() {
		locs = append(locs, loc)
		last = value
	}

	assert.Len(locs, REG_COUNT+MEMORY_SIZE)
	assert.Equal(AtRegister(REG_PC), locs[0])
	assert.Equal(AtMemory(0), locs[REG_COUNT])
	assert.Equal("123", last)
}

func TestMirror_Reset(t *testing.T) {
	assert := assert.New(t)

	m := NewMirror()
	m.WriteMemory(42, "123")
	m.WriteRegister(REG_ACC, "999")

	changes := 0
	m.Changed = func(loc Location, value string) { changes++ }

	m.Reset()
	assert.Equal(1, changes)
	assert.Equal(NewMirror().ReadAll(), m.ReadAll())
}
