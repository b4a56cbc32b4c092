package lmctest

import (
	"fmt"
	"strconv"

	"github.com/ezrec/lmcview/state"
	"github.com/ezrec/lmcview/transfer"
)

// DEFAULT_RUN_LIMIT caps the cycles returned by one run.
const DEFAULT_RUN_LIMIT = 500

// Machine is the engine's numeric view of one snapshot.
type Machine struct {
	Memory [state.MEMORY_SIZE]int
	PC     int
	ACC    int
	IR     int
	MAR    int
	MDR    int
	Carry  bool

	transfers []transfer.Transfer
}

// FromSnapshot parses a client snapshot. Registers missing from snap are
// zero.
func FromSnapshot(snap state.Snapshot) (m *Machine, err error) {
	m = &Machine{}

	for key, text := range snap.Memory {
		var addr, value int
		addr, err = state.ParseAddress(key)
		if err != nil {
			return
		}
		value, err = strconv.Atoi(text)
		if err != nil {
			return
		}
		m.Memory[addr] = value
	}

	for code, text := range snap.Registers {
		var r state.Register
		var value int
		r, err = state.ParseRegister(code)
		if err != nil {
			return
		}
		value, err = strconv.Atoi(text)
		if err != nil {
			return
		}
		if r == state.REG_CARRY {
			m.Carry = value != 0
		} else {
			*m.register(r) = value
		}
	}

	return
}

func (m *Machine) register(r state.Register) *int {
	switch r {
	case state.REG_PC:
		return &m.PC
	case state.REG_ACC:
		return &m.ACC
	case state.REG_IR:
		return &m.IR
	case state.REG_MAR:
		return &m.MAR
	case state.REG_MDR:
		return &m.MDR
	}

	return nil
}

// Snapshot formats the machine as fixed-width text.
func (m *Machine) Snapshot() (snap state.Snapshot) {
	mirror := state.NewMirror()
	for addr, value := range m.Memory {
		mirror.WriteMemory(addr, format(state.AtMemory(addr), value))
	}
	for r := range state.Registers() {
		mirror.WriteRegister(r, m.text(r))
	}
	return mirror.ReadAll()
}

func format(loc state.Location, value int) string {
	return fmt.Sprintf("%0*d", loc.Width(), value)
}

func (m *Machine) text(r state.Register) string {
	if r == state.REG_CARRY {
		if m.Carry {
			return "1"
		}
		return "0"
	}
	return format(state.AtRegister(r), *m.register(r))
}

func (m *Machine) move(from, to state.Location) {
	var value string
	if to.Kind == state.LOC_MEMORY {
		value = format(to, m.Memory[to.Address])
	} else {
		value = m.text(to.Register)
	}
	m.transfers = append(m.transfers, transfer.Move(from, to, value))
}

var (
	pc    = state.AtRegister(state.REG_PC)
	acc   = state.AtRegister(state.REG_ACC)
	ir    = state.AtRegister(state.REG_IR)
	mar   = state.AtRegister(state.REG_MAR)
	mdr   = state.AtRegister(state.REG_MDR)
	carry = state.AtRegister(state.REG_CARRY)
)

// Step runs one fetch-decode-execute cycle.
func (m *Machine) Step() (cycle transfer.Cycle, err error) {
	m.transfers = nil
	at := m.PC

	// fetch
	m.MAR = m.PC
	m.move(pc, mar)
	m.MDR = m.Memory[m.MAR]
	m.move(state.AtMemory(m.MAR), mdr)
	m.PC = (m.PC + 1) % state.MEMORY_SIZE
	m.move(pc, pc)
	m.IR = m.MDR / 100
	m.move(mdr, ir)
	m.MAR = m.MDR % 100
	m.move(mdr, mar)

	// decode
	switch m.IR {
	case 1, 2, 5:
		m.MDR = m.Memory[m.MAR]
		m.move(state.AtMemory(m.MAR), mdr)
	}

	// execute
	switch m.IR {
	case 0:
		if m.MAR != 0 {
			err = &ErrRuntime{Address: at, Code: m.MDR}
			return
		}
		cycle.ReachedHLT = true
	case 9:
		switch m.MAR {
		case 1:
			cycle.ReachedINP = true
		case 2:
			cycle.Output = m.text(state.REG_ACC)
		default:
			err = &ErrRuntime{Address: at, Code: m.MDR}
			return
		}
	case 1:
		sum := m.ACC + m.MDR
		m.Carry = sum > 999
		m.ACC = sum % 1000
		m.move(mdr, acc)
		m.move(carry, carry)
	case 2:
		diff := m.ACC - m.MDR
		m.Carry = diff < 0
		m.ACC = (diff + 1000) % 1000
		m.move(mdr, acc)
		m.move(carry, carry)
	case 3:
		m.Memory[m.MAR] = m.ACC
		m.move(acc, state.AtMemory(m.MAR))
	case 5:
		m.ACC = m.MDR
		m.move(mdr, acc)
	case 6:
		m.PC = m.MAR
		m.move(mar, pc)
	case 7:
		if m.ACC == 0 {
			m.PC = m.MAR
			m.move(mar, pc)
		}
	case 8:
		if !m.Carry {
			m.PC = m.MAR
			m.move(mar, pc)
		}
	default:
		err = &ErrRuntime{Address: at, Code: m.MDR}
		return
	}

	cycle.Transfers = m.transfers
	cycle.State = m.Snapshot()
	return
}

// Run steps until HLT, INP, or limit cycles.
func (m *Machine) Run(limit int) (cycles []transfer.Cycle, err error) {
	for len(cycles) < limit {
		var cycle transfer.Cycle
		cycle, err = m.Step()
		if err != nil {
			return
		}
		cycles = append(cycles, cycle)
		if cycle.ReachedHLT || cycle.ReachedINP {
			break
		}
	}
	return
}

// AfterInput loads the user's input into ACC.
func (m *Machine) AfterInput(input string) (t transfer.Transfer, err error) {
	value, err := strconv.Atoi(input)
	if err != nil || len(input) > 3 || value < 0 {
		err = ErrInputInvalid
		return
	}

	m.ACC = value
	t = transfer.Transfer{EndReg: state.REG_ACC.String(), Value: m.text(state.REG_ACC)}
	return
}
