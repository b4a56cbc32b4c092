package state

import (
	"iter"
)

// Register identifies one of the machine registers.
type Register int

const (
	REG_PC    = Register(0) // Program counter, 2 digits.
	REG_ACC   = Register(1) // Accumulator, 3 digits.
	REG_IR    = Register(2) // Instruction register (opcode), 1 digit.
	REG_MAR   = Register(3) // Memory address register, 2 digits.
	REG_MDR   = Register(4) // Memory data register, 3 digits.
	REG_CARRY = Register(5) // Carry flag, "0" or "1".

	REG_COUNT = 6 // Number of registers.
)

// registerTable is the single dispatch table for register codes and widths.
var registerTable = [REG_COUNT]struct {
	code  string
	width int
}{
	REG_PC:    {"PC", 2},
	REG_ACC:   {"ACC", 3},
	REG_IR:    {"IR", 1},
	REG_MAR:   {"MAR", 2},
	REG_MDR:   {"MDR", 3},
	REG_CARRY: {"CARRY", 1},
}

// Registers iterates over all registers in display order.
func Registers() iter.Seq[Register] {
	return func(yield func(Register) bool) {
		for r := range Register(REG_COUNT) {
			if !yield(r) {
				return
			}
		}
	}
}

// ParseRegister returns the register for a wire code such as "ACC".
func ParseRegister(code string) (r Register, err error) {
	for r = range Registers() {
		if registerTable[r].code == code {
			return
		}
	}

	err = ErrRegisterUnknown(code)
	return
}

// Valid reports whether r is a known register.
func (r Register) Valid() bool {
	return r >= 0 && r < REG_COUNT
}

// Width is the fixed number of digits displayed for the register.
func (r Register) Width() int {
	if !r.Valid() {
		return 0
	}
	return registerTable[r].width
}

// Zero is the all-zeros value of the register.
func (r Register) Zero() string {
	return zeros[:r.Width()]
}

func (r Register) String() string {
	if !r.Valid() {
		return f("Register(%d)", int(r))
	}
	return registerTable[r].code
}

// MarshalText encodes the register as its wire code.
func (r Register) MarshalText() (text []byte, err error) {
	if !r.Valid() {
		err = ErrRegisterUnknown(r.String())
		return
	}
	text = []byte(registerTable[r].code)
	return
}

// UnmarshalText decodes a wire code.
func (r *Register) UnmarshalText(text []byte) (err error) {
	*r, err = ParseRegister(string(text))
	return
}
