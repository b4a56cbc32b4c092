package state

import (
	"strconv"
)

const (
	MEMORY_SIZE   = 100 // Number of memory cells.
	MEMORY_WIDTH  = 3   // Digits in a memory cell.
	ADDRESS_WIDTH = 2   // Digits in a memory address.
)

const zeros = "000"

// Kind distinguishes memory cells from registers.
type Kind int

const (
	LOC_NONE     = Kind(0) // No location.
	LOC_MEMORY   = Kind(1) // A memory cell.
	LOC_REGISTER = Kind(2) // A register.
)

// Location is a memory cell or a register.
type Location struct {
	Kind     Kind
	Address  int      // Valid when Kind is LOC_MEMORY.
	Register Register // Valid when Kind is LOC_REGISTER.
}

// AtMemory is the location of the memory cell at addr.
func AtMemory(addr int) Location {
	return Location{Kind: LOC_MEMORY, Address: addr}
}

// AtRegister is the location of register r.
func AtRegister(r Register) Location {
	return Location{Kind: LOC_REGISTER, Register: r}
}

// Valid reports whether the location names an existing cell or register.
func (loc Location) Valid() bool {
	switch loc.Kind {
	case LOC_MEMORY:
		return loc.Address >= 0 && loc.Address < MEMORY_SIZE
	case LOC_REGISTER:
		return loc.Register.Valid()
	}
	return false
}

// Width is the number of digits stored at the location.
func (loc Location) Width() int {
	switch loc.Kind {
	case LOC_MEMORY:
		return MEMORY_WIDTH
	case LOC_REGISTER:
		return loc.Register.Width()
	}
	return 0
}

func (loc Location) String() string {
	switch loc.Kind {
	case LOC_MEMORY:
		return "mem[" + FormatAddress(loc.Address) + "]"
	case LOC_REGISTER:
		return loc.Register.String()
	}
	return "none"
}

// FormatAddress zero pads a memory address to two digits.
func FormatAddress(addr int) string {
	text := strconv.Itoa(addr)
	if len(text) < ADDRESS_WIDTH {
		text = zeros[:ADDRESS_WIDTH-len(text)] + text
	}
	return text
}

// ParseAddress parses a wire address such as "05" or "5".
func ParseAddress(text string) (addr int, err error) {
	if len(text) == 0 || len(text) > ADDRESS_WIDTH || !isDigits(text) {
		err = ErrAddress(text)
		return
	}

	addr, err = strconv.Atoi(text)
	if err != nil {
		err = ErrAddress(text)
	}
	return
}

func isDigits(text string) bool {
	for _, c := range []byte(text) {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
