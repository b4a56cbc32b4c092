// Package transfer defines the wire contract for atomic value movements
// and per-cycle results produced by the execution engine.
package transfer

import (
	"github.com/ezrec/lmcview/state"
)

// Transfer moves Value from one memory cell or register to another.
// Absent endpoints are empty strings on the wire.
type Transfer struct {
	StartMem string `json:"start_mem,omitempty"` // Source address, "00".."99".
	StartReg string `json:"start_reg,omitempty"` // Source register code.
	EndMem   string `json:"end_mem,omitempty"`   // Destination address.
	EndReg   string `json:"end_reg,omitempty"`   // Destination register code.
	Value    string `json:"value"`               // Payload, already zero-padded.
}

// Cycle is the engine's result for one fetch-decode-execute cycle.
type Cycle struct {
	State      state.Snapshot `json:"memory_and_registers"`
	Transfers  []Transfer     `json:"transfers"`
	ReachedHLT bool           `json:"reached_HLT"`
	ReachedINP bool           `json:"reached_INP"`
	Output     string         `json:"output,omitempty"`
}

// Move builds a transfer between two locations.
func Move(from, to state.Location, value string) (t Transfer) {
	t.StartMem, t.StartReg = encode(from)
	t.EndMem, t.EndReg = encode(to)
	t.Value = value
	return
}

func encode(loc state.Location) (mem string, reg string) {
	switch loc.Kind {
	case state.LOC_MEMORY:
		mem = state.FormatAddress(loc.Address)
	case state.LOC_REGISTER:
		reg = loc.Register.String()
	}
	return
}

// Source resolves the start of the transfer. It returns ErrEndpointMissing
// when neither start field is set.
func (t Transfer) Source() (loc state.Location, err error) {
	return decode(t.StartMem, t.StartReg, "start")
}

// Destination resolves the end of the transfer. It returns
// ErrEndpointMissing when neither end field is set.
func (t Transfer) Destination() (loc state.Location, err error) {
	return decode(t.EndMem, t.EndReg, "end")
}

func decode(mem string, reg string, which string) (loc state.Location, err error) {
	switch {
	case mem != "" && reg != "":
		err = ErrEndpointAmbiguous(which)
	case mem != "":
		var addr int
		addr, err = state.ParseAddress(mem)
		if err == nil {
			loc = state.AtMemory(addr)
		}
	case reg != "":
		var r state.Register
		r, err = state.ParseRegister(reg)
		if err == nil {
			loc = state.AtRegister(r)
		}
	default:
		err = ErrEndpointMissing(which)
	}

	return
}

func (t Transfer) String() string {
	from, err := t.Source()
	src := from.String()
	if err != nil {
		src = "?"
	}
	to, err := t.Destination()
	dst := to.String()
	if err != nil {
		dst = "?"
	}
	return src + " -> " + dst + " " + t.Value
}
