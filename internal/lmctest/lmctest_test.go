package lmctest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/lmcview/transfer"
)

const subtract = `// store an input
// at position first
INP
STA first
INP
STA second
LDA first
SUB second
OUT
HLT

first DAT 000
second DAT 000`

func TestAssemble(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble(subtract)
	require.NoError(t, err)

	assert.Equal([]string{
		"00 INP",
		"01 STA 08",
		"02 INP",
		"03 STA 09",
		"04 LDA 08",
		"05 SUB 09",
		"06 OUT",
		"07 HLT",
		"08 DAT 000",
		"09 DAT 000",
	}, prog.ObjectCode)

	assert.Equal("901", prog.State.Memory["00"])
	assert.Equal("308", prog.State.Memory["01"])
	assert.Equal("508", prog.State.Memory["04"])
	assert.Equal("209", prog.State.Memory["05"])
	assert.Equal("902", prog.State.Memory["06"])
	assert.Equal("000", prog.State.Memory["07"])
	assert.Equal("000", prog.State.Memory["99"])
	assert.Len(prog.State.Memory, 100)
	assert.Equal("00", prog.State.Registers["PC"])
}

func TestAssemble_Labels(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble(`        lda space
loop    out
        bra loop
end     hlt
space   dat 32
char    dat`)
	require.NoError(t, err)

	assert.Equal("504", prog.State.Memory["00"])
	assert.Equal("601", prog.State.Memory["02"])
	assert.Equal("032", prog.State.Memory["04"])
	assert.Equal("000", prog.State.Memory["05"])
}

func TestAssemble_Errors(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		source string
		lineno int
		err    error
	}{
		{"INP\nFOO", 2, ErrInvalidInstruction},
		{"ADD", 1, ErrMissingArgument},
		{"INP 5", 1, ErrUnexpectedArgument},
		{"a b c d", 1, ErrTooManyWords},
		{"x INP y", 1, ErrUnexpectedArgument},
		{"x FOO 1", 1, ErrLineStructure},
		{"1x DAT 5", 1, ErrLabelInvalid("1X")},
		{"ADD DAT 5", 1, ErrLabelReserved("ADD")},
		{"x DAT 1000", 1, ErrValue("1000")},
		{"\n\nLDA nowhere", 3, ErrLabelMissing("NOWHERE")},
		{"x HLT\nx DAT 1", 2, ErrLabelDuplicate("X")},
	}

	for _, c := range cases {
		_, err := Assemble(c.source)
		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), c.source) {
			assert.Equal(c.lineno, syntax.LineNo, c.source)
			assert.Equal(c.err, syntax.Err, c.source)
		}
	}
}

func TestAssemble_TooLong(t *testing.T) {
	source := ""
	for range 101 {
		source += "HLT\n"
	}

	_, err := Assemble(source)
	assert.Equal(t, &ErrSyntax{Err: ErrTooManyLines}, err)
}

func TestMachine_InputOutputHalt(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble("INP\nOUT\nHLT")
	require.NoError(t, err)
	assert.Len(prog.ObjectCode, 3)

	m, err := FromSnapshot(prog.State)
	require.NoError(t, err)

	cycle, err := m.Step()
	require.NoError(t, err)
	assert.True(cycle.ReachedINP)
	assert.Equal(transfer.Transfer{StartReg: "PC", EndReg: "MAR", Value: "00"}, cycle.Transfers[0])
	assert.Equal(transfer.Transfer{StartMem: "00", EndReg: "MDR", Value: "901"}, cycle.Transfers[1])
	assert.Equal(transfer.Transfer{StartReg: "PC", EndReg: "PC", Value: "01"}, cycle.Transfers[2])

	tr, err := m.AfterInput("7")
	require.NoError(t, err)
	assert.Equal(transfer.Transfer{EndReg: "ACC", Value: "007"}, tr)

	cycle, err = m.Step()
	require.NoError(t, err)
	assert.Equal("007", cycle.Output)
	assert.False(cycle.ReachedHLT)

	cycle, err = m.Step()
	require.NoError(t, err)
	assert.True(cycle.ReachedHLT)
	assert.Equal("007", cycle.State.Registers["ACC"])
	assert.Equal("03", cycle.State.Registers["PC"])
}

func TestMachine_Arithmetic(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble(`LDA a
ADD b
STA c
SUB a
SUB a
HLT
a DAT 600
b DAT 500
c DAT 0`)
	require.NoError(t, err)

	m, err := FromSnapshot(prog.State)
	require.NoError(t, err)

	cycles, err := m.Run(DEFAULT_RUN_LIMIT)
	require.NoError(t, err)
	assert.Len(cycles, 6)

	assert.Equal("100", cycles[1].State.Registers["ACC"])
	assert.Equal("1", cycles[1].State.Registers["CARRY"])
	assert.Equal("100", cycles[2].State.Memory["08"])
	assert.Equal("500", cycles[3].State.Registers["ACC"])
	assert.Equal("1", cycles[3].State.Registers["CARRY"])
	assert.Equal("900", cycles[4].State.Registers["ACC"])
	assert.True(cycles[5].ReachedHLT)

	last := cycles[2].Transfers[len(cycles[2].Transfers)-1]
	assert.Equal(transfer.Transfer{StartReg: "ACC", EndMem: "08", Value: "100"}, last)
}

func TestMachine_RunLimit(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble("loop BRA loop")
	require.NoError(t, err)

	m, err := FromSnapshot(prog.State)
	require.NoError(t, err)

	cycles, err := m.Run(10)
	assert.NoError(err)
	assert.Len(cycles, 10)
	assert.False(cycles[9].ReachedHLT)
	assert.False(cycles[9].ReachedINP)
}

func TestMachine_Invalid(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble("DAT 400")
	require.NoError(t, err)

	m, err := FromSnapshot(prog.State)
	require.NoError(t, err)

	_, err = m.Step()
	assert.Equal(&ErrRuntime{Address: 0, Code: 400}, err)

	_, err = m.AfterInput("1000")
	assert.Equal(ErrInputInvalid, err)
}
