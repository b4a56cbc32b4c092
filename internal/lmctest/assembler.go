// Package lmctest is an in-process Little Man Computer engine speaking the
// same HTTP protocol as the external engine. It backs the tests of the
// client packages.
package lmctest

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ezrec/lmcview/state"
)

// opcodes maps mnemonics to their base machine code.
var opcodes = map[string]struct {
	code  int
	label bool // Takes a label argument.
}{
	"ADD": {100, true},
	"SUB": {200, true},
	"STA": {300, true},
	"LDA": {500, true},
	"BRA": {600, true},
	"BRZ": {700, true},
	"BRP": {800, true},
	"INP": {901, false},
	"OUT": {902, false},
	"HLT": {0, false},
	"DAT": {0, false},
}

// line is one assembled source line.
type line struct {
	LineNo int
	Label  string // Label created by the line.
	Op     string
	Arg    string // Label used, or DAT value.
}

// Program is an assembled program.
type Program struct {
	ObjectCode []string
	State      state.Snapshot
}

// Assemble assembles LMC source. Errors are *ErrSyntax.
func Assemble(source string) (prog Program, err error) {
	var lines []line

	scanner := bufio.NewScanner(strings.NewReader(source))
	lineno := 0
	for scanner.Scan() {
		lineno++
		text, _, _ := strings.Cut(scanner.Text(), "//")
		words := strings.Fields(strings.ToUpper(text))
		if len(words) == 0 {
			continue
		}

		var ln line
		ln, err = parseWords(words)
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Err: err}
			return
		}
		ln.LineNo = lineno
		lines = append(lines, ln)
	}

	if len(lines) > state.MEMORY_SIZE {
		err = &ErrSyntax{Err: ErrTooManyLines}
		return
	}

	labels := map[string]int{}
	for addr, ln := range lines {
		if ln.Label == "" {
			continue
		}
		if _, ok := labels[ln.Label]; ok {
			err = &ErrSyntax{LineNo: ln.LineNo, Err: ErrLabelDuplicate(ln.Label)}
			return
		}
		labels[ln.Label] = addr
	}

	prog.State = emptyState()
	for addr, ln := range lines {
		op := opcodes[ln.Op]
		value := op.code
		listing := fmt.Sprintf("%02d %v", addr, ln.Op)

		switch {
		case op.label:
			target, ok := labels[ln.Arg]
			if !ok {
				err = &ErrSyntax{LineNo: ln.LineNo, Err: ErrLabelMissing(ln.Arg)}
				return
			}
			value += target
			listing += fmt.Sprintf(" %02d", target)
		case ln.Op == "DAT" && ln.Arg != "":
			value, _ = strconv.Atoi(ln.Arg)
			listing += fmt.Sprintf(" %03d", value)
		}

		prog.ObjectCode = append(prog.ObjectCode, listing)
		prog.State.Memory[state.FormatAddress(addr)] = fmt.Sprintf("%03d", value)
	}

	return
}

// parseWords classifies the one to three words of a source line.
func parseWords(words []string) (ln line, err error) {
	switch len(words) {
	case 1:
		op, ok := opcodes[words[0]]
		switch {
		case !ok:
			err = ErrInvalidInstruction
		case op.label:
			err = ErrMissingArgument
		default:
			ln.Op = words[0]
		}
	case 2:
		op, ok := opcodes[words[0]]
		switch {
		case ok && op.label:
			ln.Op, ln.Arg = words[0], words[1]
		case words[0] == "DAT":
			ln.Op, ln.Arg = words[0], words[1]
			err = checkValue(ln.Arg)
		case ok:
			err = ErrUnexpectedArgument
		default:
			// LABEL OP
			ln.Label, ln.Op = words[0], words[1]
			op, ok = opcodes[ln.Op]
			switch {
			case !ok:
				err = ErrInvalidInstruction
			case op.label:
				err = ErrMissingArgument
			default:
				err = checkLabel(ln.Label)
			}
		}
	case 3:
		ln.Label, ln.Op, ln.Arg = words[0], words[1], words[2]
		op, ok := opcodes[ln.Op]
		switch {
		case !ok:
			err = ErrLineStructure
		case ln.Op == "DAT":
			err = checkLabel(ln.Label)
			if err == nil {
				err = checkValue(ln.Arg)
			}
		case !op.label:
			err = ErrUnexpectedArgument
		default:
			err = checkLabel(ln.Label)
		}
	default:
		err = ErrTooManyWords
	}

	return
}

func checkLabel(label string) error {
	if _, ok := opcodes[label]; ok {
		return ErrLabelReserved(label)
	}
	for n, r := range label {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || (n > 0 && unicode.IsDigit(r))) {
			return ErrLabelInvalid(label)
		}
	}
	return nil
}

func checkValue(text string) error {
	value, err := strconv.Atoi(text)
	if err != nil || value < 0 || value > 999 || strings.ContainsAny(text, "+-") {
		return ErrValue(text)
	}
	return nil
}

// emptyState is the zeroed machine, as the engine reports it.
func emptyState() (snap state.Snapshot) {
	return state.NewMirror().ReadAll()
}
