package lmctest

import (
	"errors"

	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrTooManyWords       = errors.New(f("There cannot be more than 3 words on one line"))
	ErrMissingArgument    = errors.New(f("Missing an argument for instruction"))
	ErrInvalidInstruction = errors.New(f("Invalid instruction"))
	ErrUnexpectedArgument = errors.New(f("Instruction does not take arguments, received one."))
	ErrLineStructure      = errors.New(f("Line with 3 words should have structure: <label>, <command>, <value>."))
	ErrTooManyLines       = errors.New(f("Too many lines to fit in memory."))

	// Machine errors
	ErrInputInvalid = errors.New(f("input must be a number 0-999"))
)

// ErrSyntax is an assembly error; LineNo zero means the line is unknown.
type ErrSyntax struct {
	LineNo int
	Err    error
}

func (err *ErrSyntax) Error() string {
	return err.Err.Error()
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrLabelInvalid is a label that is not alphanumeric or starts with a digit.
type ErrLabelInvalid string

func (err ErrLabelInvalid) Error() string {
	return f("Label \"%v\" must begin with a letter and be completely alphanumeric", string(err))
}

// ErrLabelReserved is a label spelled like an instruction.
type ErrLabelReserved string

func (err ErrLabelReserved) Error() string {
	return f("Label \"%v\" cannot be an instruction", string(err))
}

// ErrLabelMissing is a label used without being defined.
type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("Label \"%v\" used without being created.", string(err))
}

// ErrLabelDuplicate is a label defined twice.
type ErrLabelDuplicate string

func (err ErrLabelDuplicate) Error() string {
	return f("Label \"%v\" created more than once.", string(err))
}

// ErrValue is a DAT value outside 0-999.
type ErrValue string

func (err ErrValue) Error() string {
	return f("Expected number 0-999, received %v", string(err))
}

// ErrRuntime is an instruction the machine cannot execute.
type ErrRuntime struct {
	Address int
	Code    int
}

func (err *ErrRuntime) Error() string {
	return f("invalid instruction %03d at address %02d", err.Code, err.Address)
}
