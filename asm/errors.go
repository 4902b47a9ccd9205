// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
)

// Errors reported while assembling. A reported error never stops the
// assembly; every diagnostic is collected and the passes continue.
var (
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	ErrTableFull       = errors.New("table full")
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrMissingOperand  = errors.New("missing operand")
	ErrMisplacedStart  = errors.New("START must precede the first statement")
	ErrUndefinedEntry  = errors.New("undefined ENTRY symbol")
	ErrUndefinedSymbol = errors.New("undefined symbol")

	// ErrAssembly is returned by Assemble and AssembleFile when at least
	// one diagnostic was reported.
	ErrAssembly = errors.New("assembly failed")

	// ErrSourceOverwrite is returned by AssembleFile when one of its output
	// files would replace the source being assembled.
	ErrSourceOverwrite = errors.New("output file would overwrite the source")
)

// Names of the assembler's bounded tables, used in ErrTableFull
// diagnostics.
const (
	SymbolTableName     = "symbol table"
	ForwardRefTableName = "forward reference table"
	DirectAddrTableName = "direct address table"
	LinkageTableName    = "linkage table"
)

func tableFull(table string) error {
	return fmt.Errorf("%w: %s", ErrTableFull, table)
}

// A Diagnostic is an error reported during assembly. Line is the source
// line that caused it, or 0 for errors detected in pass 2.
type Diagnostic struct {
	Line int
	Err  error
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %v", d.Line, d.Err)
	}
	return d.Err.Error()
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
