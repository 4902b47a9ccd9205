// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/smpl/isa"
)

// Option type used by the assembler.
type Option uint

// Options for the assembler.
const (
	Verbose Option = 1 << iota // log each assembly step to the output
	Echo                       // echo every parsed statement to the output
)

// A Context holds all state of a single assembly run: the location
// counter, the module header fields, every table built by pass 1, and the
// diagnostics reported by both passes. A context is used by exactly one
// run; call Reset before reusing it.
type Context struct {
	instSet     *isa.InstructionSet // instruction encodings
	limits      Limits              // table capacities
	lc          int                 // the location counter
	module      string              // module name set by PROG
	start       int                 // program start set by START
	length      int                 // program length
	emitted     bool                // a statement has been emitted
	ended       bool                // END has been processed
	finalized   bool                // pass 1 has been finalized
	symbols     *SymbolTable        // label -> address
	forwardRefs *ForwardRefTable    // operands awaiting pass 2
	relocations *DirectAddrTable    // relocatable operand slots
	linkage     *LinkageTable       // define/reference/modify records
	sourceLines []SourceLine        // statement address -> source line
	errors      []Diagnostic        // errors reported so far
	out         io.Writer           // diagnostic sink and log output
	verbose     bool                // verbose output
	echo        bool                // echo parsed statements
}

// NewContext creates an assembly context. Diagnostics, and any output
// requested by the options, are written to out; a nil out discards them.
func NewContext(limits Limits, out io.Writer, options Option) *Context {
	if out == nil {
		out = io.Discard
	}
	c := &Context{
		instSet: isa.GetInstructionSet(),
		limits:  limits.withDefaults(),
		out:     out,
		verbose: (options & Verbose) != 0,
		echo:    (options & Echo) != 0,
	}
	c.Reset()
	return c
}

// Reset clears all state so the context can assemble a fresh module.
func (c *Context) Reset() {
	c.lc = 0
	c.module = ""
	c.start = 0
	c.length = 0
	c.emitted = false
	c.ended = false
	c.finalized = false
	c.symbols = newSymbolTable(c.limits.Symbols)
	c.forwardRefs = &ForwardRefTable{limit: c.limits.ForwardRefs}
	c.relocations = &DirectAddrTable{limit: c.limits.Relocations}
	c.linkage = &LinkageTable{limit: c.limits.Linkage}
	c.sourceLines = nil
	c.errors = nil
}

// LocationCounter returns the address of the next statement.
func (c *Context) LocationCounter() int {
	return c.lc
}

// Header returns the module header record.
func (c *Context) Header() Header {
	return Header{Module: c.module, Start: c.start, Length: c.length}
}

// Limits returns the table capacities in effect.
func (c *Context) Limits() Limits {
	return c.limits
}

// Symbols returns the symbol table.
func (c *Context) Symbols() *SymbolTable {
	return c.symbols
}

// ForwardRefs returns the forward reference table.
func (c *Context) ForwardRefs() *ForwardRefTable {
	return c.forwardRefs
}

// Relocations returns the direct address (relocation) table.
func (c *Context) Relocations() *DirectAddrTable {
	return c.relocations
}

// Linkage returns the linkage record table.
func (c *Context) Linkage() *LinkageTable {
	return c.linkage
}

// SourceLines returns the source line of every emitted statement, in
// address order.
func (c *Context) SourceLines() []SourceLine {
	return c.sourceLines
}

// Errors returns every diagnostic reported so far.
func (c *Context) Errors() []Diagnostic {
	return c.errors
}

// WriteTables writes the relocation (DAT) and linkage (HDRM) sections of
// the table file.
func (c *Context) WriteTables(w io.Writer) error {
	return writeTables(w, c.Header(), c.relocations, c.linkage)
}

// Report an error to the diagnostic sink and keep it.
func (c *Context) addError(line int, err error) {
	d := Diagnostic{Line: line, Err: err}
	c.errors = append(c.errors, d)
	fmt.Fprintf(c.out, "ERROR: %v\n", d)
}

// In verbose mode, log a string to the output.
func (c *Context) log(format string, args ...any) {
	if c.verbose {
		fmt.Fprintf(c.out, format, args...)
		fmt.Fprintf(c.out, "\n")
	}
}

// In verbose mode, log a string and its associated line of assembly code.
func (c *Context) logLine(pl ParsedLine, format string, args ...any) {
	if c.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(c.out, "%-3d | %-28s | %s\n", pl.Line, detail, strings.TrimSpace(pl.Source))
	}
}

// In verbose mode, log a section header to the output.
func (c *Context) logSection(name string) {
	if c.verbose {
		fmt.Fprintln(c.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(c.out, "-- %s --\n", name)
		fmt.Fprintln(c.out, strings.Repeat("-", len(name)+6))
	}
}
