// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"io"

	"github.com/beevik/smpl/isa"
)

type pseudoOpData struct {
	fn    func(c *Context, pl ParsedLine, w io.Writer, param any) error
	param any
}

var pseudoOps = map[string]pseudoOpData{
	"PROG":   {fn: (*Context).parseProgram},
	"START":  {fn: (*Context).parseStart},
	"END":    {fn: (*Context).parseEnd},
	"ENTRY":  {fn: (*Context).parseLinkage, param: DefineRecord},
	"EXTREF": {fn: (*Context).parseLinkage, param: ReferenceRecord},
	"WORD":   {fn: (*Context).parseWord},
	"BYTE":   {fn: (*Context).parseByte},
}

// Pass1 reads assembly code from r, assigns addresses, and writes one
// intermediate line per memory-affecting statement to w. Forward
// references are left as zero operands for Pass2 to patch. Pass1 stops
// after the END statement. Only read and write failures are returned;
// assembly errors are reported as diagnostics.
func (c *Context) Pass1(r io.Reader, w io.Writer) error {
	c.logSection("Pass 1")

	p := NewParser(r)
	for !c.ended && p.Scan() {
		if err := c.ProcessLine(p.Line(), w); err != nil {
			return err
		}
	}
	if err := p.Err(); err != nil {
		return err
	}

	c.Finalize()
	return nil
}

// ProcessLine performs pass 1 processing of a single parsed line. Lines
// following END are ignored.
func (c *Context) ProcessLine(pl ParsedLine, w io.Writer) error {
	if c.ended {
		return nil
	}

	switch pl.Kind {
	case LineComment:
		return nil
	case LineEmpty:
		c.defineLabel(pl)
		return nil
	}

	if c.echo {
		fmt.Fprintln(c.out, pl)
	}

	if op, ok := pseudoOps[pl.Mnemonic]; ok {
		return op.fn(c, pl, w, op.param)
	}

	c.defineLabel(pl)
	return c.assembleInstruction(pl, w)
}

// Finalize completes pass 1: the program length is computed if no END was
// seen, and every ENTRY symbol is resolved to its address. Calling
// Finalize more than once has no further effect.
func (c *Context) Finalize() {
	if c.finalized {
		return
	}
	c.finalized = true

	if !c.ended {
		c.length = c.lc - c.start
	}

	for i := range c.linkage.records {
		r := &c.linkage.records[i]
		if r.Kind != DefineRecord {
			continue
		}
		addr := c.symbols.Address(r.Symbol)
		if addr < 0 {
			c.addError(r.line, fmt.Errorf("%w '%s'", ErrUndefinedEntry, r.Symbol))
			continue
		}
		r.Address, r.Resolved = addr, true
	}
}

// Store a line's label into the symbol table at the current location.
func (c *Context) defineLabel(pl ParsedLine) {
	if pl.Label == "" {
		return
	}
	if err := c.symbols.Add(pl.Label, c.lc); err != nil {
		c.addError(pl.Line, err)
		return
	}
	c.logLine(pl, "label=%s addr=%04X", pl.Label, c.lc)
}

// Parse a PROG pseudo-op.
func (c *Context) parseProgram(pl ParsedLine, w io.Writer, param any) error {
	c.defineLabel(pl)
	if pl.Operand != "" {
		c.module = truncate(pl.Operand, maxLabelLen)
	}
	c.logLine(pl, "module=%s", c.module)
	return nil
}

// Parse a START pseudo-op.
func (c *Context) parseStart(pl ParsedLine, w io.Writer, param any) error {
	if c.emitted {
		c.addError(pl.Line, ErrMisplacedStart)
		c.defineLabel(pl)
		return nil
	}
	if pl.Operand != "" {
		c.lc = atoi(pl.Operand)
	}
	c.start = c.lc
	c.logLine(pl, "start=%04X", c.start)
	c.defineLabel(pl)
	return nil
}

// Parse an END pseudo-op.
func (c *Context) parseEnd(pl ParsedLine, w io.Writer, param any) error {
	c.defineLabel(pl)
	c.length = c.lc - c.start
	c.ended = true
	c.logLine(pl, "length=%X", c.length)
	return nil
}

// Parse an ENTRY or EXTREF pseudo-op.
func (c *Context) parseLinkage(pl ParsedLine, w io.Writer, param any) error {
	c.defineLabel(pl)

	kind := param.(RecordKind)
	remain := newFstring(pl.Line, pl.Operand)
	for {
		var name fstring
		_, remain = remain.consumeWhile(listSeparator)
		if remain.isEmpty() {
			break
		}
		name, remain = remain.consumeUntil(listSeparator)

		r := LinkageRecord{Kind: kind, Symbol: truncate(name.str, maxLabelLen), line: pl.Line}
		if err := c.linkage.Add(r); err != nil {
			c.addError(pl.Line, err)
			continue
		}
		c.logLine(pl, "%s %s", kind, r.Symbol)
	}
	return nil
}

// Parse a WORD pseudo-op.
func (c *Context) parseWord(pl ParsedLine, w io.Writer, param any) error {
	c.defineLabel(pl)

	addr := c.lc
	c.lc += 2
	return c.emitData(w, pl, addr, toBytes(2, atoi(pl.Operand)))
}

// Parse a BYTE pseudo-op.
func (c *Context) parseByte(pl ParsedLine, w io.Writer, param any) error {
	c.defineLabel(pl)

	var b []byte
	l := newFstring(pl.Line, pl.Operand)
	switch {
	case l.startsWithString("C'"):
		l = l.consume(2)
		s, _ := l.consumeUntil(stringQuote)
		b = []byte(s.str)

	case l.startsWithString("X'"):
		l = l.consume(2)
		s, _ := l.consumeWhile(hexadecimal)
		for i := 0; i < len(s.str); i += 2 {
			b = append(b, hexToByte(s.str[i:]))
		}

	default:
		b = []byte{byte(atoi(pl.Operand))}
	}

	for _, v := range b {
		addr := c.lc
		c.lc++
		if err := c.emitData(w, pl, addr, []byte{v}); err != nil {
			return err
		}
	}
	return nil
}

// Encode an instruction statement.
func (c *Context) assembleInstruction(pl ParsedLine, w io.Writer) error {
	if c.instSet.GetInstructions(pl.Mnemonic) == nil {
		c.addError(pl.Line, fmt.Errorf("%w '%s'", ErrUnknownOpcode, pl.Mnemonic))
		return nil
	}
	if pl.Mode == isa.NON {
		c.addError(pl.Line, fmt.Errorf("%w for '%s'", ErrMissingOperand, pl.Mnemonic))
		return nil
	}

	inst := c.instSet.Find(pl.Mnemonic, pl.Mode)
	addr := c.lc
	c.lc += int(inst.Length)

	c.logLine(pl, "%04X %s Len:%d Mode:%s Opcode:%02X",
		addr, inst.Name, inst.Length, inst.Mode, inst.Opcode)

	switch inst.Mode {
	case isa.IMP:
		return c.emitCode(w, pl, addr, inst.Opcode, nil)
	case isa.IMM:
		v := atoi(pl.Operand[1:])
		return c.emitCode(w, pl, addr, inst.Opcode, toBytes(int(inst.Length)-1, v))
	default:
		return c.emitCode(w, pl, addr, inst.Opcode, c.addressOperand(pl, inst, addr))
	}
}

// Produce the two operand bytes of a direct or relative instruction at
// addr. Branch targets are absolute addresses, like direct operands.
func (c *Context) addressOperand(pl ParsedLine, inst *isa.Instruction, addr int) []byte {
	if isNumeric(pl.Operand) {
		return toBytes(2, atoi(pl.Operand))
	}

	name := truncate(pl.Operand, maxLabelLen)
	slot := addr + 1

	if target := c.symbols.Address(name); target >= 0 {
		if inst.Mode == isa.DIR {
			c.addRelocation(pl, slot)
		}
		return toBytes(2, target)
	}

	if c.linkage.IsExternal(name) {
		r := LinkageRecord{Kind: ModifyRecord, Symbol: name, Address: slot, line: pl.Line}
		if err := c.linkage.Add(r); err != nil {
			c.addError(pl.Line, err)
		} else {
			c.logLine(pl, "M %s %X", name, slot)
		}
		return toBytes(2, 0)
	}

	if err := c.forwardRefs.Add(name, addr); err != nil {
		c.addError(pl.Line, err)
		return toBytes(2, 0)
	}
	c.logLine(pl, "forward=%s at %04X", name, addr)
	if inst.Mode == isa.DIR {
		c.addRelocation(pl, slot)
	}
	return toBytes(2, 0)
}

func (c *Context) addRelocation(pl ParsedLine, slot int) {
	if err := c.relocations.Add(slot); err != nil {
		c.addError(pl.Line, err)
	}
}

// Write an instruction statement to the intermediate stream.
func (c *Context) emitCode(w io.Writer, pl ParsedLine, addr int, opcode byte, operand []byte) error {
	c.markStatement(pl, addr)

	var err error
	if len(operand) == 0 {
		_, err = fmt.Fprintf(w, "%04X  %02X\n", addr, opcode)
	} else {
		_, err = fmt.Fprintf(w, "%04X  %02X  %s\n", addr, opcode, byteString(operand))
	}
	return err
}

// Write a data statement to the intermediate stream.
func (c *Context) emitData(w io.Writer, pl ParsedLine, addr int, b []byte) error {
	c.markStatement(pl, addr)
	c.log("%04X-*  %s", addr, byteString(b))

	_, err := fmt.Fprintf(w, "%04X  %s\n", addr, byteString(b))
	return err
}

func (c *Context) markStatement(pl ParsedLine, addr int) {
	c.emitted = true
	c.sourceLines = append(c.sourceLines, SourceLine{Address: addr, Line: pl.Line})
}
