// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Pass2 writes the relocation and linkage tables to tab, then rewinds the
// intermediate stream produced by Pass1 and copies it to obj, patching the
// operand of every statement that holds a forward reference. Pass2 reads
// the symbol and forward reference tables but never changes them.
// Statements whose forward reference cannot be resolved are reported and
// copied unpatched. External references are left for the linker.
func (c *Context) Pass2(r io.ReadSeeker, obj, tab io.Writer) error {
	c.Finalize()
	c.logSection("Pass 2")

	if err := c.WriteTables(tab); err != nil {
		return err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	ew := &errWriter{w: obj}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(strings.TrimSpace(line)) < 4 {
			continue
		}
		ew.printf("%s\n", c.patchLine(line))
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return ew.err
}

// Return the object code form of an intermediate line.
func (c *Context) patchLine(line string) string {
	fields := strings.Fields(line)
	addr, err := strconv.ParseUint(fields[0], 16, 32)
	if err != nil {
		return line
	}

	ref, ok := c.forwardRefs.Find(int(addr))
	if !ok {
		return line
	}

	target := c.symbols.Address(ref.Symbol)
	if target < 0 {
		c.addError(0, fmt.Errorf("%w '%s' at %X", ErrUndefinedSymbol, ref.Symbol, addr))
		return line
	}

	var opcode string
	if len(fields) > 1 {
		opcode = fields[1]
	}
	patched := fmt.Sprintf("%04X  %s  %s", addr, opcode, byteString(toBytes(2, target)))
	c.log("%-20s => %s (%s)", line, patched, ref.Symbol)
	return patched
}
