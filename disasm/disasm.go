// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements an SMPL object code disassembler.
package disasm

import (
	"fmt"

	"github.com/beevik/smpl/isa"
)

// Disassembler formatting for operand lengths
var modeFormat = []string{
	"%s",      // IMP
	"%s #$%s", // IMM
	"%s $%s",  // DIR, REL
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the byte slice.
func hexString(b []byte) string {
	hexbuf := make([]byte, len(b)*2)
	for i, n := range b {
		hexbuf[i*2] = hex[n>>4]
		hexbuf[i*2+1] = hex[n&0xf]
	}
	return string(hexbuf)
}

// Disassemble the bytes of one object code statement. The opcode selects
// the instruction and the number of operand bytes selects how the operand
// is shown. Statements whose first byte is not an opcode are shown as BYTE
// data.
func Disassemble(code []byte) string {
	if len(code) == 0 {
		return ""
	}

	set := isa.GetInstructionSet()
	inst := set.Lookup(code[0])
	if inst == nil || len(code) > len(modeFormat) {
		return fmt.Sprintf("BYTE X'%s'", hexString(code))
	}

	format := modeFormat[len(code)-1]
	if len(code) == 1 {
		return fmt.Sprintf(format, inst.Name)
	}
	return fmt.Sprintf(format, inst.Name, hexString(code[1:]))
}
