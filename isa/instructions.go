// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isa describes the SMPL instruction set: its mnemonics, addressing
// modes, opcodes and instruction lengths.
package isa

// An opsym is an internal symbol used to associate an opcode's data
// with its instructions.
type opsym byte

const (
	symADD opsym = iota
	symBEQ
	symBGT
	symBLT
	symCLL
	symDEC
	symINC
	symJMP
	symLDA
	symRET
	symSTA
	symSUB
	symHLT
)

var names = []string{
	symADD: "ADD",
	symBEQ: "BEQ",
	symBGT: "BGT",
	symBLT: "BLT",
	symCLL: "CLL",
	symDEC: "DEC",
	symINC: "INC",
	symJMP: "JMP",
	symLDA: "LDA",
	symRET: "RET",
	symSTA: "STA",
	symSUB: "SUB",
	symHLT: "HLT",
}

// Mode describes an operand addressing mode.
type Mode byte

// All possible addressing modes
const (
	NON Mode = iota // No operand
	IMP             // Implied
	IMM             // Immediate
	DIR             // Direct
	REL             // Relative
)

var modeName = []string{
	"NON",
	"IMP",
	"IMM",
	"DIR",
	"REL",
}

func (m Mode) String() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return "???"
}

// Length returns the combined opcode and operand length of an instruction
// encoded with the addressing mode.
func (m Mode) Length() byte {
	switch m {
	case IMP:
		return 1
	case IMM:
		return 2
	default:
		return 3
	}
}

// Opcode data for a (mnemonic, mode) pair. The first row listed for a
// mnemonic is its base encoding.
type opcodeData struct {
	sym    opsym // internal opcode symbol
	mode   Mode  // addressing mode
	opcode byte  // opcode hex value
	length byte  // length of opcode + operand in bytes
}

// All valid (mnemonic, mode) pairs
var data = []opcodeData{
	{symADD, DIR, 0xa1, 3},
	{symADD, IMM, 0xa2, 2},
	{symBEQ, REL, 0xb1, 3},
	{symBGT, REL, 0xb2, 3},
	{symBLT, REL, 0xb3, 3},
	{symCLL, DIR, 0xc1, 3},
	{symDEC, IMP, 0xd1, 1},
	{symINC, IMP, 0xd2, 1},
	{symJMP, DIR, 0xb4, 3},
	{symLDA, DIR, 0xe1, 3},
	{symLDA, IMM, 0xe2, 2},
	{symRET, IMP, 0xc2, 1},
	{symSTA, DIR, 0xf1, 3},
	{symSUB, DIR, 0xa3, 3},
	{symSUB, IMM, 0xa4, 2},
	{symHLT, IMP, 0xfe, 1},
}

// An Instruction describes one encoding of an instruction: its name, its
// addressing mode, its opcode value and its length.
type Instruction struct {
	Name   string // all-caps name of the instruction
	Mode   Mode   // addressing mode
	Opcode byte   // hexadecimal opcode value
	Length byte   // combined size of opcode and operand, in bytes
}

// An InstructionSet holds every encoding of the SMPL instruction set.
type InstructionSet struct {
	instructions map[byte]*Instruction     // all instructions by opcode
	variants     map[string][]*Instruction // variants of each instruction
	names        []string                  // mnemonics in table order
}

// Lookup retrieves the instruction encoded by the requested opcode. It
// returns nil if no instruction uses the opcode.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return s.instructions[opcode]
}

// GetInstructions returns all encodings of the named instruction. Names
// are case-sensitive.
func (s *InstructionSet) GetInstructions(name string) []*Instruction {
	return s.variants[name]
}

// Find selects the encoding of the named instruction for an addressing
// mode. When the instruction has no dedicated encoding for the mode, the
// base opcode is used with the length the mode implies. Find returns nil
// for unknown instructions.
func (s *InstructionSet) Find(name string, mode Mode) *Instruction {
	variants := s.variants[name]
	if len(variants) == 0 {
		return nil
	}
	for _, inst := range variants {
		if inst.Mode == mode {
			return inst
		}
	}
	return &Instruction{
		Name:   name,
		Mode:   mode,
		Opcode: variants[0].Opcode,
		Length: mode.Length(),
	}
}

// Names returns all instruction mnemonics in table order.
func (s *InstructionSet) Names() []string {
	return s.names
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		instructions: make(map[byte]*Instruction, len(data)),
		variants:     make(map[string][]*Instruction, len(names)),
	}

	for _, d := range data {
		inst := &Instruction{
			Name:   names[d.sym],
			Mode:   d.mode,
			Opcode: d.opcode,
			Length: d.length,
		}
		if _, dup := set.instructions[d.opcode]; dup {
			panic("duplicate opcode")
		}
		set.instructions[d.opcode] = inst
		if set.variants[inst.Name] == nil {
			set.names = append(set.names, inst.Name)
		}
		set.variants[inst.Name] = append(set.variants[inst.Name], inst)
	}
	return set
}

var instructionSet = newInstructionSet()

// GetInstructionSet returns the SMPL instruction set.
func GetInstructionSet() *InstructionSet {
	return instructionSet
}
