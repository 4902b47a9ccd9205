// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import "testing"

func TestFind(t *testing.T) {
	set := GetInstructionSet()

	tests := []struct {
		name   string
		mode   Mode
		opcode byte
		length byte
	}{
		{"ADD", DIR, 0xa1, 3},
		{"ADD", IMM, 0xa2, 2},
		{"LDA", IMM, 0xe2, 2},
		{"LDA", DIR, 0xe1, 3},
		{"SUB", IMM, 0xa4, 2},
		{"SUB", DIR, 0xa3, 3},
		{"BEQ", REL, 0xb1, 3},
		{"BGT", REL, 0xb2, 3},
		{"BLT", REL, 0xb3, 3},
		{"JMP", DIR, 0xb4, 3},
		{"STA", DIR, 0xf1, 3},
		{"CLL", DIR, 0xc1, 3},
		{"HLT", IMP, 0xfe, 1},
		{"DEC", IMP, 0xd1, 1},
		{"INC", IMP, 0xd2, 1},
		{"RET", IMP, 0xc2, 1},

		// No dedicated encoding: base opcode, mode length.
		{"JMP", IMM, 0xb4, 2},
		{"STA", IMM, 0xf1, 2},
		{"BEQ", IMM, 0xb1, 2},
	}

	for _, tc := range tests {
		inst := set.Find(tc.name, tc.mode)
		if inst == nil {
			t.Errorf("%s %s: no encoding", tc.name, tc.mode)
			continue
		}
		if inst.Opcode != tc.opcode || inst.Length != tc.length {
			t.Errorf("%s %s: exp %02X/%d, got %02X/%d", tc.name, tc.mode,
				tc.opcode, tc.length, inst.Opcode, inst.Length)
		}
		if inst.Mode != tc.mode {
			t.Errorf("%s %s: mode incorrect, got %s", tc.name, tc.mode, inst.Mode)
		}
	}
}

func TestFindUnknown(t *testing.T) {
	set := GetInstructionSet()
	for _, name := range []string{"FOO", "lda", "", "START"} {
		if inst := set.Find(name, DIR); inst != nil {
			t.Errorf("'%s': expected no encoding, got %02X", name, inst.Opcode)
		}
	}
}

func TestLookup(t *testing.T) {
	set := GetInstructionSet()
	for _, name := range set.Names() {
		for _, inst := range set.GetInstructions(name) {
			got := set.Lookup(inst.Opcode)
			if got != inst {
				t.Errorf("Lookup(%02X) did not return %s %s", inst.Opcode, name, inst.Mode)
			}
		}
	}
	if set.Lookup(0x00) != nil {
		t.Error("opcode 00 should not decode")
	}
	if n := len(set.Names()); n != 13 {
		t.Errorf("mnemonic count incorrect. exp: 13, got: %d", n)
	}
}

func TestModeLength(t *testing.T) {
	exp := map[Mode]byte{NON: 3, IMP: 1, IMM: 2, DIR: 3, REL: 3}
	for m, l := range exp {
		if m.Length() != l {
			t.Errorf("%s length incorrect. exp: %d, got: %d", m, l, m.Length())
		}
	}
}
