// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"
	"testing"

	"github.com/beevik/smpl/isa"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		text     string
		kind     LineKind
		label    string
		mnemonic string
		operand  string
		mode     isa.Mode
	}{
		{"", LineEmpty, "", "", "", isa.NON},
		{"   \t", LineEmpty, "", "", "", isa.NON},
		{"; comment", LineComment, "", "", "", isa.NON},
		{"  # comment", LineComment, "", "", "", isa.NON},
		{"// comment", LineComment, "", "", "", isa.NON},
		{"L:", LineEmpty, "L", "", "", isa.NON},
		{"LOOP: LDA #5", LineInstruction, "LOOP", "LDA", "#5", isa.IMM},
		{"LOOP:LDA X", LineInstruction, "LOOP", "LDA", "X", isa.DIR},
		{"\tHLT", LineInstruction, "", "HLT", "", isa.IMP},
		{"DEC X", LineInstruction, "", "DEC", "X", isa.IMP},
		{"BEQ DONE", LineInstruction, "", "BEQ", "DONE", isa.REL},
		{"BGT #3", LineInstruction, "", "BGT", "#3", isa.IMM},
		{"JMP", LineInstruction, "", "JMP", "", isa.NON},
		{"START 100", LinePseudo, "", "START", "100", isa.NON},
		{"E: ENTRY A, B", LinePseudo, "E", "ENTRY", "A, B", isa.NON},
		{"  END", LineEnd, "", "END", "", isa.NON},
		{"VERYLONGLABEL: INC", LineInstruction, "VERYLONGL", "INC", "", isa.IMP},
		{"LDA X\r", LineInstruction, "", "LDA", "X", isa.DIR},
	}

	for _, tt := range tests {
		pl := ParseLine(7, tt.text)
		if pl.Kind != tt.kind || pl.Label != tt.label || pl.Mnemonic != tt.mnemonic ||
			pl.Operand != tt.operand || pl.Mode != tt.mode {
			t.Errorf("ParseLine(%q) = {%v %q %q %q %v}, expected {%v %q %q %q %v}",
				tt.text, pl.Kind, pl.Label, pl.Mnemonic, pl.Operand, pl.Mode,
				tt.kind, tt.label, tt.mnemonic, tt.operand, tt.mode)
		}
		if pl.Line != 7 || pl.Source != tt.text {
			t.Errorf("ParseLine(%q) lost its line number or source", tt.text)
		}
	}
}

func TestParseLineTruncation(t *testing.T) {
	pl := ParseLine(1, "LONGMNEMONIC "+strings.Repeat("X", 40))
	if pl.Mnemonic != "LONGMNEMO" {
		t.Errorf("mnemonic not truncated: %q", pl.Mnemonic)
	}
	if len(pl.Operand) != maxOperandLen {
		t.Errorf("operand not truncated: %d", len(pl.Operand))
	}
}

func TestParsedLineString(t *testing.T) {
	pl := ParseLine(3, "HLT")
	exp := "Line 3: Label=(none)   Opcode=HLT    Operand=(none)    "
	if s := pl.String(); s != exp {
		t.Errorf("got %q, expected %q", s, exp)
	}
}

func TestParser(t *testing.T) {
	p := NewParser(strings.NewReader("A: HLT\n\n; note\nRET\n"))

	var lines []ParsedLine
	for p.Scan() {
		lines = append(lines, p.Line())
	}
	if p.Err() != nil {
		t.Fatal(p.Err())
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, expected 4", len(lines))
	}
	if lines[0].Label != "A" || lines[1].Kind != LineEmpty ||
		lines[2].Kind != LineComment || lines[3].Line != 4 {
		t.Errorf("unexpected lines: %v", lines)
	}

	p.Reset(strings.NewReader("INC"))
	if !p.Scan() || p.Line().Line != 1 || p.Line().Mnemonic != "INC" {
		t.Error("reset parser did not restart numbering")
	}
	if p.Scan() {
		t.Error("expected end of input")
	}
}

func TestParserLongLines(t *testing.T) {
	long := "; " + strings.Repeat("x", 70000)
	p := NewParser(strings.NewReader("START 0\n" + long + "\nHLT\n" + long))

	var lines []ParsedLine
	for p.Scan() {
		lines = append(lines, p.Line())
	}
	if p.Err() != nil {
		t.Fatal(p.Err())
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, expected 4", len(lines))
	}
	if lines[1].Kind != LineComment || lines[3].Kind != LineComment {
		t.Errorf("long lines not parsed as comments: %v", lines)
	}
	if lines[2].Mnemonic != "HLT" || lines[2].Line != 3 {
		t.Errorf("line after a long line misparsed: %v", lines[2])
	}
}
