// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func pass1(t *testing.T, code string, limits Limits) (*Context, string) {
	t.Helper()
	c := NewContext(limits, nil, 0)
	var b bytes.Buffer
	if err := c.Pass1(strings.NewReader(code), &b); err != nil {
		t.Fatal(err)
	}
	return c, b.String()
}

func checkErrors(t *testing.T, c *Context, targets ...error) {
	t.Helper()
	diags := c.Errors()
	if len(diags) != len(targets) {
		t.Errorf("got %d diagnostics %v, expected %d", len(diags), diags, len(targets))
		return
	}
	for i, target := range targets {
		if !errors.Is(diags[i], target) {
			t.Errorf("diagnostic %d: got '%v', expected '%v'", i, diags[i], target)
		}
	}
}

func TestPass1Data(t *testing.T) {
	c, s := pass1(t, "BYTE C'AB'\nBYTE X'0F10'\nBYTE 7\nW: WORD 258\nEND\n", Limits{})
	checkErrors(t, c)

	exp := "0000  41\n0001  42\n0002  0F\n0003  10\n0004  07\n0005  01 02\n"
	if s != exp {
		t.Errorf("got:\n%s\nexpected:\n%s", s, exp)
	}
	if c.LocationCounter() != 7 {
		t.Errorf("location counter %d, expected 7", c.LocationCounter())
	}
	if c.Symbols().Address("W") != 5 {
		t.Errorf("W defined at %d, expected 5", c.Symbols().Address("W"))
	}
}

func TestPass1Relocations(t *testing.T) {
	code := `
A:	LDA #5
	ADD A
	BEQ A
	BLT B
	SUB B
	JMP 300
B:	RET
	END`
	c, _ := pass1(t, code, Limits{})
	checkErrors(t, c)

	// Only symbolic direct operands are relocatable.
	exp := []int{3, 0xC}
	addrs := c.Relocations().Addresses()
	if len(addrs) != len(exp) {
		t.Fatalf("relocations %v, expected %v", addrs, exp)
	}
	for i := range exp {
		if addrs[i] != exp[i] {
			t.Errorf("relocations %v, expected %v", addrs, exp)
			break
		}
	}

	refs := c.ForwardRefs().Refs()
	if len(refs) != 2 || refs[0] != (ForwardRef{"B", 8}) || refs[1] != (ForwardRef{"B", 0xB}) {
		t.Errorf("unexpected forward references %v", refs)
	}
}

func TestPass1Start(t *testing.T) {
	c, s := pass1(t, "S: START 16\nINC\nEND\n", Limits{})
	checkErrors(t, c)
	if s != "0010  D2\n" {
		t.Errorf("got %q", s)
	}
	if h := c.Header(); h.Start != 16 || h.Length != 1 {
		t.Errorf("unexpected header %+v", h)
	}
	if c.Symbols().Address("S") != 16 {
		t.Errorf("START label defined at %d", c.Symbols().Address("S"))
	}
}

func TestPass1MisplacedStart(t *testing.T) {
	c, _ := pass1(t, "HLT\nS: START 10\nHLT\nEND\n", Limits{})
	checkErrors(t, c, ErrMisplacedStart)
	if c.Header().Start != 0 || c.LocationCounter() != 2 {
		t.Errorf("misplaced START changed the location counter")
	}
	if c.Symbols().Address("S") != 1 {
		t.Errorf("label of misplaced START not defined")
	}
}

func TestPass1End(t *testing.T) {
	c, s := pass1(t, "HLT\nEND\nHLT\nFOO\n", Limits{})
	checkErrors(t, c)
	if s != "0000  FE\n" || c.Header().Length != 1 {
		t.Errorf("statements after END were processed")
	}

	c, _ = pass1(t, "HLT\nHLT\n", Limits{})
	if c.Header().Length != 2 {
		t.Errorf("length without END is %d, expected 2", c.Header().Length)
	}
}

func TestPass1UnknownOpcode(t *testing.T) {
	c, s := pass1(t, "X: FOO 5\nY: HLT\nEND\n", Limits{})
	checkErrors(t, c, ErrUnknownOpcode)
	if s != "0000  FE\n" {
		t.Errorf("got %q", s)
	}
	if c.Symbols().Address("X") != 0 || c.Symbols().Address("Y") != 0 {
		t.Error("labels not defined at the current location")
	}
}

func TestPass1Linkage(t *testing.T) {
	c, _ := pass1(t, "EXTREF A, B\tC\nENTRY L\nL: CLL B\nEND\n", Limits{})
	checkErrors(t, c)

	if r := c.Linkage().Records(ReferenceRecord); len(r) != 3 || r[2].Symbol != "C" {
		t.Errorf("unexpected reference records %v", r)
	}
	d := c.Linkage().Records(DefineRecord)
	if len(d) != 1 || !d[0].Resolved || d[0].Address != 0 {
		t.Errorf("unexpected define records %v", d)
	}
	m := c.Linkage().Records(ModifyRecord)
	if len(m) != 1 || m[0].Symbol != "B" || m[0].Address != 1 {
		t.Errorf("unexpected modify records %v", m)
	}
	if len(c.Relocations().Addresses()) != 0 {
		t.Error("external reference added to the relocation table")
	}
}

func TestTableLimits(t *testing.T) {
	c, _ := pass1(t, "A: HLT\nB: HLT\nC: HLT\nEND\n", Limits{Symbols: 2})
	checkErrors(t, c, ErrTableFull)
	if c.Symbols().Address("C") != -1 {
		t.Error("symbol added to a full table")
	}

	c, _ = pass1(t, "JMP A\nJMP B\nA: HLT\nB: HLT\nEND\n", Limits{ForwardRefs: 1})
	checkErrors(t, c, ErrTableFull)
	if addrs := c.Relocations().Addresses(); len(addrs) != 1 || addrs[0] != 1 {
		t.Errorf("unpatched operand added to the relocation table: %v", addrs)
	}

	c, _ = pass1(t, "A: HLT\nJMP A\nJMP A\nEND\n", Limits{Relocations: 1})
	checkErrors(t, c, ErrTableFull)

	c, _ = pass1(t, "ENTRY A,B\nA: HLT\nEND\n", Limits{Linkage: 1})
	checkErrors(t, c, ErrTableFull)
	if len(c.Linkage().Records(DefineRecord)) != 1 {
		t.Error("record added to a full linkage table")
	}

	if l := c.Limits(); l.Linkage != 1 || l.Symbols != DefaultLimits.Symbols {
		t.Errorf("unexpected limits %+v", l)
	}
}

func TestPass2SkipsShortLines(t *testing.T) {
	c := NewContext(Limits{}, nil, 0)
	var obj, tab bytes.Buffer
	err := c.Pass2(strings.NewReader("\n  \nFE\n0000  FE\n"), &obj, &tab)
	if err != nil {
		t.Fatal(err)
	}
	if obj.String() != "0000  FE\n" {
		t.Errorf("got %q", obj.String())
	}
	if tab.String() != "DAT\nHDRM\nH  0 0\n" {
		t.Errorf("got %q", tab.String())
	}
}

func TestPass2Patch(t *testing.T) {
	c, inter := pass1(t, "BGT L\nJMP L\nL: HLT\nEND\n", Limits{})

	var obj, tab bytes.Buffer
	if err := c.Pass2(strings.NewReader(inter), &obj, &tab); err != nil {
		t.Fatal(err)
	}
	exp := "0000  B2  00 06\n0003  B4  00 06\n0006  FE\n"
	if obj.String() != exp {
		t.Errorf("got:\n%s\nexpected:\n%s", obj.String(), exp)
	}
	if tab.String() != "DAT\n4\nHDRM\nH  0 7\n" {
		t.Errorf("got %q", tab.String())
	}
	if len(c.ForwardRefs().Refs()) != 2 || c.Symbols().Address("L") != 6 {
		t.Error("pass 2 modified the tables")
	}
}

func TestReset(t *testing.T) {
	c, _ := pass1(t, "PROG X\nL: HLT\nEND\n", Limits{})
	c.Reset()
	if c.LocationCounter() != 0 || c.Header() != (Header{}) ||
		len(c.Symbols().Symbols()) != 0 || len(c.SourceLines()) != 0 {
		t.Error("reset left state behind")
	}
}
