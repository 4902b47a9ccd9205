package asm

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseObjectLine(t *testing.T) {
	tests := []struct {
		line string
		addr int
		code []byte
		data bool
	}{
		{"0064  E1  00 76", 0x64, []byte{0xe1, 0x00, 0x76}, false},
		{"0067  A4  01", 0x67, []byte{0xa4, 0x01}, false},
		{"0075  C2", 0x75, []byte{0xc2}, false},
		{"0076  00 05", 0x76, []byte{0x00, 0x05}, true},
		{"  0010  fe  ", 0x10, []byte{0xfe}, false},
	}

	for _, tt := range tests {
		o, err := ParseObjectLine(tt.line)
		if err != nil {
			t.Errorf("ParseObjectLine(%q): %v", tt.line, err)
			continue
		}
		if o.Address != tt.addr || !bytes.Equal(o.Code, tt.code) || o.Data != tt.data {
			t.Errorf("ParseObjectLine(%q) = %04X % X", tt.line, o.Address, o.Code)
		}
	}

	for _, bad := range []string{"", "ZZZZ  E1", "0000  F", "0000  E1  0G"} {
		if _, err := ParseObjectLine(bad); err == nil {
			t.Errorf("ParseObjectLine(%q) should have failed", bad)
		}
	}
}

func TestObjectLineString(t *testing.T) {
	o := ObjectLine{Address: 0x64, Code: []byte{0xe1, 0x00, 0x76}}
	if s := o.String(); s != "0064  E1  00 76" {
		t.Errorf("got %q", s)
	}
	o = ObjectLine{Address: 0x75, Code: []byte{0xc2}}
	if s := o.String(); s != "0075  C2" {
		t.Errorf("got %q", s)
	}

	for _, line := range []string{"0064  E1  00 76", "0067  A4  01", "0076  00 05", "0078  41"} {
		o, err := ParseObjectLine(line)
		if err != nil {
			t.Errorf("ParseObjectLine(%q): %v", line, err)
			continue
		}
		if s := o.String(); s != line {
			t.Errorf("got %q, expected %q", s, line)
		}
	}
}

func TestReadObject(t *testing.T) {
	assembly, _, err := assemble(countdown)
	if err != nil {
		t.Fatal(err)
	}

	lines, err := ReadObject(bytes.NewReader(assembly.Object))
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 8 {
		t.Fatalf("got %d lines, expected 8", len(lines))
	}
	if lines[0].Address != 0x64 || !bytes.Equal(lines[0].Code, []byte{0xe1, 0x00, 0x76}) {
		t.Errorf("unexpected first line %v", lines[0])
	}

	if _, err := ReadObject(strings.NewReader("0000  FE\n\nbogus\n")); err == nil {
		t.Error("expected error on malformed object")
	}
}
