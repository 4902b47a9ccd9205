// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/smpl/isa"
)

// Maximum stored lengths of the fields of a parsed line. Longer fields are
// truncated.
const (
	maxLabelLen    = 9
	maxMnemonicLen = 9
	maxOperandLen  = 31
)

// LineKind classifies a parsed line of assembly code.
type LineKind byte

// All possible line kinds
const (
	LineEmpty LineKind = iota
	LineComment
	LineInstruction
	LinePseudo
	LineEnd
)

var lineKindName = []string{
	"empty",
	"comment",
	"instruction",
	"pseudo",
	"end",
}

func (k LineKind) String() string {
	if int(k) < len(lineKindName) {
		return lineKindName[k]
	}
	return "???"
}

var pseudoNames = map[string]bool{
	"START":  true,
	"END":    true,
	"BYTE":   true,
	"WORD":   true,
	"PROG":   true,
	"ENTRY":  true,
	"EXTREF": true,
}

var impliedNames = map[string]bool{
	"DEC": true,
	"INC": true,
	"RET": true,
	"HLT": true,
}

var branchNames = map[string]bool{
	"BEQ": true,
	"BGT": true,
	"BLT": true,
}

// A ParsedLine is the structured form of one line of assembly code.
type ParsedLine struct {
	Kind     LineKind // line classification
	Label    string   // label defined by the line, if any
	Mnemonic string   // instruction or pseudo-op name
	Operand  string   // operand text, verbatim
	Mode     isa.Mode // addressing mode of an instruction line
	Line     int      // 1-based source line number
	Source   string   // the line as read
}

// String formats the line's fields the way the assembler echoes them.
func (pl ParsedLine) String() string {
	label, operand := pl.Label, pl.Operand
	if label == "" {
		label = "(none)"
	}
	if operand == "" {
		operand = "(none)"
	}
	return fmt.Sprintf("Line %d: Label=%-8s Opcode=%-6s Operand=%-10s",
		pl.Line, label, pl.Mnemonic, operand)
}

// ParseLine converts one line of assembly code into a ParsedLine. It never
// fails: malformed lines degrade into empty or instruction lines with
// empty fields.
func ParseLine(row int, text string) ParsedLine {
	pl := ParsedLine{Kind: LineEmpty, Mode: isa.NON, Line: row, Source: text}

	line := newFstring(row, text).trim()
	switch {
	case line.isEmpty():
		return pl
	case line.startsWithChar(';') || line.startsWithChar('#') || line.startsWithString("//"):
		pl.Kind = LineComment
		return pl
	}

	// A colon inside the first word terminates a label.
	word, _ := line.consumeUntil(whitespace)
	if i := word.scanUntilChar(':'); i < len(word.str) {
		pl.Label = truncate(word.str[:i], maxLabelLen)
		line = line.consume(i + 1).trim()
	}

	if line.isEmpty() {
		return pl
	}

	mnemonic, remain := line.consumeUntil(whitespace)
	pl.Mnemonic = truncate(mnemonic.str, maxMnemonicLen)
	pl.Operand = truncate(remain.trim().str, maxOperandLen)

	switch {
	case pl.Mnemonic == "END":
		pl.Kind = LineEnd
	case pseudoNames[pl.Mnemonic]:
		pl.Kind = LinePseudo
	default:
		pl.Kind = LineInstruction
		pl.Mode = addressingMode(pl.Mnemonic, pl.Operand)
	}
	return pl
}

// Guess the addressing mode of an instruction from its mnemonic and
// operand.
func addressingMode(mnemonic, operand string) isa.Mode {
	switch {
	case impliedNames[mnemonic]:
		return isa.IMP
	case operand == "":
		return isa.NON
	case strings.HasPrefix(operand, "#"):
		return isa.IMM
	case branchNames[mnemonic]:
		return isa.REL
	default:
		return isa.DIR
	}
}

// Source lines longer than this are truncated.
const maxLineLength = 4096

// A Parser reads lines of assembly code from a stream and produces one
// ParsedLine per line.
type Parser struct {
	scanner    *bufio.Scanner
	row        int
	line       ParsedLine
	truncating bool
}

// NewParser creates a parser reading from r.
func NewParser(r io.Reader) *Parser {
	p := &Parser{}
	p.Reset(r)
	return p
}

// Split the input into lines of at most maxLineLength bytes, discarding
// the remainder of longer lines.
func (p *Parser) splitLines(data []byte, atEOF bool) (int, []byte, error) {
	if p.truncating {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			p.truncating = false
			return i + 1, nil, nil
		}
		return len(data), nil, nil
	}

	advance, token, err := bufio.ScanLines(data, atEOF)
	switch {
	case advance == 0 && token == nil && len(data) >= maxLineLength:
		p.truncating = true
		return maxLineLength, data[:maxLineLength], nil
	case len(token) > maxLineLength:
		token = token[:maxLineLength]
	}
	return advance, token, err
}

// Scan advances the parser to the next line, which is then available
// through Line. It returns false at the end of the input or on a read
// error.
func (p *Parser) Scan() bool {
	if !p.scanner.Scan() {
		return false
	}
	p.row++
	p.line = ParseLine(p.row, p.scanner.Text())
	return true
}

// Line returns the most recently parsed line.
func (p *Parser) Line() ParsedLine {
	return p.line
}

// Err returns the first non-EOF error encountered while reading.
func (p *Parser) Err() error {
	return p.scanner.Err()
}

// Reset restarts line numbering and continues reading from r.
func (p *Parser) Reset(r io.Reader) {
	p.scanner = bufio.NewScanner(r)
	p.scanner.Split(p.splitLines)
	p.row = 0
	p.line = ParsedLine{}
	p.truncating = false
}
