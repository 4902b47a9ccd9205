package asm

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

var errObjectLine = errors.New("invalid object line")

// An ObjectLine is one statement of an intermediate or object file: its
// address followed by its opcode or data byte and operand bytes.
type ObjectLine struct {
	Address int
	Code    []byte
	Data    bool // a multi-byte data statement such as a WORD
}

// String formats the line the way the assembler wrote it.
func (o ObjectLine) String() string {
	switch {
	case len(o.Code) == 0:
		return fmtAddr(o.Address)
	case len(o.Code) == 1 || o.Data:
		return fmtAddr(o.Address) + "  " + byteString(o.Code)
	default:
		return fmtAddr(o.Address) + "  " + byteString(o.Code[:1]) + "  " + byteString(o.Code[1:])
	}
}

func fmtAddr(addr int) string {
	return string([]byte{
		hex[(addr>>12)&0xf],
		hex[(addr>>8)&0xf],
		hex[(addr>>4)&0xf],
		hex[addr&0xf],
	})
}

// ParseObjectLine decodes a line of an intermediate or object file.
func ParseObjectLine(s string) (ObjectLine, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ObjectLine{}, errObjectLine
	}

	addr, err := strconv.ParseUint(fields[0], 16, 32)
	if err != nil {
		return ObjectLine{}, errObjectLine
	}

	// An instruction separates its opcode from its operand bytes with two
	// spaces. Data bytes are separated by one.
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), fields[0]))
	first, _, _ := strings.Cut(body, "  ")

	o := ObjectLine{Address: int(addr), Data: len(strings.Fields(first)) > 1}
	for _, f := range fields[1:] {
		l := newFstring(0, f)
		if len(f)%2 != 0 || l.scanWhile(hexadecimal) != len(f) {
			return ObjectLine{}, errObjectLine
		}
		for i := 0; i < len(f); i += 2 {
			o.Code = append(o.Code, hexToByte(f[i:]))
		}
	}
	return o, nil
}

// ReadObject decodes every line of an intermediate or object file. Blank
// lines are skipped.
func ReadObject(r io.Reader) ([]ObjectLine, error) {
	var lines []ObjectLine
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		o, err := ParseObjectLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		lines = append(lines, o)
	}
	return lines, scanner.Err()
}
