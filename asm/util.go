// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

var hex = "0123456789ABCDEF"

func hexchar(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// Decode a pair of hex digits. A missing or invalid digit counts as zero.
func hexToByte(s string) byte {
	var lo byte
	if len(s) > 1 {
		lo = hexchar(s[1])
	}
	return hexchar(s[0])<<4 | lo
}

// Return a big-endian representation of the value using the requested
// number of bytes.
func toBytes(bytes, value int) []byte {
	b := make([]byte, bytes)
	for i := bytes - 1; i >= 0; i-- {
		b[i] = byte(value)
		value >>= 8
	}
	return b
}

// Return a hexadecimal string representation of a byte slice.
func byteString(b []byte) string {
	if len(b) < 1 {
		return ""
	}

	s := make([]byte, len(b)*3-1)
	i, j := 0, 0
	for n := len(b) - 1; i < n; i, j = i+1, j+3 {
		s[j+0] = hex[(b[i] >> 4)]
		s[j+1] = hex[(b[i] & 0x0f)]
		s[j+2] = ' '
	}
	s[j+0] = hex[(b[i] >> 4)]
	s[j+1] = hex[(b[i] & 0x0f)]
	return string(s)
}

// Convert the leading decimal digits of a string (with an optional sign)
// to an integer. Conversion stops at the first non-digit; a string without
// digits converts to zero.
func atoi(s string) int {
	l := newFstring(0, s).consumeWhitespace()

	neg := false
	switch {
	case l.startsWithChar('-'):
		neg, l = true, l.consume(1)
	case l.startsWithChar('+'):
		l = l.consume(1)
	}

	digits, _ := l.consumeWhile(decimal)
	v := 0
	for i := 0; i < len(digits.str); i++ {
		v = v*10 + int(digits.str[i]-'0')
	}
	if neg {
		v = -v
	}
	return v
}

// Report whether the string is a non-empty run of decimal digits.
func isNumeric(s string) bool {
	l := newFstring(0, s)
	return !l.isEmpty() && l.scanWhile(decimal) == len(s)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
