// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"slices"
	"testing"
)

func TestUniqueSources(t *testing.T) {
	tests := []struct {
		args []string
		exp  []string
	}{
		{[]string{"a.asm", "b.asm"}, []string{"a.asm", "b.asm"}},
		{[]string{"a.asm", "a.asm"}, []string{"a.asm"}},
		{[]string{"a.asm", "./a.asm", "dir/../a.asm"}, []string{"a.asm"}},
		{[]string{"a.asm", "a", "b.asm"}, []string{"a.asm", "b.asm"}},
		{[]string{"a.s", "a.asm"}, []string{"a.s", "a.asm"}},
	}
	for _, tt := range tests {
		if got := uniqueSources(tt.args); !slices.Equal(got, tt.exp) {
			t.Errorf("uniqueSources(%v) = %v, expected %v", tt.args, got, tt.exp)
		}
	}
}
