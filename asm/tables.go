// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"io"
)

// Limits bounds the number of entries in each of the assembler's tables.
// A limit of zero or less selects the default.
type Limits struct {
	Symbols     int // distinct local symbols
	ForwardRefs int // unresolved forward references
	Relocations int // relocatable direct-address slots
	Linkage     int // combined define, reference and modify records
}

// DefaultLimits holds the table capacities used when no limit is given.
var DefaultLimits = Limits{
	Symbols:     10,
	ForwardRefs: 20,
	Relocations: 30,
	Linkage:     20,
}

func (l Limits) withDefaults() Limits {
	if l.Symbols <= 0 {
		l.Symbols = DefaultLimits.Symbols
	}
	if l.ForwardRefs <= 0 {
		l.ForwardRefs = DefaultLimits.ForwardRefs
	}
	if l.Relocations <= 0 {
		l.Relocations = DefaultLimits.Relocations
	}
	if l.Linkage <= 0 {
		l.Linkage = DefaultLimits.Linkage
	}
	return l
}

// A Symbol is a label defined in the module.
type Symbol struct {
	Name    string
	Address int
}

// A SymbolTable maps each label defined in the module to its address.
type SymbolTable struct {
	limit   int
	symbols []Symbol
	index   map[string]int
}

func newSymbolTable(limit int) *SymbolTable {
	return &SymbolTable{limit: limit, index: make(map[string]int)}
}

// Add defines a symbol. Redefining a symbol is an error and leaves the
// original address in place.
func (t *SymbolTable) Add(name string, addr int) error {
	if _, found := t.index[name]; found {
		return fmt.Errorf("%w '%s'", ErrDuplicateSymbol, name)
	}
	if len(t.symbols) >= t.limit {
		return tableFull(SymbolTableName)
	}
	t.index[name] = len(t.symbols)
	t.symbols = append(t.symbols, Symbol{Name: name, Address: addr})
	return nil
}

// Address returns the address of a symbol, or -1 if the symbol is not
// defined.
func (t *SymbolTable) Address(name string) int {
	if i, found := t.index[name]; found {
		return t.symbols[i].Address
	}
	return -1
}

// Symbols returns all symbols in definition order.
func (t *SymbolTable) Symbols() []Symbol {
	return t.symbols
}

// A ForwardRef records a use of a symbol before its definition. Address
// is the address of the statement whose operand must be patched.
type ForwardRef struct {
	Symbol  string
	Address int
}

// A ForwardRefTable holds the forward references found in pass 1.
type ForwardRefTable struct {
	limit int
	refs  []ForwardRef
}

// Add records a forward reference.
func (t *ForwardRefTable) Add(symbol string, addr int) error {
	if len(t.refs) >= t.limit {
		return tableFull(ForwardRefTableName)
	}
	t.refs = append(t.refs, ForwardRef{Symbol: symbol, Address: addr})
	return nil
}

// Find returns the forward reference patching the statement at addr.
func (t *ForwardRefTable) Find(addr int) (ForwardRef, bool) {
	for _, r := range t.refs {
		if r.Address == addr {
			return r, true
		}
	}
	return ForwardRef{}, false
}

// Refs returns all forward references in the order they were found.
func (t *ForwardRefTable) Refs() []ForwardRef {
	return t.refs
}

// A DirectAddrTable lists the addresses of relocatable operand slots.
type DirectAddrTable struct {
	limit int
	addrs []int
}

// Add records a relocatable operand slot.
func (t *DirectAddrTable) Add(addr int) error {
	if len(t.addrs) >= t.limit {
		return tableFull(DirectAddrTableName)
	}
	t.addrs = append(t.addrs, addr)
	return nil
}

// Addresses returns the relocatable slots in the order they were found.
func (t *DirectAddrTable) Addresses() []int {
	return t.addrs
}

// A RecordKind identifies a linkage record.
type RecordKind byte

// Linkage record kinds
const (
	HeaderRecord    RecordKind = 'H'
	DefineRecord    RecordKind = 'D'
	ReferenceRecord RecordKind = 'R'
	ModifyRecord    RecordKind = 'M'
)

func (k RecordKind) String() string {
	return string(k)
}

// A Header describes the module as a whole.
type Header struct {
	Module string
	Start  int
	Length int
}

// A LinkageRecord is a define, reference or modify record consumed by a
// linker. Define records are unresolved until pass 1 is finalized.
type LinkageRecord struct {
	Kind     RecordKind
	Symbol   string
	Address  int
	Resolved bool
	line     int // source line that created the record
}

// A LinkageTable holds the module's define, reference and modify records
// in the order they were created.
type LinkageTable struct {
	limit   int
	records []LinkageRecord
}

// Add appends a linkage record.
func (t *LinkageTable) Add(r LinkageRecord) error {
	if len(t.records) >= t.limit {
		return tableFull(LinkageTableName)
	}
	t.records = append(t.records, r)
	return nil
}

// IsExternal reports whether the symbol was declared with EXTREF.
func (t *LinkageTable) IsExternal(symbol string) bool {
	for _, r := range t.records {
		if r.Kind == ReferenceRecord && r.Symbol == symbol {
			return true
		}
	}
	return false
}

// Records returns all records of the requested kind in creation order.
func (t *LinkageTable) Records(kind RecordKind) []LinkageRecord {
	var records []LinkageRecord
	for _, r := range t.records {
		if r.Kind == kind {
			records = append(records, r)
		}
	}
	return records
}

// Write the DAT and HDRM sections of the linkage table file.
func writeTables(w io.Writer, h Header, dat *DirectAddrTable, lt *LinkageTable) error {
	bw := &errWriter{w: w}

	bw.printf("DAT\n")
	for _, addr := range dat.Addresses() {
		bw.printf("%X\n", addr)
	}

	bw.printf("HDRM\n")
	bw.printf("H %s %X %X\n", h.Module, h.Start, h.Length)
	for _, r := range lt.Records(DefineRecord) {
		if r.Resolved {
			bw.printf("D %s %X\n", r.Symbol, r.Address)
		}
	}
	for _, r := range lt.Records(ReferenceRecord) {
		bw.printf("R %s\n", r.Symbol)
	}
	for _, r := range lt.Records(ModifyRecord) {
		bw.printf("M %s %X\n", r.Symbol, r.Address)
	}
	return bw.err
}

// An errWriter formats output to a writer and keeps the first write
// error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err == nil {
		_, e.err = fmt.Fprintf(e.w, format, args...)
	}
}
