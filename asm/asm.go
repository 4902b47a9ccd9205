// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass assembler for the SMPL assembly
// language.
//
// Pass 1 parses the source, assigns addresses, and writes an intermediate
// text stream with one statement per line, leaving forward references as
// zero operands. Pass 2 rewinds that stream, patches each forward
// reference from the completed symbol table, and writes the object code
// along with the relocation and linkage tables an external linker needs.
package asm

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SourceExt is the extension of an assembly source file.
const SourceExt = ".asm"

// File extensions of the artifacts produced by AssembleFile.
const (
	IntermediateExt = ".s"
	ObjectExt       = ".o"
	TablesExt       = ".t"
	SourceMapExt    = ".map"
)

// Assembly contains the artifacts produced by assembling a module and the
// context holding the tables used to produce them.
type Assembly struct {
	Context      *Context // state of the assembly run
	Intermediate []byte   // pass 1 output
	Object       []byte   // pass 2 object code
	Tables       []byte   // relocation and linkage tables
	Errors       []string // errors encountered during assembly
}

// WriteTo saves the object code into an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(a.Object)
	return int64(nn), err
}

// Assemble reads assembly code from the provided stream and runs both
// passes in memory. Diagnostics are written to out as they are found. If
// any were reported, the returned error is ErrAssembly; the assembly and
// source map are complete in either case.
func Assemble(r io.Reader, filename string, out io.Writer, options Option, limits Limits) (*Assembly, *SourceMap, error) {
	c := NewContext(limits, out, options)

	var inter, obj, tab bytes.Buffer
	if err := c.Pass1(r, &inter); err != nil {
		return nil, nil, err
	}
	if err := c.Pass2(bytes.NewReader(inter.Bytes()), &obj, &tab); err != nil {
		return nil, nil, err
	}

	assembly, sourceMap, err := collect(c, filename, inter.Bytes(), obj.Bytes(), tab.Bytes())
	return assembly, sourceMap, err
}

// AssembleFile assembles a file containing SMPL assembly code. It produces
// an intermediate file (.s), an object file (.o), a table file (.t) and a
// source map file (.map) next to the source. Every file is opened before
// pass 1 begins; a failure to open or create one stops the assembly. An
// artifact path that names the source file itself is refused with
// ErrSourceOverwrite.
func AssembleFile(path string, out io.Writer, options Option, limits Limits) (*Assembly, *SourceMap, error) {
	if out == nil {
		out = io.Discard
	}

	inFile, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer inFile.Close()

	prefix := ArtifactPrefix(path)
	for _, ext := range []string{IntermediateExt, ObjectExt, TablesExt, SourceMapExt} {
		if sameFile(path, prefix+ext) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSourceOverwrite, prefix+ext)
		}
	}

	// The intermediate file is rewound and read back by pass 2.
	interFile, err := os.Create(prefix + IntermediateExt)
	if err != nil {
		return nil, nil, err
	}
	defer interFile.Close()

	objFile, err := os.Create(prefix + ObjectExt)
	if err != nil {
		return nil, nil, err
	}
	defer objFile.Close()

	tabFile, err := os.Create(prefix + TablesExt)
	if err != nil {
		return nil, nil, err
	}
	defer tabFile.Close()

	mapFile, err := os.Create(prefix + SourceMapExt)
	if err != nil {
		return nil, nil, err
	}
	defer mapFile.Close()

	c := NewContext(limits, out, options)

	var inter, obj, tab bytes.Buffer
	if err := c.Pass1(inFile, io.MultiWriter(interFile, &inter)); err != nil {
		return nil, nil, err
	}
	if err := c.Pass2(interFile, io.MultiWriter(objFile, &obj), io.MultiWriter(tabFile, &tab)); err != nil {
		return nil, nil, err
	}

	assembly, sourceMap, asmErr := collect(c, path, inter.Bytes(), obj.Bytes(), tab.Bytes())

	if _, err := sourceMap.WriteTo(mapFile); err != nil {
		return nil, nil, err
	}

	fmt.Fprintf(out, "Assembled '%s' to produce '%s', '%s', '%s' and '%s'",
		filepath.Base(path),
		filepath.Base(interFile.Name()),
		filepath.Base(objFile.Name()),
		filepath.Base(tabFile.Name()),
		filepath.Base(mapFile.Name()))
	if n := len(assembly.Errors); n > 0 {
		fmt.Fprintf(out, " with %d error(s)", n)
	}
	fmt.Fprintln(out, ".")

	return assembly, sourceMap, asmErr
}

// ArtifactPrefix returns the path, without extension, shared by the files
// AssembleFile produces for the source at path. Only the .asm extension is
// removed, so the source never has the name of one of its artifacts.
func ArtifactPrefix(path string) string {
	return strings.TrimSuffix(filepath.Clean(path), SourceExt)
}

// Report whether both paths name the same existing file.
func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

// Gather the artifacts and diagnostics of a finished run.
func collect(c *Context, filename string, inter, obj, tab []byte) (*Assembly, *SourceMap, error) {
	errors := make([]string, 0, len(c.Errors()))
	for _, e := range c.Errors() {
		var s string
		if e.Line > 0 {
			s = fmt.Sprintf("Error in '%s' line %d: %v", filename, e.Line, e.Err)
		} else {
			s = fmt.Sprintf("Error in '%s': %v", filename, e.Err)
		}
		errors = append(errors, s)
	}

	assembly := &Assembly{
		Context:      c,
		Intermediate: inter,
		Object:       obj,
		Tables:       tab,
		Errors:       errors,
	}
	sourceMap := newSourceMap(filename, c)

	var err error
	if len(errors) > 0 {
		err = ErrAssembly
	}
	return assembly, sourceMap, err
}
