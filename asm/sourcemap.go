package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// statement addresses of an assembled module.
type SourceMap struct {
	File    string
	Module  string
	Start   int
	Length  int
	Lines   []SourceLine
	Symbols []Symbol
}

// A SourceLine represents a mapping between a statement address and the
// source code line used to generate it.
type SourceLine struct {
	Address int // Statement address
	Line    int // Source code line number
}

func newSourceMap(filename string, c *Context) *SourceMap {
	h := c.Header()
	return &SourceMap{
		File:    filename,
		Module:  h.Module,
		Start:   h.Start,
		Length:  h.Length,
		Lines:   c.SourceLines(),
		Symbols: c.Symbols().Symbols(),
	}
}

// Search searches the source map for the statement at the requested
// address and returns its source line, or -1 if there is none.
func (s *SourceMap) Search(addr int) (line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.Lines[i].Line
	}
	return -1
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
