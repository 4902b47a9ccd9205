// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/beevik/smpl/asm"
)

type settings struct {
	Verbose        bool `doc:"log each assembly step"`
	EchoLines      bool `doc:"echo each parsed source line"`
	MaxSymbols     int  `doc:"symbol table capacity"`
	MaxForwardRefs int  `doc:"forward reference table capacity"`
	MaxRelocations int  `doc:"direct address table capacity"`
	MaxLinkage     int  `doc:"linkage table capacity"`
}

func newSettings() *settings {
	return &settings{
		Verbose:        false,
		EchoLines:      false,
		MaxSymbols:     asm.DefaultLimits.Symbols,
		MaxForwardRefs: asm.DefaultLimits.ForwardRefs,
		MaxRelocations: asm.DefaultLimits.Relocations,
		MaxLinkage:     asm.DefaultLimits.Linkage,
	}
}

func (s *settings) options() asm.Option {
	var o asm.Option
	if s.Verbose {
		o |= asm.Verbose
	}
	if s.EchoLines {
		o |= asm.Echo
	}
	return o
}

func (s *settings) limits() asm.Limits {
	return asm.Limits{
		Symbols:     s.MaxSymbols,
		ForwardRefs: s.MaxForwardRefs,
		Relocations: s.MaxRelocations,
		Linkage:     s.MaxLinkage,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		s := fmt.Sprintf("    %-16s %v", f.name, v)
		fmt.Fprintf(w, "%-28s (%s)\n", s, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if !vIn.Type().ConvertibleTo(f.typ) || (f.kind == reflect.Bool) != (vIn.Kind() == reflect.Bool) {
		return errors.New("invalid type")
	}
	if f.kind == reflect.Int && vIn.Int() < 0 {
		return errors.New("value must not be negative")
	}

	vOut := reflect.ValueOf(s).Elem().Field(f.index)
	vOut.Set(vIn.Convert(f.typ))
	return nil
}
