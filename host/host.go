// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive shell around the SMPL assembler.
//
// Within the shell it is possible to assemble source files, inspect the
// symbol, forward reference, relocation and linkage tables built during
// the assembly, view the intermediate and object code, disassemble the
// object code alongside its source line numbers, parse individual lines of
// assembly code, and adjust the assembler's options and table limits.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/smpl/asm"
	"github.com/beevik/smpl/disasm"
	"github.com/k0kubun/pp/v3"
)

var cmds *cmd.Tree

func init() {
	// Create a command tree, where the data stored with each command is a
	// host callback capable of handling the command.
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "smpl"})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "assemble",
		Brief: "Assemble a file",
		Description: "Run the assembler on the specified file, producing" +
			" intermediate (.s), object (.o), table (.t) and source map" +
			" (.map) files. The tables built during the assembly remain" +
			" available for inspection until the next assembly.",
		Usage: "assemble <filename>",
		Data:  (*Host).cmdAssemble,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble the object code",
		Description: "Disassemble the object code of the most recent" +
			" assembly. Each statement is shown with its address, its" +
			" bytes and the source line that produced it.",
		Usage: "disassemble",
		Data:  (*Host).cmdDisassemble,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "dump",
		Brief: "Dump the assembly context",
		Description: "Pretty-print the header and every table of the" +
			" most recent assembly.",
		Usage: "dump",
		Data:  (*Host).cmdDump,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "execute",
		Brief: "Execute a script file",
		Description: "Load a script file from disk and execute the" +
			" shell commands it contains.",
		Usage: "execute <filename>",
		Data:  (*Host).cmdExecute,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "forward",
		Brief: "List forward references",
		Description: "List the forward references recorded during pass 1" +
			" of the most recent assembly, with the address of each" +
			" statement patched in pass 2.",
		Usage: "forward",
		Data:  (*Host).cmdForward,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "intermediate",
		Brief: "Display the intermediate code",
		Description: "Display the intermediate code written by pass 1 of" +
			" the most recent assembly, before forward references were" +
			" patched.",
		Usage: "intermediate",
		Data:  (*Host).cmdIntermediate,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "linkage",
		Brief: "List linkage records",
		Description: "List the header, define, reference and modify" +
			" records of the most recent assembly.",
		Usage: "linkage",
		Data:  (*Host).cmdLinkage,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "object",
		Brief: "Display the object code",
		Description: "Display the object code written by pass 2 of the" +
			" most recent assembly.",
		Usage: "object",
		Data:  (*Host).cmdObject,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "parse",
		Brief: "Parse a line of assembly code",
		Description: "Parse a single line of assembly code and display" +
			" its label, mnemonic, operand, line kind and addressing mode.",
		Usage: "parse <line>",
		Data:  (*Host).cmdParse,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "relocations",
		Brief: "List relocatable addresses",
		Description: "List the direct address table of the most recent" +
			" assembly: the address of every operand a loader must" +
			" relocate.",
		Usage: "relocations",
		Data:  (*Host).cmdRelocations,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
		Data:  (*Host).cmdSet,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "symbols",
		Brief:       "List symbols",
		Description: "List the symbols defined by the most recent assembly.",
		Usage:       "symbols",
		Data:        (*Host).cmdSymbols,
	})

	// Add command shortcuts.
	root.AddShortcut("a", "assemble")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("e", "execute")
	root.AddShortcut("f", "forward")
	root.AddShortcut("i", "intermediate")
	root.AddShortcut("l", "linkage")
	root.AddShortcut("o", "object")
	root.AddShortcut("p", "parse")
	root.AddShortcut("q", "quit")
	root.AddShortcut("r", "relocations")
	root.AddShortcut("?", "help")

	cmds = root
}

// A selection is a command looked up in the command tree along with the
// arguments that followed it on the command line.
type selection struct {
	command *cmd.Command
	args    []string
}

var errQuit = errors.New("exiting program")

// A Host is an interactive shell that assembles SMPL source files and
// displays the results.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *selection
	settings    *settings
	printer     *pp.PrettyPrinter
	assembly    *asm.Assembly
	sourceMap   *asm.SourceMap
}

// New creates a new assembler shell.
func New() *Host {
	return &Host{
		settings: newSettings(),
		printer:  pp.New(),
	}
}

// RunCommands accepts shell commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the next command to be entered. RunCommands returns
// true if a quit command was processed.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) bool {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	h.printer.SetColoringEnabled(interactive)
	defer h.flush()

	if interactive {
		h.println()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			return false
		}

		var c selection
		if line != "" {
			c.command, c.args, err = cmds.LookupCommand(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.command == nil {
			continue
		}
		h.lastCmd = &c

		handler := c.command.Data.(func(*Host, selection) error)
		err = handler(h, c)
		if err != nil {
			return true
		}
	}
}

// AssembleFile assembles the named file using the shell's current
// settings. The resulting tables remain available to the shell's
// inspection commands.
func (h *Host) AssembleFile(filename string, w io.Writer) error {
	h.output = bufio.NewWriter(w)
	defer h.flush()
	return h.assemble(filename)
}

func (h *Host) assemble(filename string) error {
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	assembly, sourceMap, err := asm.AssembleFile(filename, h.output, h.settings.options(), h.settings.limits())
	switch {
	case errors.Is(err, asm.ErrAssembly):
		h.printf("Assembly of '%s' reported %d error(s).\n", filepath.Base(filename), len(assembly.Errors))
	case err != nil:
		h.printf("Failed to assemble '%s': %v\n", filepath.Base(filename), err)
		return err
	}

	h.assembly, h.sourceMap = assembly, sourceMap
	return err
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
		h.flush()
	}
}

// Report whether an assembly is available for inspection.
func (h *Host) assembled() bool {
	if h.assembly == nil {
		h.println("Nothing assembled.")
		return false
	}
	return true
}

func (h *Host) cmdAssemble(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c.command)
		return nil
	}

	h.assemble(c.args[0])
	return nil
}

func (h *Host) cmdDisassemble(c selection) error {
	if !h.assembled() {
		return nil
	}

	lines, err := asm.ReadObject(strings.NewReader(string(h.assembly.Object)))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	for _, o := range lines {
		s := fmt.Sprintf("%04X-   %-8s  %s", o.Address, codeString(o.Code), disasm.Disassemble(o.Code))
		if line := h.sourceMap.Search(o.Address); line > 0 {
			s = fmt.Sprintf("%-36s ; line %d", s, line)
		}
		h.println(s)
	}
	return nil
}

// The tables of an assembly context, as shown by the dump command.
type contextDump struct {
	Header      asm.Header
	Symbols     []asm.Symbol
	ForwardRefs []asm.ForwardRef
	Relocations []int
	Defines     []asm.LinkageRecord
	References  []asm.LinkageRecord
	Modifies    []asm.LinkageRecord
	Errors      []string
}

func (h *Host) cmdDump(c selection) error {
	if !h.assembled() {
		return nil
	}

	ctx := h.assembly.Context
	d := contextDump{
		Header:      ctx.Header(),
		Symbols:     ctx.Symbols().Symbols(),
		ForwardRefs: ctx.ForwardRefs().Refs(),
		Relocations: ctx.Relocations().Addresses(),
		Defines:     ctx.Linkage().Records(asm.DefineRecord),
		References:  ctx.Linkage().Records(asm.ReferenceRecord),
		Modifies:    ctx.Linkage().Records(asm.ModifyRecord),
		Errors:      h.assembly.Errors,
	}
	h.printer.Fprintln(h.output, d)
	h.flush()
	return nil
}

func (h *Host) cmdExecute(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c.command)
		return nil
	}

	file, err := os.Open(c.args[0])
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(c.args[0]), err)
		return nil
	}
	defer file.Close()

	input, output, interactive := h.input, h.output, h.interactive
	quit := h.RunCommands(file, output, false)
	h.input, h.output, h.interactive = input, output, interactive
	h.printer.SetColoringEnabled(interactive)

	if quit {
		return errQuit
	}
	return nil
}

func (h *Host) cmdForward(c selection) error {
	if !h.assembled() {
		return nil
	}

	refs := h.assembly.Context.ForwardRefs().Refs()
	if len(refs) == 0 {
		h.println("No forward references.")
		return nil
	}
	h.println("Symbol     Addr")
	h.println("---------  -----")
	for _, r := range refs {
		h.printf("%-9s  $%04X\n", r.Symbol, r.Address)
	}
	return nil
}

func (h *Host) cmdHelp(c selection) error {
	if err := cmds.GetHelp(h.output, c.args); err != nil {
		h.printf("%v.\n", err)
	}
	h.flush()
	return nil
}

func (h *Host) cmdIntermediate(c selection) error {
	if !h.assembled() {
		return nil
	}
	h.print(string(h.assembly.Intermediate))
	h.flush()
	return nil
}

func (h *Host) cmdLinkage(c selection) error {
	if !h.assembled() {
		return nil
	}

	ctx := h.assembly.Context
	hdr := ctx.Header()
	h.printf("%s  %-9s  $%04X  $%04X\n", asm.HeaderRecord, hdr.Module, hdr.Start, hdr.Length)
	for _, r := range ctx.Linkage().Records(asm.DefineRecord) {
		if r.Resolved {
			h.printf("%s  %-9s  $%04X\n", r.Kind, r.Symbol, r.Address)
		} else {
			h.printf("%s  %-9s  (unresolved)\n", r.Kind, r.Symbol)
		}
	}
	for _, r := range ctx.Linkage().Records(asm.ReferenceRecord) {
		h.printf("%s  %s\n", r.Kind, r.Symbol)
	}
	for _, r := range ctx.Linkage().Records(asm.ModifyRecord) {
		h.printf("%s  %-9s  $%04X\n", r.Kind, r.Symbol, r.Address)
	}
	return nil
}

func (h *Host) cmdObject(c selection) error {
	if !h.assembled() {
		return nil
	}
	h.print(string(h.assembly.Object))
	h.flush()
	return nil
}

func (h *Host) cmdParse(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c.command)
		return nil
	}

	pl := asm.ParseLine(1, strings.Join(c.args, " "))
	h.println(pl)
	h.printf("Kind=%s Mode=%s\n", pl.Kind, pl.Mode)
	return nil
}

func (h *Host) cmdQuit(c selection) error {
	return errQuit
}

func (h *Host) cmdRelocations(c selection) error {
	if !h.assembled() {
		return nil
	}

	addrs := h.assembly.Context.Relocations().Addresses()
	if len(addrs) == 0 {
		h.println("No relocatable addresses.")
		return nil
	}
	for _, a := range addrs {
		h.printf("$%04X\n", a)
	}
	return nil
}

func (h *Host) cmdSet(c selection) error {
	switch len(c.args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c.command)

	default:
		key, value := strings.ToLower(c.args[0]), strings.Join(c.args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int64
			v, err = strconv.ParseInt(value, 0, 32)
			if err == nil {
				err = h.settings.Set(key, int(v))
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) cmdSymbols(c selection) error {
	if !h.assembled() {
		return nil
	}

	symbols := h.assembly.Context.Symbols().Symbols()
	if len(symbols) == 0 {
		h.println("No symbols.")
		return nil
	}
	h.println("Symbol     Addr")
	h.println("---------  -----")
	for _, s := range symbols {
		h.printf("%-9s  $%04X\n", s.Name, s.Address)
	}
	return nil
}

func (h *Host) displayUsage(c *cmd.Command) {
	if c.Usage != "" {
		c.DisplayUsage(h.output)
		h.flush()
	} else {
		h.println("<no usage text>")
	}
}
