// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"os"
	"runtime"

	"github.com/beevik/smpl/asm"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var errDiagnostics = errors.New("assembly reported errors")

var assembleFlags struct {
	verbose        bool
	echo           bool
	maxSymbols     int
	maxForwardRefs int
	maxRelocations int
	maxLinkage     int
}

// assembleCmd represents the assemble command
var assembleCmd = &cobra.Command{
	Use:     "assemble file.asm...",
	Aliases: []string{"a"},
	Short:   "Assemble SMPL source files",
	Long: `Assemble runs both assembler passes over each source file. Errors are
reported as they are found and never stop an assembly; the command exits
with a non-zero status if any file reported errors or could not be read or
written. Files are assembled independently of one another.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssemble,
}

func init() {
	f := assembleCmd.Flags()
	f.BoolVar(&assembleFlags.verbose, "verbose", false, "log each assembly step")
	f.BoolVar(&assembleFlags.echo, "echo", false, "echo each parsed source line")
	f.IntVar(&assembleFlags.maxSymbols, "max-symbols", asm.DefaultLimits.Symbols, "symbol table capacity")
	f.IntVar(&assembleFlags.maxForwardRefs, "max-forward-refs", asm.DefaultLimits.ForwardRefs, "forward reference table capacity")
	f.IntVar(&assembleFlags.maxRelocations, "max-relocations", asm.DefaultLimits.Relocations, "direct address table capacity")
	f.IntVar(&assembleFlags.maxLinkage, "max-linkage", asm.DefaultLimits.Linkage, "linkage table capacity")
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	var options asm.Option
	if assembleFlags.verbose {
		options |= asm.Verbose
	}
	if assembleFlags.echo {
		options |= asm.Echo
	}
	limits := asm.Limits{
		Symbols:     assembleFlags.maxSymbols,
		ForwardRefs: assembleFlags.maxForwardRefs,
		Relocations: assembleFlags.maxRelocations,
		Linkage:     assembleFlags.maxLinkage,
	}
	args = uniqueSources(args)
	glog.V(1).Infof("assembling %d file(s) with limits %+v", len(args), limits)

	// Each file gets its own context and output buffer, so output is
	// reported in command-line order.
	outputs := make([]bytes.Buffer, len(args))
	errs := make([]error, len(args))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range args {
		g.Go(func() error {
			glog.V(1).Infof("assembling %s", path)
			_, _, errs[i] = asm.AssembleFile(path, &outputs[i], options, limits)
			return nil
		})
	}
	g.Wait()

	failed, diagnosed := 0, 0
	for i, path := range args {
		os.Stdout.Write(outputs[i].Bytes())
		switch err := errs[i]; {
		case errors.Is(err, asm.ErrAssembly):
			diagnosed++
		case err != nil:
			glog.Errorf("%s: %v", path, err)
			failed++
		}
	}

	if failed > 0 {
		glog.Exitf("failed to assemble %d of %d file(s)", failed, len(args))
	}
	if diagnosed > 0 {
		return errDiagnostics
	}
	return nil
}

// Drop every source whose output files would be written by an earlier
// source on the command line.
func uniqueSources(paths []string) []string {
	seen := make(map[string]string)
	unique := make([]string, 0, len(paths))
	for _, path := range paths {
		prefix := asm.ArtifactPrefix(path)
		if first, ok := seen[prefix]; ok {
			glog.Warningf("skipping %s: it shares output files with %s", path, first)
			continue
		}
		seen[prefix] = path
		unique = append(unique, path)
	}
	return unique
}
