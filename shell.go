// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"

	"github.com/beevik/smpl/asm"
	"github.com/beevik/smpl/host"
	"github.com/beevik/term"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var assemble string

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell [script...]",
	Short: "Run the assembler shell",
	Long: `Shell runs the shell commands contained in each script file, then reads
commands from standard input. A prompt is displayed when standard input is
a terminal. Type help in the shell for a list of commands.`,
	RunE: runShell,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, shellCmd} {
		c.Flags().StringVarP(&assemble, "assemble", "a", "", "assemble a file before running commands")
	}
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	h := host.New()

	// Do command-line assemble if requested.
	if assemble != "" {
		err := h.AssembleFile(assemble, os.Stdout)
		if err != nil && !errors.Is(err, asm.ErrAssembly) {
			glog.Exitf("failed to assemble '%s': %v", assemble, err)
		}
	}

	// Run commands contained in command-line files.
	for _, filename := range args {
		file, err := os.Open(filename)
		if err != nil {
			glog.Exitf("%v", err)
		}
		glog.V(1).Infof("running script %s", filename)
		quit := h.RunCommands(file, os.Stdout, false)
		file.Close()
		if quit {
			return nil
		}
	}

	// Run commands interactively.
	h.RunCommands(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
	return nil
}
