// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smpl [script...]",
	Short: "Assembler for the SMPL language",
	Long: `Smpl is a two-pass, relocatable assembler for the SMPL assembly
language. Each source file produces an intermediate file (.s), an object
file (.o), a relocation and linkage table file (.t) for an external linker,
and a source map (.map).

Without a subcommand, smpl runs the command scripts named on the command
line and then starts the interactive shell.`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// glog reads its settings from the go flag set merged below.
		flag.CommandLine.Parse(nil)
	},
	RunE:         runShell,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
