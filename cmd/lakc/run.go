// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cmdRun = &cobra.Command{
	Use:   "run <entry.lak>",
	Short: "compile and run a Lak entry file",
	Long: `Run compiles an entry .lak file the same way build does and writes no
output. Linking and execution are outside lakc's core (they are
platform-specific external collaborators, not part of the compiler proper)
so this command stops after compiling and reports that the remaining step
is unimplemented.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryPath := args[0]
		if !fileExists(entryPath) {
			return fmt.Errorf("run: %q: no such file", entryPath)
		}
		if _, err := compile(entryPath); err != nil {
			return err
		}
		return fmt.Errorf("run: linking and execution are outside lakc's core; use 'build' and link the result with an external toolchain")
	},
}
