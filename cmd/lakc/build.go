// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/lak-lang/lakc/internal/codegen"
)

var argsBuild struct {
	output   string
	target   string
	emitText bool
}

var cmdBuild = &cobra.Command{
	Use:   "build <entry.lak>",
	Short: "compile a Lak entry file",
	Long:  `Compile an entry .lak file and every module it imports to a native object file (via llc), or to textual LLVM IR with --emit-llvm.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryPath := args[0]
		if !fileExists(entryPath) {
			return fmt.Errorf("build: %q: no such file", entryPath)
		}

		gen, err := compile(entryPath)
		if err != nil {
			return err
		}

		triple := globalConfig.TargetTriple
		if argsBuild.target != "" {
			triple = argsBuild.target
		}

		emitText := argsBuild.emitText || globalConfig.Codegen.EmitTextIR

		out := argsBuild.output
		if out == "" {
			out = defaultOutputPath(entryPath, emitText)
		}

		var emitter codegen.ObjectEmitter = codegen.LLCEmitter{}
		if emitText {
			emitter = codegen.TextEmitter{}
		}
		if err := emitter.EmitObject(gen.Module(), triple, out); err != nil {
			return fmt.Errorf("build: %w", err)
		}
		log.Printf("wrote %s\n", out)
		return nil
	},
}
