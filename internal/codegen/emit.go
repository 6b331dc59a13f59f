// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package codegen

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/llir/llvm/ir"
)

// ObjectEmitter turns a finished LLVM IR module into a file on disk.
type ObjectEmitter interface {
	EmitObject(module *ir.Module, triple, outPath string) error
}

// TextEmitter writes a module's textual LLVM IR representation to
// outPath, ignoring triple. It never invokes an external toolchain, which
// makes it the emitter of choice for tests and the --emit-llvm CLI flag.
type TextEmitter struct{}

func (TextEmitter) EmitObject(module *ir.Module, triple, outPath string) error {
	module.TargetTriple = triple
	return os.WriteFile(outPath, []byte(module.String()), 0o644)
}

// LLCEmitter performs real object-file emission — initializing the native
// target, selecting a target machine for triple, and writing machine code —
// by shelling out to LLVM's own llc, since github.com/llir/llvm is a
// pure-Go IR builder with no target-machine backend of its own. llc is
// LLVM's code generator, not a linker, so this stops short of linking.
type LLCEmitter struct {
	// LLCPath is the llc binary to invoke. Empty means "llc" on $PATH.
	LLCPath string
}

func (e LLCEmitter) EmitObject(module *ir.Module, triple, outPath string) error {
	module.TargetTriple = triple

	tmp, err := os.CreateTemp("", "lakc-*.ll")
	if err != nil {
		return fmt.Errorf("llc emitter: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(module.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("llc emitter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("llc emitter: %w", err)
	}

	llc := e.LLCPath
	if llc == "" {
		llc = "llc"
	}
	args := []string{"-filetype=obj", "-o", outPath, tmp.Name()}
	if triple != "" {
		args = append(args, "-mtriple="+triple)
	}
	cmd := exec.Command(llc, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("llc emitter: %s: %w: %s", llc, err, stderr.String())
	}
	return nil
}
