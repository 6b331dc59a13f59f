// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lak-lang/lakc/internal/codegen"
	"github.com/lak-lang/lakc/internal/diag"
	"github.com/lak-lang/lakc/internal/resolver"
	"github.com/lak-lang/lakc/internal/semantic"
)

// compile runs every phase of the pipeline over entryPath and returns the
// Generator holding the finished LLVM IR module (gen.Module()), ready for an
// ObjectEmitter.
func compile(entryPath string) (*codegen.Generator, error) {
	r := resolver.New()
	mods, err := r.Resolve(entryPath, "")
	if err != nil {
		return nil, renderErr(entryPath, err)
	}

	byCanon := make(map[string]*resolver.ResolvedModule, len(mods))
	var entryCanon string
	for _, m := range mods {
		byCanon[m.CanonicalPath] = m
		if m.IsEntry {
			entryCanon = m.CanonicalPath
		}
	}

	tables := make(map[string]map[string]*resolver.ModuleExports, len(mods))
	results := make(map[string]*semantic.Result, len(mods))
	for _, m := range mods {
		table, err := resolver.BuildModuleTable(m, byCanon)
		if err != nil {
			return nil, renderErr(m.CanonicalPath, err)
		}
		tables[m.CanonicalPath] = table

		an := semantic.New()
		res, err := an.Analyze(m.Program, table)
		if err != nil {
			return nil, renderErr(m.CanonicalPath, err)
		}
		results[m.CanonicalPath] = res
	}

	gen := codegen.New()
	if _, err := gen.Generate(mods, entryCanon, results, tables); err != nil {
		return nil, renderErr(entryCanon, err)
	}
	return gen, nil
}

// renderErr turns a phase error into user-facing text via the plain
// diagnostic renderer. The diagnostic carries only the file and the error's
// own message (which includes any line:col); no span is attached.
func renderErr(file string, err error) error {
	d := diag.Diagnostic{
		Severity: diag.SeverityError,
		File:     file,
		Message:  err.Error(),
	}
	rendered := diag.PlainRenderer{}.Render([]diag.Diagnostic{d}, nil)
	return fmt.Errorf("%s", strings.TrimRight(rendered, "\n"))
}

// defaultOutputPath derives an output path from the entry file when none is
// given explicitly: "foo.lak" -> "foo.o" for a native object (the default,
// LLCEmitter path) or "foo.ll" when emitting textual IR.
func defaultOutputPath(entryPath string, emitText bool) string {
	base := filepath.Base(entryPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if emitText {
		return stem + ".ll"
	}
	return stem + ".o"
}

func fileExists(path string) bool {
	sb, err := os.Stat(path)
	return err == nil && sb.Mode().IsRegular()
}
