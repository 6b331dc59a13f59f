// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package codegen lowers a set of resolved, semantically checked modules to
// an LLVM IR module using github.com/llir/llvm. It trusts its input
// completely: anything that would require rejecting the program is a
// semantic-analyzer bug and is reported as an internal codegen error rather
// than a diagnosed one.
package codegen

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/lak-lang/lakc/internal/ast"
	"github.com/lak-lang/lakc/internal/lakerr"
	"github.com/lak-lang/lakc/internal/resolver"
	"github.com/lak-lang/lakc/internal/semantic"
)

const lakExt = ".lak"

// funcEntry is everything codegen needs to call a previously declared
// function: its IR handle plus the Lak-level parameter/return types needed
// to decide when a value needs an f32->f64 widen before the call.
type funcEntry struct {
	IR         *ir.Func
	ParamTypes []ast.Type
	ReturnType ast.Type
}

// Generator builds one *ir.Module from a resolved module graph.
type Generator struct {
	module        *ir.Module
	strs          map[string]any // string literal -> interned global pointer
	runtime       map[string]*ir.Func
	funcsByName   map[string]*funcEntry
	prefixByCanon map[string]string
}

// New returns a Generator with an empty module, ready for one Generate call.
func New() *Generator {
	return &Generator{
		module:        ir.NewModule(),
		strs:          make(map[string]any),
		runtime:       make(map[string]*ir.Func),
		funcsByName:   make(map[string]*funcEntry),
		prefixByCanon: make(map[string]string),
	}
}

// Module returns the IR module built by the last call to Generate.
func (g *Generator) Module() *ir.Module { return g.module }

// Generate lowers every function in mods to LLVM IR. results and tables are
// keyed by ResolvedModule.CanonicalPath and come from running
// internal/semantic and resolver.BuildModuleTable over each module.
func (g *Generator) Generate(
	mods []*resolver.ResolvedModule,
	entryCanon string,
	results map[string]*semantic.Result,
	tables map[string]map[string]*resolver.ModuleExports,
) (*ir.Module, error) {
	modsByCanon := make(map[string]*resolver.ResolvedModule, len(mods))
	for _, m := range mods {
		modsByCanon[m.CanonicalPath] = m
	}

	if err := g.assignManglePrefixes(mods, entryCanon); err != nil {
		return nil, err
	}

	type pending struct {
		mod         *resolver.ResolvedModule
		fn          *ast.FnDef
		llName      string
		isEntry     bool
		isSynthMain bool
	}
	var work []pending

	for _, m := range mods {
		isEntry := m.CanonicalPath == entryCanon
		prefix := g.prefixByCanon[m.CanonicalPath]
		for _, fn := range m.Program.Funcs {
			isSynthMain := isEntry && fn.Name == "main"
			llName := fn.Name
			if !isEntry {
				llName = mangleFunc(prefix, fn.Name)
			}
			params := make([]*ir.Param, len(fn.Params))
			for i, p := range fn.Params {
				params[i] = ir.NewParam(p.Name, llType(p.Type))
			}
			retTy := llType(fn.ReturnType)
			if isSynthMain {
				retTy = types.I32
			}
			irFn := g.module.NewFunc(llName, retTy, params...)
			g.funcsByName[llName] = &funcEntry{IR: irFn, ParamTypes: paramTypesOf(fn.Params), ReturnType: fn.ReturnType}
			work = append(work, pending{mod: m, fn: fn, llName: llName, isEntry: isEntry, isSynthMain: isSynthMain})
		}
	}

	for _, w := range work {
		importPrefixes := make(map[string]string)
		for _, imp := range w.mod.Program.Imports {
			targetCanon, ok := w.mod.ResolvedImports[imp.Path]
			if !ok {
				continue
			}
			key := imp.Alias
			if key == "" {
				if tgt, ok := modsByCanon[targetCanon]; ok {
					key = tgt.Name
				}
			}
			importPrefixes[key] = g.prefixByCanon[targetCanon]
		}
		fe := g.funcsByName[w.llName]
		fc := &fnCtx{
			g:              g,
			f:              fe.IR,
			fnDef:          w.fn,
			result:         results[w.mod.CanonicalPath],
			moduleTable:    tables[w.mod.CanonicalPath],
			importPrefixes: importPrefixes,
			selfPrefix:     g.prefixByCanon[w.mod.CanonicalPath],
			isEntry:        w.isEntry,
			isSynthMain:    w.isSynthMain,
		}
		if err := fc.emitBody(); err != nil {
			return nil, err
		}
	}

	return g.module, nil
}

// assignManglePrefixes implements spec.md §4.5.2: every non-entry module
// gets a length-prefixed mangle prefix derived from its path relative to
// the entry module's directory; two distinct canonical paths colliding on
// the same prefix is a fatal codegen error.
func (g *Generator) assignManglePrefixes(mods []*resolver.ResolvedModule, entryCanon string) error {
	entryDir := filepath.Dir(entryCanon)
	mangler := NewMangler()
	for _, m := range mods {
		if m.CanonicalPath == entryCanon {
			g.prefixByCanon[m.CanonicalPath] = ""
			continue
		}
		rel, err := filepath.Rel(entryDir, strings.TrimSuffix(m.CanonicalPath, lakExt))
		if err != nil {
			return &lakerr.CodegenError{Kind: lakerr.CodegenInvalidModulePath, Message: err.Error()}
		}
		relSlash := filepath.ToSlash(rel)
		prefix, ok := mangler.Assign(relSlash)
		if !ok {
			return &lakerr.CodegenError{
				Kind:    lakerr.CodegenInvalidModulePath,
				Message: fmt.Sprintf("mangle prefix %q collides between two distinct modules", prefix),
			}
		}
		g.prefixByCanon[m.CanonicalPath] = prefix
	}
	return nil
}

// mangleFunc composes a module's mangle prefix with a function name using
// the same scheme Mangle implements, without repeating the path-segment
// walk when the prefix is already known.
func mangleFunc(prefix, name string) string { return prefix + "_" + name }

func paramTypesOf(ps []ast.Param) []ast.Type {
	out := make([]ast.Type, len(ps))
	for i, p := range ps {
		out[i] = p.Type
	}
	return out
}

// llType lowers a Lak type to its LLVM representation (spec.md §4.5.1).
func llType(t ast.Type) types.Type {
	switch t {
	case ast.I8, ast.U8:
		return types.I8
	case ast.I16, ast.U16:
		return types.I16
	case ast.I32, ast.U32:
		return types.I32
	case ast.I64, ast.U64:
		return types.I64
	case ast.F32:
		return types.Float
	case ast.F64:
		return types.Double
	case ast.Bool:
		return types.I1
	case ast.String:
		return types.NewPointer(types.I8)
	default:
		return types.Void
	}
}

func charPtrType() types.Type { return types.NewPointer(types.I8) }

// runtimeFn returns the (cached) external declaration for a runtime or
// intrinsic function, declaring it on first use.
func (g *Generator) runtimeFn(name string, ret types.Type, params ...types.Type) *ir.Func {
	if fn, ok := g.runtime[name]; ok {
		return fn
	}
	ps := make([]*ir.Param, len(params))
	for i, t := range params {
		ps[i] = ir.NewParam(fmt.Sprintf("a%d", i), t)
	}
	fn := g.module.NewFunc(name, ret, ps...)
	g.runtime[name] = fn
	return fn
}

// printlnRuntimeName returns the builtin runtime symbol and LLVM parameter
// type for println given the (already semantically checked) argument type.
func printlnRuntimeName(ty ast.Type) (string, types.Type) {
	switch ty {
	case ast.String:
		return "lak_println", charPtrType()
	case ast.Bool:
		return "lak_println_bool", types.I1
	default:
		return "lak_println_" + ty.String(), llType(ty)
	}
}
