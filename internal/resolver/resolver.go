// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package resolver loads an entry .lak file and every module it transitively
// imports, lexing and parsing each one and detecting import cycles. A
// Resolver instance is single-use: create one per compilation.
package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lak-lang/lakc/internal/ast"
	"github.com/lak-lang/lakc/internal/lakerr"
	"github.com/lak-lang/lakc/internal/lexer"
	"github.com/lak-lang/lakc/internal/parser"
	"github.com/lak-lang/lakc/internal/stdlib"
	"github.com/lak-lang/lakc/internal/token"
)

const lakExt = ".lak"

// ResolvedModule is one fully loaded, parsed module (spec.md §3.6).
type ResolvedModule struct {
	CanonicalPath   string
	Name            string // file stem; must be a valid identifier for imported modules
	Program         *ast.Program
	Source          string
	Dependencies    []string          // canonical paths of directly imported modules, in import order
	ResolvedImports map[string]string // import path as written -> canonical path
	IsEntry         bool
}

// FunctionExport is one public function as seen from an importing module.
type FunctionExport struct {
	Name           string
	Params         []ast.Param
	ReturnType     ast.Type
	ReturnTypeSpan token.Span
	DefinitionSpan token.Span
}

// ModuleExports is the public surface of one resolved module.
type ModuleExports struct {
	ModuleName string
	Functions  map[string]FunctionExport
}

// Resolver walks the import graph starting from one entry file. It is not
// safe to reuse across compilations.
type Resolver struct {
	modules map[string]*ResolvedModule // canonical path -> module
	stack   []string                   // canonical paths currently being resolved
}

// New returns a Resolver ready to resolve one entry module.
func New() *Resolver {
	return &Resolver{modules: make(map[string]*ResolvedModule)}
}

// Resolve loads entryPath and every module it transitively imports.
// entrySource, if non-empty, is used instead of re-reading entryPath from
// disk; the CLI passes "" and lets the resolver read the file. The result
// is sorted by canonical path.
func (r *Resolver) Resolve(entryPath, entrySource string) ([]*ResolvedModule, error) {
	canon, err := canonicalize(entryPath)
	if err != nil {
		return nil, err
	}
	if _, err := r.resolveOne(canon, entrySource, true, token.Span{}); err != nil {
		return nil, err
	}
	out := make([]*ResolvedModule, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CanonicalPath < out[j].CanonicalPath })
	return out, nil
}

func (r *Resolver) resolveOne(canon, preloadedSource string, isEntry bool, importSpan token.Span) (*ResolvedModule, error) {
	for i, onStack := range r.stack {
		if onStack == canon {
			return nil, r.cycleError(r.stack[i:], canon, importSpan)
		}
	}
	if m, ok := r.modules[canon]; ok {
		return m, nil
	}

	r.stack = append(r.stack, canon)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	src := preloadedSource
	if src == "" {
		data, err := os.ReadFile(canon)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &lakerr.ResolveError{Kind: lakerr.ResolveFileNotFound, Span: importSpan, Message: "module file not found: " + canon}
			}
			return nil, &lakerr.ResolveError{Kind: lakerr.ResolveIoError, Span: importSpan, Message: err.Error()}
		}
		src = string(data)
	}

	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, r.wrap(lakerr.ResolveLexError, canon, src, isEntry, err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		return nil, r.wrap(lakerr.ResolveParseError, canon, src, isEntry, err)
	}

	name := stem(canon)
	if !isEntry && !isValidIdentifier(name) {
		return nil, &lakerr.ResolveError{
			Kind: lakerr.ResolveInvalidModuleName, Span: importSpan, Module: canon, Source: src,
			Message: "module file stem " + name + " is not a valid identifier",
		}
	}

	mod := &ResolvedModule{
		CanonicalPath:   canon,
		Name:            name,
		Program:         prog,
		Source:          src,
		ResolvedImports: make(map[string]string),
		IsEntry:         isEntry,
	}

	dir := filepath.Dir(canon)
	for _, imp := range prog.Imports {
		if filepath.Ext(imp.Path) != "" {
			return nil, &lakerr.ResolveError{
				Kind: lakerr.ResolveInvalidImportPath, Span: imp.Span, Module: canon, Source: src,
				Message: "import path must not include a file extension: " + imp.Path,
			}
		}
		if !strings.HasPrefix(imp.Path, "./") && !strings.HasPrefix(imp.Path, "../") {
			return nil, &lakerr.ResolveError{
				Kind: lakerr.ResolveStandardLibraryNotSupported, Span: imp.Span, Module: canon, Source: src,
				Message: "standard library / bare import paths are not supported: " + imp.Path,
				Help:    "import paths must start with './' or '../'",
			}
		}
		target, err := canonicalize(filepath.Join(dir, imp.Path+lakExt))
		if err != nil {
			if re, ok := err.(*lakerr.ResolveError); ok {
				re.Span, re.Module, re.Source = imp.Span, canon, src
			}
			return nil, err
		}
		child, err := r.resolveOne(target, "", false, imp.Span)
		if err != nil {
			return nil, err
		}
		mod.Dependencies = append(mod.Dependencies, child.CanonicalPath)
		mod.ResolvedImports[imp.Path] = child.CanonicalPath
	}

	r.modules[canon] = mod
	return mod, nil
}

func (r *Resolver) wrap(kind lakerr.ResolveKind, canon, src string, isEntry bool, cause error) *lakerr.ResolveError {
	re := &lakerr.ResolveError{Kind: kind, Message: cause.Error(), Cause: cause}
	if !isEntry {
		re.Module, re.Source = canon, src
	}
	switch e := cause.(type) {
	case *lakerr.LexError:
		re.Span = e.Span
	case *lakerr.ParseError:
		re.Span = e.Span
	}
	return re
}

func (r *Resolver) cycleError(cycle []string, closingPath string, span token.Span) *lakerr.ResolveError {
	names := make([]string, 0, len(cycle)+1)
	for _, c := range cycle {
		names = append(names, stem(c))
	}
	names = append(names, stem(closingPath))
	return &lakerr.ResolveError{
		Kind:    lakerr.ResolveCircularImport,
		Span:    span,
		Message: "circular import: " + strings.Join(names, " -> "),
	}
}

// BuildModuleTable constructs the module table (spec.md §3.5) for one
// resolved module: its own import list, mapped to the public functions of
// whatever it imports, keyed by alias (or module name when there is none).
// Duplicate keys are a diagnosed error.
func BuildModuleTable(mod *ResolvedModule, all map[string]*ResolvedModule) (map[string]*ModuleExports, error) {
	table := make(map[string]*ModuleExports)
	for _, imp := range mod.Program.Imports {
		canon, ok := mod.ResolvedImports[imp.Path]
		if !ok {
			return nil, &lakerr.ResolveError{Kind: lakerr.ResolveInvalidImportPath, Span: imp.Span, Message: "internal: import not resolved: " + imp.Path}
		}
		target, ok := all[canon]
		if !ok {
			return nil, &lakerr.ResolveError{Kind: lakerr.ResolveFileNotFound, Span: imp.Span, Message: "internal: resolved module missing from module set: " + canon}
		}
		key := imp.Alias
		if key == "" {
			key = target.Name
		}
		if _, exists := table[key]; exists {
			return nil, &lakerr.SemanticError{
				Kind: lakerr.SemDuplicateModuleImport, Span: imp.Span,
				Message: "duplicate import key: " + key,
				Help:    "use 'as' to give one of these imports a distinct alias",
			}
		}
		fns := make(map[string]FunctionExport)
		for _, fn := range target.Program.Funcs {
			if fn.Visibility != ast.Public {
				continue
			}
			fns[fn.Name] = FunctionExport{
				Name: fn.Name, Params: fn.Params,
				ReturnType: fn.ReturnType, ReturnTypeSpan: fn.ReturnTypeSpan,
				DefinitionSpan: fn.Span,
			}
		}
		table[key] = &ModuleExports{ModuleName: target.Name, Functions: fns}
	}
	return table, nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &lakerr.ResolveError{Kind: lakerr.ResolveIoError, Message: err.Error()}
	}
	exists, err := stdlib.IsFileExists(abs)
	if err != nil {
		return "", &lakerr.ResolveError{Kind: lakerr.ResolveIoError, Message: err.Error()}
	}
	if !exists {
		return "", &lakerr.ResolveError{Kind: lakerr.ResolveFileNotFound, Message: "module file not found: " + abs}
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &lakerr.ResolveError{Kind: lakerr.ResolveIoError, Message: err.Error()}
	}
	return real, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if i > 0 && !isLetter && !isDigit {
			return false
		}
	}
	return true
}
