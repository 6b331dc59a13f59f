// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package codegen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lak-lang/lakc/internal/codegen"
	"github.com/lak-lang/lakc/internal/resolver"
	"github.com/lak-lang/lakc/internal/semantic"
)

func compile(t *testing.T, dir, entryName string) *codegen.Generator {
	t.Helper()
	entry := filepath.Join(dir, entryName)
	mods, err := resolver.New().Resolve(entry, "")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	byCanon := make(map[string]*resolver.ResolvedModule, len(mods))
	for _, m := range mods {
		byCanon[m.CanonicalPath] = m
	}
	results := make(map[string]*semantic.Result)
	tables := make(map[string]map[string]*resolver.ModuleExports)
	for _, m := range mods {
		table, err := resolver.BuildModuleTable(m, byCanon)
		if err != nil {
			t.Fatalf("build module table for %s: %v", m.CanonicalPath, err)
		}
		tables[m.CanonicalPath] = table
		result, err := semantic.New().Analyze(m.Program, table)
		if err != nil {
			t.Fatalf("analyze %s: %v", m.CanonicalPath, err)
		}
		results[m.CanonicalPath] = result
	}
	var entryCanon string
	for _, m := range mods {
		if m.IsEntry {
			entryCanon = m.CanonicalPath
		}
	}
	g := codegen.New()
	if _, err := g.Generate(mods, entryCanon, results, tables); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return g
}

func writeLak(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestGenerate_SimpleAddFunction(t *testing.T) {
	dir := t.TempDir()
	writeLak(t, dir, "main.lak", "fn add(a: i32, b: i32) -> i32 {\n  return a + b\n}\n\nfn main() {\n  println(add(1, 2))\n}\n")

	g := compile(t, dir, "main.lak")
	ir := g.Module().String()

	if !strings.Contains(ir, "define i32 @add(i32") {
		t.Errorf("expected an i32 add definition, got:\n%s", ir)
	}
	if !strings.Contains(ir, "define i32 @main()") {
		t.Errorf("expected a synthesized i32 main, got:\n%s", ir)
	}
	if !strings.Contains(ir, "llvm.sadd.with.overflow.i32") {
		t.Errorf("expected checked signed addition, got:\n%s", ir)
	}
}

func TestGenerate_ModuleCallAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeLak(t, dir, "utils.lak", "pub fn double(n: i32) -> i32 {\n  return n * 2\n}\n")
	writeLak(t, dir, "main.lak", "import \"./utils\"\nfn main() {\n  println(utils.double(21))\n}\n")

	g := compile(t, dir, "main.lak")
	ir := g.Module().String()

	if !strings.Contains(ir, "@_L5_utils_double") {
		t.Errorf("expected a mangled utils.double symbol, got:\n%s", ir)
	}
}

func TestGenerate_StringLiteralInterned(t *testing.T) {
	dir := t.TempDir()
	writeLak(t, dir, "main.lak", "fn main() {\n  println(\"hello\")\n}\n")

	g := compile(t, dir, "main.lak")
	ir := g.Module().String()

	if !strings.Contains(ir, "c\"hello\\00\"") {
		t.Errorf("expected an interned null-terminated string constant, got:\n%s", ir)
	}
	if !strings.Contains(ir, "@lak_println(") {
		t.Errorf("expected a lak_println declaration, got:\n%s", ir)
	}
}

func TestGenerate_VoidFunctionReturnsVoid(t *testing.T) {
	dir := t.TempDir()
	writeLak(t, dir, "main.lak", "fn helper() {\n  println(\"hi\")\n}\n\nfn main() {\n  helper()\n}\n")

	g := compile(t, dir, "main.lak")
	ir := g.Module().String()

	if !strings.Contains(ir, "define void @helper()") {
		t.Errorf("expected a void-returning helper, got:\n%s", ir)
	}
}
