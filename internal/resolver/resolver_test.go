// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package resolver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lak-lang/lakc/internal/lakerr"
	"github.com/lak-lang/lakc/internal/resolver"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func resolveErr(t *testing.T, err error) *lakerr.ResolveError {
	t.Helper()
	re, ok := err.(*lakerr.ResolveError)
	if !ok {
		t.Fatalf("expected *lakerr.ResolveError, got %T (%v)", err, err)
	}
	return re
}

func TestResolve_SingleFileNoImports(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.lak", "fn main() {}\n")

	mods, err := resolver.New().Resolve(entry, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mods) != 1 {
		t.Fatalf("expected 1 module, got %d", len(mods))
	}
	if !mods[0].IsEntry {
		t.Errorf("expected entry module to be marked IsEntry")
	}
}

func TestResolve_TransitiveImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "utils.lak", "pub fn helper() -> i32 { return 1 }\n")
	entry := writeFile(t, dir, "main.lak", "import \"./utils\"\nfn main() {\n  utils.helper()\n}\n")

	mods, err := resolver.New().Resolve(entry, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(mods))
	}
}

func TestResolve_CircularImportDetected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lak", "import \"./b\"\npub fn fa() {}\n")
	writeFile(t, dir, "b.lak", "import \"./a\"\npub fn fb() {}\n")
	entry := filepath.Join(dir, "a.lak")

	_, err := resolver.New().Resolve(entry, "")
	if resolveErr(t, err).Kind != lakerr.ResolveCircularImport {
		t.Errorf("got %v", err)
	}
}

func TestResolve_FileNotFound(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "nope.lak")

	_, err := resolver.New().Resolve(entry, "")
	if resolveErr(t, err).Kind != lakerr.ResolveFileNotFound {
		t.Errorf("got %v", err)
	}
}

func TestResolve_ImportPathWithExtensionRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "utils.lak", "pub fn helper() {}\n")
	entry := writeFile(t, dir, "main.lak", "import \"./utils.lak\"\nfn main() {}\n")

	_, err := resolver.New().Resolve(entry, "")
	if resolveErr(t, err).Kind != lakerr.ResolveInvalidImportPath {
		t.Errorf("got %v", err)
	}
}

func TestResolve_StandardLibraryImportRejected(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.lak", "import \"fmt\"\nfn main() {}\n")

	_, err := resolver.New().Resolve(entry, "")
	if resolveErr(t, err).Kind != lakerr.ResolveStandardLibraryNotSupported {
		t.Errorf("got %v", err)
	}
}

func TestBuildModuleTable_AliasAndDuplicateKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lak", "pub fn fa() {}\n")
	writeFile(t, dir, "b.lak", "pub fn fb() {}\n")
	entry := writeFile(t, dir, "main.lak", "import \"./a\" as shared\nimport \"./b\" as shared\nfn main() {}\n")

	mods, err := resolver.New().Resolve(entry, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := make(map[string]*resolver.ResolvedModule)
	var mainMod *resolver.ResolvedModule
	for _, m := range mods {
		all[m.CanonicalPath] = m
		if m.IsEntry {
			mainMod = m
		}
	}
	_, err = resolver.BuildModuleTable(mainMod, all)
	se, ok := err.(*lakerr.SemanticError)
	if !ok {
		t.Fatalf("expected *lakerr.SemanticError, got %T (%v)", err, err)
	}
	if se.Kind != lakerr.SemDuplicateModuleImport {
		t.Errorf("expected duplicate alias to be rejected as SemDuplicateModuleImport, got %v", se.Kind)
	}
}

func TestBuildModuleTable_OnlyPublicFunctionsExported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "utils.lak", "pub fn pub_fn() {}\nfn priv_fn() {}\n")
	entry := writeFile(t, dir, "main.lak", "import \"./utils\"\nfn main() {\n  utils.pub_fn()\n}\n")

	mods, err := resolver.New().Resolve(entry, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := make(map[string]*resolver.ResolvedModule)
	var mainMod *resolver.ResolvedModule
	for _, m := range mods {
		all[m.CanonicalPath] = m
		if m.IsEntry {
			mainMod = m
		}
	}
	table, err := resolver.BuildModuleTable(mainMod, all)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exports, ok := table["utils"]
	if !ok {
		t.Fatalf("expected a module table entry keyed 'utils'")
	}
	if _, ok := exports.Functions["pub_fn"]; !ok {
		t.Errorf("expected pub_fn to be exported")
	}
	if _, ok := exports.Functions["priv_fn"]; ok {
		t.Errorf("priv_fn must not be exported")
	}
}
