// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package codegen

import (
	"fmt"
	"strings"
)

// Mangle turns a '/'-separated module path (already stripped of its file
// extension) into the length-prefix scheme of spec.md §4.5.2, then appends
// the function name: "a/b" + "f" -> "_L1_a_L1_b_f". An empty path (the
// entry module) mangles to just "_" + name. The underscore between the
// length digits and the segment text is load-bearing, not cosmetic: without
// it, a digit-leading segment's length prefix can run into the segment text
// with no delimiter between them.
func Mangle(path, name string) string {
	var b strings.Builder
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." {
			continue
		}
		fmt.Fprintf(&b, "_L%d_%s", len(seg), seg)
	}
	return b.String() + "_" + name
}

// Mangler tracks every (path, mangled-prefix) pair assigned so far and
// rejects a collision between two distinct paths sharing one prefix, the
// correctness property spec.md §4.5.2 calls out explicitly: distinct
// canonical module paths must mangle to distinct, non-overlapping
// prefixes, or a later mangled function name could collide across modules.
type Mangler struct {
	prefixToPath map[string]string
}

// NewMangler returns an empty Mangler ready to assign prefixes.
func NewMangler() *Mangler {
	return &Mangler{prefixToPath: make(map[string]string)}
}

// Assign returns the mangle prefix for path, recording the assignment. It
// returns false if that prefix was already assigned to a different path.
func (m *Mangler) Assign(path string) (prefix string, ok bool) {
	prefix = prefixOf(path)
	if existing, exists := m.prefixToPath[prefix]; exists {
		return prefix, existing == path
	}
	m.prefixToPath[prefix] = path
	return prefix, true
}

func prefixOf(relPath string) string {
	var b strings.Builder
	for _, seg := range strings.Split(relPath, "/") {
		if seg == "" || seg == "." {
			continue
		}
		fmt.Fprintf(&b, "_L%d_%s", len(seg), seg)
	}
	return b.String()
}
