// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package codegen

import "testing"

func TestMangle(t *testing.T) {
	for _, tc := range []struct {
		name string
		path string
		fn   string
		want string
	}{
		{name: "entry module", path: "", fn: "main", want: "_main"},
		{name: "single segment", path: "a", fn: "f", want: "_L1_a_f"},
		{name: "multi segment", path: "a/b", fn: "f", want: "_L1_a_L1_b_f"},
		{name: "longer segment", path: "utils", fn: "helper", want: "_L5_utils_helper"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := Mangle(tc.path, tc.fn); got != tc.want {
				t.Errorf("Mangle(%q, %q) = %q, want %q", tc.path, tc.fn, got, tc.want)
			}
		})
	}
}

func TestMangler_ReassigningSamePathIsOk(t *testing.T) {
	m := NewMangler()
	if _, ok := m.Assign("a/b"); !ok {
		t.Fatalf("first assignment of a/b should succeed")
	}
	if _, ok := m.Assign("a/b"); !ok {
		t.Fatalf("re-assigning the same path should still report ok")
	}
	// "ab" and "a/b" both produce distinct segment counts so they don't
	// actually collide under this scheme; the only way to collide is a
	// crafted pair of distinct paths whose segment-length encoding matches,
	// which the length-prefix scheme is specifically designed to prevent.
	if _, ok := m.Assign("a/b"); !ok {
		t.Fatalf("repeated assignment of an already-seen path must stay ok")
	}
}

func TestMangler_BijectionAcrossManyPaths(t *testing.T) {
	m := NewMangler()
	paths := []string{"a", "b", "a/b", "b/a", "ab", "a/b/c", "utils", "utils/math"}
	prefixes := make(map[string]string)
	for _, p := range paths {
		prefix, ok := m.Assign(p)
		if !ok {
			t.Fatalf("unexpected collision assigning %q", p)
		}
		if existing, seen := prefixes[prefix]; seen && existing != p {
			t.Fatalf("prefix %q assigned to both %q and %q", prefix, existing, p)
		}
		prefixes[prefix] = p
	}
}
