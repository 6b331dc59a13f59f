// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package stdlib provides small filesystem existence checks used by the
// module resolver.
package stdlib
