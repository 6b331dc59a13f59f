// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package cerrs defines constant error types using a custom Error string type.
// It holds a small set of filesystem-shaped sentinel errors; internal/config
// builds its own sentinels from the Error type. The Error type supports
// comparison via errors.Is().
package cerrs
