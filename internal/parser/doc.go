// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package parser implements a hand-written recursive-descent parser that
// turns a pre-lexed token slice into a Lak *ast.Program. It never calls
// back into internal/lexer: tokens are materialized up front by the
// caller and the parser only walks the slice forward.
package parser
