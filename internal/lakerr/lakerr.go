// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package lakerr defines the closed error-kind taxonomies for every compiler
// phase. Each phase owns one Kind enum and one error struct bundling Kind,
// Message, an optional Span, and optional Help text, following the
// sentinel-comparable Error string pattern used throughout this codebase
// (see Sentinel, below) but enriched with source position since these
// errors are rendered to the user with a span, not just a message.
package lakerr

import (
	"fmt"

	"github.com/lak-lang/lakc/internal/token"
)

// Sentinel is a constant error, comparable with errors.Is the same way
// plain string-based sentinel errors are elsewhere in this codebase.
type Sentinel string

func (e Sentinel) Error() string { return string(e) }

const (
	ErrInternal       = Sentinel("internal compiler error")
	ErrNotImplemented = Sentinel("not implemented")
)

// LexKind enumerates lexer error kinds (spec §7, Lex).
type LexKind int

const (
	LexUnexpectedEOF LexKind = iota
	LexUnexpectedCharacter
	LexInvalidIdentifierCharacter
	LexInvalidWhitespace
	LexUnknownEscapeSequence
	LexUnterminatedString
	LexIntegerOverflow
	LexInvalidFloatLiteral
)

func (k LexKind) String() string {
	return [...]string{
		"UnexpectedEof", "UnexpectedCharacter", "InvalidIdentifierCharacter",
		"InvalidWhitespace", "UnknownEscapeSequence", "UnterminatedString",
		"IntegerOverflow", "InvalidFloatLiteral",
	}[k]
}

// LexError is a diagnosed failure in internal/lexer.
type LexError struct {
	Kind    LexKind
	Message string
	Span    token.Span
	Help    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s [%s]", e.Span, e.Message, e.Kind)
}

// ParseKind enumerates parser error kinds (spec §7, Parse).
type ParseKind int

const (
	ParseUnexpectedToken ParseKind = iota
	ParseExpectedIdentifier
	ParseExpectedStringLiteral
	ParseExpectedType
	ParseMissingStatementTerminator
	ParseMissingFunctionCallParentheses
	ParseNestedMemberAccessNotSupported
	ParseEmptyImportPath
	ParseIntegerLiteralOutOfRange
	ParseMissingElseInIfExpression
	ParseMissingIfExpressionBranchValue
	ParseInternalError
)

func (k ParseKind) String() string {
	return [...]string{
		"UnexpectedToken", "ExpectedIdentifier", "ExpectedStringLiteral", "ExpectedType",
		"MissingStatementTerminator", "MissingFunctionCallParentheses",
		"NestedMemberAccessNotSupported", "EmptyImportPath", "IntegerLiteralOutOfRange",
		"MissingElseInIfExpression", "MissingIfExpressionBranchValue", "InternalError",
	}[k]
}

// ParseError is a diagnosed failure in internal/parser.
type ParseError struct {
	Kind    ParseKind
	Message string
	Span    token.Span
	Help    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s [%s]", e.Span, e.Message, e.Kind)
}

// ResolveKind enumerates module-resolver error kinds (spec §7, Resolve).
type ResolveKind int

const (
	ResolveFileNotFound ResolveKind = iota
	ResolveInvalidImportPath
	ResolveCircularImport
	ResolveIoError
	ResolveInvalidModuleName
	ResolveLexError
	ResolveParseError
	ResolveStandardLibraryNotSupported
)

func (k ResolveKind) String() string {
	return [...]string{
		"FileNotFound", "InvalidImportPath", "CircularImport", "IoError",
		"InvalidModuleName", "LexError", "ParseError", "StandardLibraryNotSupported",
	}[k]
}

// ResolveError is a diagnosed failure in internal/resolver. Module carries
// the filename of the module the error occurred in when that module is not
// the entry module (the caller already has the entry module's context).
type ResolveError struct {
	Kind    ResolveKind
	Message string
	Span    token.Span
	Help    string
	Module  string // filename for errors in imported modules; "" for the entry module
	Source  string // that module's source, for diagnostic rendering
	Cause   error  // wrapped *LexError / *ParseError when Kind is ResolveLexError/ResolveParseError
}

func (e *ResolveError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("resolve error in %s at %s: %s [%s]", e.Module, e.Span, e.Message, e.Kind)
	}
	return fmt.Sprintf("resolve error at %s: %s [%s]", e.Span, e.Message, e.Kind)
}

func (e *ResolveError) Unwrap() error { return e.Cause }

// SemanticKind enumerates semantic-analyzer error kinds (spec §7, Semantic).
type SemanticKind int

const (
	SemDuplicateFunction SemanticKind = iota
	SemDuplicateVariable
	SemUndefinedVariable
	SemUndefinedFunction
	SemImmutableVariableReassignment
	SemTypeMismatch
	SemIntegerOverflow
	SemInvalidArgument
	SemInvalidExpression
	SemInvalidBinaryOp
	SemInvalidUnaryOp
	SemInvalidOrderingOp
	SemInvalidLogicalOp
	SemReturnValueInVoidFunction
	SemMissingReturnValue
	SemMissingReturnInNonVoidFunction
	SemBreakOutsideLoop
	SemContinueOutsideLoop
	SemModuleNotImported
	SemUndefinedModule
	SemUndefinedModuleFunction
	SemDuplicateModuleImport
	SemVoidFunctionCallAsValue
	SemIfExpressionBranchTypeMismatch
	SemInternalError
)

func (k SemanticKind) String() string {
	return [...]string{
		"DuplicateFunction", "DuplicateVariable", "UndefinedVariable", "UndefinedFunction",
		"ImmutableVariableReassignment", "TypeMismatch", "IntegerOverflow", "InvalidArgument",
		"InvalidExpression", "InvalidBinaryOp", "InvalidUnaryOp", "InvalidOrderingOp",
		"InvalidLogicalOp", "ReturnValueInVoidFunction", "MissingReturnValue",
		"MissingReturnInNonVoidFunction", "BreakOutsideLoop", "ContinueOutsideLoop",
		"ModuleNotImported", "UndefinedModule", "UndefinedModuleFunction",
		"DuplicateModuleImport", "VoidFunctionCallAsValue", "IfExpressionBranchTypeMismatch",
		"InternalError",
	}[k]
}

// SemanticError is a diagnosed failure in internal/semantic.
type SemanticError struct {
	Kind    SemanticKind
	Message string
	Span    token.Span
	Help    string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at %s: %s [%s]", e.Span, e.Message, e.Kind)
}

// IsInternal reports whether this error represents a proven-impossible
// condition (an analyzer invariant violation) rather than a user mistake.
func (e *SemanticError) IsInternal() bool { return e.Kind == SemInternalError }

// CodegenKind enumerates code-generator error kinds (spec §7, Codegen).
type CodegenKind int

const (
	CodegenInternalError CodegenKind = iota
	CodegenTargetError
	CodegenInvalidModulePath
)

func (k CodegenKind) String() string {
	return [...]string{"InternalError", "TargetError", "InvalidModulePath"}[k]
}

// CodegenError is a diagnosed failure in internal/codegen. The large
// majority of these signal a semantic-analyzer bug: codegen trusts a
// semantically valid Program completely and treats any unexpected shape as
// an internal error rather than attempting to recover (spec §7).
type CodegenError struct {
	Kind    CodegenKind
	Message string
	Span    token.Span
	Help    string
}

func (e *CodegenError) Error() string {
	return fmt.Sprintf("codegen error at %s: %s [%s]", e.Span, e.Message, e.Kind)
}
