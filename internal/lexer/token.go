package lexer

import "github.com/sunholo/skiff/internal/source"

// Kind enumerates token kinds.
type Kind int

const (
	EOF Kind = iota
	Ident
	Path
	IntLit
	FloatLit
	StringLit
	CharLit

	KwModule
	KwWhere
	KwImport
	KwHiding
	KwAs
	KwData
	KwClass
	KwInstance
	KwIf
	KwThen
	KwElse
	KwCase
	KwOf
	KwDo
	KwDeriving
	KwExtern
	KwTrue
	KwFalse

	OpPlus
	OpMinus
	OpStar
	OpSlash
	OpEqEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpAndAnd
	OpOrOr
	OpBang
	OpPipeForward
	OpPercent

	Arrow
	BindArrow
	DoubleColon
	Equals
	Backslash
	Pipe
	Dot
	Comma
	Semicolon
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Underscore
)

// Token is one lexed token. Implicit marks layout-inserted braces and
// semicolons.
type Token struct {
	Kind     Kind
	Text     string
	Int      int64
	Float    float64
	Char     rune
	Span     source.Span
	Implicit bool
}

var keywords = map[string]Kind{
	"module":   KwModule,
	"where":    KwWhere,
	"import":   KwImport,
	"hiding":   KwHiding,
	"as":       KwAs,
	"data":     KwData,
	"class":    KwClass,
	"instance": KwInstance,
	"if":       KwIf,
	"then":     KwThen,
	"else":     KwElse,
	"case":     KwCase,
	"of":       KwOf,
	"do":       KwDo,
	"deriving": KwDeriving,
	"extern":   KwExtern,
	"true":     KwTrue,
	"false":    KwFalse,
}
