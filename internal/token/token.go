package token

// Kind identifies the lexical class of a token. For PHP sources produced by
// the tree-sitter tokenizer this is the leaf node type.
type Kind string

const (
	KindOpenTag      Kind = "php_tag"
	KindCloseTag     Kind = "?>"
	KindInlineHTML   Kind = "text"
	KindComment      Kind = "comment"
	KindName         Kind = "name"
	KindNsSeparator  Kind = "\\"
	KindUse          Kind = "use"
	KindNamespace    Kind = "namespace"
	KindFunction     Kind = "function"
	KindConst        Kind = "const"
	KindAs           Kind = "as"
	KindDeclare      Kind = "declare"
	KindOpenCurly    Kind = "{"
	KindDollarCurly  Kind = "${"
	KindCloseCurly   Kind = "}"
	KindOpenParen    Kind = "("
	KindCloseParen   Kind = ")"
	KindSemicolon    Kind = ";"
	KindComma        Kind = ","
	KindDollar       Kind = "$"
	KindObjectOp     Kind = "->"
	KindNullsafeOp   Kind = "?->"
	KindDoubleColon  Kind = "::"
)

// ScopeKind classifies the construct owning a curly brace.
type ScopeKind uint8

const (
	ScopeNone ScopeKind = iota
	ScopeNamespace
	ScopeClass
	ScopeFunction
)

func (s ScopeKind) String() string {
	switch s {
	case ScopeNamespace:
		return "namespace"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	default:
		return "none"
	}
}

// Token is a single lexical token. Line and Column are zero-based; Scope is
// only meaningful on opening curly braces.
type Token struct {
	Kind    Kind
	Content string
	Line    int
	Column  int
	Scope   ScopeKind
}

// IsSignificant reports whether the token carries code, as opposed to
// comments.
func (t Token) IsSignificant() bool {
	return t.Kind != KindComment
}

func isOpener(k Kind) bool {
	return k == KindOpenCurly || k == KindDollarCurly
}
