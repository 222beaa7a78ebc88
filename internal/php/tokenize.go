package php

import (
	"context"
	"fmt"

	phpforest "github.com/alexaandru/go-sitter-forest/php"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/shinyvision/sniffctx/internal/token"
)

func newParser() *sitter.Parser {
	parser := sitter.NewParser()
	lang := sitter.NewLanguage(phpforest.GetLanguage())
	_ = parser.SetLanguage(lang)
	return parser
}

// Tokenize parses PHP source and returns its token stream.
func Tokenize(path string, src []byte) (*token.File, error) {
	tree, err := newParser().ParseString(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	defer tree.Close()
	return FileFromTree(path, tree, src), nil
}

// FileFromTree flattens the leaves of a syntax tree into a token stream.
// Zero-width leaves, which tree-sitter inserts while recovering from errors,
// are dropped.
func FileFromTree(path string, tree *sitter.Tree, content []byte) *token.File {
	if tree == nil {
		return token.NewFile(path, nil)
	}
	root := tree.RootNode()
	if root.IsNull() {
		return token.NewFile(path, nil)
	}

	tokens := make([]token.Token, 0, len(content)/4)
	stack := []sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count := node.ChildCount()
		if count == 0 {
			if node.EndByte() <= node.StartByte() {
				continue
			}
			start := node.StartPoint()
			tok := token.Token{
				Kind:    token.Kind(node.Type()),
				Content: node.Content(content),
				Line:    int(start.Row),
				Column:  int(start.Column),
			}
			if tok.Kind == token.KindOpenCurly {
				tok.Scope = scopeOf(node)
			}
			tokens = append(tokens, tok)
			continue
		}

		for i := count; i > 0; i-- {
			stack = append(stack, node.Child(i-1))
		}
	}
	return token.NewFile(path, tokens)
}

// scopeOf classifies the construct owning an opening brace.
func scopeOf(brace sitter.Node) token.ScopeKind {
	parent := brace.Parent()
	if parent.IsNull() {
		return token.ScopeNone
	}
	switch parent.Type() {
	case "declaration_list", "enum_declaration_list":
		return token.ScopeClass
	case "compound_statement":
		owner := parent.Parent()
		if owner.IsNull() {
			return token.ScopeNone
		}
		switch owner.Type() {
		case "namespace_definition":
			return token.ScopeNamespace
		case "function_definition", "method_declaration", "anonymous_function", "anonymous_function_creation_expression":
			return token.ScopeFunction
		}
	}
	return token.ScopeNone
}
