package sniff

import (
	"strings"

	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/shinyvision/sniffctx/internal/tracking"
)

const CodeDeclarationAfterCode = "Namespaces.DeclarationAfterCode"

func init() {
	Register(func() Sniff { return declarationAfterCode{} })
}

// declarationAfterCode flags a first namespace declaration preceded by
// anything but the open tag, comments and declare statements.
type declarationAfterCode struct{}

func (declarationAfterCode) Code() string { return CodeDeclarationAfterCode }

func (declarationAfterCode) Register() []token.Kind { return []token.Kind{token.KindNamespace} }

func (s declarationAfterCode) Process(f *File, pos int) error {
	if !tracking.IsNamespaceDeclaration(f.File, pos) {
		return nil
	}
	seg, err := f.Tracking.Namespaces.GetNamespaceInfo(f.File, pos)
	if err != nil {
		return err
	}
	if seg.Start != 0 {
		return nil
	}

	for i := 0; i < pos; i++ {
		tok := f.At(i)
		switch tok.Kind {
		case token.KindOpenTag, token.KindComment:
			continue
		case token.KindInlineHTML:
			if strings.TrimSpace(tok.Content) == "" {
				continue
			}
		case token.KindDeclare:
			if end := f.FindNext(i, token.KindSemicolon); end >= 0 && end < pos {
				i = end
				continue
			}
		}
		name, _ := tracking.NamespaceDeclarationName(f.File, pos)
		f.AddError(pos, s.Code(), "namespace %s must be declared before any other code; found %q on line %d",
			name, tok.Content, tok.Line+1)
		return nil
	}
	return nil
}
