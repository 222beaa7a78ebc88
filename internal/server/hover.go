package server

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shinyvision/sniffctx/internal/sniff"
	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/shinyvision/sniffctx/internal/tracking"
	"github.com/shinyvision/sniffctx/internal/utils"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) hover(_ *glsp.Context, p *protocol.HoverParams) (*protocol.Hover, error) {
	uri := p.TextDocument.URI
	text, _, ok := s.state.GetDocument(uri)
	if !ok {
		return nil, nil
	}
	doc, ok := s.store.Get(utils.UriToPath(uri))
	if !ok {
		return nil, nil
	}
	file := doc.File()
	pos := file.TokenAt(int(p.Position.Line), byteColumn(text, p.Position))
	if pos < 0 {
		return nil, nil
	}

	s.mu.Lock()
	ctx := s.runner.Tracking()
	ns, err := ctx.Namespaces.GetNamespace(file, pos)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	uses, err := ctx.Imports.GetUseStatements(file, pos)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	r := tokenRange(text, file.At(pos))
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: describe(file, pos, ns, uses),
		},
		Range: &r,
	}, nil
}

// describe renders the context in effect at pos as markdown.
func describe(file *token.File, pos int, ns string, uses tracking.UseStatements) string {
	var b strings.Builder
	if kind, name, ok := resolveName(file, pos, uses); ok {
		fmt.Fprintf(&b, "`%s` is the %s `%s`\n\n", file.At(pos).Content, kind, name)
	}

	if ns == "" {
		b.WriteString("**namespace** global\n")
	} else {
		fmt.Fprintf(&b, "**namespace** `%s`\n", ns)
	}

	if uses.Len() == 0 {
		b.WriteString("\nno imports")
		return b.String()
	}
	b.WriteString("\n**imports**\n")
	for _, kind := range []tracking.ImportKind{tracking.ImportName, tracking.ImportFunction, tracking.ImportConst} {
		table := uses.Table(kind)
		aliases := make([]string, 0, len(table))
		for alias := range table {
			aliases = append(aliases, alias)
		}
		slices.Sort(aliases)
		for _, alias := range aliases {
			prefix := ""
			if kind != tracking.ImportName {
				prefix = kind.String() + " "
			}
			fmt.Fprintf(&b, "- %s`%s` → `%s`\n", prefix, alias, table[alias])
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// resolveName resolves the name at pos through the import tables. A name
// followed by an opening parenthesis is looked up as a function first.
func resolveName(file *token.File, pos int, uses tracking.UseStatements) (tracking.ImportKind, string, bool) {
	tok := file.At(pos)
	if tok.Kind != token.KindName || !sniff.IsReference(file, pos) {
		return 0, "", false
	}
	if next := file.NextSignificant(pos); next >= 0 && file.At(next).Kind == token.KindNsSeparator {
		// Leading segment of a qualified name: only class imports apply.
		name, ok := uses.Resolve(tracking.ImportName, tok.Content)
		return tracking.ImportName, name, ok
	}

	kinds := []tracking.ImportKind{tracking.ImportName, tracking.ImportConst, tracking.ImportFunction}
	if next := file.NextSignificant(pos); next >= 0 && file.At(next).Kind == token.KindOpenParen {
		kinds = []tracking.ImportKind{tracking.ImportFunction, tracking.ImportName}
	}
	for _, kind := range kinds {
		if name, ok := uses.Resolve(kind, tok.Content); ok {
			return kind, name, true
		}
	}
	return 0, "", false
}
