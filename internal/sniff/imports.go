package sniff

import (
	"strings"

	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/shinyvision/sniffctx/internal/tracking"
)

const (
	CodeDuplicateAlias = "Imports.DuplicateAlias"
	CodeUnusedImport   = "Imports.Unused"
)

func init() {
	Register(func() Sniff { return duplicateAlias{} })
	Register(func() Sniff { return unusedImport{} })
}

// sameAlias compares aliases the way PHP does: class and function names are
// case-insensitive, constants are not.
func sameAlias(kind tracking.ImportKind, a, b string) bool {
	if kind == tracking.ImportConst {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// duplicateAlias flags imports whose alias shadows an earlier import of the
// same scope and table. The later import wins.
type duplicateAlias struct{}

func (duplicateAlias) Code() string { return CodeDuplicateAlias }

func (duplicateAlias) Register() []token.Kind { return []token.Kind{token.KindUse} }

func (s duplicateAlias) Process(f *File, pos int) error {
	if !tracking.IsImportUse(f.File, pos) {
		return nil
	}
	imports, err := f.Tracking.Imports.Split(f.File, pos)
	if err != nil {
		return err
	}
	before, err := f.Tracking.Imports.GetUseStatements(f.File, pos)
	if err != nil {
		return err
	}

	current := tracking.NewUseStatements()
	for _, imp := range imports {
		prev, ok := current.Resolve(imp.Kind, imp.Alias)
		if !ok {
			prev, ok = before.Resolve(imp.Kind, imp.Alias)
		}
		if ok && prev != imp.Name {
			f.AddWarning(imp.Pos, s.Code(), "%s alias %q already refers to %s; it now refers to %s",
				imp.Kind, imp.Alias, prev, imp.Name)
		}
		current.Add(imp)
	}
	return nil
}

// unusedImport flags imports whose alias is never referenced between the
// statement and the end of its scope.
type unusedImport struct{}

func (unusedImport) Code() string { return CodeUnusedImport }

func (unusedImport) Register() []token.Kind { return []token.Kind{token.KindUse} }

func (s unusedImport) Process(f *File, pos int) error {
	if !tracking.IsImportUse(f.File, pos) {
		return nil
	}
	imports, err := f.Tracking.Imports.Split(f.File, pos)
	if err != nil || len(imports) == 0 {
		return err
	}
	start := tracking.UseStatementEnd(f.File, pos) + 1
	end, err := importRegionEnd(f, pos)
	if err != nil {
		return err
	}

	used := make([]bool, len(imports))
	for i := start; i <= end && f.Exists(i); i++ {
		tok := f.At(i)
		switch tok.Kind {
		case token.KindUse:
			if tracking.IsImportUse(f.File, i) {
				if stmtEnd := tracking.UseStatementEnd(f.File, i); stmtEnd > i {
					i = stmtEnd
				}
			}
			continue
		case token.KindComment:
			for n, imp := range imports {
				if !used[n] && imp.Kind == tracking.ImportName && mentions(tok.Content, imp.Alias) {
					used[n] = true
				}
			}
			continue
		case token.KindName:
		default:
			continue
		}
		if !IsReference(f.File, i) {
			continue
		}
		for n, imp := range imports {
			if !used[n] && sameAlias(imp.Kind, tok.Content, imp.Alias) {
				used[n] = true
			}
		}
	}

	for n, imp := range imports {
		if !used[n] {
			f.AddWarning(imp.Pos, s.Code(), "%s import %s is never used", imp.Kind, imp.Name)
		}
	}
	return nil
}

// importRegionEnd returns the last position an import at pos can apply to:
// the closing brace of its braced namespace, or the end of the unscoped
// namespace segment it belongs to.
func importRegionEnd(f *File, pos int) (int, error) {
	if scope := tracking.ScopeKey(f.File, pos); scope > 0 {
		if closer := f.Match(scope); closer >= 0 {
			return closer, nil
		}
		return f.Len() - 1, nil
	}
	seg, err := f.Tracking.Namespaces.GetNamespaceInfo(f.File, pos)
	if err != nil {
		return 0, err
	}
	if seg.IsOpen() {
		return f.Len() - 1, nil
	}
	// The header of the next declaration closes the segment; the region
	// keeps going until that declaration takes effect.
	return seg.End, nil
}

// IsReference reports whether the name at pos is the leading part of a name
// reference, rather than a member name or a later segment of a qualified
// name.
func IsReference(file *token.File, pos int) bool {
	prev := file.PrevSignificant(pos)
	if prev < 0 {
		return true
	}
	switch file.At(prev).Kind {
	case token.KindNsSeparator, token.KindDollar, token.KindObjectOp, token.KindNullsafeOp, token.KindDoubleColon:
		return false
	}
	return true
}

// mentions reports whether word occurs in text as a whole identifier that is
// not the tail of a qualified name.
func mentions(text, word string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], word)
		if idx < 0 {
			return false
		}
		at := from + idx
		end := at + len(word)
		if (at == 0 || !isNameByte(text[at-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		from = at + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 0x80 || (b >= '0' && b <= '9') || (b|0x20 >= 'a' && b|0x20 <= 'z')
}

func isNameByte(b byte) bool {
	return b == '\\' || isWordByte(b)
}
