package tracking

import (
	"strings"

	"github.com/shinyvision/sniffctx/internal/token"
)

// ImportKind selects one of the three import tables.
type ImportKind uint8

const (
	ImportName ImportKind = iota
	ImportFunction
	ImportConst
)

func (k ImportKind) String() string {
	switch k {
	case ImportFunction:
		return "function"
	case ImportConst:
		return "const"
	default:
		return "name"
	}
}

// Import is a single alias introduced by an import use statement.
type Import struct {
	Kind  ImportKind
	Alias string
	Name  string
	Pos   int
}

// UseStatements holds the alias tables in effect at a position. Each table
// maps the local alias to the fully qualified original name.
type UseStatements struct {
	Name     map[string]string
	Function map[string]string
	Const    map[string]string
}

func NewUseStatements() UseStatements {
	return UseStatements{
		Name:     make(map[string]string),
		Function: make(map[string]string),
		Const:    make(map[string]string),
	}
}

// Table returns the table for kind.
func (s UseStatements) Table(kind ImportKind) map[string]string {
	switch kind {
	case ImportFunction:
		return s.Function
	case ImportConst:
		return s.Const
	default:
		return s.Name
	}
}

// Len returns the number of aliases across all tables.
func (s UseStatements) Len() int {
	return len(s.Name) + len(s.Function) + len(s.Const)
}

func (s UseStatements) Clone() UseStatements {
	out := NewUseStatements()
	for k, v := range s.Name {
		out.Name[k] = v
	}
	for k, v := range s.Function {
		out.Function[k] = v
	}
	for k, v := range s.Const {
		out.Const[k] = v
	}
	return out
}

// Add records imports in order; a later alias overwrites an earlier one.
func (s UseStatements) Add(imports ...Import) {
	for _, imp := range imports {
		s.Table(imp.Kind)[imp.Alias] = imp.Name
	}
}

// Resolve looks alias up in the table for kind. Class and function aliases
// match case-insensitively, constant aliases exactly.
func (s UseStatements) Resolve(kind ImportKind, alias string) (string, bool) {
	table := s.Table(kind)
	if name, ok := table[alias]; ok || kind == ImportConst {
		return name, ok
	}
	for a, name := range table {
		if strings.EqualFold(a, alias) {
			return name, true
		}
	}
	return "", false
}

// IsImportUse reports whether the use keyword at pos starts an import, as
// opposed to a closure use clause or a trait use inside a class body.
func IsImportUse(file *token.File, pos int) bool {
	if file.At(pos).Kind != token.KindUse {
		return false
	}
	if prev := file.PrevSignificant(pos); prev >= 0 && file.At(prev).Kind == token.KindCloseParen {
		return false
	}
	enc := file.Enclosing(pos)
	if enc < 0 {
		return true
	}
	return file.At(enc).Scope == token.ScopeNamespace
}

// UseStatementEnd returns the position of the semicolon or close tag ending
// the use statement starting at pos, or -1 when the statement is not
// terminated (live coding).
func UseStatementEnd(file *token.File, pos int) int {
	for i := pos + 1; file.Exists(i); i++ {
		switch file.At(i).Kind {
		case token.KindSemicolon, token.KindCloseTag:
			return i
		case token.KindName, token.KindNsSeparator, token.KindFunction, token.KindConst, token.KindAs,
			token.KindOpenCurly, token.KindCloseCurly, token.KindComma, token.KindComment:
			continue
		default:
			return -1
		}
	}
	return -1
}

// SplitUseStatement splits the import use statement starting at pos into its
// aliases, in source order. It returns the statement end as well; end is -1
// and imports is nil when the statement is not terminated.
func SplitUseStatement(file *token.File, pos int) (imports []Import, end int) {
	end = UseStatementEnd(file, pos)
	if end < 0 {
		return nil, -1
	}

	var (
		stmtKind = ImportName
		itemKind = ImportName
		name     strings.Builder
		alias    string
		inAlias  bool
		grouped  bool
		prefix   string
		itemPos  = -1
		first    = true
	)

	flush := func() {
		full := strings.TrimPrefix(name.String(), "\\")
		if full != "" {
			if grouped && prefix != "" {
				full = prefix + "\\" + full
			}
			a := alias
			if a == "" {
				a = lastSegment(full)
			}
			imports = append(imports, Import{Kind: itemKind, Alias: a, Name: full, Pos: itemPos})
		}
		name.Reset()
		alias = ""
		inAlias = false
		itemKind = stmtKind
		itemPos = -1
	}

	for i := pos + 1; i < end; i++ {
		tok := file.At(i)
		if !tok.IsSignificant() {
			continue
		}
		switch tok.Kind {
		case token.KindFunction, token.KindConst:
			kind := ImportFunction
			if tok.Kind == token.KindConst {
				kind = ImportConst
			}
			if first {
				stmtKind = kind
			}
			itemKind = kind
		case token.KindName:
			if inAlias {
				alias = tok.Content
				break
			}
			if itemPos < 0 {
				itemPos = i
			}
			name.WriteString(tok.Content)
		case token.KindNsSeparator:
			if itemPos < 0 {
				itemPos = i
			}
			name.WriteString("\\")
		case token.KindAs:
			inAlias = true
		case token.KindOpenCurly:
			grouped = true
			prefix = strings.Trim(name.String(), "\\")
			name.Reset()
			itemKind = stmtKind
			itemPos = -1
		case token.KindComma, token.KindCloseCurly:
			flush()
		}
		first = false
	}
	flush()
	return imports, end
}

func lastSegment(qualified string) string {
	if idx := strings.LastIndex(qualified, "\\"); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}
