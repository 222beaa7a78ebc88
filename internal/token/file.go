package token

import (
	"iter"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Identity names the file a tracker is bound to. Two files are the same only
// when both the path and the hash of the token stream (kinds and contents)
// match, so an edited buffer is a new file even though its path did not change.
type Identity struct {
	Path string
	Sum  uint64
}

// File is an immutable, fully materialized token stream together with the
// structural metadata the trackers need.
type File struct {
	path      string
	tokens    []Token
	id        Identity
	match     []int
	enclosing []int
}

// NewFile builds a File from tokens in source order. Unbalanced braces are
// tolerated: stray closers are ignored and unclosed openers have no match.
func NewFile(path string, tokens []Token) *File {
	f := &File{
		path:      path,
		tokens:    tokens,
		match:     make([]int, len(tokens)),
		enclosing: make([]int, len(tokens)),
	}

	h := xxhash.New()
	stack := make([]int, 0, 16)
	for i, tok := range tokens {
		_, _ = h.WriteString(string(tok.Kind))
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(tok.Content)
		_, _ = h.Write([]byte{0})
		f.match[i] = -1

		top := -1
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}
		f.enclosing[i] = top

		switch {
		case isOpener(tok.Kind):
			stack = append(stack, i)
		case tok.Kind == KindCloseCurly && top >= 0:
			stack = stack[:len(stack)-1]
			f.match[i] = top
			f.match[top] = i
		}
	}
	f.id = Identity{Path: path, Sum: h.Sum64()}
	return f
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Identity() Identity {
	return f.id
}

// Len returns the number of tokens in the file.
func (f *File) Len() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// Exists reports whether pos names a token of this file.
func (f *File) Exists(pos int) bool {
	return f != nil && pos >= 0 && pos < len(f.tokens)
}

// At returns the token at pos, or the zero Token when pos does not exist.
func (f *File) At(pos int) Token {
	if !f.Exists(pos) {
		return Token{}
	}
	return f.tokens[pos]
}

// Match returns the position of the brace matching the one at pos, or -1.
func (f *File) Match(pos int) int {
	if !f.Exists(pos) {
		return -1
	}
	return f.match[pos]
}

// Enclosing returns the position of the nearest curly opener enclosing pos,
// or -1 at the top level. A closer is enclosed by its own opener.
func (f *File) Enclosing(pos int) int {
	if !f.Exists(pos) {
		return -1
	}
	return f.enclosing[pos]
}

// EnclosingScope walks outward from pos and returns the nearest opener whose
// scope is one of kinds, or -1.
func (f *File) EnclosingScope(pos int, kinds ...ScopeKind) int {
	for cur := f.Enclosing(pos); cur >= 0; cur = f.Enclosing(cur) {
		scope := f.tokens[cur].Scope
		for _, k := range kinds {
			if scope == k {
				return cur
			}
		}
	}
	return -1
}

// NextSignificant returns the first non-comment token after pos, or -1.
func (f *File) NextSignificant(pos int) int {
	for i := pos + 1; f.Exists(i); i++ {
		if f.tokens[i].IsSignificant() {
			return i
		}
	}
	return -1
}

// PrevSignificant returns the last non-comment token before pos, or -1.
func (f *File) PrevSignificant(pos int) int {
	for i := pos - 1; f.Exists(i); i-- {
		if f.tokens[i].IsSignificant() {
			return i
		}
	}
	return -1
}

// FindNext returns the first token at or after from whose kind is one of
// kinds, or -1.
func (f *File) FindNext(from int, kinds ...Kind) int {
	if from < 0 {
		from = 0
	}
	for i := from; f.Exists(i); i++ {
		for _, k := range kinds {
			if f.tokens[i].Kind == k {
				return i
			}
		}
	}
	return -1
}

// TokenAt returns the position of the token covering the zero-based line and
// column, or -1 when the location falls before the first token.
func (f *File) TokenAt(line, column int) int {
	if f.Len() == 0 {
		return -1
	}
	idx := sort.Search(len(f.tokens), func(i int) bool {
		t := f.tokens[i]
		return t.Line > line || (t.Line == line && t.Column > column)
	})
	return idx - 1
}

// All iterates over the tokens in source order.
func (f *File) All() iter.Seq2[int, Token] {
	return func(yield func(int, Token) bool) {
		for i := 0; i < f.Len(); i++ {
			if !yield(i, f.tokens[i]) {
				return
			}
		}
	}
}
