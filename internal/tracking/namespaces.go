package tracking

import (
	"strings"

	"github.com/shinyvision/sniffctx/internal/poscache"
	"github.com/shinyvision/sniffctx/internal/token"
)

// Segment is a contiguous run of positions sharing one namespace. End is
// NoPosition while the segment is still open. Name is empty for the global
// namespace.
type Segment struct {
	Start int
	End   int
	Name  string
}

func (s Segment) IsOpen() bool {
	return s.End == NoPosition
}

func (s Segment) Contains(pos int) bool {
	return pos >= s.Start && (s.IsOpen() || pos <= s.End)
}

// NamespaceTracker incrementally splits a file into namespace segments. A
// segment starts where its declaration takes effect: after the terminating
// semicolon, or after the opening brace of a braced declaration.
type NamespaceTracker struct {
	cache       *poscache.Cache
	file        *token.File
	lastSeenPtr int
	segments    []Segment
	current     int
}

func newNamespaceTracker(cache *poscache.Cache) *NamespaceTracker {
	t := &NamespaceTracker{cache: cache}
	t.reset()
	return t
}

// TargetTokens lists the token kinds a host loop must forward to Track.
func (t *NamespaceTracker) TargetTokens() []token.Kind {
	return []token.Kind{token.KindNamespace}
}

// Reset drops all per-file state.
func (t *NamespaceTracker) Reset() {
	t.reset()
	t.cache.Clear()
}

func (t *NamespaceTracker) reset() {
	t.file = nil
	// Position 0 is the open tag or inline HTML, never a declaration.
	t.lastSeenPtr = 0
	t.segments = []Segment{{Start: 0, End: NoPosition}}
	t.current = 0
}

// BeginFile binds the tracker to file, dropping state kept for any other file.
func (t *NamespaceTracker) BeginFile(file *token.File) {
	if file == nil || (t.file != nil && t.file.Identity() == file.Identity()) {
		return
	}
	if t.file != nil {
		logger.Debugf("namespace tracker: switching from %s to %s", t.file.Path(), file.Path())
	}
	t.reset()
	t.file = file
}

// LastSeenPtr returns the highest position absorbed for the current file.
func (t *NamespaceTracker) LastSeenPtr() int {
	return t.lastSeenPtr
}

// Segments returns a copy of the segments found so far.
func (t *NamespaceTracker) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Track absorbs every token up to pos. Positions that do not exist in file,
// and positions at or before the tracking pointer, are ignored.
func (t *NamespaceTracker) Track(file *token.File, pos int) {
	if !file.Exists(pos) {
		return
	}
	t.BeginFile(file)
	t.ensureTrackedUpTo(pos)
}

// EnsureTrackedUpTo backfills the segment list up to pos.
func (t *NamespaceTracker) EnsureTrackedUpTo(file *token.File, pos int) error {
	if err := checkPosition(file, pos, "EnsureTrackedUpTo"); err != nil {
		return err
	}
	t.BeginFile(file)
	t.backfill(pos)
	return nil
}

func (t *NamespaceTracker) backfill(pos int) {
	if pos > t.lastSeenPtr+1 {
		logger.Debugf("namespace tracker: backfilling %s from %d to %d", t.file.Path(), t.lastSeenPtr+1, pos)
	}
	t.ensureTrackedUpTo(pos)
}

func (t *NamespaceTracker) ensureTrackedUpTo(pos int) {
	if pos <= t.lastSeenPtr {
		return
	}
	for p := t.lastSeenPtr + 1; p <= pos; p++ {
		if t.file.At(p).Kind == token.KindNamespace {
			t.declare(p)
		}
	}
	t.lastSeenPtr = pos
}

// IsNamespaceDeclaration reports whether the namespace keyword at pos starts
// a declaration rather than a relative name such as namespace\foo().
func IsNamespaceDeclaration(file *token.File, pos int) bool {
	if file.At(pos).Kind != token.KindNamespace {
		return false
	}
	next := file.NextSignificant(pos)
	return next >= 0 && file.At(next).Kind != token.KindNsSeparator
}

// NamespaceDeclarationName parses the declaration at pos. It returns the
// declared name and the position of the terminating semicolon, close tag or
// opening brace; term is -1 when the declaration is incomplete.
func NamespaceDeclarationName(file *token.File, pos int) (name string, term int) {
	if !IsNamespaceDeclaration(file, pos) {
		return "", -1
	}
	var b strings.Builder
	for i := pos + 1; file.Exists(i); i++ {
		tok := file.At(i)
		switch tok.Kind {
		case token.KindComment:
		case token.KindName, token.KindNsSeparator:
			b.WriteString(tok.Content)
		case token.KindOpenCurly, token.KindSemicolon, token.KindCloseTag:
			return strings.Trim(b.String(), "\\"), i
		default:
			return "", -1
		}
	}
	return "", -1
}

func (t *NamespaceTracker) declare(pos int) {
	name, term := NamespaceDeclarationName(t.file, pos)
	if term < 0 {
		return
	}
	start := term + 1
	open := &t.segments[t.current]
	if start <= open.Start {
		// Nested in a braced namespace that was already closed off.
		return
	}
	open.End = start - 1

	closer := -1
	if t.file.At(term).Kind == token.KindOpenCurly {
		closer = t.file.Match(term)
	}
	if closer >= 0 {
		t.segments = append(t.segments,
			Segment{Start: start, End: closer, Name: name},
			Segment{Start: closer + 1, End: NoPosition},
		)
	} else {
		t.segments = append(t.segments, Segment{Start: start, End: NoPosition, Name: name})
	}
	t.current = len(t.segments) - 1
}

// GetNamespaceInfo returns the segment containing pos, backfilling the
// segment list first when pos is ahead of the tracking pointer.
func (t *NamespaceTracker) GetNamespaceInfo(file *token.File, pos int) (Segment, error) {
	if err := checkPosition(file, pos, "GetNamespaceInfo"); err != nil {
		return Segment{}, err
	}
	t.BeginFile(file)
	t.backfill(pos)

	key := poscache.Key{Method: poscache.MethodNamespace, Position: pos}
	if idx, ok := poscache.Lookup[int](t.cache, file, key); ok && idx < len(t.segments) {
		return t.segments[idx], nil
	}
	idx := 0
	for i := t.current; i >= 0; i-- {
		if t.segments[i].Start <= pos {
			idx = i
			break
		}
	}
	t.cache.Set(file, key, idx)
	return t.segments[idx], nil
}

// GetNamespace returns the name of the namespace in effect at pos.
func (t *NamespaceTracker) GetNamespace(file *token.File, pos int) (string, error) {
	seg, err := t.GetNamespaceInfo(file, pos)
	if err != nil {
		return "", err
	}
	return seg.Name, nil
}
