package tracking

import (
	"sort"

	"github.com/shinyvision/sniffctx/internal/poscache"
	"github.com/shinyvision/sniffctx/internal/token"
)

// NoPosition stands in for an absent token position.
const NoPosition = -1

// UseInfo is the resolved import state of one scope at some position.
type UseInfo struct {
	// LastPtr is the use keyword of the last import folded into Statements.
	LastPtr    int
	Statements UseStatements
	// EffectiveFrom is the first position past the last folded import.
	EffectiveFrom int

	folded int
}

// clone copies the alias tables so callers cannot reach the cached maps.
func (u *UseInfo) clone() UseInfo {
	out := *u
	out.Statements = u.Statements.Clone()
	return out
}

func emptyUseInfo() UseInfo {
	return UseInfo{
		LastPtr:       NoPosition,
		Statements:    NewUseStatements(),
		EffectiveFrom: NoPosition,
	}
}

type seenUse struct {
	pos int
	end int
}

// ImportTracker incrementally indexes import use statements per scope. The
// scope key is the position of the enclosing braced namespace opener, or 0.
type ImportTracker struct {
	cache       *poscache.Cache
	file        *token.File
	lastSeenPtr int
	seen        map[int][]seenUse
	resolved    map[int]*UseInfo
}

func newImportTracker(cache *poscache.Cache) *ImportTracker {
	t := &ImportTracker{cache: cache}
	t.reset()
	return t
}

// TargetTokens lists the token kinds a host loop must forward to Track.
func (t *ImportTracker) TargetTokens() []token.Kind {
	return []token.Kind{token.KindUse}
}

// Reset drops all per-file state.
func (t *ImportTracker) Reset() {
	t.reset()
	t.cache.Clear()
}

func (t *ImportTracker) reset() {
	t.file = nil
	t.lastSeenPtr = NoPosition
	t.seen = make(map[int][]seenUse)
	t.resolved = make(map[int]*UseInfo)
}

// BeginFile binds the tracker to file, dropping state kept for any other file.
func (t *ImportTracker) BeginFile(file *token.File) {
	if file == nil || (t.file != nil && t.file.Identity() == file.Identity()) {
		return
	}
	if t.file != nil {
		logger.Debugf("import tracker: switching from %s to %s", t.file.Path(), file.Path())
	}
	t.reset()
	t.file = file
}

// LastSeenPtr returns the highest position absorbed for the current file.
func (t *ImportTracker) LastSeenPtr() int {
	return t.lastSeenPtr
}

// Track absorbs every token up to pos. Positions that do not exist in file,
// and positions at or before the tracking pointer, are ignored.
func (t *ImportTracker) Track(file *token.File, pos int) {
	if !file.Exists(pos) {
		return
	}
	t.BeginFile(file)
	t.ensureTrackedUpTo(pos)
}

// EnsureTrackedUpTo backfills the index up to pos. It scans the tokens
// between the tracking pointer and pos, so its cost grows with the gap.
func (t *ImportTracker) EnsureTrackedUpTo(file *token.File, pos int) error {
	if err := checkPosition(file, pos, "EnsureTrackedUpTo"); err != nil {
		return err
	}
	t.BeginFile(file)
	t.backfill(pos)
	return nil
}

// backfill is ensureTrackedUpTo for queries that may run ahead of the host loop.
func (t *ImportTracker) backfill(pos int) {
	if pos > t.lastSeenPtr+1 {
		logger.Debugf("import tracker: backfilling %s from %d to %d", t.file.Path(), t.lastSeenPtr+1, pos)
	}
	t.ensureTrackedUpTo(pos)
}

func (t *ImportTracker) ensureTrackedUpTo(pos int) {
	if pos <= t.lastSeenPtr {
		return
	}
	for p := t.lastSeenPtr + 1; p <= pos; p++ {
		if t.file.At(p).Kind == token.KindUse {
			t.record(p)
		}
	}
	t.lastSeenPtr = pos
}

func (t *ImportTracker) record(pos int) {
	if !IsImportUse(t.file, pos) {
		return
	}
	end := UseStatementEnd(t.file, pos)
	if end < 0 {
		return
	}
	scope := ScopeKey(t.file, pos)
	t.seen[scope] = append(t.seen[scope], seenUse{pos: pos, end: end})
}

// ScopeKey returns the position of the braced namespace enclosing pos, or 0
// for the unscoped part of the file.
func ScopeKey(file *token.File, pos int) int {
	if key := file.EnclosingScope(pos, token.ScopeNamespace); key >= 0 {
		return key
	}
	return 0
}

// Split returns the imports of the use statement at pos, memoized per file.
func (t *ImportTracker) Split(file *token.File, pos int) ([]Import, error) {
	if err := checkPosition(file, pos, "Split"); err != nil {
		return nil, err
	}
	t.BeginFile(file)
	return t.split(pos), nil
}

func (t *ImportTracker) split(pos int) []Import {
	key := poscache.Key{Method: poscache.MethodSplitUse, Position: pos}
	if imports, ok := poscache.Lookup[[]Import](t.cache, t.file, key); ok {
		return imports
	}
	imports, _ := SplitUseStatement(t.file, pos)
	t.cache.Set(t.file, key, imports)
	return imports
}

// GetUseStatementsInfo returns the imports in effect at pos, backfilling the
// index first when pos is ahead of the tracking pointer. An import takes
// effect on the token after its terminator.
func (t *ImportTracker) GetUseStatementsInfo(file *token.File, pos int) (UseInfo, error) {
	if err := checkPosition(file, pos, "GetUseStatementsInfo"); err != nil {
		return UseInfo{}, err
	}
	t.BeginFile(file)
	t.backfill(pos)

	scope := ScopeKey(file, pos)
	list := t.seen[scope]
	effective := sort.Search(len(list), func(i int) bool {
		return list[i].end >= pos
	})
	if effective == 0 {
		return emptyUseInfo(), nil
	}

	cached := t.resolved[scope]
	switch {
	case cached != nil && cached.folded == effective:
		return cached.clone(), nil
	case cached == nil || cached.folded < effective:
		next := t.fold(cached, list[:effective])
		t.resolved[scope] = next
		return next.clone(), nil
	}

	// pos lies before imports already folded for this scope; the scope entry
	// stays untouched and the shorter prefix is memoized separately.
	key := poscache.Key{Method: poscache.MethodUseStatements, Scope: scope, Position: effective}
	if info, ok := poscache.Lookup[*UseInfo](t.cache, file, key); ok {
		return info.clone(), nil
	}
	info := t.fold(nil, list[:effective])
	t.cache.Set(file, key, info)
	return info.clone(), nil
}

// GetUseStatements returns only the alias tables of GetUseStatementsInfo.
func (t *ImportTracker) GetUseStatements(file *token.File, pos int) (UseStatements, error) {
	info, err := t.GetUseStatementsInfo(file, pos)
	if err != nil {
		return UseStatements{}, err
	}
	return info.Statements, nil
}

// fold extends base with the statements of prefix that base has not absorbed
// yet. base itself is never modified.
func (t *ImportTracker) fold(base *UseInfo, prefix []seenUse) *UseInfo {
	next := &UseInfo{Statements: NewUseStatements()}
	from := 0
	if base != nil {
		next.Statements = base.Statements.Clone()
		from = base.folded
	}
	for _, use := range prefix[from:] {
		next.Statements.Add(t.split(use.pos)...)
	}
	last := prefix[len(prefix)-1]
	next.LastPtr = last.pos
	next.EffectiveFrom = last.end + 1
	next.folded = len(prefix)
	return next
}

func checkPosition(file *token.File, pos int, method string) error {
	if file == nil {
		return ErrNoFile
	}
	if !file.Exists(pos) {
		return &PositionError{Method: method, Arg: "stackPtr", Value: pos, Len: file.Len()}
	}
	return nil
}
