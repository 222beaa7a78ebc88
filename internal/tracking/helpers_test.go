package tracking

import (
	"testing"

	"github.com/shinyvision/sniffctx/internal/php"
	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, path, src string) *token.File {
	t.Helper()
	f, err := php.Tokenize(path, []byte(src))
	require.NoError(t, err)
	return f
}

// marker returns the first code token following the /* name */ comment.
func marker(t *testing.T, f *token.File, name string) int {
	t.Helper()
	want := "/* " + name + " */"
	for pos, tok := range f.All() {
		if tok.Kind == token.KindComment && tok.Content == want {
			next := f.NextSignificant(pos)
			require.GreaterOrEqual(t, next, 0, "marker %s is not followed by code", name)
			return next
		}
	}
	require.FailNow(t, "marker not found", name)
	return -1
}

func nthOf(t *testing.T, f *token.File, kind token.Kind, n int) int {
	t.Helper()
	seen := 0
	for pos, tok := range f.All() {
		if tok.Kind != kind {
			continue
		}
		if seen == n {
			return pos
		}
		seen++
	}
	require.FailNow(t, "token not found", "%s #%d", kind, n)
	return -1
}

// trackAll replays the host loop: every target token is forwarded in order.
func trackAll(ctx *Context, f *token.File) {
	targets := map[token.Kind]bool{}
	for _, k := range ctx.TargetTokens() {
		targets[k] = true
	}
	for pos, tok := range f.All() {
		if targets[tok.Kind] {
			ctx.Track(f, pos)
		}
	}
}

func emptyTables() UseStatements {
	return NewUseStatements()
}
