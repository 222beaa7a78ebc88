package tracking

import (
	"testing"

	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/stretchr/testify/require"
)

const mixedNamespacesSrc = `<?php
namespace /* testFirstHeader */ Foo\Bar {
    /* testInFirst */ class A {}
}
/* testBetween */ $x = 1;
namespace /* testSecondHeader */ Baz;
/* testInSecond */ class B {}
`

func TestNamespaceTrackerScopedThenUnscoped(t *testing.T) {
	f := parse(t, "/tmp/ns.php", mixedNamespacesSrc)
	tr := NewContext(nil).Namespaces

	tests := []struct {
		marker string
		want   string
	}{
		{"testFirstHeader", ""},
		{"testInFirst", `Foo\Bar`},
		{"testBetween", ""},
		{"testSecondHeader", ""},
		{"testInSecond", "Baz"},
	}
	for _, tt := range tests {
		got, err := tr.GetNamespace(f, marker(t, f, tt.marker))
		require.NoError(t, err)
		require.Equal(t, tt.want, got, tt.marker)
	}

	info, err := tr.GetNamespaceInfo(f, marker(t, f, "testInSecond"))
	require.NoError(t, err)
	require.True(t, info.IsOpen())
	require.Equal(t, "Baz", info.Name)

	_, err = tr.GetNamespace(f, f.Len()-1)
	require.NoError(t, err)

	brace := nthOf(t, f, token.KindOpenCurly, 0)
	closer := f.Match(brace)
	semicolon := f.FindNext(nthOf(t, f, token.KindNamespace, 1), token.KindSemicolon)
	require.Equal(t, []Segment{
		{Start: 0, End: brace, Name: ""},
		{Start: brace + 1, End: closer, Name: `Foo\Bar`},
		{Start: closer + 1, End: semicolon, Name: ""},
		{Start: semicolon + 1, End: NoPosition, Name: "Baz"},
	}, tr.Segments())
}

func TestNamespaceTrackerSegmentsAreContiguous(t *testing.T) {
	f := parse(t, "/tmp/contig.php", mixedNamespacesSrc)
	tr := NewContext(nil).Namespaces
	require.NoError(t, tr.EnsureTrackedUpTo(f, f.Len()-1))

	segments := tr.Segments()
	open := 0
	for i, seg := range segments {
		if seg.IsOpen() {
			open++
			continue
		}
		require.Equal(t, seg.End+1, segments[i+1].Start)
	}
	require.Equal(t, 1, open)
	require.True(t, segments[len(segments)-1].IsOpen())

	for pos := 0; pos < f.Len(); pos++ {
		info, err := tr.GetNamespaceInfo(f, pos)
		require.NoError(t, err)
		require.True(t, info.Contains(pos), "segment %+v must contain %d", info, pos)
	}
}

func TestNamespaceTrackerMonotonicity(t *testing.T) {
	f := parse(t, "/tmp/mono.php", mixedNamespacesSrc)
	tr := NewContext(nil).Namespaces
	require.Zero(t, tr.LastSeenPtr())

	second := nthOf(t, f, token.KindNamespace, 1)
	tr.Track(f, second)
	require.Equal(t, second, tr.LastSeenPtr())
	segments := tr.Segments()

	tr.Track(f, 1)
	tr.Track(f, second)
	tr.Track(f, -1)
	tr.Track(f, f.Len())
	require.Equal(t, second, tr.LastSeenPtr())
	require.Equal(t, segments, tr.Segments())
}

func TestNamespaceTrackerBackfillIdempotence(t *testing.T) {
	f := parse(t, "/tmp/backfill.php", mixedNamespacesSrc)
	tr := NewContext(nil).Namespaces

	target := marker(t, f, "testInSecond")
	got, err := tr.GetNamespace(f, target)
	require.NoError(t, err)
	require.Equal(t, "Baz", got)
	require.Equal(t, target, tr.LastSeenPtr())
	segments := tr.Segments()

	tr.Track(f, nthOf(t, f, token.KindNamespace, 0))
	tr.Track(f, nthOf(t, f, token.KindNamespace, 1))
	require.Equal(t, target, tr.LastSeenPtr())
	require.Equal(t, segments, tr.Segments())

	again, err := tr.GetNamespace(f, target)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestNamespaceTrackerIgnoresNamespaceOperator(t *testing.T) {
	src := `<?php
namespace App;
/* testCall */ namespace\helper();
/* testEnd */ echo 1;
`
	f := parse(t, "/tmp/operator.php", src)
	tr := NewContext(nil).Namespaces

	got, err := tr.GetNamespace(f, marker(t, f, "testEnd"))
	require.NoError(t, err)
	require.Equal(t, "App", got)
	require.Len(t, tr.Segments(), 2)
	require.False(t, IsNamespaceDeclaration(f, marker(t, f, "testCall")))
}

func TestNamespaceTrackerDeclarationAfterCode(t *testing.T) {
	src := `<?php
$x = 1;
namespace Late;
/* testEnd */ echo 1;
`
	f := parse(t, "/tmp/late.php", src)
	tr := NewContext(nil).Namespaces

	got, err := tr.GetNamespace(f, marker(t, f, "testEnd"))
	require.NoError(t, err)
	require.Equal(t, "Late", got)

	segments := tr.Segments()
	require.Len(t, segments, 2)
	require.Equal(t, 0, segments[0].Start)
	require.False(t, segments[0].IsOpen())
}

func TestNamespaceTrackerNestedDeclarationIgnored(t *testing.T) {
	src := `<?php
namespace Outer {
    namespace Inner {
        /* testInner */ echo 1;
    }
}
/* testAfter */ echo 2;
`
	f := parse(t, "/tmp/nested.php", src)
	tr := NewContext(nil).Namespaces

	got, err := tr.GetNamespace(f, marker(t, f, "testInner"))
	require.NoError(t, err)
	require.Equal(t, "Outer", got)

	got, err = tr.GetNamespace(f, marker(t, f, "testAfter"))
	require.NoError(t, err)
	require.Empty(t, got)
	require.Len(t, tr.Segments(), 3)
}

func TestNamespaceTrackerLiveCoding(t *testing.T) {
	src := "<?php\nnamespace Open {\n    class Foo {\n"
	f := parse(t, "/tmp/live.php", src)
	tr := NewContext(nil).Namespaces

	info, err := tr.GetNamespaceInfo(f, f.Len()-1)
	require.NoError(t, err)
	require.Equal(t, "Open", info.Name)
	require.True(t, info.IsOpen())

	unterminated := parse(t, "/tmp/live2.php", "<?php\nnamespace Half")
	got, err := tr.GetNamespace(unterminated, unterminated.Len()-1)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Len(t, tr.Segments(), 1)
}

func TestNamespaceTrackerResetOnFileSwitch(t *testing.T) {
	a := parse(t, "/tmp/a.php", mixedNamespacesSrc)
	b := parse(t, "/tmp/b.php", "<?php\nnamespace Other;\n/* testEnd */ echo 1;\n")
	ctx := NewContext(nil)

	trackAll(ctx, a)
	require.Len(t, ctx.Namespaces.Segments(), 4)

	end := marker(t, b, "testEnd")
	got, err := ctx.Namespaces.GetNamespace(b, end)
	require.NoError(t, err)
	require.Equal(t, "Other", got)
	require.Len(t, ctx.Namespaces.Segments(), 2)
	require.Equal(t, end, ctx.Namespaces.LastSeenPtr())

	ctx.Namespaces.Reset()
	require.Zero(t, ctx.Namespaces.LastSeenPtr())
	require.Equal(t, []Segment{{Start: 0, End: NoPosition}}, ctx.Namespaces.Segments())
}

func TestNamespaceTrackerErrors(t *testing.T) {
	f := parse(t, "/tmp/err.php", mixedNamespacesSrc)
	tr := NewContext(nil).Namespaces

	_, err := tr.GetNamespaceInfo(f, f.Len())
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = tr.GetNamespace(f, -2)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = tr.GetNamespace(nil, 1)
	require.ErrorIs(t, err, ErrNoFile)
	require.Zero(t, tr.LastSeenPtr())
}

func TestNamespaceTrackerCachesLookups(t *testing.T) {
	f := parse(t, "/tmp/cached.php", mixedNamespacesSrc)
	ctx := NewContext(nil)

	pos := marker(t, f, "testInFirst")
	first, err := ctx.Namespaces.GetNamespaceInfo(f, pos)
	require.NoError(t, err)
	require.Equal(t, 1, ctx.Cache.Len())

	_, err = ctx.Namespaces.GetNamespaceInfo(f, f.Len()-1)
	require.NoError(t, err)

	again, err := ctx.Namespaces.GetNamespaceInfo(f, pos)
	require.NoError(t, err)
	require.Equal(t, first, again)
}
