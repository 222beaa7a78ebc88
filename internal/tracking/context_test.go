package tracking

import (
	"testing"

	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/stretchr/testify/require"
)

const roundTripSrc = `<?php
namespace App\Http {
    use Psr\Log\LoggerInterface;
    use function Vendor\{first, second as other};
    class Controller {
        use Loggable;
    }
}
namespace {
    use const Vendor\LIMIT;
    $x = function () use ($y) {};
}
`

func TestContextQueryMatchesFullSweep(t *testing.T) {
	f := parse(t, "/tmp/round.php", roundTripSrc)
	end := f.Len() - 1

	swept := NewContext(nil)
	trackAll(swept, f)
	swept.Track(f, end)

	queried := NewContext(nil)
	_, err := queried.Imports.GetUseStatements(f, end)
	require.NoError(t, err)
	_, err = queried.Namespaces.GetNamespace(f, end)
	require.NoError(t, err)

	require.Equal(t, swept.Imports.seen, queried.Imports.seen)
	require.Equal(t, swept.Namespaces.Segments(), queried.Namespaces.Segments())
	require.Equal(t, end, queried.Imports.LastSeenPtr())
	require.Equal(t, end, queried.Namespaces.LastSeenPtr())

	for pos := range f.Len() {
		a, err := swept.Imports.GetUseStatements(f, pos)
		require.NoError(t, err)
		b, err := queried.Imports.GetUseStatements(f, pos)
		require.NoError(t, err)
		require.Equal(t, a, b, "imports at %d", pos)

		na, err := swept.Namespaces.GetNamespace(f, pos)
		require.NoError(t, err)
		nb, err := queried.Namespaces.GetNamespace(f, pos)
		require.NoError(t, err)
		require.Equal(t, na, nb, "namespace at %d", pos)
	}
}

func TestContextScopesImportsPerNamespace(t *testing.T) {
	f := parse(t, "/tmp/scoped.php", roundTripSrc)
	ctx := NewContext(nil)

	inClass := nthOf(t, f, token.KindUse, 2)
	got, err := ctx.Imports.GetUseStatements(f, inClass)
	require.NoError(t, err)
	require.Equal(t, UseStatements{
		Name:     map[string]string{"LoggerInterface": `Psr\Log\LoggerInterface`},
		Function: map[string]string{"first": `Vendor\first`, "other": `Vendor\second`},
		Const:    map[string]string{},
	}, got)
	ns, err := ctx.Namespaces.GetNamespace(f, inClass)
	require.NoError(t, err)
	require.Equal(t, `App\Http`, ns)

	global := nthOf(t, f, token.KindDollar, 0)
	got, err = ctx.Imports.GetUseStatements(f, global)
	require.NoError(t, err)
	require.Equal(t, UseStatements{
		Name:     map[string]string{},
		Function: map[string]string{},
		Const:    map[string]string{"LIMIT": `Vendor\LIMIT`},
	}, got)
	ns, err = ctx.Namespaces.GetNamespace(f, global)
	require.NoError(t, err)
	require.Empty(t, ns)
}

func TestContextTargetTokens(t *testing.T) {
	ctx := NewContext(nil)
	require.Equal(t, []token.Kind{token.KindNamespace, token.KindUse}, ctx.TargetTokens())
}

func TestDefaultContextIsShared(t *testing.T) {
	a := Default()
	b := Default()
	require.Same(t, a, b)
	require.NotNil(t, a.Cache)
	require.True(t, a.Cache.Enabled())
}
