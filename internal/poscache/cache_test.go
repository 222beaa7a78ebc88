package poscache

import (
	"testing"

	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/stretchr/testify/require"
)

func fileWith(path, content string) *token.File {
	return token.NewBuilder(path).Add(token.KindOpenTag, "<?php").Add(token.KindName, content).File()
}

func TestCacheStoresPerFile(t *testing.T) {
	c := New()
	a := fileWith("/a.php", "A")
	key := Key{Method: MethodNamespace, Position: 3}

	require.False(t, c.IsCached(a, key))
	c.Set(a, key, "App")
	require.True(t, c.IsCached(a, key))

	v, ok := Lookup[string](c, a, key)
	require.True(t, ok)
	require.Equal(t, "App", v)

	_, ok = Lookup[int](c, a, key)
	require.False(t, ok, "wrong type must miss")
}

func TestCacheInvalidatesOnFileSwitch(t *testing.T) {
	c := New()
	a := fileWith("/a.php", "A")
	b := fileWith("/b.php", "B")
	key := Key{Method: MethodUseStatements, Scope: 0, Position: 5}

	c.Set(a, key, 1)
	c.Set(a, Key{Method: MethodNamespace, Position: 1}, 2)
	require.Equal(t, 2, c.Len())

	require.False(t, c.IsCached(b, key))
	c.Set(b, key, 3)
	require.Equal(t, 1, c.Len())
	require.False(t, c.IsCached(a, key))

	v, ok := Lookup[int](c, b, key)
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestCacheEditedBufferIsNewFile(t *testing.T) {
	c := New()
	before := fileWith("/a.php", "A")
	after := fileWith("/a.php", "B")
	key := Key{Method: MethodNamespace, Position: 1}

	c.Set(before, key, "x")
	require.False(t, c.IsCached(after, key))
}

func TestCacheDisabled(t *testing.T) {
	c := New()
	a := fileWith("/a.php", "A")
	key := Key{Method: MethodSplitUse, Position: 1}

	c.Set(a, key, "kept")
	c.SetEnabled(false)
	require.False(t, c.Enabled())
	require.False(t, c.IsCached(a, key))

	c.Set(a, Key{Method: MethodSplitUse, Position: 2}, "dropped")
	c.SetEnabled(true)
	require.True(t, c.IsCached(a, key))
	require.False(t, c.IsCached(a, Key{Method: MethodSplitUse, Position: 2}))
}

func TestCacheClear(t *testing.T) {
	c := New()
	a := fileWith("/a.php", "A")
	c.Set(a, Key{Method: MethodNamespace}, "x")
	c.Clear()
	require.Zero(t, c.Len())
	require.False(t, c.IsCached(a, Key{Method: MethodNamespace}))
}
