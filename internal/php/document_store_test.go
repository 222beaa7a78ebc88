package php

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/stretchr/testify/require"
)

func TestDocumentStoreOpenClose(t *testing.T) {
	store := NewDocumentStore(10)
	path := "/tmp/dummy.php"

	doc, err := store.Open(path, []byte("<?php\nnamespace App;\n"))
	require.NoError(t, err)
	require.Equal(t, int64(1), doc.Version())

	got, ok := store.Get(path)
	require.True(t, ok)
	require.Same(t, doc, got)

	store.Close(path)
	_, ok = store.Get(path)
	require.False(t, ok)
	require.Equal(t, 1, store.Len())

	// Reopening with the same text reuses the parsed document.
	again, err := store.Open(path, []byte("<?php\nnamespace App;\n"))
	require.NoError(t, err)
	require.Same(t, doc, again)
	require.Equal(t, int64(1), again.Version())
	require.Equal(t, token.KindNamespace, again.File().At(1).Kind)

	store.Close(path)
	changed, err := store.Open(path, []byte("<?php\nnamespace Other;\n"))
	require.NoError(t, err)
	require.NotSame(t, doc, changed)
	require.Equal(t, "Other", changed.File().At(2).Content)
}

func TestDocumentStoreEvictsClosedDocuments(t *testing.T) {
	store := NewDocumentStore(1)

	_, err := store.Open("/tmp/a.php", []byte("<?php\n"))
	require.NoError(t, err)
	_, err = store.Open("/tmp/b.php", []byte("<?php\n"))
	require.NoError(t, err)

	store.Close("/tmp/a.php")
	store.Close("/tmp/b.php")
	require.Equal(t, 1, store.Len())
}

func TestDocumentStoreLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php\nuse A\\B;\n"), 0o644))

	store := NewDocumentStore(10)
	doc, err := store.Load(path)
	require.NoError(t, err)
	require.Equal(t, token.KindUse, doc.File().At(1).Kind)

	cached, err := store.Load(path)
	require.NoError(t, err)
	require.Same(t, doc, cached)

	_, err = store.Load(filepath.Join(dir, "Missing.php"))
	require.Error(t, err)
}

func TestDocumentIncrementalUpdate(t *testing.T) {
	doc := NewDocument("/tmp/inc.php")
	require.NoError(t, doc.Update([]byte("<?php\nnamespace A;\n"), nil))
	first := doc.File()

	require.NoError(t, doc.Update([]byte("<?php\nnamespace B;\n"), nil))
	second := doc.File()

	require.NotEqual(t, first.Identity(), second.Identity())
	require.Equal(t, "A", first.At(2).Content)
	require.Equal(t, "B", second.At(2).Content)
	doc.Close()
}

func TestDocumentStoreEditAppliesChange(t *testing.T) {
	store := NewDocumentStore(10)
	path := "/tmp/edit.php"
	old := []byte("<?php\nnamespace A;\nuse B\\C;\n")
	doc, err := store.Open(path, old)
	require.NoError(t, err)

	// Rename namespace A to Alpha.
	start := len("<?php\nnamespace ")
	edit := NewInputEdit(old, start, start+1, "Alpha")
	text := []byte("<?php\nnamespace Alpha;\nuse B\\C;\n")
	edited, err := store.Edit(path, text, &edit)
	require.NoError(t, err)
	require.Same(t, doc, edited)
	require.Equal(t, int64(2), edited.Version())

	file := edited.File()
	require.Equal(t, "Alpha", file.At(2).Content)
	require.Equal(t, token.KindUse, file.At(4).Kind)
	require.Equal(t, 2, file.At(4).Line)

	// A path that is not open is opened from the full text.
	fresh, err := store.Edit("/tmp/fresh.php", text, nil)
	require.NoError(t, err)
	require.Equal(t, "Alpha", fresh.File().At(2).Content)
}

func TestDocumentStoreConcurrentLoadSharesDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Shared.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php\nnamespace Shared;\n"), 0o644))

	store := NewDocumentStore(10)
	docs := make([]*Document, 8)
	errs := make([]error, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs[i], errs[i] = store.Load(path)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	for _, doc := range docs[1:] {
		require.Same(t, docs[0], doc)
	}
	require.Equal(t, 1, store.Len())
}
