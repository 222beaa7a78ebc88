package php

import (
	"context"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/shinyvision/sniffctx/internal/token"
)

// Document maintains a parsed PHP syntax tree together with the token stream
// derived from it. Edits are applied incrementally to the tree.
type Document struct {
	parser  *sitter.Parser
	mu      sync.RWMutex
	path    string
	tree    *sitter.Tree
	content []byte
	file    *token.File
	version int64
}

// NewDocument constructs a Document for the file at path.
func NewDocument(path string) *Document {
	return &Document{
		parser: newParser(),
		path:   path,
		file:   token.NewFile(path, nil),
	}
}

// Update notifies the document about new file contents. If change is nil, the file
// has been replaced entirely. Incremental edits can be provided via change.
func (d *Document) Update(code []byte, change *sitter.InputEdit) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.content = code
	if d.tree != nil && change != nil {
		d.tree.Edit(*change)
	}

	old := d.tree
	if change == nil {
		old = nil
	}
	newTree, err := d.parser.ParseString(context.Background(), old, code)
	if err != nil {
		logger.Errorf("could not parse %s: %v", d.path, err)
		return err
	}

	if d.tree != nil {
		d.tree.Close()
	}
	d.tree = newTree
	d.file = FileFromTree(d.path, newTree, code)
	d.version++
	return nil
}

// Close releases resources owned by the document.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
	d.content = nil
}

// Read executes the provided function while holding a read lock on the document.
// The callback must not store the tree or content beyond its scope.
func (d *Document) Read(fn func(tree *sitter.Tree, content []byte, file *token.File)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.tree, d.content, d.file)
}

// File returns the token stream of the latest parse. Token files are
// immutable and may be kept after further updates.
func (d *Document) File() *token.File {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.file
}

func (d *Document) Path() string {
	return d.path
}

// Version counts successful updates.
func (d *Document) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *Document) sameContent(code []byte) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree != nil && string(d.content) == string(code)
}
