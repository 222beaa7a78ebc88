package php

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("sniffctx.php")

// DocumentStore maintains a bounded set of parsed PHP documents. Open
// documents are pinned; closed and loaded-from-disk documents live in an LRU
// and are released on eviction.
type DocumentStore struct {
	mu       sync.Mutex
	open     map[string]*Document
	closed   *lru.Cache[string, *Document]
	reviving string
}

// NewDocumentStore constructs a store keeping at most max unpinned documents.
func NewDocumentStore(max int) *DocumentStore {
	if max <= 0 {
		max = 1000
	}
	s := &DocumentStore{
		open: make(map[string]*Document),
	}
	closed, err := lru.NewWithEvict(max, func(path string, doc *Document) {
		if path == s.reviving {
			return
		}
		logger.Debugf("releasing %s", path)
		doc.Close()
	})
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	s.closed = closed
	return s
}

// Open registers a document as currently open with the given text. A closed
// document with identical content is reused without reparsing. The document
// will not be evicted until Close is invoked for the same path.
func (s *DocumentStore) Open(path string, text []byte) (*Document, error) {
	path = normalizePath(path)
	if path == "" {
		return nil, errors.New("empty path")
	}

	s.mu.Lock()
	doc, ok := s.open[path]
	if !ok {
		if cached, found := s.closed.Peek(path); found {
			if cached.sameContent(text) {
				s.reviving = path
				s.closed.Remove(path)
				s.reviving = ""
				s.open[path] = cached
				s.mu.Unlock()
				return cached, nil
			}
			s.closed.Remove(path)
		}
	}
	s.mu.Unlock()

	if doc != nil && doc.sameContent(text) {
		return doc, nil
	}
	if doc == nil {
		doc = NewDocument(path)
	}
	if err := doc.Update(text, nil); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.open[path] = doc
	s.mu.Unlock()
	return doc, nil
}

// Edit applies an incremental change to the open document for path. text is
// the full content after the change. A path that is not open is opened.
func (s *DocumentStore) Edit(path string, text []byte, change *sitter.InputEdit) (*Document, error) {
	path = normalizePath(path)
	s.mu.Lock()
	doc, ok := s.open[path]
	s.mu.Unlock()
	if !ok {
		return s.Open(path, text)
	}
	if err := doc.Update(text, change); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns the open document for path.
func (s *DocumentStore) Get(path string) (*Document, bool) {
	path = normalizePath(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.open[path]
	return doc, ok
}

// Close marks a document as no longer open. It becomes eligible for eviction.
func (s *DocumentStore) Close(path string) {
	path = normalizePath(path)
	if path == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.open[path]; ok {
		delete(s.open, path)
		s.closed.Add(path, doc)
	}
}

// Load retrieves the document for path, reading and parsing it from disk when
// it is neither open nor cached.
func (s *DocumentStore) Load(path string) (*Document, error) {
	path = normalizePath(path)
	if path == "" {
		return nil, errors.New("empty path")
	}

	s.mu.Lock()
	if doc, ok := s.open[path]; ok {
		s.mu.Unlock()
		return doc, nil
	}
	if doc, ok := s.closed.Get(path); ok {
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(path)
	if err := doc.Update(data, nil); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.open[path]; ok {
		doc.Close()
		return existing, nil
	}
	if existing, ok := s.closed.Get(path); ok {
		doc.Close()
		return existing, nil
	}
	s.closed.Add(path, doc)
	return doc, nil
}

// Len returns the number of open and cached documents.
func (s *DocumentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open) + s.closed.Len()
}

func normalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
