package state

import (
	"sync"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

type buffer struct {
	text    string
	version protocol.Integer
	timer   *time.Timer
}

// State holds the text of the documents open in the editor together with
// any pending debounced work for them.
type State struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentUri]*buffer
}

func NewState() *State {
	return &State{
		docs: make(map[protocol.DocumentUri]*buffer),
	}
}

// GetDocument retrieves a document's text and version.
func (s *State) GetDocument(uri protocol.DocumentUri) (string, protocol.Integer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return "", 0, false
	}
	return doc.text, doc.version, true
}

// SetDocument adds or updates a document.
func (s *State) SetDocument(uri protocol.DocumentUri, text string, version protocol.Integer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok {
		doc.text = text
		doc.version = version
		return
	}
	s.docs[uri] = &buffer{text: text, version: version}
}

// DeleteDocument removes a document and cancels its pending work.
func (s *State) DeleteDocument(uri protocol.DocumentUri) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok && doc.timer != nil {
		doc.timer.Stop()
	}
	delete(s.docs, uri)
}

// Schedule runs fn after delay unless the document is scheduled again, or
// deleted, first. Unknown documents are ignored.
func (s *State) Schedule(uri protocol.DocumentUri, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return
	}
	if doc.timer != nil {
		doc.timer.Stop()
	}
	doc.timer = time.AfterFunc(delay, fn)
}

// Len returns the number of open documents.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
