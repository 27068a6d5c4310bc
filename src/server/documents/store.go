// Package documents owns the per-document parse cache: one immutable
// ParsedDocument per open URI, replaced wholesale on every change and removed
// on close. Readers always see a complete snapshot because entries are never
// mutated in place.
package documents

import (
	"sync"

	"github.com/datstarkey/svelte-proxy-lsp/src/parser"
)

// Store maps open document URIs to their latest parse. It is an explicit
// dependency of the orchestrator rather than process-wide state so tests can
// run independent instances in parallel.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*parser.ParsedDocument
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*parser.ParsedDocument)}
}

// Open parses content and stores the result, replacing any previous entry.
func (s *Store) Open(uri string, content string, version int32) *parser.ParsedDocument {
	doc := parser.Parse(uri, content, version)
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Update re-parses content for an already-open document. There is no
// incremental diffing: every change is a full re-parse.
func (s *Store) Update(uri string, content string, version int32) *parser.ParsedDocument {
	return s.Open(uri, content, version)
}

// Get returns the cached parse for uri, or nil if the document is not open.
// Requests against unknown URIs never trigger fallback parsing.
func (s *Store) Get(uri string) *parser.ParsedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// Close removes the entry for uri.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Len returns the number of open documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
