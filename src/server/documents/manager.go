// Package documents tracks open editor documents and answers the line-text
// lookups the completion pipeline needs.
package documents

import (
	"strings"
	"sync"

	lsp "go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Document is an open file: identity, language scope, and current content
// split into lines.
type Document struct {
	URI        uri.URI
	LanguageID string
	Version    int
	lines      []string
}

// Manager tracks open documents by URI.
type Manager struct {
	mu   sync.RWMutex
	docs map[uri.URI]*Document
}

func NewManager() *Manager {
	return &Manager{docs: make(map[uri.URI]*Document)}
}

// Open registers a document with its full text.
func (m *Manager) Open(docURI uri.URI, languageID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[docURI] = &Document{
		URI:        docURI,
		LanguageID: languageID,
		Version:    1,
		lines:      splitLines(text),
	}
}

// Change replaces a document's content with new full text.
func (m *Manager) Change(docURI uri.URI, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.docs[docURI]; ok {
		doc.Version++
		doc.lines = splitLines(text)
	}
}

// Close forgets a document.
func (m *Manager) Close(docURI uri.URI) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, docURI)
}

// Get returns the open document for the URI, or nil when not open.
func (m *Manager) Get(docURI uri.URI) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docs[docURI]
}

// Path returns the document's filesystem path.
func (d *Document) Path() string {
	return d.URI.Filename()
}

// Line returns the text of a 0-based line, or "" when out of range.
func (d *Document) Line(line uint32) string {
	if int(line) >= len(d.lines) {
		return ""
	}
	return d.lines[line]
}

// TextBefore returns the current-line text strictly before the position.
func (d *Document) TextBefore(pos lsp.Position) string {
	line := d.Line(pos.Line)
	if int(pos.Character) >= len(line) {
		return line
	}
	return line[:pos.Character]
}

// TextAfter returns the current-line text at and after the position.
func (d *Document) TextAfter(pos lsp.Position) string {
	line := d.Line(pos.Line)
	if int(pos.Character) >= len(line) {
		return ""
	}
	return line[pos.Character:]
}

// InStringLike reports whether the position sits inside a string-like
// region on its line. This is a lexical scan of the line prefix: quote and
// template-literal delimiters toggle state, backslash escapes are skipped.
// Multi-line template literals are not recognized.
func (d *Document) InStringLike(pos lsp.Position) bool {
	prefix := d.TextBefore(pos)
	var open rune
	escaped := false
	for _, r := range prefix {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '\'', '"', '`':
			if open == 0 {
				open = r
			} else if open == r {
				open = 0
			}
		}
	}
	return open != 0
}

func splitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(normalized, "\n")
}
