package pipeline

import (
	"sync"
	"time"
)

// DefaultHistorySize is how many recent translations the UI list keeps.
const DefaultHistorySize = 8

// HistoryEntry is one finished translation.
type HistoryEntry struct {
	Source     string    `json:"source"`
	SourceLang string    `json:"source_lang,omitempty"`
	Translated string    `json:"translated"`
	Cached     bool      `json:"cached"`
	At         time.Time `json:"at"`
}

// History is a bounded, newest-first list of translations.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
	size    int
}

func NewHistory(size int) *History {
	if size < 1 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

// Add prepends an entry, dropping the oldest once over capacity.
func (h *History) Add(source, sourceLang, translated string, cached bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]HistoryEntry{{
		Source:     source,
		SourceLang: sourceLang,
		Translated: translated,
		Cached:     cached,
		At:         time.Now(),
	}}, h.entries...)
	if len(h.entries) > h.size {
		h.entries = h.entries[:h.size]
	}
}

// Entries returns a copy of the list, newest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
