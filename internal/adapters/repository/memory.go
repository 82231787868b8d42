package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/wikitext"
)

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps pages in memory. It backs dry runs from fixtures and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	pages    map[string]Page
	revision int
	saves    []Page
}

// NewMemoryStore creates a store seeded with the given pages.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{pages: make(map[string]Page)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put creates or replaces a page and stamps a fresh revision.
func (s *MemoryStore) Put(title, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(title, text)
}

func (s *MemoryStore) putLocked(title, text string) Page {
	s.revision++
	p := Page{Title: title, Text: text, BaseTimestamp: strconv.Itoa(s.revision)}
	s.pages[title] = p
	return p
}

func (s *MemoryStore) Get(_ context.Context, title string) (Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[title]
	if !ok {
		return Page{}, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return p, nil
}

func (s *MemoryStore) Save(_ context.Context, page Page, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.pages[page.Title]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, page.Title)
	}
	if page.BaseTimestamp != "" && page.BaseTimestamp != cur.BaseTimestamp {
		return fmt.Errorf("%w: %q", ErrEditConflict, page.Title)
	}
	s.saves = append(s.saves, s.putLocked(page.Title, page.Text))
	return nil
}

// ListReferring scans every page for a call of the template.
func (s *MemoryStore) ListReferring(_ context.Context, template string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var titles []string
	for title, p := range s.pages {
		if _, err := wikitext.Find(p.Text, template); err == nil {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles, nil
}

// Saves returns the pages written so far, in order.
func (s *MemoryStore) Saves() []Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Page(nil), s.saves...)
}
