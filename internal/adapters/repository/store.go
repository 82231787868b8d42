// Package repository defines where game pages are read from and written to,
// and where edits are journaled.
package repository

import (
	"context"
	"time"
)

// Page is the source of one wiki page at a given revision.
type Page struct {
	Title string
	Text  string
	// BaseTimestamp is the revision timestamp the text was read at. Saves
	// against a stale timestamp are rejected as edit conflicts.
	BaseTimestamp string
}

// Store provides read/write access to wiki pages.
type Store interface {
	// Get returns the latest revision of a page. Returns ErrNotFound if the page is missing.
	Get(ctx context.Context, title string) (Page, error)

	// Save writes new text for an existing page.
	Save(ctx context.Context, page Page, summary string) error

	// ListReferring returns the titles of pages that transclude the template.
	ListReferring(ctx context.Context, template string) ([]string, error)
}

// Edit is one journal row.
type Edit struct {
	RunID   string
	Title   string
	OldHash string
	NewHash string
	Summary string
	Saved   bool
	At      time.Time
}

// Journal records the edits made (or proposed, on dry runs) by the bot.
type Journal interface {
	Record(ctx context.Context, e Edit) error
	Close() error
}

// NopJournal discards every edit.
type NopJournal struct{}

func (NopJournal) Record(context.Context, Edit) error { return nil }
func (NopJournal) Close() error                       { return nil }
