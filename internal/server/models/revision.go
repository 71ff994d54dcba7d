package models

import "time"

// Revision is one user's submitted text for a page. Revisions are never
// updated; a user revises a page at most once.
type Revision struct {
	ID        int64
	PageID    int64
	AuthorID  string
	Text      string
	CreatedAt time.Time
}

// RevisionKind says what a committed revision did to the page.
type RevisionKind string

const (
	// RevisionCleaned means the text was changed.
	RevisionCleaned RevisionKind = "cleaned"
	// RevisionApproved means the text was confirmed unchanged.
	RevisionApproved RevisionKind = "approved"
)
