// Package models defines server-side data models persisted in the database.
package models

import (
	"database/sql"
	"time"
)

// Collection is a named, ordered set of pages worked through together
// (a mission in the transcription project).
type Collection struct {
	ID        int64
	Name      string
	ShortName string
	StartsOn  time.Time
	// EndsOn is unset while the end date is unknown.
	EndsOn    sql.NullTime
	// Wiki links to a reference article about the mission, if any.
	Wiki      string
	Active    bool
}

// Progress holds raw page counts for a collection.
type Progress struct {
	Total    int64
	Approved int64
	// Cleaned counts pages with at least one revision.
	Cleaned int64
}
