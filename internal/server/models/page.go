package models

import (
	"database/sql"
	"time"
)

// Page is the unit of work: one page of a collection, with its immutable
// original text and an embedded lease.
type Page struct {
	ID           int64
	CollectionID int64
	Number       int
	OriginalText string
	Approved     bool

	// LockedBy and LockedUntil are set together or not at all.
	LockedBy    sql.NullString
	LockedUntil sql.NullTime
}

// LeaseState classifies a page lease at a given instant.
type LeaseState int

const (
	LeaseAbsent LeaseState = iota
	LeaseActive
	LeaseExpired
)

func (s LeaseState) String() string {
	switch s {
	case LeaseActive:
		return "active"
	case LeaseExpired:
		return "expired"
	default:
		return "absent"
	}
}

// Lease is the decoded form of a page's lock columns.
type Lease struct {
	State     LeaseState
	Holder    string
	ExpiresAt time.Time
}

// Lease decodes the lock columns relative to now. A lease expiring exactly
// at now is still active; it is expired only once now is past ExpiresAt.
func (p *Page) Lease(now time.Time) Lease {
	if !p.LockedBy.Valid || !p.LockedUntil.Valid {
		return Lease{State: LeaseAbsent}
	}
	l := Lease{Holder: p.LockedBy.String, ExpiresAt: p.LockedUntil.Time, State: LeaseActive}
	if p.LockedUntil.Time.Before(now) {
		l.State = LeaseExpired
	}
	return l
}

// IsLeaseActive reports whether someone holds an unexpired lease on p.
func (p *Page) IsLeaseActive(now time.Time) bool {
	return p.Lease(now).State == LeaseActive
}
