package models

// User carries the contribution counters kept by the score ledger.
type User struct {
	ID            string
	Name          string
	PagesCleaned  int64
	PagesApproved int64
	Score         float64
}
