// Package household implements resolution of incoming report records to
// canonical household entities. There is no stable external key for a
// household, so matching is heuristic: a normalized name+zip key with a
// zip-prefix fallback. Duplicate households are possible and tolerated.
package household

import (
	"time"

	"github.com/google/uuid"
)

// Status values for a household.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Household is the resolved real-world customer unit that detail records
// attach to. Shared by all four upload pipelines; the first writer creates it.
type Household struct {
	ID                uuid.UUID
	AgencyID          uuid.UUID
	FirstName         string
	LastName          string
	ZipCode           string
	Status            string
	ContactID         *uuid.UUID
	MatchKey          string
	PolicyCount       int
	TotalPremiumCents int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Candidate is one incoming record's household-identifying fields, keyed by
// its match key. Records sharing a key collapse into a single candidate.
type Candidate struct {
	Key       string
	FirstName string
	LastName  string
	ZipCode   string
}

// NewCandidate builds a candidate from raw record fields.
func NewCandidate(firstName, lastName, zipCode string) Candidate {
	return Candidate{
		Key:       MatchKey(firstName, lastName, zipCode),
		FirstName: firstName,
		LastName:  lastName,
		ZipCode:   zipCode,
	}
}

// CreateParams holds the fields for creating a new household.
type CreateParams struct {
	AgencyID  uuid.UUID
	FirstName string
	LastName  string
	ZipCode   string
	MatchKey  string
}
