// Package contact maintains the canonical cross-subsystem contact registry
// and links contacts to households. Linking is an enrichment: failures are
// logged and swallowed, never failing an upload.
package contact

import (
	"time"

	"github.com/google/uuid"
)

// Contact is the canonical identity record linked to a household.
type Contact struct {
	ID             uuid.UUID
	AgencyID       uuid.UUID
	FirstName      string
	LastName       string
	PhoneNumbers   []string
	EmailAddresses []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Info carries the identifying fields and channels an upload record knows
// about a contact.
type Info struct {
	FirstName string
	LastName  string
	Phones    []string
	Emails    []string
}

// CreateParams holds the fields for creating a new contact.
type CreateParams struct {
	AgencyID       uuid.UUID
	FirstName      string
	LastName       string
	PhoneNumbers   []string
	EmailAddresses []string
}
