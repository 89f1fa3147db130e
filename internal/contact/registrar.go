package contact

import (
	"context"
	"strings"

	"agencyhub_backend/platform/logger"
	"agencyhub_backend/platform/phone"

	"github.com/google/uuid"
)

// Store is the persistence surface of the contact registry.
type Store interface {
	// FindByName looks up a contact by case-insensitive name.
	FindByName(ctx context.Context, agencyID uuid.UUID, firstName, lastName string) (Contact, bool, error)

	// Create inserts a new contact.
	Create(ctx context.Context, params CreateParams) (Contact, error)

	// MergeChannels adds any phone numbers and email addresses the contact
	// does not already have.
	MergeChannels(ctx context.Context, id uuid.UUID, phones, emails []string) error
}

// HouseholdLinker writes the contact link onto a household. The link is
// append-only: implementations must only fill it when unset.
type HouseholdLinker interface {
	LinkContact(ctx context.Context, householdID, contactID uuid.UUID) (bool, error)
}

// Registrar finds or creates canonical contacts for households that lack one.
type Registrar struct {
	store  Store
	linker HouseholdLinker
	log    *logger.Logger
}

// NewRegistrar creates a contact registrar.
func NewRegistrar(store Store, linker HouseholdLinker, log *logger.Logger) *Registrar {
	return &Registrar{store: store, linker: linker, log: log}
}

// Register finds or creates a contact for the given info and links it to the
// household. Best-effort: every failure is logged and reported as not linked,
// never propagated. A household without a usable last name is skipped.
func (r *Registrar) Register(ctx context.Context, agencyID, householdID uuid.UUID, info Info) (uuid.UUID, bool) {
	lastName := strings.TrimSpace(info.LastName)
	if lastName == "" {
		return uuid.Nil, false
	}
	firstName := strings.TrimSpace(info.FirstName)

	phones := normalizePhones(info.Phones)
	emails := normalizeEmails(info.Emails)

	existing, found, err := r.store.FindByName(ctx, agencyID, firstName, lastName)
	if err != nil {
		r.log.Warn("contact lookup failed", "agency_id", agencyID, "household_id", householdID, "error", err)
		return uuid.Nil, false
	}

	var contactID uuid.UUID
	if found {
		contactID = existing.ID
		if len(phones) > 0 || len(emails) > 0 {
			if err := r.store.MergeChannels(ctx, contactID, phones, emails); err != nil {
				r.log.Warn("contact channel merge failed", "contact_id", contactID, "error", err)
			}
		}
	} else {
		created, err := r.store.Create(ctx, CreateParams{
			AgencyID:       agencyID,
			FirstName:      firstName,
			LastName:       lastName,
			PhoneNumbers:   phones,
			EmailAddresses: emails,
		})
		if err != nil {
			r.log.Warn("contact create failed", "agency_id", agencyID, "household_id", householdID, "error", err)
			return uuid.Nil, false
		}
		contactID = created.ID
	}

	linked, err := r.linker.LinkContact(ctx, householdID, contactID)
	if err != nil {
		r.log.Warn("contact link failed", "household_id", householdID, "contact_id", contactID, "error", err)
		return uuid.Nil, false
	}
	if !linked {
		// A concurrent or earlier pipeline already set the link; that one wins.
		return contactID, false
	}

	return contactID, true
}

func normalizePhones(phones []string) []string {
	out := make([]string, 0, len(phones))
	seen := make(map[string]struct{}, len(phones))
	for _, p := range phones {
		normalized := phone.NormalizeE164(p)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		normalized := strings.ToLower(strings.TrimSpace(e))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
