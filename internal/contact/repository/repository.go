package repository

import (
	"context"
	"errors"

	"agencyhub_backend/internal/contact"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("contact not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const contactColumns = `id, agency_id, first_name, last_name, phone_numbers, email_addresses, created_at, updated_at`

func scanContact(row pgx.Row) (contact.Contact, error) {
	var c contact.Contact
	err := row.Scan(
		&c.ID, &c.AgencyID, &c.FirstName, &c.LastName, &c.PhoneNumbers, &c.EmailAddresses,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// FindByName looks up a contact by case-insensitive first/last name. The
// oldest contact wins when several share a name.
func (r *Repository) FindByName(ctx context.Context, agencyID uuid.UUID, firstName, lastName string) (contact.Contact, bool, error) {
	c, err := scanContact(r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE agency_id = $1
		  AND lower(first_name) = lower(trim($2))
		  AND lower(last_name) = lower(trim($3))
		ORDER BY created_at ASC
		LIMIT 1
	`, agencyID, firstName, lastName))
	if errors.Is(err, pgx.ErrNoRows) {
		return contact.Contact{}, false, nil
	}
	if err != nil {
		return contact.Contact{}, false, err
	}
	return c, true, nil
}

func (r *Repository) Create(ctx context.Context, params contact.CreateParams) (contact.Contact, error) {
	return scanContact(r.pool.QueryRow(ctx, `
		INSERT INTO contacts (agency_id, first_name, last_name, phone_numbers, email_addresses)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contactColumns+`
	`, params.AgencyID, params.FirstName, params.LastName, params.PhoneNumbers, params.EmailAddresses))
}

func (r *Repository) GetByID(ctx context.Context, id, agencyID uuid.UUID) (contact.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE id = $1 AND agency_id = $2
	`, id, agencyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return contact.Contact{}, ErrNotFound
	}
	return c, err
}

// MergeChannels adds phone numbers and emails the contact does not already
// have, preserving existing entries and order.
func (r *Repository) MergeChannels(ctx context.Context, id uuid.UUID, phones, emails []string) error {
	if len(phones) == 0 && len(emails) == 0 {
		return nil
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE contacts SET
			phone_numbers = (
				SELECT array_agg(DISTINCT p) FROM unnest(phone_numbers || $2::text[]) AS p
			),
			email_addresses = (
				SELECT array_agg(DISTINCT e) FROM unnest(email_addresses || $3::text[]) AS e
			),
			updated_at = now()
		WHERE id = $1
	`, id, phones, emails)
	return err
}

// Compile-time check that Repository satisfies the registrar's store surface.
var _ contact.Store = (*Repository)(nil)
