package repository

import (
	"context"
	"errors"

	"agencyhub_backend/internal/household"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("household not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const householdColumns = `id, agency_id, first_name, last_name, zip_code, status, contact_id, match_key,
	policy_count, total_premium_cents, created_at, updated_at`

func scanHousehold(row pgx.Row) (household.Household, error) {
	var h household.Household
	err := row.Scan(
		&h.ID, &h.AgencyID, &h.FirstName, &h.LastName, &h.ZipCode, &h.Status, &h.ContactID, &h.MatchKey,
		&h.PolicyCount, &h.TotalPremiumCents, &h.CreatedAt, &h.UpdatedAt,
	)
	return h, err
}

// FindByMatchKeys performs a single batched lookup across all keys. When
// duplicate households share a key, the oldest one wins so repeated uploads
// keep attaching to the same row.
func (r *Repository) FindByMatchKeys(ctx context.Context, agencyID uuid.UUID, keys []string) (map[string]household.Household, error) {
	if len(keys) == 0 {
		return map[string]household.Household{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (match_key) `+householdColumns+`
		FROM households
		WHERE agency_id = $1 AND match_key = ANY($2)
		ORDER BY match_key, created_at ASC
	`, agencyID, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]household.Household, len(keys))
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, err
		}
		result[h.MatchKey] = h
	}

	return result, rows.Err()
}

// FindByNameZipPrefix is the heuristic fallback lookup: case-insensitive
// first/last name plus a zip prefix match, tolerating zip+4 variations.
func (r *Repository) FindByNameZipPrefix(ctx context.Context, agencyID uuid.UUID, firstName, lastName, zipPrefix string) (household.Household, bool, error) {
	h, err := scanHousehold(r.pool.QueryRow(ctx, `
		SELECT `+householdColumns+`
		FROM households
		WHERE agency_id = $1
		  AND lower(first_name) = lower(trim($2))
		  AND lower(last_name) = lower(trim($3))
		  AND zip_code LIKE $4 || '%'
		ORDER BY created_at ASC
		LIMIT 1
	`, agencyID, firstName, lastName, zipPrefix))
	if errors.Is(err, pgx.ErrNoRows) {
		return household.Household{}, false, nil
	}
	if err != nil {
		return household.Household{}, false, err
	}
	return h, true, nil
}

// CreateBatch inserts all households in one statement via unnest.
func (r *Repository) CreateBatch(ctx context.Context, params []household.CreateParams) ([]household.Household, error) {
	if len(params) == 0 {
		return nil, nil
	}

	agencyIDs := make([]uuid.UUID, len(params))
	firstNames := make([]string, len(params))
	lastNames := make([]string, len(params))
	zipCodes := make([]string, len(params))
	matchKeys := make([]string, len(params))
	for i, p := range params {
		agencyIDs[i] = p.AgencyID
		firstNames[i] = p.FirstName
		lastNames[i] = p.LastName
		zipCodes[i] = p.ZipCode
		matchKeys[i] = p.MatchKey
	}

	rows, err := r.pool.Query(ctx, `
		INSERT INTO households (agency_id, first_name, last_name, zip_code, status, match_key)
		SELECT unnest($1::uuid[]), unnest($2::text[]), unnest($3::text[]), unnest($4::text[]), 'active', unnest($5::text[])
		RETURNING `+householdColumns+`
	`, agencyIDs, firstNames, lastNames, zipCodes, matchKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	created := make([]household.Household, 0, len(params))
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, err
		}
		created = append(created, h)
	}

	return created, rows.Err()
}

// GetByID returns one household scoped to the agency.
func (r *Repository) GetByID(ctx context.Context, id, agencyID uuid.UUID) (household.Household, error) {
	h, err := scanHousehold(r.pool.QueryRow(ctx, `
		SELECT `+householdColumns+`
		FROM households
		WHERE id = $1 AND agency_id = $2
	`, id, agencyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return household.Household{}, ErrNotFound
	}
	return h, err
}

// LinkContact fills the contact link if it is not already set. The linkage is
// append-only: a later pipeline never overwrites an existing contact id.
// Returns true when the link was written.
func (r *Repository) LinkContact(ctx context.Context, householdID, contactID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE households
		SET contact_id = $2, updated_at = now()
		WHERE id = $1 AND contact_id IS NULL
	`, householdID, contactID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DuplicateGroup is a set of households sharing one match key.
type DuplicateGroup struct {
	MatchKey   string
	Households []household.Household
}

// ListDuplicates returns households whose match key collides with at least
// one other household in the same agency. Fuzzy matching can produce these
// between runs; they are surfaced, never auto-merged.
func (r *Repository) ListDuplicates(ctx context.Context, agencyID uuid.UUID) ([]DuplicateGroup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+householdColumns+`
		FROM households
		WHERE agency_id = $1 AND match_key IN (
			SELECT match_key FROM households
			WHERE agency_id = $1 AND match_key <> ''
			GROUP BY match_key
			HAVING count(*) > 1
		)
		ORDER BY match_key, created_at ASC
	`, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []DuplicateGroup
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].MatchKey != h.MatchKey {
			groups = append(groups, DuplicateGroup{MatchKey: h.MatchKey})
		}
		groups[len(groups)-1].Households = append(groups[len(groups)-1].Households, h)
	}

	return groups, rows.Err()
}

// Compile-time check that Repository satisfies the resolver's store surface.
var _ household.Store = (*Repository)(nil)
