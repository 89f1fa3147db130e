package repository

import (
	"context"

	"agencyhub_backend/internal/lifecycle"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads stage-relevant record views for contact batches. Each
// method is one batched query joining a detail table through the contact's
// households; only active rows count toward a stage.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WinbacksByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]lifecycle.Winback, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.contact_id, w.status
		FROM winback_policies w
		JOIN households h ON h.id = w.household_id
		WHERE h.agency_id = $1 AND h.contact_id = ANY($2) AND w.is_active
	`, agencyID, contactIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]lifecycle.Winback)
	for rows.Next() {
		var contactID uuid.UUID
		var status string
		if err := rows.Scan(&contactID, &status); err != nil {
			return nil, err
		}
		result[contactID] = append(result[contactID], lifecycle.Winback{Status: status})
	}

	return result, rows.Err()
}

func (r *Repository) CancelAuditsByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]lifecycle.CancelAudit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.contact_id, c.status
		FROM cancel_audit_records c
		JOIN households h ON h.id = c.household_id
		WHERE h.agency_id = $1 AND h.contact_id = ANY($2) AND c.is_active
	`, agencyID, contactIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]lifecycle.CancelAudit)
	for rows.Next() {
		var contactID uuid.UUID
		var status string
		if err := rows.Scan(&contactID, &status); err != nil {
			return nil, err
		}
		result[contactID] = append(result[contactID], lifecycle.CancelAudit{Status: status})
	}

	return result, rows.Err()
}

func (r *Repository) RenewalsByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]lifecycle.Renewal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.contact_id, re.status
		FROM renewal_records re
		JOIN households h ON h.id = re.household_id
		WHERE h.agency_id = $1 AND h.contact_id = ANY($2) AND re.is_active
	`, agencyID, contactIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]lifecycle.Renewal)
	for rows.Next() {
		var contactID uuid.UUID
		var status string
		if err := rows.Scan(&contactID, &status); err != nil {
			return nil, err
		}
		result[contactID] = append(result[contactID], lifecycle.Renewal{Status: status})
	}

	return result, rows.Err()
}

func (r *Repository) SalesByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]lifecycle.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.contact_id, s.status
		FROM sales_records s
		JOIN households h ON h.id = s.household_id
		WHERE h.agency_id = $1 AND h.contact_id = ANY($2) AND s.is_active
	`, agencyID, contactIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]lifecycle.Sale)
	for rows.Next() {
		var contactID uuid.UUID
		var status string
		if err := rows.Scan(&contactID, &status); err != nil {
			return nil, err
		}
		result[contactID] = append(result[contactID], lifecycle.Sale{Status: status})
	}

	return result, rows.Err()
}

// Compile-time check that Repository implements the projector's reader.
var _ lifecycle.Reader = (*Repository)(nil)
