package repository

import (
	"context"

	"agencyhub_backend/internal/upload"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Aggregates recomputes per-household rollups (policy count, total premium)
// from the four detail-record families.
type Aggregates struct {
	pool *pgxpool.Pool
}

func NewAggregates(pool *pgxpool.Pool) *Aggregates {
	return &Aggregates{pool: pool}
}

const recomputeSQL = `
	UPDATE households h SET
		policy_count =
			(SELECT count(*) FROM winback_policies w WHERE w.household_id = h.id AND w.is_active)
			+ (SELECT count(*) FROM cancel_audit_records c WHERE c.household_id = h.id AND c.is_active)
			+ (SELECT count(*) FROM renewal_records r WHERE r.household_id = h.id AND r.is_active)
			+ (SELECT count(*) FROM sales_records s WHERE s.household_id = h.id AND s.is_active),
		total_premium_cents =
			COALESCE((SELECT sum(w.premium_cents) FROM winback_policies w WHERE w.household_id = h.id AND w.is_active), 0)
			+ COALESCE((SELECT sum(r.premium_cents) FROM renewal_records r WHERE r.household_id = h.id AND r.is_active), 0)
			+ COALESCE((SELECT sum(s.premium_cents) FROM sales_records s WHERE s.household_id = h.id AND s.is_active), 0),
		updated_at = now()
	WHERE h.id = $1 AND h.agency_id = $2`

// Recompute refreshes aggregates for each household in one round trip via a
// pipelined batch, one recomputation per affected household.
func (a *Aggregates) Recompute(ctx context.Context, agencyID uuid.UUID, householdIDs []uuid.UUID) error {
	if len(householdIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, id := range householdIDs {
		batch.Queue(recomputeSQL, id, agencyID)
	}

	results := a.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range householdIDs {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

// Compile-time check that Aggregates implements the coordinator's surface.
var _ upload.AggregateRecomputer = (*Aggregates)(nil)
