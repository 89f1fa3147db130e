// Package repository provides the pgx-backed persistence for the upload
// pipelines: detail-row upserts by natural key, snapshot deactivation,
// upload provenance, and per-household aggregate recompute.
package repository

import (
	"context"
	"fmt"

	"agencyhub_backend/internal/upload"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Winbacks persists termination report rows as winback policies.
// Terminations are append-style: no snapshot deactivation.
type Winbacks struct {
	pool *pgxpool.Pool
}

func NewWinbacks(pool *pgxpool.Pool) *Winbacks {
	return &Winbacks{pool: pool}
}

func (w *Winbacks) ReportType() upload.ReportType { return upload.ReportTerminations }

func (w *Winbacks) Deactivate(ctx context.Context, agencyID uuid.UUID) error {
	// Append-style pipeline; the coordinator never calls this.
	return nil
}

func (w *Winbacks) UpsertChunk(ctx context.Context, agencyID uuid.UUID, items []upload.ResolvedRecord) (upload.ChunkResult, error) {
	var result upload.ChunkResult

	for _, item := range items {
		rec, ok := item.Record.(upload.TerminationRecord)
		if !ok {
			result.Errors = append(result.Errors, typeMismatch(item))
			continue
		}

		// Status is only set on insert: the agency works winbacks through
		// their statuses, and a re-upload must not reset that progress.
		var inserted bool
		err := w.pool.QueryRow(ctx, `
			INSERT INTO winback_policies (
				agency_id, household_id, policy_number, status, product_name, line_code,
				premium_cents, termination_date, is_active
			) VALUES ($1, $2, $3, 'untouched', $4, $5, $6, $7, true)
			ON CONFLICT (agency_id, policy_number) DO UPDATE SET
				household_id = EXCLUDED.household_id,
				product_name = EXCLUDED.product_name,
				line_code = EXCLUDED.line_code,
				premium_cents = EXCLUDED.premium_cents,
				termination_date = EXCLUDED.termination_date,
				is_active = true,
				updated_at = now()
			RETURNING (xmax = 0)
		`, agencyID, item.HouseholdID, rec.NaturalKey(), rec.ProductName, rec.LineCode,
			rec.PremiumCents, rec.TerminationDate,
		).Scan(&inserted)
		if err != nil {
			result.Errors = append(result.Errors, upsertError(item, err))
			continue
		}

		countUpsert(&result, inserted)
	}

	return result, nil
}

// CancelAudits persists cancellation/pending-cancel audit rows. Audit-style:
// each upload replaces the prior snapshot.
type CancelAudits struct {
	pool *pgxpool.Pool
}

func NewCancelAudits(pool *pgxpool.Pool) *CancelAudits {
	return &CancelAudits{pool: pool}
}

func (c *CancelAudits) ReportType() upload.ReportType { return upload.ReportCancelAudit }

func (c *CancelAudits) Deactivate(ctx context.Context, agencyID uuid.UUID) error {
	_, err := c.pool.Exec(ctx, `
		UPDATE cancel_audit_records
		SET is_active = false, updated_at = now()
		WHERE agency_id = $1 AND is_active
	`, agencyID)
	return err
}

func (c *CancelAudits) UpsertChunk(ctx context.Context, agencyID uuid.UUID, items []upload.ResolvedRecord) (upload.ChunkResult, error) {
	var result upload.ChunkResult

	for _, item := range items {
		rec, ok := item.Record.(upload.CancelAuditRecord)
		if !ok {
			result.Errors = append(result.Errors, typeMismatch(item))
			continue
		}

		var inserted bool
		err := c.pool.QueryRow(ctx, `
			INSERT INTO cancel_audit_records (
				agency_id, household_id, policy_number, status, product_name, line_code,
				amount_due_cents, cancel_date, is_active
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
			ON CONFLICT (agency_id, policy_number) DO UPDATE SET
				household_id = EXCLUDED.household_id,
				status = EXCLUDED.status,
				product_name = EXCLUDED.product_name,
				line_code = EXCLUDED.line_code,
				amount_due_cents = EXCLUDED.amount_due_cents,
				cancel_date = EXCLUDED.cancel_date,
				is_active = true,
				updated_at = now()
			RETURNING (xmax = 0)
		`, agencyID, item.HouseholdID, rec.NaturalKey(), rec.Status, rec.ProductName, rec.LineCode,
			rec.AmountDueCents, rec.CancelDate,
		).Scan(&inserted)
		if err != nil {
			result.Errors = append(result.Errors, upsertError(item, err))
			continue
		}

		countUpsert(&result, inserted)
	}

	return result, nil
}

// Renewals persists renewal audit rows. Audit-style snapshot replacement.
type Renewals struct {
	pool *pgxpool.Pool
}

func NewRenewals(pool *pgxpool.Pool) *Renewals {
	return &Renewals{pool: pool}
}

func (r *Renewals) ReportType() upload.ReportType { return upload.ReportRenewals }

func (r *Renewals) Deactivate(ctx context.Context, agencyID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE renewal_records
		SET is_active = false, updated_at = now()
		WHERE agency_id = $1 AND is_active
	`, agencyID)
	return err
}

func (r *Renewals) UpsertChunk(ctx context.Context, agencyID uuid.UUID, items []upload.ResolvedRecord) (upload.ChunkResult, error) {
	var result upload.ChunkResult

	for _, item := range items {
		rec, ok := item.Record.(upload.RenewalRecord)
		if !ok {
			result.Errors = append(result.Errors, typeMismatch(item))
			continue
		}

		var inserted bool
		err := r.pool.QueryRow(ctx, `
			INSERT INTO renewal_records (
				agency_id, household_id, policy_number, status, product_name, line_code,
				premium_cents, renewal_date, is_active
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
			ON CONFLICT (agency_id, policy_number) DO UPDATE SET
				household_id = EXCLUDED.household_id,
				status = EXCLUDED.status,
				product_name = EXCLUDED.product_name,
				line_code = EXCLUDED.line_code,
				premium_cents = EXCLUDED.premium_cents,
				renewal_date = EXCLUDED.renewal_date,
				is_active = true,
				updated_at = now()
			RETURNING (xmax = 0)
		`, agencyID, item.HouseholdID, rec.NaturalKey(), rec.Status, rec.ProductName, rec.LineCode,
			rec.PremiumCents, rec.RenewalDate,
		).Scan(&inserted)
		if err != nil {
			result.Errors = append(result.Errors, upsertError(item, err))
			continue
		}

		countUpsert(&result, inserted)
	}

	return result, nil
}

// Sales persists new-business sales (LQS) rows. Append-style merge by
// LQS reference.
type Sales struct {
	pool *pgxpool.Pool
}

func NewSales(pool *pgxpool.Pool) *Sales {
	return &Sales{pool: pool}
}

func (s *Sales) ReportType() upload.ReportType { return upload.ReportSales }

func (s *Sales) Deactivate(ctx context.Context, agencyID uuid.UUID) error {
	// Append-style pipeline; the coordinator never calls this.
	return nil
}

func (s *Sales) UpsertChunk(ctx context.Context, agencyID uuid.UUID, items []upload.ResolvedRecord) (upload.ChunkResult, error) {
	var result upload.ChunkResult

	for _, item := range items {
		rec, ok := item.Record.(upload.SaleRecord)
		if !ok {
			result.Errors = append(result.Errors, typeMismatch(item))
			continue
		}

		var inserted bool
		err := s.pool.QueryRow(ctx, `
			INSERT INTO sales_records (
				agency_id, household_id, lqs_reference, status, product_name, line_code,
				premium_cents, sold_date, is_active
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
			ON CONFLICT (agency_id, lqs_reference) DO UPDATE SET
				household_id = EXCLUDED.household_id,
				status = EXCLUDED.status,
				product_name = EXCLUDED.product_name,
				line_code = EXCLUDED.line_code,
				premium_cents = EXCLUDED.premium_cents,
				sold_date = EXCLUDED.sold_date,
				is_active = true,
				updated_at = now()
			RETURNING (xmax = 0)
		`, agencyID, item.HouseholdID, rec.NaturalKey(), rec.Status, rec.ProductName, rec.LineCode,
			rec.PremiumCents, rec.SoldDate,
		).Scan(&inserted)
		if err != nil {
			result.Errors = append(result.Errors, upsertError(item, err))
			continue
		}

		countUpsert(&result, inserted)
	}

	return result, nil
}

func countUpsert(result *upload.ChunkResult, inserted bool) {
	if inserted {
		result.Created++
	} else {
		result.Updated++
	}
}

func typeMismatch(item upload.ResolvedRecord) upload.RecordError {
	return upload.RecordError{
		Index:      item.Index,
		NaturalKey: item.Record.NaturalKey(),
		Reason:     fmt.Sprintf("unexpected record type %T", item.Record),
	}
}

func upsertError(item upload.ResolvedRecord, err error) upload.RecordError {
	return upload.RecordError{
		Index:      item.Index,
		NaturalKey: item.Record.NaturalKey(),
		Reason:     err.Error(),
	}
}

// Compile-time checks that all four pipelines implement upload.Pipeline.
var (
	_ upload.Pipeline = (*Winbacks)(nil)
	_ upload.Pipeline = (*CancelAudits)(nil)
	_ upload.Pipeline = (*Renewals)(nil)
	_ upload.Pipeline = (*Sales)(nil)
)
