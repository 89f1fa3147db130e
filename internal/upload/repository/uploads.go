package repository

import (
	"context"
	"encoding/json"
	"errors"

	"agencyhub_backend/internal/upload"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUploadNotFound = errors.New("upload not found")

// Uploads writes and reads the append-only upload provenance rows.
type Uploads struct {
	pool *pgxpool.Pool
}

func NewUploads(pool *pgxpool.Pool) *Uploads {
	return &Uploads{pool: pool}
}

const uploadColumns = `id, agency_id, uploader_id, report_type, filename,
	records_processed, records_created, records_updated, records_skipped, errors,
	started_at, completed_at`

func scanUpload(row pgx.Row) (upload.Upload, error) {
	var u upload.Upload
	var reportType string
	var errorsJSON []byte
	err := row.Scan(
		&u.ID, &u.AgencyID, &u.UploaderID, &reportType, &u.Filename,
		&u.RecordsProcessed, &u.RecordsCreated, &u.RecordsUpdated, &u.RecordsSkipped, &errorsJSON,
		&u.StartedAt, &u.CompletedAt,
	)
	if err != nil {
		return upload.Upload{}, err
	}

	u.ReportType = upload.ReportType(reportType)
	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &u.Errors); err != nil {
			return upload.Upload{}, err
		}
	}
	return u, nil
}

// Begin appends a provenance row for a starting batch. Counts are zero until
// completion.
func (r *Uploads) Begin(ctx context.Context, params upload.BeginParams) (upload.Upload, error) {
	return scanUpload(r.pool.QueryRow(ctx, `
		INSERT INTO uploads (agency_id, uploader_id, report_type, filename, errors)
		VALUES ($1, $2, $3, $4, '[]'::jsonb)
		RETURNING `+uploadColumns+`
	`, params.AgencyID, params.UploaderID, string(params.ReportType), params.Filename))
}

// Complete patches the final counts and error list into the row, exactly
// once. Rows are otherwise immutable history.
func (r *Uploads) Complete(ctx context.Context, id uuid.UUID, counts upload.Counts, recordErrors []upload.RecordError) error {
	if recordErrors == nil {
		recordErrors = []upload.RecordError{}
	}
	errorsJSON, err := json.Marshal(recordErrors)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE uploads SET
			records_processed = $2,
			records_created = $3,
			records_updated = $4,
			records_skipped = $5,
			errors = $6,
			completed_at = now()
		WHERE id = $1 AND completed_at IS NULL
	`, id, counts.Processed, counts.Created, counts.Updated, counts.Skipped, errorsJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUploadNotFound
	}
	return nil
}

// GetByID returns one provenance row scoped to the agency.
func (r *Uploads) GetByID(ctx context.Context, id, agencyID uuid.UUID) (upload.Upload, error) {
	u, err := scanUpload(r.pool.QueryRow(ctx, `
		SELECT `+uploadColumns+`
		FROM uploads
		WHERE id = $1 AND agency_id = $2
	`, id, agencyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return upload.Upload{}, ErrUploadNotFound
	}
	return u, err
}

// List returns the agency's upload history, newest first.
func (r *Uploads) List(ctx context.Context, agencyID uuid.UUID, limit int) ([]upload.Upload, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+uploadColumns+`
		FROM uploads
		WHERE agency_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, agencyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := make([]upload.Upload, 0)
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}

	return uploads, rows.Err()
}

// Compile-time check that Uploads implements the coordinator's store surface.
var _ upload.ProvenanceStore = (*Uploads)(nil)
