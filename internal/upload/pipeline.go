package upload

import (
	"context"

	"github.com/google/uuid"
)

// ResolvedRecord is a validated record bound to its resolved household.
type ResolvedRecord struct {
	// Index is the record's position in the original input, for error reporting.
	Index       int
	Record      Record
	HouseholdID uuid.UUID
}

// ChunkResult reports the outcome of upserting one chunk of records.
type ChunkResult struct {
	Created int
	Updated int
	Errors  []RecordError
}

// Pipeline is the report-type-specific half of the upload flow: snapshot
// semantics and detail-row persistence. The coordinator drives every pipeline
// through the same sequence of steps.
type Pipeline interface {
	ReportType() ReportType

	// Deactivate marks every active detail row of this report type inactive,
	// ahead of a snapshot-replace upload. Append-style pipelines never have
	// this called.
	Deactivate(ctx context.Context, agencyID uuid.UUID) error

	// UpsertChunk writes one chunk of resolved records: each is matched to an
	// existing detail row by natural key and updated in place, or inserted.
	// Individual record failures go into the result's error list; an error
	// return means the whole chunk failed.
	UpsertChunk(ctx context.Context, agencyID uuid.UUID, items []ResolvedRecord) (ChunkResult, error)
}
