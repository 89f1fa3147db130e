package upload

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var errMissingProduct = errors.New("record has neither product name nor line code")

// RecordError describes one non-fatal record-level failure. Collected per
// batch and reported in the summary; never aborts the batch.
type RecordError struct {
	Index      int    `json:"index"`
	NaturalKey string `json:"naturalKey,omitempty"`
	Reason     string `json:"reason"`
}

func (e RecordError) String() string {
	if e.NaturalKey != "" {
		return fmt.Sprintf("record %d (%s): %s", e.Index, e.NaturalKey, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

// Summary is the end-of-batch report: final counts plus the list of
// non-fatal errors. Processed always equals Created+Updated+Skipped.
type Summary struct {
	UploadID   uuid.UUID     `json:"uploadId"`
	AgencyID   uuid.UUID     `json:"agencyId"`
	ReportType ReportType    `json:"reportType"`
	Filename   string        `json:"filename"`
	Processed  int           `json:"processed"`
	Created    int           `json:"created"`
	Updated    int           `json:"updated"`
	Skipped    int           `json:"skipped"`
	Errors     []RecordError `json:"errors,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// Upload is one append-only provenance row. Count fields are patched exactly
// once, at completion; the row is never deleted.
type Upload struct {
	ID               uuid.UUID     `json:"id"`
	AgencyID         uuid.UUID     `json:"agencyId"`
	UploaderID       uuid.UUID     `json:"uploaderId"`
	ReportType       ReportType    `json:"reportType"`
	Filename         string        `json:"filename"`
	RecordsProcessed int           `json:"recordsProcessed"`
	RecordsCreated   int           `json:"recordsCreated"`
	RecordsUpdated   int           `json:"recordsUpdated"`
	RecordsSkipped   int           `json:"recordsSkipped"`
	Errors           []RecordError `json:"errors,omitempty"`
	StartedAt        time.Time     `json:"startedAt"`
	CompletedAt      *time.Time    `json:"completedAt,omitempty"`
}
