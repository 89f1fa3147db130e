// Package scheduler enqueues and executes background upload batches through
// asynq. The triggering caller returns immediately; the worker reports
// completion through the upload summary and the event bus.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskProcessUpload = "uploads.process"

// ProcessUploadPayload carries one upload batch to the worker. Records stay
// as raw JSON and are decoded against the report type at execution time.
type ProcessUploadPayload struct {
	AgencyID   string          `json:"agencyId"`
	UploaderID string          `json:"uploaderId"`
	Filename   string          `json:"filename"`
	ReportType string          `json:"reportType"`
	Records    json.RawMessage `json:"records"`
}

func NewProcessUploadTask(payload ProcessUploadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	// Failed batches are never retried automatically; re-submitting the same
	// file is the uploader's call and is safe because upserts are idempotent.
	return asynq.NewTask(TaskProcessUpload, data, asynq.MaxRetry(0)), nil
}

func ParseProcessUploadPayload(task *asynq.Task) (ProcessUploadPayload, error) {
	var payload ProcessUploadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProcessUploadPayload{}, err
	}
	return payload, nil
}
