// Package handler exposes the upload engine over HTTP: triggering batches,
// polling in-process jobs, and browsing provenance history.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"agencyhub_backend/internal/scheduler"
	"agencyhub_backend/internal/upload"
	"agencyhub_backend/internal/upload/repository"
	"agencyhub_backend/platform/httpkit"
	"agencyhub_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service  *upload.Service
	uploads  *repository.Uploads
	enqueuer scheduler.UploadEnqueuer
	log      *logger.Logger
}

// New creates the upload handler. The enqueuer may be nil when no queue is
// configured; batches then run as in-process background jobs.
func New(service *upload.Service, uploads *repository.Uploads, enqueuer scheduler.UploadEnqueuer, log *logger.Logger) *Handler {
	return &Handler{service: service, uploads: uploads, enqueuer: enqueuer, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/:reportType", h.CreateUpload)
	rg.GET("/uploads", h.ListUploads)
	rg.GET("/uploads/jobs/:id", h.GetJob)
	rg.GET("/uploads/:id", h.GetUpload)
}

type createUploadRequest struct {
	AgencyID   string          `json:"agencyId" binding:"required,uuid"`
	UploaderID string          `json:"uploaderId" binding:"required,uuid"`
	Filename   string          `json:"filename" binding:"required"`
	Records    json.RawMessage `json:"records" binding:"required"`
}

type jobResponse struct {
	JobID   string          `json:"jobId"`
	State   upload.JobState `json:"state"`
	Summary *upload.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// CreateUpload accepts one parsed batch and starts processing without
// blocking the caller. With a queue configured the batch goes to the worker;
// otherwise it runs as an in-process job. `?sync=1` processes inline and
// returns the summary, useful for small files and tooling.
func (h *Handler) CreateUpload(c *gin.Context) {
	reportType := upload.ReportType(c.Param("reportType"))
	if !reportType.Valid() {
		httpkit.Error(c, http.StatusBadRequest, "unknown report type", nil)
		return
	}

	var req createUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	records, err := upload.DecodeRecords(reportType, req.Records)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid records", err.Error())
		return
	}

	agencyID := uuid.MustParse(req.AgencyID)
	uploaderID := uuid.MustParse(req.UploaderID)

	if c.Query("sync") == "1" {
		summary, err := h.service.Coordinator().Run(c.Request.Context(), upload.Request{
			AgencyID:   agencyID,
			UploaderID: uploaderID,
			Filename:   req.Filename,
			ReportType: reportType,
			Records:    records,
		})
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, summary)
		return
	}

	if h.enqueuer != nil {
		err := h.enqueuer.EnqueueUpload(c.Request.Context(), scheduler.ProcessUploadPayload{
			AgencyID:   req.AgencyID,
			UploaderID: req.UploaderID,
			Filename:   req.Filename,
			ReportType: string(reportType),
			Records:    req.Records,
		})
		if err != nil {
			h.log.Error("enqueue upload failed", "report_type", reportType, "error", err)
			httpkit.Error(c, http.StatusServiceUnavailable, "failed to queue upload", nil)
			return
		}
		httpkit.Accepted(c, gin.H{"status": "queued", "reportType": reportType})
		return
	}

	job := h.service.Start(c.Request.Context(), upload.Request{
		AgencyID:   agencyID,
		UploaderID: uploaderID,
		Filename:   req.Filename,
		ReportType: reportType,
		Records:    records,
	})
	httpkit.Accepted(c, jobResponse{JobID: job.ID.String(), State: job.State()})
}

// GetJob reports the state of an in-process background job.
func (h *Handler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid job id", nil)
		return
	}

	job, ok := h.service.Job(id)
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "job not found", nil)
		return
	}

	resp := jobResponse{JobID: job.ID.String(), State: job.State()}
	if state := job.State(); state == upload.JobSucceeded || state == upload.JobFailed {
		summary, jobErr := job.Result()
		resp.Summary = &summary
		if jobErr != nil {
			resp.Error = jobErr.Error()
		}
	}
	httpkit.OK(c, resp)
}

// GetUpload returns one provenance row.
func (h *Handler) GetUpload(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid upload id", nil)
		return
	}

	agencyID, ok := agencyIDQuery(c)
	if !ok {
		return
	}

	row, err := h.uploads.GetByID(c.Request.Context(), id, agencyID)
	if errors.Is(err, repository.ErrUploadNotFound) {
		httpkit.Error(c, http.StatusNotFound, "upload not found", nil)
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, row)
}

// ListUploads returns the agency's upload history, newest first.
func (h *Handler) ListUploads(c *gin.Context) {
	agencyID, ok := agencyIDQuery(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.uploads.List(c.Request.Context(), agencyID, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"uploads": rows})
}

func agencyIDQuery(c *gin.Context) (uuid.UUID, bool) {
	agencyID, err := uuid.Parse(c.Query("agencyId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "agencyId query parameter is required", nil)
		return uuid.Nil, false
	}
	return agencyID, true
}
