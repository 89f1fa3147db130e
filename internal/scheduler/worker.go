package scheduler

import (
	"context"
	"fmt"

	"agencyhub_backend/internal/upload"
	"agencyhub_backend/platform/config"
	"agencyhub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	coordinator *upload.Coordinator
	log         *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, coordinator *upload.Coordinator, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:      server,
		mux:         mux,
		coordinator: coordinator,
		log:         log,
	}

	mux.HandleFunc(TaskProcessUpload, w.handleProcessUpload)

	return w, nil
}

func (w *Worker) handleProcessUpload(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseProcessUploadPayload(task)
	if err != nil {
		return err
	}

	agencyID, err := uuid.Parse(payload.AgencyID)
	if err != nil {
		return err
	}

	uploaderID, err := uuid.Parse(payload.UploaderID)
	if err != nil {
		return err
	}

	reportType := upload.ReportType(payload.ReportType)
	records, err := upload.DecodeRecords(reportType, payload.Records)
	if err != nil {
		return err
	}

	summary, err := w.coordinator.Run(ctx, upload.Request{
		AgencyID:   agencyID,
		UploaderID: uploaderID,
		Filename:   payload.Filename,
		ReportType: reportType,
		Records:    records,
	})
	if err != nil {
		return err
	}

	if len(summary.Errors) > 0 {
		w.log.Warn("upload completed with record errors",
			"upload_id", summary.UploadID,
			"report_type", summary.ReportType,
			"errors", len(summary.Errors),
		)
	}

	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("upload worker stopped", "error", err)
	}
}
