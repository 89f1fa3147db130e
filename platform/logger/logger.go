// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// AgencyIDKey is the context key for the agency scope
	AgencyIDKey contextKey = "agency_id"
	// UploadIDKey is the context key for the upload being processed
	UploadIDKey contextKey = "upload_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id, agency_id, and upload_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("request_id", requestID)),
		}
	}

	if agencyID, ok := ctx.Value(AgencyIDKey).(string); ok && agencyID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("agency_id", agencyID)),
		}
	}

	if uploadID, ok := ctx.Value(UploadIDKey).(string); ok && uploadID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("upload_id", uploadID)),
		}
	}

	return newLogger
}

// WithUpload returns a logger scoped to one upload batch.
func (l *Logger) WithUpload(uploadID, reportType string) *Logger {
	return &Logger{
		Logger: l.With(
			slog.String("upload_id", uploadID),
			slog.String("report_type", reportType),
		),
	}
}

// UploadStarted logs the start of a batch upload.
func (l *Logger) UploadStarted(reportType, filename string, records int) {
	l.Info("upload_started",
		slog.String("report_type", reportType),
		slog.String("filename", filename),
		slog.Int("records", records),
	)
}

// UploadCompleted logs the completion summary of a batch upload.
func (l *Logger) UploadCompleted(reportType, filename string, created, updated, skipped int) {
	l.Info("upload_completed",
		slog.String("report_type", reportType),
		slog.String("filename", filename),
		slog.Int("created", created),
		slog.Int("updated", updated),
		slog.Int("skipped", skipped),
	)
}

// UploadFailed logs a batch upload that failed at the infrastructure level.
func (l *Logger) UploadFailed(reportType, filename string, err error) {
	l.Error("upload_failed",
		slog.String("report_type", reportType),
		slog.String("filename", filename),
		slog.String("error", err.Error()),
	)
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
