package scheduler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string { return c.redisURL }

func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }

func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }

func (c testSchedulerConfig) GetAsynqConcurrency() int { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatalf("expected error without a redis url")
	}
}

func TestEnqueueUploadWritesPendingTask(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{
		redisURL: "redis://" + mr.Addr(),
		queue:    "uploads",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	err = client.EnqueueUpload(context.Background(), ProcessUploadPayload{
		AgencyID:   "5a0d9e2f-0000-0000-0000-000000000001",
		UploaderID: "5a0d9e2f-0000-0000-0000-000000000002",
		Filename:   "terminations.xlsx",
		ReportType: "terminations",
		Records:    json.RawMessage(`[]`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	n, err := rdb.LLen(context.Background(), "asynq:{uploads}:pending").Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pending task, got %d", n)
	}
}

func TestEnqueueUploadNeverRetries(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{
		redisURL: "redis://" + mr.Addr(),
		queue:    "uploads",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	err = client.EnqueueUpload(context.Background(), ProcessUploadPayload{
		AgencyID:   "5a0d9e2f-0000-0000-0000-000000000001",
		UploaderID: "5a0d9e2f-0000-0000-0000-000000000002",
		Filename:   "terminations.xlsx",
		ReportType: "terminations",
		Records:    json.RawMessage(`[]`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("uploads")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	// A failed batch stays failed; the uploader re-submits the file instead.
	if tasks[0].MaxRetry != 0 {
		t.Fatalf("expected max retry 0, got %d", tasks[0].MaxRetry)
	}
}

func TestProcessUploadPayloadRoundTrip(t *testing.T) {
	in := ProcessUploadPayload{
		AgencyID:   "5a0d9e2f-0000-0000-0000-000000000001",
		UploaderID: "5a0d9e2f-0000-0000-0000-000000000002",
		Filename:   "renewals.xlsx",
		ReportType: "renewals",
		Records:    json.RawMessage(`[{"lastName":"Smith","policyNumber":"P1","status":"pending","lineCode":"AUTO"}]`),
	}

	task, err := NewProcessUploadTask(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TaskProcessUpload {
		t.Fatalf("expected task type %q, got %q", TaskProcessUpload, task.Type())
	}

	out, err := ParseProcessUploadPayload(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AgencyID != in.AgencyID || out.ReportType != in.ReportType || out.Filename != in.Filename {
		t.Fatalf("expected payload to round-trip, got %+v", out)
	}
	if string(out.Records) != string(in.Records) {
		t.Fatalf("expected records to round-trip, got %s", out.Records)
	}
}
