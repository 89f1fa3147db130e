package upload

import (
	"context"
	"sync"

	"agencyhub_backend/platform/logger"

	"github.com/google/uuid"
)

// JobState is the lifecycle of one fire-and-forget upload run.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Job tracks one background coordinator run. Callers subscribe to Done()
// instead of blocking on the upload; once closed, State, Summary, and Err are
// final. There is no cancellation once a job starts.
type Job struct {
	ID uuid.UUID

	mu      sync.Mutex
	state   JobState
	summary Summary
	err     error
	done    chan struct{}
}

func newJob() *Job {
	return &Job{
		ID:    uuid.New(),
		state: JobPending,
		done:  make(chan struct{}),
	}
}

// Done is closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

// State returns the current job state.
func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Result returns the summary and error; valid after Done() is closed.
func (j *Job) Result() (Summary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.summary, j.err
}

func (j *Job) start() {
	j.mu.Lock()
	j.state = JobRunning
	j.mu.Unlock()
}

func (j *Job) finish(summary Summary, err error) {
	j.mu.Lock()
	j.summary = summary
	j.err = err
	if err != nil {
		j.state = JobFailed
	} else {
		j.state = JobSucceeded
	}
	j.mu.Unlock()
	close(j.done)
}

// Service launches coordinator runs in the background. The triggering caller
// gets the Job back immediately; completion is reported through the job, not
// through any shared flag. Finished jobs stay queryable until the process
// exits; the durable record is the provenance row.
type Service struct {
	coordinator *Coordinator
	log         *logger.Logger

	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

// NewService creates the background upload service.
func NewService(coordinator *Coordinator, log *logger.Logger) *Service {
	return &Service{
		coordinator: coordinator,
		log:         log,
		jobs:        make(map[uuid.UUID]*Job),
	}
}

// Job returns a previously started job by id.
func (s *Service) Job(id uuid.UUID) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}

// Coordinator exposes the underlying coordinator for synchronous callers.
func (s *Service) Coordinator() *Coordinator { return s.coordinator }

// Start begins processing the request on a new goroutine and returns the job
// immediately. The run is detached from the caller's context; an upload keeps
// going after the triggering request ends.
func (s *Service) Start(ctx context.Context, req Request) *Job {
	job := newJob()
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)

	go func() {
		job.start()
		summary, err := s.coordinator.Run(runCtx, req)
		if err != nil {
			s.log.Error("background upload failed",
				"job_id", job.ID,
				"report_type", req.ReportType,
				"filename", req.Filename,
				"error", err,
			)
		}
		job.finish(summary, err)
	}()

	return job
}
