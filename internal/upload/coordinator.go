package upload

import (
	"context"
	"fmt"
	"time"

	"agencyhub_backend/internal/contact"
	"agencyhub_backend/internal/events"
	"agencyhub_backend/internal/household"
	"agencyhub_backend/platform/apperr"
	"agencyhub_backend/platform/config"
	"agencyhub_backend/platform/logger"
	"agencyhub_backend/platform/validator"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// HouseholdResolver resolves record candidates to households, creating any
// that cannot be matched.
type HouseholdResolver interface {
	Resolve(ctx context.Context, agencyID uuid.UUID, candidates []household.Candidate) (map[string]household.Household, error)
}

// ContactRegistrar finds-or-creates a canonical contact and links it to a
// household. Best-effort; implementations never return errors.
type ContactRegistrar interface {
	Register(ctx context.Context, agencyID, householdID uuid.UUID, info contact.Info) (uuid.UUID, bool)
}

// BeginParams opens one provenance row.
type BeginParams struct {
	AgencyID   uuid.UUID
	UploaderID uuid.UUID
	ReportType ReportType
	Filename   string
}

// Counts are the final record counts patched into a provenance row.
type Counts struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
}

// ProvenanceStore writes the append-only upload history.
type ProvenanceStore interface {
	Begin(ctx context.Context, params BeginParams) (Upload, error)
	Complete(ctx context.Context, id uuid.UUID, counts Counts, recordErrors []RecordError) error
}

// AggregateRecomputer recomputes per-household aggregates from detail rows.
type AggregateRecomputer interface {
	Recompute(ctx context.Context, agencyID uuid.UUID, householdIDs []uuid.UUID) error
}

// Request is one batch of parsed records plus its upload context.
type Request struct {
	AgencyID   uuid.UUID
	UploaderID uuid.UUID
	Filename   string
	ReportType ReportType
	Records    []Record
}

// Coordinator runs the shared upload flow for all four report pipelines:
// snapshot deactivation, household resolution, contact registration, chunked
// detail upserts, aggregate recompute, provenance, and the invalidation
// signal. Record-level failures are collected; only infrastructure failures
// abort a batch.
type Coordinator struct {
	pipelines  map[ReportType]Pipeline
	resolver   HouseholdResolver
	registrar  ContactRegistrar
	provenance ProvenanceStore
	aggregates AggregateRecomputer
	val        *validator.Validator
	bus        events.Bus
	log        *logger.Logger

	chunkSize int
	limiter   *rate.Limiter
	locks     *reportLocks
}

// NewCoordinator wires the coordinator for the given pipelines.
func NewCoordinator(
	pipelines []Pipeline,
	resolver HouseholdResolver,
	registrar ContactRegistrar,
	provenance ProvenanceStore,
	aggregates AggregateRecomputer,
	val *validator.Validator,
	bus events.Bus,
	cfg config.UploadConfig,
	log *logger.Logger,
) *Coordinator {
	byType := make(map[ReportType]Pipeline, len(pipelines))
	for _, p := range pipelines {
		byType[p.ReportType()] = p
	}

	var limiter *rate.Limiter
	if r := cfg.GetUploadChunkRate(); r > 0 {
		limiter = rate.NewLimiter(rate.Limit(r), 1)
	}

	return &Coordinator{
		pipelines:  byType,
		resolver:   resolver,
		registrar:  registrar,
		provenance: provenance,
		aggregates: aggregates,
		val:        val,
		bus:        bus,
		log:        log,
		chunkSize:  cfg.GetUploadChunkSize(),
		limiter:    limiter,
		locks:      newReportLocks(),
	}
}

// Run processes one batch synchronously and returns its summary. Safe to
// re-run with the same file: detail upserts are idempotent by natural key.
// Concurrent runs for the same (agency, report type) are serialized so the
// snapshot-replace step cannot interleave with another upload.
func (c *Coordinator) Run(ctx context.Context, req Request) (Summary, error) {
	pipeline, ok := c.pipelines[req.ReportType]
	if !ok {
		return Summary{}, apperr.BadRequest(fmt.Sprintf("unknown report type %q", req.ReportType))
	}

	release := c.locks.acquire(req.AgencyID, req.ReportType)
	defer release()

	startedAt := time.Now()

	row, err := c.provenance.Begin(ctx, BeginParams{
		AgencyID:   req.AgencyID,
		UploaderID: req.UploaderID,
		ReportType: req.ReportType,
		Filename:   req.Filename,
	})
	if err != nil {
		return Summary{}, apperr.Wrap(apperr.KindUnavailable, "write upload provenance", err)
	}

	log := c.log.WithUpload(row.ID.String(), string(req.ReportType))
	log.UploadStarted(string(req.ReportType), req.Filename, len(req.Records))

	if req.ReportType.SnapshotReplace() {
		if err := pipeline.Deactivate(ctx, req.AgencyID); err != nil {
			log.UploadFailed(string(req.ReportType), req.Filename, err)
			c.closeFailed(ctx, row.ID, Counts{Processed: len(req.Records)}, nil, err)
			return Summary{}, apperr.Wrap(apperr.KindUnavailable, "deactivate prior snapshot", err)
		}
	}

	valid, recordErrors := c.validateRecords(req.Records)

	resolved, err := c.resolveHouseholds(ctx, req.AgencyID, valid)
	if err != nil {
		log.UploadFailed(string(req.ReportType), req.Filename, err)
		c.closeFailed(ctx, row.ID, Counts{Processed: len(req.Records), Skipped: len(recordErrors)}, recordErrors, err)
		return Summary{}, apperr.Wrap(apperr.KindUnavailable, "resolve households", err)
	}

	c.registerContacts(ctx, req.AgencyID, valid, resolved)

	items, skippedUnresolved := bindHouseholds(valid, resolved)
	recordErrors = append(recordErrors, skippedUnresolved...)

	counts := Counts{Processed: len(req.Records), Skipped: len(recordErrors)}
	affected := make(map[uuid.UUID]struct{})

	for start := 0; start < len(items); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				c.closeFailed(ctx, row.ID, counts, recordErrors, err)
				return Summary{}, apperr.Wrap(apperr.KindInternal, "chunk rate limit", err)
			}
		}

		result, err := pipeline.UpsertChunk(ctx, req.AgencyID, chunk)
		if err != nil {
			// A failed chunk skips its records but never aborts later chunks.
			log.Warn("chunk upsert failed",
				"report_type", req.ReportType,
				"chunk_start", start,
				"chunk_size", len(chunk),
				"error", err,
			)
			for _, item := range chunk {
				counts.Skipped++
				recordErrors = append(recordErrors, RecordError{
					Index:      item.Index,
					NaturalKey: item.Record.NaturalKey(),
					Reason:     err.Error(),
				})
			}
			continue
		}

		counts.Created += result.Created
		counts.Updated += result.Updated
		counts.Skipped += len(result.Errors)
		recordErrors = append(recordErrors, result.Errors...)

		for _, item := range chunk {
			affected[item.HouseholdID] = struct{}{}
		}
	}

	if len(affected) > 0 {
		ids := make([]uuid.UUID, 0, len(affected))
		for id := range affected {
			ids = append(ids, id)
		}
		if err := c.aggregates.Recompute(ctx, req.AgencyID, ids); err != nil {
			// Aggregates are derived data; a failed recompute leaves them
			// stale, not wrong enough to fail the batch.
			log.DatabaseError("recompute household aggregates", err)
		}
	}

	if err := c.provenance.Complete(ctx, row.ID, counts, recordErrors); err != nil {
		log.UploadFailed(string(req.ReportType), req.Filename, err)
		return Summary{}, apperr.Wrap(apperr.KindUnavailable, "complete upload provenance", err)
	}

	summary := Summary{
		UploadID:   row.ID,
		AgencyID:   req.AgencyID,
		ReportType: req.ReportType,
		Filename:   req.Filename,
		Processed:  counts.Processed,
		Created:    counts.Created,
		Updated:    counts.Updated,
		Skipped:    counts.Skipped,
		Errors:     recordErrors,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}

	c.bus.Publish(ctx, events.ReportUploadCompleted{
		BaseEvent:  events.NewBaseEvent(),
		UploadID:   row.ID,
		AgencyID:   req.AgencyID,
		ReportType: string(req.ReportType),
		Created:    counts.Created,
		Updated:    counts.Updated,
		Skipped:    counts.Skipped,
	})

	log.UploadCompleted(string(req.ReportType), req.Filename, counts.Created, counts.Updated, counts.Skipped)
	return summary, nil
}

// closeFailed patches the provenance row for a batch that died on an
// infrastructure error, so history never shows it as still running. The
// batch-level cause is recorded as a record error with index -1. Best-effort:
// the original error is what the caller reports.
func (c *Coordinator) closeFailed(ctx context.Context, id uuid.UUID, counts Counts, recordErrors []RecordError, cause error) {
	recordErrors = append(recordErrors, RecordError{Index: -1, Reason: cause.Error()})
	if err := c.provenance.Complete(context.WithoutCancel(ctx), id, counts, recordErrors); err != nil {
		c.log.DatabaseError("close failed upload provenance", err)
	}
}

type indexedRecord struct {
	index  int
	record Record
}

// validateRecords splits input into valid records and skip errors. Validation
// failures are record-level: the batch continues.
func (c *Coordinator) validateRecords(records []Record) ([]indexedRecord, []RecordError) {
	valid := make([]indexedRecord, 0, len(records))
	var errs []RecordError

	for i, rec := range records {
		if err := rec.Validate(c.val); err != nil {
			errs = append(errs, RecordError{
				Index:      i,
				NaturalKey: rec.NaturalKey(),
				Reason:     err.Error(),
			})
			continue
		}
		valid = append(valid, indexedRecord{index: i, record: rec})
	}

	return valid, errs
}

func (c *Coordinator) resolveHouseholds(ctx context.Context, agencyID uuid.UUID, records []indexedRecord) (map[string]household.Household, error) {
	candidates := make([]household.Candidate, 0, len(records))
	for _, r := range records {
		base := r.record.Base()
		candidates = append(candidates, household.NewCandidate(base.FirstName, base.LastName, base.ZipCode))
	}
	return c.resolver.Resolve(ctx, agencyID, candidates)
}

// registerContacts fills contact links on resolved households that lack one,
// merging every phone and email the batch knows for that household. All
// failures are swallowed by the registrar.
func (c *Coordinator) registerContacts(ctx context.Context, agencyID uuid.UUID, records []indexedRecord, resolved map[string]household.Household) {
	infos := make(map[uuid.UUID]contact.Info)
	for _, r := range records {
		base := r.record.Base()
		h, ok := resolved[household.MatchKey(base.FirstName, base.LastName, base.ZipCode)]
		if !ok || h.ContactID != nil {
			continue
		}

		info, seen := infos[h.ID]
		if !seen {
			info = contact.Info{FirstName: h.FirstName, LastName: h.LastName}
		}
		if base.Phone != "" {
			info.Phones = append(info.Phones, base.Phone)
		}
		if base.Email != "" {
			info.Emails = append(info.Emails, base.Email)
		}
		infos[h.ID] = info
	}

	for householdID, info := range infos {
		contactID, linked := c.registrar.Register(ctx, agencyID, householdID, info)
		if linked {
			c.bus.Publish(ctx, events.HouseholdContactLinked{
				BaseEvent:   events.NewBaseEvent(),
				AgencyID:    agencyID,
				HouseholdID: householdID,
				ContactID:   contactID,
			})
		}
	}
}

// bindHouseholds attaches each record to its resolved household id. A record
// whose key resolved to nothing (it should not happen, the resolver creates
// missing households) is skipped with an error.
func bindHouseholds(records []indexedRecord, resolved map[string]household.Household) ([]ResolvedRecord, []RecordError) {
	items := make([]ResolvedRecord, 0, len(records))
	var errs []RecordError

	for _, r := range records {
		base := r.record.Base()
		h, ok := resolved[household.MatchKey(base.FirstName, base.LastName, base.ZipCode)]
		if !ok {
			errs = append(errs, RecordError{
				Index:      r.index,
				NaturalKey: r.record.NaturalKey(),
				Reason:     "household resolution failed",
			})
			continue
		}
		items = append(items, ResolvedRecord{Index: r.index, Record: r.record, HouseholdID: h.ID})
	}

	return items, errs
}
