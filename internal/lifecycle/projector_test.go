package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type fakeReader struct {
	winbacks     map[uuid.UUID][]Winback
	cancelAudits map[uuid.UUID][]CancelAudit
	renewals     map[uuid.UUID][]Renewal
	sales        map[uuid.UUID][]Sale
	err          error
}

func (r *fakeReader) WinbacksByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]Winback, error) {
	return r.winbacks, r.err
}

func (r *fakeReader) CancelAuditsByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]CancelAudit, error) {
	return r.cancelAudits, r.err
}

func (r *fakeReader) RenewalsByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]Renewal, error) {
	return r.renewals, r.err
}

func (r *fakeReader) SalesByContacts(ctx context.Context, agencyID uuid.UUID, contactIDs []uuid.UUID) (map[uuid.UUID][]Sale, error) {
	return r.sales, r.err
}

func TestStagesForEveryContactGetsAStage(t *testing.T) {
	winbackContact := uuid.New()
	customerContact := uuid.New()
	emptyContact := uuid.New()

	projector := NewProjector(&fakeReader{
		winbacks: map[uuid.UUID][]Winback{
			winbackContact: {{Status: WinbackUntouched}},
		},
		sales: map[uuid.UUID][]Sale{
			customerContact: {{Status: SaleSold}},
		},
	})

	stages, err := projector.StagesFor(context.Background(), uuid.New(), []uuid.UUID{
		winbackContact, customerContact, emptyContact,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stages) != 3 {
		t.Fatalf("expected a stage for every requested contact, got %d", len(stages))
	}
	if stages[winbackContact] != StageWinback {
		t.Fatalf("expected %q, got %q", StageWinback, stages[winbackContact])
	}
	if stages[customerContact] != StageCustomer {
		t.Fatalf("expected %q, got %q", StageCustomer, stages[customerContact])
	}
	if stages[emptyContact] != StageLead {
		t.Fatalf("expected contacts without records to default to %q, got %q", StageLead, stages[emptyContact])
	}
}

func TestStagesForEmptyBatch(t *testing.T) {
	projector := NewProjector(&fakeReader{})

	stages, err := projector.StagesFor(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stages) != 0 {
		t.Fatalf("expected no stages, got %d", len(stages))
	}
}

func TestStagesForReaderFailure(t *testing.T) {
	projector := NewProjector(&fakeReader{err: errors.New("db down")})

	if _, err := projector.StagesFor(context.Background(), uuid.New(), []uuid.UUID{uuid.New()}); err == nil {
		t.Fatalf("expected reader failure to propagate")
	}
}

func TestStageForSingleContact(t *testing.T) {
	contactID := uuid.New()
	projector := NewProjector(&fakeReader{
		renewals: map[uuid.UUID][]Renewal{
			contactID: {{Status: RenewalPending}},
		},
	})

	stage, err := projector.StageFor(context.Background(), uuid.New(), contactID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stage != StageRenewal {
		t.Fatalf("expected %q, got %q", StageRenewal, stage)
	}
}
