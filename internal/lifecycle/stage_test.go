package lifecycle

import "testing"

func TestResolveStageOpenWinbackBeatsEverything(t *testing.T) {
	rec := Records{
		Winbacks:     []Winback{{Status: WinbackUntouched}},
		CancelAudits: []CancelAudit{{Status: CancelPending}},
		Renewals:     []Renewal{{Status: RenewalPending}},
		Sales:        []Sale{{Status: SaleSold}},
	}
	if got := ResolveStage(rec); got != StageWinback {
		t.Fatalf("expected stage %q, got %q", StageWinback, got)
	}

	rec.Winbacks = []Winback{{Status: WinbackInProgress}}
	if got := ResolveStage(rec); got != StageWinback {
		t.Fatalf("expected stage %q for in-progress winback, got %q", StageWinback, got)
	}
}

func TestResolveStageWonBackBeatsSold(t *testing.T) {
	rec := Records{
		Winbacks: []Winback{{Status: WinbackWonBack}},
		Sales:    []Sale{{Status: SaleSold}},
	}
	if got := ResolveStage(rec); got != StageWonBack {
		t.Fatalf("expected stage %q, got %q", StageWonBack, got)
	}
}

func TestResolveStagePendingCancelIsAtRisk(t *testing.T) {
	rec := Records{
		CancelAudits: []CancelAudit{{Status: CancelPending}},
		Renewals:     []Renewal{{Status: RenewalSuccess}},
	}
	if got := ResolveStage(rec); got != StageAtRisk {
		t.Fatalf("expected stage %q, got %q", StageAtRisk, got)
	}
}

func TestResolveStageCancelled(t *testing.T) {
	rec := Records{
		CancelAudits: []CancelAudit{{Status: CancelCancelled}},
	}
	if got := ResolveStage(rec); got != StageCancelled {
		t.Fatalf("expected stage %q, got %q", StageCancelled, got)
	}

	rec.CancelAudits = []CancelAudit{{Status: CancelLost}}
	if got := ResolveStage(rec); got != StageCancelled {
		t.Fatalf("expected stage %q for lost audit, got %q", StageCancelled, got)
	}
}

func TestResolveStageSavedAuditContradictsCancelled(t *testing.T) {
	rec := Records{
		CancelAudits: []CancelAudit{
			{Status: CancelCancelled},
			{Status: CancelSaved},
		},
	}
	if got := ResolveStage(rec); got != StageCustomer {
		t.Fatalf("expected stage %q, got %q", StageCustomer, got)
	}
}

func TestResolveStageWonBackContradictsCancelled(t *testing.T) {
	rec := Records{
		Winbacks:     []Winback{{Status: WinbackWonBack}},
		CancelAudits: []CancelAudit{{Status: CancelCancelled}},
	}
	if got := ResolveStage(rec); got != StageWonBack {
		t.Fatalf("expected stage %q, got %q", StageWonBack, got)
	}
}

func TestResolveStageRenewalActivityContradictsCancelled(t *testing.T) {
	rec := Records{
		CancelAudits: []CancelAudit{{Status: CancelCancelled}},
		Renewals:     []Renewal{{Status: RenewalUncontacted}},
	}
	if got := ResolveStage(rec); got != StageRenewal {
		t.Fatalf("expected stage %q, got %q", StageRenewal, got)
	}

	// Even a failed renewal is activity; the contact is not simply cancelled.
	rec.Renewals = []Renewal{{Status: RenewalFailed}}
	if got := ResolveStage(rec); got != StageLead {
		t.Fatalf("expected stage %q, got %q", StageLead, got)
	}
}

func TestResolveStageOpenRenewal(t *testing.T) {
	for _, status := range []string{RenewalUncontacted, RenewalPending} {
		rec := Records{
			Renewals: []Renewal{{Status: status}},
			Sales:    []Sale{{Status: SaleSold}},
		}
		if got := ResolveStage(rec); got != StageRenewal {
			t.Fatalf("expected stage %q for renewal status %q, got %q", StageRenewal, status, got)
		}
	}
}

func TestResolveStageCustomer(t *testing.T) {
	cases := []Records{
		{Renewals: []Renewal{{Status: RenewalSuccess}}},
		{Sales: []Sale{{Status: SaleSold}}},
		{CancelAudits: []CancelAudit{{Status: CancelSaved}}},
	}
	for i, rec := range cases {
		if got := ResolveStage(rec); got != StageCustomer {
			t.Fatalf("case %d: expected stage %q, got %q", i, StageCustomer, got)
		}
	}
}

func TestResolveStageLeadDefault(t *testing.T) {
	if got := ResolveStage(Records{}); got != StageLead {
		t.Fatalf("expected stage %q for no records, got %q", StageLead, got)
	}

	rec := Records{Sales: []Sale{{Status: SaleQuoted}, {Status: SaleLost}}}
	if got := ResolveStage(rec); got != StageLead {
		t.Fatalf("expected stage %q for quoted-only sales, got %q", StageLead, got)
	}
}

func TestResolveStageTotalOnUnknownStatuses(t *testing.T) {
	// Garbage statuses never panic and fall through to lead.
	rec := Records{
		Winbacks:     []Winback{{Status: "???"}},
		CancelAudits: []CancelAudit{{Status: ""}},
		Sales:        []Sale{{Status: "bogus"}},
	}
	if got := ResolveStage(rec); got != StageLead {
		t.Fatalf("expected stage %q, got %q", StageLead, got)
	}
}

func TestResolveStageOrderIndependentInput(t *testing.T) {
	a := Records{
		Winbacks: []Winback{{Status: WinbackLost}, {Status: WinbackUntouched}},
	}
	b := Records{
		Winbacks: []Winback{{Status: WinbackUntouched}, {Status: WinbackLost}},
	}
	if ResolveStage(a) != ResolveStage(b) {
		t.Fatalf("expected stage to be independent of record order, got %q and %q",
			ResolveStage(a), ResolveStage(b))
	}
}
