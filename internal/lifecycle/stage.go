// Package lifecycle derives the single current lifecycle stage for a contact
// from its linked rows across the four report families. The stage is computed
// on read and never persisted.
package lifecycle

// Stage is the derived position of a contact across all four subsystems.
type Stage string

const (
	StageWinback   Stage = "winback"
	StageWonBack   Stage = "won_back"
	StageAtRisk    Stage = "at_risk"
	StageCancelled Stage = "cancelled"
	StageRenewal   Stage = "renewal"
	StageCustomer  Stage = "customer"
	StageLead      Stage = "lead"
)

// Winback statuses.
const (
	WinbackUntouched  = "untouched"
	WinbackInProgress = "in_progress"
	WinbackWonBack    = "won_back"
	WinbackLost       = "lost"
)

// Cancel-audit statuses. "cancel" means pending cancellation, still savable.
const (
	CancelPending   = "cancel"
	CancelCancelled = "cancelled"
	CancelLost      = "lost"
	CancelSaved     = "saved"
)

// Renewal statuses.
const (
	RenewalUncontacted = "uncontacted"
	RenewalPending     = "pending"
	RenewalSuccess     = "success"
	RenewalFailed      = "failed"
)

// Sale (LQS) statuses.
const (
	SaleQuoted = "quoted"
	SaleSold   = "sold"
	SaleLost   = "lost"
)

// Winback is a winback policy's stage-relevant view.
type Winback struct {
	Status string
}

// CancelAudit is a cancel-audit record's stage-relevant view.
type CancelAudit struct {
	Status string
}

// Renewal is a renewal record's stage-relevant view.
type Renewal struct {
	Status string
}

// Sale is a sales (LQS) record's stage-relevant view.
type Sale struct {
	Status string
}

// Records bundles a contact's active rows across the four report families.
type Records struct {
	Winbacks     []Winback
	CancelAudits []CancelAudit
	Renewals     []Renewal
	Sales        []Sale
}

// ResolveStage returns exactly one stage for the given records. It is a pure,
// total function evaluated as an ordered decision list: each rule is only
// consulted when every earlier rule failed to match, so simultaneously true
// conditions are settled by list position alone.
func ResolveStage(rec Records) Stage {
	// 1. An open winback takes priority over everything else.
	for _, w := range rec.Winbacks {
		if w.Status == WinbackInProgress || w.Status == WinbackUntouched {
			return StageWinback
		}
	}

	// 2. A completed winback.
	for _, w := range rec.Winbacks {
		if w.Status == WinbackWonBack {
			return StageWonBack
		}
	}

	// 3. A pending cancellation is still savable.
	for _, c := range rec.CancelAudits {
		if c.Status == CancelPending {
			return StageAtRisk
		}
	}

	// 4. Cancelled, unless a saved audit row, a won-back winback, or any
	// renewal activity contradicts it.
	if hasCancelledOrLost(rec.CancelAudits) &&
		!hasSaved(rec.CancelAudits) &&
		!hasWonBack(rec.Winbacks) &&
		len(rec.Renewals) == 0 {
		return StageCancelled
	}

	// 5. An open renewal.
	for _, r := range rec.Renewals {
		if r.Status == RenewalUncontacted || r.Status == RenewalPending {
			return StageRenewal
		}
	}

	// 6. An active customer relationship.
	if hasRenewalSuccess(rec.Renewals) || hasSold(rec.Sales) || hasSaved(rec.CancelAudits) {
		return StageCustomer
	}

	// 7-8. Anything in the sales pipeline, or nothing at all, is a lead.
	return StageLead
}

func hasCancelledOrLost(audits []CancelAudit) bool {
	for _, c := range audits {
		if c.Status == CancelCancelled || c.Status == CancelLost {
			return true
		}
	}
	return false
}

func hasSaved(audits []CancelAudit) bool {
	for _, c := range audits {
		if c.Status == CancelSaved {
			return true
		}
	}
	return false
}

func hasWonBack(winbacks []Winback) bool {
	for _, w := range winbacks {
		if w.Status == WinbackWonBack {
			return true
		}
	}
	return false
}

func hasRenewalSuccess(renewals []Renewal) bool {
	for _, r := range renewals {
		if r.Status == RenewalSuccess {
			return true
		}
	}
	return false
}

func hasSold(sales []Sale) bool {
	for _, s := range sales {
		if s.Status == SaleSold {
			return true
		}
	}
	return false
}
