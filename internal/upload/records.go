// Package upload implements the batch upload coordinator shared by the four
// report pipelines: lost-customer terminations (winbacks), cancellation
// audits, renewal audits, and new-business sales (LQS). Each pipeline follows
// the same shape; only the detail-row persistence and snapshot semantics
// differ.
package upload

import (
	"strings"
	"time"

	"agencyhub_backend/platform/validator"
)

// ReportType identifies one of the four upload producers.
type ReportType string

const (
	ReportTerminations ReportType = "terminations"
	ReportCancelAudit  ReportType = "cancel_audit"
	ReportRenewals     ReportType = "renewals"
	ReportSales        ReportType = "sales"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportTerminations, ReportCancelAudit, ReportRenewals, ReportSales:
		return true
	}
	return false
}

// SnapshotReplace reports whether uploads of this type replace the prior
// snapshot. Audit-style reports (cancellation and renewal audits) are full
// replacements: every active row is deactivated before the file is applied.
// Terminations and sales are append-style merges by natural key.
func (t ReportType) SnapshotReplace() bool {
	return t == ReportCancelAudit || t == ReportRenewals
}

// RecordBase carries the household-identifying fields and contact channels
// common to every parsed record.
type RecordBase struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName" validate:"required"`
	ZipCode   string `json:"zipCode"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Record is the common surface the coordinator needs from any parsed row.
// The concrete types below are produced by the external spreadsheet parsers.
type Record interface {
	// Base returns the household-identifying fields.
	Base() RecordBase
	// NaturalKey returns the domain identifier used for idempotent upsert,
	// e.g. a policy number.
	NaturalKey() string
	// Validate checks required fields. A failure skips the record, never the
	// batch.
	Validate(val *validator.Validator) error
}

// TerminationRecord is one row of a lost-customer termination report. Each
// becomes a winback policy to be worked by the agency.
type TerminationRecord struct {
	RecordBase
	PolicyNumber    string     `json:"policyNumber" validate:"required"`
	ProductName     string     `json:"productName"`
	LineCode        string     `json:"lineCode"`
	PremiumCents    int64      `json:"premiumCents"`
	TerminationDate *time.Time `json:"terminationDate"`
}

func (r TerminationRecord) Base() RecordBase   { return r.RecordBase }
func (r TerminationRecord) NaturalKey() string { return strings.TrimSpace(r.PolicyNumber) }

func (r TerminationRecord) Validate(val *validator.Validator) error {
	if err := val.Struct(r); err != nil {
		return err
	}
	return requireProductOrLine(r.ProductName, r.LineCode)
}

// CancelAuditRecord is one row of a cancellation/pending-cancel audit.
type CancelAuditRecord struct {
	RecordBase
	PolicyNumber   string     `json:"policyNumber" validate:"required"`
	Status         string     `json:"status" validate:"required,oneof=cancel cancelled lost saved pending"`
	ProductName    string     `json:"productName"`
	LineCode       string     `json:"lineCode"`
	AmountDueCents int64      `json:"amountDueCents"`
	CancelDate     *time.Time `json:"cancelDate"`
}

func (r CancelAuditRecord) Base() RecordBase   { return r.RecordBase }
func (r CancelAuditRecord) NaturalKey() string { return strings.TrimSpace(r.PolicyNumber) }

func (r CancelAuditRecord) Validate(val *validator.Validator) error {
	if err := val.Struct(r); err != nil {
		return err
	}
	return requireProductOrLine(r.ProductName, r.LineCode)
}

// RenewalRecord is one row of a renewal audit.
type RenewalRecord struct {
	RecordBase
	PolicyNumber string     `json:"policyNumber" validate:"required"`
	Status       string     `json:"status" validate:"required,oneof=uncontacted pending success failed"`
	ProductName  string     `json:"productName"`
	LineCode     string     `json:"lineCode"`
	PremiumCents int64      `json:"premiumCents"`
	RenewalDate  *time.Time `json:"renewalDate"`
}

func (r RenewalRecord) Base() RecordBase   { return r.RecordBase }
func (r RenewalRecord) NaturalKey() string { return strings.TrimSpace(r.PolicyNumber) }

func (r RenewalRecord) Validate(val *validator.Validator) error {
	if err := val.Struct(r); err != nil {
		return err
	}
	return requireProductOrLine(r.ProductName, r.LineCode)
}

// SaleRecord is one row of a new-business sales (LQS) report.
type SaleRecord struct {
	RecordBase
	LQSReference string     `json:"lqsReference" validate:"required"`
	Status       string     `json:"status" validate:"required,oneof=quoted sold lost"`
	ProductName  string     `json:"productName"`
	LineCode     string     `json:"lineCode"`
	PremiumCents int64      `json:"premiumCents"`
	SoldDate     *time.Time `json:"soldDate"`
}

func (r SaleRecord) Base() RecordBase   { return r.RecordBase }
func (r SaleRecord) NaturalKey() string { return strings.TrimSpace(r.LQSReference) }

func (r SaleRecord) Validate(val *validator.Validator) error {
	if err := val.Struct(r); err != nil {
		return err
	}
	return requireProductOrLine(r.ProductName, r.LineCode)
}

// requireProductOrLine enforces the mandatory product identification: a
// record must carry a product name or a line code. Records with neither are
// skipped.
func requireProductOrLine(productName, lineCode string) error {
	if strings.TrimSpace(productName) == "" && strings.TrimSpace(lineCode) == "" {
		return errMissingProduct
	}
	return nil
}
