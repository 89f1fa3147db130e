package upload

import (
	"testing"

	"agencyhub_backend/platform/validator"
)

func TestReportTypeValid(t *testing.T) {
	for _, rt := range []ReportType{ReportTerminations, ReportCancelAudit, ReportRenewals, ReportSales} {
		if !rt.Valid() {
			t.Fatalf("expected %q to be valid", rt)
		}
	}
	if ReportType("payroll").Valid() {
		t.Fatalf("expected unknown report type to be invalid")
	}
}

func TestSnapshotReplaceSemantics(t *testing.T) {
	if !ReportCancelAudit.SnapshotReplace() || !ReportRenewals.SnapshotReplace() {
		t.Fatalf("expected audit report types to be snapshot replacements")
	}
	if ReportTerminations.SnapshotReplace() || ReportSales.SnapshotReplace() {
		t.Fatalf("expected terminations and sales to be append-style")
	}
}

func TestRecordValidationRequiresProductOrLine(t *testing.T) {
	val := validator.New()

	rec := TerminationRecord{
		RecordBase:   RecordBase{LastName: "Smith"},
		PolicyNumber: "P1",
	}
	if err := rec.Validate(val); err == nil {
		t.Fatalf("expected validation failure without product or line")
	}

	rec.LineCode = "HO3"
	if err := rec.Validate(val); err != nil {
		t.Fatalf("expected line code alone to satisfy validation, got %v", err)
	}

	rec.LineCode = ""
	rec.ProductName = "Homeowners"
	if err := rec.Validate(val); err != nil {
		t.Fatalf("expected product name alone to satisfy validation, got %v", err)
	}
}

func TestRecordValidationStatusEnums(t *testing.T) {
	val := validator.New()

	sale := SaleRecord{
		RecordBase:   RecordBase{LastName: "Smith"},
		LQSReference: "LQS-1",
		Status:       "exploded",
		ProductName:  "Auto",
	}
	if err := sale.Validate(val); err == nil {
		t.Fatalf("expected unknown sale status to fail validation")
	}

	sale.Status = "sold"
	if err := sale.Validate(val); err != nil {
		t.Fatalf("expected sold to be accepted, got %v", err)
	}
}

func TestNaturalKeyTrimsWhitespace(t *testing.T) {
	rec := TerminationRecord{PolicyNumber: " P-100 "}
	if got := rec.NaturalKey(); got != "P-100" {
		t.Fatalf("expected trimmed natural key, got %q", got)
	}
}

func TestDecodeRecordsPerReportType(t *testing.T) {
	data := []byte(`[{"lastName":"Smith","zipCode":"10001","policyNumber":"P1","productName":"Auto"}]`)

	records, err := DecodeRecords(ReportTerminations, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if _, ok := records[0].(TerminationRecord); !ok {
		t.Fatalf("expected a TerminationRecord, got %T", records[0])
	}
	if records[0].NaturalKey() != "P1" {
		t.Fatalf("expected natural key P1, got %q", records[0].NaturalKey())
	}

	saleData := []byte(`[{"lastName":"Doe","lqsReference":"LQS-9","status":"quoted","lineCode":"AUTO"}]`)
	records, err = DecodeRecords(ReportSales, saleData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := records[0].(SaleRecord); !ok {
		t.Fatalf("expected a SaleRecord, got %T", records[0])
	}
}

func TestDecodeRecordsRejectsUnknownTypeAndBadJSON(t *testing.T) {
	if _, err := DecodeRecords(ReportType("mystery"), []byte(`[]`)); err == nil {
		t.Fatalf("expected error for unknown report type")
	}
	if _, err := DecodeRecords(ReportTerminations, []byte(`{not json`)); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}
