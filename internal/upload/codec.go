package upload

import (
	"encoding/json"
	"fmt"
)

// DecodeRecords unmarshals a raw JSON array into the typed record list for
// the given report type. Used by the HTTP layer and the background worker,
// which both carry records as JSON.
func DecodeRecords(reportType ReportType, data []byte) ([]Record, error) {
	switch reportType {
	case ReportTerminations:
		var recs []TerminationRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode termination records: %w", err)
		}
		return asRecords(recs), nil
	case ReportCancelAudit:
		var recs []CancelAuditRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode cancel-audit records: %w", err)
		}
		return asRecords(recs), nil
	case ReportRenewals:
		var recs []RenewalRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode renewal records: %w", err)
		}
		return asRecords(recs), nil
	case ReportSales:
		var recs []SaleRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode sale records: %w", err)
		}
		return asRecords(recs), nil
	default:
		return nil, fmt.Errorf("unknown report type %q", reportType)
	}
}

func asRecords[T Record](recs []T) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out
}
