package audit

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// DefaultStatus is shown when the summary carries no status.
	DefaultStatus = "Processado"
	// MissingImpact is shown when the summary carries no financial impact.
	MissingImpact = "0,00"

	timestampLayout = "02/01/2006, 15:04:05"
)

// naive ISO-8601 layouts emitted without an offset; read as local time.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// FormatSize renders a byte count as megabytes with two decimals.
func FormatSize(sizeBytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(sizeBytes)/1024/1024)
}

// StatusLabel returns the overall status or DefaultStatus.
func (r Result) StatusLabel() string {
	if r.Summary == nil || r.Summary.OverallStatus == nil || *r.Summary.OverallStatus == "" {
		return DefaultStatus
	}
	return *r.Summary.OverallStatus
}

// IrregularityCount returns the reported count or 0.
func (r Result) IrregularityCount() int {
	if r.Summary == nil || r.Summary.Irregularities == nil {
		return 0
	}
	return *r.Summary.Irregularities
}

// ImpactLabel returns the financial impact with exactly two decimals, or
// MissingImpact when absent.
func (r Result) ImpactLabel() string {
	if r.Summary == nil || r.Summary.FinancialImpact == nil {
		return MissingImpact
	}
	return FormatAmount(*r.Summary.FinancialImpact)
}

// FormatAmount renders a currency value with two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatTimestamp renders an ISO-8601 timestamp as dd/mm/yyyy, hh:mm:ss in
// loc. Values that do not parse are returned unchanged.
func FormatTimestamp(value string, loc *time.Location) string {
	if value == "" {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc).Format(timestampLayout)
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.Format(timestampLayout)
		}
	}
	return value
}
