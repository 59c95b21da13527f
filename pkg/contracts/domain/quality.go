package domain

// ValidationReport is produced by the catalog cleaner.
type ValidationReport struct {
	TotalRecords     int      `json:"total_records"`
	UniqueAutomakers int      `json:"unique_automakers"`
	Issues           []string `json:"issues"`
	Recommendations  []string `json:"recommendations"`
	// QualityScore is 100 - 10 per issue - 5 per recommendation, clamped
	// to [0,100].
	QualityScore  float64 `json:"quality_score"`
	QualityStatus string  `json:"quality_status"`
}

// QualityReport scores one dataset across five dimensions, each 0-100.
type QualityReport struct {
	Dataset      string   `json:"dataset"`
	Completeness float64  `json:"completeness"`
	Uniqueness   float64  `json:"uniqueness"`
	Consistency  float64  `json:"consistency"`
	Validity     float64  `json:"validity"`
	Accuracy     float64  `json:"accuracy"`
	Overall      float64  `json:"overall"`
	Rating       string   `json:"rating"`
	Findings     []string `json:"findings,omitempty"`
}

// InsightSeverity grades a rule-based recommendation.
type InsightSeverity string

const (
	SeverityInfo     InsightSeverity = "info"
	SeverityWarning  InsightSeverity = "warning"
	SeverityCritical InsightSeverity = "critical"
)

// Insight is one rule-based recommendation produced by the reporter.
type Insight struct {
	Severity InsightSeverity `json:"severity"`
	Category string          `json:"category"`
	Message  string          `json:"message"`
}
