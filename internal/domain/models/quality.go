package models

import "time"

// QualityStatus classifies a batch by its quality score. The thresholds are
// fixed for compatibility with the research pipeline's stored logs.
type QualityStatus string

const (
	StatusExcellent  QualityStatus = "EXCELLENT"  // score >= 90
	StatusGood       QualityStatus = "GOOD"       // score >= 75
	StatusAcceptable QualityStatus = "ACCEPTABLE" // score >= 50
	StatusPoor       QualityStatus = "POOR"       // score >= 25
	StatusFailed     QualityStatus = "FAILED"     // score < 25
)

// StatusForScore maps a quality score to its status band. Monotonic: a higher
// score never yields a worse status.
func StatusForScore(score float64) QualityStatus {
	switch {
	case score >= 90:
		return StatusExcellent
	case score >= 75:
		return StatusGood
	case score >= 50:
		return StatusAcceptable
	case score >= 25:
		return StatusPoor
	default:
		return StatusFailed
	}
}

// QualityMetrics is the assessment of one collection batch. Created once per
// batch and never mutated afterwards.
type QualityMetrics struct {
	DataKind      RecordKind    `json:"data_kind"`
	Timestamp     time.Time     `json:"timestamp"`
	RecordCount   int           `json:"record_count"`
	NullRate      float64       `json:"null_rate"`
	DuplicateRate float64       `json:"duplicate_rate"`
	OutlierRate   float64       `json:"outlier_rate"`
	Completeness  float64       `json:"completeness"`
	QualityScore  float64       `json:"quality_score"`
	Status        QualityStatus `json:"status"`

	// FieldCompleteness breaks Completeness down per optional field for
	// diagnostics; not part of the score.
	FieldCompleteness map[string]float64 `json:"field_completeness,omitempty"`
}
