// Package quality scores freshly collected batches along four axes (nulls,
// duplicates, outliers, completeness) and classifies them for the ingest
// gate. Scoring never rejects individual records; a single malformed record
// must not abort a batch assessment.
package quality

import (
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/services/stats"
	applogger "CoinSentry/pkg/logger"
)

// Weights control how much each defect class subtracts from the quality
// score. Null and duplicate data corrupt downstream joins more than
// statistical outliers, which may be legitimate spikes.
type Weights struct {
	Null      float64 `yaml:"null" default:"0.4"`
	Duplicate float64 `yaml:"duplicate" default:"0.3"`
	Outlier   float64 `yaml:"outlier" default:"0.3"`
}

// Config holds the monitor's tunables.
type Config struct {
	Weights Weights `yaml:"weights"`
	// IQRMultiplier widens or narrows the outlier fence (Tukey's 1.5).
	IQRMultiplier float64 `yaml:"iqr_multiplier" default:"1.5"`
}

// DefaultConfig returns the documented default weighting.
func DefaultConfig() Config {
	return Config{
		Weights:       Weights{Null: 0.4, Duplicate: 0.3, Outlier: 0.3},
		IQRMultiplier: 1.5,
	}
}

// Monitor assesses collection batches. Stateless apart from configuration;
// safe for concurrent use.
type Monitor struct {
	cfg Config
	l   *applogger.Logger
}

// NewMonitor creates a quality monitor with the given configuration.
func NewMonitor(cfg Config) *Monitor {
	if cfg.IQRMultiplier <= 0 {
		cfg.IQRMultiplier = 1.5
	}
	return &Monitor{cfg: cfg}
}

// SetLogger injects a structured logger for low-quality batch warnings.
func (m *Monitor) SetLogger(l *applogger.Logger) { m.l = l }

// Assess scores one batch of records of the given kind. An empty batch is a
// failed collection cycle, not "nothing to judge": score 0, status FAILED.
func (m *Monitor) Assess(records []models.Record, kind models.RecordKind) models.QualityMetrics {
	now := time.Now().UTC()
	if len(records) == 0 {
		return models.QualityMetrics{
			DataKind:     kind,
			Timestamp:    now,
			RecordCount:  0,
			NullRate:     1.0,
			QualityScore: 0,
			Status:       models.StatusFailed,
		}
	}

	spec, known := kindSpecs[kind]
	qm := models.QualityMetrics{
		DataKind:    kind,
		Timestamp:   now,
		RecordCount: len(records),
	}
	if known {
		qm.NullRate = m.nullRate(records, spec)
		qm.DuplicateRate = m.duplicateRate(records, spec)
		qm.OutlierRate = m.outlierRate(records, spec)
		qm.FieldCompleteness = m.fieldCompleteness(records, spec)
		qm.Completeness = meanOfMap(qm.FieldCompleteness)
	} else {
		// Unknown kinds cannot be checked against a contract; everything
		// required is "missing".
		qm.NullRate = 1.0
	}

	score := 100 * (1 -
		m.cfg.Weights.Null*qm.NullRate -
		m.cfg.Weights.Duplicate*qm.DuplicateRate -
		m.cfg.Weights.Outlier*qm.OutlierRate)
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	qm.QualityScore = score
	qm.Status = models.StatusForScore(score)

	if m.l != nil && (qm.Status == models.StatusPoor || qm.Status == models.StatusFailed) {
		m.l.Warn("low quality batch",
			applogger.String("kind", string(kind)),
			applogger.String("status", string(qm.Status)),
			applogger.Any("quality_score", qm.QualityScore),
			applogger.Any("null_rate", qm.NullRate),
			applogger.Any("duplicate_rate", qm.DuplicateRate),
			applogger.Any("outlier_rate", qm.OutlierRate),
		)
	}
	return qm
}

// nullRate is the fraction of records with at least one required field
// missing or null.
func (m *Monitor) nullRate(records []models.Record, spec kindSpec) float64 {
	var bad int
	for _, r := range records {
		for _, f := range spec.required {
			if !r.Has(f) {
				bad++
				break
			}
		}
	}
	return float64(bad) / float64(len(records))
}

// duplicateRate is the fraction of records whose natural key repeats within
// the batch. Records without a derivable key are not counted as duplicates.
func (m *Monitor) duplicateRate(records []models.Record, spec kindSpec) float64 {
	seen := make(map[string]bool, len(records))
	var dups int
	for _, r := range records {
		key, ok := spec.naturalKey(r)
		if !ok {
			continue
		}
		if seen[key] {
			dups++
		}
		seen[key] = true
	}
	return float64(dups) / float64(len(records))
}

// outlierRate scans each quality-sensitive numeric field with IQR bounds over
// the batch and returns the mean per-field outlier fraction. Fields with
// fewer than four values are skipped, not penalized.
func (m *Monitor) outlierRate(records []models.Record, spec kindSpec) float64 {
	var total float64
	var fields int
	for _, f := range spec.numeric {
		values := make([]float64, 0, len(records))
		for _, r := range records {
			if v, ok := r.Float(f); ok {
				values = append(values, v)
			}
		}
		lower, upper, err := stats.IQRBounds(values, m.cfg.IQRMultiplier)
		if err != nil {
			continue
		}
		var out int
		for _, v := range values {
			if v < lower || v > upper {
				out++
			}
		}
		total += float64(out) / float64(len(values))
		fields++
	}
	if fields == 0 {
		return 0
	}
	return total / float64(fields)
}

// fieldCompleteness reports, per optional field, the fraction of records that
// carry it. Diagnostic only.
func (m *Monitor) fieldCompleteness(records []models.Record, spec kindSpec) map[string]float64 {
	if len(spec.optional) == 0 {
		return nil
	}
	out := make(map[string]float64, len(spec.optional))
	for _, f := range spec.optional {
		var present int
		for _, r := range records {
			if r.Has(f) {
				present++
			}
		}
		out[f] = float64(present) / float64(len(records))
	}
	return out
}

func meanOfMap(m map[string]float64) float64 {
	if len(m) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum / float64(len(m))
}
