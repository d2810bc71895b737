package models

import "time"

// VolumePoint is one observation in a per-symbol volume series.
type VolumePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Volume    float64   `json:"volume"`
	Price     float64   `json:"price"`
}

// SpikeReport describes a detected volume spike: the latest observation
// measured against the mean and stddev of the preceding window.
type SpikeReport struct {
	Symbol       string    `json:"symbol"`
	Timestamp    time.Time `json:"timestamp"`
	LatestVolume float64   `json:"latest_volume"`
	MeanVolume   float64   `json:"mean_volume"`
	StdVolume    float64   `json:"std_volume"`
	ZScore       float64   `json:"z_score"`
	PctIncrease  float64   `json:"pct_increase"`
	Window       int       `json:"window"`
	Multiplier   float64   `json:"multiplier"`
}

// AnomalyMethod selects the statistical test used for anomaly detection.
type AnomalyMethod string

const (
	MethodIQR    AnomalyMethod = "iqr"
	MethodZScore AnomalyMethod = "zscore"
)

// AnomalyReport lists the indices of anomalous points in the retained series
// along with the bounds that classified them.
type AnomalyReport struct {
	Symbol     string        `json:"symbol"`
	Method     AnomalyMethod `json:"method"`
	Indices    []int         `json:"indices"`
	SeriesLen  int           `json:"series_len"`
	LowerBound float64       `json:"lower_bound,omitempty"`
	UpperBound float64       `json:"upper_bound,omitempty"`
	ZThreshold float64       `json:"z_threshold,omitempty"`
}

// CorrelationReport is the volume-price Pearson correlation over a window.
type CorrelationReport struct {
	Symbol string  `json:"symbol"`
	Window int     `json:"window"`
	R      float64 `json:"r"`
	PValue float64 `json:"p_value"`
}

// WashTradingIndicators is the composite wash-trading heuristic. Advisory
// only: no single condition is conclusive and the score never excludes data
// by itself.
type WashTradingIndicators struct {
	Symbol          string   `json:"symbol"`
	SuspicionScore  float64  `json:"suspicion_score"`
	Signals         []string `json:"signals"`
	AvgVolume       float64  `json:"avg_volume"`
	PriceVolatility float64  `json:"price_volatility"`
	VolumeCV        float64  `json:"volume_cv"`
	Correlation     float64  `json:"correlation"`
}

// TrendDirection labels the slope of a volume trend fit.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendFlat       TrendDirection = "flat"
)

// TrendReport is the OLS volume trend over a window.
type TrendReport struct {
	Symbol    string         `json:"symbol"`
	Window    int            `json:"window"`
	Direction TrendDirection `json:"direction"`
	Slope     float64        `json:"slope"`
	RSquared  float64        `json:"r_squared"`
}

// VolumeSummary is the consolidated on-demand view of every volume analysis
// for a symbol. Parts that failed carry their error in Errors instead.
type VolumeSummary struct {
	Symbol      string                 `json:"symbol"`
	Timestamp   time.Time              `json:"timestamp"`
	DataPoints  int                    `json:"data_points"`
	Spike       *SpikeReport           `json:"spike,omitempty"`
	Anomalies   *AnomalyReport         `json:"anomalies,omitempty"`
	Correlation *CorrelationReport     `json:"correlation,omitempty"`
	WashTrading *WashTradingIndicators `json:"wash_trading,omitempty"`
	Trend       *TrendReport           `json:"trend,omitempty"`
	Errors      map[string]string      `json:"errors,omitempty"`
}
