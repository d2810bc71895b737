// Package volume maintains per-symbol (timestamp, volume, price) series and
// answers spike, anomaly, correlation, trend and wash-trading questions over
// them. Appends are explicit and ordered; analysis functions are pure reads
// over a snapshot of the series at call time.
package volume

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/services/stats"
)

// OutOfOrderError reports an append whose timestamp precedes the last stored
// point. The analyzer never resorts silently; ordering is a caller bug that
// must surface.
type OutOfOrderError struct {
	Symbol string
	Last   time.Time
	Got    time.Time
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("volume series %s: timestamp %s precedes last stored %s",
		e.Symbol, e.Got.Format(time.RFC3339), e.Last.Format(time.RFC3339))
}

// Config holds the analyzer's tunables.
type Config struct {
	// SpikeWindow is the number of preceding points the latest volume is
	// compared against.
	SpikeWindow int `yaml:"spike_window" default:"24"`
	// SpikeMultiplier is the stddev multiple that flags a spike.
	SpikeMultiplier float64 `yaml:"spike_multiplier" default:"2"`
	// AnomalyZThreshold is the |z| cutoff for the zscore anomaly method.
	AnomalyZThreshold float64 `yaml:"anomaly_z_threshold" default:"3"`
	// IQRMultiplier is the fence width for the iqr anomaly method.
	IQRMultiplier float64 `yaml:"iqr_multiplier" default:"1.5"`
	// WashWindow is the recent window wash-trading conditions evaluate over.
	WashWindow int `yaml:"wash_window" default:"20"`
	// WashCVThreshold flags scripted constant-volume injection when the
	// volume coefficient of variation drops below it.
	WashCVThreshold float64 `yaml:"wash_cv_threshold" default:"0.05"`
	// WashCorrThreshold flags volume-price decorrelation below |r|.
	WashCorrThreshold float64 `yaml:"wash_corr_threshold" default:"0.1"`
	// WashPriceVolThreshold is the relative price volatility under which high
	// volume counts as suspicious.
	WashPriceVolThreshold float64 `yaml:"wash_price_vol_threshold" default:"0.02"`
	// TrendFlatRel treats slopes below this fraction of the mean volume per
	// step as flat.
	TrendFlatRel float64 `yaml:"trend_flat_rel" default:"0.01"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		SpikeWindow:           24,
		SpikeMultiplier:       2,
		AnomalyZThreshold:     3,
		IQRMultiplier:         1.5,
		WashWindow:            20,
		WashCVThreshold:       0.05,
		WashCorrThreshold:     0.1,
		WashPriceVolThreshold: 0.02,
		TrendFlatRel:          0.01,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.SpikeWindow <= 0 {
		c.SpikeWindow = d.SpikeWindow
	}
	if c.SpikeMultiplier <= 0 {
		c.SpikeMultiplier = d.SpikeMultiplier
	}
	if c.AnomalyZThreshold <= 0 {
		c.AnomalyZThreshold = d.AnomalyZThreshold
	}
	if c.IQRMultiplier <= 0 {
		c.IQRMultiplier = d.IQRMultiplier
	}
	if c.WashWindow <= 0 {
		c.WashWindow = d.WashWindow
	}
	if c.WashCVThreshold <= 0 {
		c.WashCVThreshold = d.WashCVThreshold
	}
	if c.WashCorrThreshold <= 0 {
		c.WashCorrThreshold = d.WashCorrThreshold
	}
	if c.WashPriceVolThreshold <= 0 {
		c.WashPriceVolThreshold = d.WashPriceVolThreshold
	}
	if c.TrendFlatRel <= 0 {
		c.TrendFlatRel = d.TrendFlatRel
	}
}

// Analyzer owns the per-symbol series map. The map is guarded so independent
// symbols can be fed concurrently, but each symbol's series must have a
// single writer at a time (one collection cycle); the analyzer does not
// serialize writers per symbol.
type Analyzer struct {
	cfg Config

	mu     sync.RWMutex
	series map[string][]models.VolumePoint
}

// NewAnalyzer creates a volume analyzer with the given configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	cfg.normalize()
	return &Analyzer{cfg: cfg, series: make(map[string][]models.VolumePoint)}
}

// AddPoint appends one observation to a symbol's series. Timestamps must be
// monotonically non-decreasing per symbol.
func (a *Analyzer) AddPoint(symbol string, ts time.Time, vol, price float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	pts := a.series[symbol]
	if n := len(pts); n > 0 && ts.Before(pts[n-1].Timestamp) {
		return &OutOfOrderError{Symbol: symbol, Last: pts[n-1].Timestamp, Got: ts}
	}
	a.series[symbol] = append(pts, models.VolumePoint{Timestamp: ts, Volume: vol, Price: price})
	return nil
}

// Truncate drops all but the newest keep points of a symbol's series.
// Retention is the caller's decision; the analyzer never prunes on its own.
func (a *Analyzer) Truncate(symbol string, keep int) {
	if keep < 0 {
		keep = 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	pts := a.series[symbol]
	if len(pts) > keep {
		trimmed := make([]models.VolumePoint, keep)
		copy(trimmed, pts[len(pts)-keep:])
		a.series[symbol] = trimmed
	}
}

// Len returns the number of retained points for a symbol.
func (a *Analyzer) Len(symbol string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.series[symbol])
}

// Symbols returns the tracked symbols in sorted order.
func (a *Analyzer) Symbols() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.series))
	for s := range a.series {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// snapshot copies a symbol's series so analysis never races a concurrent
// append to another symbol.
func (a *Analyzer) snapshot(symbol string) []models.VolumePoint {
	a.mu.RLock()
	defer a.mu.RUnlock()
	pts := a.series[symbol]
	out := make([]models.VolumePoint, len(pts))
	copy(out, pts)
	return out
}

// DetectSpike compares the latest volume to the mean of the preceding window
// points. Returns nil with no error when history is too short; that is
// missing data, not a failure.
func (a *Analyzer) DetectSpike(symbol string, window int) (*models.SpikeReport, error) {
	if window <= 0 {
		window = a.cfg.SpikeWindow
	}
	pts := a.snapshot(symbol)
	if len(pts) < window+1 {
		return nil, nil
	}

	latest := pts[len(pts)-1]
	hist := make([]float64, 0, window)
	for _, p := range pts[len(pts)-1-window : len(pts)-1] {
		hist = append(hist, p.Volume)
	}
	mean, stddev, err := stats.MeanStdDev(hist)
	if err != nil {
		return nil, err
	}

	rep := &models.SpikeReport{
		Symbol:       symbol,
		Timestamp:    latest.Timestamp,
		LatestVolume: latest.Volume,
		MeanVolume:   mean,
		StdVolume:    stddev,
		Window:       window,
		Multiplier:   a.cfg.SpikeMultiplier,
	}
	if mean > 0 {
		rep.PctIncrease = (latest.Volume - mean) / mean * 100
	}

	var spike bool
	if stddev > 0 {
		rep.ZScore = (latest.Volume - mean) / stddev
		spike = latest.Volume >= mean+a.cfg.SpikeMultiplier*stddev
	} else {
		// Constant history has no z-scale; fall back to the multiplier acting
		// on the mean so a flat-line series still surfaces a jump.
		spike = mean > 0 && latest.Volume >= mean*(1+a.cfg.SpikeMultiplier)
	}
	if !spike {
		return nil, nil
	}
	return rep, nil
}

// DetectAnomalies scans the full retained series with the requested method
// and returns the indices of anomalous points. A constant series has no
// anomalies by definition.
func (a *Analyzer) DetectAnomalies(symbol string, method models.AnomalyMethod) (*models.AnomalyReport, error) {
	pts := a.snapshot(symbol)
	vols := make([]float64, len(pts))
	for i, p := range pts {
		vols[i] = p.Volume
	}

	rep := &models.AnomalyReport{Symbol: symbol, Method: method, SeriesLen: len(pts)}
	switch method {
	case models.MethodIQR:
		lower, upper, err := stats.IQRBounds(vols, a.cfg.IQRMultiplier)
		if err != nil {
			return nil, err
		}
		rep.LowerBound = lower
		rep.UpperBound = upper
		for i, v := range vols {
			if v < lower || v > upper {
				rep.Indices = append(rep.Indices, i)
			}
		}
	case models.MethodZScore:
		rep.ZThreshold = a.cfg.AnomalyZThreshold
		zs, err := stats.ZScores(vols)
		if err != nil {
			if stats.IsDegenerateInput(err) {
				return rep, nil
			}
			return nil, err
		}
		for i, z := range zs {
			if math.Abs(z) > a.cfg.AnomalyZThreshold {
				rep.Indices = append(rep.Indices, i)
			}
		}
	default:
		return nil, fmt.Errorf("unknown anomaly method %q", method)
	}
	return rep, nil
}

// Correlation computes the Pearson correlation between volume and price over
// the newest window points (the full series when window <= 0). Insufficient
// or degenerate input propagates unchanged; the analyzer never fabricates a
// "no correlation" answer.
func (a *Analyzer) Correlation(symbol string, window int) (*models.CorrelationReport, error) {
	pts := a.snapshot(symbol)
	if window > 0 && len(pts) > window {
		pts = pts[len(pts)-window:]
	}
	vols := make([]float64, len(pts))
	prices := make([]float64, len(pts))
	for i, p := range pts {
		vols[i] = p.Volume
		prices[i] = p.Price
	}
	r, pv, err := stats.PearsonCorrelation(vols, prices)
	if err != nil {
		return nil, err
	}
	return &models.CorrelationReport{Symbol: symbol, Window: len(pts), R: r, PValue: pv}, nil
}

// WashTrading evaluates three independent wash-trading conditions over the
// newest WashWindow points against the earlier history and sums their
// contributions into a 0-100 suspicion score. Advisory only; the score never
// drops data by itself.
//
// Conditions: elevated volume while price barely moves (40), near-constant
// scripted volume (30), volume decoupled from price (30).
func (a *Analyzer) WashTrading(symbol string) (*models.WashTradingIndicators, error) {
	pts := a.snapshot(symbol)
	need := a.cfg.WashWindow + 4
	if len(pts) < need {
		return nil, &stats.InsufficientDataError{Op: "wash_trading", Need: need, Got: len(pts)}
	}

	recent := pts[len(pts)-a.cfg.WashWindow:]
	earlier := pts[:len(pts)-a.cfg.WashWindow]

	recVols := make([]float64, len(recent))
	recPrices := make([]float64, len(recent))
	for i, p := range recent {
		recVols[i] = p.Volume
		recPrices[i] = p.Price
	}
	histVols := make([]float64, len(earlier))
	for i, p := range earlier {
		histVols[i] = p.Volume
	}

	ind := &models.WashTradingIndicators{Symbol: symbol}

	volMean, volStd, err := stats.MeanStdDev(recVols)
	if err != nil {
		return nil, err
	}
	priceMean, priceStd, err := stats.MeanStdDev(recPrices)
	if err != nil {
		return nil, err
	}
	ind.AvgVolume = volMean
	if priceMean != 0 {
		ind.PriceVolatility = priceStd / math.Abs(priceMean)
	}
	if volMean != 0 {
		ind.VolumeCV = volStd / math.Abs(volMean)
	}

	histMean := stats.Mean(histVols)
	if histMean > 0 && volMean > 1.5*histMean && ind.PriceVolatility < a.cfg.WashPriceVolThreshold {
		ind.SuspicionScore += 40
		ind.Signals = append(ind.Signals, "high_volume_low_volatility")
	}
	if volMean > 0 && ind.VolumeCV < a.cfg.WashCVThreshold {
		ind.SuspicionScore += 30
		ind.Signals = append(ind.Signals, "uniform_volume")
	}

	// A constant price or volume window makes the correlation undefined; the
	// signal is simply unavailable then, not an analysis failure.
	r, _, err := stats.PearsonCorrelation(recVols, recPrices)
	if err == nil {
		ind.Correlation = r
		if math.Abs(r) < a.cfg.WashCorrThreshold {
			ind.SuspicionScore += 30
			ind.Signals = append(ind.Signals, "volume_price_decorrelation")
		}
	} else if !stats.IsDegenerateInput(err) {
		return nil, err
	}

	return ind, nil
}

// Trend fits an OLS line to the newest window volumes and classifies the
// slope. Slopes below TrendFlatRel of the mean volume per step are flat.
func (a *Analyzer) Trend(symbol string, window int) (*models.TrendReport, error) {
	pts := a.snapshot(symbol)
	if window <= 0 {
		window = len(pts)
	}
	if len(pts) < 2 {
		return nil, &stats.InsufficientDataError{Op: "volume_trend", Need: 2, Got: len(pts)}
	}
	if len(pts) > window {
		pts = pts[len(pts)-window:]
	}
	vols := make([]float64, len(pts))
	for i, p := range pts {
		vols[i] = p.Volume
	}
	slope, _, r2, err := stats.LinearTrend(vols)
	if err != nil {
		return nil, err
	}

	dir := models.TrendFlat
	flatBand := a.cfg.TrendFlatRel * math.Abs(stats.Mean(vols))
	switch {
	case slope > flatBand:
		dir = models.TrendIncreasing
	case slope < -flatBand:
		dir = models.TrendDecreasing
	}
	return &models.TrendReport{
		Symbol:    symbol,
		Window:    len(pts),
		Direction: dir,
		Slope:     slope,
		RSquared:  r2,
	}, nil
}
