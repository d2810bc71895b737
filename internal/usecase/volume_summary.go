package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoinSentry/internal/domain/models"
	domsvc "CoinSentry/internal/domain/service"
	"CoinSentry/internal/services/volume"
)

// VolumeSummaryUseCase fans out all volume analyses for a symbol concurrently
// and consolidates the results. A failing part lands in Errors; the rest of
// the summary still comes back.
type VolumeSummaryUseCase struct {
	analytics domsvc.VolumeAnalytics
	analyzer  *volume.Analyzer
	timeout   time.Duration
}

func NewVolumeSummaryUseCase(analytics domsvc.VolumeAnalytics, analyzer *volume.Analyzer) *VolumeSummaryUseCase {
	return &VolumeSummaryUseCase{analytics: analytics, analyzer: analyzer, timeout: 10 * time.Second}
}

type GetSummaryParams struct {
	Symbol string
	Method models.AnomalyMethod
	Window int
}

func (uc *VolumeSummaryUseCase) GetSummary(ctx context.Context, p GetSummaryParams) (*models.VolumeSummary, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Method == "" {
		p.Method = models.MethodIQR
	}

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.VolumeSummary{
		Symbol:     p.Symbol,
		Timestamp:  time.Now(),
		DataPoints: uc.analyzer.Len(p.Symbol),
		Errors:     map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 5)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analytics.Spike(ctx, p.Symbol, p.Window)
		ch <- item{"spike", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analytics.Anomalies(ctx, p.Symbol, p.Method)
		ch <- item{"anomalies", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analytics.Correlation(ctx, p.Symbol, p.Window)
		ch <- item{"correlation", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analytics.WashTrading(ctx, p.Symbol)
		ch <- item{"wash_trading", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analytics.Trend(ctx, p.Symbol, p.Window)
		ch <- item{"trend", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "spike":
			res.Spike = it.val.(*models.SpikeReport)
		case "anomalies":
			res.Anomalies = it.val.(*models.AnomalyReport)
		case "correlation":
			res.Correlation = it.val.(*models.CorrelationReport)
		case "wash_trading":
			res.WashTrading = it.val.(*models.WashTradingIndicators)
		case "trend":
			res.Trend = it.val.(*models.TrendReport)
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
