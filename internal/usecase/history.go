package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSentry/internal/domain/models"
	domrepo "CoinSentry/internal/domain/repository"
)

// HistoryUseCase provides business logic for retrieving stored ticks and
// quality log entries.
type HistoryUseCase struct {
	store domrepo.Storage
}

func NewHistoryUseCase(store domrepo.Storage) *HistoryUseCase {
	return &HistoryUseCase{store: store}
}

type GetTicksParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetTicksResult struct {
	Symbol string
	From   time.Time
	To     time.Time
	Count  int
	Ticks  []*models.PriceTick
}

func (uc *HistoryUseCase) GetTicks(ctx context.Context, p GetTicksParams) (*GetTicksResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}

	ticks, err := uc.store.QueryTicks(ctx, p.Symbol, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get ticks: %w", err)
	}

	return &GetTicksResult{
		Symbol: p.Symbol,
		From:   p.From,
		To:     p.To,
		Count:  len(ticks),
		Ticks:  ticks,
	}, nil
}

type GetQualityHistoryParams struct {
	Kind  models.RecordKind
	From  time.Time
	To    time.Time
	Limit int
}

func (uc *HistoryUseCase) GetQualityHistory(ctx context.Context, p GetQualityHistoryParams) ([]*models.QualityMetrics, error) {
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("unknown record kind: %s", p.Kind)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	return uc.store.QueryQuality(ctx, p.Kind, p.From, p.To, p.Limit)
}
