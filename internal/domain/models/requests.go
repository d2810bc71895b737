package models

// Requests for the reports HTTP endpoints. Defined in domain for consistency
// and reuse across the Echo and net/http handlers.

type SpikeRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Window int    `query:"window" json:"window" default:"24" validate:"gte=2,lte=1000"`
	N      int    `query:"n" json:"n" default:"720" validate:"gte=1,lte=100000"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 1h 1d"`
}

type AnomalyRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Method string `query:"method" json:"method" default:"iqr" validate:"oneof=iqr zscore"`
	N      int    `query:"n" json:"n" default:"720" validate:"gte=1,lte=100000"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 1h 1d"`
}

type CorrelationRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Window int    `query:"window" json:"window" validate:"omitempty,gte=3,lte=100000"`
	N      int    `query:"n" json:"n" default:"720" validate:"gte=1,lte=100000"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 1h 1d"`
}

type WashTradingRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"720" validate:"gte=1,lte=100000"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 1h 1d"`
}

type TrendRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Window int    `query:"window" json:"window" default:"30" validate:"gte=2,lte=100000"`
	N      int    `query:"n" json:"n" default:"720" validate:"gte=1,lte=100000"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 1h 1d"`
}

type SummaryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"720" validate:"gte=1,lte=100000"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 1h 1d"`
}

// AssessRequest scores an ad-hoc batch posted by a collector.
type AssessRequest struct {
	Kind    RecordKind `json:"kind" validate:"required,oneof=price reddit_post tiktok_video"`
	Records []Record   `json:"records" validate:"required"`
}

// ScreenRequest runs bot detection over a posted social batch.
type ScreenRequest struct {
	Platform string   `json:"platform" validate:"required,oneof=reddit tiktok"`
	Records  []Record `json:"records" validate:"required"`
}

// ScreenResponse returns the partitioned batch plus aggregate stats.
type ScreenResponse struct {
	Clean   []Record       `json:"clean"`
	Flagged []Record       `json:"flagged"`
	Stats   BotFilterStats `json:"stats"`
}
