package api

import (
	"time"

	models "CoinSentry/internal/domain/models"
	domsvc "CoinSentry/internal/domain/service"
	"CoinSentry/internal/services/stats"
	"CoinSentry/internal/usecase"
	xhttp "CoinSentry/pkg/http"
	xlogger "CoinSentry/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReportsEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type ReportsEchoHandler struct {
	logger    *xlogger.Logger
	analytics domsvc.VolumeAnalytics
	summary   *usecase.VolumeSummaryUseCase
	pipeline  *usecase.BatchPipeline
	history   *usecase.HistoryUseCase
}

func NewReportsEchoHandler(
	logger *xlogger.Logger,
	analytics domsvc.VolumeAnalytics,
	summary *usecase.VolumeSummaryUseCase,
	pipeline *usecase.BatchPipeline,
	history *usecase.HistoryUseCase,
) *ReportsEchoHandler {
	return &ReportsEchoHandler{
		logger:    logger,
		analytics: analytics,
		summary:   summary,
		pipeline:  pipeline,
		history:   history,
	}
}

func (h *ReportsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	g := e.Group("/api")
	g.GET("/volume/spike", h.Spike)
	g.GET("/volume/anomaly", h.Anomaly)
	g.GET("/volume/correlation", h.Correlation)
	g.GET("/volume/wash", h.WashTrading)
	g.GET("/volume/trend", h.Trend)
	g.GET("/volume/summary", h.Summary)
	g.POST("/quality/assess", h.Assess)
	g.GET("/quality/history", h.QualityHistory)
	g.GET("/history/ticks", h.Ticks)
	g.POST("/bots/screen", h.Screen)
	g.POST("/bots/risk", h.Risk)
}

// reportError translates engine error classes: missing data is a client-side
// problem (ask again with more history), everything else is internal.
func (h *ReportsEchoHandler) reportError(c echo.Context, op string, err error) error {
	if stats.IsInsufficientData(err) || stats.IsDegenerateInput(err) {
		return xhttp.BadRequestResponse(c, map[string]string{"error": err.Error()})
	}
	h.logger.Error(op+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

func (h *ReportsEchoHandler) Spike(c echo.Context) error {
	req := &models.SpikeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analytics.Spike(c.Request().Context(), req.Symbol, req.Window)
	if err != nil {
		return h.reportError(c, "spike", err)
	}
	if res == nil {
		return xhttp.SuccessResponse(c, map[string]any{"symbol": req.Symbol, "spike": false})
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) Anomaly(c echo.Context) error {
	req := &models.AnomalyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analytics.Anomalies(c.Request().Context(), req.Symbol, models.AnomalyMethod(req.Method))
	if err != nil {
		return h.reportError(c, "anomaly", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) Correlation(c echo.Context) error {
	req := &models.CorrelationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analytics.Correlation(c.Request().Context(), req.Symbol, req.Window)
	if err != nil {
		return h.reportError(c, "correlation", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) WashTrading(c echo.Context) error {
	req := &models.WashTradingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analytics.WashTrading(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.reportError(c, "wash_trading", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) Trend(c echo.Context) error {
	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analytics.Trend(c.Request().Context(), req.Symbol, req.Window)
	if err != nil {
		return h.reportError(c, "trend", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) Summary(c echo.Context) error {
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.summary.GetSummary(c.Request().Context(), usecase.GetSummaryParams{
		Symbol: req.Symbol,
	})
	if err != nil {
		h.logger.Error("summary usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) Assess(c echo.Context) error {
	req := &models.AssessRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.Assess(c.Request().Context(), req.Kind, req.Records)
	if err != nil {
		h.logger.Error("assess usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) QualityHistory(c echo.Context) error {
	kind := models.RecordKind(c.QueryParam("kind"))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Now().UTC())
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), to.Add(-24*time.Hour))
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 1000)

	res, err := h.history.GetQualityHistory(c.Request().Context(), usecase.GetQualityHistoryParams{
		Kind:  kind,
		From:  from,
		To:    to,
		Limit: limit,
	})
	if err != nil {
		h.logger.Error("quality history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) Ticks(c echo.Context) error {
	if c.QueryParam("symbol") == "" {
		return xhttp.BadRequestResponse(c, map[string]string{"error": "symbol required"})
	}
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Now().UTC())
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), to.Add(-24*time.Hour))

	res, err := h.history.GetTicks(c.Request().Context(), usecase.GetTicksParams{
		Symbol: c.QueryParam("symbol"),
		From:   from,
		To:     to,
		Limit:  xhttp.ParseIntDefault(c.QueryParam("limit"), 0),
	})
	if err != nil {
		h.logger.Error("ticks usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) Screen(c echo.Context) error {
	req := &models.ScreenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	clean, flagged, fs, err := h.pipeline.Screen(req.Platform, req.Records)
	if err != nil {
		h.logger.Error("screen usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.ScreenResponse{Clean: clean, Flagged: flagged, Stats: fs})
}

func (h *ReportsEchoHandler) Risk(c echo.Context) error {
	req := &models.ScreenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.RiskStats(req.Platform, req.Records)
	if err != nil {
		h.logger.Error("risk usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
