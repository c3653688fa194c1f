package api

import (
	"errors"
	"time"

	models "OscLens/internal/domain/models"
	domrepo "OscLens/internal/domain/repository"
	"OscLens/internal/services/provider"
	"OscLens/internal/services/regime"
	"OscLens/internal/usecase"
	xhttp "OscLens/pkg/http"
	xlogger "OscLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// OscillatorEchoHandler exposes the analytics API over Echo.
type OscillatorEchoHandler struct {
	logger     *xlogger.Logger
	metrics    domrepo.Metrics
	datasets   *usecase.DatasetUsecase
	oscillator *usecase.OscillatorUsecase
	regime     *usecase.RegimeUsecase
	tension    *usecase.TensionUsecase
	candles    *usecase.CandlesUseCase
	status     *usecase.StatusUsecase
}

func NewOscillatorEchoHandler(
	logger *xlogger.Logger,
	metrics domrepo.Metrics,
	datasets *usecase.DatasetUsecase,
	oscillator *usecase.OscillatorUsecase,
	regimeUC *usecase.RegimeUsecase,
	tension *usecase.TensionUsecase,
	candles *usecase.CandlesUseCase,
	status *usecase.StatusUsecase,
) *OscillatorEchoHandler {
	return &OscillatorEchoHandler{
		logger:     logger,
		metrics:    metrics,
		datasets:   datasets,
		oscillator: oscillator,
		regime:     regimeUC,
		tension:    tension,
		candles:    candles,
		status:     status,
	}
}

func (h *OscillatorEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/datasets", h.Datasets)
	g.GET("/data", h.Data)
	g.GET("/oscillator-data", h.OscillatorData)
	g.GET("/regime", h.Regime)
	g.GET("/tension", h.Tension)
	g.GET("/candles", h.Candles)
	g.GET("/status", h.Status)
}

func (h *OscillatorEchoHandler) Datasets(c echo.Context) error {
	h.metrics.RecordRequest("datasets", "ok")
	return xhttp.SuccessResponse(c, h.datasets.Metadata())
}

func (h *OscillatorEchoHandler) Data(c echo.Context) error {
	req := &models.DataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.RecordRequest("data", "bad_request")
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.datasets.Data(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "data", err)
	}
	h.metrics.RecordRequest("data", "ok")
	return xhttp.SuccessResponse(c, res)
}

func (h *OscillatorEchoHandler) OscillatorData(c echo.Context) error {
	req := &models.OscillatorRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.RecordRequest("oscillator-data", "bad_request")
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	if req.Mode == "composite" {
		res, err := h.oscillator.Composite(ctx, *req)
		if err != nil {
			return h.fail(c, "oscillator-data", err)
		}
		h.metrics.RecordRequest("oscillator-data", "ok")
		return xhttp.SuccessResponse(c, res)
	}
	res, err := h.oscillator.Individual(ctx, *req)
	if err != nil {
		return h.fail(c, "oscillator-data", err)
	}
	h.metrics.RecordRequest("oscillator-data", "ok")
	return xhttp.SuccessResponse(c, res)
}

func (h *OscillatorEchoHandler) Regime(c echo.Context) error {
	req := &models.RegimeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.RecordRequest("regime", "bad_request")
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.regime.Regime(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "regime", err)
	}
	h.metrics.RecordRequest("regime", "ok")
	return xhttp.SuccessResponse(c, res)
}

func (h *OscillatorEchoHandler) Tension(c echo.Context) error {
	req := &models.TensionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.RecordRequest("tension", "bad_request")
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.tension.Tension(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "tension", err)
	}
	h.metrics.RecordRequest("tension", "ok")
	return xhttp.SuccessResponse(c, res)
}

func (h *OscillatorEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.RecordRequest("candles", "bad_request")
		return xhttp.BadRequestResponse(c, verr)
	}

	// explicit from/to override the rolling days window
	now := time.Now().UTC()
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), to.AddDate(0, 0, -req.Days))

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Asset,
		From:      from,
		To:        to,
		Timeframe: domrepo.NormalizeTimeframe(c.QueryParam("timeframe")),
		Limit:     req.Limit,
	})
	if err != nil {
		return h.fail(c, "candles", err)
	}
	h.metrics.RecordRequest("candles", "ok")
	return xhttp.SuccessResponse(c, res)
}

func (h *OscillatorEchoHandler) Status(c echo.Context) error {
	h.metrics.RecordRequest("status", "ok")
	return xhttp.SuccessResponse(c, h.status.Status(c.Request().Context()))
}

// fail maps domain errors onto HTTP statuses and logs the rest.
func (h *OscillatorEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	h.metrics.RecordRequest(endpoint, "error")

	var unknown *provider.ErrUnknownDataset
	if errors.As(err, &unknown) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown dataset: %s", unknown.Name).WithError(err))
	}
	var insufficient *regime.ErrInsufficientData
	if errors.As(err, &insufficient) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf(
			"insufficient observations for regime fit: have %d, need %d",
			insufficient.Have, insufficient.Need).WithError(err))
	}
	h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
