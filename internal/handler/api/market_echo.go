package api

import (
	"io"

	models "NiftyPulse/internal/domain/models"
	"NiftyPulse/internal/usecase"
	xhttp "NiftyPulse/pkg/http"
	xlogger "NiftyPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type MarketEchoHandler struct {
	logger   *xlogger.Logger
	analyze  *usecase.AnalyzeUseCase
	history  *usecase.HistoryUseCase
	journal  *usecase.JournalUseCase
	importer *usecase.ImportUseCase
}

func NewMarketEchoHandler(
	logger *xlogger.Logger,
	analyze *usecase.AnalyzeUseCase,
	history *usecase.HistoryUseCase,
	journal *usecase.JournalUseCase,
	importer *usecase.ImportUseCase,
) *MarketEchoHandler {
	return &MarketEchoHandler{
		logger:   logger,
		analyze:  analyze,
		history:  history,
		journal:  journal,
		importer: importer,
	}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.GET("/history", h.History)
	g.POST("/history", h.UpsertBar)
	g.POST("/history/import", h.ImportCSV)
	g.POST("/journal/entry", h.RecordEntry)
	g.POST("/journal/exit", h.RecordExit)
	g.GET("/journal/open", h.OpenTrades)
	g.GET("/journal/performance", h.Performance)
	g.GET("/journal/autopsy/:trade_id", h.Autopsy)
}

func (h *MarketEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyze.Analyze(c.Request().Context(), usecase.AnalyzeParams{DTE: req.DTE, Window: req.Window})
	if err != nil {
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bars, err := h.history.GetHistory(c.Request().Context(), usecase.GetHistoryParams{
		From:  req.From,
		To:    req.To,
		Limit: req.Limit,
	})
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, bars, int64(len(bars)))
}

func (h *MarketEchoHandler) UpsertBar(c echo.Context) error {
	req := &models.UpsertBarRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bar, err := h.history.UpsertBar(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("upsert bar usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, bar)
}

// ImportCSV accepts a multipart upload with an "ohlc" file and an
// optional "vix" file.
func (h *MarketEchoHandler) ImportCSV(c echo.Context) error {
	ohlcFile, err := c.FormFile("ohlc")
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("ohlc file required"))
	}
	ohlc, err := ohlcFile.Open()
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	defer ohlc.Close()

	var vix io.Reader
	if vixFile, err := c.FormFile("vix"); err == nil {
		f, err := vixFile.Open()
		if err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
		defer f.Close()
		vix = f
	}

	res, err := h.importer.ImportCSV(c.Request().Context(), ohlc, vix)
	if err != nil {
		h.logger.Error("import usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) RecordEntry(c echo.Context) error {
	req := &models.RecordEntryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, err := h.journal.RecordEntry(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("record entry usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, rec)
}

func (h *MarketEchoHandler) RecordExit(c echo.Context) error {
	req := &models.RecordExitRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, err := h.journal.RecordExit(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("record exit usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *MarketEchoHandler) OpenTrades(c echo.Context) error {
	trades, err := h.journal.OpenTrades(c.Request().Context())
	if err != nil {
		h.logger.Error("open trades usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}

func (h *MarketEchoHandler) Performance(c echo.Context) error {
	req := &models.PerformanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sum, err := h.journal.Performance(c.Request().Context(), req.Days)
	if err != nil {
		h.logger.Error("performance usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sum)
}

func (h *MarketEchoHandler) Autopsy(c echo.Context) error {
	tradeID := c.Param("trade_id")
	if tradeID == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("trade_id required"))
	}

	rep, err := h.journal.Autopsy(c.Request().Context(), tradeID)
	if err != nil {
		h.logger.Error("autopsy usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rep)
}
