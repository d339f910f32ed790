package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ZScout/internal/domain/models"
	"ZScout/internal/usecase"
	xhttp "ZScout/pkg/http"
	applogger "ZScout/pkg/logger"
)

// ResultsEchoHandler serves screening results over HTTP.
type ResultsEchoHandler struct {
	log      *applogger.Logger
	screener *usecase.Screener
	results  *usecase.ResultReader
}

// NewResultsEchoHandler creates the results handler.
func NewResultsEchoHandler(l *applogger.Logger, screener *usecase.Screener, results *usecase.ResultReader) *ResultsEchoHandler {
	return &ResultsEchoHandler{log: l, screener: screener, results: results}
}

// RegisterRoutes registers API routes on the Echo instance.
func (h *ResultsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)
	e.GET("/api/candidates", h.candidates)
	e.GET("/api/results/:symbol", h.result)
	e.GET("/api/summary", h.summary)
}

func (h *ResultsEchoHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type candidatesRequest struct {
	MaxZ *float64 `query:"max_z" validate:"omitempty,lte=0"`
}

func (h *ResultsEchoHandler) candidates(c echo.Context) error {
	req := new(candidatesRequest)
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()

	var (
		candidates []models.Candidate
		err        error
	)
	if req.MaxZ != nil {
		candidates, err = h.screener.CandidatesAt(ctx, *req.MaxZ)
	} else {
		candidates, err = h.screener.Candidates(ctx)
	}
	if err != nil {
		h.log.Error("list candidates failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	return xhttp.ListResponse(c, candidates, int64(len(candidates)))
}

type resultRequest struct {
	Symbol string `param:"symbol" validate:"required"`
}

func (h *ResultsEchoHandler) result(c echo.Context) error {
	req := new(resultRequest)
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.results.Current(c.Request().Context(), req.Symbol)
	if err != nil {
		h.log.Error("get result failed", applogger.String("symbol", req.Symbol), applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if res == nil {
		return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("no scored result for %s", req.Symbol))
	}

	return xhttp.SuccessResponse(c, res)
}

func (h *ResultsEchoHandler) summary(c echo.Context) error {
	counts, err := h.results.Counts(c.Request().Context())
	if err != nil {
		h.log.Error("summary failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, counts)
}
