package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"ModelVault/internal/domain/models"
	"ModelVault/internal/domain/repository"
	xhttp "ModelVault/pkg/http"
	applogger "ModelVault/pkg/logger"
)

// ModelsEchoHandler serves model bundle and cache endpoints.
type ModelsEchoHandler struct {
	source repository.BundleSource
	log    *applogger.Logger
}

// NewModelsEchoHandler creates the models handler.
func NewModelsEchoHandler(source repository.BundleSource, log *applogger.Logger) *ModelsEchoHandler {
	return &ModelsEchoHandler{source: source, log: log}
}

// RegisterRoutes registers model endpoints.
func (h *ModelsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/api/models/:ticker", h.GetBundle)
	e.GET("/api/models/:ticker/path", h.GetModelPath)
	e.GET("/api/cache", h.GetCacheInfo)
	e.DELETE("/api/cache", h.ClearCache)
}

// Health reports liveness.
func (h *ModelsEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetBundle loads (or serves from cache) the full artifact bundle for a
// ticker and returns its summary.
func (h *ModelsEchoHandler) GetBundle(c echo.Context) error {
	var req models.BundleRequest
	if resp := xhttp.ReadAndValidateRequest(c, &req); resp != nil {
		return xhttp.BadRequestResponse(c, resp)
	}

	bundle, err := h.source.LoadModelsForTicker(c.Request().Context(), req.Ticker)
	if err != nil {
		return xhttp.AppErrorResponse(c, mapModelError(err))
	}
	return xhttp.SuccessResponse(c, bundle.Summary())
}

// GetModelPath resolves a ticker to its storage path without fetching
// artifacts.
func (h *ModelsEchoHandler) GetModelPath(c echo.Context) error {
	var req models.BundleRequest
	if resp := xhttp.ReadAndValidateRequest(c, &req); resp != nil {
		return xhttp.BadRequestResponse(c, resp)
	}

	path, err := h.source.GetModelPathForTicker(req.Ticker)
	if err != nil {
		return xhttp.AppErrorResponse(c, mapModelError(err))
	}
	return xhttp.SuccessResponse(c, models.PathResponse{Ticker: req.Ticker, Path: path})
}

// GetCacheInfo reports cached tickers and the active backend.
func (h *ModelsEchoHandler) GetCacheInfo(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.source.CacheInfo())
}

// ClearCache drops every cached bundle and raw artifact entry.
func (h *ModelsEchoHandler) ClearCache(c echo.Context) error {
	h.source.ClearCache(c.Request().Context())
	if h.log != nil {
		h.log.Info("model cache cleared")
	}
	return xhttp.NoContentResponse(c)
}

// mapModelError translates loader errors into HTTP application errors.
func mapModelError(err error) error {
	var (
		unknown   *models.UnknownTickerError
		inactive  *models.InactiveAssetError
		notFound  *models.ArtifactNotFoundError
		upstream  *models.BackendUnavailableError
		malformed *models.MalformedMetadataError
		decode    *models.ArtifactDecodeError
	)
	switch {
	case errors.Is(err, models.ErrEmptyTicker):
		return xhttp.BadRequestError("ticker must not be empty")
	case errors.As(err, &unknown):
		return xhttp.NotFoundErrorf("ticker %s is not in the asset registry", unknown.Ticker)
	case errors.As(err, &inactive):
		return xhttp.ConflictError(inactive.Error())
	case errors.As(err, &notFound):
		return xhttp.NotFoundError(notFound.Error())
	case errors.As(err, &upstream):
		return xhttp.ServiceUnavailableError(upstream.Error())
	case errors.As(err, &malformed):
		return xhttp.UnprocessableError(malformed.Error())
	case errors.As(err, &decode):
		return xhttp.UnprocessableError(decode.Error())
	default:
		return xhttp.InternalError("failed to load model artifacts").WithError(err)
	}
}
