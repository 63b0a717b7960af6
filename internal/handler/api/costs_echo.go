package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"ModelVault/internal/costwatch"
	"ModelVault/internal/domain/models"
	xhttp "ModelVault/pkg/http"
	applogger "ModelVault/pkg/logger"
	"ModelVault/pkg/util"
)

// CostsEchoHandler serves cost endpoints and the live cost stream.
type CostsEchoHandler struct {
	service        *costwatch.Service
	streamInterval time.Duration
	upgrader       websocket.Upgrader
	log            *applogger.Logger
}

// NewCostsEchoHandler creates the costs handler.
func NewCostsEchoHandler(service *costwatch.Service, streamInterval time.Duration, log *applogger.Logger) *CostsEchoHandler {
	if streamInterval <= 0 {
		streamInterval = 5 * time.Minute
	}
	return &CostsEchoHandler{
		service:        service,
		streamInterval: streamInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// RegisterRoutes registers cost endpoints.
func (h *CostsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/costs/daily", h.GetDaily)
	e.GET("/api/costs/monthly", h.GetMonthly)
	e.GET("/ws/costs", h.StreamCosts)
}

type dailyCostPayload struct {
	Snapshot *models.CostSnapshot `json:"snapshot"`
	Alert    *models.CostAlert    `json:"alert"`
}

// GetDaily returns one day's spend and its threshold classification. The
// date defaults to yesterday, the most recent day with complete billing data.
func (h *CostsEchoHandler) GetDaily(c echo.Context) error {
	var req models.DailyCostRequest
	if resp := xhttp.ReadAndValidateRequest(c, &req); resp != nil {
		return xhttp.BadRequestResponse(c, resp)
	}

	day := util.ParseDayDefault(req.Date, util.Yesterday())
	snap, alert, err := h.service.Daily(c.Request().Context(), day)
	if err != nil {
		return xhttp.AppErrorResponse(c,
			xhttp.ServiceUnavailableError("cost source unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, dailyCostPayload{Snapshot: snap, Alert: alert})
}

// GetMonthly returns the aggregated report for one calendar month, built
// from stored daily snapshots.
func (h *CostsEchoHandler) GetMonthly(c echo.Context) error {
	var req models.MonthlyCostRequest
	if resp := xhttp.ReadAndValidateRequest(c, &req); resp != nil {
		return xhttp.BadRequestResponse(c, resp)
	}

	report, err := h.service.Monthly(c.Request().Context(), req.Year, req.Month)
	if err != nil {
		return xhttp.AppErrorResponse(c,
			xhttp.ServiceUnavailableError("cost history unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

// StreamCosts upgrades to a websocket and pushes today's running spend on a
// fixed interval until the client disconnects.
func (h *CostsEchoHandler) StreamCosts(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()

	// Drain control frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		snap, alert, err := h.service.Daily(ctx, time.Now())
		if err != nil {
			if h.log != nil {
				h.log.Warn("cost stream fetch failed", applogger.Error(err))
			}
			return nil
		}
		payload, err := json.Marshal(dailyCostPayload{Snapshot: snap, Alert: alert})
		if err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, payload)
	}

	if err := send(); err != nil {
		return nil
	}

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := send(); err != nil {
				return nil
			}
		}
	}
}
