package http

import "github.com/labstack/echo/v4"

// Handler registers a group of API routes on the echo instance. Implemented
// by the route aggregate and by each endpoint handler.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
