package api

import "github.com/labstack/echo/v4"

// Router aggregates all API handlers into a single route registrar. The
// costs handler is nil when cost monitoring is disabled.
type Router struct {
	Models *ModelsEchoHandler
	Costs  *CostsEchoHandler
}

// NewRouter creates the route aggregate.
func NewRouter(modelsH *ModelsEchoHandler, costsH *CostsEchoHandler) *Router {
	return &Router{Models: modelsH, Costs: costsH}
}

// RegisterRoutes registers every enabled handler's routes.
func (r *Router) RegisterRoutes(e *echo.Echo) {
	if r.Models != nil {
		r.Models.RegisterRoutes(e)
	}
	if r.Costs != nil {
		r.Costs.RegisterRoutes(e)
	}
}
