package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-portal-routeros/internal"
	"github.com/h44z/wg-portal-routeros/internal/app/api/core/respond"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/models"
)

type HealthEndpoint struct{}

func NewHealthEndpoint() HealthEndpoint {
	return HealthEndpoint{}
}

func (e HealthEndpoint) GetName() string {
	return "HealthEndpoint"
}

func (e HealthEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("GET /health", e.handleHealthGet())
}

// handleHealthGet returns a Handler function.
//
// @ID health_handleHealthGet
// @Tags Health
// @Summary Liveness of the portal itself, the router is not contacted.
// @Produce json
// @Success 200 {object} models.Health
// @Router /health [get]
func (e HealthEndpoint) handleHealthGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, models.Health{Status: "ok", Version: internal.Version})
	}
}
