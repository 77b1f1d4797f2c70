package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-portal-routeros/internal/adapters/wgcontroller"
	"github.com/h44z/wg-portal-routeros/internal/app/api/core/respond"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/models"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

type ConnectionService interface {
	TestConnection(ctx context.Context) (bool, *wgcontroller.SystemResource, domain.Outcome)
	ConnectionState() domain.ConnectionState
}

type ConnectionEndpoint struct {
	connection ConnectionService
}

func NewConnectionEndpoint(connection ConnectionService) ConnectionEndpoint {
	return ConnectionEndpoint{connection: connection}
}

func (e ConnectionEndpoint) GetName() string {
	return "ConnectionEndpoint"
}

func (e ConnectionEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("GET /connection", e.handleStateGet())
	g.HandleFunc("POST /connection/test", e.handleTestPost())
}

// handleStateGet returns a Handler function.
//
// @ID connection_handleStateGet
// @Tags Connection
// @Summary Get the result of the last connection test.
// @Produce json
// @Success 200 {object} models.ConnectionState
// @Router /connection [get]
func (e ConnectionEndpoint) handleStateGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, models.NewConnectionState(e.connection.ConnectionState()))
	}
}

// handleTestPost returns a Handler function.
//
// @ID connection_handleTestPost
// @Tags Connection
// @Summary Test the router connection. A failed test is not an error, it is reported in the result.
// @Produce json
// @Success 200 {object} models.ConnectionTest
// @Router /connection/test [post]
func (e ConnectionEndpoint) handleTestPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connected, resource, outcome := e.connection.TestConnection(r.Context())

		respond.JSON(w, http.StatusOK, models.ConnectionTest{
			IsConnected: connected,
			Outcome:     models.NewOutcome(outcome),
			Resource:    models.NewSystemResource(resource),
		})
	}
}
