package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-portal-routeros/internal/app/api/core/request"
	"github.com/h44z/wg-portal-routeros/internal/app/api/core/respond"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/models"
	"github.com/h44z/wg-portal-routeros/internal/lowlevel"
)

type RelayService interface {
	// Authorize checks the Authorization header of a relay request.
	Authorize(header string) error
	// Forward performs the relayed request.
	Forward(ctx context.Context, req lowlevel.RelayRequest) (*lowlevel.RelayResponse, error)
}

type RelayEndpoint struct {
	relay RelayService
}

func NewRelayEndpoint(relay RelayService) RelayEndpoint {
	return RelayEndpoint{relay: relay}
}

func (e RelayEndpoint) GetName() string {
	return "RelayEndpoint"
}

func (e RelayEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("POST /relay", e.handleRelayPost())
}

// handleRelayPost returns a Handler function.
//
// @ID relay_handleRelayPost
// @Tags Relay
// @Summary Forward a request to the router and return the raw response.
// @Accept json
// @Produce json
// @Param request body lowlevel.RelayRequest true "The request to forward."
// @Success 200 {object} lowlevel.RelayResponse
// @Failure 400 {object} models.Error
// @Failure 401 {object} models.Error
// @Failure 403 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /relay [post]
func (e RelayEndpoint) handleRelayPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := e.relay.Authorize(r.Header.Get("Authorization")); err != nil {
			respondServiceError(w, err)
			return
		}

		var relayReq lowlevel.RelayRequest
		if err := request.BodyJson(r, &relayReq); err != nil {
			respond.JSON(w, http.StatusBadRequest, models.Error{
				Code: http.StatusBadRequest, Message: "invalid relay request", Details: err.Error(),
			})
			return
		}

		resp, err := e.relay.Forward(r.Context(), relayReq)
		if err != nil {
			code, body := ParseServiceError(err)
			if code == http.StatusInternalServerError {
				code = http.StatusBadGateway // the target failed, not the relay
				body.Code = code
			}
			respond.JSON(w, code, body)
			return
		}

		respond.JSON(w, http.StatusOK, resp)
	}
}
