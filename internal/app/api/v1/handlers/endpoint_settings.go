package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-portal-routeros/internal/app/api/core/request"
	"github.com/h44z/wg-portal-routeros/internal/app/api/core/respond"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/models"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

type SettingsService interface {
	GetRouterConfig(ctx context.Context) (domain.RouterConfig, error)
	UpdateRouterConfig(ctx context.Context, cfg domain.RouterConfig) (domain.RouterConfig, error)
	GetWireGuardDefaults(ctx context.Context) (domain.WireGuardDefaults, error)
	UpdateWireGuardDefaults(ctx context.Context, defaults domain.WireGuardDefaults) (domain.WireGuardDefaults, error)
}

type SettingsEndpoint struct {
	settings SettingsService
}

func NewSettingsEndpoint(settings SettingsService) SettingsEndpoint {
	return SettingsEndpoint{settings: settings}
}

func (e SettingsEndpoint) GetName() string {
	return "SettingsEndpoint"
}

func (e SettingsEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/settings")

	apiGroup.HandleFunc("GET /router", e.handleRouterGet())
	apiGroup.HandleFunc("PUT /router", e.handleRouterPut())
	apiGroup.HandleFunc("GET /wireguard", e.handleWireGuardGet())
	apiGroup.HandleFunc("PUT /wireguard", e.handleWireGuardPut())
}

// handleRouterGet returns a Handler function.
//
// @ID settings_handleRouterGet
// @Tags Settings
// @Summary Get the router connection, the password is masked.
// @Produce json
// @Success 200 {object} models.RouterSettings
// @Failure 500 {object} models.Error
// @Router /settings/router [get]
func (e SettingsEndpoint) handleRouterGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := e.settings.GetRouterConfig(r.Context())
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewRouterSettings(cfg))
	}
}

// handleRouterPut returns a Handler function.
//
// @ID settings_handleRouterPut
// @Tags Settings
// @Summary Store the router connection. An empty or masked password keeps the stored one.
// @Accept json
// @Produce json
// @Param request body models.RouterSettings true "The router connection."
// @Success 200 {object} models.RouterSettings
// @Failure 400 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /settings/router [put]
func (e SettingsEndpoint) handleRouterPut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body models.RouterSettings
		if err := request.BodyJson(r, &body); err != nil {
			respond.JSON(w, http.StatusBadRequest, models.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		saved, err := e.settings.UpdateRouterConfig(r.Context(), models.NewDomainRouterConfig(body))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewRouterSettings(saved))
	}
}

// handleWireGuardGet returns a Handler function.
//
// @ID settings_handleWireGuardGet
// @Tags Settings
// @Summary Get the defaults for new peers.
// @Produce json
// @Success 200 {object} models.WireGuardDefaults
// @Failure 500 {object} models.Error
// @Router /settings/wireguard [get]
func (e SettingsEndpoint) handleWireGuardGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defaults, err := e.settings.GetWireGuardDefaults(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewWireGuardDefaults(defaults))
	}
}

// handleWireGuardPut returns a Handler function.
//
// @ID settings_handleWireGuardPut
// @Tags Settings
// @Summary Store the defaults for new peers.
// @Accept json
// @Produce json
// @Param request body models.WireGuardDefaults true "The defaults."
// @Success 200 {object} models.WireGuardDefaults
// @Failure 400 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /settings/wireguard [put]
func (e SettingsEndpoint) handleWireGuardPut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body models.WireGuardDefaults
		if err := request.BodyJson(r, &body); err != nil {
			respond.JSON(w, http.StatusBadRequest, models.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		saved, err := e.settings.UpdateWireGuardDefaults(r.Context(), models.NewDomainWireGuardDefaults(body))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewWireGuardDefaults(saved))
	}
}
