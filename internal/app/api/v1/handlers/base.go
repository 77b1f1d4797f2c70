package handlers

import (
	"errors"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-portal-routeros/internal/app/api/core"
	"github.com/h44z/wg-portal-routeros/internal/app/api/core/respond"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/models"
	"github.com/h44z/wg-portal-routeros/internal/app/relay"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

type Handler interface {
	// GetName returns the name of the handler.
	GetName() string
	// RegisterRoutes registers the routes for the handler.
	RegisterRoutes(g *routegroup.Bundle)
}

// @title WireGuard Portal RouterOS API
// @version 1.0
// @description The REST API manages the WireGuard interfaces and peers of a MikroTik RouterOS device.
// @description Router calls are issued through a relay endpoint or directly, every call is classified
// @description and reported as notification.

// @BasePath /api/v1

func NewRestApi(handlers ...Handler) core.ApiEndpointSetupFunc {
	return func() (core.ApiVersion, core.GroupSetupFn) {
		return "v1", func(group *routegroup.Bundle) {
			for _, h := range handlers {
				h.RegisterRoutes(group)
			}
		}
	}
}

func ParseServiceError(err error) (int, models.Error) {
	if err == nil {
		return 500, models.Error{
			Code:    500,
			Message: "unknown server error",
		}
	}

	var outcome domain.Outcome
	if errors.As(err, &outcome) {
		return ParseOutcome(outcome)
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidData):
		code = http.StatusBadRequest
	case errors.Is(err, relay.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, relay.ErrTargetNotAllowed):
		code = http.StatusForbidden
	}

	return code, models.Error{
		Code:    code,
		Message: err.Error(),
	}
}

// ParseOutcome maps a failed router call to an HTTP error. Client errors of the router are passed on,
// every other failure is a bad gateway.
func ParseOutcome(outcome domain.Outcome) (int, models.Error) {
	code := http.StatusBadGateway
	switch {
	case outcome.Category == domain.OutcomeConfigIncomplete:
		code = http.StatusPreconditionFailed
	case outcome.Category == domain.OutcomeHttpError && outcome.Status >= 400 && outcome.Status < 500:
		code = outcome.Status
	}

	e := models.Error{
		Code:     code,
		Message:  outcome.Message,
		Category: string(outcome.Category),
	}
	if e.Message == "" {
		e.Message = outcome.String()
	}
	if outcome.Err != nil {
		e.Details = outcome.Err.Error()
	}
	return code, e
}

func respondOutcomeError(w http.ResponseWriter, outcome domain.Outcome) {
	code, body := ParseOutcome(outcome)
	respond.JSON(w, code, body)
}

func respondServiceError(w http.ResponseWriter, err error) {
	code, body := ParseServiceError(err)
	respond.JSON(w, code, body)
}

func respondValidationError(w http.ResponseWriter, err error) {
	respond.JSON(w, http.StatusBadRequest, models.Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
		Details: err.Error(),
	})
}

// region handler-interfaces

type Validator interface {
	// Struct validates the given struct.
	Struct(s interface{}) error
}

// endregion handler-interfaces
