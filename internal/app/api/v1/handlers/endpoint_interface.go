package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-portal-routeros/internal/app/api/core/request"
	"github.com/h44z/wg-portal-routeros/internal/app/api/core/respond"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/models"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

type InterfaceService interface {
	ListInterfaces(ctx context.Context) ([]domain.WireguardInterface, domain.Outcome)
	CreateInterface(ctx context.Context, form domain.InterfaceFormData) (*domain.WireguardInterface, domain.Outcome)
	UpdateInterface(
		ctx context.Context,
		id string,
		form domain.InterfaceFormData,
	) (*domain.WireguardInterface, domain.Outcome)
	DeleteInterface(ctx context.Context, id string) domain.Outcome
}

type InterfacePreparer interface {
	PrepareInterface(ctx context.Context) (domain.InterfaceFormData, error)
}

type InterfaceEndpoint struct {
	interfaces InterfaceService
	preparer   InterfacePreparer
	validator  Validator
}

func NewInterfaceEndpoint(
	interfaces InterfaceService,
	preparer InterfacePreparer,
	validator Validator,
) InterfaceEndpoint {
	return InterfaceEndpoint{
		interfaces: interfaces,
		preparer:   preparer,
		validator:  validator,
	}
}

func (e InterfaceEndpoint) GetName() string {
	return "InterfaceEndpoint"
}

func (e InterfaceEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/interface")

	apiGroup.HandleFunc("GET /all", e.handleAllGet())
	apiGroup.HandleFunc("GET /prepare", e.handlePrepareGet())
	apiGroup.HandleFunc("POST /new", e.handleCreatePost())
	apiGroup.HandleFunc("PATCH /by-id/{id}", e.handleUpdatePatch())
	apiGroup.HandleFunc("DELETE /by-id/{id}", e.handleDelete())
}

// handleAllGet returns a Handler function.
//
// @ID interface_handleAllGet
// @Tags Interfaces
// @Summary Get all WireGuard interfaces of the router.
// @Produce json
// @Success 200 {object} []models.Interface
// @Failure 412 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /interface/all [get]
func (e InterfaceEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		interfaces, outcome := e.interfaces.ListInterfaces(r.Context())
		if !outcome.Success() {
			respondOutcomeError(w, outcome)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewInterfaces(interfaces))
	}
}

// handlePrepareGet returns a Handler function.
//
// @ID interface_handlePrepareGet
// @Tags Interfaces
// @Summary Prepare a new interface with a fresh private key.
// @Produce json
// @Success 200 {object} models.InterfaceForm
// @Failure 500 {object} models.Error
// @Router /interface/prepare [get]
func (e InterfaceEndpoint) handlePrepareGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := e.preparer.PrepareInterface(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewInterfaceForm(form))
	}
}

// handleCreatePost returns a Handler function.
//
// @ID interface_handleCreatePost
// @Tags Interfaces
// @Summary Create a new interface on the router.
// @Accept json
// @Produce json
// @Param request body models.InterfaceForm true "The interface data."
// @Success 200 {object} models.Interface
// @Success 204 "The router did not return the created record."
// @Failure 400 {object} models.Error
// @Failure 412 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /interface/new [post]
func (e InterfaceEndpoint) handleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := e.readForm(w, r)
		if !ok {
			return
		}

		iface, outcome := e.interfaces.CreateInterface(r.Context(), form)
		e.respondWrite(w, iface, outcome)
	}
}

// handleUpdatePatch returns a Handler function.
//
// @ID interface_handleUpdatePatch
// @Tags Interfaces
// @Summary Update an interface on the router.
// @Accept json
// @Produce json
// @Param id path string true "The router id of the interface, e.g. *1."
// @Param request body models.InterfaceForm true "The interface data."
// @Success 200 {object} models.Interface
// @Success 204 "The router did not return the updated record."
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 412 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /interface/by-id/{id} [patch]
func (e InterfaceEndpoint) handleUpdatePatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				models.Error{Code: http.StatusBadRequest, Message: "missing interface id"})
			return
		}

		form, ok := e.readForm(w, r)
		if !ok {
			return
		}

		iface, outcome := e.interfaces.UpdateInterface(r.Context(), id, form)
		e.respondWrite(w, iface, outcome)
	}
}

// handleDelete returns a Handler function.
//
// @ID interface_handleDelete
// @Tags Interfaces
// @Summary Delete an interface from the router.
// @Param id path string true "The router id of the interface, e.g. *1."
// @Success 204 "No content if deletion was successful."
// @Failure 404 {object} models.Error
// @Failure 412 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /interface/by-id/{id} [delete]
func (e InterfaceEndpoint) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				models.Error{Code: http.StatusBadRequest, Message: "missing interface id"})
			return
		}

		if outcome := e.interfaces.DeleteInterface(r.Context(), id); !outcome.Success() {
			respondOutcomeError(w, outcome)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

func (e InterfaceEndpoint) readForm(w http.ResponseWriter, r *http.Request) (domain.InterfaceFormData, bool) {
	var form models.InterfaceForm
	if err := request.BodyJson(r, &form); err != nil {
		respond.JSON(w, http.StatusBadRequest, models.Error{Code: http.StatusBadRequest, Message: err.Error()})
		return domain.InterfaceFormData{}, false
	}

	data := models.NewDomainInterfaceForm(form)
	if err := e.validator.Struct(data); err != nil {
		respondValidationError(w, err)
		return domain.InterfaceFormData{}, false
	}
	return data, true
}

func (e InterfaceEndpoint) respondWrite(w http.ResponseWriter, iface *domain.WireguardInterface, outcome domain.Outcome) {
	switch {
	case !outcome.Success():
		respondOutcomeError(w, outcome)
	case iface == nil:
		respond.Status(w, http.StatusNoContent)
	default:
		respond.JSON(w, http.StatusOK, models.NewInterface(*iface))
	}
}
