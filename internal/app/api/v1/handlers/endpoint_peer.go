package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-portal-routeros/internal/app/api/core/request"
	"github.com/h44z/wg-portal-routeros/internal/app/api/core/respond"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/models"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

type PeerService interface {
	ListPeers(ctx context.Context, interfaceName string) ([]domain.WireguardPeer, domain.Outcome)
	CreatePeer(ctx context.Context, form domain.PeerFormData) (*domain.WireguardPeer, domain.Outcome)
	UpdatePeer(ctx context.Context, id string, form domain.PeerFormData) (*domain.WireguardPeer, domain.Outcome)
	DeletePeer(ctx context.Context, id string) domain.Outcome
}

type PeerPreparer interface {
	PreparePeer(ctx context.Context, interfaceName string) (domain.PeerFormData, error)
}

type PeerConfigService interface {
	// PeerConfig renders the client configuration of a prepared peer. A failed router call is
	// returned as domain.Outcome error.
	PeerConfig(ctx context.Context, form domain.PeerFormData) (string, error)
}

type PeerEndpoint struct {
	peers     PeerService
	preparer  PeerPreparer
	configs   PeerConfigService
	validator Validator
}

func NewPeerEndpoint(
	peers PeerService,
	preparer PeerPreparer,
	configs PeerConfigService,
	validator Validator,
) PeerEndpoint {
	return PeerEndpoint{
		peers:     peers,
		preparer:  preparer,
		configs:   configs,
		validator: validator,
	}
}

func (e PeerEndpoint) GetName() string {
	return "PeerEndpoint"
}

func (e PeerEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/peer")

	apiGroup.HandleFunc("GET /all", e.handleAllGet())
	apiGroup.HandleFunc("GET /prepare", e.handlePrepareGet())
	apiGroup.HandleFunc("POST /new", e.handleCreatePost())
	apiGroup.HandleFunc("POST /config", e.handleConfigPost())
	apiGroup.HandleFunc("PATCH /by-id/{id}", e.handleUpdatePatch())
	apiGroup.HandleFunc("DELETE /by-id/{id}", e.handleDelete())
}

// handleAllGet returns a Handler function.
//
// @ID peer_handleAllGet
// @Tags Peers
// @Summary Get all WireGuard peers of the router.
// @Produce json
// @Param interface query string false "Only return peers of this interface."
// @Success 200 {object} []models.Peer
// @Failure 412 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /peer/all [get]
func (e PeerEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		peers, outcome := e.peers.ListPeers(r.Context(), request.Query(r, "interface"))
		if !outcome.Success() {
			respondOutcomeError(w, outcome)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewPeers(peers))
	}
}

// handlePrepareGet returns a Handler function.
//
// @ID peer_handlePrepareGet
// @Tags Peers
// @Summary Prepare a new peer with a fresh key pair and the WireGuard defaults.
// @Produce json
// @Param interface query string false "The interface of the new peer."
// @Success 200 {object} models.PeerForm
// @Failure 500 {object} models.Error
// @Router /peer/prepare [get]
func (e PeerEndpoint) handlePrepareGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := e.preparer.PreparePeer(r.Context(), request.Query(r, "interface"))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewPeerForm(form))
	}
}

// handleCreatePost returns a Handler function.
//
// @ID peer_handleCreatePost
// @Tags Peers
// @Summary Create a new peer on the router. A private key in the input is ignored.
// @Accept json
// @Produce json
// @Param request body models.PeerForm true "The peer data."
// @Success 200 {object} models.Peer
// @Success 204 "The router did not return the created record."
// @Failure 400 {object} models.Error
// @Failure 412 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /peer/new [post]
func (e PeerEndpoint) handleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := e.readForm(w, r)
		if !ok {
			return
		}

		peer, outcome := e.peers.CreatePeer(r.Context(), form)
		e.respondWrite(w, peer, outcome)
	}
}

// handleUpdatePatch returns a Handler function.
//
// @ID peer_handleUpdatePatch
// @Tags Peers
// @Summary Update a peer on the router.
// @Accept json
// @Produce json
// @Param id path string true "The router id of the peer, e.g. *3."
// @Param request body models.PeerForm true "The peer data."
// @Success 200 {object} models.Peer
// @Success 204 "The router did not return the updated record."
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 412 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /peer/by-id/{id} [patch]
func (e PeerEndpoint) handleUpdatePatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				models.Error{Code: http.StatusBadRequest, Message: "missing peer id"})
			return
		}

		form, ok := e.readForm(w, r)
		if !ok {
			return
		}

		peer, outcome := e.peers.UpdatePeer(r.Context(), id, form)
		e.respondWrite(w, peer, outcome)
	}
}

// handleDelete returns a Handler function.
//
// @ID peer_handleDelete
// @Tags Peers
// @Summary Delete a peer from the router.
// @Param id path string true "The router id of the peer, e.g. *3."
// @Success 204 "No content if deletion was successful."
// @Failure 404 {object} models.Error
// @Failure 412 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /peer/by-id/{id} [delete]
func (e PeerEndpoint) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				models.Error{Code: http.StatusBadRequest, Message: "missing peer id"})
			return
		}

		if outcome := e.peers.DeletePeer(r.Context(), id); !outcome.Success() {
			respondOutcomeError(w, outcome)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

// handleConfigPost returns a Handler function.
//
// @ID peer_handleConfigPost
// @Tags Peers
// @Summary Render the wg-quick configuration of a prepared peer.
// @Accept json
// @Produce plain
// @Param request body models.PeerForm true "The prepared peer, including its private key."
// @Success 200 {string} string "The WireGuard client configuration."
// @Failure 400 {object} models.Error
// @Failure 412 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /peer/config [post]
func (e PeerEndpoint) handleConfigPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := e.readForm(w, r)
		if !ok {
			return
		}

		cfg, err := e.configs.PeerConfig(r.Context(), form)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.Attachment(w, http.StatusOK, fmt.Sprintf("%s.conf", form.Name), "text/plain;charset=utf-8",
			strings.NewReader(cfg))
	}
}

func (e PeerEndpoint) readForm(w http.ResponseWriter, r *http.Request) (domain.PeerFormData, bool) {
	var form models.PeerForm
	if err := request.BodyJson(r, &form); err != nil {
		respond.JSON(w, http.StatusBadRequest, models.Error{Code: http.StatusBadRequest, Message: err.Error()})
		return domain.PeerFormData{}, false
	}

	data := models.NewDomainPeerForm(form)
	if err := e.validator.Struct(data); err != nil {
		respondValidationError(w, err)
		return domain.PeerFormData{}, false
	}
	return data, true
}

func (e PeerEndpoint) respondWrite(w http.ResponseWriter, peer *domain.WireguardPeer, outcome domain.Outcome) {
	switch {
	case !outcome.Success():
		respondOutcomeError(w, outcome)
	case peer == nil:
		respond.Status(w, http.StatusNoContent)
	default:
		respond.JSON(w, http.StatusOK, models.NewPeer(*peer))
	}
}
