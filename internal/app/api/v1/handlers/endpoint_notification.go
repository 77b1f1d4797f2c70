package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-portal-routeros/internal/app/api/core/respond"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/models"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

type NotificationService interface {
	// List returns the buffered notifications, newest first.
	List() []domain.Notification
}

type NotificationEndpoint struct {
	notifications NotificationService
}

func NewNotificationEndpoint(notifications NotificationService) NotificationEndpoint {
	return NotificationEndpoint{notifications: notifications}
}

func (e NotificationEndpoint) GetName() string {
	return "NotificationEndpoint"
}

func (e NotificationEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("GET /notifications", e.handleAllGet())
}

// handleAllGet returns a Handler function.
//
// @ID notification_handleAllGet
// @Tags Notifications
// @Summary Get the most recent router call notifications, newest first.
// @Produce json
// @Success 200 {object} []models.Notification
// @Router /notifications [get]
func (e NotificationEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, models.NewNotifications(e.notifications.List()))
	}
}
