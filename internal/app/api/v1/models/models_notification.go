package models

import (
	"time"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// Notification is a user facing message about a router call.
type Notification struct {
	Id        string    `json:"Id"`
	Level     string    `json:"Level" example:"error"`
	Category  string    `json:"Category" example:"cors_blocked"`
	Title     string    `json:"Title"`
	Message   string    `json:"Message"`
	CreatedAt time.Time `json:"CreatedAt"`
}

func NewNotifications(src []domain.Notification) []Notification {
	results := make([]Notification, len(src))
	for i, n := range src {
		results[i] = Notification{
			Id:        n.Id,
			Level:     string(n.Level),
			Category:  string(n.Category),
			Title:     n.Title,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		}
	}
	return results
}
