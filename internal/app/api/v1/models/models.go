package models

import "github.com/h44z/wg-portal-routeros/internal/domain"

// Error represents an error response.
type Error struct {
	Code     int    `json:"Code"`               // HTTP status code.
	Message  string `json:"Message"`            // Error message.
	Details  string `json:"Details,omitempty"`  // Additional error details.
	Category string `json:"Category,omitempty"` // Outcome category of a failed router call.
}

// Outcome is the classified result of a router call.
type Outcome struct {
	Success    bool   `json:"Success"`
	Category   string `json:"Category"`
	Transport  string `json:"Transport"`
	Status     int    `json:"Status,omitempty"`
	StatusText string `json:"StatusText,omitempty"`
	Message    string `json:"Message,omitempty"`
}

func NewOutcome(src domain.Outcome) Outcome {
	return Outcome{
		Success:    src.Success(),
		Category:   string(src.Category),
		Transport:  string(src.Transport),
		Status:     src.Status,
		StatusText: src.StatusText,
		Message:    src.Message,
	}
}

// Health is returned by the health endpoint.
type Health struct {
	Status  string `json:"Status"`
	Version string `json:"Version"`
}
