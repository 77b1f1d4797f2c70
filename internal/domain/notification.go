package domain

import "time"

type NotificationLevel string

const (
	NotificationLevelInfo    NotificationLevel = "info"
	NotificationLevelWarning NotificationLevel = "warning"
	NotificationLevelError   NotificationLevel = "error"
)

// Notification is a short user facing message emitted once per router call attempt.
type Notification struct {
	Id        string            `json:"id"`
	CallId    string            `json:"callId"`
	Level     NotificationLevel `json:"level"`
	Category  OutcomeCategory   `json:"category"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ConnectionState is published whenever the connected flag of a session changes.
type ConnectionState struct {
	Connected bool      `json:"connected"`
	Outcome   Outcome   `json:"outcome"`
	CheckedAt time.Time `json:"checkedAt"`
}

// CallEvent describes a completed router call attempt.
type CallEvent struct {
	CallId    string
	Operation string
	Outcome   Outcome
	Duration  time.Duration
}
