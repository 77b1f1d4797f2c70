package models

import (
	"time"

	"github.com/h44z/wg-portal-routeros/internal/adapters/wgcontroller"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// SystemResource is the router information returned by a successful connection test.
type SystemResource struct {
	Version      string `json:"Version" example:"7.14.2 (stable)"`
	BoardName    string `json:"BoardName" example:"hAP ax^3"`
	Architecture string `json:"Architecture" example:"arm64"`
	Uptime       string `json:"Uptime" example:"1w2d"`
	CpuLoad      string `json:"CpuLoad" example:"3"`
}

func NewSystemResource(src *wgcontroller.SystemResource) *SystemResource {
	if src == nil {
		return nil
	}
	return &SystemResource{
		Version:      src.Version,
		BoardName:    src.BoardName,
		Architecture: src.Architecture,
		Uptime:       src.Uptime,
		CpuLoad:      src.CpuLoad,
	}
}

// ConnectionTest is the result of a connection test.
type ConnectionTest struct {
	IsConnected bool            `json:"IsConnected"`
	Outcome     Outcome         `json:"Outcome"`
	Resource    *SystemResource `json:"Resource,omitempty"`
}

// ConnectionState is the last known connection state.
type ConnectionState struct {
	IsConnected bool       `json:"IsConnected"`
	Outcome     *Outcome   `json:"Outcome,omitempty"` // nil if no test was run yet
	CheckedAt   *time.Time `json:"CheckedAt,omitempty"`
}

func NewConnectionState(src domain.ConnectionState) ConnectionState {
	state := ConnectionState{IsConnected: src.Connected}
	if !src.CheckedAt.IsZero() {
		outcome := NewOutcome(src.Outcome)
		checkedAt := src.CheckedAt
		state.Outcome = &outcome
		state.CheckedAt = &checkedAt
	}
	return state
}
