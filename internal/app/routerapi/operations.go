package routerapi

import (
	"context"
	"log/slog"

	"github.com/h44z/wg-portal-routeros/internal/adapters/wgcontroller"
	"github.com/h44z/wg-portal-routeros/internal/app"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// region interfaces

func (m *Manager) ListInterfaces(ctx context.Context) ([]domain.WireguardInterface, domain.Outcome) {
	return m.controller.ListInterfaces(ctx)
}

func (m *Manager) CreateInterface(
	ctx context.Context,
	form domain.InterfaceFormData,
) (*domain.WireguardInterface, domain.Outcome) {
	return m.controller.CreateInterface(ctx, form)
}

func (m *Manager) UpdateInterface(
	ctx context.Context,
	id string,
	form domain.InterfaceFormData,
) (*domain.WireguardInterface, domain.Outcome) {
	return m.controller.UpdateInterface(ctx, id, form)
}

func (m *Manager) DeleteInterface(ctx context.Context, id string) domain.Outcome {
	return m.controller.DeleteInterface(ctx, id)
}

// endregion interfaces

// region peers

func (m *Manager) ListPeers(ctx context.Context, interfaceName string) ([]domain.WireguardPeer, domain.Outcome) {
	return m.controller.ListPeers(ctx, interfaceName)
}

func (m *Manager) CreatePeer(ctx context.Context, form domain.PeerFormData) (*domain.WireguardPeer, domain.Outcome) {
	return m.controller.CreatePeer(ctx, form)
}

func (m *Manager) UpdatePeer(
	ctx context.Context,
	id string,
	form domain.PeerFormData,
) (*domain.WireguardPeer, domain.Outcome) {
	return m.controller.UpdatePeer(ctx, id, form)
}

func (m *Manager) DeletePeer(ctx context.Context, id string) domain.Outcome {
	return m.controller.DeletePeer(ctx, id)
}

// endregion peers

// region connection

// TestConnection validates credentials and reachability. It is the only call that updates
// the connected flag of the session.
func (m *Manager) TestConnection(ctx context.Context) (bool, *wgcontroller.SystemResource, domain.Outcome) {
	resource, outcome := m.controller.TestConnection(ctx)

	state, changed := m.session.record(outcome)
	if changed {
		slog.Info(logPrefix+"router connection state changed", "connected", state.Connected,
			"category", outcome.Category)
		m.bus.Publish(app.TopicConnectionStateChanged, state)
	}

	return state.Connected, resource, outcome
}

// ConnectionState returns the result of the last connection test.
func (m *Manager) ConnectionState() domain.ConnectionState {
	return m.session.State()
}

// endregion connection
