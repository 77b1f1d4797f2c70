package configfile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// region dependencies

type InterfaceLister interface {
	ListInterfaces(ctx context.Context) ([]domain.WireguardInterface, domain.Outcome)
}

type DefaultsProvider interface {
	GetWireGuardDefaults(ctx context.Context) (domain.WireGuardDefaults, error)
}

// endregion dependencies

// Manager builds client configurations for prepared peers.
type Manager struct {
	interfaces InterfaceLister
	defaults   DefaultsProvider
	tplHandler *TemplateHandler
}

func NewConfigFileManager(interfaces InterfaceLister, defaults DefaultsProvider) (*Manager, error) {
	tplHandler, err := NewTemplateHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize template handler: %w", err)
	}

	return &Manager{
		interfaces: interfaces,
		defaults:   defaults,
		tplHandler: tplHandler,
	}, nil
}

// PeerConfig renders the client configuration of the given peer. The server side values are read
// from the router interface the peer belongs to. A failed router call is returned as domain.Outcome.
func (m *Manager) PeerConfig(ctx context.Context, form domain.PeerFormData) (string, error) {
	if form.PrivateKey == "" {
		return "", fmt.Errorf("%w: the private key is only known for prepared peers", domain.ErrInvalidData)
	}

	defaults, err := m.defaults.GetWireGuardDefaults(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load wireguard defaults: %w", err)
	}
	if form.Endpoint == "" {
		form.Endpoint = defaults.Endpoint
	}

	interfaces, outcome := m.interfaces.ListInterfaces(ctx)
	if !outcome.Success() {
		return "", outcome
	}

	var server *domain.WireguardInterface
	for i := range interfaces {
		if interfaces[i].Name == form.Interface {
			server = &interfaces[i]
			break
		}
	}
	if server == nil {
		return "", fmt.Errorf("%w: interface %s does not exist on the router", domain.ErrInvalidData, form.Interface)
	}

	reader, err := m.tplHandler.GetPeerConfig(PeerConfigData{
		Peer:   form,
		Server: *server,
		Dns:    defaults.Dns,
	})
	if err != nil {
		return "", err
	}

	cfg, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read rendered config: %w", err)
	}

	slog.Debug("rendered peer configuration", "peer", form.Name, "interface", form.Interface)

	return string(cfg), nil
}
