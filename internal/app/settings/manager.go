package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/h44z/wg-portal-routeros/internal/app"
	"github.com/h44z/wg-portal-routeros/internal/config"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// region dependencies

type EventBus interface {
	// Publish sends a message to the message bus.
	Publish(topic string, args ...any)
}

type Validator interface {
	// Struct validates the given struct.
	Struct(s interface{}) error
}

type Repository interface {
	GetRouterConfig(ctx context.Context) (domain.RouterConfig, error)
	SaveRouterConfig(ctx context.Context, cfg domain.RouterConfig) error
	GetWireGuardDefaults(ctx context.Context) (domain.WireGuardDefaults, error)
	SaveWireGuardDefaults(ctx context.Context, defaults domain.WireGuardDefaults) error
}

// endregion dependencies

// Manager owns the router connection settings and the WireGuard defaults.
type Manager struct {
	cfg      *config.Config
	bus      EventBus
	repo     Repository
	validate Validator
}

func NewManager(cfg *config.Config, bus EventBus, repo Repository, validate Validator) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("settings repository is required")
	}

	return &Manager{
		cfg:      cfg,
		bus:      bus,
		repo:     repo,
		validate: validate,
	}, nil
}

// SeedDefaults stores the values of the configuration file if the store holds no settings yet.
func (m *Manager) SeedDefaults(ctx context.Context) error {
	_, err := m.repo.GetRouterConfig(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		seed := m.cfg.Core.Router.ToDomain()
		if err := m.repo.SaveRouterConfig(ctx, seed); err != nil {
			return fmt.Errorf("failed to seed router settings: %w", err)
		}
		slog.Info("seeded router settings from configuration", "address", seed.Address, "usable", seed.Usable())
	case err != nil:
		return fmt.Errorf("failed to load router settings: %w", err)
	}

	_, err = m.repo.GetWireGuardDefaults(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if err := m.repo.SaveWireGuardDefaults(ctx, m.cfg.Core.WireGuardDefaults.ToDomain()); err != nil {
			return fmt.Errorf("failed to seed wireguard defaults: %w", err)
		}
		slog.Info("seeded wireguard defaults from configuration")
	case err != nil:
		return fmt.Errorf("failed to load wireguard defaults: %w", err)
	}

	return nil
}

// GetRouterConfig returns the stored router connection, including the password.
func (m *Manager) GetRouterConfig(ctx context.Context) (domain.RouterConfig, error) {
	return m.repo.GetRouterConfig(ctx)
}

// UpdateRouterConfig validates and stores the router connection. An empty or masked password keeps the
// stored one. The redacted result is returned.
func (m *Manager) UpdateRouterConfig(ctx context.Context, cfg domain.RouterConfig) (domain.RouterConfig, error) {
	existing, err := m.repo.GetRouterConfig(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.RouterConfig{}, fmt.Errorf("failed to load router settings: %w", err)
	}
	if cfg.Password == "" || cfg.Password == domain.RedactedPassword {
		cfg.Password = existing.Password
	}

	if err := m.validate.Struct(cfg); err != nil {
		return domain.RouterConfig{}, fmt.Errorf("%w: %v", domain.ErrInvalidData, err)
	}

	if err := m.repo.SaveRouterConfig(ctx, cfg); err != nil {
		return domain.RouterConfig{}, err
	}

	slog.Info("router settings updated", "address", cfg.Address, "port", cfg.Port, "username", cfg.Username,
		"use_https", cfg.UseHttps)
	m.bus.Publish(app.TopicRouterSettingsUpdated, cfg.Redacted())

	return cfg.Redacted(), nil
}

func (m *Manager) GetWireGuardDefaults(ctx context.Context) (domain.WireGuardDefaults, error) {
	defaults, err := m.repo.GetWireGuardDefaults(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return m.cfg.Core.WireGuardDefaults.ToDomain(), nil
	}
	return defaults, err
}

func (m *Manager) UpdateWireGuardDefaults(
	ctx context.Context,
	defaults domain.WireGuardDefaults,
) (domain.WireGuardDefaults, error) {
	if err := m.validate.Struct(defaults); err != nil {
		return domain.WireGuardDefaults{}, fmt.Errorf("%w: %v", domain.ErrInvalidData, err)
	}

	if err := m.repo.SaveWireGuardDefaults(ctx, defaults); err != nil {
		return domain.WireGuardDefaults{}, err
	}

	m.bus.Publish(app.TopicWireGuardDefaultsUpdated, defaults)

	return defaults, nil
}

// region prepare

// PreparePeer returns form data for a new peer, pre-filled with the defaults and a fresh key pair.
// The private key is only part of this response, it is never stored.
func (m *Manager) PreparePeer(ctx context.Context, interfaceName string) (domain.PeerFormData, error) {
	defaults, err := m.GetWireGuardDefaults(ctx)
	if err != nil {
		return domain.PeerFormData{}, fmt.Errorf("failed to load wireguard defaults: %w", err)
	}

	keys, err := domain.NewFreshKeypair()
	if err != nil {
		return domain.PeerFormData{}, fmt.Errorf("failed to generate keys: %w", err)
	}
	psk, err := domain.NewPreSharedKey()
	if err != nil {
		return domain.PeerFormData{}, fmt.Errorf("failed to generate preshared key: %w", err)
	}

	return domain.PeerFormData{
		Interface:      interfaceName,
		AllowedAddress: defaults.AllowedIpRange,
		Endpoint:       defaults.Endpoint,
		EndpointPort:   defaults.Port,
		PublicKey:      keys.PublicKey,
		PresharedKey:   psk,
		PrivateKey:     keys.PrivateKey,
	}, nil
}

// PrepareInterface returns form data for a new interface with a fresh private key and the default port.
func (m *Manager) PrepareInterface(ctx context.Context) (domain.InterfaceFormData, error) {
	defaults, err := m.GetWireGuardDefaults(ctx)
	if err != nil {
		return domain.InterfaceFormData{}, fmt.Errorf("failed to load wireguard defaults: %w", err)
	}

	keys, err := domain.NewFreshKeypair()
	if err != nil {
		return domain.InterfaceFormData{}, fmt.Errorf("failed to generate keys: %w", err)
	}

	return domain.InterfaceFormData{
		ListenPort: defaults.Port,
		PrivateKey: keys.PrivateKey,
	}, nil
}

// endregion prepare
