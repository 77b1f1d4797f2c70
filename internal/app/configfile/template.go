package configfile

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"net"
	"strings"
	"text/template"

	"github.com/h44z/wg-portal-routeros/internal"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

//go:embed tpl_files/*
var TemplateFiles embed.FS

// DefaultClientAllowedIPs routes all traffic through the tunnel.
const DefaultClientAllowedIPs = "0.0.0.0/0, ::/0"

// PeerConfigData holds everything that is needed to render a client configuration.
type PeerConfigData struct {
	Peer       domain.PeerFormData
	Server     domain.WireguardInterface
	Dns        string
	AllowedIPs string // routed through the tunnel on the client, DefaultClientAllowedIPs if empty
}

// TemplateHandler renders wg-quick configuration files for peers.
type TemplateHandler struct {
	templates *template.Template
}

func NewTemplateHandler() (*TemplateHandler, error) {
	templateCache, err := template.New("WireGuard").ParseFS(TemplateFiles, "tpl_files/*.tpl")
	if err != nil {
		return nil, err
	}

	return &TemplateHandler{
		templates: templateCache,
	}, nil
}

// GetPeerConfig returns the rendered client configuration of a prepared peer.
func (c TemplateHandler) GetPeerConfig(data PeerConfigData) (io.Reader, error) {
	if data.Peer.PrivateKey == "" {
		return nil, fmt.Errorf("%w: private key of peer %s is unknown", domain.ErrInvalidData, data.Peer.Name)
	}
	if data.Server.PublicKey == "" {
		return nil, fmt.Errorf("%w: interface %s has no public key", domain.ErrInvalidData, data.Server.Name)
	}

	endpoint, err := clientEndpoint(data.Peer, data.Server)
	if err != nil {
		return nil, err
	}

	allowedIPs := data.AllowedIPs
	if allowedIPs == "" {
		allowedIPs = DefaultClientAllowedIPs
	}

	var tplBuff bytes.Buffer
	err = c.templates.ExecuteTemplate(&tplBuff, "wg_peer.tpl", map[string]any{
		"Peer":       data.Peer,
		"Server":     data.Server,
		"Dns":        data.Dns,
		"AllowedIPs": allowedIPs,
		"Endpoint":   endpoint,
		"Portal": map[string]any{
			"Version": internal.Version,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute peer template for %s: %w", data.Peer.Name, err)
	}

	return &tplBuff, nil
}

// clientEndpoint joins the public endpoint of the router with the listen port of the interface.
// The endpoint port of the form wins over the listen port.
func clientEndpoint(peer domain.PeerFormData, server domain.WireguardInterface) (string, error) {
	host := strings.TrimSpace(peer.Endpoint)
	if host == "" {
		return "", fmt.Errorf("%w: endpoint of peer %s is empty", domain.ErrInvalidData, peer.Name)
	}
	port := peer.EndpointPort
	if port == "" {
		port = server.ListenPort
	}
	if port == "" {
		return host, nil
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), port), nil
}
