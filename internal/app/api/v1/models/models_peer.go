package models

import "github.com/h44z/wg-portal-routeros/internal/domain"

// Peer is a WireGuard peer of the router.
type Peer struct {
	Id                  string         `json:"Id" example:"*3"`
	Name                string         `json:"Name" example:"laptop"`
	Interface           string         `json:"Interface" example:"wg0"`
	AllowedAddress      string         `json:"AllowedAddress" example:"10.8.0.2/32"`
	Endpoint            string         `json:"Endpoint"`
	EndpointPort        string         `json:"EndpointPort"`
	PublicKey           string         `json:"PublicKey"`
	HasPresharedKey     bool           `json:"HasPresharedKey"`
	PersistentKeepalive string         `json:"PersistentKeepalive,omitempty"`
	Disabled            bool           `json:"Disabled"`
	Attributes          map[string]any `json:"Attributes,omitempty"` // router fields without a dedicated field
}

func NewPeer(src domain.WireguardPeer) Peer {
	return Peer{
		Id:                  src.Id,
		Name:                src.Name,
		Interface:           src.Interface,
		AllowedAddress:      src.AllowedAddress,
		Endpoint:            src.Endpoint,
		EndpointPort:        src.EndpointPort,
		PublicKey:           src.PublicKey,
		HasPresharedKey:     src.PresharedKey != "",
		PersistentKeepalive: src.PersistentKeepalive,
		Disabled:            src.IsDisabled(),
		Attributes:          src.Extra,
	}
}

func NewPeers(src []domain.WireguardPeer) []Peer {
	results := make([]Peer, len(src))
	for i := range src {
		results[i] = NewPeer(src[i])
	}
	return results
}

// PeerForm is the input to create or update a peer. PrivateKey is only set for prepared peers
// and is never sent to the router.
type PeerForm struct {
	Name                string `json:"Name" example:"laptop"`
	Interface           string `json:"Interface" example:"wg0"`
	AllowedAddress      string `json:"AllowedAddress" example:"10.8.0.2/32"`
	Endpoint            string `json:"Endpoint"`
	EndpointPort        string `json:"EndpointPort"`
	PublicKey           string `json:"PublicKey"`
	PresharedKey        string `json:"PresharedKey"`
	PersistentKeepalive string `json:"PersistentKeepalive"`
	Disabled            bool   `json:"Disabled"`
	PrivateKey          string `json:"PrivateKey,omitempty"`
}

func NewPeerForm(src domain.PeerFormData) PeerForm {
	return PeerForm{
		Name:                src.Name,
		Interface:           src.Interface,
		AllowedAddress:      src.AllowedAddress,
		Endpoint:            src.Endpoint,
		EndpointPort:        src.EndpointPort,
		PublicKey:           src.PublicKey,
		PresharedKey:        src.PresharedKey,
		PersistentKeepalive: src.PersistentKeepalive,
		Disabled:            src.Disabled,
		PrivateKey:          src.PrivateKey,
	}
}

func NewDomainPeerForm(src PeerForm) domain.PeerFormData {
	return domain.PeerFormData{
		Name:                src.Name,
		Interface:           src.Interface,
		AllowedAddress:      src.AllowedAddress,
		Endpoint:            src.Endpoint,
		EndpointPort:        src.EndpointPort,
		PublicKey:           src.PublicKey,
		PresharedKey:        src.PresharedKey,
		PersistentKeepalive: src.PersistentKeepalive,
		Disabled:            src.Disabled,
		PrivateKey:          src.PrivateKey,
	}
}
