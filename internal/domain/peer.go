package domain

// WireguardPeer is a WireGuard peer as configured on the router.
type WireguardPeer struct {
	Id                  string       `json:"id"`
	Name                string       `json:"name"`
	Interface           string       `json:"interface"` // refers to WireguardInterface.Name, not the id
	AllowedAddress      string       `json:"allowedAddress"`
	Endpoint            string       `json:"endpoint"`
	EndpointPort        string       `json:"endpointPort"`
	PublicKey           string       `json:"publicKey"`
	PresharedKey        string       `json:"presharedKey,omitempty"`
	PersistentKeepalive string       `json:"persistentKeepalive,omitempty"`
	Disabled            BoolOrString `json:"disabled"`

	// Extra holds all wire fields that have no dedicated field, keyed by their original name.
	Extra map[string]any `json:"-"`
}

func (p *WireguardPeer) IsDisabled() bool {
	return p.Disabled.Bool()
}

func (p WireguardPeer) MarshalJSON() ([]byte, error) {
	type plain WireguardPeer
	return marshalWithExtras(plain(p), p.Extra)
}

func (p *WireguardPeer) UnmarshalJSON(data []byte) error {
	type plain WireguardPeer
	var pl plain
	extras, err := unmarshalWithExtras(data, &pl, peerJsonFields)
	if err != nil {
		return err
	}
	*p = WireguardPeer(pl)
	p.Extra = extras
	return nil
}

var peerJsonFields = []string{
	"id", "name", "interface", "allowedAddress", "endpoint", "endpointPort", "publicKey", "presharedKey",
	"persistentKeepalive", "disabled",
}

// PeerFormData is the user input used to create or update a peer.
type PeerFormData struct {
	Name                string `json:"name" validate:"required,max=128"`
	Interface           string `json:"interface" validate:"required"`
	AllowedAddress      string `json:"allowedAddress" validate:"required,cidrlist"`
	Endpoint            string `json:"endpoint" validate:"omitempty,hostname_rfc1123|ip"`
	EndpointPort        string `json:"endpointPort" validate:"omitempty,numeric"`
	PublicKey           string `json:"publicKey" validate:"required,wgkey"`
	PresharedKey        string `json:"presharedKey" validate:"omitempty,wgkey"`
	PersistentKeepalive string `json:"persistentKeepalive"`
	Disabled            bool   `json:"disabled"`

	// PrivateKey is only set for freshly prepared peers, it is never sent to the router.
	PrivateKey string `json:"privateKey,omitempty"`
}
