package models

import "github.com/h44z/wg-portal-routeros/internal/domain"

// Interface is a WireGuard interface of the router. The private key is never exposed.
type Interface struct {
	Id         string         `json:"Id" example:"*1"`
	Name       string         `json:"Name" example:"wg0"`
	ListenPort string         `json:"ListenPort" example:"51820"`
	Mtu        string         `json:"Mtu" example:"1420"`
	PublicKey  string         `json:"PublicKey"`
	Running    bool           `json:"Running"`
	Disabled   bool           `json:"Disabled"`
	Attributes map[string]any `json:"Attributes,omitempty"` // router fields without a dedicated field
}

func NewInterface(src domain.WireguardInterface) Interface {
	return Interface{
		Id:         src.Id,
		Name:       src.Name,
		ListenPort: src.ListenPort,
		Mtu:        src.Mtu,
		PublicKey:  src.PublicKey,
		Running:    src.Running.Bool(),
		Disabled:   src.IsDisabled(),
		Attributes: src.Extra,
	}
}

func NewInterfaces(src []domain.WireguardInterface) []Interface {
	results := make([]Interface, len(src))
	for i := range src {
		results[i] = NewInterface(src[i])
	}
	return results
}

// InterfaceForm is the input to create or update an interface.
type InterfaceForm struct {
	Name       string `json:"Name" example:"wg0"`
	ListenPort string `json:"ListenPort" example:"51820"`
	Mtu        string `json:"Mtu"`
	PrivateKey string `json:"PrivateKey"` // write only
	Disabled   bool   `json:"Disabled"`
}

func NewInterfaceForm(src domain.InterfaceFormData) InterfaceForm {
	return InterfaceForm{
		Name:       src.Name,
		ListenPort: src.ListenPort,
		Mtu:        src.Mtu,
		PrivateKey: src.PrivateKey,
		Disabled:   src.Disabled,
	}
}

func NewDomainInterfaceForm(src InterfaceForm) domain.InterfaceFormData {
	return domain.InterfaceFormData{
		Name:       src.Name,
		ListenPort: src.ListenPort,
		Mtu:        src.Mtu,
		PrivateKey: src.PrivateKey,
		Disabled:   src.Disabled,
	}
}
