package models

import "github.com/h44z/wg-portal-routeros/internal/domain"

// RouterSettings is the router connection. The password is write only, responses carry a mask.
type RouterSettings struct {
	Address  string `json:"Address" example:"192.168.88.1"`
	Port     string `json:"Port" example:"443"`
	Username string `json:"Username" example:"admin"`
	Password string `json:"Password"`
	UseHttps bool   `json:"UseHttps"`
	Usable   bool   `json:"Usable"` // read only
}

func NewRouterSettings(src domain.RouterConfig) RouterSettings {
	return RouterSettings{
		Address:  src.Address,
		Port:     src.Port,
		Username: src.Username,
		Password: src.Redacted().Password,
		UseHttps: src.UseHttps,
		Usable:   src.Usable(),
	}
}

func NewDomainRouterConfig(src RouterSettings) domain.RouterConfig {
	return domain.RouterConfig{
		Address:  src.Address,
		Port:     src.Port,
		Username: src.Username,
		Password: src.Password,
		UseHttps: src.UseHttps,
	}
}

// WireGuardDefaults pre-fill new peers.
type WireGuardDefaults struct {
	Endpoint       string `json:"Endpoint" example:"vpn.example.com"`
	Port           string `json:"Port" example:"51820"`
	AllowedIpRange string `json:"AllowedIpRange" example:"10.8.0.0/24"`
	Dns            string `json:"Dns" example:"1.1.1.1"`
}

func NewWireGuardDefaults(src domain.WireGuardDefaults) WireGuardDefaults {
	return WireGuardDefaults(src)
}

func NewDomainWireGuardDefaults(src WireGuardDefaults) domain.WireGuardDefaults {
	return domain.WireGuardDefaults(src)
}
