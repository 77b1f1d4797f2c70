package domain

import (
	"encoding/json"
)

// WireguardInterface is a WireGuard interface as configured on the router.
type WireguardInterface struct {
	Id         string       `json:"id"` // router assigned, e.g. "*1"
	Name       string       `json:"name"`
	ListenPort string       `json:"listenPort"`
	Mtu        string       `json:"mtu"`
	PrivateKey string       `json:"privateKey"`
	PublicKey  string       `json:"publicKey"`
	Running    BoolOrString `json:"running"`
	Disabled   BoolOrString `json:"disabled"`

	// Extra holds all wire fields that have no dedicated field, keyed by their original name.
	Extra map[string]any `json:"-"`
}

func (i *WireguardInterface) IsDisabled() bool {
	return i.Disabled.Bool()
}

// MarshalJSON merges the extra attributes into the JSON object. Known fields take precedence.
func (i WireguardInterface) MarshalJSON() ([]byte, error) {
	type plain WireguardInterface
	return marshalWithExtras(plain(i), i.Extra)
}

func (i *WireguardInterface) UnmarshalJSON(data []byte) error {
	type plain WireguardInterface
	var p plain
	extras, err := unmarshalWithExtras(data, &p, interfaceJsonFields)
	if err != nil {
		return err
	}
	*i = WireguardInterface(p)
	i.Extra = extras
	return nil
}

var interfaceJsonFields = []string{
	"id", "name", "listenPort", "mtu", "privateKey", "publicKey", "running", "disabled",
}

// InterfaceFormData is the user input used to create or update an interface.
type InterfaceFormData struct {
	Name       string `json:"name" validate:"required,max=64"`
	ListenPort string `json:"listenPort" validate:"omitempty,numeric"`
	Mtu        string `json:"mtu" validate:"omitempty,numeric"`
	PrivateKey string `json:"privateKey" validate:"omitempty,wgkey"`
	Disabled   bool   `json:"disabled"`
}

func marshalWithExtras(known any, extras map[string]any) ([]byte, error) {
	knownData, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extras) == 0 {
		return knownData, nil
	}

	merged := make(map[string]any, len(extras))
	for k, v := range extras {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(knownData, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func unmarshalWithExtras(data []byte, known any, knownFields []string) (map[string]any, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range knownFields {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
