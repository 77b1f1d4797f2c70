package wgcontroller

import (
	"strconv"

	"github.com/h44z/wg-portal-routeros/internal/domain"
	"github.com/h44z/wg-portal-routeros/internal/lowlevel"
)

// wire field names of the RouterOS REST API
const (
	wireId                  = ".id"
	wireName                = "name"
	wireInterface           = "interface"
	wirePublicKey           = "public-key"
	wirePrivateKey          = "private-key"
	wirePresharedKey        = "preshared-key"
	wireAllowedAddress      = "allowed-address"
	wireEndpointAddress     = "endpoint-address"
	wireEndpointPort        = "endpoint-port"
	wireListenPort          = "listen-port"
	wireMtu                 = "mtu"
	wireRunning             = "running"
	wireDisabled            = "disabled"
	wirePersistentKeepalive = "persistent-keepalive"
)

var interfaceWireFields = []string{
	wireId, wireName, wireListenPort, wireMtu, wirePrivateKey, wirePublicKey, wireRunning, wireDisabled,
}

var peerWireFields = []string{
	wireId, wireName, wireInterface, wireAllowedAddress, wireEndpointAddress, wireEndpointPort, wirePublicKey,
	wirePresharedKey, wirePersistentKeepalive, wireDisabled,
}

// ToInterface converts a wire record. Fields without mapping are kept in Extra under their wire name.
func ToInterface(record lowlevel.GenericJsonObject) domain.WireguardInterface {
	return domain.WireguardInterface{
		Id:         record.GetString(wireId),
		Name:       record.GetString(wireName),
		ListenPort: record.GetString(wireListenPort),
		Mtu:        record.GetString(wireMtu),
		PrivateKey: record.GetString(wirePrivateKey),
		PublicKey:  record.GetString(wirePublicKey),
		Running:    record.GetBoolOrString(wireRunning),
		Disabled:   record.GetBoolOrString(wireDisabled),
		Extra:      record.Without(interfaceWireFields...),
	}
}

// ToPeer converts a wire record. Fields without mapping are kept in Extra under their wire name.
func ToPeer(record lowlevel.GenericJsonObject) domain.WireguardPeer {
	return domain.WireguardPeer{
		Id:                  record.GetString(wireId),
		Name:                record.GetString(wireName),
		Interface:           record.GetString(wireInterface),
		AllowedAddress:      record.GetString(wireAllowedAddress),
		Endpoint:            record.GetString(wireEndpointAddress),
		EndpointPort:        record.GetString(wireEndpointPort),
		PublicKey:           record.GetString(wirePublicKey),
		PresharedKey:        record.GetString(wirePresharedKey),
		PersistentKeepalive: record.GetString(wirePersistentKeepalive),
		Disabled:            record.GetBoolOrString(wireDisabled),
		Extra:               record.Without(peerWireFields...),
	}
}

// FromInterfaceFormForWrite builds the wire record sent on create and update.
// The public key is derived by the router and therefore never written.
func FromInterfaceFormForWrite(form domain.InterfaceFormData) lowlevel.GenericJsonObject {
	record := lowlevel.GenericJsonObject{
		wireName:     form.Name,
		wireDisabled: strconv.FormatBool(form.Disabled),
	}
	setIfNotEmpty(record, wireListenPort, form.ListenPort)
	setIfNotEmpty(record, wireMtu, form.Mtu)
	setIfNotEmpty(record, wirePrivateKey, form.PrivateKey)

	return record
}

// FromPeerFormForWrite builds the wire record sent on create and update.
// Optional attributes are only written if they are set, the private key is never written.
func FromPeerFormForWrite(form domain.PeerFormData) lowlevel.GenericJsonObject {
	record := lowlevel.GenericJsonObject{
		wireName:            form.Name,
		wireInterface:       form.Interface,
		wireAllowedAddress:  form.AllowedAddress,
		wireEndpointAddress: form.Endpoint,
		wireEndpointPort:    form.EndpointPort,
		wirePublicKey:       form.PublicKey,
		wireDisabled:        strconv.FormatBool(form.Disabled),
	}
	setIfNotEmpty(record, wirePresharedKey, form.PresharedKey)
	setIfNotEmpty(record, wirePersistentKeepalive, form.PersistentKeepalive)

	return record
}

func setIfNotEmpty(record lowlevel.GenericJsonObject, key, value string) {
	if value != "" {
		record[key] = value
	}
}
