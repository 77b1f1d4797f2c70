package wgcontroller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/h44z/wg-portal-routeros/internal/domain"
	"github.com/h44z/wg-portal-routeros/internal/lowlevel"
)

// operation names, used for logging, notifications and metrics
const (
	OpListInterfaces  = "list_interfaces"
	OpCreateInterface = "create_interface"
	OpUpdateInterface = "update_interface"
	OpDeleteInterface = "delete_interface"
	OpListPeers       = "list_peers"
	OpCreatePeer      = "create_peer"
	OpUpdatePeer      = "update_peer"
	OpDeletePeer      = "delete_peer"
	OpTestConnection  = "test_connection"
)

const (
	pathInterfaces = "/interface/wireguard"
	pathPeers      = "/interface/wireguard/peers"
	pathResource   = "/system/resource"
)

// RouterCall is a single REST call against the router.
type RouterCall struct {
	Operation string
	Method    string
	Command   string
	Options   *lowlevel.RequestOptions
	Body      any

	// Decode consumes a successful response. If it fails, the call is reported as parse error.
	Decode func(resp *lowlevel.ResponseEnvelope) error
}

// CallExecutor performs a router call and reports its classified outcome.
type CallExecutor interface {
	Execute(ctx context.Context, call RouterCall) domain.Outcome
}

// RouterOsController offers the WireGuard operations of a RouterOS device.
type RouterOsController struct {
	exec CallExecutor
}

func NewRouterOsController(exec CallExecutor) *RouterOsController {
	return &RouterOsController{exec: exec}
}

// region interfaces

func (c *RouterOsController) ListInterfaces(ctx context.Context) ([]domain.WireguardInterface, domain.Outcome) {
	var interfaces []domain.WireguardInterface
	outcome := c.exec.Execute(ctx, RouterCall{
		Operation: OpListInterfaces,
		Method:    http.MethodGet,
		Command:   pathInterfaces,
		Decode: func(resp *lowlevel.ResponseEnvelope) error {
			records, err := resp.Records()
			if err != nil {
				return err
			}
			interfaces = make([]domain.WireguardInterface, 0, len(records))
			for _, record := range records {
				interfaces = append(interfaces, ToInterface(record))
			}
			return nil
		},
	})
	if !outcome.Success() {
		return nil, outcome
	}
	return interfaces, outcome
}

func (c *RouterOsController) CreateInterface(
	ctx context.Context,
	form domain.InterfaceFormData,
) (*domain.WireguardInterface, domain.Outcome) {
	return c.writeInterface(ctx, OpCreateInterface, http.MethodPut, pathInterfaces, form)
}

func (c *RouterOsController) UpdateInterface(
	ctx context.Context,
	id string,
	form domain.InterfaceFormData,
) (*domain.WireguardInterface, domain.Outcome) {
	return c.writeInterface(ctx, OpUpdateInterface, http.MethodPatch, pathInterfaces+"/"+id, form)
}

func (c *RouterOsController) writeInterface(
	ctx context.Context,
	operation, method, command string,
	form domain.InterfaceFormData,
) (*domain.WireguardInterface, domain.Outcome) {
	var iface *domain.WireguardInterface
	outcome := c.exec.Execute(ctx, RouterCall{
		Operation: operation,
		Method:    method,
		Command:   command,
		Body:      FromInterfaceFormForWrite(form),
		Decode: func(resp *lowlevel.ResponseEnvelope) error {
			if resp.Body.IsEmpty() {
				return nil
			}
			record, err := resp.Record()
			if err != nil {
				return err
			}
			mapped := ToInterface(record)
			iface = &mapped
			return nil
		},
	})
	if !outcome.Success() {
		return nil, outcome
	}
	return iface, outcome
}

func (c *RouterOsController) DeleteInterface(ctx context.Context, id string) domain.Outcome {
	return c.exec.Execute(ctx, RouterCall{
		Operation: OpDeleteInterface,
		Method:    http.MethodDelete,
		Command:   pathInterfaces + "/" + id,
	})
}

// endregion interfaces

// region peers

// ListPeers returns all peers. If interfaceName is not empty, only peers of that interface are returned.
func (c *RouterOsController) ListPeers(
	ctx context.Context,
	interfaceName string,
) ([]domain.WireguardPeer, domain.Outcome) {
	var peers []domain.WireguardPeer
	outcome := c.exec.Execute(ctx, RouterCall{
		Operation: OpListPeers,
		Method:    http.MethodGet,
		Command:   pathPeers,
		Decode: func(resp *lowlevel.ResponseEnvelope) error {
			records, err := resp.Records()
			if err != nil {
				return err
			}
			peers = make([]domain.WireguardPeer, 0, len(records))
			for _, record := range records {
				peer := ToPeer(record)
				if interfaceName != "" && peer.Interface != interfaceName {
					continue
				}
				peers = append(peers, peer)
			}
			return nil
		},
	})
	if !outcome.Success() {
		return nil, outcome
	}
	return peers, outcome
}

func (c *RouterOsController) CreatePeer(
	ctx context.Context,
	form domain.PeerFormData,
) (*domain.WireguardPeer, domain.Outcome) {
	return c.writePeer(ctx, OpCreatePeer, http.MethodPut, pathPeers, form)
}

func (c *RouterOsController) UpdatePeer(
	ctx context.Context,
	id string,
	form domain.PeerFormData,
) (*domain.WireguardPeer, domain.Outcome) {
	return c.writePeer(ctx, OpUpdatePeer, http.MethodPatch, pathPeers+"/"+id, form)
}

func (c *RouterOsController) writePeer(
	ctx context.Context,
	operation, method, command string,
	form domain.PeerFormData,
) (*domain.WireguardPeer, domain.Outcome) {
	var peer *domain.WireguardPeer
	outcome := c.exec.Execute(ctx, RouterCall{
		Operation: operation,
		Method:    method,
		Command:   command,
		Body:      FromPeerFormForWrite(form),
		Decode: func(resp *lowlevel.ResponseEnvelope) error {
			if resp.Body.IsEmpty() {
				return nil
			}
			record, err := resp.Record()
			if err != nil {
				return err
			}
			mapped := ToPeer(record)
			peer = &mapped
			return nil
		},
	})
	if !outcome.Success() {
		return nil, outcome
	}
	return peer, outcome
}

func (c *RouterOsController) DeletePeer(ctx context.Context, id string) domain.Outcome {
	return c.exec.Execute(ctx, RouterCall{
		Operation: OpDeletePeer,
		Method:    http.MethodDelete,
		Command:   pathPeers + "/" + id,
	})
}

// endregion peers

// region system

// SystemResource is the subset of /system/resource shown after a connection test.
type SystemResource struct {
	Version      string `json:"version"`
	BoardName    string `json:"boardName"`
	Architecture string `json:"architecture"`
	Uptime       string `json:"uptime"`
	CpuLoad      string `json:"cpuLoad"`
}

func (r SystemResource) String() string {
	return fmt.Sprintf("RouterOS %s on %s (%s), uptime %s", r.Version, r.BoardName, r.Architecture, r.Uptime)
}

// TestConnection queries the system resource endpoint. It is used to validate credentials and reachability.
func (c *RouterOsController) TestConnection(ctx context.Context) (*SystemResource, domain.Outcome) {
	var resource *SystemResource
	outcome := c.exec.Execute(ctx, RouterCall{
		Operation: OpTestConnection,
		Method:    http.MethodGet,
		Command:   pathResource,
		Decode: func(resp *lowlevel.ResponseEnvelope) error {
			if !resp.Body.IsJson() {
				return nil // reachability is all that counts
			}
			record, err := resp.Record()
			if err != nil {
				return nil
			}
			resource = &SystemResource{
				Version:      record.GetString("version"),
				BoardName:    record.GetString("board-name"),
				Architecture: record.GetString("architecture-name"),
				Uptime:       record.GetString("uptime"),
				CpuLoad:      record.GetString("cpu-load"),
			}
			return nil
		},
	})
	if !outcome.Success() {
		return nil, outcome
	}
	return resource, outcome
}

// endregion system
