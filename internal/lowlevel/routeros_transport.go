package lowlevel

import (
	"context"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// Transport sends a request envelope and returns the response envelope.
type Transport interface {
	Type() domain.TransportType
	Send(ctx context.Context, req RequestEnvelope) (*ResponseEnvelope, error)
}

// TransportSelector chooses between the relay and the direct transport. It holds no state
// besides the two transports.
type TransportSelector struct {
	relay  Transport
	direct Transport
}

func NewTransportSelector(relay, direct Transport) *TransportSelector {
	return &TransportSelector{
		relay:  relay,
		direct: direct,
	}
}

// Select returns the relay transport if useRelay is set, the direct transport otherwise.
func (s *TransportSelector) Select(useRelay bool) Transport {
	if useRelay {
		return s.relay
	}
	return s.direct
}
