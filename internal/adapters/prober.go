package adapters

import (
	"context"
	"fmt"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// IcmpProber checks router reachability with ICMP echo requests.
type IcmpProber struct {
	unprivileged bool
	count        int
	timeout      time.Duration
}

func NewIcmpProber(unprivileged bool) *IcmpProber {
	return &IcmpProber{
		unprivileged: unprivileged,
		count:        1,
		timeout:      2 * time.Second,
	}
}

// Ping returns nil if at least one echo reply was received.
func (p *IcmpProber) Ping(ctx context.Context, host string) error {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return fmt.Errorf("failed to instantiate pinger for %s: %w", host, err)
	}

	pinger.SetPrivileged(!p.unprivileged)
	pinger.Count = p.count
	pinger.Timeout = p.timeout
	if err := pinger.RunWithContext(ctx); err != nil { // blocks until finished
		return fmt.Errorf("failed to ping %s: %w", host, err)
	}

	if stats := pinger.Statistics(); stats.PacketsRecv == 0 {
		return fmt.Errorf("no reply from %s (%d packets sent)", host, stats.PacketsSent)
	}

	return nil
}
