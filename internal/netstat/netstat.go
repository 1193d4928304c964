// Package netstat observes the host connection table for inbound stream peers.
package netstat

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	gnet "github.com/shirou/gopsutil/v4/net"
)

// StatusEstablished is the connection-table status of a live TCP peer.
const StatusEstablished = "ESTABLISHED"

// Endpoint is one side of a connection.
type Endpoint struct {
	IP   string
	Port int
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP, strconv.Itoa(e.Port))
}

// Set reports whether the endpoint carries an address.
func (e Endpoint) Set() bool {
	return strings.TrimSpace(e.IP) != "" && e.Port != 0
}

// Connection is one matching entry from the connection table.
type Connection struct {
	Local  Endpoint
	Remote Endpoint
	Status string
}

// Source lists raw connection-table entries for a protocol kind ("tcp", "tcp4", ...).
type Source func(ctx context.Context, kind string) ([]gnet.ConnectionStat, error)

// Observer filters the connection table down to established peers on one local port.
type Observer struct {
	source Source
}

// NewObserver returns an observer backed by the host connection table.
func NewObserver() *Observer {
	return &Observer{source: gnet.ConnectionsWithContext}
}

// NewObserverWithSource returns an observer reading from source.
func NewObserverWithSource(source Source) *Observer {
	if source == nil {
		source = gnet.ConnectionsWithContext
	}
	return &Observer{source: source}
}

// Poll returns established connections whose local port equals listenPort,
// in connection-table order. Query failures are returned unchanged in kind.
func (o *Observer) Poll(ctx context.Context, protocol string, listenPort int) ([]Connection, error) {
	kind := strings.ToLower(strings.TrimSpace(protocol))
	if kind == "" {
		kind = "tcp"
	}

	stats, err := o.source(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("query %s connection table: %w", kind, err)
	}

	matches := make([]Connection, 0)
	for _, stat := range stats {
		if stat.Status != StatusEstablished {
			continue
		}
		remote := Endpoint{IP: stat.Raddr.IP, Port: int(stat.Raddr.Port)}
		if !remote.Set() {
			continue
		}
		if int(stat.Laddr.Port) != listenPort {
			continue
		}
		matches = append(matches, Connection{
			Local:  Endpoint{IP: stat.Laddr.IP, Port: int(stat.Laddr.Port)},
			Remote: remote,
			Status: stat.Status,
		})
	}
	return matches, nil
}
