// Package network carries input events between hosts: a shared UDP
// socket for event frames and a TCP request/response exchange for
// blobs such as the keyboard layout.
package network

import (
	"context"
	"fmt"
	"net"

	"github.com/edgehop/edgehop/internal/config"
	"github.com/edgehop/edgehop/internal/logger"
)

// ConfigError marks a peer entry that can never resolve: neither a
// literal IP nor a hostname is present. This is a launch precondition
// failure, not a runtime one.
type ConfigError struct {
	Direction config.Direction
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("peer %q: either ip or host_name must be specified", e.Direction)
}

// ResolutionError marks a hostname that failed to resolve. Callers may
// skip the direction and keep going.
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("couldn't resolve %q: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ResolvePeer turns one configured peer into a concrete UDP address.
// A nil peer means the direction is inert and resolves to nil without
// error. A literal IP wins over a hostname; hostnames go through the
// system resolver and the first returned address is used.
func ResolvePeer(ctx context.Context, dir config.Direction, peer *config.Peer) (*net.UDPAddr, error) {
	if peer == nil {
		return nil, nil
	}

	port := peer.Port
	if port == 0 {
		port = config.DefaultPort
	}

	if peer.IP != "" {
		ip := net.ParseIP(peer.IP)
		if ip == nil {
			return nil, &ResolutionError{Host: peer.IP, Err: fmt.Errorf("invalid literal IP")}
		}
		return &net.UDPAddr{IP: ip, Port: port}, nil
	}

	if peer.HostName == "" {
		return nil, &ConfigError{Direction: dir}
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, peer.HostName)
	if err != nil {
		return nil, &ResolutionError{Host: peer.HostName, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &ResolutionError{Host: peer.HostName, Err: fmt.Errorf("no addresses returned")}
	}
	return &net.UDPAddr{IP: addrs[0].IP, Port: port, Zone: addrs[0].Zone}, nil
}

// ResolveAll resolves every configured direction. Misconfigured
// directions (neither ip nor host_name) fail the whole call; lookup
// failures are logged and the direction is skipped.
func ResolveAll(ctx context.Context, cfg *config.Config) (map[config.Direction]*net.UDPAddr, error) {
	peers := make(map[config.Direction]*net.UDPAddr)
	for _, dir := range config.Directions {
		addr, err := ResolvePeer(ctx, dir, cfg.Peer(dir))
		if err != nil {
			if resErr, ok := err.(*ResolutionError); ok {
				logger.Warnf("Skipping %s peer: %v", dir, resErr)
				continue
			}
			return nil, err
		}
		if addr != nil {
			peers[dir] = addr
			logger.Infof("Resolved %s peer: %s", dir, addr)
		}
	}
	return peers, nil
}
