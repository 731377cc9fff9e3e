package network

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/edgehop/edgehop/internal/config"
	"github.com/edgehop/edgehop/internal/logger"
	"github.com/edgehop/edgehop/internal/protocol"
)

// EventChannel owns the one UDP socket used for all live input
// traffic, in both directions. Frames are fire-and-forget: no acks, no
// sequencing, no retransmission. Lost or reordered input is accepted.
type EventChannel struct {
	conn  *net.UDPConn
	mu    sync.RWMutex
	peers map[config.Direction]*net.UDPAddr
}

// NewEventChannel binds 0.0.0.0:port and remembers the resolved peers.
// Binding failure is returned to the caller, which decides fatality.
func NewEventChannel(port int, peers map[config.Direction]*net.UDPAddr) (*EventChannel, error) {
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", port)
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to bind event socket: %w", err)
	}

	if peers == nil {
		peers = make(map[config.Direction]*net.UDPAddr)
	}
	return &EventChannel{conn: conn, peers: peers}, nil
}

// SetPeer installs or replaces the peer for a direction. A nil address
// makes the direction inert again.
func (c *EventChannel) SetPeer(dir config.Direction, addr *net.UDPAddr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if addr == nil {
		delete(c.peers, dir)
		return
	}
	c.peers[dir] = addr
}

// Peer returns the resolved address for a direction, nil if inert.
func (c *EventChannel) Peer(dir config.Direction) *net.UDPAddr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.peers[dir]
}

// Send encodes the event and transmits one datagram toward the given
// direction. Directions without a configured peer drop the event.
func (c *EventChannel) Send(dir config.Direction, e protocol.Event) error {
	c.mu.RLock()
	addr := c.peers[dir]
	c.mu.RUnlock()

	if addr == nil {
		logger.Debugf("No %s peer configured, dropping event", dir)
		return nil
	}

	buf := protocol.Encode(e)
	if _, err := c.conn.WriteToUDP(buf[:], addr); err != nil {
		return fmt.Errorf("failed to send event to %s: %w", addr, err)
	}
	return nil
}

// Receive blocks for one datagram and decodes it. A nil event with a
// nil error means "no event this cycle": a timeout from a deadline set
// via SetReadDeadline, or a malformed frame (logged, then dropped).
// A closed socket returns net.ErrClosed so the caller's loop can end.
func (c *EventChannel) Receive() (protocol.Event, error) {
	buf := make([]byte, protocol.FrameSize)
	n, src, err := c.conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, net.ErrClosed
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, nil
		}
		logger.Warnf("Receive failed: %v", err)
		return nil, nil
	}

	event, err := protocol.Decode(buf[:n])
	if err != nil {
		logger.Warnf("Dropping frame from %s: %v", src, err)
		return nil, nil
	}
	return event, nil
}

// SetReadDeadline bounds the next Receive call.
func (c *EventChannel) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// LocalAddr reports the bound address, mainly for logging and tests.
func (c *EventChannel) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Close releases the socket and unblocks a pending Receive.
func (c *EventChannel) Close() error {
	return c.conn.Close()
}
