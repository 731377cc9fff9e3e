package network

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/edgehop/edgehop/internal/config"
	"github.com/edgehop/edgehop/internal/protocol"
)

func newTestChannel(t *testing.T, peers map[config.Direction]*net.UDPAddr) *EventChannel {
	t.Helper()
	ch, err := NewEventChannel(0, peers)
	if err != nil {
		t.Fatalf("NewEventChannel() error = %v", err)
	}
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func channelAddr(t *testing.T, ch *EventChannel) *net.UDPAddr {
	t.Helper()
	port := ch.LocalAddr().(*net.UDPAddr).Port
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}

func TestEventChannelSendReceive(t *testing.T) {
	receiver := newTestChannel(t, nil)
	sender := newTestChannel(t, map[config.Direction]*net.UDPAddr{
		config.Right: channelAddr(t, receiver),
	})

	want := protocol.MouseEvent{Timestamp: 100, X: 1.5, Y: -2.25}
	if err := sender.Send(config.Right, want); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	_ = receiver.SetReadDeadline(time.Now().Add(time.Second))
	got, err := receiver.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if got != want {
		t.Errorf("Receive() = %+v, want %+v", got, want)
	}
}

func TestEventChannelSendUnconfiguredDirection(t *testing.T) {
	sender := newTestChannel(t, nil)

	// No peer for any direction: sends must be silent no-ops.
	err := sender.Send(config.Left, protocol.KeyEvent{Timestamp: 1, Key: 30, State: protocol.KeyPressed})
	if err != nil {
		t.Errorf("Send() to unconfigured direction error = %v, want nil", err)
	}
}

func TestEventChannelReceiveTimeout(t *testing.T) {
	receiver := newTestChannel(t, nil)

	_ = receiver.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
	event, err := receiver.Receive()
	if err != nil {
		t.Fatalf("Receive() after deadline error = %v, want nil", err)
	}
	if event != nil {
		t.Errorf("Receive() after deadline = %+v, want nil", event)
	}
}

func TestEventChannelDropsMalformedFrame(t *testing.T) {
	receiver := newTestChannel(t, nil)
	addr := channelAddr(t, receiver)

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = conn.Close() }()

	// Frame with an unknown tag, then a valid one. The bad frame is
	// dropped without surfacing an error; the good one comes through.
	bad := make([]byte, protocol.FrameSize)
	bad[0] = 99
	if _, err := conn.Write(bad); err != nil {
		t.Fatal(err)
	}
	good := protocol.Encode(protocol.ButtonEvent{Timestamp: 7, Button: 272, State: protocol.ButtonPressed})
	if _, err := conn.Write(good[:]); err != nil {
		t.Fatal(err)
	}

	_ = receiver.SetReadDeadline(time.Now().Add(time.Second))
	event, err := receiver.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if event != nil {
		t.Fatalf("Receive() of malformed frame = %+v, want nil", event)
	}

	_ = receiver.SetReadDeadline(time.Now().Add(time.Second))
	event, err = receiver.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	button, ok := event.(protocol.ButtonEvent)
	if !ok || button.Button != 272 || button.State != protocol.ButtonPressed {
		t.Errorf("Receive() = %+v, want button 272 pressed", event)
	}
}

func TestEventChannelSetPeer(t *testing.T) {
	receiver := newTestChannel(t, nil)
	sender := newTestChannel(t, nil)

	addr := channelAddr(t, receiver)
	sender.SetPeer(config.Bottom, addr)
	if got := sender.Peer(config.Bottom); got != addr {
		t.Errorf("Peer() = %v, want %v", got, addr)
	}

	sender.SetPeer(config.Bottom, nil)
	if got := sender.Peer(config.Bottom); got != nil {
		t.Errorf("Peer() after clear = %v, want nil", got)
	}
}

func TestEventChannelCloseUnblocksReceive(t *testing.T) {
	receiver := newTestChannel(t, nil)

	done := make(chan error, 1)
	go func() {
		_, err := receiver.Receive()
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	_ = receiver.Close()

	select {
	case err := <-done:
		if !errors.Is(err, net.ErrClosed) {
			t.Errorf("Receive() after Close error = %v, want net.ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Error("Receive() did not unblock after Close")
	}
}
