package network

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/edgehop/edgehop/internal/logger"
	"github.com/edgehop/edgehop/internal/protocol"
)

// connDeadline bounds each side of a blob exchange so a stalled peer
// cannot pin a handler goroutine forever.
const connDeadline = 10 * time.Second

// BlobServer serves registered blobs over TCP. A connection carries
// exactly one request: 4-byte tag in, 8-byte little-endian length plus
// payload out (zero length when the tag has no data). Each accepted
// connection gets its own goroutine; the store is the only shared
// state and a RWMutex guards it.
type BlobServer struct {
	port     int
	listener net.Listener
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu   sync.RWMutex
	data map[protocol.RequestTag][]byte
}

// NewBlobServer creates a server; Start binds and begins accepting.
func NewBlobServer(port int) *BlobServer {
	return &BlobServer{
		port: port,
		stop: make(chan struct{}),
		data: make(map[protocol.RequestTag][]byte),
	}
}

// Start begins listening for connections
func (s *BlobServer) Start(ctx context.Context) error {
	if s.port < 0 || s.port > 65535 {
		return fmt.Errorf("invalid port: %d", s.port)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop closes the listener, which unblocks the accept loop, and waits
// for in-flight handlers to finish.
func (s *BlobServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.wg.Wait()
	})
}

// Address returns the listening address, "" before Start.
func (s *BlobServer) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// OfferData installs or replaces the blob served for a tag. The bytes
// are copied so the caller may reuse its buffer.
func (s *BlobServer) OfferData(tag protocol.RequestTag, data []byte) {
	blob := make([]byte, len(data))
	copy(blob, data)

	s.mu.Lock()
	s.data[tag] = blob
	s.mu.Unlock()
}

func (s *BlobServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stop:
				return
			default:
				logger.Warnf("Accept failed: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { _ = conn.Close() }()
			s.handleRequest(conn)
		}()
	}
}

// handleRequest services a single connection: ReadTag, Lookup, then
// WriteLengthAndPayload. Errors abort this connection only.
func (s *BlobServer) handleRequest(conn net.Conn) {
	_ = conn.SetDeadline(time.Now().Add(connDeadline))

	tagBuf := make([]byte, protocol.RequestTagSize)
	if _, err := io.ReadFull(conn, tagBuf); err != nil {
		logger.Warnf("Failed to read request from %s: %v", conn.RemoteAddr(), err)
		return
	}

	tag, err := protocol.ParseRequestTag(tagBuf)
	if err != nil {
		// Bad request: drop the connection without replying.
		logger.Warnf("Bad request from %s: %v", conn.RemoteAddr(), err)
		return
	}

	s.mu.RLock()
	blob, ok := s.data[tag]
	s.mu.RUnlock()

	lenBuf := make([]byte, protocol.ResponseLenSize)
	if !ok {
		// Zero length signals "no data for this tag".
		if _, err := conn.Write(lenBuf); err != nil {
			logger.Warnf("Failed to answer %s request from %s: %v", tag, conn.RemoteAddr(), err)
		}
		return
	}

	binary.LittleEndian.PutUint64(lenBuf, uint64(len(blob)))
	if _, err := conn.Write(lenBuf); err != nil {
		logger.Warnf("Failed to write length to %s: %v", conn.RemoteAddr(), err)
		return
	}
	if _, err := conn.Write(blob); err != nil {
		logger.Warnf("Failed to write %s payload to %s: %v", tag, conn.RemoteAddr(), err)
		return
	}
	logger.Debugf("Served %s (%d bytes) to %s", tag, len(blob), conn.RemoteAddr())
}
