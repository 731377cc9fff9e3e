package network

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/edgehop/edgehop/internal/protocol"
)

// maxBlobSize caps what RequestBlob will buffer from a peer. Keyboard
// layout descriptions are tens of kilobytes; anything near this limit
// is a corrupt or hostile response.
const maxBlobSize = 16 << 20

// RequestBlob pulls the blob registered under tag on the remote host.
// A nil slice with a nil error means the server holds nothing for that
// tag. Every I/O failure is surfaced; nothing is swallowed on this
// path since the caller explicitly asked for the data.
func RequestBlob(ctx context.Context, addr string, tag protocol.RequestTag) ([]byte, error) {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(connDeadline))
	}

	req := protocol.EncodeRequestTag(tag)
	if _, err := conn.Write(req[:]); err != nil {
		return nil, fmt.Errorf("failed to write %s request: %w", tag, err)
	}

	lenBuf := make([]byte, protocol.ResponseLenSize)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return nil, fmt.Errorf("failed to read response length: %w", err)
	}

	length := binary.LittleEndian.Uint64(lenBuf)
	if length == 0 {
		// Not found / bad request as signaled by the server.
		return nil, nil
	}
	if length > maxBlobSize {
		return nil, fmt.Errorf("%w: response length %d exceeds limit", protocol.ErrProtocolViolation, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(conn, data); err != nil {
		return nil, fmt.Errorf("failed to read %s payload: %w", tag, err)
	}
	return data, nil
}
