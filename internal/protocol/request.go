package protocol

import (
	"encoding/binary"
	"fmt"
)

// RequestTag identifies what a blob-exchange client is asking for. It
// travels as a 4-byte little-endian ordinal at the start of each
// connection.
type RequestTag uint32

const (
	// TagKeymap requests the sharing host's keyboard layout description.
	TagKeymap RequestTag = 0
	// TagConnect is reserved for live-channel negotiation. No producer
	// registers data under it today, so requests for it answer with a
	// zero length like any other absent entry.
	TagConnect RequestTag = 1
)

// RequestTagSize is the on-wire size of an encoded RequestTag.
const RequestTagSize = 4

// ResponseLenSize is the on-wire size of the little-endian payload
// length that precedes every blob response.
const ResponseLenSize = 8

func (t RequestTag) String() string {
	switch t {
	case TagKeymap:
		return "keymap"
	case TagConnect:
		return "connect"
	default:
		return fmt.Sprintf("request(%d)", uint32(t))
	}
}

// EncodeRequestTag returns the 4-byte wire form of a request tag.
func EncodeRequestTag(t RequestTag) [RequestTagSize]byte {
	var buf [RequestTagSize]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(t))
	return buf
}

// ParseRequestTag validates the 4 bytes read from a new connection.
// Ordinals outside the known set are a protocol violation.
func ParseRequestTag(buf []byte) (RequestTag, error) {
	if len(buf) < RequestTagSize {
		return 0, fmt.Errorf("%w: request tag too short (%d bytes)", ErrProtocolViolation, len(buf))
	}
	t := RequestTag(binary.LittleEndian.Uint32(buf[:RequestTagSize]))
	if t > TagConnect {
		return 0, fmt.Errorf("%w: unknown request tag %d", ErrProtocolViolation, uint32(t))
	}
	return t, nil
}
