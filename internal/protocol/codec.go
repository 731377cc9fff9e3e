package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// FrameSize is the length of every event frame regardless of variant.
// Short variants are zero-padded so each datagram carries exactly one
// frame of a known size.
const FrameSize = 21

// ErrProtocolViolation is wrapped by every decode error caused by data
// that does not follow the wire contract (unknown tag, out-of-range
// enumerated field, short frame). Check with errors.Is.
var ErrProtocolViolation = errors.New("protocol violation")

// Encode serializes an event into its fixed 21-byte frame. All integer
// and float fields are little-endian so frames are portable between
// hosts of different architectures.
func Encode(e Event) [FrameSize]byte {
	var buf [FrameSize]byte
	buf[0] = e.Tag()
	switch ev := e.(type) {
	case MouseEvent:
		binary.LittleEndian.PutUint32(buf[1:5], ev.Timestamp)
		binary.LittleEndian.PutUint64(buf[5:13], math.Float64bits(ev.X))
		binary.LittleEndian.PutUint64(buf[13:21], math.Float64bits(ev.Y))
	case ButtonEvent:
		binary.LittleEndian.PutUint32(buf[1:5], ev.Timestamp)
		binary.LittleEndian.PutUint32(buf[5:9], ev.Button)
		buf[9] = uint8(ev.State)
	case AxisEvent:
		binary.LittleEndian.PutUint32(buf[1:5], ev.Timestamp)
		buf[5] = uint8(ev.Axis)
		binary.LittleEndian.PutUint64(buf[6:14], math.Float64bits(ev.Value))
	case KeyEvent:
		binary.LittleEndian.PutUint32(buf[1:5], ev.Timestamp)
		binary.LittleEndian.PutUint32(buf[5:9], ev.Key)
		buf[9] = uint8(ev.State)
	case ModifiersEvent:
		binary.LittleEndian.PutUint32(buf[1:5], ev.Depressed)
		binary.LittleEndian.PutUint32(buf[5:9], ev.Latched)
		binary.LittleEndian.PutUint32(buf[9:13], ev.Locked)
		binary.LittleEndian.PutUint32(buf[13:17], ev.Group)
	}
	return buf
}

// Decode parses one frame back into an event. The buffer must hold at
// least FrameSize bytes; trailing padding is ignored.
func Decode(buf []byte) (Event, error) {
	if len(buf) < FrameSize {
		return nil, fmt.Errorf("%w: frame too short (%d bytes)", ErrProtocolViolation, len(buf))
	}
	switch buf[0] {
	case tagMouse:
		return MouseEvent{
			Timestamp: binary.LittleEndian.Uint32(buf[1:5]),
			X:         math.Float64frombits(binary.LittleEndian.Uint64(buf[5:13])),
			Y:         math.Float64frombits(binary.LittleEndian.Uint64(buf[13:21])),
		}, nil
	case tagButton:
		state, err := buttonState(buf[9])
		if err != nil {
			return nil, err
		}
		return ButtonEvent{
			Timestamp: binary.LittleEndian.Uint32(buf[1:5]),
			Button:    binary.LittleEndian.Uint32(buf[5:9]),
			State:     state,
		}, nil
	case tagAxis:
		if buf[5] > uint8(AxisHorizontal) {
			return nil, fmt.Errorf("%w: invalid axis %d", ErrProtocolViolation, buf[5])
		}
		return AxisEvent{
			Timestamp: binary.LittleEndian.Uint32(buf[1:5]),
			Axis:      Axis(buf[5]),
			Value:     math.Float64frombits(binary.LittleEndian.Uint64(buf[6:14])),
		}, nil
	case tagKey:
		state, err := buttonState(buf[9])
		if err != nil {
			return nil, err
		}
		return KeyEvent{
			Timestamp: binary.LittleEndian.Uint32(buf[1:5]),
			Key:       binary.LittleEndian.Uint32(buf[5:9]),
			State:     KeyState(state),
		}, nil
	case tagModifiers:
		return ModifiersEvent{
			Depressed: binary.LittleEndian.Uint32(buf[1:5]),
			Latched:   binary.LittleEndian.Uint32(buf[5:9]),
			Locked:    binary.LittleEndian.Uint32(buf[9:13]),
			Group:     binary.LittleEndian.Uint32(buf[13:17]),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown event tag %d", ErrProtocolViolation, buf[0])
	}
}

func buttonState(b uint8) (ButtonState, error) {
	if b > uint8(ButtonPressed) {
		return 0, fmt.Errorf("%w: invalid state byte %d", ErrProtocolViolation, b)
	}
	return ButtonState(b), nil
}
