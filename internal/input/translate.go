package input

import (
	evdev "github.com/gvalkov/golang-evdev"

	"github.com/edgehop/edgehop/internal/protocol"
)

// translateButton maps an evdev pointer-button event to a wire event.
// The raw BTN_* code travels unchanged; peers share the evdev code
// space. Autorepeat values are dropped.
func translateButton(timestamp uint32, code uint16, value int32) (protocol.Event, bool) {
	if code < evdev.BTN_MOUSE || code > evdev.BTN_TASK {
		return nil, false
	}
	state, ok := pressState(value)
	if !ok {
		return nil, false
	}
	return protocol.ButtonEvent{
		Timestamp: timestamp,
		Button:    uint32(code),
		State:     state,
	}, true
}

// translateKey maps an evdev key event to a wire event.
func translateKey(timestamp uint32, code uint16, value int32) (protocol.Event, bool) {
	state, ok := pressState(value)
	if !ok {
		return nil, false
	}
	return protocol.KeyEvent{
		Timestamp: timestamp,
		Key:       uint32(code),
		State:     protocol.KeyState(state),
	}, true
}

// translateWheel maps a wheel notch to an axis event. Evdev counts
// wheel-up as positive while the wire follows the wayland convention
// of positive-toward-the-user, hence the sign flip.
func translateWheel(timestamp uint32, code uint16, value int32) (protocol.Event, bool) {
	var axis protocol.Axis
	switch code {
	case evdev.REL_WHEEL:
		axis = protocol.AxisVertical
	case evdev.REL_HWHEEL:
		axis = protocol.AxisHorizontal
	default:
		return nil, false
	}
	return protocol.AxisEvent{
		Timestamp: timestamp,
		Axis:      axis,
		Value:     -float64(value),
	}, true
}

func pressState(value int32) (protocol.ButtonState, bool) {
	switch value {
	case 0:
		return protocol.ButtonReleased, true
	case 1:
		return protocol.ButtonPressed, true
	default:
		// 2 is autorepeat; the receiving side synthesizes its own.
		return 0, false
	}
}
