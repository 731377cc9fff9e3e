// Package input connects the wire protocol to the local machine: an
// evdev capture source on the sharing host and a uinput injection sink
// on the receiving host.
package input

import (
	"errors"

	"github.com/edgehop/edgehop/internal/protocol"
)

var (
	// ErrInjectorClosed is returned after Close.
	ErrInjectorClosed = errors.New("injector closed")
	// ErrUnknownButton is returned for button codes the virtual mouse
	// cannot express.
	ErrUnknownButton = errors.New("unknown button code")
)

// Injector turns decoded events into local input. Implementations back
// onto a virtual-input facility of the display stack.
type Injector interface {
	// Move applies relative pointer motion.
	Move(timestamp uint32, dx, dy float64) error

	// Button presses or releases a pointer button (evdev BTN_* code).
	Button(timestamp uint32, button uint32, state protocol.ButtonState) error

	// Scroll applies motion along one scroll axis.
	Scroll(timestamp uint32, axis protocol.Axis, value float64) error

	// Key presses or releases a key (evdev KEY_* code).
	Key(timestamp uint32, key uint32, state protocol.KeyState) error

	// Modifiers applies the remote xkb modifier state.
	Modifiers(depressed, latched, locked, group uint32) error

	// LoadKeymap hands over the remote keyboard layout description
	// fetched at startup.
	LoadKeymap(keymap []byte) error

	Close() error
}

// Dispatch routes one decoded event to the matching injector call.
func Dispatch(inj Injector, e protocol.Event) error {
	switch ev := e.(type) {
	case protocol.MouseEvent:
		return inj.Move(ev.Timestamp, ev.X, ev.Y)
	case protocol.ButtonEvent:
		return inj.Button(ev.Timestamp, ev.Button, ev.State)
	case protocol.AxisEvent:
		return inj.Scroll(ev.Timestamp, ev.Axis, ev.Value)
	case protocol.KeyEvent:
		return inj.Key(ev.Timestamp, ev.Key, ev.State)
	case protocol.ModifiersEvent:
		return inj.Modifiers(ev.Depressed, ev.Latched, ev.Locked, ev.Group)
	default:
		return errors.New("unhandled event type")
	}
}
