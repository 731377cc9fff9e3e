package input

import (
	"fmt"
	"sync"

	"github.com/ThomasT75/uinput"
	"github.com/edgehop/edgehop/internal/logger"
	"github.com/edgehop/edgehop/internal/protocol"
)

// evdev button codes carried on the wire.
const (
	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

// UinputInjector implements Injector using /dev/uinput virtual
// devices. Requires the uinput kernel module and root (or an udev rule
// granting access).
type UinputInjector struct {
	mouse    uinput.Mouse
	keyboard uinput.Keyboard
	mu       sync.Mutex
	closed   bool

	// fractional motion left over after truncating to whole pixels
	fracX float64
	fracY float64

	modifiers protocol.ModifiersEvent
	keymap    []byte
}

// NewUinputInjector creates the virtual mouse and keyboard.
func NewUinputInjector() (*UinputInjector, error) {
	mouse, err := uinput.CreateMouse("/dev/uinput", []byte("Edgehop Virtual Mouse"))
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual mouse: %w", err)
	}

	keyboard, err := uinput.CreateKeyboard("/dev/uinput", []byte("Edgehop Virtual Keyboard"))
	if err != nil {
		_ = mouse.Close()
		return nil, fmt.Errorf("failed to create virtual keyboard: %w", err)
	}

	return &UinputInjector{mouse: mouse, keyboard: keyboard}, nil
}

func (h *UinputInjector) Move(_ uint32, dx, dy float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrInjectorClosed
	}

	// uinput moves in whole pixels; carry the remainder so slow
	// diagonal motion doesn't stall.
	dx += h.fracX
	dy += h.fracY
	wholeX, wholeY := int32(dx), int32(dy)
	h.fracX = dx - float64(wholeX)
	h.fracY = dy - float64(wholeY)

	if wholeX == 0 && wholeY == 0 {
		return nil
	}
	return h.mouse.Move(wholeX, wholeY)
}

func (h *UinputInjector) Button(_ uint32, button uint32, state protocol.ButtonState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrInjectorClosed
	}

	pressed := state == protocol.ButtonPressed
	switch button {
	case btnLeft:
		if pressed {
			return h.mouse.LeftPress()
		}
		return h.mouse.LeftRelease()
	case btnRight:
		if pressed {
			return h.mouse.RightPress()
		}
		return h.mouse.RightRelease()
	case btnMiddle:
		if pressed {
			return h.mouse.MiddlePress()
		}
		return h.mouse.MiddleRelease()
	default:
		return fmt.Errorf("%w: %#x", ErrUnknownButton, button)
	}
}

func (h *UinputInjector) Scroll(_ uint32, axis protocol.Axis, value float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrInjectorClosed
	}

	// Wire values are wayland-style axis lengths; the wheel wants
	// notches with up/left positive.
	notches := int32(value)
	if notches == 0 {
		if value > 0 {
			notches = 1
		} else if value < 0 {
			notches = -1
		} else {
			return nil
		}
	}
	return h.mouse.Wheel(axis == protocol.AxisHorizontal, -notches)
}

func (h *UinputInjector) Key(_ uint32, key uint32, state protocol.KeyState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrInjectorClosed
	}

	if state == protocol.KeyPressed {
		return h.keyboard.KeyDown(int(key))
	}
	return h.keyboard.KeyUp(int(key))
}

// Modifiers records the remote xkb state. uinput synthesizes modifier
// state from the individual key events, so the explicit state is kept
// only for diagnostics.
func (h *UinputInjector) Modifiers(depressed, latched, locked, group uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrInjectorClosed
	}

	h.modifiers = protocol.ModifiersEvent{
		Depressed: depressed,
		Latched:   latched,
		Locked:    locked,
		Group:     group,
	}
	logger.Debugf("Remote modifier state: depressed=%#x latched=%#x locked=%#x group=%d",
		depressed, latched, locked, group)
	return nil
}

// LoadKeymap keeps the remote layout description. The virtual keyboard
// emits raw key codes, so the keymap is informational here; it is the
// hook a compositor-level injector would feed into xkb.
func (h *UinputInjector) LoadKeymap(keymap []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrInjectorClosed
	}

	h.keymap = keymap
	logger.Infof("Loaded remote keymap (%d bytes)", len(keymap))
	return nil
}

func (h *UinputInjector) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	var err error
	if h.mouse != nil {
		err = h.mouse.Close()
	}
	if h.keyboard != nil {
		if e := h.keyboard.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
