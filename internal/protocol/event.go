// Package protocol defines the wire format shared by both hosts: the
// fixed-size event frames carried over UDP and the request/response
// exchange used to pull blobs such as the keyboard layout.
package protocol

// ButtonState reports whether a pointer button is down or up.
type ButtonState uint8

const (
	ButtonReleased ButtonState = 0
	ButtonPressed  ButtonState = 1
)

// KeyState reports whether a key is down or up.
type KeyState uint8

const (
	KeyReleased KeyState = 0
	KeyPressed  KeyState = 1
)

// Axis identifies a scroll axis.
type Axis uint8

const (
	AxisVertical   Axis = 0
	AxisHorizontal Axis = 1
)

// Event is one input occurrence travelling between hosts. Exactly one
// concrete type implements each frame tag.
type Event interface {
	// Tag returns the frame discriminant written at byte 0.
	Tag() uint8
}

// MouseEvent is relative pointer motion.
type MouseEvent struct {
	Timestamp uint32
	X         float64
	Y         float64
}

// ButtonEvent is a pointer button press or release.
type ButtonEvent struct {
	Timestamp uint32
	Button    uint32
	State     ButtonState
}

// AxisEvent is scroll motion along one axis.
type AxisEvent struct {
	Timestamp uint32
	Axis      Axis
	Value     float64
}

// KeyEvent is a key press or release.
type KeyEvent struct {
	Timestamp uint32
	Key       uint32
	State     KeyState
}

// ModifiersEvent is the full xkb modifier state, sent whenever it changes.
type ModifiersEvent struct {
	Depressed uint32
	Latched   uint32
	Locked    uint32
	Group     uint32
}

const (
	tagMouse     uint8 = 0
	tagButton    uint8 = 1
	tagAxis      uint8 = 2
	tagKey       uint8 = 3
	tagModifiers uint8 = 4
)

func (MouseEvent) Tag() uint8     { return tagMouse }
func (ButtonEvent) Tag() uint8    { return tagButton }
func (AxisEvent) Tag() uint8      { return tagAxis }
func (KeyEvent) Tag() uint8       { return tagKey }
func (ModifiersEvent) Tag() uint8 { return tagModifiers }
