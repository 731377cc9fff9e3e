package protocol

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestEncodeFrameSize(t *testing.T) {
	events := []Event{
		MouseEvent{Timestamp: 1, X: 2.5, Y: -3.5},
		ButtonEvent{Timestamp: 2, Button: 0x110, State: ButtonPressed},
		AxisEvent{Timestamp: 3, Axis: AxisHorizontal, Value: 15},
		KeyEvent{Timestamp: 4, Key: 30, State: KeyReleased},
		ModifiersEvent{Depressed: 5, Latched: 6, Locked: 7, Group: 8},
	}

	for _, e := range events {
		buf := Encode(e)
		if len(buf) != FrameSize {
			t.Errorf("Encode(%T) produced %d bytes, want %d", e, len(buf), FrameSize)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{"mouse", MouseEvent{Timestamp: 100, X: 1.5, Y: -2.25}},
		{"mouse zero", MouseEvent{Timestamp: 0, X: 0.0, Y: 0.0}},
		{"mouse negative zero", MouseEvent{Timestamp: 1, X: math.Copysign(0, -1), Y: 0.0}},
		{"button pressed", ButtonEvent{Timestamp: 7, Button: 272, State: ButtonPressed}},
		{"button released", ButtonEvent{Timestamp: 8, Button: 273, State: ButtonReleased}},
		{"axis vertical", AxisEvent{Timestamp: 9, Axis: AxisVertical, Value: -1.0}},
		{"axis horizontal", AxisEvent{Timestamp: 10, Axis: AxisHorizontal, Value: 0.125}},
		{"key pressed", KeyEvent{Timestamp: 11, Key: 30, State: KeyPressed}},
		{"key released", KeyEvent{Timestamp: 12, Key: 0xFFFFFFFF, State: KeyReleased}},
		{"modifiers", ModifiersEvent{Depressed: 1, Latched: 2, Locked: 4, Group: 1}},
		{"modifiers max", ModifiersEvent{Depressed: math.MaxUint32, Latched: 0, Locked: 0, Group: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Encode(tt.event)
			decoded, err := Decode(buf[:])
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if decoded != tt.event {
				t.Errorf("round trip mismatch: got %+v, want %+v", decoded, tt.event)
			}
		})
	}
}

// Negative zero must survive with its bit pattern intact, which the
// == comparison above would not catch.
func TestRoundTripNegativeZeroBits(t *testing.T) {
	buf := Encode(MouseEvent{Timestamp: 1, X: math.Copysign(0, -1), Y: 0})
	decoded, err := Decode(buf[:])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	mouse := decoded.(MouseEvent)
	if math.Float64bits(mouse.X) != math.Float64bits(math.Copysign(0, -1)) {
		t.Errorf("negative zero bit pattern lost: got %#x", math.Float64bits(mouse.X))
	}
	if math.Float64bits(mouse.Y) != 0 {
		t.Errorf("positive zero bit pattern lost: got %#x", math.Float64bits(mouse.Y))
	}
}

// The exact byte layout is the wire contract with remote hosts, so it
// is pinned down explicitly rather than only via round trips.
func TestWireLayout(t *testing.T) {
	t.Run("mouse", func(t *testing.T) {
		buf := Encode(MouseEvent{Timestamp: 0x01020304, X: 1.5, Y: -2.25})
		if buf[0] != 0 {
			t.Errorf("tag = %d, want 0", buf[0])
		}
		if got := binary.LittleEndian.Uint32(buf[1:5]); got != 0x01020304 {
			t.Errorf("timestamp bytes = %#x, want 0x01020304", got)
		}
		if got := binary.LittleEndian.Uint64(buf[5:13]); got != math.Float64bits(1.5) {
			t.Errorf("x bytes = %#x, want %#x", got, math.Float64bits(1.5))
		}
		if got := binary.LittleEndian.Uint64(buf[13:21]); got != math.Float64bits(-2.25) {
			t.Errorf("y bytes = %#x, want %#x", got, math.Float64bits(-2.25))
		}
	})

	t.Run("button", func(t *testing.T) {
		buf := Encode(ButtonEvent{Timestamp: 7, Button: 272, State: ButtonPressed})
		if buf[0] != 1 {
			t.Errorf("tag = %d, want 1", buf[0])
		}
		if got := binary.LittleEndian.Uint32(buf[5:9]); got != 272 {
			t.Errorf("button bytes = %d, want 272", got)
		}
		if buf[9] != 1 {
			t.Errorf("state byte = %d, want 1", buf[9])
		}
		for i := 10; i < FrameSize; i++ {
			if buf[i] != 0 {
				t.Errorf("padding byte %d = %#x, want 0", i, buf[i])
			}
		}
	})

	t.Run("axis", func(t *testing.T) {
		buf := Encode(AxisEvent{Timestamp: 3, Axis: AxisHorizontal, Value: 1.0})
		if buf[0] != 2 {
			t.Errorf("tag = %d, want 2", buf[0])
		}
		if buf[5] != 1 {
			t.Errorf("axis byte = %d, want 1", buf[5])
		}
		if got := binary.LittleEndian.Uint64(buf[6:14]); got != math.Float64bits(1.0) {
			t.Errorf("value bytes = %#x", got)
		}
		for i := 14; i < FrameSize; i++ {
			if buf[i] != 0 {
				t.Errorf("padding byte %d = %#x, want 0", i, buf[i])
			}
		}
	})

	t.Run("modifiers", func(t *testing.T) {
		buf := Encode(ModifiersEvent{Depressed: 1, Latched: 2, Locked: 3, Group: 4})
		if buf[0] != 4 {
			t.Errorf("tag = %d, want 4", buf[0])
		}
		if got := binary.LittleEndian.Uint32(buf[13:17]); got != 4 {
			t.Errorf("group bytes = %d, want 4", got)
		}
		for i := 17; i < FrameSize; i++ {
			if buf[i] != 0 {
				t.Errorf("padding byte %d = %#x, want 0", i, buf[i])
			}
		}
	})
}

func TestDecodeRejectsBadTag(t *testing.T) {
	for _, tag := range []uint8{5, 6, 42, 255} {
		buf := make([]byte, FrameSize)
		buf[0] = tag
		_, err := Decode(buf)
		if !errors.Is(err, ErrProtocolViolation) {
			t.Errorf("Decode(tag=%d) error = %v, want ErrProtocolViolation", tag, err)
		}
	}
}

func TestDecodeRejectsBadState(t *testing.T) {
	for _, tag := range []uint8{1, 3} { // button, key
		for _, state := range []uint8{2, 3, 255} {
			buf := make([]byte, FrameSize)
			buf[0] = tag
			buf[9] = state
			_, err := Decode(buf)
			if !errors.Is(err, ErrProtocolViolation) {
				t.Errorf("Decode(tag=%d, state=%d) error = %v, want ErrProtocolViolation", tag, state, err)
			}
		}
	}
}

func TestDecodeRejectsBadAxis(t *testing.T) {
	buf := make([]byte, FrameSize)
	buf[0] = 2
	buf[5] = 2
	_, err := Decode(buf)
	if !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("Decode(axis=2) error = %v, want ErrProtocolViolation", err)
	}
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	for _, n := range []int{0, 1, 20} {
		_, err := Decode(make([]byte, n))
		if !errors.Is(err, ErrProtocolViolation) {
			t.Errorf("Decode(%d bytes) error = %v, want ErrProtocolViolation", n, err)
		}
	}
}

// Trailing padding is don't-care on decode: two frames differing only
// in padding decode to the same event.
func TestDecodeIgnoresPadding(t *testing.T) {
	clean := Encode(KeyEvent{Timestamp: 5, Key: 16, State: KeyPressed})
	dirty := clean
	for i := 10; i < FrameSize; i++ {
		dirty[i] = 0xAA
	}

	want, err := Decode(clean[:])
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(dirty[:])
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("padding affected decode: %+v vs %+v", got, want)
	}
}
