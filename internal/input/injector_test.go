package input

import (
	"testing"

	"github.com/edgehop/edgehop/internal/protocol"
)

// recordingInjector captures dispatched calls for assertions.
type recordingInjector struct {
	calls  []string
	keymap []byte
}

func (r *recordingInjector) Move(_ uint32, _, _ float64) error {
	r.calls = append(r.calls, "move")
	return nil
}

func (r *recordingInjector) Button(_ uint32, _ uint32, _ protocol.ButtonState) error {
	r.calls = append(r.calls, "button")
	return nil
}

func (r *recordingInjector) Scroll(_ uint32, _ protocol.Axis, _ float64) error {
	r.calls = append(r.calls, "scroll")
	return nil
}

func (r *recordingInjector) Key(_ uint32, _ uint32, _ protocol.KeyState) error {
	r.calls = append(r.calls, "key")
	return nil
}

func (r *recordingInjector) Modifiers(_, _, _, _ uint32) error {
	r.calls = append(r.calls, "modifiers")
	return nil
}

func (r *recordingInjector) LoadKeymap(keymap []byte) error {
	r.keymap = keymap
	return nil
}

func (r *recordingInjector) Close() error { return nil }

func TestDispatch(t *testing.T) {
	tests := []struct {
		name  string
		event protocol.Event
		want  string
	}{
		{"mouse", protocol.MouseEvent{Timestamp: 1, X: 2, Y: 3}, "move"},
		{"button", protocol.ButtonEvent{Timestamp: 1, Button: 272, State: protocol.ButtonPressed}, "button"},
		{"axis", protocol.AxisEvent{Timestamp: 1, Axis: protocol.AxisVertical, Value: -1}, "scroll"},
		{"key", protocol.KeyEvent{Timestamp: 1, Key: 30, State: protocol.KeyReleased}, "key"},
		{"modifiers", protocol.ModifiersEvent{Depressed: 1}, "modifiers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingInjector{}
			if err := Dispatch(rec, tt.event); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if len(rec.calls) != 1 || rec.calls[0] != tt.want {
				t.Errorf("Dispatch() routed to %v, want [%s]", rec.calls, tt.want)
			}
		})
	}
}

func TestDispatchUnknownEvent(t *testing.T) {
	if err := Dispatch(&recordingInjector{}, nil); err == nil {
		t.Error("Dispatch(nil) should fail")
	}
}
