package input

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/edgehop/edgehop/internal/config"
	"github.com/edgehop/edgehop/internal/logger"
	"github.com/edgehop/edgehop/internal/protocol"
)

// motionFlushInterval batches relative mouse motion so a fast sensor
// doesn't turn into thousands of datagrams per second.
const motionFlushInterval = 16 * time.Millisecond

// Capture reads raw input from evdev devices and emits wire events
// through a callback. One capture drives the sharing host's outbound
// traffic.
type Capture struct {
	mu             sync.RWMutex
	mouseDevice    *evdev.InputDevice
	keyboardDevice *evdev.InputDevice
	onEvent        func(protocol.Event)
	capturing      bool
	grab           bool
	mousePath      string
	keyboardPath   string
	started        time.Time
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewCapture builds a capture from the configured device paths. Empty
// paths trigger auto-detection at Start. With grab set the devices are
// held exclusively, so local consumers see nothing while capturing.
func NewCapture(cfg config.CaptureConfig, grab bool) *Capture {
	return &Capture{
		mousePath:    cfg.MouseDevice,
		keyboardPath: cfg.KeyboardDevice,
		grab:         grab,
	}
}

// OnEvent sets the callback invoked for every captured event.
func (c *Capture) OnEvent(callback func(protocol.Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvent = callback
}

// Start opens the devices and begins the capture goroutines.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capturing {
		return fmt.Errorf("already capturing")
	}

	mouse, err := openDevice(c.mousePath, isMouse)
	if err != nil {
		return fmt.Errorf("mouse device: %w", err)
	}
	c.mouseDevice = mouse
	logger.Infof("Capturing mouse: %s (%s)", mouse.Name, mouse.Fn)

	keyboard, err := openDevice(c.keyboardPath, isKeyboard)
	if err != nil {
		// A mouse-only setup is still useful.
		logger.Warnf("No keyboard device: %v", err)
	} else {
		c.keyboardDevice = keyboard
		logger.Infof("Capturing keyboard: %s (%s)", keyboard.Name, keyboard.Fn)
	}

	if c.grab {
		if err := c.mouseDevice.Grab(); err != nil {
			return fmt.Errorf("failed to grab mouse device: %w", err)
		}
		if c.keyboardDevice != nil {
			if err := c.keyboardDevice.Grab(); err != nil {
				_ = c.mouseDevice.Release()
				return fmt.Errorf("failed to grab keyboard device: %w", err)
			}
		}
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = time.Now()
	c.capturing = true

	go c.captureMouse(c.mouseDevice)
	if c.keyboardDevice != nil {
		go c.captureKeyboard(c.keyboardDevice)
	}

	logger.Info("Evdev input capture started")
	return nil
}

// Stop ends capture and releases any grabbed devices.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.capturing {
		return
	}
	c.cancel()

	if c.grab {
		if c.mouseDevice != nil {
			_ = c.mouseDevice.Release()
		}
		if c.keyboardDevice != nil {
			_ = c.keyboardDevice.Release()
		}
	}

	c.mouseDevice = nil
	c.keyboardDevice = nil
	c.capturing = false
	logger.Info("Evdev input capture stopped")
}

// timestamp is milliseconds since capture start, matching the wire's
// 32-bit wayland-style timestamps.
func (c *Capture) timestamp() uint32 {
	return uint32(time.Since(c.started).Milliseconds())
}

func (c *Capture) emit(e protocol.Event) {
	c.mu.RLock()
	callback := c.onEvent
	c.mu.RUnlock()
	if callback != nil {
		callback(e)
	}
}

func (c *Capture) captureMouse(dev *evdev.InputDevice) {
	var accX, accY int32
	ticker := time.NewTicker(motionFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if accX != 0 || accY != 0 {
				c.emit(protocol.MouseEvent{
					Timestamp: c.timestamp(),
					X:         float64(accX),
					Y:         float64(accY),
				})
				accX, accY = 0, 0
			}
		default:
			events, err := dev.Read()
			if err != nil {
				if !strings.Contains(err.Error(), "resource temporarily unavailable") {
					logger.Errorf("Error reading mouse events: %v", err)
				}
				time.Sleep(5 * time.Millisecond)
				continue
			}

			for _, ev := range events {
				switch ev.Type {
				case evdev.EV_REL:
					switch ev.Code {
					case evdev.REL_X:
						accX += ev.Value
					case evdev.REL_Y:
						accY += ev.Value
					case evdev.REL_WHEEL, evdev.REL_HWHEEL:
						if out, ok := translateWheel(c.timestamp(), ev.Code, ev.Value); ok {
							c.emit(out)
						}
					}
				case evdev.EV_KEY:
					if out, ok := translateButton(c.timestamp(), ev.Code, ev.Value); ok {
						c.emit(out)
					}
				}
			}
		}
	}
}

func (c *Capture) captureKeyboard(dev *evdev.InputDevice) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			events, err := dev.Read()
			if err != nil {
				if !strings.Contains(err.Error(), "resource temporarily unavailable") {
					logger.Errorf("Error reading keyboard events: %v", err)
				}
				time.Sleep(5 * time.Millisecond)
				continue
			}

			for _, ev := range events {
				if ev.Type != evdev.EV_KEY {
					continue
				}
				if out, ok := translateKey(c.timestamp(), ev.Code, ev.Value); ok {
					c.emit(out)
				}
			}
		}
	}
}

// openDevice opens a configured path, or scans for the first device
// matching the capability check when the path is empty.
func openDevice(path string, matches func(*evdev.InputDevice) bool) (*evdev.InputDevice, error) {
	if path != "" {
		dev, err := evdev.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return dev, nil
	}

	devices, err := evdev.ListInputDevices("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}
	for _, dev := range devices {
		if matches(dev) {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("no suitable device found")
}

func isMouse(dev *evdev.InputDevice) bool {
	rel, ok := dev.CapabilitiesFlat[evdev.EV_REL]
	if !ok {
		return false
	}
	hasX, hasY := false, false
	for _, axis := range rel {
		if axis == evdev.REL_X {
			hasX = true
		}
		if axis == evdev.REL_Y {
			hasY = true
		}
	}
	return hasX && hasY
}

func isKeyboard(dev *evdev.InputDevice) bool {
	keys, ok := dev.CapabilitiesFlat[evdev.EV_KEY]
	if !ok {
		return false
	}
	for _, key := range keys {
		if key >= evdev.KEY_A && key <= evdev.KEY_Z {
			return true
		}
	}
	return false
}
