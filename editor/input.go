package editor

import (
	"ifc-viewer/core"
)

// InputManager tracks mouse and keyboard state for the viewer
type InputManager struct {
	// Mouse state
	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64
	ScrollDelta              float64

	// Button states
	mouseButtons     [3]bool
	mouseButtonsPrev [3]bool

	keys     map[int]bool
	keysPrev map[int]bool

	ShiftDown bool
	CtrlDown  bool

	window     *core.Window
	firstFrame bool
}

// Mouse button constants
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)

var polledKeys = []int{core.KeyEscape, core.KeyF}

// NewInputManager creates a new input manager with scroll callback
func NewInputManager(window *core.Window) *InputManager {
	im := &InputManager{
		window:     window,
		firstFrame: true,
		keys:       make(map[int]bool),
		keysPrev:   make(map[int]bool),
	}

	window.SetScrollCallback(func(xoff, yoff float64) {
		im.ScrollDelta += yoff
	})

	return im
}

// Update should be called once per frame to compute deltas and poll state
func (im *InputManager) Update() {
	x, y := im.window.GetCursorPos()
	if im.firstFrame {
		im.lastMouseX = x
		im.lastMouseY = y
		im.firstFrame = false
	}
	im.MouseDeltaX = x - im.lastMouseX
	im.MouseDeltaY = y - im.lastMouseY
	im.lastMouseX = x
	im.lastMouseY = y
	im.MouseX = x
	im.MouseY = y

	im.mouseButtonsPrev = im.mouseButtons
	for b := range im.mouseButtons {
		im.mouseButtons[b] = im.window.IsMouseButtonPressed(b)
	}

	im.ShiftDown = im.window.IsKeyPressed(core.KeyLeftShift) || im.window.IsKeyPressed(core.KeyRightShift)
	im.CtrlDown = im.window.IsKeyPressed(core.KeyLeftControl) || im.window.IsKeyPressed(core.KeyRightControl)

	for _, k := range polledKeys {
		im.keysPrev[k] = im.keys[k]
		im.keys[k] = im.window.IsKeyPressed(k)
	}
}

// EndFrame clears per-frame state
func (im *InputManager) EndFrame() {
	im.ScrollDelta = 0
}

// MouseMoved reports whether the cursor moved since the last frame.
func (im *InputManager) MouseMoved() bool {
	return im.MouseDeltaX != 0 || im.MouseDeltaY != 0
}

func (im *InputManager) IsMouseDown(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button]
}

func (im *InputManager) IsMousePressed(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button] && !im.mouseButtonsPrev[button]
}

func (im *InputManager) IsKeyPressed(key int) bool {
	return im.keys[key] && !im.keysPrev[key]
}
