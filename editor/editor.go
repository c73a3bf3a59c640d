package editor

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"ifc-viewer/core"
	"ifc-viewer/ifc"
	"ifc-viewer/scene"
	"ifc-viewer/selection"
)

// Editor drives the viewer: camera controls, picking and the status line.
type Editor struct {
	Input       *InputManager
	Window      *core.Window
	OrbitCamera *scene.OrbitCamera
	Loader      *ifc.Loader
	Selection   *selection.Controller

	// Status info
	StatusText string

	scene       *scene.Scene
	pickOnHover bool
	logger      *slog.Logger
}

// NewEditor initializes a new editor instance over a scene holding the
// loader's models.
func NewEditor(window *core.Window, s *scene.Scene, loader *ifc.Loader, cfg Config, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	camera := scene.NewOrbitCamera(mgl32.Vec3{}, 10.0, mgl32.DegToRad(60), float32(window.Width)/float32(window.Height))
	s.SetCamera(&camera.Camera)

	e := &Editor{
		Input:       NewInputManager(window),
		Window:      window,
		OrbitCamera: camera,
		Loader:      loader,
		StatusText:  "Ready",
		scene:       s,
		pickOnHover: cfg.PickOnHover,
		logger:      logger,
	}
	e.Selection = selection.New(e, loader, scene.HighlightMaterial(cfg.Highlight), logger)
	e.Selection.OnSelect = func(el selection.ElementID) {
		e.StatusText = Describe(loader, el)
		logger.Info("selected", "model", el.ModelID, "id", el.ID)
	}
	e.FrameModels()
	return e
}

// Scene returns the scene the editor draws and highlights into.
func (e *Editor) Scene() *scene.Scene {
	return e.scene
}

// Update processes one frame of editor logic
func (e *Editor) Update(deltaTime float32) {
	e.Input.Update()

	e.handleShortcuts()
	e.handleCameraControls()
	e.handlePicking()

	e.Input.EndFrame()
}

// FrameModels points the camera at everything in the scene.
func (e *Editor) FrameModels() {
	if box, ok := e.scene.Bounds(); ok {
		e.OrbitCamera.FrameBounds(box)
	}
}

// PickAt runs a pick for a cursor position in window coordinates.
func (e *Editor) PickAt(x, y float64) (selection.ElementID, bool) {
	e.OrbitCamera.UpdateAspectRatio(float32(e.Window.Width), float32(e.Window.Height))
	ray := ScreenToRay(float32(x), float32(y), float32(e.Window.Width), float32(e.Window.Height), &e.OrbitCamera.Camera)
	return e.Selection.Pick(RaycastScene(ray, e.scene))
}

func (e *Editor) handleShortcuts() {
	if e.Input.IsKeyPressed(core.KeyEscape) {
		e.Window.Close()
	}
	if e.Input.IsKeyPressed(core.KeyF) {
		e.FrameModels()
		e.StatusText = "Framed models"
	}
}

func (e *Editor) handleCameraControls() {
	// Scroll zoom
	if e.Input.ScrollDelta != 0 {
		e.OrbitCamera.Zoom(-float32(e.Input.ScrollDelta) * e.OrbitCamera.Distance * 0.1)
	}

	// RMB orbit / Shift+RMB or MMB pan
	dx := float32(e.Input.MouseDeltaX) * 0.01
	dy := float32(e.Input.MouseDeltaY) * 0.01
	pan := e.Input.IsMouseDown(MouseMiddle) || (e.Input.IsMouseDown(MouseRight) && e.Input.ShiftDown)
	switch {
	case pan:
		speed := e.OrbitCamera.Distance * 0.2
		e.OrbitCamera.Pan(-dx*speed, dy*speed)
	case e.Input.IsMouseDown(MouseRight):
		e.OrbitCamera.Orbit(-dx, -dy)
	}
}

func (e *Editor) handlePicking() {
	switch {
	case e.pickOnHover && e.Input.MouseMoved():
	case !e.pickOnHover && e.Input.IsMousePressed(MouseLeft):
	default:
		return
	}
	e.PickAt(e.Input.MouseX, e.Input.MouseY)
}

// Describe renders an element for the status line.
func Describe(loader *ifc.Loader, el selection.ElementID) string {
	meta, ok := loader.Element(el.ModelID, el.ID)
	if !ok {
		return fmt.Sprintf("Selected: #%d (model %d)", el.ID, el.ModelID)
	}
	label := fmt.Sprintf("Selected: #%d", meta.ID)
	if meta.Type != "" {
		label += " " + meta.Type
	}
	if meta.Name != "" {
		label += fmt.Sprintf(" %q", meta.Name)
	}
	return fmt.Sprintf("%s (model %d, %d faces)", label, el.ModelID, meta.Faces)
}
