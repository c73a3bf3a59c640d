// Package selection keeps track of the single IFC element the user has
// picked and keeps its highlight subset in the scene in step with it.
//
// The controller is driven from the UI thread only and does no locking.
package selection

import (
	"log/slog"

	"ifc-viewer/ifc"
	"ifc-viewer/scene"
)

// ElementID names one element of one loaded model.
type ElementID struct {
	ModelID int
	ID      int
}

// Intersection is the result of a hit test against the scene. HasFace is
// false when no geometry was hit.
type Intersection struct {
	Object    *scene.Node
	FaceIndex int
	HasFace   bool
}

// Context provides the scene the controller highlights into.
type Context interface {
	Scene() *scene.Scene
}

// Loader is the part of the model loader the controller needs.
type Loader interface {
	ResolveElementID(mesh *scene.Mesh, faceIndex int) (int, bool)
	CreateSubset(cfg ifc.SubsetConfig) *scene.Node
	RemoveSubset(modelID int, s *scene.Scene, material *scene.Material)
}

// Face is the face index of the last accepted pick, if any.
type Face struct {
	Index int
	Valid bool
}

// State is either Unselected or Selected.
type State interface {
	LastFace() Face
	isState()
}

// Unselected means no element has been highlighted yet. A pick that failed
// to resolve still leaves its face behind.
type Unselected struct {
	Face Face
}

// Selected holds the highlighted element.
type Selected struct {
	Element ElementID
	Face    Face
}

func (s Unselected) LastFace() Face { return s.Face }
func (s Selected) LastFace() Face   { return s.Face }
func (Unselected) isState()         {}
func (Selected) isState()           {}

// Controller turns picks into a single highlighted element.
type Controller struct {
	scene    *scene.Scene
	loader   Loader
	material *scene.Material
	state    State
	logger   *slog.Logger

	// OnSelect, if set, is called after every successful Pick or PickByID.
	OnSelect func(ElementID)
}

// New creates a controller in the Unselected state. material is shared with
// the caller and never modified; nil highlights with the default appearance.
func New(ctx Context, loader Loader, material *scene.Material, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		scene:    ctx.Scene(),
		loader:   loader,
		material: material,
		state:    Unselected{},
		logger:   logger,
	}
}

// State returns the current selection state.
func (c *Controller) State() State {
	return c.state
}

// Current returns the highlighted element, if any.
func (c *Controller) Current() (ElementID, bool) {
	if s, ok := c.state.(Selected); ok {
		return s.Element, true
	}
	return ElementID{}, false
}

// Pick selects the element under hit. It reports false when nothing new was
// selected: no face was hit, the face is the one picked last time, or the
// face does not map to an element. In all of those cases the current
// highlight stays as it is.
func (c *Controller) Pick(hit Intersection) (ElementID, bool) {
	last := c.state.LastFace()
	if !hit.HasFace || (last.Valid && last.Index == hit.FaceIndex) {
		return ElementID{}, false
	}
	face := Face{Index: hit.FaceIndex, Valid: true}
	c.setFace(face)

	if hit.Object == nil || hit.Object.Mesh == nil {
		return ElementID{}, false
	}
	mesh := hit.Object.Mesh
	id, ok := c.loader.ResolveElementID(mesh, hit.FaceIndex)
	if !ok {
		c.logger.Debug("pick did not resolve", "model", mesh.ModelID, "face", hit.FaceIndex)
		return ElementID{}, false
	}

	c.removeSelectionOfOtherModel(mesh.ModelID)
	el := ElementID{ModelID: mesh.ModelID, ID: id}
	c.state = Selected{Element: el, Face: face}
	c.applyHighlight(el)
	return el, true
}

// PickByID selects an element directly. It always re-applies the highlight
// and leaves the face bookkeeping of Pick alone. The ids are not validated;
// an unknown id produces an empty highlight.
func (c *Controller) PickByID(modelID, id int) ElementID {
	c.removeSelectionOfOtherModel(modelID)
	el := ElementID{ModelID: modelID, ID: id}
	c.state = Selected{Element: el, Face: c.state.LastFace()}
	c.applyHighlight(el)
	return el
}

func (c *Controller) setFace(face Face) {
	switch s := c.state.(type) {
	case Selected:
		s.Face = face
		c.state = s
	default:
		c.state = Unselected{Face: face}
	}
}

// applyHighlight replaces the subset of el's model with one holding el only.
func (c *Controller) applyHighlight(el ElementID) {
	c.loader.CreateSubset(ifc.SubsetConfig{
		Scene:          c.scene,
		ModelID:        el.ModelID,
		IDs:            []int{el.ID},
		RemovePrevious: true,
		Material:       c.material,
	})
	c.logger.Debug("element selected", "model", el.ModelID, "id", el.ID)
	if c.OnSelect != nil {
		c.OnSelect(el)
	}
}

// removeSelectionOfOtherModel drops the highlight of the previously selected
// model when modelID names a different one.
func (c *Controller) removeSelectionOfOtherModel(modelID int) {
	s, ok := c.state.(Selected)
	if !ok || s.Element.ModelID == modelID {
		return
	}
	c.loader.RemoveSubset(s.Element.ModelID, c.scene, c.material)
}
