// Package ifc loads building models whose triangles are tagged with IFC
// element ids and builds highlight subsets out of them.
package ifc

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"ifc-viewer/core"
	"ifc-viewer/scene"
)

var (
	ErrNoGeometry   = errors.New("ifc: model has no triangle geometry")
	ErrIDMismatch   = errors.New("ifc: element id count does not match vertex count")
	ErrUnknownModel = errors.New("ifc: unknown model")
	ErrBadIndex     = errors.New("ifc: index references a missing vertex")
)

// Element is the metadata kept for one IFC element of a model.
type Element struct {
	ID    int
	Type  string
	Name  string
	Faces int
}

// Model is one loaded file: a single merged mesh plus its element table.
type Model struct {
	ID       int
	Name     string
	Node     *scene.Node
	Elements map[int]*Element
}

// Mesh is the merged geometry of the model.
func (m *Model) Mesh() *scene.Mesh {
	return m.Node.Mesh
}

// ElementIDs returns the ids of all elements with geometry, ascending.
func (m *Model) ElementIDs() []int {
	ids := make([]int, 0, len(m.Elements))
	for id := range m.Elements {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Loader owns loaded models, the face-to-element tables of every mesh it
// produced and the highlight subsets built from them.
type Loader struct {
	Material *scene.Material // applied to model meshes

	models  map[int]*Model
	nextID  int
	faces   map[*scene.Mesh][]int
	subsets map[subsetKey]*subset
	logger  *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		Material: scene.DefaultMaterial(),
		models:   make(map[int]*Model),
		faces:    make(map[*scene.Mesh][]int),
		subsets:  make(map[subsetKey]*subset),
		logger:   logger,
	}
}

// AddModel registers merged geometry as a new model. vertexIDs carries the
// element id of every vertex; a face belongs to the element of its first
// vertex.
func (l *Loader) AddModel(name string, vertices []core.Vertex, indices []uint32, vertexIDs []int) (*Model, error) {
	if len(indices) < 3 || len(vertices) == 0 {
		return nil, fmt.Errorf("model %q: %w", name, ErrNoGeometry)
	}
	if len(vertexIDs) != len(vertices) {
		return nil, fmt.Errorf("model %q: %d ids for %d vertices: %w", name, len(vertexIDs), len(vertices), ErrIDMismatch)
	}

	faceCount := len(indices) / 3
	faceIDs := make([]int, faceCount)
	elements := make(map[int]*Element)
	for f := 0; f < faceCount; f++ {
		for _, v := range indices[3*f : 3*f+3] {
			if int(v) >= len(vertices) {
				return nil, fmt.Errorf("model %q: face %d vertex %d of %d: %w", name, f, v, len(vertices), ErrBadIndex)
			}
		}
		id := vertexIDs[indices[3*f]]
		faceIDs[f] = id
		el, ok := elements[id]
		if !ok {
			el = &Element{ID: id}
			elements[id] = el
		}
		el.Faces++
	}

	mesh := scene.CreateMeshFromData(name, vertices, indices[:3*faceCount])
	mesh.ModelID = l.nextID
	mesh.Material = l.Material

	model := &Model{
		ID:       l.nextID,
		Name:     name,
		Node:     scene.NewMeshNode(name, mesh),
		Elements: elements,
	}
	l.models[model.ID] = model
	l.faces[mesh] = faceIDs
	l.nextID++

	l.logger.Info("model added", "model", model.ID, "name", name, "elements", len(elements), "faces", faceCount)
	return model, nil
}

// Model returns a loaded model by id.
func (l *Loader) Model(modelID int) (*Model, bool) {
	m, ok := l.models[modelID]
	return m, ok
}

// Models returns every loaded model ordered by id.
func (l *Loader) Models() []*Model {
	out := make([]*Model, 0, len(l.models))
	for _, m := range l.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Element looks up element metadata.
func (l *Loader) Element(modelID, id int) (Element, bool) {
	m, ok := l.models[modelID]
	if !ok {
		return Element{}, false
	}
	el, ok := m.Elements[id]
	if !ok {
		return Element{}, false
	}
	return *el, true
}

// ResolveElementID maps a face of a mesh produced by this loader (model or
// subset) to its element id. The second result is false for foreign meshes
// and out-of-range faces.
func (l *Loader) ResolveElementID(mesh *scene.Mesh, faceIndex int) (int, bool) {
	ids, ok := l.faces[mesh]
	if !ok || faceIndex < 0 || faceIndex >= len(ids) {
		return 0, false
	}
	return ids[faceIndex], true
}
