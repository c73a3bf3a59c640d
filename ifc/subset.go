package ifc

import (
	"fmt"
	"sort"

	"ifc-viewer/core"
	"ifc-viewer/scene"
)

// SubsetConfig describes a subset to build with CreateSubset.
type SubsetConfig struct {
	Scene   *scene.Scene
	ModelID int
	IDs     []int

	// RemovePrevious replaces the ids of an existing subset instead of
	// adding to them.
	RemovePrevious bool

	// Material is borrowed, never modified. Nil draws the subset with the
	// default appearance.
	Material *scene.Material
}

// A model can carry one subset per material.
type subsetKey struct {
	modelID  int
	material *scene.Material
}

type subset struct {
	node  *scene.Node
	scene *scene.Scene
	ids   map[int]struct{}
}

// CreateSubset builds (or rebuilds) the subset of a model holding only the
// faces of the given elements and makes sure its node is in cfg.Scene.
// Ids without geometry contribute nothing; the result may be an empty mesh.
// It returns nil when the model is unknown.
func (l *Loader) CreateSubset(cfg SubsetConfig) *scene.Node {
	model, ok := l.models[cfg.ModelID]
	if !ok {
		l.logger.Warn("subset for unknown model", "model", cfg.ModelID)
		return nil
	}

	key := subsetKey{modelID: cfg.ModelID, material: cfg.Material}
	sub, exists := l.subsets[key]
	if !exists {
		name := fmt.Sprintf("subset:%d", cfg.ModelID)
		if cfg.Material != nil {
			name += ":" + cfg.Material.Name
		}
		sub = &subset{node: scene.NewNode(name)}
		sub.node.Pickable = false
		l.subsets[key] = sub
	}
	sub.node.SetTransform(model.Node.Transform)
	if cfg.RemovePrevious || sub.ids == nil {
		sub.ids = make(map[int]struct{}, len(cfg.IDs))
	}
	for _, id := range cfg.IDs {
		sub.ids[id] = struct{}{}
	}

	if sub.node.Mesh != nil {
		delete(l.faces, sub.node.Mesh)
	}
	mesh, faceIDs := l.buildSubsetMesh(model, sub)
	mesh.Material = cfg.Material
	sub.node.Mesh = mesh
	l.faces[mesh] = faceIDs

	if sub.scene != cfg.Scene && sub.scene != nil {
		sub.scene.RemoveNode(sub.node)
	}
	if cfg.Scene != nil && sub.node.Parent == nil {
		cfg.Scene.AddNode(sub.node)
	}
	sub.scene = cfg.Scene

	l.logger.Debug("subset built", "model", cfg.ModelID, "ids", len(sub.ids), "faces", len(faceIDs))
	return sub.node
}

// RemoveSubset drops the subset of a model for the given material and
// detaches its node from s. Removing a subset that does not exist is a no-op.
func (l *Loader) RemoveSubset(modelID int, s *scene.Scene, material *scene.Material) {
	key := subsetKey{modelID: modelID, material: material}
	sub, ok := l.subsets[key]
	if !ok {
		return
	}
	if s != nil {
		s.RemoveNode(sub.node)
	}
	if sub.scene != nil && sub.scene != s {
		sub.scene.RemoveNode(sub.node)
	}
	if sub.node.Mesh != nil {
		delete(l.faces, sub.node.Mesh)
	}
	delete(l.subsets, key)
	l.logger.Debug("subset removed", "model", modelID)
}

// SubsetIDs returns the element ids of an existing subset, ascending.
func (l *Loader) SubsetIDs(modelID int, material *scene.Material) ([]int, bool) {
	sub, ok := l.subsets[subsetKey{modelID: modelID, material: material}]
	if !ok {
		return nil, false
	}
	ids := make([]int, 0, len(sub.ids))
	for id := range sub.ids {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, true
}

// buildSubsetMesh filters the model's faces down to the subset's ids. The
// vertex buffer is shared with the model mesh.
func (l *Loader) buildSubsetMesh(model *Model, sub *subset) (*scene.Mesh, []int) {
	src := model.Mesh()
	srcFaces := l.faces[src]

	var indices []uint32
	var faceIDs []int
	for f, id := range srcFaces {
		if _, ok := sub.ids[id]; !ok {
			continue
		}
		indices = append(indices, src.Indices[3*f:3*f+3]...)
		faceIDs = append(faceIDs, id)
	}

	mesh := &scene.Mesh{
		Name:     sub.node.Name,
		Vertices: src.Vertices,
		Indices:  indices,
		ModelID:  model.ID,
	}
	if len(indices) > 0 {
		used := make([]core.Vertex, 0, len(indices))
		for _, i := range indices {
			used = append(used, src.Vertices[i])
		}
		bounds := scene.CreateMeshFromData("", used, nil)
		mesh.LocalAABB, mesh.HasLocalAABB = bounds.LocalAABB, bounds.HasLocalAABB
	}
	return mesh, faceIDs
}
