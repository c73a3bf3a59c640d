package ifc

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"ifc-viewer/core"
	"ifc-viewer/scene"
)

// stripModel has one triangle per entry of faceIDs, laid out along X.
func stripModel(t *testing.T, l *Loader, faceIDs ...int) *Model {
	t.Helper()
	var vertices []core.Vertex
	var indices []uint32
	var ids []int
	for i, id := range faceIDs {
		x := float32(i)
		base := uint32(len(vertices))
		vertices = append(vertices,
			core.Vertex{Position: mgl32.Vec3{x, 0, 0}},
			core.Vertex{Position: mgl32.Vec3{x + 1, 0, 0}},
			core.Vertex{Position: mgl32.Vec3{x, 1, 0}},
		)
		indices = append(indices, base, base+1, base+2)
		ids = append(ids, id, id, id)
	}
	model, err := l.AddModel("strip", vertices, indices, ids)
	if err != nil {
		t.Fatalf("AddModel: %v", err)
	}
	return model
}

func TestAddModelBuildsElementTable(t *testing.T) {
	l := NewLoader(nil)
	m := stripModel(t, l, 10, 10, 20)

	if m.ID != 0 {
		t.Errorf("expected first model id 0, got %d", m.ID)
	}
	if m.Mesh().ModelID != m.ID {
		t.Errorf("mesh model id %d does not match model %d", m.Mesh().ModelID, m.ID)
	}
	if got := m.ElementIDs(); len(got) != 2 || got[0] != 10 || got[1] != 20 {
		t.Errorf("expected ids [10 20], got %v", got)
	}
	el, ok := l.Element(m.ID, 10)
	if !ok || el.Faces != 2 {
		t.Errorf("expected element 10 with 2 faces, got %+v %v", el, ok)
	}

	second := stripModel(t, l, 1)
	if second.ID != 1 {
		t.Errorf("expected second model id 1, got %d", second.ID)
	}
	if len(l.Models()) != 2 {
		t.Errorf("expected 2 models, got %d", len(l.Models()))
	}
}

func TestAddModelErrors(t *testing.T) {
	l := NewLoader(nil)
	if _, err := l.AddModel("empty", nil, nil, nil); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("expected ErrNoGeometry, got %v", err)
	}
	vertices := make([]core.Vertex, 3)
	if _, err := l.AddModel("ids", vertices, []uint32{0, 1, 2}, []int{1}); !errors.Is(err, ErrIDMismatch) {
		t.Errorf("expected ErrIDMismatch, got %v", err)
	}
	for _, indices := range [][]uint32{{5, 1, 2}, {0, 5, 2}, {0, 1, 9}} {
		if _, err := l.AddModel("range", vertices, indices, []int{1, 1, 1}); !errors.Is(err, ErrBadIndex) {
			t.Errorf("indices %v: expected ErrBadIndex, got %v", indices, err)
		}
	}
	if len(l.Models()) != 0 {
		t.Errorf("rejected models should not be registered, got %d", len(l.Models()))
	}
}

func TestResolveElementID(t *testing.T) {
	l := NewLoader(nil)
	m := stripModel(t, l, 10, 20)

	if id, ok := l.ResolveElementID(m.Mesh(), 1); !ok || id != 20 {
		t.Errorf("expected 20, got %d %v", id, ok)
	}
	if _, ok := l.ResolveElementID(m.Mesh(), 2); ok {
		t.Error("face out of range should not resolve")
	}
	if _, ok := l.ResolveElementID(m.Mesh(), -1); ok {
		t.Error("negative face should not resolve")
	}
	if _, ok := l.ResolveElementID(scene.CreateMeshFromData("x", nil, nil), 0); ok {
		t.Error("foreign mesh should not resolve")
	}
}

func TestCreateSubsetReplacesPrevious(t *testing.T) {
	l := NewLoader(nil)
	s := scene.NewScene()
	m := stripModel(t, l, 10, 20, 30)
	mat := scene.HighlightMaterial(core.ColorOrange)

	first := l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{10}, RemovePrevious: true, Material: mat})
	oldMesh := first.Mesh
	second := l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{30}, RemovePrevious: true, Material: mat})

	if first != second {
		t.Error("subset node should be reused for the same model and material")
	}
	if len(s.Root.Children) != 1 {
		t.Fatalf("expected one node in scene, got %d", len(s.Root.Children))
	}
	ids, _ := l.SubsetIDs(m.ID, mat)
	if len(ids) != 1 || ids[0] != 30 {
		t.Errorf("expected [30], got %v", ids)
	}
	if second.Mesh.FaceCount() != 1 {
		t.Errorf("expected 1 face, got %d", second.Mesh.FaceCount())
	}
	if id, ok := l.ResolveElementID(second.Mesh, 0); !ok || id != 30 {
		t.Errorf("subset face should resolve to 30, got %d %v", id, ok)
	}
	if _, ok := l.ResolveElementID(oldMesh, 0); ok {
		t.Error("stale subset mesh faces should be forgotten")
	}
}

func TestCreateSubsetAccumulates(t *testing.T) {
	l := NewLoader(nil)
	s := scene.NewScene()
	m := stripModel(t, l, 10, 20, 30)

	l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{10}})
	node := l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{20}})

	ids, ok := l.SubsetIDs(m.ID, nil)
	if !ok || len(ids) != 2 {
		t.Errorf("expected [10 20], got %v", ids)
	}
	if node.Mesh.FaceCount() != 2 {
		t.Errorf("expected 2 faces, got %d", node.Mesh.FaceCount())
	}
	if node.Mesh.Material != nil {
		t.Error("nil material should stay nil")
	}
}

func TestSubsetsPerMaterial(t *testing.T) {
	l := NewLoader(nil)
	s := scene.NewScene()
	m := stripModel(t, l, 10, 20)
	red := scene.NewMaterial("red", core.Color{R: 1, A: 1})
	blue := scene.NewMaterial("blue", core.Color{B: 1, A: 1})

	l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{10}, Material: red})
	l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{20}, Material: blue})
	if len(s.Root.Children) != 2 {
		t.Fatalf("expected two subsets, got %d", len(s.Root.Children))
	}

	l.RemoveSubset(m.ID, s, red)
	if len(s.Root.Children) != 1 {
		t.Errorf("expected one subset left, got %d", len(s.Root.Children))
	}
	if _, ok := l.SubsetIDs(m.ID, blue); !ok {
		t.Error("blue subset should survive")
	}
}

func TestUnknownIDsGiveEmptySubset(t *testing.T) {
	l := NewLoader(nil)
	s := scene.NewScene()
	m := stripModel(t, l, 10)

	node := l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{999}, RemovePrevious: true})
	if node == nil {
		t.Fatal("expected a subset node")
	}
	if node.Mesh.FaceCount() != 0 || node.Mesh.HasLocalAABB {
		t.Errorf("expected empty subset, got %d faces", node.Mesh.FaceCount())
	}
	if l.CreateSubset(SubsetConfig{Scene: s, ModelID: 42, IDs: []int{1}}) != nil {
		t.Error("unknown model should give nil")
	}
}

func TestRemoveSubsetIsIdempotent(t *testing.T) {
	l := NewLoader(nil)
	s := scene.NewScene()
	m := stripModel(t, l, 10)

	node := l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{10}, RemovePrevious: true})
	l.RemoveSubset(m.ID, s, nil)
	l.RemoveSubset(m.ID, s, nil)
	l.RemoveSubset(7, s, nil)

	if s.Contains(node) {
		t.Error("subset node still in scene")
	}
	if _, ok := l.SubsetIDs(m.ID, nil); ok {
		t.Error("subset should be forgotten")
	}
	if _, ok := l.ResolveElementID(node.Mesh, 0); ok {
		t.Error("removed subset mesh should not resolve")
	}
}

func TestSubsetMovesBetweenScenes(t *testing.T) {
	l := NewLoader(nil)
	a, b := scene.NewScene(), scene.NewScene()
	m := stripModel(t, l, 10)

	node := l.CreateSubset(SubsetConfig{Scene: a, ModelID: m.ID, IDs: []int{10}, RemovePrevious: true})
	l.CreateSubset(SubsetConfig{Scene: b, ModelID: m.ID, IDs: []int{10}, RemovePrevious: true})

	if a.Contains(node) || !b.Contains(node) {
		t.Error("subset should have moved to the second scene")
	}
}

func TestSubsetFollowsModelTransform(t *testing.T) {
	l := NewLoader(nil)
	s := scene.NewScene()
	m := stripModel(t, l, 10, 20)
	s.AddNode(m.Node)

	node := l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{10}, RemovePrevious: true})
	if node.Pickable {
		t.Error("subset nodes should not be pickable")
	}

	m.Node.SetPosition(mgl32.Vec3{0, 0, 3})
	l.CreateSubset(SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{20}, RemovePrevious: true})
	if node.GetWorldMatrix() != m.Node.GetWorldMatrix() {
		t.Errorf("subset transform %v does not follow model %v", node.Transform.Position, m.Node.Transform.Position)
	}
}
