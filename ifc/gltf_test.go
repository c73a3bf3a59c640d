package ifc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// writeTestModel saves a two-node model: node 0 carries per-vertex ids
// 11 and 12, node 1 is a door whose id comes from its extras.
func writeTestModel(t *testing.T) string {
	t.Helper()
	doc := gltf.NewDocument()

	quad := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	pos := modeler.WritePosition(doc, quad)
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 3, 4, 5})
	ids := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, []float32{11, 11, 11, 12, 12, 12})

	doorPos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}})

	doc.Meshes = []*gltf.Mesh{
		{Name: "walls", Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: gltf.PrimitiveAttributes{"POSITION": pos, ExpressIDAttribute: ids},
		}}},
		{Name: "door", Primitives: []*gltf.Primitive{{
			Attributes: gltf.PrimitiveAttributes{"POSITION": doorPos},
		}}},
	}
	doc.Nodes = []*gltf.Node{
		{Name: "walls", Mesh: gltf.Index(0), Translation: [3]float64{0, 0, 5}},
		{Name: "door", Mesh: gltf.Index(1), Extras: map[string]any{"expressID": 77, "type": "IFCDOOR", "name": "Front door"}},
	}
	doc.Scenes[0].Nodes = []int{0, 1}

	path := filepath.Join(t.TempDir(), "house.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestLoadGLTF(t *testing.T) {
	l := NewLoader(nil)
	m, err := l.LoadGLTF(writeTestModel(t))
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}

	if m.Name != "house" {
		t.Errorf("expected name house, got %q", m.Name)
	}
	if got := m.Mesh().FaceCount(); got != 3 {
		t.Fatalf("expected 3 faces, got %d", got)
	}
	for face, want := range []int{11, 12, 77} {
		if id, ok := l.ResolveElementID(m.Mesh(), face); !ok || id != want {
			t.Errorf("face %d: expected %d, got %d %v", face, want, id, ok)
		}
	}

	door, ok := l.Element(m.ID, 77)
	if !ok || door.Type != "IFCDOOR" || door.Name != "Front door" {
		t.Errorf("unexpected door metadata %+v", door)
	}

	// walls are translated to z=5, the door stays at z=0
	box := m.Mesh().LocalAABB
	if box.Min.Z() != 0 || box.Max.Z() != 5 {
		t.Errorf("expected z range [0 5], got [%v %v]", box.Min.Z(), box.Max.Z())
	}
}

func TestLoadGLTFMissingFile(t *testing.T) {
	l := NewLoader(nil)
	_, err := l.LoadGLTF(filepath.Join(t.TempDir(), "missing.glb"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if len(l.Models()) != 0 {
		t.Error("failed load should not register a model")
	}
}

func TestGLTFPrimitiveErrors(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	badIdx := modeler.WriteIndices(doc, []uint16{0, 1, 3})

	cases := map[string]*gltf.Primitive{
		"missing normal accessor": {Attributes: gltf.PrimitiveAttributes{"POSITION": pos, "NORMAL": 42}},
		"missing index accessor":  {Indices: gltf.Index(42), Attributes: gltf.PrimitiveAttributes{"POSITION": pos}},
		"missing position":        {Attributes: gltf.PrimitiveAttributes{"POSITION": 42}},
		"index past primitive":    {Indices: gltf.Index(badIdx), Attributes: gltf.PrimitiveAttributes{"POSITION": pos}},
	}
	for name, prim := range cases {
		b := &gltfBuilder{doc: doc, meta: make(map[int]Element)}
		if err := b.addPrimitive(prim, mgl32.Ident4(), 1); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
