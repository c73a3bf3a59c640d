package editor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"ifc-viewer/core"
	"ifc-viewer/ifc"
	"ifc-viewer/scene"
	"ifc-viewer/selection"
)

// addQuad loads a unit quad at z centered on (cx, cy); face 0 is element
// ids[0], face 1 is ids[1].
func addQuad(t *testing.T, l *ifc.Loader, s *scene.Scene, cx, cy, z float32, ids [2]int) *ifc.Model {
	t.Helper()
	v := func(x, y float32) core.Vertex {
		return core.Vertex{Position: mgl32.Vec3{cx + x, cy + y, z}, Normal: mgl32.Vec3{0, 0, 1}}
	}
	vertices := []core.Vertex{v(-0.5, -0.5), v(0.5, -0.5), v(0.5, 0.5), v(-0.5, -0.5), v(0.5, 0.5), v(-0.5, 0.5)}
	m, err := l.AddModel("quad", vertices, []uint32{0, 1, 2, 3, 4, 5}, []int{ids[0], ids[0], ids[0], ids[1], ids[1], ids[1]})
	if err != nil {
		t.Fatalf("AddModel: %v", err)
	}
	s.AddNode(m.Node)
	return m
}

func TestScreenToRayCenter(t *testing.T) {
	cam := scene.NewCamera(mgl32.DegToRad(60), 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 5}
	cam.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	ray := ScreenToRay(400, 400, 800, 800, cam)
	if !ray.Direction.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4) {
		t.Errorf("expected ray along -Z, got %v", ray.Direction)
	}
	if math.Abs(float64(ray.Origin.X())) > 1e-4 || math.Abs(float64(ray.Origin.Y())) > 1e-4 {
		t.Errorf("expected origin on the Z axis, got %v", ray.Origin)
	}
}

func TestRaycastSceneHitsClosestFace(t *testing.T) {
	l := ifc.NewLoader(nil)
	s := scene.NewScene()
	far := addQuad(t, l, s, 0, 0, 0, [2]int{1, 2})
	near := addQuad(t, l, s, 0, 0, 1, [2]int{3, 4})

	ray := Ray{Origin: mgl32.Vec3{0.2, -0.2, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	hit := RaycastScene(ray, s)
	if !hit.HasFace {
		t.Fatal("expected a hit")
	}
	if hit.Object != near.Node {
		t.Errorf("expected the nearer quad, got %s", hit.Object.Name)
	}
	if id, _ := l.ResolveElementID(hit.Object.Mesh, hit.FaceIndex); id != 3 {
		t.Errorf("expected element 3, got %d", id)
	}

	near.Node.Visible = false
	hit = RaycastScene(ray, s)
	if hit.Object != far.Node || hit.FaceIndex != 0 {
		t.Errorf("expected face 0 of the far quad, got %v face %d", hit.Object, hit.FaceIndex)
	}
}

func TestRaycastSceneMiss(t *testing.T) {
	l := ifc.NewLoader(nil)
	s := scene.NewScene()
	addQuad(t, l, s, 0, 0, 0, [2]int{1, 2})

	hit := RaycastScene(Ray{Origin: mgl32.Vec3{5, 5, 5}, Direction: mgl32.Vec3{0, 0, -1}}, s)
	if hit.HasFace || hit.Object != nil {
		t.Errorf("expected a miss, got %+v", hit)
	}
}

type testContext struct{ s *scene.Scene }

func (c testContext) Scene() *scene.Scene { return c.s }

func TestRaycastSkipsHighlight(t *testing.T) {
	l := ifc.NewLoader(nil)
	s := scene.NewScene()
	m := addQuad(t, l, s, 0, 0, 0, [2]int{1, 2})
	l.CreateSubset(ifc.SubsetConfig{Scene: s, ModelID: m.ID, IDs: []int{2}, RemovePrevious: true})

	hit := RaycastScene(Ray{Origin: mgl32.Vec3{-0.3, 0.3, 5}, Direction: mgl32.Vec3{0, 0, -1}}, s)
	if hit.Object != m.Node || hit.FaceIndex != 1 {
		t.Errorf("expected face 1 of the model, got %v face %d", hit.Object, hit.FaceIndex)
	}
}

func TestClicksThroughHighlight(t *testing.T) {
	l := ifc.NewLoader(nil)
	s := scene.NewScene()
	m := addQuad(t, l, s, 0, 0, 0, [2]int{1, 2})
	highlight := scene.HighlightMaterial(core.ColorOrange)
	c := selection.New(testContext{s}, l, highlight, nil)

	clickA := Ray{Origin: mgl32.Vec3{-0.3, 0.3, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	clickB := Ray{Origin: mgl32.Vec3{0.3, -0.3, 5}, Direction: mgl32.Vec3{0, 0, -1}}

	if el, ok := c.Pick(RaycastScene(clickA, s)); !ok || el != (selection.ElementID{ModelID: m.ID, ID: 2}) {
		t.Fatalf("first click: expected element 2, got %v %v", el, ok)
	}
	subset := s.Root.Children[len(s.Root.Children)-1]
	mesh := subset.Mesh

	// the highlight now covers A
	if _, ok := c.Pick(RaycastScene(clickA, s)); ok {
		t.Error("second click on A should be debounced")
	}
	if subset.Mesh != mesh {
		t.Error("repeat click should not rebuild the highlight")
	}

	if el, ok := c.Pick(RaycastScene(clickB, s)); !ok || el != (selection.ElementID{ModelID: m.ID, ID: 1}) {
		t.Errorf("click on B: expected element 1, got %v %v", el, ok)
	}
	if ids, _ := l.SubsetIDs(m.ID, highlight); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("expected highlight of element 1, got %v", ids)
	}
}
