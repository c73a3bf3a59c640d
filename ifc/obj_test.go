package ifc

import (
	"os"
	"path/filepath"
	"testing"
)

const testOBJ = `# exported walls
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
o IFCWALL#101
f 1//1 2//1 3//1 4//1
g window
f -4 -3 -2
`

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walls.obj")
	if err := os.WriteFile(path, []byte(testOBJ), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(nil)
	m, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m.Mesh().FaceCount(); got != 3 {
		t.Fatalf("expected quad split in two plus one triangle, got %d faces", got)
	}
	for face, want := range []int{101, 101, 1} {
		if id, ok := l.ResolveElementID(m.Mesh(), face); !ok || id != want {
			t.Errorf("face %d: expected %d, got %d %v", face, want, id, ok)
		}
	}
	wall, _ := l.Element(m.ID, 101)
	if wall.Type != "IFCWALL" || wall.Faces != 2 {
		t.Errorf("unexpected wall metadata %+v", wall)
	}
	window, _ := l.Element(m.ID, 1)
	if window.Name != "window" {
		t.Errorf("unexpected window metadata %+v", window)
	}
}

func TestLoadOBJErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.obj")
	if err := os.WriteFile(bad, []byte("v 0 0 0\nf 1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(nil)
	if _, err := l.Load(bad); err == nil {
		t.Error("expected error for out-of-range face index")
	}
	if _, err := l.Load(filepath.Join(dir, "model.ifc")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
