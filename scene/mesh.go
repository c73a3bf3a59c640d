package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"ifc-viewer/core"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{min(b.Min[0], o.Min[0]), min(b.Min[1], o.Min[1]), min(b.Min[2], o.Min[2])},
		Max: mgl32.Vec3{max(b.Max[0], o.Max[0]), max(b.Max[1], o.Max[1]), max(b.Max[2], o.Max[2])},
	}
}

// Transform returns the box enclosing all eight transformed corners.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	var out AABB
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		p := mgl32.TransformCoordinate(corner, m)
		if i == 0 {
			out = AABB{Min: p, Max: p}
			continue
		}
		out = out.Union(AABB{Min: p, Max: p})
	}
	return out
}

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32

	// ModelID names the loaded model this geometry belongs to; -1 for helper
	// geometry that is not part of any model.
	ModelID int

	// Cached local-space AABB (computed by CreateMeshFromData).
	LocalAABB    AABB
	HasLocalAABB bool

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	// Do not access directly; use the renderer's API.
	GPUData interface{}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		ModelID:  -1,
	}
	m.RecomputeBounds()
	return m
}

// RecomputeBounds refreshes LocalAABB after the vertex slice changed.
func (m *Mesh) RecomputeBounds() {
	m.HasLocalAABB = len(m.Vertices) > 0
	if !m.HasLocalAABB {
		m.LocalAABB = AABB{}
		return
	}
	m.LocalAABB = computeLocalAABB(m.Vertices)
}

// FaceCount is the number of indexed triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the vertex positions of face i in local space.
func (m *Mesh) Triangle(i int) (a, b, c mgl32.Vec3) {
	i0, i1, i2 := m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
	return m.Vertices[i0].Position, m.Vertices[i1].Position, m.Vertices[i2].Position
}

// computeLocalAABB returns the tight AABB of the given vertex positions.
func computeLocalAABB(vertices []core.Vertex) AABB {
	box := AABB{Min: vertices[0].Position, Max: vertices[0].Position}
	for i := 1; i < len(vertices); i++ {
		p := vertices[i].Position
		box = box.Union(AABB{Min: p, Max: p})
	}
	return box
}
