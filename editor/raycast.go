package editor

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"ifc-viewer/scene"
	"ifc-viewer/selection"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// ScreenToRay converts a screen-space mouse position to a world-space ray
func ScreenToRay(mouseX, mouseY float32, screenWidth, screenHeight float32, camera *scene.Camera) Ray {
	// Convert to normalized device coordinates (-1 to 1)
	ndcX := (2.0*mouseX)/screenWidth - 1.0
	ndcY := 1.0 - (2.0*mouseY)/screenHeight // flip Y

	invViewProj := camera.GetViewProjectionMatrix().Inv()
	near := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	nearPoint := near.Vec3().Mul(1 / near.W())
	farPoint := far.Vec3().Mul(1 / far.W())

	return Ray{
		Origin:    nearPoint,
		Direction: farPoint.Sub(nearPoint).Normalize(),
	}
}

// RaycastScene tests a ray against all visible, pickable meshes and returns
// the closest hit. Highlight overlays are not pickable, so face indices
// always refer to model meshes.
func RaycastScene(ray Ray, s *scene.Scene) selection.Intersection {
	var closest selection.Intersection
	closestDist := float32(math.MaxFloat32)

	for _, node := range s.GetVisibleNodes() {
		if !node.Pickable {
			continue
		}
		worldMatrix := node.GetWorldMatrix()

		// Broad phase: AABB test
		if node.Mesh.HasLocalAABB {
			t, hit := rayAABBIntersect(ray, node.Mesh.LocalAABB.Transform(worldMatrix))
			if !hit || t > closestDist {
				continue
			}
		}

		// Narrow phase: triangle test
		face, dist, hit := rayMeshIntersect(ray, node.Mesh, worldMatrix)
		if hit && dist < closestDist {
			closestDist = dist
			closest = selection.Intersection{Object: node, FaceIndex: face, HasFace: true}
		}
	}

	return closest
}

// rayAABBIntersect tests ray-AABB intersection
func rayAABBIntersect(ray Ray, aabb scene.AABB) (float32, bool) {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)
	for axis := 0; axis < 3; axis++ {
		invDir := 1.0 / ray.Direction[axis]
		t1 := (aabb.Min[axis] - ray.Origin[axis]) * invDir
		t2 := (aabb.Max[axis] - ray.Origin[axis]) * invDir
		tmin = max(tmin, min(t1, t2))
		tmax = min(tmax, max(t1, t2))
	}

	if tmax < 0 || tmin > tmax {
		return 0, false
	}

	return tmin, true
}

// rayMeshIntersect returns the closest face hit by the ray
func rayMeshIntersect(ray Ray, mesh *scene.Mesh, worldMatrix mgl32.Mat4) (int, float32, bool) {
	closestFace := -1
	closestDist := float32(math.MaxFloat32)

	for f := 0; f < mesh.FaceCount(); f++ {
		a, b, c := mesh.Triangle(f)
		v0 := mgl32.TransformCoordinate(a, worldMatrix)
		v1 := mgl32.TransformCoordinate(b, worldMatrix)
		v2 := mgl32.TransformCoordinate(c, worldMatrix)

		t, hit := mollerTrumbore(ray, v0, v1, v2)
		if hit && t < closestDist {
			closestDist = t
			closestFace = f
		}
	}

	return closestFace, closestDist, closestFace >= 0
}

// mollerTrumbore implements the Möller–Trumbore ray-triangle intersection algorithm
func mollerTrumbore(ray Ray, v0, v1, v2 mgl32.Vec3) (float32, bool) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
