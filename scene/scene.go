package scene

import (
	"ifc-viewer/core"
)

// Scene is the container of everything the viewer draws and picks against.
type Scene struct {
	Root       *Node
	Camera     *Camera
	Background core.Color
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Background: core.Color{R: 0.85, G: 0.88, B: 0.92, A: 1.0},
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) RemoveNode(node *Node) {
	s.Root.RemoveChild(node)
}

// Contains reports whether node is attached anywhere below the root.
func (s *Scene) Contains(node *Node) bool {
	found := false
	s.Root.Traverse(func(n *Node) {
		if n == node {
			found = true
		}
	})
	return found
}

// GetVisibleNodes returns all nodes with meshes that are visible
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node

	s.Root.Traverse(func(node *Node) {
		if node.Visible && node.Mesh != nil {
			visible = append(visible, node)
		}
	})

	return visible
}

// Bounds returns the world-space AABB of every visible mesh.
func (s *Scene) Bounds() (AABB, bool) {
	var box AABB
	ok := false
	for _, node := range s.GetVisibleNodes() {
		if !node.Mesh.HasLocalAABB {
			continue
		}
		b := node.Mesh.LocalAABB.Transform(node.GetWorldMatrix())
		if !ok {
			box, ok = b, true
			continue
		}
		box = box.Union(b)
	}
	return box, ok
}
