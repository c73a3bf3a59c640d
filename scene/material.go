package scene

import "ifc-viewer/core"

// Material describes surface appearance for a mesh. Materials are shared by
// pointer; code that receives one should treat it as read-only.
type Material struct {
	Name    string
	Color   core.Color
	Opacity float32

	// DepthTest off draws the mesh on top of everything else.
	DepthTest bool
}

// DefaultMaterial returns a plain opaque grey material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Color:     core.ColorGray,
		Opacity:   1,
		DepthTest: true,
	}
}

// NewMaterial creates an opaque material with the given color.
func NewMaterial(name string, color core.Color) *Material {
	return &Material{
		Name:      name,
		Color:     color,
		Opacity:   color.A,
		DepthTest: true,
	}
}

// HighlightMaterial is the translucent overlay used for selected elements.
func HighlightMaterial(color core.Color) *Material {
	return &Material{
		Name:      "Highlight",
		Color:     color,
		Opacity:   0.6,
		DepthTest: false,
	}
}

// Transparent reports whether the material needs alpha blending.
func (m *Material) Transparent() bool {
	return m.Opacity < 1
}
