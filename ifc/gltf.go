package ifc

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"ifc-viewer/core"
)

// ExpressIDAttribute is the per-vertex attribute carrying IFC element ids.
const ExpressIDAttribute = "_EXPRESSID"

// LoadGLTF opens a .glb or .gltf export of an IFC model and merges all of its
// triangle primitives into one model mesh in world space.
//
// Element ids come from the _EXPRESSID vertex attribute when present,
// otherwise from an "expressID" entry in the node extras, otherwise from the
// node index. Node extras "type" and "name" fill the element metadata.
func (l *Loader) LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	b := &gltfBuilder{doc: doc, meta: make(map[int]Element)}
	for _, root := range rootNodes(doc) {
		if err := b.visit(root, mgl32.Ident4()); err != nil {
			return nil, fmt.Errorf("gltf %q: %w", path, err)
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model, err := l.AddModel(name, b.vertices, b.indices, b.ids)
	if err != nil {
		return nil, err
	}
	for id, meta := range b.meta {
		if el, ok := model.Elements[id]; ok {
			el.Type = meta.Type
			el.Name = meta.Name
		}
	}
	return model, nil
}

type gltfBuilder struct {
	doc      *gltf.Document
	vertices []core.Vertex
	indices  []uint32
	ids      []int
	meta     map[int]Element
}

func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	// No default scene: collect all parentless nodes
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (b *gltfBuilder) visit(nodeIdx int, parent mgl32.Mat4) error {
	if nodeIdx < 0 || nodeIdx >= len(b.doc.Nodes) {
		return fmt.Errorf("node %d out of range", nodeIdx)
	}
	gn := b.doc.Nodes[nodeIdx]
	world := parent.Mul4(localMatrix(gn))

	if gn.Mesh != nil && *gn.Mesh < len(b.doc.Meshes) {
		nodeID, meta := nodeElement(nodeIdx, gn)
		if meta.Type != "" || meta.Name != "" {
			b.meta[nodeID] = meta
		}
		for pi, prim := range b.doc.Meshes[*gn.Mesh].Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			if err := b.addPrimitive(prim, world, nodeID); err != nil {
				return fmt.Errorf("mesh %d prim %d: %w", *gn.Mesh, pi, err)
			}
		}
	}

	for _, child := range gn.Children {
		if err := b.visit(child, world); err != nil {
			return err
		}
	}
	return nil
}

func (b *gltfBuilder) addPrimitive(prim *gltf.Primitive, world mgl32.Mat4, nodeID int) error {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	if posIdx >= len(b.doc.Accessors) {
		return fmt.Errorf("POSITION accessor %d out of range", posIdx)
	}
	positions, err := modeler.ReadPosition(b.doc, b.doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if idx >= len(b.doc.Accessors) {
			return fmt.Errorf("NORMAL accessor %d out of range", idx)
		}
		normals, err = modeler.ReadNormal(b.doc, b.doc.Accessors[idx], nil)
		if err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}

	var vertexIDs []int
	if idx, ok := prim.Attributes[ExpressIDAttribute]; ok {
		vertexIDs, err = readIDs(b.doc, idx)
		if err != nil {
			return fmt.Errorf("%s: %w", ExpressIDAttribute, err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if *prim.Indices >= len(b.doc.Accessors) {
			return fmt.Errorf("indices accessor %d out of range", *prim.Indices)
		}
		indices, err = modeler.ReadIndices(b.doc, b.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	normalMat := world.Mat3().Inv().Transpose()
	base := uint32(len(b.vertices))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.TransformCoordinate(mgl32.Vec3{p[0], p[1], p[2]}, world),
			Normal:   mgl32.Vec3{0, 1, 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = normalMat.Mul3x1(mgl32.Vec3{n[0], n[1], n[2]}).Normalize()
		}
		id := nodeID
		if i < len(vertexIDs) {
			id = vertexIDs[i]
		}
		b.vertices = append(b.vertices, v)
		b.ids = append(b.ids, id)
	}
	for _, idx := range indices[:len(indices)/3*3] {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d of %d vertices: %w", idx, len(positions), ErrBadIndex)
		}
		b.indices = append(b.indices, base+idx)
	}
	return nil
}

// readIDs decodes a scalar id accessor of any numeric component type.
func readIDs(doc *gltf.Document, accessor int) ([]int, error) {
	if accessor >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessor)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []float32:
		return convertIDs(v), nil
	case []uint32:
		return convertIDs(v), nil
	case []uint16:
		return convertIDs(v), nil
	case []uint8:
		return convertIDs(v), nil
	case []int16:
		return convertIDs(v), nil
	case []int8:
		return convertIDs(v), nil
	default:
		return nil, fmt.Errorf("unsupported id accessor type %T", data)
	}
}

func convertIDs[T float32 | uint32 | uint16 | uint8 | int16 | int8](in []T) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

func localMatrix(gn *gltf.Node) mgl32.Mat4 {
	if m := gn.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	s := gn.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// nodeElement reads the element id and metadata stored in a node's extras.
func nodeElement(nodeIdx int, gn *gltf.Node) (int, Element) {
	meta := Element{ID: nodeIdx, Name: gn.Name}
	extras := extrasMap(gn.Extras)
	if extras == nil {
		return nodeIdx, meta
	}
	if v, ok := extras["expressID"].(float64); ok {
		meta.ID = int(v)
	}
	if v, ok := extras["type"].(string); ok {
		meta.Type = v
	}
	if v, ok := extras["name"].(string); ok {
		meta.Name = v
	}
	return meta.ID, meta
}

func extrasMap(extras any) map[string]any {
	switch v := extras.(type) {
	case map[string]any:
		return v
	case json.RawMessage:
		var m map[string]any
		if err := json.Unmarshal(v, &m); err != nil {
			return nil
		}
		return m
	default:
		return nil
	}
}
