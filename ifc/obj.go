package ifc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"ifc-viewer/core"
)

// LoadOBJ reads a Wavefront .obj export where every "o" or "g" block is one
// element. A block named "IFCWALL#123" or "123" gets id 123 (and type
// IFCWALL); other blocks are numbered from 1 in file order.
func (l *Loader) LoadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obj open %q: %w", path, err)
	}
	defer f.Close()

	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		vertices  []core.Vertex
		indices   []uint32
		ids       []int
		meta      = make(map[int]Element)
		current   = 0
		nextAuto  = 1
	)

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}

		switch parts[0] {
		case "v", "vn":
			v, err := parseOBJVec3(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: %w", path, line, err)
			}
			if parts[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v)
			}
		case "o", "g":
			name := strings.Join(parts[1:], " ")
			el := parseOBJElement(name)
			if el.ID == 0 {
				el.ID = nextAuto
				nextAuto++
			}
			current = el.ID
			meta[el.ID] = el
		case "f":
			if len(parts) < 4 {
				return nil, fmt.Errorf("obj %q line %d: face needs 3 vertices", path, line)
			}
			base := uint32(len(vertices))
			for _, spec := range parts[1:] {
				v, err := parseOBJFaceVertex(spec, positions, normals)
				if err != nil {
					return nil, fmt.Errorf("obj %q line %d: %w", path, line, err)
				}
				vertices = append(vertices, v)
				ids = append(ids, current)
			}
			// Fan-triangulate polygons
			for i := uint32(1); i+1 < uint32(len(parts)-1); i++ {
				indices = append(indices, base, base+i, base+i+1)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model, err := l.AddModel(name, vertices, indices, ids)
	if err != nil {
		return nil, err
	}
	for id, m := range meta {
		if el, ok := model.Elements[id]; ok {
			el.Type = m.Type
			el.Name = m.Name
		}
	}
	return model, nil
}

// Load picks the reader from the file extension.
func (l *Loader) Load(path string) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return l.LoadOBJ(path)
	case ".glb", ".gltf":
		return l.LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%q: unsupported model format", path)
	}
}

func parseOBJElement(name string) Element {
	el := Element{Name: name}
	typ, idStr, found := strings.Cut(name, "#")
	if !found {
		idStr = name
		typ = ""
	}
	if id, err := strconv.Atoi(idStr); err == nil && id > 0 {
		el.ID = id
		el.Type = typ
	}
	return el
}

func parseOBJVec3(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("want 3 components, got %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseOBJFaceVertex resolves "v", "v/vt", "v//vn" or "v/vt/vn"; negative
// indices count from the end.
func parseOBJFaceVertex(spec string, positions, normals []mgl32.Vec3) (core.Vertex, error) {
	refs := strings.Split(spec, "/")
	pi, err := objIndex(refs[0], len(positions))
	if err != nil {
		return core.Vertex{}, fmt.Errorf("face vertex %q: %w", spec, err)
	}
	v := core.Vertex{Position: positions[pi], Normal: mgl32.Vec3{0, 1, 0}, Color: core.ColorWhite}
	if len(refs) == 3 && refs[2] != "" {
		ni, err := objIndex(refs[2], len(normals))
		if err != nil {
			return core.Vertex{}, fmt.Errorf("face vertex %q: %w", spec, err)
		}
		v.Normal = normals[ni]
	}
	return v, nil
}

func objIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = n + i
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %s out of range", s)
	}
	return i, nil
}
