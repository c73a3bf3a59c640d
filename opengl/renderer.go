package opengl

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"ifc-viewer/core"
	"ifc-viewer/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program   uint32
	mvpLoc    int32
	modelLoc  int32
	colorLoc  int32
	gpuMeshes map[*scene.Mesh]*GPUMesh
	fallback  *scene.Material
}

const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;

uniform mat4 mvp;
uniform mat4 model;

out vec3 fragNormal;

void main() {
    gl_Position = mvp * vec4(inPosition, 1.0);
    fragNormal  = mat3(model) * inNormal;
}
` + "\x00"

// flat color with simple directional shading
const fragSrc = `
#version 410 core
in vec3 fragNormal;

uniform vec4 color;

out vec4 outColor;

void main() {
    vec3  lightDir = normalize(vec3(0.5, -1.0, -0.5));
    float diff     = abs(dot(normalize(fragNormal), -lightDir));
    outColor = vec4(color.rgb * (0.45 + 0.55 * diff), color.a);
}
` + "\x00"

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if logger != nil {
		logger.Info("OpenGL ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	}

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("shader compile: %w", err)
	}

	gl.DepthFunc(gl.LEQUAL)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r := &Renderer{
		program:   prog,
		mvpLoc:    gl.GetUniformLocation(prog, gl.Str("mvp\x00")),
		modelLoc:  gl.GetUniformLocation(prog, gl.Str("model\x00")),
		colorLoc:  gl.GetUniformLocation(prog, gl.Str("color\x00")),
		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
		fallback:  scene.DefaultMaterial(),
	}
	return r, nil
}

// SetViewport resizes the OpenGL viewport.
func (r *Renderer) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Render draws the visible nodes of s: opaque meshes first, then translucent
// or overlay meshes in scene order.
func (r *Renderer) Render(s *scene.Scene) {
	bg := s.Background
	gl.ClearColor(bg.R, bg.G, bg.B, bg.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if s.Camera == nil {
		return
	}
	viewProj := s.Camera.GetViewProjectionMatrix()

	var overlay []*scene.Node
	for _, node := range s.GetVisibleNodes() {
		mat := r.material(node.Mesh)
		if mat.Transparent() || !mat.DepthTest {
			overlay = append(overlay, node)
			continue
		}
		r.drawNode(node, mat, viewProj)
	}

	gl.Enable(gl.BLEND)
	for _, node := range overlay {
		r.drawNode(node, r.material(node.Mesh), viewProj)
	}
	gl.Disable(gl.BLEND)
}

func (r *Renderer) material(mesh *scene.Mesh) *scene.Material {
	if mesh.Material != nil {
		return mesh.Material
	}
	return r.fallback
}

func (r *Renderer) drawNode(node *scene.Node, mat *scene.Material, viewProj mgl32.Mat4) {
	gpu := r.ensureUploaded(node.Mesh)
	if gpu == nil {
		return
	}
	if mat.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}

	model := node.GetWorldMatrix()
	mvp := viewProj.Mul4(model)

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])
	gl.Uniform4f(r.colorLoc, mat.Color.R, mat.Color.G, mat.Color.B, mat.Opacity)

	gl.BindVertexArray(gpu.VAO)
	gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		gl.DeleteBuffers(1, &gpu.EBO)
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// ReleaseUnused frees the buffers of meshes no longer reachable from s, such
// as replaced highlight subsets.
func (r *Renderer) ReleaseUnused(s *scene.Scene) {
	live := make(map[*scene.Mesh]bool)
	s.Root.Traverse(func(n *scene.Node) {
		if n.Mesh != nil {
			live[n.Mesh] = true
		}
	})
	for mesh := range r.gpuMeshes {
		if !live[mesh] {
			r.ReleaseMesh(mesh)
		}
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	gl.DeleteProgram(r.program)
}

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	gpu := &GPUMesh{IndexCount: int32(len(mesh.Indices))}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.GenBuffers(1, &gpu.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
		len(mesh.Indices)*4,
		gl.Ptr(mesh.Indices),
		gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

// ── shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
