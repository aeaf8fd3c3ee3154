// Package renderer draws uploaded meshes with a single lit shader.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/trimesh/internal/engine/gpu"
	"github.com/Faultbox/trimesh/internal/engine/lighting"
	"github.com/Faultbox/trimesh/internal/engine/shader"
	"github.com/Faultbox/trimesh/internal/logger"
	"github.com/Faultbox/trimesh/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer owns the GL state and the mesh program.
type Renderer struct {
	config  Config
	program *shader.Program

	Light       lighting.Directional
	MeshColor   math.Vec3
	BoundsColor math.Vec3
	Wireframe   bool
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:      cfg,
		Light:       lighting.DefaultLight,
		MeshColor:   math.Vec3{X: 0.8, Y: 0.8, Z: 0.85},
		BoundsColor: math.Vec3{X: 1, Y: 0.8, Z: 0.2},
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.New(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh program: %w", err)
	}
	logger.Debug("mesh program created", zap.Uint32("program", r.program.ID))

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport width over height.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawMesh draws m lit from a fixed direction. When checker is set the
// UVs modulate the base color so texture coordinates can be inspected.
func (r *Renderer) DrawMesh(m *gpu.Mesh, viewProj, model math.Mat4, checker bool) {
	r.program.Use()
	r.program.SetMat4("uMVP", viewProj.Mul(model))
	r.program.SetMat4("uModel", model)
	r.program.SetVec3("uLightDir", r.Light.Direction())
	r.program.SetVec3("uColor", r.MeshColor)
	r.program.SetBool("uUnlit", false)
	r.program.SetBool("uChecker", checker)

	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	m.Draw()
}

// DrawLines draws m unlit in the bounds color.
func (r *Renderer) DrawLines(m *gpu.Mesh, viewProj, model math.Mat4) {
	r.program.Use()
	r.program.SetMat4("uMVP", viewProj.Mul(model))
	r.program.SetMat4("uModel", model)
	r.program.SetVec3("uColor", r.BoundsColor)
	r.program.SetBool("uUnlit", true)
	r.program.SetBool("uChecker", false)
	m.Draw()
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
