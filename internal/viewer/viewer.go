// Package viewer implements the mesh viewer loop: load, upload, orbit and
// reload on change.
package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/trimesh/internal/config"
	"github.com/Faultbox/trimesh/internal/engine/camera"
	"github.com/Faultbox/trimesh/internal/engine/debug"
	"github.com/Faultbox/trimesh/internal/engine/gpu"
	"github.com/Faultbox/trimesh/internal/engine/input"
	"github.com/Faultbox/trimesh/internal/engine/renderer"
	"github.com/Faultbox/trimesh/internal/engine/window"
	"github.com/Faultbox/trimesh/internal/logger"
	"github.com/Faultbox/trimesh/internal/watch"
	"github.com/Faultbox/trimesh/pkg/formats"
	"github.com/Faultbox/trimesh/pkg/math"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

const spinSpeed = 0.6 // radians per second

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	path    string
	running bool

	window      *window.Window
	renderer    *renderer.Renderer
	input       *input.Input
	camera      *camera.OrbitCamera
	watcher     *watch.Watcher
	screenshots *debug.ScreenshotCapture

	model  *gpu.Mesh
	bounds *gpu.Mesh
	hasUVs bool

	angle      float32
	spin       bool
	showBounds bool
	checker    bool
}

// New creates the window and GL state and loads path.
func New(cfg *config.Config, path string) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("path", path),
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
	)

	v := &Viewer{
		cfg:         cfg,
		path:        path,
		input:       input.New(),
		camera:      camera.NewOrbitCamera(),
		screenshots: debug.NewScreenshotCapture("screenshots", "trimesh"),
		spin:        true,
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "trimesh - " + filepath.Base(path),
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just created.
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{Width: width, Height: height})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	m, _, err := v.load(path)
	if err != nil {
		v.Close()
		return nil, err
	}
	if err := v.setMesh(m); err != nil {
		v.Close()
		return nil, err
	}

	if cfg.Viewer.Watch {
		v.watcher, err = watch.New(path, v.load)
		if err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		}
	}

	logger.Info("viewer initialized")
	return v, nil
}

// load parses and resolves path with the configured policy, logging diagnostics.
// It runs on the watcher goroutine as well as the main thread and touches no GL state.
func (v *Viewer) load(path string) (*mesh.Mesh, []formats.Diagnostic, error) {
	return mesh.LoadOBJFile(path,
		formats.WithIndexPolicy(v.cfg.IndexPolicy()),
		formats.WithDiagnosticFunc(logger.DiagnosticFunc(path)),
	)
}

// setMesh prepares m and swaps it in for the current GPU mesh.
func (v *Viewer) setMesh(m *mesh.Mesh) error {
	prepared, err := Prepare(m, v.cfg.Pipeline, v.cfg.Viewer.Interleaved)
	if err != nil {
		return err
	}

	var model *gpu.Mesh
	if prepared.Buffer != nil {
		model, err = gpu.Upload(prepared.Buffer)
	} else {
		model, err = gpu.UploadInterleaved(prepared.Vertices, prepared.Topology)
	}
	if err != nil {
		return fmt.Errorf("uploading mesh: %w", err)
	}

	bounds, err := gpu.Upload(debug.BoundsBuffer(prepared.Bounds, 0))
	if err != nil {
		model.Release()
		return fmt.Errorf("uploading bounds: %w", err)
	}

	v.releaseMeshes()
	v.model, v.bounds = model, bounds
	v.hasUVs = prepared.HasUVs
	v.camera.FitToBounds(prepared.Bounds)

	logger.Info("mesh uploaded",
		zap.Int("vertices", model.Count()),
		zap.Stringer("topology", model.Topology()),
		zap.Bool("uvs", prepared.HasUVs),
		zap.Bool("interleaved", prepared.Buffer == nil),
	)
	return nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.pollReload()

		if v.spin {
			v.angle += spinSpeed * dt
		}
		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
		case input.EventDrag:
			v.camera.HandleDrag(event.DX, event.DY)
		case input.EventZoom:
			v.camera.HandleZoom(event.Zoom)
		case input.EventFileDrop:
			v.open(event.Path)
		case input.EventKeyDown:
			v.handleKey(event.Key)
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_SPACE:
		v.spin = !v.spin
	case sdl.SCANCODE_B:
		v.showBounds = !v.showBounds
	case sdl.SCANCODE_C:
		v.checker = !v.checker
	case sdl.SCANCODE_F:
		v.renderer.Wireframe = !v.renderer.Wireframe
	case sdl.SCANCODE_L:
		v.renderer.Light = v.renderer.Light.Rotate(30)
	case sdl.SCANCODE_R:
		v.angle = 0
		v.open(v.path)
	case sdl.SCANCODE_F12:
		v.screenshot()
	}
}

// open replaces the current mesh with path. The old mesh stays on failure.
func (v *Viewer) open(path string) {
	m, _, err := v.load(path)
	if err == nil {
		err = v.setMesh(m)
	}
	if err != nil {
		logger.Error("failed to open mesh", zap.String("path", path), zap.Error(err))
		return
	}

	if path != v.path && v.watcher != nil {
		v.watcher.Close()
		if v.watcher, err = watch.New(path, v.load); err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		}
	}
	v.path = path
	v.window.SetTitle("trimesh - " + filepath.Base(path))
}

// pollReload uploads the latest mesh delivered by the watcher, if any.
func (v *Viewer) pollReload() {
	if v.watcher == nil {
		return
	}
	select {
	case r := <-v.watcher.Reloads():
		if r.Err != nil {
			return
		}
		if err := v.setMesh(r.Mesh); err != nil {
			logger.Error("failed to apply reload", zap.String("path", r.Path), zap.Error(err))
		}
	default:
	}
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) render() {
	v.renderer.Begin()

	viewProj := v.camera.ProjectionMatrix(v.renderer.Aspect()).Mul(v.camera.ViewMatrix())
	model := math.RotateY(v.angle)

	if v.model != nil {
		v.renderer.DrawMesh(v.model, viewProj, model, v.checker && v.hasUVs)
	}
	if v.showBounds && v.bounds != nil {
		v.renderer.DrawLines(v.bounds, viewProj, model)
	}
}

func (v *Viewer) releaseMeshes() {
	if v.model != nil {
		v.model.Release()
		v.model = nil
	}
	if v.bounds != nil {
		v.bounds.Release()
		v.bounds = nil
	}
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.watcher != nil {
		v.watcher.Close()
	}
	v.releaseMeshes()
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
