// Package engine drives a rigged character: it owns the loaded model,
// advances animation, physics and pose every frame, and renders through
// the OpenGL pipeline.
//
// All methods except Post must be called on the render thread. Post is
// the thread-safe handoff: callers on other threads queue a closure and
// it runs at the top of the next OnDrawFrame.
package engine

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gameswu/nyadeskpet-live2d/internal/assets"
	"github.com/gameswu/nyadeskpet-live2d/internal/engine/renderer"
	"github.com/gameswu/nyadeskpet-live2d/internal/engine/texture"
	"github.com/gameswu/nyadeskpet-live2d/internal/logger"
	"github.com/gameswu/nyadeskpet-live2d/pkg/live2d"
	"github.com/gameswu/nyadeskpet-live2d/pkg/math"
)

// Frame pacing limits. A frame longer than maxFrameDelta (window drag,
// app suspend) advances animation by the cap instead of jumping.
const (
	maxFrameDelta   = float32(0.1)
	firstFrameDelta = float32(1.0 / 60.0)
)

type coreVersioner interface {
	Version() uint32
}

// Engine is the top-level animation and rendering driver.
type Engine struct {
	core live2d.Loader
	rend *renderer.Renderer

	model *Model

	view       renderer.ViewTransform
	proj       math.Mat4
	viewWidth  int
	viewHeight int

	lastFrame time.Time
	hasFrame  bool

	mu      sync.Mutex
	pending []func()

	initialized bool
}

// New creates an engine over the given rig loader. No GL calls happen
// until Init.
func New(core live2d.Loader) *Engine {
	return &Engine{
		core: core,
		view: renderer.DefaultView(),
		proj: math.Identity(),
	}
}

// Post queues fn to run on the render thread at the start of the next
// frame. Safe to call from any goroutine.
func (e *Engine) Post(fn func()) {
	e.mu.Lock()
	e.pending = append(e.pending, fn)
	e.mu.Unlock()
}

func (e *Engine) drainPending() {
	e.mu.Lock()
	cmds := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, fn := range cmds {
		fn()
	}
}

// Init builds the GPU pipeline. Call on the render thread once a GL
// context exists, and again after every context loss; handles from the
// previous context are forgotten, not deleted, and any loaded model is
// dropped so the host can reload it against the new context.
func (e *Engine) Init() bool {
	if e.rend != nil {
		e.rend.Forget()
		e.rend = nil
	}
	if e.model != nil {
		e.model.release()
		e.model = nil
	}

	if err := gl.Init(); err != nil {
		logger.Error("OpenGL init failed", zap.Error(err))
		return false
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	rend, err := renderer.New()
	if err != nil {
		logger.Error("engine init failed", zap.Error(err))
		return false
	}
	e.rend = rend
	if e.viewWidth > 0 && e.viewHeight > 0 {
		e.rend.Resize(e.viewWidth, e.viewHeight)
	}

	e.initialized = true
	if v, ok := e.core.(coreVersioner); ok {
		logger.Info("engine initialized", zap.Uint32("coreVersion", v.Version()))
	} else {
		logger.Info("engine initialized")
	}
	return true
}

// LoadModel loads a model bundle, replacing any currently loaded model.
// modelPath is the model3.json location relative to the loader root.
// On failure the engine is left without a model.
func (e *Engine) LoadModel(loader assets.Loader, modelPath string) bool {
	if e.model != nil {
		e.model.release()
		e.model = nil
		if e.rend != nil {
			e.rend.DeleteTextures()
		}
	}

	m, err := loadModel(e.core, loader, modelPath)
	if err != nil {
		logger.Error("model load failed", zap.String("path", modelPath), zap.Error(err))
		return false
	}

	if e.rend != nil {
		e.rend.SetTextures(e.loadTextures(m))
	}

	e.model = m
	e.updateProjection()
	logger.Info("model loaded",
		zap.String("path", modelPath),
		zap.Int("parameters", m.params.Count()),
		zap.Int("drawables", m.rig.DrawableCount()),
		zap.Int("textures", m.textureCount),
	)
	return true
}

// loadTextures decodes and uploads the bundle's textures. A texture
// that fails to decode leaves a zero entry so dependent drawables are
// skipped instead of failing the whole load.
func (e *Engine) loadTextures(m *Model) []uint32 {
	textures := make([]uint32, len(m.bundle.TexturePaths))
	for i, p := range m.bundle.TexturePaths {
		raw, err := m.loader.Read(m.join(p))
		if err != nil {
			logger.Error("cannot read texture", zap.String("path", p), zap.Error(err))
			continue
		}
		img, err := texture.DecodePNG(raw)
		if err != nil {
			logger.Error("cannot decode texture", zap.String("path", p), zap.Error(err))
			continue
		}
		textures[i] = e.rend.UploadTexture(img)
	}
	return textures
}

// OnSurfaceChanged updates the viewport and recomputes the projection.
func (e *Engine) OnSurfaceChanged(width, height int) {
	e.viewWidth = width
	e.viewHeight = height
	if e.rend != nil {
		e.rend.Resize(width, height)
	}
	e.updateProjection()
	logger.Debug("surface changed", zap.Int("width", width), zap.Int("height", height))
}

// OnDrawFrame runs queued commands, advances the model by the wall-clock
// delta since the previous frame, and renders.
func (e *Engine) OnDrawFrame() {
	e.drainPending()

	now := time.Now()
	dt := firstFrameDelta
	if e.hasFrame {
		dt = float32(now.Sub(e.lastFrame).Seconds())
		if dt > maxFrameDelta {
			dt = maxFrameDelta
		}
		if dt < 0 {
			dt = 0
		}
	}
	e.lastFrame = now
	e.hasFrame = true

	e.Step(dt)
	e.render()
}

// Step advances animation, physics and pose by dt seconds without
// rendering. OnDrawFrame calls this with the measured frame delta.
func (e *Engine) Step(dt float32) {
	if e.model != nil {
		e.model.update(dt)
	}
}

func (e *Engine) render() {
	if e.rend == nil {
		return
	}
	renderer.ClearTransparent()
	if e.model != nil {
		e.rend.Draw(e.model.rig, e.proj)
	}
}

// StartMotion requests a motion from the named group. The request is
// rejected when an active motion with a strictly higher priority is
// playing, or the motion cannot be loaded.
func (e *Engine) StartMotion(group string, index, priority int) bool {
	if e.model == nil {
		return false
	}
	if !e.model.anim.CanStartMotion(priority) {
		logger.Debug("motion rejected",
			zap.String("group", group), zap.Int("priority", priority))
		return false
	}
	motion, ok := e.model.motion(group, index)
	if !ok {
		return false
	}
	started := e.model.anim.StartMotion(motion, priority)
	if started {
		logger.Info("motion started",
			zap.String("group", group), zap.Int("index", index), zap.Int("priority", priority))
	}
	return started
}

// SetExpression activates the named expression with a fade-in; an empty
// name fades the current expression out. Unknown names are ignored.
func (e *Engine) SetExpression(id string) {
	if e.model == nil {
		return
	}
	e.model.anim.SetExpression(id)
}

// SetParameterValue installs an external override for the parameter,
// blended over the animated value at the given weight each frame. A
// weight below 0.001 removes the override. Unknown parameters are
// ignored.
func (e *Engine) SetParameterValue(id string, value, weight float32) {
	if e.model == nil {
		return
	}
	idx, ok := e.model.params.Lookup(id)
	if !ok {
		return
	}
	e.model.anim.SetOverride(idx, value, weight)
}

// GetParameterValue returns the parameter's current value, 0 if unknown.
func (e *Engine) GetParameterValue(id string) float32 {
	if e.model == nil {
		return 0
	}
	idx, ok := e.model.params.Lookup(id)
	if !ok {
		return 0
	}
	return e.model.params.Values[idx]
}

// GetParameterRange returns max-min for the parameter, 1 if unknown.
func (e *Engine) GetParameterRange(id string) float32 {
	if e.model == nil {
		return 1
	}
	idx, ok := e.model.params.Lookup(id)
	if !ok {
		return 1
	}
	return e.model.params.Maximums[idx] - e.model.params.Minimums[idx]
}

// SetModelTransform sets the user zoom and NDC pan offset.
func (e *Engine) SetModelTransform(scale, offsetX, offsetY float32) {
	e.view = renderer.ViewTransform{Scale: scale, OffsetX: offsetX, OffsetY: offsetY}
	e.updateProjection()
}

// ViewTransform returns the current user zoom and pan.
func (e *Engine) ViewTransform() renderer.ViewTransform {
	return e.view
}

// MotionGroups returns the loaded model's motion group names, sorted.
func (e *Engine) MotionGroups() []string {
	if e.model == nil {
		return nil
	}
	groups := make([]string, 0, len(e.model.bundle.MotionGroups))
	for name := range e.model.bundle.MotionGroups {
		groups = append(groups, name)
	}
	sort.Strings(groups)
	return groups
}

// Expressions returns the loaded model's expression names in bundle order.
func (e *Engine) Expressions() []string {
	if e.model == nil {
		return nil
	}
	names := make([]string, 0, len(e.model.bundle.Expressions))
	for _, ref := range e.model.bundle.Expressions {
		names = append(names, ref.Name)
	}
	return names
}

// IsModelLoaded reports whether a model is currently loaded.
func (e *Engine) IsModelLoaded() bool {
	return e.model != nil
}

// CoreVersion returns the rig core's version word, 0 if unavailable.
func (e *Engine) CoreVersion() uint32 {
	if v, ok := e.core.(coreVersioner); ok {
		return v.Version()
	}
	return 0
}

// Cleanup releases the model and all GPU resources.
func (e *Engine) Cleanup() {
	if e.model != nil {
		e.model.release()
		e.model = nil
	}
	if e.rend != nil {
		e.rend.Destroy()
		e.rend = nil
	}
	e.initialized = false
	logger.Info("engine cleaned up")
}

func (e *Engine) updateProjection() {
	if e.model == nil || e.viewWidth <= 0 || e.viewHeight <= 0 {
		e.proj = math.Identity()
		return
	}
	e.proj = renderer.Projection(e.model.rig.Canvas(), e.viewWidth, e.viewHeight, e.view)
}
