// Package app implements the desktop pet viewer loop: it owns the
// window, feeds input to the engine, and paces frames.
package app

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/gameswu/nyadeskpet-live2d/internal/assets"
	"github.com/gameswu/nyadeskpet-live2d/internal/config"
	"github.com/gameswu/nyadeskpet-live2d/internal/engine"
	"github.com/gameswu/nyadeskpet-live2d/internal/engine/input"
	"github.com/gameswu/nyadeskpet-live2d/internal/engine/window"
	"github.com/gameswu/nyadeskpet-live2d/internal/logger"
	"github.com/gameswu/nyadeskpet-live2d/pkg/live2d"
)

const (
	wheelZoomStep = 0.1
	minZoom       = 0.2
	maxZoom       = 8.0
)

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	running bool

	window *window.Window
	input  *input.Input
	engine *engine.Engine

	// Drag state for panning
	dragging   bool
	lastMouseX int
	lastMouseY int

	// Expression cycling state for the E key
	exprCursor int
}

// New creates the viewer: window and GL context, native core, engine.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	var err error
	a.window, err = window.New(window.Config{
		Title:  "NyaDeskPet",
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
		OnTop:  cfg.Window.OnTop,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	core, err := live2d.LoadCore(cfg.Model.CorePath)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("loading core library: %w", err)
	}
	logger.Info("core library loaded", zap.Uint32("version", core.Version()))

	a.engine = engine.New(core)
	a.input = input.New()
	return a, nil
}

// Run executes the viewer loop until quit.
func (a *App) Run() error {
	if !a.engine.Init() {
		return fmt.Errorf("engine init failed")
	}

	w, h := a.window.DrawableSize()
	a.engine.OnSurfaceChanged(w, h)

	loader := assets.NewDir(a.cfg.Model.Dir)
	if !a.engine.LoadModel(loader, a.cfg.Model.File) {
		return fmt.Errorf("loading model %s/%s failed", a.cfg.Model.Dir, a.cfg.Model.File)
	}
	a.engine.SetModelTransform(a.cfg.Model.Scale, a.cfg.Model.X, a.cfg.Model.Y)

	logger.Info("viewer ready",
		zap.Strings("motionGroups", a.engine.MotionGroups()),
		zap.Strings("expressions", a.engine.Expressions()),
	)

	a.running = true
	for a.running {
		if a.input.Update() {
			a.running = false
			break
		}
		for _, ev := range a.input.Events() {
			a.handleEvent(ev)
		}

		a.engine.OnDrawFrame()
		a.window.SwapBuffers()
	}

	return nil
}

func (a *App) handleEvent(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		w, h := a.window.DrawableSize()
		a.engine.OnSurfaceChanged(w, h)

	case input.EventKeyDown:
		a.handleKey(ev.Key)

	case input.EventMouseWheel:
		view := a.engine.ViewTransform()
		scale := view.Scale * (1 + wheelZoomStep*float32(ev.WheelY))
		if scale < minZoom {
			scale = minZoom
		}
		if scale > maxZoom {
			scale = maxZoom
		}
		a.engine.SetModelTransform(scale, view.OffsetX, view.OffsetY)

	case input.EventMouseDown:
		if ev.Button == 1 {
			a.dragging = true
			a.lastMouseX, a.lastMouseY = ev.MouseX, ev.MouseY
		}

	case input.EventMouseUp:
		if ev.Button == 1 {
			a.dragging = false
		}

	case input.EventMouseMove:
		if !a.dragging {
			return
		}
		w, h := a.window.GetSize()
		if w == 0 || h == 0 {
			return
		}
		view := a.engine.ViewTransform()
		// Pixel delta to NDC; window Y grows downward, NDC upward.
		dx := float32(ev.MouseX-a.lastMouseX) * 2 / float32(w)
		dy := float32(a.lastMouseY-ev.MouseY) * 2 / float32(h)
		a.lastMouseX, a.lastMouseY = ev.MouseX, ev.MouseY
		a.engine.SetModelTransform(view.Scale, view.OffsetX+dx, view.OffsetY+dy)
	}
}

func (a *App) handleKey(key sdl.Scancode) {
	switch {
	case key == sdl.SCANCODE_ESCAPE:
		a.running = false

	case key == sdl.SCANCODE_R:
		a.engine.SetModelTransform(1, 0, 0)

	case key == sdl.SCANCODE_E:
		// Cycle expressions, with a neutral step at the end of the list.
		exprs := a.engine.Expressions()
		if len(exprs) == 0 {
			return
		}
		if a.exprCursor < len(exprs) {
			a.engine.SetExpression(exprs[a.exprCursor])
		} else {
			a.engine.SetExpression("")
		}
		a.exprCursor = (a.exprCursor + 1) % (len(exprs) + 1)

	case key >= sdl.SCANCODE_1 && key <= sdl.SCANCODE_9:
		groups := a.engine.MotionGroups()
		n := int(key - sdl.SCANCODE_1)
		if n < len(groups) {
			a.engine.StartMotion(groups[n], 0, 2)
		}
	}
}

// Close saves the user transform back to config and tears down.
func (a *App) Close() {
	if a.engine != nil {
		view := a.engine.ViewTransform()
		a.cfg.Model.Scale = view.Scale
		a.cfg.Model.X = view.OffsetX
		a.cfg.Model.Y = view.OffsetY
		if err := a.cfg.Save(); err != nil {
			logger.Warn("saving config", zap.Error(err))
		}

		a.engine.Cleanup()
	}
	if a.window != nil {
		a.window.Close()
	}
}
