// Package animation computes the per-frame parameter values of a loaded
// model: looping idle motion, prioritized triggered motions with fade,
// expression blending and externally injected parameter overrides.
package animation

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/gameswu/nyadeskpet-live2d/internal/logger"
	"github.com/gameswu/nyadeskpet-live2d/pkg/formats"
	"github.com/gameswu/nyadeskpet-live2d/pkg/live2d"
)

// ExpressionFadeSpeed is the expression fade rate in weight units per
// second, matching the feel of the Cubism reference runtime.
const ExpressionFadeSpeed = 3.0

// overrideEpsilon: an override whose weight drops below this is removed
// entirely rather than blended at a vanishing weight.
const overrideEpsilon = 0.001

type override struct {
	value  float32
	weight float32
}

// State owns all animation playback state for one loaded model. It is
// driven from the render thread only.
type State struct {
	idle     formats.Motion
	hasIdle  bool
	idleTime float32

	active         formats.Motion
	hasActive      bool
	activeTime     float32
	activePriority int

	expressions  map[string]formats.Expression
	currentExpr  string
	exprWeight   float32
	exprFadingIn bool

	overrides map[int]override
}

// NewState returns an empty animation state.
func NewState() *State {
	return &State{
		expressions: make(map[string]formats.Expression),
		overrides:   make(map[int]override),
	}
}

// SetIdle installs the idle motion. A motion without curves clears it.
func (s *State) SetIdle(m formats.Motion) {
	s.idle = m
	s.hasIdle = len(m.Curves) > 0
	s.idleTime = 0
}

// SetExpressions replaces the expression library.
func (s *State) SetExpressions(exprs map[string]formats.Expression) {
	s.expressions = exprs
	s.currentExpr = ""
	s.exprWeight = 0
	s.exprFadingIn = false
}

// CanStartMotion reports whether a motion with the given priority would
// be accepted right now. A running motion with strictly higher priority
// rejects the newcomer; equal or higher priority replaces it.
func (s *State) CanStartMotion(priority int) bool {
	return !s.hasActive || priority >= s.activePriority
}

// StartMotion installs a triggered motion, subject to the priority rule.
// Returns false when rejected or when the motion has no curves.
func (s *State) StartMotion(m formats.Motion, priority int) bool {
	if !s.CanStartMotion(priority) {
		logger.Debug("motion rejected by priority",
			zap.Int("priority", priority),
			zap.Int("active", s.activePriority))
		return false
	}
	if len(m.Curves) == 0 {
		logger.Debug("motion has no curves, ignoring")
		return false
	}
	s.active = m
	s.hasActive = true
	s.activeTime = 0
	s.activePriority = priority
	return true
}

// HasActiveMotion reports whether a triggered motion is playing.
func (s *State) HasActiveMotion() bool { return s.hasActive }

// ActivePriority returns the running motion's priority, 0 when none.
func (s *State) ActivePriority() int {
	if !s.hasActive {
		return 0
	}
	return s.activePriority
}

// SetExpression selects the current expression by name. The empty name
// fades the current expression out. Switching to a different expression
// restarts its fade from zero; the old one's influence ends immediately.
func (s *State) SetExpression(id string) {
	if id == "" {
		if s.currentExpr != "" {
			s.exprFadingIn = false
		}
		return
	}
	if _, ok := s.expressions[id]; !ok {
		logger.Debug("expression not found", zap.String("id", id))
		return
	}
	if id != s.currentExpr {
		s.currentExpr = id
		s.exprWeight = 0
	}
	s.exprFadingIn = true
}

// CurrentExpression returns the current expression name, "" when none.
func (s *State) CurrentExpression() string { return s.currentExpr }

// SetOverride installs an external parameter override, or removes it
// when the weight is below the removal epsilon.
func (s *State) SetOverride(index int, value, weight float32) {
	if weight < overrideEpsilon {
		delete(s.overrides, index)
		return
	}
	s.overrides[index] = override{value: value, weight: weight}
}

// Reset drops all playback state, for model unload.
func (s *State) Reset() {
	*s = *NewState()
}

// Apply advances the motion and expression layers by dt and writes the
// resulting values into the parameter table. Overrides are applied
// separately (ApplyOverrides) because physics runs between the two.
func (s *State) Apply(dt float32, p *live2d.ParamTable) {
	p.ResetToDefaults()
	s.applyIdle(dt, p)
	s.applyActive(dt, p)
	s.applyExpression(dt, p)
}

func (s *State) applyIdle(dt float32, p *live2d.ParamTable) {
	if !s.hasIdle {
		return
	}
	s.idleTime += dt
	if s.idle.Loop && s.idle.Duration > 0 && s.idleTime >= s.idle.Duration {
		s.idleTime = float32(gomath.Mod(float64(s.idleTime), float64(s.idle.Duration)))
	}
	for i := range s.idle.Curves {
		c := &s.idle.Curves[i]
		idx, ok := p.Lookup(c.ParamID)
		if !ok {
			continue
		}
		p.Values[idx] = p.ClampValue(idx, c.Evaluate(s.idleTime))
	}
}

func (s *State) applyActive(dt float32, p *live2d.ParamTable) {
	if !s.hasActive {
		return
	}
	s.activeTime += dt

	weight := float32(1)
	fadeIn, fadeOut, dur := s.active.FadeInTime, s.active.FadeOutTime, s.active.Duration
	switch {
	case s.activeTime < fadeIn && fadeIn > 0.001:
		weight = s.activeTime / fadeIn
	case !s.active.Loop && s.activeTime > dur-fadeOut && fadeOut > 0.001:
		weight = (dur - s.activeTime) / fadeOut
		if weight < 0 {
			weight = 0
		}
	}

	if !s.active.Loop && s.activeTime >= dur {
		s.hasActive = false
		s.activePriority = 0
		logger.Debug("active motion finished")
		return
	}

	for i := range s.active.Curves {
		c := &s.active.Curves[i]
		idx, ok := p.Lookup(c.ParamID)
		if !ok {
			continue
		}
		v := p.ClampValue(idx, c.Evaluate(s.activeTime))
		// Blend over whatever the idle layer produced so the motion
		// fades in instead of snapping.
		p.Values[idx] = p.Values[idx]*(1-weight) + v*weight
	}
}

func (s *State) applyExpression(dt float32, p *live2d.ParamTable) {
	if s.currentExpr == "" {
		return
	}
	expr, ok := s.expressions[s.currentExpr]
	if !ok {
		return
	}

	if s.exprFadingIn {
		s.exprWeight += dt * ExpressionFadeSpeed
		if s.exprWeight > 1 {
			s.exprWeight = 1
		}
	} else {
		s.exprWeight -= dt * ExpressionFadeSpeed
		if s.exprWeight <= 0 {
			s.exprWeight = 0
			s.currentExpr = ""
			return
		}
	}

	w := s.exprWeight
	if w <= overrideEpsilon {
		return
	}
	for _, ep := range expr.Params {
		idx, ok := p.Lookup(ep.ParamID)
		if !ok {
			continue
		}
		switch ep.Blend {
		case formats.BlendAdd:
			p.Values[idx] += ep.Value * w
		case formats.BlendMultiply:
			p.Values[idx] *= 1 + (ep.Value-1)*w
		case formats.BlendOverwrite:
			p.Values[idx] = p.Values[idx]*(1-w) + ep.Value*w
		}
		p.Clamp(idx)
	}
}

// ApplyOverrides applies the external parameter overrides, each one a
// full replace at weight >= 1 or a linear blend below.
func (s *State) ApplyOverrides(p *live2d.ParamTable) {
	for idx, ov := range s.overrides {
		if idx < 0 || idx >= p.Count() {
			continue
		}
		if ov.weight >= 1 {
			p.Values[idx] = ov.value
		} else {
			p.Values[idx] = p.Values[idx]*(1-ov.weight) + ov.value*ov.weight
		}
	}
}
