// Package physics advances the mass-spring pendulum chains of a model's
// physics rig. Model parameters drive each chain as a gravity direction
// and anchor offset; the simulated link angles feed back into other
// model parameters.
package physics

import (
	gomath "math"

	"github.com/gameswu/nyadeskpet-live2d/pkg/formats"
	"github.com/gameswu/nyadeskpet-live2d/pkg/live2d"
	"github.com/gameswu/nyadeskpet-live2d/pkg/math"
)

// airResistance damps how much of the frame-to-frame gravity rotation
// is transferred onto each link.
const airResistance = 5.0

// delayTimeScale normalizes authored per-particle delay constants,
// which were tuned against a 30 fps reference clock.
const delayTimeScale = 30.0

type particle struct {
	position    math.Vec2
	velocity    math.Vec2
	lastGravity math.Vec2
}

type subRig struct {
	cfg       formats.PhysicsSubRig
	inputIdx  []int // resolved parameter indices, -1 when unknown
	outputIdx []int
	particles []particle
}

// Simulator holds the runtime state of every sub-rig of one model.
type Simulator struct {
	gravity math.Vec2
	wind    math.Vec2
	subRigs []subRig
}

// NewSimulator resolves the rig's parameter references against the
// model's parameter table and puts every chain at rest, hanging
// straight down (+Y is "down" in physics space).
func NewSimulator(rig formats.PhysicsRig, p *live2d.ParamTable) *Simulator {
	s := &Simulator{
		gravity: rig.Gravity,
		wind:    rig.Wind,
	}
	for _, cfg := range rig.SubRigs {
		sr := subRig{cfg: cfg}
		for _, in := range cfg.Inputs {
			idx := -1
			if i, ok := p.Lookup(in.SourceID); ok {
				idx = i
			}
			sr.inputIdx = append(sr.inputIdx, idx)
		}
		for _, out := range cfg.Outputs {
			idx := -1
			if i, ok := p.Lookup(out.DestID); ok {
				idx = i
			}
			sr.outputIdx = append(sr.outputIdx, idx)
		}
		sr.particles = make([]particle, len(cfg.Particles))
		for i := range sr.particles {
			sr.particles[i].lastGravity = math.Vec2{X: 0, Y: 1}
			if i > 0 {
				sr.particles[i].position = math.Vec2{
					X: 0,
					Y: sr.particles[i-1].position.Y + cfg.Particles[i].Radius,
				}
			}
		}
		s.subRigs = append(s.subRigs, sr)
	}
	return s
}

// Update advances every chain by dt and blends the output angles into
// the destination parameters.
func (s *Simulator) Update(dt float32, p *live2d.ParamTable) {
	for i := range s.subRigs {
		s.updateSubRig(&s.subRigs[i], dt, p)
	}
}

func (s *Simulator) updateSubRig(sr *subRig, dt float32, p *live2d.ParamTable) {
	totalAngle, totalTranslate := s.aggregateInputs(sr, p)

	if len(sr.particles) == 0 {
		return
	}

	// Anchor follows the translation input directly; the angle becomes
	// the gravity direction the rest of the chain hangs toward.
	sr.particles[0].position.X = totalTranslate
	gravity := math.Vec2{
		X: float32(gomath.Sin(float64(math.DegreesToRadian(totalAngle)))),
		Y: float32(gomath.Cos(float64(math.DegreesToRadian(totalAngle)))),
	}

	for i := 1; i < len(sr.particles); i++ {
		pt := &sr.particles[i]
		prev := &sr.particles[i-1]
		cfg := &sr.cfg.Particles[i]

		force := gravity.Scale(cfg.Acceleration).Add(s.wind)
		saved := pt.position
		delay := cfg.Delay * dt * delayTimeScale

		// Rotate the arm by a damped fraction of the gravity swing.
		arm := pt.position.Sub(prev.position)
		arm = arm.Rotate(math.DirectionToRadian(pt.lastGravity, gravity) / airResistance)
		pt.position = prev.position.Add(arm)

		pt.position = pt.position.
			Add(pt.velocity.Scale(delay)).
			Add(force.Scale(delay * delay))

		// Rigid rod: pull the particle back onto its radius. A
		// degenerate zero-length arm is left alone to avoid NaN.
		d := pt.position.Sub(prev.position)
		if dist := d.Length(); dist > 0.0001 {
			pt.position = prev.position.Add(d.Scale(cfg.Radius / dist))
		}
		if abs32(pt.position.X) < 0.001 {
			pt.position.X = 0
		}

		if delay > 0.0001 {
			pt.velocity = pt.position.Sub(saved).Scale(cfg.Mobility / delay)
		}
		pt.lastGravity = gravity
	}

	s.writeOutputs(sr, p)
}

func (s *Simulator) aggregateInputs(sr *subRig, p *live2d.ParamTable) (totalAngle, totalTranslate float32) {
	for i, in := range sr.cfg.Inputs {
		idx := sr.inputIdx[i]
		if idx < 0 || idx >= p.Count() {
			continue
		}
		var norm formats.PhysicsNormalization = sr.cfg.Norm
		var nMin, nDef, nMax float32
		if in.Type == formats.PhysicsInputAngle {
			nMin, nDef, nMax = norm.AngMin, norm.AngDefault, norm.AngMax
		} else {
			nMin, nDef, nMax = norm.PosMin, norm.PosDefault, norm.PosMax
		}
		v := normalizeInput(p.Values[idx], p.Minimums[idx], p.Maximums[idx], p.Defaults[idx], nMin, nDef, nMax)
		if in.Reflect {
			v = -v
		}
		w := in.Weight / 100
		if in.Type == formats.PhysicsInputAngle {
			totalAngle += v * w
		} else {
			totalTranslate += v * w
		}
	}
	return totalAngle, totalTranslate
}

func (s *Simulator) writeOutputs(sr *subRig, p *live2d.ParamTable) {
	for i, out := range sr.cfg.Outputs {
		idx := sr.outputIdx[i]
		if idx < 0 || idx >= p.Count() {
			continue
		}
		vi := out.VertexIndex
		if vi < 1 || vi >= len(sr.particles) {
			continue
		}

		parentDir := math.Vec2{X: 0, Y: 1}
		if vi >= 2 {
			parentDir = sr.particles[vi-1].position.Sub(sr.particles[vi-2].position)
		}
		curDir := sr.particles[vi].position.Sub(sr.particles[vi-1].position)

		angle := math.DirectionToRadian(parentDir, curDir)
		if out.Reflect {
			angle = -angle
		}

		w := out.Weight / 100
		blended := p.Values[idx]*(1-w) + angle*out.Scale*w
		p.Values[idx] = p.ClampValue(idx, blended)
	}
}

// normalizeInput maps a parameter value into a normalization range,
// piecewise-linear around the parameter's declared default so that
// asymmetric ranges keep their proportions.
func normalizeInput(val, pMin, pMax, pDef, nMin, nDef, nMax float32) float32 {
	diff := val - pDef
	switch {
	case diff > 0.0001:
		pr, nr := pMax-pDef, nMax-nDef
		if pr > 0.0001 {
			return nDef + diff/pr*nr
		}
		return nMax
	case diff < -0.0001:
		pr, nr := pDef-pMin, nDef-nMin
		if pr > 0.0001 {
			return nDef + diff/pr*nr
		}
		return nMin
	}
	return nDef
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
