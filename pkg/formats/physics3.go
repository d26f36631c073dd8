package formats

import (
	"github.com/gameswu/nyadeskpet-live2d/pkg/math"
)

// PhysicsInputType distinguishes the two kinds of physics inputs.
type PhysicsInputType int

const (
	PhysicsInputX     PhysicsInputType = 0
	PhysicsInputAngle PhysicsInputType = 1
)

// PhysicsInput maps a model parameter onto the force driving a sub-rig.
type PhysicsInput struct {
	SourceID string
	Weight   float32 // 0-100
	Type     PhysicsInputType
	Reflect  bool
}

// PhysicsOutput maps a simulated particle angle back onto a model parameter.
type PhysicsOutput struct {
	DestID      string
	VertexIndex int
	Scale       float32
	Weight      float32 // 0-100
	Reflect     bool
}

// PhysicsParticle is one link of a pendulum chain. Position is the
// authoring-time rest position; the simulator re-derives its own rest
// state at load.
type PhysicsParticle struct {
	Position     math.Vec2
	Mobility     float32
	Delay        float32
	Acceleration float32
	Radius       float32
}

// PhysicsNormalization holds the per-sub-rig input normalization ranges.
type PhysicsNormalization struct {
	PosMin, PosDefault, PosMax float32
	AngMin, AngDefault, AngMax float32
}

// PhysicsSubRig is one independent particle chain with its input and
// output mappings.
type PhysicsSubRig struct {
	Inputs    []PhysicsInput
	Outputs   []PhysicsOutput
	Particles []PhysicsParticle
	Norm      PhysicsNormalization
}

// PhysicsRig is a parsed physics3.json file.
type PhysicsRig struct {
	SubRigs []PhysicsSubRig
	Gravity math.Vec2
	Wind    math.Vec2
	Fps     float32
}

// ParsePhysics3 parses a physics3.json file. Every field has the same
// default the Cubism editor writes, so sparse files still simulate.
func ParsePhysics3(j string) PhysicsRig {
	rig := PhysicsRig{
		Gravity: math.Vec2{X: 0, Y: -1},
		Fps:     60,
	}

	if p := findKey(j, "Fps", 0); p >= 0 {
		rig.Fps = readNumber(j, p)
	}

	if ef := findKey(j, "EffectiveForces", 0); ef >= 0 {
		if gp := findKey(j, "Gravity", ef); gp >= 0 {
			rig.Gravity = readVec2(j, gp, rig.Gravity)
		}
		if wp := findKey(j, "Wind", ef); wp >= 0 {
			rig.Wind = readVec2(j, wp, rig.Wind)
		}
	}

	arr := findArrayStart(j, "PhysicsSettings", 0)
	if arr < 0 {
		return rig
	}
	for _, obj := range extractObjectArray(j, arr) {
		rig.SubRigs = append(rig.SubRigs, parseSubRig(obj))
	}

	return rig
}

func parseSubRig(j string) PhysicsSubRig {
	sub := PhysicsSubRig{
		Norm: PhysicsNormalization{
			PosMin: -10, PosMax: 10,
			AngMin: -10, AngMax: 10,
		},
	}

	if arr := findArrayStart(j, "Input", 0); arr >= 0 {
		for _, obj := range extractObjectArray(j, arr) {
			var in PhysicsInput
			if sp := findKey(obj, "Source", 0); sp >= 0 {
				if ip := findKey(obj, "Id", sp); ip >= 0 {
					in.SourceID = extractString(obj, ip)
				}
			}
			if p := findKey(obj, "Weight", 0); p >= 0 {
				in.Weight = readNumber(obj, p)
			}
			if p := findKey(obj, "Type", 0); p >= 0 && extractString(obj, p) == "Angle" {
				in.Type = PhysicsInputAngle
			}
			if p := findKey(obj, "Reflect", 0); p >= 0 {
				in.Reflect = readBool(obj, p)
			}
			sub.Inputs = append(sub.Inputs, in)
		}
	}

	if arr := findArrayStart(j, "Output", 0); arr >= 0 {
		for _, obj := range extractObjectArray(j, arr) {
			out := PhysicsOutput{Scale: 1, Weight: 100}
			if dp := findKey(obj, "Destination", 0); dp >= 0 {
				if ip := findKey(obj, "Id", dp); ip >= 0 {
					out.DestID = extractString(obj, ip)
				}
			}
			if p := findKey(obj, "VertexIndex", 0); p >= 0 {
				out.VertexIndex = int(readNumber(obj, p))
			}
			if p := findKey(obj, "Scale", 0); p >= 0 {
				out.Scale = readNumber(obj, p)
			}
			if p := findKey(obj, "Weight", 0); p >= 0 {
				out.Weight = readNumber(obj, p)
			}
			if p := findKey(obj, "Reflect", 0); p >= 0 {
				out.Reflect = readBool(obj, p)
			}
			sub.Outputs = append(sub.Outputs, out)
		}
	}

	if arr := findArrayStart(j, "Vertices", 0); arr >= 0 {
		for _, obj := range extractObjectArray(j, arr) {
			part := PhysicsParticle{Mobility: 1, Delay: 1, Acceleration: 1}
			if pp := findKey(obj, "Position", 0); pp >= 0 {
				part.Position = readVec2(obj, pp, math.Vec2{})
			}
			if p := findKey(obj, "Mobility", 0); p >= 0 {
				part.Mobility = readNumber(obj, p)
			}
			if p := findKey(obj, "Delay", 0); p >= 0 {
				part.Delay = readNumber(obj, p)
			}
			if p := findKey(obj, "Acceleration", 0); p >= 0 {
				part.Acceleration = readNumber(obj, p)
			}
			if p := findKey(obj, "Radius", 0); p >= 0 {
				part.Radius = readNumber(obj, p)
			}
			sub.Particles = append(sub.Particles, part)
		}
	}

	if np := findKey(j, "Normalization", 0); np >= 0 {
		if pos := findKey(j, "Position", np); pos >= 0 {
			sub.Norm.PosMin, sub.Norm.PosDefault, sub.Norm.PosMax =
				readMinDefMax(j, pos, sub.Norm.PosMin, sub.Norm.PosDefault, sub.Norm.PosMax)
		}
		if ang := findKey(j, "Angle", np); ang >= 0 {
			sub.Norm.AngMin, sub.Norm.AngDefault, sub.Norm.AngMax =
				readMinDefMax(j, ang, sub.Norm.AngMin, sub.Norm.AngDefault, sub.Norm.AngMax)
		}
	}

	return sub
}

func readVec2(j string, from int, def math.Vec2) math.Vec2 {
	v := def
	if p := findKey(j, "X", from); p >= 0 {
		v.X = readNumber(j, p)
	}
	if p := findKey(j, "Y", from); p >= 0 {
		v.Y = readNumber(j, p)
	}
	return v
}

func readMinDefMax(j string, from int, min, def, max float32) (float32, float32, float32) {
	if p := findKey(j, "Minimum", from); p >= 0 {
		min = readNumber(j, p)
	}
	if p := findKey(j, "Default", from); p >= 0 {
		def = readNumber(j, p)
	}
	if p := findKey(j, "Maximum", from); p >= 0 {
		max = readNumber(j, p)
	}
	return min, def, max
}
