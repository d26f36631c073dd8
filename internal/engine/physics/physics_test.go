package physics

import (
	"testing"

	"github.com/gameswu/nyadeskpet-live2d/pkg/formats"
	"github.com/gameswu/nyadeskpet-live2d/pkg/live2d"
	"github.com/gameswu/nyadeskpet-live2d/pkg/math"
)

func physicsTable() *live2d.ParamTable {
	rig := live2d.NewStaticRig(live2d.StaticRigConfig{
		Parameters: []live2d.Parameter{
			{ID: "ParamAngleX", Min: -30, Max: 30, Default: 0},
			{ID: "ParamHairFront", Min: -10, Max: 10, Default: 0},
		},
	})
	return live2d.NewParamTable(rig)
}

// chainRig is a two-link pendulum driven by ParamAngleX and writing the
// first link's swing angle into ParamHairFront.
func chainRig(reflect bool, outWeight float32) formats.PhysicsRig {
	return formats.PhysicsRig{
		Gravity: math.Vec2{X: 0, Y: -1},
		Fps:     60,
		SubRigs: []formats.PhysicsSubRig{{
			Inputs: []formats.PhysicsInput{{
				SourceID: "ParamAngleX",
				Weight:   100,
				Type:     formats.PhysicsInputAngle,
			}},
			Outputs: []formats.PhysicsOutput{{
				DestID:      "ParamHairFront",
				VertexIndex: 1,
				Scale:       1,
				Weight:      outWeight,
				Reflect:     reflect,
			}},
			Particles: []formats.PhysicsParticle{
				{Mobility: 1, Delay: 1, Acceleration: 1, Radius: 0},
				{Mobility: 1, Delay: 1, Acceleration: 1, Radius: 3},
			},
			Norm: formats.PhysicsNormalization{
				PosMin: -10, PosMax: 10,
				AngMin: -30, AngMax: 30,
			},
		}},
	}
}

func TestRestStaysAtRest(t *testing.T) {
	p := physicsTable()
	sim := NewSimulator(chainRig(false, 100), p)

	// with the driving parameter at its default the chain hangs straight
	// down and must not inject any motion
	for i := 0; i < 120; i++ {
		sim.Update(1.0/60, p)
	}
	if p.Values[1] != 0 {
		t.Errorf("resting chain moved the output to %v", p.Values[1])
	}
}

func TestSwingProducesOutput(t *testing.T) {
	p := physicsTable()
	sim := NewSimulator(chainRig(false, 100), p)

	p.Values[0] = 30
	sim.Update(1.0/60, p)

	if p.Values[1] == 0 {
		t.Fatal("tilting the input should swing the chain")
	}
}

func TestReflectFlipsOutput(t *testing.T) {
	pa := physicsTable()
	plain := NewSimulator(chainRig(false, 100), pa)
	pa.Values[0] = 30
	plain.Update(1.0/60, pa)

	pb := physicsTable()
	reflected := NewSimulator(chainRig(true, 100), pb)
	pb.Values[0] = 30
	reflected.Update(1.0/60, pb)

	if pa.Values[1] == 0 || pa.Values[1] != -pb.Values[1] {
		t.Errorf("expected mirrored outputs, got %v and %v", pa.Values[1], pb.Values[1])
	}
}

func TestReflectedInputMirrorsChain(t *testing.T) {
	rig := chainRig(false, 100)
	rig.SubRigs[0].Inputs[0].Reflect = true
	pa := physicsTable()
	sim := NewSimulator(rig, pa)
	pa.Values[0] = 30
	sim.Update(1.0/60, pa)

	pb := physicsTable()
	plain := NewSimulator(chainRig(false, 100), pb)
	pb.Values[0] = -30
	plain.Update(1.0/60, pb)

	if pa.Values[1] != pb.Values[1] {
		t.Errorf("reflected +30 should match plain -30, got %v and %v", pa.Values[1], pb.Values[1])
	}
}

func TestOutputWeightBlends(t *testing.T) {
	pa := physicsTable()
	full := NewSimulator(chainRig(false, 100), pa)
	pa.Values[0] = 30
	full.Update(1.0/60, pa)

	pb := physicsTable()
	half := NewSimulator(chainRig(false, 50), pb)
	pb.Values[0] = 30
	half.Update(1.0/60, pb)

	if diff := pb.Values[1] - pa.Values[1]/2; absf(diff) > 0.0001 {
		t.Errorf("weight 50 should blend half of the full output: %v vs %v", pb.Values[1], pa.Values[1])
	}
}

func TestOutputClamped(t *testing.T) {
	rig := chainRig(false, 100)
	rig.SubRigs[0].Outputs[0].Scale = 10000

	p := physicsTable()
	sim := NewSimulator(rig, p)
	p.Values[0] = 30
	sim.Update(1.0/60, p)

	if p.Values[1] < -10 || p.Values[1] > 10 {
		t.Errorf("output must stay inside the parameter range, got %v", p.Values[1])
	}
	if absf(p.Values[1]) != 10 {
		t.Errorf("a huge scale should hit the range bound, got %v", p.Values[1])
	}
}

func TestUnknownReferencesIgnored(t *testing.T) {
	rig := chainRig(false, 100)
	rig.SubRigs[0].Inputs[0].SourceID = "ParamGone"
	rig.SubRigs[0].Outputs[0].DestID = "ParamAlsoGone"

	p := physicsTable()
	sim := NewSimulator(rig, p)
	sim.Update(1.0/60, p)

	if p.Values[0] != 0 || p.Values[1] != 0 {
		t.Errorf("unknown references must not touch parameters, got %v", p.Values)
	}
}

func TestBadVertexIndexIgnored(t *testing.T) {
	for _, vi := range []int{0, 2, 99} {
		rig := chainRig(false, 100)
		rig.SubRigs[0].Outputs[0].VertexIndex = vi

		p := physicsTable()
		sim := NewSimulator(rig, p)
		p.Values[0] = 30
		sim.Update(1.0/60, p)

		if p.Values[1] != 0 {
			t.Errorf("vertex index %d must not write an output, got %v", vi, p.Values[1])
		}
	}
}

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		name                  string
		val, pMin, pMax, pDef float32
		nMin, nDef, nMax      float32
		want                  float32
	}{
		{"at default", 0, -30, 30, 0, -10, 0, 10, 0},
		{"positive full range", 30, -30, 30, 0, -10, 0, 10, 10},
		{"positive halfway", 15, -30, 30, 0, -10, 0, 10, 5},
		{"negative full range", -30, -30, 30, 0, -10, 0, 10, -10},
		{"asymmetric above", 20, -10, 30, 10, -1, 0, 1, 0.5},
		{"asymmetric below", 0, -10, 30, 10, -1, 0, 1, -0.5},
		{"degenerate upper range", 5, 0, 0, 0, -1, 0, 1, 1},
		{"degenerate lower range", -5, 0, 0, 0, -1, 0, 1, -1},
	}
	for _, tt := range tests {
		got := normalizeInput(tt.val, tt.pMin, tt.pMax, tt.pDef, tt.nMin, tt.nDef, tt.nMax)
		if absf(got-tt.want) > 0.0001 {
			t.Errorf("%s: normalizeInput = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRigidLinksKeepRadius(t *testing.T) {
	rig := chainRig(false, 100)
	rig.SubRigs[0].Particles = []formats.PhysicsParticle{
		{Mobility: 1, Delay: 1, Acceleration: 1, Radius: 0},
		{Mobility: 1, Delay: 1, Acceleration: 1, Radius: 3},
		{Mobility: 1, Delay: 1, Acceleration: 1, Radius: 2},
	}
	p := physicsTable()
	sim := NewSimulator(rig, p)

	// Tilt the input and swing for a while; every link must stay on its
	// rod no matter how far the chain travels.
	p.Values[0] = 30
	for frame := 0; frame < 30; frame++ {
		sim.Update(1.0/60, p)
		chain := &sim.subRigs[0]
		for i := 1; i < len(chain.particles); i++ {
			got := chain.particles[i].position.Distance(chain.particles[i-1].position)
			want := rig.SubRigs[0].Particles[i].Radius
			if absf(got-want) > 0.0001 {
				t.Fatalf("frame %d: link %d length = %v, want %v", frame, i, got, want)
			}
		}
	}
}

func TestZeroRadiusLinkCollapses(t *testing.T) {
	rig := chainRig(false, 100)
	rig.SubRigs[0].Particles[1].Radius = 0

	p := physicsTable()
	sim := NewSimulator(rig, p)
	p.Values[0] = 30
	sim.Update(1.0/60, p)

	chain := &sim.subRigs[0]
	if d := chain.particles[1].position.Distance(chain.particles[0].position); d != 0 {
		t.Errorf("zero radius link should sit on its anchor, got distance %v", d)
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
