package animation

import (
	"testing"

	"github.com/gameswu/nyadeskpet-live2d/pkg/formats"
	"github.com/gameswu/nyadeskpet-live2d/pkg/live2d"
)

func testTable() *live2d.ParamTable {
	rig := live2d.NewStaticRig(live2d.StaticRigConfig{
		Parameters: []live2d.Parameter{
			{ID: "ParamAngleX", Min: -30, Max: 30, Default: 0},
			{ID: "ParamEyeLOpen", Min: 0, Max: 1, Default: 1},
			{ID: "ParamMouthForm", Min: -1, Max: 1, Default: 0},
		},
	})
	return live2d.NewParamTable(rig)
}

// rampMotion climbs ParamAngleX from 0 to 10 over one second, then back
// to 0 at two seconds.
func rampMotion(loop bool) formats.Motion {
	return formats.Motion{
		Duration: 2,
		Loop:     loop,
		Curves: []formats.Curve{{
			ParamID:   "ParamAngleX",
			Keyframes: []formats.Keyframe{{Time: 0, Value: 0}, {Time: 1, Value: 10}, {Time: 2, Value: 0}},
		}},
	}
}

func constMotion(value, duration, fadeIn, fadeOut float32) formats.Motion {
	return formats.Motion{
		Duration:    duration,
		FadeInTime:  fadeIn,
		FadeOutTime: fadeOut,
		Curves: []formats.Curve{{
			ParamID:   "ParamAngleX",
			Keyframes: []formats.Keyframe{{Time: 0, Value: value}, {Time: duration, Value: value}},
		}},
	}
}

func TestIdleEvaluation(t *testing.T) {
	s := NewState()
	s.SetIdle(rampMotion(true))
	p := testTable()

	s.Apply(1, p)
	if p.Values[0] != 10 {
		t.Errorf("expected idle peak 10 at t=1, got %v", p.Values[0])
	}
	// unrelated parameters stay at their defaults
	if p.Values[1] != 1 {
		t.Errorf("expected untouched default 1, got %v", p.Values[1])
	}
}

func TestIdleLoopWraps(t *testing.T) {
	s := NewState()
	s.SetIdle(rampMotion(true))
	p := testTable()

	// 2.5s into a 2s loop is 0.5s into the next pass
	s.Apply(2.5, p)
	if p.Values[0] != 5 {
		t.Errorf("expected wrapped idle value 5, got %v", p.Values[0])
	}
}

func TestSetIdleWithoutCurvesClears(t *testing.T) {
	s := NewState()
	s.SetIdle(rampMotion(true))
	s.SetIdle(formats.Motion{Duration: 1})
	p := testTable()

	s.Apply(1, p)
	if p.Values[0] != 0 {
		t.Errorf("expected default after idle cleared, got %v", p.Values[0])
	}
}

func TestStartMotionPriority(t *testing.T) {
	s := NewState()

	if !s.StartMotion(constMotion(30, 1, 0, 0), 2) {
		t.Fatal("motion should start on an idle state")
	}
	if s.StartMotion(constMotion(5, 1, 0, 0), 1) {
		t.Error("lower priority must be rejected while one is active")
	}
	if !s.StartMotion(constMotion(5, 1, 0, 0), 2) {
		t.Error("equal priority must replace the active motion")
	}
	if !s.StartMotion(constMotion(5, 1, 0, 0), 3) {
		t.Error("higher priority must replace the active motion")
	}
	if s.ActivePriority() != 3 {
		t.Errorf("expected active priority 3, got %d", s.ActivePriority())
	}
}

func TestStartMotionRejectsEmpty(t *testing.T) {
	s := NewState()
	if s.StartMotion(formats.Motion{Duration: 1}, 2) {
		t.Error("curve-less motion must not start")
	}
	if s.HasActiveMotion() {
		t.Error("state must stay inactive")
	}
}

func TestActiveMotionFadeIn(t *testing.T) {
	s := NewState()
	p := testTable()
	s.StartMotion(constMotion(30, 10, 1, 0), 2)

	// halfway through the 1s fade-in the constant 30 blends at weight 0.5
	s.Apply(0.5, p)
	if p.Values[0] != 15 {
		t.Errorf("expected half-faded value 15, got %v", p.Values[0])
	}

	// past the fade the motion owns the parameter
	s.Apply(1, p)
	if p.Values[0] != 30 {
		t.Errorf("expected full value 30, got %v", p.Values[0])
	}
}

func TestActiveMotionFadeOut(t *testing.T) {
	s := NewState()
	p := testTable()
	s.StartMotion(constMotion(30, 2, 0, 1), 2)

	// 1.5s into a 2s motion with a 1s fade-out: weight 0.5 over default 0
	s.Apply(1.5, p)
	if p.Values[0] != 15 {
		t.Errorf("expected half-faded-out value 15, got %v", p.Values[0])
	}
}

func TestActiveMotionExpires(t *testing.T) {
	s := NewState()
	p := testTable()
	s.StartMotion(constMotion(30, 1, 0, 0), 3)

	s.Apply(0.5, p)
	if !s.HasActiveMotion() {
		t.Fatal("motion should still be running at t=0.5")
	}
	s.Apply(0.6, p)
	if s.HasActiveMotion() {
		t.Fatal("motion should have expired past its duration")
	}
	if s.ActivePriority() != 0 {
		t.Errorf("expired motion must drop its priority, got %d", s.ActivePriority())
	}
	if p.Values[0] != 0 {
		t.Errorf("expected default after expiry, got %v", p.Values[0])
	}
	// a new low-priority motion is accepted again
	if !s.StartMotion(constMotion(5, 1, 0, 0), 1) {
		t.Error("motion should start after the previous one expired")
	}
}

func TestActiveBlendsOverIdle(t *testing.T) {
	s := NewState()
	p := testTable()
	s.SetIdle(formats.Motion{
		Duration: 10,
		Loop:     true,
		Curves: []formats.Curve{{
			ParamID:   "ParamAngleX",
			Keyframes: []formats.Keyframe{{Time: 0, Value: 20}, {Time: 10, Value: 20}},
		}},
	})
	s.StartMotion(constMotion(30, 10, 1, 0), 2)

	// at weight 0.5 the triggered 30 lerps over the idle 20
	s.Apply(0.5, p)
	if p.Values[0] != 25 {
		t.Errorf("expected blend 25 over idle, got %v", p.Values[0])
	}
}

func TestExpressionFade(t *testing.T) {
	s := NewState()
	p := testTable()
	s.SetExpressions(map[string]formats.Expression{
		"smile": {Name: "smile", Params: []formats.ExpressionParam{
			{ParamID: "ParamMouthForm", Value: 1, Blend: formats.BlendAdd},
		}},
	})

	s.SetExpression("smile")
	if s.CurrentExpression() != "smile" {
		t.Fatalf("expected current expression smile, got %q", s.CurrentExpression())
	}

	// 0.1s at fade speed 3 gives weight 0.3
	s.Apply(0.1, p)
	if absf(p.Values[2]-0.3) > 0.0001 {
		t.Errorf("expected additive 0.3, got %v", p.Values[2])
	}

	// a long step saturates at weight 1
	s.Apply(10, p)
	if p.Values[2] != 1 {
		t.Errorf("expected saturated additive 1, got %v", p.Values[2])
	}

	// fading out: 0.1s down from 1 gives 0.7
	s.SetExpression("")
	s.Apply(0.1, p)
	if absf(p.Values[2]-0.7) > 0.0001 {
		t.Errorf("expected fading-out 0.7, got %v", p.Values[2])
	}

	// a long step ends the fade and clears the selection
	s.Apply(10, p)
	if p.Values[2] != 0 {
		t.Errorf("expected neutral 0, got %v", p.Values[2])
	}
	if s.CurrentExpression() != "" {
		t.Errorf("expected expression cleared, got %q", s.CurrentExpression())
	}
}

func TestExpressionBlendModes(t *testing.T) {
	s := NewState()
	p := testTable()
	s.SetExpressions(map[string]formats.Expression{
		"mix": {Name: "mix", Params: []formats.ExpressionParam{
			{ParamID: "ParamEyeLOpen", Value: 0.5, Blend: formats.BlendMultiply},
			{ParamID: "ParamMouthForm", Value: 1, Blend: formats.BlendOverwrite},
		}},
	})
	s.SetExpression("mix")

	// saturate the fade so the weights are exactly 1
	s.Apply(10, p)
	if p.Values[1] != 0.5 {
		t.Errorf("expected multiplied 0.5, got %v", p.Values[1])
	}
	if p.Values[2] != 1 {
		t.Errorf("expected overwritten 1, got %v", p.Values[2])
	}
}

func TestSetExpressionUnknown(t *testing.T) {
	s := NewState()
	s.SetExpressions(map[string]formats.Expression{"smile": {Name: "smile"}})

	s.SetExpression("frown")
	if s.CurrentExpression() != "" {
		t.Errorf("unknown expression must be ignored, got %q", s.CurrentExpression())
	}
}

func TestOverrides(t *testing.T) {
	s := NewState()
	p := testTable()

	s.SetOverride(0, 20, 1)
	s.ApplyOverrides(p)
	if p.Values[0] != 20 {
		t.Errorf("expected full replace 20, got %v", p.Values[0])
	}

	p.ResetToDefaults()
	s.SetOverride(0, 20, 0.5)
	s.ApplyOverrides(p)
	if p.Values[0] != 10 {
		t.Errorf("expected half blend 10, got %v", p.Values[0])
	}

	// weight under the epsilon removes the override
	p.ResetToDefaults()
	s.SetOverride(0, 20, 0)
	s.ApplyOverrides(p)
	if p.Values[0] != 0 {
		t.Errorf("expected override removed, got %v", p.Values[0])
	}

	// out-of-range indices are ignored
	s.SetOverride(99, 5, 1)
	s.ApplyOverrides(p)
}

func TestReset(t *testing.T) {
	s := NewState()
	p := testTable()
	s.SetIdle(rampMotion(true))
	s.StartMotion(constMotion(30, 10, 0, 0), 2)
	s.SetOverride(0, 20, 1)

	s.Reset()

	if s.HasActiveMotion() {
		t.Error("reset must drop the active motion")
	}
	s.Apply(1, p)
	s.ApplyOverrides(p)
	if p.Values[0] != 0 {
		t.Errorf("expected defaults after reset, got %v", p.Values[0])
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
