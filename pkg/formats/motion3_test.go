package formats

import "testing"

const sampleMotion3 = `{
	"Version": 3,
	"Meta": {
		"Duration": 2.5,
		"Fps": 30,
		"Loop": false,
		"FadeInTime": 0.2,
		"FadeOutTime": 0.8
	},
	"Curves": [
		{
			"Target": "Parameter",
			"Id": "ParamAngleX",
			"Segments": [0, 0, 0, 1, -15, 0, 2.5, 15]
		},
		{
			"Target": "Model",
			"Id": "Opacity",
			"Segments": [0, 1, 0, 2.5, 1]
		},
		{
			"Target": "Parameter",
			"Id": "ParamEyeLOpen",
			"Segments": [0, 1, 1, 0.4, 1, 0.8, 0.9, 1.2, 0]
		}
	]
}`

func TestParseMotion3_Meta(t *testing.T) {
	m := ParseMotion3(sampleMotion3)

	if m.Duration != 2.5 {
		t.Errorf("expected duration 2.5, got %v", m.Duration)
	}
	if m.Loop {
		t.Error("expected loop false")
	}
	if m.FadeInTime != 0.2 || m.FadeOutTime != 0.8 {
		t.Errorf("unexpected fades %v/%v", m.FadeInTime, m.FadeOutTime)
	}
}

func TestParseMotion3_Defaults(t *testing.T) {
	m := ParseMotion3("{}")

	if m.Duration != 4 {
		t.Errorf("expected default duration 4, got %v", m.Duration)
	}
	if !m.Loop {
		t.Error("expected default loop true")
	}
	if m.FadeInTime != 0.5 || m.FadeOutTime != 0.5 {
		t.Errorf("unexpected default fades %v/%v", m.FadeInTime, m.FadeOutTime)
	}
	if len(m.Curves) != 0 {
		t.Errorf("expected no curves, got %d", len(m.Curves))
	}
}

func TestParseMotion3_SkipsNonParameterTargets(t *testing.T) {
	m := ParseMotion3(sampleMotion3)

	if len(m.Curves) != 2 {
		t.Fatalf("expected 2 parameter curves, got %d", len(m.Curves))
	}
	if m.Curves[0].ParamID != "ParamAngleX" || m.Curves[1].ParamID != "ParamEyeLOpen" {
		t.Errorf("unexpected curve ids %q, %q", m.Curves[0].ParamID, m.Curves[1].ParamID)
	}
}

func TestDecodeSegments(t *testing.T) {
	tests := []struct {
		name string
		nums []float32
		want []Keyframe
	}{
		{
			name: "linear chain",
			nums: []float32{0, 0, 0, 1, 10, 0, 2, 20},
			want: []Keyframe{{0, 0}, {1, 10}, {2, 20}},
		},
		{
			name: "bezier keeps only the endpoint",
			nums: []float32{0, 1, 1, 0.3, 1, 0.6, 0.9, 1.0, 0},
			want: []Keyframe{{0, 1}, {1.0, 0}},
		},
		{
			name: "unknown tag reads like linear",
			nums: []float32{0, 0, 7, 1, 5},
			want: []Keyframe{{0, 0}, {1, 5}},
		},
		{
			name: "truncated segment keeps earlier keyframes",
			nums: []float32{0, 0, 0, 1, 10, 1, 1.2},
			want: []Keyframe{{0, 0}, {1, 10}},
		},
		{
			name: "lone first keyframe",
			nums: []float32{0.5, 3},
			want: []Keyframe{{0.5, 3}},
		},
		{
			name: "too short",
			nums: []float32{1},
			want: nil,
		},
	}

	for _, tt := range tests {
		got := decodeSegments(tt.nums)
		if len(got) != len(tt.want) {
			t.Errorf("%s: expected %d keyframes, got %d (%v)", tt.name, len(tt.want), len(got), got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: keyframe %d = %+v, want %+v", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCurveEvaluate(t *testing.T) {
	c := Curve{Keyframes: []Keyframe{{0, 0}, {1, 10}, {3, -10}}}

	tests := []struct {
		t    float32
		want float32
	}{
		{-1, 0},  // before the first keyframe clamps
		{0, 0},   // exact first keyframe
		{0.5, 5}, // halfway up the first segment
		{1, 10},  // exact interior keyframe
		{2, 0},   // halfway down the second segment
		{3, -10}, // exact last keyframe
		{99, -10},
	}
	for _, tt := range tests {
		if got := c.Evaluate(tt.t); got != tt.want {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestCurveEvaluate_Degenerate(t *testing.T) {
	var empty Curve
	if got := empty.Evaluate(1); got != 0 {
		t.Errorf("empty curve should evaluate to 0, got %v", got)
	}

	// two keyframes at the same time must not divide by zero
	flat := Curve{Keyframes: []Keyframe{{1, 2}, {1, 8}}}
	if got := flat.Evaluate(0.5); got != 2 {
		t.Errorf("expected 2 before coincident keyframes, got %v", got)
	}
	if got := flat.Evaluate(2); got != 8 {
		t.Errorf("expected 8 after coincident keyframes, got %v", got)
	}
}
