package formats

import "testing"

const sampleExp3 = `{
	"Type": "Live2D Expression",
	"Parameters": [
		{"Id": "ParamMouthForm", "Value": 1, "Blend": "Add"},
		{"Id": "ParamCheek", "Value": 0.5, "Blend": "Multiply"},
		{"Id": "ParamEyeLOpen", "Value": 0.2, "Blend": "Overwrite"},
		{"Id": "ParamBrowLY", "Value": -0.3},
		{"Value": 9, "Blend": "Add"},
		{"Id": "ParamHairFront", "Value": 0.1, "Blend": "Nonsense"}
	]
}`

func TestParseExpression3(t *testing.T) {
	expr := ParseExpression3(sampleExp3, "smile")

	if expr.Name != "smile" {
		t.Errorf("expected name smile, got %q", expr.Name)
	}
	if len(expr.Params) != 5 {
		t.Fatalf("expected 5 params (id-less entry skipped), got %d", len(expr.Params))
	}

	want := []ExpressionParam{
		{"ParamMouthForm", 1, BlendAdd},
		{"ParamCheek", 0.5, BlendMultiply},
		{"ParamEyeLOpen", 0.2, BlendOverwrite},
		{"ParamBrowLY", -0.3, BlendAdd},
		{"ParamHairFront", 0.1, BlendAdd},
	}
	for i, w := range want {
		if expr.Params[i] != w {
			t.Errorf("param %d = %+v, want %+v", i, expr.Params[i], w)
		}
	}
}

func TestParseExpression3_Empty(t *testing.T) {
	expr := ParseExpression3("{}", "neutral")
	if expr.Name != "neutral" || len(expr.Params) != 0 {
		t.Errorf("expected empty neutral expression, got %+v", expr)
	}
}

func TestBlendModeString(t *testing.T) {
	if BlendAdd.String() != "Add" || BlendMultiply.String() != "Multiply" || BlendOverwrite.String() != "Overwrite" {
		t.Error("unexpected blend mode names")
	}
}
