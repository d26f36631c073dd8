package live2d

import "testing"

func testRig() *StaticRig {
	return NewStaticRig(StaticRigConfig{
		Parameters: []Parameter{
			{ID: "ParamAngleX", Min: -30, Max: 30, Default: 0},
			{ID: "ParamEyeLOpen", Min: 0, Max: 1, Default: 1},
			{ID: "ParamMouthForm", Min: -1, Max: 1, Default: 0.5},
		},
		Parts:  []string{"PartArmA", "PartArmB"},
		Canvas: CanvasInfo{Width: 2400, Height: 2400, PixelsPerUnit: 2400},
	})
}

func TestNewParamTable(t *testing.T) {
	table := NewParamTable(testRig())

	if table.Count() != 3 {
		t.Fatalf("expected 3 parameters, got %d", table.Count())
	}
	i, ok := table.Lookup("ParamEyeLOpen")
	if !ok || i != 1 {
		t.Errorf("Lookup(ParamEyeLOpen) = %d, %v, want 1, true", i, ok)
	}
	if _, ok := table.Lookup("ParamMissing"); ok {
		t.Error("expected lookup miss for unknown id")
	}
	if table.Values[2] != 0.5 || table.Defaults[2] != 0.5 {
		t.Errorf("expected default 0.5 for ParamMouthForm, got %v/%v", table.Values[2], table.Defaults[2])
	}
}

func TestParamTableAliasesRig(t *testing.T) {
	rig := testRig()
	table := NewParamTable(rig)

	table.Values[0] = 12
	if rig.ParameterValues()[0] != 12 {
		t.Error("table writes must land in rig storage")
	}
}

func TestParamTableClamp(t *testing.T) {
	table := NewParamTable(testRig())

	table.Values[0] = 99
	table.Clamp(0)
	if table.Values[0] != 30 {
		t.Errorf("expected clamp to 30, got %v", table.Values[0])
	}
	table.Values[0] = -99
	table.Clamp(0)
	if table.Values[0] != -30 {
		t.Errorf("expected clamp to -30, got %v", table.Values[0])
	}

	if got := table.ClampValue(1, 2); got != 1 {
		t.Errorf("ClampValue above range = %v, want 1", got)
	}
	if got := table.ClampValue(1, -2); got != 0 {
		t.Errorf("ClampValue below range = %v, want 0", got)
	}
	if got := table.ClampValue(1, 0.4); got != 0.4 {
		t.Errorf("ClampValue inside range = %v, want 0.4", got)
	}
}

func TestParamTableResetToDefaults(t *testing.T) {
	table := NewParamTable(testRig())

	table.Values[0] = 10
	table.Values[1] = 0
	table.ResetToDefaults()

	for i := range table.Values {
		if table.Values[i] != table.Defaults[i] {
			t.Errorf("parameter %d = %v after reset, want %v", i, table.Values[i], table.Defaults[i])
		}
	}
}
