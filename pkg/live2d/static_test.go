package live2d

import "testing"

func TestStaticRigDefaults(t *testing.T) {
	rig := testRig()

	vals := rig.ParameterValues()
	if len(vals) != 3 || vals[1] != 1 || vals[2] != 0.5 {
		t.Errorf("unexpected initial values %v", vals)
	}
	ops := rig.PartOpacities()
	if len(ops) != 2 || ops[0] != 1 || ops[1] != 1 {
		t.Errorf("part opacities should start at 1, got %v", ops)
	}
	if c := rig.Canvas(); c.Width != 2400 || c.PixelsPerUnit != 2400 {
		t.Errorf("unexpected canvas %+v", c)
	}
}

func TestStaticRigDrawableIndices(t *testing.T) {
	rig := NewStaticRig(StaticRigConfig{
		Drawables: []Drawable{
			{RenderOrder: 2},
			{RenderOrder: 1},
		},
	})

	if rig.DrawableCount() != 2 {
		t.Fatalf("expected 2 drawables, got %d", rig.DrawableCount())
	}
	for i, d := range rig.Drawables() {
		if d.Index != i {
			t.Errorf("drawable %d has index %d", i, d.Index)
		}
	}
}

func TestStaticRigResetDynamicFlags(t *testing.T) {
	rig := NewStaticRig(StaticRigConfig{
		Drawables: []Drawable{
			{DynamicFlags: FlagVisible | FlagVertexPositionsChanged | FlagOpacityChanged},
			{DynamicFlags: FlagDrawOrderChanged},
		},
	})

	rig.ResetDynamicFlags()

	ds := rig.Drawables()
	if ds[0].DynamicFlags != FlagVisible {
		t.Errorf("expected only visibility to survive, got %b", ds[0].DynamicFlags)
	}
	if ds[1].DynamicFlags != 0 {
		t.Errorf("expected flags cleared on hidden drawable, got %b", ds[1].DynamicFlags)
	}
}

func TestDrawableVisible(t *testing.T) {
	d := Drawable{DynamicFlags: FlagVisible}
	if !d.Visible() {
		t.Error("expected visible")
	}
	d.DynamicFlags = FlagOpacityChanged
	if d.Visible() {
		t.Error("expected hidden")
	}
}

func TestStaticRigRelease(t *testing.T) {
	rig := testRig()
	if rig.Released() {
		t.Fatal("fresh rig should not be released")
	}
	rig.Release()
	if !rig.Released() {
		t.Error("expected rig to report released")
	}
}
