package pose

import (
	"testing"

	"github.com/gameswu/nyadeskpet-live2d/pkg/formats"
)

func armGroups() []formats.PoseGroup {
	return []formats.PoseGroup{{
		{ID: "PartArmA", LinkIDs: []string{"PartArmASleeve"}},
		{ID: "PartArmB"},
	}}
}

func armIndex() map[string]int {
	return map[string]int{
		"PartArmA":       0,
		"PartArmB":       1,
		"PartArmASleeve": 2,
	}
}

func TestInitSnapsFirstMemberVisible(t *testing.T) {
	m := NewManager(armGroups(), armIndex())
	ops := []float32{0.5, 0.5, 0.5}

	m.Init(ops)

	if ops[0] != 1 || ops[1] != 0 {
		t.Errorf("expected [1 0] after init, got %v", ops[:2])
	}
}

func TestDominantMemberClimbs(t *testing.T) {
	m := NewManager(armGroups(), armIndex())
	ops := []float32{1, 0, 1}

	// kick the crossfade by making the second member dominant
	ops[0], ops[1] = 0.4, 0.6
	m.Update(0.04, ops)

	// at fade speed 5, 0.04s moves opacity by 0.2
	if absf(ops[1]-0.8) > 0.0001 {
		t.Errorf("dominant member should climb to 0.8, got %v", ops[1])
	}
	if absf(ops[0]-0.2) > 0.0001 {
		t.Errorf("losing member should sink to 0.2, got %v", ops[0])
	}
}

func TestCrossfadeConverges(t *testing.T) {
	m := NewManager(armGroups(), armIndex())
	ops := []float32{0.4, 0.6, 0.4}

	for i := 0; i < 30; i++ {
		m.Update(1.0/60, ops)
	}

	if ops[1] != 1 || ops[0] != 0 {
		t.Errorf("crossfade should settle at [0 1], got %v", ops[:2])
	}
}

func TestStableStateStaysPut(t *testing.T) {
	m := NewManager(armGroups(), armIndex())
	ops := []float32{1, 0, 1}

	m.Update(0.5, ops)

	if ops[0] != 1 || ops[1] != 0 {
		t.Errorf("settled group should not drift, got %v", ops[:2])
	}
}

func TestLinksMirrorPrimary(t *testing.T) {
	m := NewManager(armGroups(), armIndex())
	ops := []float32{0.4, 0.6, 1}

	m.Update(0.04, ops)

	if ops[2] != ops[0] {
		t.Errorf("linked part should mirror its primary: %v vs %v", ops[2], ops[0])
	}
}

func TestUnknownPartsAreInert(t *testing.T) {
	groups := []formats.PoseGroup{{
		{ID: "PartMissing"},
		{ID: "PartArmB", LinkIDs: []string{"PartLinkMissing"}},
	}}
	m := NewManager(groups, armIndex())
	ops := []float32{0.5, 0.5, 0.5}

	// must not panic, and must leave unrelated parts alone
	m.Init(ops)
	m.Update(0.04, ops)

	if ops[0] != 0.5 || ops[2] != 0.5 {
		t.Errorf("unresolved parts must stay untouched, got %v", ops)
	}
	if ops[1] != 0 {
		t.Errorf("non-first member should be hidden by init and stay down, got %v", ops[1])
	}
}

func TestGroupCount(t *testing.T) {
	m := NewManager(armGroups(), armIndex())
	if m.GroupCount() != 1 {
		t.Errorf("expected 1 group, got %d", m.GroupCount())
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
