package formats

import "testing"

func TestFindKey(t *testing.T) {
	j := `{"A": 1, "B": {"A": 2}}`

	p := findKey(j, "A", 0)
	if p < 0 || readNumber(j, p) != 1 {
		t.Errorf("expected first A at value 1, got pos %d", p)
	}
	p2 := findKey(j, "A", p)
	if p2 < 0 || readNumber(j, p2) != 2 {
		t.Errorf("expected nested A at value 2, got pos %d", p2)
	}
	if findKey(j, "C", 0) >= 0 {
		t.Error("expected -1 for missing key")
	}
	if findKey(j, "A", len(j)+5) >= 0 {
		t.Error("expected -1 for out-of-range start")
	}
}

func TestReadNumber(t *testing.T) {
	tests := []struct {
		j    string
		want float32
	}{
		{`{"V": 1.5}`, 1.5},
		{`{"V": -0.25}`, -0.25},
		{`{"V": 2e2}`, 200},
		{`{"V": 3E-1}`, 0.3},
		{`{"V": "oops"}`, 0},
		{`{"V": }`, 0},
	}
	for _, tt := range tests {
		p := findKey(tt.j, "V", 0)
		if got := readNumber(tt.j, p); got != tt.want {
			t.Errorf("readNumber(%q) = %v, want %v", tt.j, got, tt.want)
		}
	}
}

func TestScanNumberList(t *testing.T) {
	j := `{"Segments": [0, 1.5, -2, 3e1,
		4]}`
	nums := scanNumberList(j, findArrayStart(j, "Segments", 0))

	want := []float32{0, 1.5, -2, 30, 4}
	if len(nums) != len(want) {
		t.Fatalf("expected %d numbers, got %v", len(want), nums)
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Errorf("number %d = %v, want %v", i, nums[i], want[i])
		}
	}
}

func TestExtractObjectArray_Nested(t *testing.T) {
	j := `["junk", {"A": {"B": 1}}, {"C": 2}]`
	objs := extractObjectArray(j, 0)

	if len(objs) != 2 {
		t.Fatalf("expected 2 objects, got %v", objs)
	}
	if objs[0] != `{"A": {"B": 1}}` {
		t.Errorf("nested object not kept whole: %q", objs[0])
	}
	if objs[1] != `{"C": 2}` {
		t.Errorf("unexpected second object %q", objs[1])
	}
}

func TestReadBool(t *testing.T) {
	j := `{"A": true, "B": false, "C": 1}`
	if !readBool(j, findKey(j, "A", 0)) {
		t.Error("expected A true")
	}
	if readBool(j, findKey(j, "B", 0)) {
		t.Error("expected B false")
	}
	if readBool(j, findKey(j, "C", 0)) {
		t.Error("expected non-boolean to read false")
	}
}
