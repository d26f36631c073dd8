package live2d

// ParamTable is the engine's view of a rig's parameter arrays plus a
// name index. The slices alias rig storage; the table stays valid for
// as long as the rig it was built from.
type ParamTable struct {
	Values   []float32
	Defaults []float32
	Minimums []float32
	Maximums []float32
	Index    map[string]int
}

// NewParamTable builds a table over the given rig's parameters.
func NewParamTable(r Rig) *ParamTable {
	ids := r.ParameterIDs()
	t := &ParamTable{
		Values:   r.ParameterValues(),
		Defaults: r.ParameterDefaults(),
		Minimums: r.ParameterMinimums(),
		Maximums: r.ParameterMaximums(),
		Index:    make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		t.Index[id] = i
	}
	return t
}

// Count returns the number of parameters.
func (t *ParamTable) Count() int {
	return len(t.Values)
}

// Lookup resolves a parameter name to its index.
func (t *ParamTable) Lookup(id string) (int, bool) {
	i, ok := t.Index[id]
	return i, ok
}

// Clamp limits parameter i to its declared range.
func (t *ParamTable) Clamp(i int) {
	if t.Values[i] < t.Minimums[i] {
		t.Values[i] = t.Minimums[i]
	} else if t.Values[i] > t.Maximums[i] {
		t.Values[i] = t.Maximums[i]
	}
}

// ClampValue limits v to parameter i's declared range.
func (t *ParamTable) ClampValue(i int, v float32) float32 {
	if v < t.Minimums[i] {
		return t.Minimums[i]
	}
	if v > t.Maximums[i] {
		return t.Maximums[i]
	}
	return v
}

// ResetToDefaults restores every parameter to its declared default.
func (t *ParamTable) ResetToDefaults() {
	copy(t.Values, t.Defaults)
}
