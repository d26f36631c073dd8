package live2d

// Parameter declares one scalar of a StaticRig.
type Parameter struct {
	ID      string
	Min     float32
	Max     float32
	Default float32
}

// StaticRigConfig describes a StaticRig.
type StaticRigConfig struct {
	Parameters []Parameter
	Parts      []string
	Canvas     CanvasInfo
	Drawables  []Drawable
}

// StaticRig is a pure-Go Rig with fixed geometry: parameter values are
// stored and clamped but drive no deformation. It backs the engine and
// animation tests and doubles as a stand-in when the native core is not
// available.
type StaticRig struct {
	ids       []string
	values    []float32
	defaults  []float32
	minimums  []float32
	maximums  []float32
	partIDs   []string
	opacities []float32
	canvas    CanvasInfo
	drawables []Drawable
	released  bool
}

// NewStaticRig builds a StaticRig from the given description. Parameter
// values start at their defaults and part opacities at 1.
func NewStaticRig(cfg StaticRigConfig) *StaticRig {
	r := &StaticRig{
		canvas:    cfg.Canvas,
		drawables: cfg.Drawables,
	}
	for _, p := range cfg.Parameters {
		r.ids = append(r.ids, p.ID)
		r.values = append(r.values, p.Default)
		r.defaults = append(r.defaults, p.Default)
		r.minimums = append(r.minimums, p.Min)
		r.maximums = append(r.maximums, p.Max)
	}
	for _, id := range cfg.Parts {
		r.partIDs = append(r.partIDs, id)
		r.opacities = append(r.opacities, 1)
	}
	for i := range r.drawables {
		r.drawables[i].Index = i
	}
	return r
}

func (r *StaticRig) ParameterIDs() []string        { return r.ids }
func (r *StaticRig) ParameterValues() []float32    { return r.values }
func (r *StaticRig) ParameterDefaults() []float32  { return r.defaults }
func (r *StaticRig) ParameterMinimums() []float32  { return r.minimums }
func (r *StaticRig) ParameterMaximums() []float32  { return r.maximums }
func (r *StaticRig) PartIDs() []string             { return r.partIDs }
func (r *StaticRig) PartOpacities() []float32      { return r.opacities }
func (r *StaticRig) Canvas() CanvasInfo            { return r.canvas }
func (r *StaticRig) DrawableCount() int            { return len(r.drawables) }
func (r *StaticRig) Drawables() []Drawable         { return r.drawables }

// Update is a no-op: static geometry does not deform.
func (r *StaticRig) Update() {}

// ResetDynamicFlags clears the change-notification bits, keeping only
// visibility.
func (r *StaticRig) ResetDynamicFlags() {
	for i := range r.drawables {
		r.drawables[i].DynamicFlags &= FlagVisible
	}
}

// Release marks the rig released.
func (r *StaticRig) Release() {
	r.released = true
}

// Released reports whether Release has been called.
func (r *StaticRig) Released() bool {
	return r.released
}
