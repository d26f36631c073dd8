// Package live2d defines the boundary to the rig evaluation core: the
// numerical library that turns a parameter value array into per-drawable
// geometry. The production implementation binds the native Cubism Core
// shared library (see cubism.go); tests and headless callers can use the
// pure-Go StaticRig instead.
package live2d

// Constant drawable flags, fixed for the lifetime of a rig.
const (
	FlagBlendAdditive       uint8 = 1 << 0
	FlagBlendMultiplicative uint8 = 1 << 1
	FlagDoubleSided         uint8 = 1 << 2
	FlagInvertedMask        uint8 = 1 << 3
)

// Dynamic drawable flags, refreshed by Update and cleared (except
// FlagVisible) by ResetDynamicFlags.
const (
	FlagVisible                uint8 = 1 << 0
	FlagVisibilityChanged      uint8 = 1 << 1
	FlagOpacityChanged         uint8 = 1 << 2
	FlagDrawOrderChanged       uint8 = 1 << 3
	FlagRenderOrderChanged     uint8 = 1 << 4
	FlagVertexPositionsChanged uint8 = 1 << 5
	FlagBlendColorChanged      uint8 = 1 << 6
)

// CanvasInfo describes the model's authoring canvas, used to build the
// projection that fits the model into a viewport.
type CanvasInfo struct {
	Width         float32
	Height        float32
	OriginX       float32
	OriginY       float32
	PixelsPerUnit float32
}

// Drawable is the per-frame render state of one mesh piece of the rig.
// Slice fields alias rig-owned memory: valid until the rig is released,
// refreshed in place by Update.
type Drawable struct {
	Index           int
	RenderOrder     int32
	DynamicFlags    uint8
	ConstantFlags   uint8
	TextureIndex    int32
	Opacity         float32
	VertexPositions []float32 // x,y interleaved, model coordinates
	VertexUVs       []float32 // u,v interleaved
	Indices         []uint16  // triangle list
	MultiplyColor   [4]float32
	ScreenColor     [4]float32
	Masks           []int32 // indices of drawables clipping this one
}

// Visible reports whether the drawable should be rendered this frame.
func (d *Drawable) Visible() bool {
	return d.DynamicFlags&FlagVisible != 0
}

// Rig evaluates one character model. Implementations are not safe for
// concurrent use; all calls must come from the render thread.
//
// The float32 slices returned by the Parameter*/PartOpacities accessors
// alias rig-owned storage: writes to ParameterValues and PartOpacities
// feed the next Update, and all of them become invalid after Release.
type Rig interface {
	ParameterIDs() []string
	ParameterValues() []float32
	ParameterDefaults() []float32
	ParameterMinimums() []float32
	ParameterMaximums() []float32

	PartIDs() []string
	PartOpacities() []float32

	Canvas() CanvasInfo

	DrawableCount() int
	// Drawables returns the current drawable states. The returned slice
	// is reused between calls.
	Drawables() []Drawable

	// Update recomputes drawable geometry from the current parameter
	// values and part opacities.
	Update()
	// ResetDynamicFlags clears the per-frame change-notification bits.
	ResetDynamicFlags()
	// Release frees rig memory. The rig must not be used afterwards.
	Release()
}

// Loader constructs a Rig from a moc binary.
type Loader interface {
	LoadRig(data []byte) (Rig, error)
}
