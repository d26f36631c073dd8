package live2d

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Memory alignment the core requires for moc and model buffers.
const (
	alignofMoc   = 64
	alignofModel = 16
)

// CubismCore binds the native Live2D Cubism Core shared library through
// a runtime FFI, no cgo involved. One core can revive any number of
// rigs; the library stays loaded for the process lifetime.
type CubismCore struct {
	lib uintptr

	getVersion             func() uint32
	hasMocConsistency      func(addr unsafe.Pointer, size uint32) int32
	reviveMocInPlace       func(addr unsafe.Pointer, size uint32) uintptr
	getSizeofModel         func(moc uintptr) uint32
	initializeModelInPlace func(moc uintptr, addr unsafe.Pointer, size uint32) uintptr
	updateModel            func(model uintptr)
	readCanvasInfo         func(model uintptr, outSize, outOrigin, outPPU unsafe.Pointer)
	resetDynamicFlags      func(model uintptr)

	getParameterCount         func(model uintptr) int32
	getParameterIDs           func(model uintptr) uintptr
	getParameterMinimumValues func(model uintptr) uintptr
	getParameterMaximumValues func(model uintptr) uintptr
	getParameterDefaultValues func(model uintptr) uintptr
	getParameterValues        func(model uintptr) uintptr

	getPartCount     func(model uintptr) int32
	getPartIDs       func(model uintptr) uintptr
	getPartOpacities func(model uintptr) uintptr

	getDrawableCount          func(model uintptr) int32
	getDrawableConstantFlags  func(model uintptr) uintptr
	getDrawableDynamicFlags   func(model uintptr) uintptr
	getDrawableTextureIndices func(model uintptr) uintptr
	getDrawableRenderOrders   func(model uintptr) uintptr
	getDrawableOpacities      func(model uintptr) uintptr
	getDrawableVertexCounts   func(model uintptr) uintptr
	getDrawableVertexPos      func(model uintptr) uintptr
	getDrawableVertexUvs      func(model uintptr) uintptr
	getDrawableIndexCounts    func(model uintptr) uintptr
	getDrawableIndices        func(model uintptr) uintptr
	getDrawableMultiplyColors func(model uintptr) uintptr
	getDrawableScreenColors   func(model uintptr) uintptr
	getDrawableMaskCounts     func(model uintptr) uintptr
	getDrawableMasks          func(model uintptr) uintptr
}

// LoadCore opens the Cubism Core shared library at path and resolves
// every symbol the engine needs.
func LoadCore(path string) (core *CubismCore, err error) {
	lib, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("opening cubism core %s: %w", path, err)
	}

	// RegisterLibFunc panics on a missing symbol; surface that as an
	// error so a wrong or truncated library fails LoadCore, not a draw.
	defer func() {
		if r := recover(); r != nil {
			core = nil
			err = fmt.Errorf("resolving cubism core symbols: %v", r)
		}
	}()

	c := &CubismCore{lib: lib}
	purego.RegisterLibFunc(&c.getVersion, lib, "csmGetVersion")
	purego.RegisterLibFunc(&c.hasMocConsistency, lib, "csmHasMocConsistency")
	purego.RegisterLibFunc(&c.reviveMocInPlace, lib, "csmReviveMocInPlace")
	purego.RegisterLibFunc(&c.getSizeofModel, lib, "csmGetSizeofModel")
	purego.RegisterLibFunc(&c.initializeModelInPlace, lib, "csmInitializeModelInPlace")
	purego.RegisterLibFunc(&c.updateModel, lib, "csmUpdateModel")
	purego.RegisterLibFunc(&c.readCanvasInfo, lib, "csmReadCanvasInfo")
	purego.RegisterLibFunc(&c.resetDynamicFlags, lib, "csmResetDrawableDynamicFlags")

	purego.RegisterLibFunc(&c.getParameterCount, lib, "csmGetParameterCount")
	purego.RegisterLibFunc(&c.getParameterIDs, lib, "csmGetParameterIds")
	purego.RegisterLibFunc(&c.getParameterMinimumValues, lib, "csmGetParameterMinimumValues")
	purego.RegisterLibFunc(&c.getParameterMaximumValues, lib, "csmGetParameterMaximumValues")
	purego.RegisterLibFunc(&c.getParameterDefaultValues, lib, "csmGetParameterDefaultValues")
	purego.RegisterLibFunc(&c.getParameterValues, lib, "csmGetParameterValues")

	purego.RegisterLibFunc(&c.getPartCount, lib, "csmGetPartCount")
	purego.RegisterLibFunc(&c.getPartIDs, lib, "csmGetPartIds")
	purego.RegisterLibFunc(&c.getPartOpacities, lib, "csmGetPartOpacities")

	purego.RegisterLibFunc(&c.getDrawableCount, lib, "csmGetDrawableCount")
	purego.RegisterLibFunc(&c.getDrawableConstantFlags, lib, "csmGetDrawableConstantFlags")
	purego.RegisterLibFunc(&c.getDrawableDynamicFlags, lib, "csmGetDrawableDynamicFlags")
	purego.RegisterLibFunc(&c.getDrawableTextureIndices, lib, "csmGetDrawableTextureIndices")
	purego.RegisterLibFunc(&c.getDrawableRenderOrders, lib, "csmGetDrawableRenderOrders")
	purego.RegisterLibFunc(&c.getDrawableOpacities, lib, "csmGetDrawableOpacities")
	purego.RegisterLibFunc(&c.getDrawableVertexCounts, lib, "csmGetDrawableVertexCounts")
	purego.RegisterLibFunc(&c.getDrawableVertexPos, lib, "csmGetDrawableVertexPositions")
	purego.RegisterLibFunc(&c.getDrawableVertexUvs, lib, "csmGetDrawableVertexUvs")
	purego.RegisterLibFunc(&c.getDrawableIndexCounts, lib, "csmGetDrawableIndexCounts")
	purego.RegisterLibFunc(&c.getDrawableIndices, lib, "csmGetDrawableIndices")
	purego.RegisterLibFunc(&c.getDrawableMultiplyColors, lib, "csmGetDrawableMultiplyColors")
	purego.RegisterLibFunc(&c.getDrawableScreenColors, lib, "csmGetDrawableScreenColors")
	purego.RegisterLibFunc(&c.getDrawableMaskCounts, lib, "csmGetDrawableMaskCounts")
	purego.RegisterLibFunc(&c.getDrawableMasks, lib, "csmGetDrawableMasks")

	return c, nil
}

// Version returns the core library version word (major.minor.patch
// packed as 8.8.16 bits).
func (c *CubismCore) Version() uint32 {
	return c.getVersion()
}

// LoadRig revives a moc binary into an evaluable rig.
func (c *CubismCore) LoadRig(data []byte) (Rig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty moc data")
	}

	mocBuf, mocPtr := alignedBuffer(len(data), alignofMoc)
	copy(unsafe.Slice((*byte)(mocPtr), len(data)), data)

	if c.hasMocConsistency(mocPtr, uint32(len(data))) == 0 {
		return nil, fmt.Errorf("moc consistency check failed")
	}
	moc := c.reviveMocInPlace(mocPtr, uint32(len(data)))
	if moc == 0 {
		return nil, fmt.Errorf("moc revive failed")
	}

	modelSize := c.getSizeofModel(moc)
	modelBuf, modelPtr := alignedBuffer(int(modelSize), alignofModel)
	model := c.initializeModelInPlace(moc, modelPtr, modelSize)
	if model == 0 {
		return nil, fmt.Errorf("model initialize failed")
	}

	r := &cubismRig{
		core:     c,
		mocBuf:   mocBuf,
		modelBuf: modelBuf,
		moc:      moc,
		model:    model,
	}
	r.cacheViews()
	return r, nil
}

// cubismRig is a revived moc plus cached Go views over the model's
// internal arrays. The underlying pointers are stable for the model's
// lifetime; only the values behind them change on Update.
type cubismRig struct {
	core     *CubismCore
	mocBuf   []byte // keeps the revived moc memory alive
	modelBuf []byte
	moc      uintptr
	model    uintptr

	paramIDs      []string
	paramValues   []float32
	paramDefaults []float32
	paramMins     []float32
	paramMaxs     []float32

	partIDs       []string
	partOpacities []float32

	canvas CanvasInfo

	drawables      []Drawable
	renderOrders   []int32
	dynFlags       []uint8
	texIndices     []int32
	opacities      []float32
	multiplyColors []float32
	screenColors   []float32
}

func (r *cubismRig) cacheViews() {
	c := r.core

	pc := int(c.getParameterCount(r.model))
	r.paramIDs = goStringArray(c.getParameterIDs(r.model), pc)
	r.paramValues = floatSlice(c.getParameterValues(r.model), pc)
	r.paramDefaults = floatSlice(c.getParameterDefaultValues(r.model), pc)
	r.paramMins = floatSlice(c.getParameterMinimumValues(r.model), pc)
	r.paramMaxs = floatSlice(c.getParameterMaximumValues(r.model), pc)

	partCount := int(c.getPartCount(r.model))
	r.partIDs = goStringArray(c.getPartIDs(r.model), partCount)
	r.partOpacities = floatSlice(c.getPartOpacities(r.model), partCount)

	var size, origin [2]float32
	var ppu float32
	c.readCanvasInfo(r.model, unsafe.Pointer(&size), unsafe.Pointer(&origin), unsafe.Pointer(&ppu))
	r.canvas = CanvasInfo{
		Width:         size[0],
		Height:        size[1],
		OriginX:       origin[0],
		OriginY:       origin[1],
		PixelsPerUnit: ppu,
	}

	dc := int(c.getDrawableCount(r.model))
	constFlags := byteSlice(c.getDrawableConstantFlags(r.model), dc)
	r.dynFlags = byteSlice(c.getDrawableDynamicFlags(r.model), dc)
	r.renderOrders = int32Slice(c.getDrawableRenderOrders(r.model), dc)
	r.texIndices = int32Slice(c.getDrawableTextureIndices(r.model), dc)
	r.opacities = floatSlice(c.getDrawableOpacities(r.model), dc)
	r.multiplyColors = floatSlice(c.getDrawableMultiplyColors(r.model), dc*4)
	r.screenColors = floatSlice(c.getDrawableScreenColors(r.model), dc*4)

	vertexCounts := int32Slice(c.getDrawableVertexCounts(r.model), dc)
	indexCounts := int32Slice(c.getDrawableIndexCounts(r.model), dc)
	maskCounts := int32Slice(c.getDrawableMaskCounts(r.model), dc)
	positions := pointerSlice(c.getDrawableVertexPos(r.model), dc)
	uvs := pointerSlice(c.getDrawableVertexUvs(r.model), dc)
	indices := pointerSlice(c.getDrawableIndices(r.model), dc)
	masks := pointerSlice(c.getDrawableMasks(r.model), dc)

	r.drawables = make([]Drawable, dc)
	for i := 0; i < dc; i++ {
		d := &r.drawables[i]
		d.Index = i
		d.ConstantFlags = constFlags[i]
		vc := int(vertexCounts[i])
		d.VertexPositions = floatSlice(positions[i], vc*2)
		d.VertexUVs = floatSlice(uvs[i], vc*2)
		d.Indices = uint16Slice(indices[i], int(indexCounts[i]))
		d.Masks = int32Slice(masks[i], int(maskCounts[i]))
	}
}

func (r *cubismRig) ParameterIDs() []string       { return r.paramIDs }
func (r *cubismRig) ParameterValues() []float32   { return r.paramValues }
func (r *cubismRig) ParameterDefaults() []float32 { return r.paramDefaults }
func (r *cubismRig) ParameterMinimums() []float32 { return r.paramMins }
func (r *cubismRig) ParameterMaximums() []float32 { return r.paramMaxs }
func (r *cubismRig) PartIDs() []string            { return r.partIDs }
func (r *cubismRig) PartOpacities() []float32     { return r.partOpacities }
func (r *cubismRig) Canvas() CanvasInfo           { return r.canvas }
func (r *cubismRig) DrawableCount() int           { return len(r.drawables) }

func (r *cubismRig) Drawables() []Drawable {
	for i := range r.drawables {
		d := &r.drawables[i]
		d.RenderOrder = r.renderOrders[i]
		d.DynamicFlags = r.dynFlags[i]
		d.TextureIndex = r.texIndices[i]
		d.Opacity = r.opacities[i]
		copy(d.MultiplyColor[:], r.multiplyColors[i*4:i*4+4])
		copy(d.ScreenColor[:], r.screenColors[i*4:i*4+4])
	}
	return r.drawables
}

func (r *cubismRig) Update() {
	r.core.updateModel(r.model)
}

func (r *cubismRig) ResetDynamicFlags() {
	r.core.resetDynamicFlags(r.model)
}

// Release drops the moc and model buffers. The core has no free
// function; the memory is plain Go-owned storage revived in place.
func (r *cubismRig) Release() {
	r.moc = 0
	r.model = 0
	r.mocBuf = nil
	r.modelBuf = nil
	r.drawables = nil
}

// alignedBuffer allocates size bytes aligned to align and returns the
// backing slice (which must be kept alive) plus the aligned pointer.
func alignedBuffer(size, align int) ([]byte, unsafe.Pointer) {
	buf := make([]byte, size+align)
	base := uintptr(unsafe.Pointer(&buf[0]))
	off := (uintptr(align) - base%uintptr(align)) % uintptr(align)
	return buf, unsafe.Pointer(&buf[off])
}

func floatSlice(p uintptr, n int) []float32 {
	if p == 0 || n <= 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(p)), n)
}

func int32Slice(p uintptr, n int) []int32 {
	if p == 0 || n <= 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(p)), n)
}

func byteSlice(p uintptr, n int) []uint8 {
	if p == 0 || n <= 0 {
		return nil
	}
	return unsafe.Slice((*uint8)(unsafe.Pointer(p)), n)
}

func uint16Slice(p uintptr, n int) []uint16 {
	if p == 0 || n <= 0 {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(p)), n)
}

func pointerSlice(p uintptr, n int) []uintptr {
	if p == 0 || n <= 0 {
		return nil
	}
	return unsafe.Slice((*uintptr)(unsafe.Pointer(p)), n)
}

func goStringArray(p uintptr, n int) []string {
	ptrs := pointerSlice(p, n)
	out := make([]string, len(ptrs))
	for i, sp := range ptrs {
		out[i] = goString(sp)
	}
	return out
}

func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Pointer(p + uintptr(n))) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}
