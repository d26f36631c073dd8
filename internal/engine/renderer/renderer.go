// Package renderer provides the OpenGL drawing pipeline for rigged models.
package renderer

import (
	"fmt"
	"image"
	"sort"
	"unsafe"

	"go.uber.org/zap"

	"github.com/gameswu/nyadeskpet-live2d/internal/engine/framebuffer"
	"github.com/gameswu/nyadeskpet-live2d/internal/engine/shader"
	"github.com/gameswu/nyadeskpet-live2d/internal/logger"
	"github.com/gameswu/nyadeskpet-live2d/pkg/live2d"
	"github.com/gameswu/nyadeskpet-live2d/pkg/math"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// program bundles a shader object with its attribute and uniform locations.
type program struct {
	id             uint32
	aPosition      uint32
	aTexCoord      uint32
	uMatrix        int32
	uTexture       int32
	uOpacity       int32
	uMultiplyColor int32
	uScreenColor   int32
	uMask          int32
	uViewportSize  int32
}

// Renderer draws a rig's drawables through the three-program pipeline:
// plain, mask generation, and masked. All methods must run on the thread
// owning the GL context.
type Renderer struct {
	plain  program
	mask   program
	masked program

	// Core profile requires a bound VAO; one is shared by all draws,
	// with vertex data streamed into the VBOs per drawable.
	vao    uint32
	posVBO uint32
	uvVBO  uint32
	ebo    uint32

	maskFB *framebuffer.Framebuffer

	textures []uint32

	viewWidth  int
	viewHeight int

	sorted []*live2d.Drawable
}

// New compiles the shader programs and allocates GPU buffers. Must be
// called after a GL context exists, on the thread that owns it.
func New() (*Renderer, error) {
	r := &Renderer{}

	var err error
	if r.plain, err = buildProgram(vertexSrc, plainFragSrc); err != nil {
		return nil, fmt.Errorf("plain program: %w", err)
	}
	if r.mask, err = buildProgram(vertexSrc, maskFragSrc); err != nil {
		return nil, fmt.Errorf("mask program: %w", err)
	}
	if r.masked, err = buildProgram(vertexSrc, maskedFragSrc); err != nil {
		return nil, fmt.Errorf("masked program: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.posVBO)
	gl.GenBuffers(1, &r.uvVBO)
	gl.GenBuffers(1, &r.ebo)

	logger.Debug("renderer programs compiled",
		zap.Uint32("plain", r.plain.id),
		zap.Uint32("mask", r.mask.id),
		zap.Uint32("masked", r.masked.id),
	)
	return r, nil
}

func buildProgram(vs, fs string) (program, error) {
	id, err := shader.CompileProgram(vs, fs)
	if err != nil {
		return program{}, err
	}
	return program{
		id:             id,
		aPosition:      uint32(shader.GetAttrib(id, "a_position")),
		aTexCoord:      uint32(shader.GetAttrib(id, "a_texCoord")),
		uMatrix:        shader.GetUniform(id, "u_matrix"),
		uTexture:       shader.GetUniform(id, "u_texture"),
		uOpacity:       shader.GetUniform(id, "u_opacity"),
		uMultiplyColor: shader.GetUniform(id, "u_multiplyColor"),
		uScreenColor:   shader.GetUniform(id, "u_screenColor"),
		uMask:          shader.GetUniform(id, "u_mask"),
		uViewportSize:  shader.GetUniform(id, "u_viewportSize"),
	}, nil
}

// ClearTransparent clears the bound framebuffer to transparent black,
// the backdrop for an overlay-style character window.
func ClearTransparent() {
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// Resize updates the viewport and resizes the mask render target.
func (r *Renderer) Resize(width, height int) {
	r.viewWidth = width
	r.viewHeight = height

	if width < 1 || height < 1 {
		return
	}
	if r.maskFB == nil {
		fb, err := framebuffer.New(int32(width), int32(height))
		if err != nil {
			logger.Error("creating mask target", zap.Error(err))
			return
		}
		r.maskFB = fb
	} else {
		r.maskFB.Resize(int32(width), int32(height))
	}
}

// UploadTexture uploads an RGBA image and returns the GL texture name.
func (r *Renderer) UploadTexture(img *image.RGBA) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// SetTextures installs the model's texture table, deleting any previous
// one. A zero entry marks a texture that failed to load; drawables
// referencing it are skipped.
func (r *Renderer) SetTextures(textures []uint32) {
	r.DeleteTextures()
	r.textures = textures
}

// DeleteTextures frees the current texture table.
func (r *Renderer) DeleteTextures() {
	for _, tex := range r.textures {
		if tex != 0 {
			gl.DeleteTextures(1, &tex)
		}
	}
	r.textures = nil
}

// Draw renders all of the rig's drawables in render order using the
// given projection, then clears the rig's per-frame dynamic flags.
func (r *Renderer) Draw(rig live2d.Rig, proj math.Mat4) {
	drawables := rig.Drawables()

	r.sorted = r.sorted[:0]
	for i := range drawables {
		r.sorted = append(r.sorted, &drawables[i])
	}
	sort.SliceStable(r.sorted, func(a, b int) bool {
		return r.sorted[a].RenderOrder < r.sorted[b].RenderOrder
	})

	// Global state for the frame
	gl.Disable(gl.SCISSOR_TEST)
	gl.Disable(gl.STENCIL_TEST)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.FrontFace(gl.CCW)
	gl.ColorMask(true, true, true, true)
	gl.BindVertexArray(r.vao)

	for _, d := range r.sorted {
		if !d.Visible() {
			continue
		}
		if d.Opacity <= 0.001 || len(d.VertexPositions) == 0 || len(d.Indices) == 0 {
			continue
		}
		if !r.textureOK(d.TextureIndex) {
			continue
		}

		hasMask := len(d.Masks) > 0 && r.maskFB != nil
		if hasMask {
			r.renderMask(drawables, d, proj)
		}

		if d.ConstantFlags&live2d.FlagDoubleSided != 0 {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.BACK)
		}

		switch {
		case d.ConstantFlags&live2d.FlagBlendAdditive != 0:
			gl.BlendFuncSeparate(gl.ONE, gl.ONE, gl.ZERO, gl.ONE)
		case d.ConstantFlags&live2d.FlagBlendMultiplicative != 0:
			gl.BlendFuncSeparate(gl.DST_COLOR, gl.ONE_MINUS_SRC_ALPHA, gl.ZERO, gl.ONE)
		default:
			gl.BlendFuncSeparate(gl.ONE, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
		}

		p := &r.plain
		if hasMask {
			p = &r.masked
		}
		gl.UseProgram(p.id)
		gl.UniformMatrix4fv(p.uMatrix, 1, false, &proj[0])

		if hasMask {
			gl.ActiveTexture(gl.TEXTURE1)
			gl.BindTexture(gl.TEXTURE_2D, r.maskFB.ColorTexture())
			gl.Uniform1i(p.uMask, 1)
			gl.Uniform2f(p.uViewportSize, float32(r.viewWidth), float32(r.viewHeight))
		}

		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.textures[d.TextureIndex])
		gl.Uniform1i(p.uTexture, 0)
		gl.Uniform1f(p.uOpacity, d.Opacity)
		gl.Uniform4f(p.uMultiplyColor, d.MultiplyColor[0], d.MultiplyColor[1], d.MultiplyColor[2], d.MultiplyColor[3])
		gl.Uniform4f(p.uScreenColor, d.ScreenColor[0], d.ScreenColor[1], d.ScreenColor[2], d.ScreenColor[3])

		r.drawGeometry(p, d)
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.CULL_FACE)

	rig.ResetDynamicFlags()
}

// renderMask unions the alpha of every masking drawable into the mask
// target, leaving the main framebuffer and viewport restored.
func (r *Renderer) renderMask(drawables []live2d.Drawable, d *live2d.Drawable, proj math.Mat4) {
	restore := r.maskFB.BindWithViewport()
	r.maskFB.Clear(0, 0, 0, 0)

	gl.Disable(gl.CULL_FACE)
	gl.BlendFuncSeparate(gl.ONE, gl.ONE, gl.ONE, gl.ONE)

	p := &r.mask
	gl.UseProgram(p.id)
	gl.UniformMatrix4fv(p.uMatrix, 1, false, &proj[0])
	gl.Uniform1i(p.uTexture, 0)
	gl.ActiveTexture(gl.TEXTURE0)

	for _, mi := range d.Masks {
		if int(mi) < 0 || int(mi) >= len(drawables) {
			continue
		}
		m := &drawables[mi]
		if len(m.VertexPositions) == 0 || len(m.Indices) == 0 {
			continue
		}
		if !r.textureOK(m.TextureIndex) {
			continue
		}

		gl.BindTexture(gl.TEXTURE_2D, r.textures[m.TextureIndex])
		gl.Uniform1f(p.uOpacity, m.Opacity)
		r.drawGeometry(p, m)
	}

	restore()
}

// drawGeometry streams the drawable's vertex data and issues the draw.
func (r *Renderer) drawGeometry(p *program, d *live2d.Drawable) {
	gl.BindBuffer(gl.ARRAY_BUFFER, r.posVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(d.VertexPositions)*4, gl.Ptr(d.VertexPositions), gl.STREAM_DRAW)
	gl.VertexAttribPointer(p.aPosition, 2, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(p.aPosition)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.uvVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(d.VertexUVs)*4, gl.Ptr(d.VertexUVs), gl.STREAM_DRAW)
	gl.VertexAttribPointer(p.aTexCoord, 2, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(p.aTexCoord)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(d.Indices)*2, gl.Ptr(d.Indices), gl.STREAM_DRAW)

	gl.DrawElements(gl.TRIANGLES, int32(len(d.Indices)), gl.UNSIGNED_SHORT, unsafe.Pointer(nil))
}

func (r *Renderer) textureOK(idx int32) bool {
	return idx >= 0 && int(idx) < len(r.textures) && r.textures[idx] != 0
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	r.DeleteTextures()
	if r.maskFB != nil {
		r.maskFB.Destroy()
		r.maskFB = nil
	}
	for _, p := range []*program{&r.plain, &r.mask, &r.masked} {
		if p.id != 0 {
			gl.DeleteProgram(p.id)
			p.id = 0
		}
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	for _, b := range []*uint32{&r.posVBO, &r.uvVBO, &r.ebo} {
		if *b != 0 {
			gl.DeleteBuffers(1, b)
			*b = 0
		}
	}
}

// Forget drops all GPU handles without deleting them, for use after the
// GL context has been lost. The renderer must be rebuilt with New.
func (r *Renderer) Forget() {
	r.textures = nil
	if r.maskFB != nil {
		r.maskFB.Forget()
		r.maskFB = nil
	}
	r.plain.id = 0
	r.mask.id = 0
	r.masked.id = 0
	r.vao = 0
	r.posVBO = 0
	r.uvVBO = 0
	r.ebo = 0
}
