package renderer

import (
	"github.com/gameswu/nyadeskpet-live2d/pkg/live2d"
	"github.com/gameswu/nyadeskpet-live2d/pkg/math"
)

// ViewTransform is the user-controlled part of the projection: a uniform
// zoom plus a pan offset in normalized device coordinates.
type ViewTransform struct {
	Scale   float32
	OffsetX float32
	OffsetY float32
}

// DefaultView returns the identity view transform.
func DefaultView() ViewTransform {
	return ViewTransform{Scale: 1}
}

// Projection maps model coordinates to normalized device coordinates.
// The model canvas is fit into the viewport preserving aspect ratio,
// centered on the canvas origin, then the user zoom and pan apply.
// Returns identity when the viewport has no area.
func Projection(canvas live2d.CanvasInfo, viewW, viewH int, view ViewTransform) math.Mat4 {
	if viewW <= 0 || viewH <= 0 || canvas.PixelsPerUnit == 0 {
		return math.Identity()
	}

	mw := canvas.Width / canvas.PixelsPerUnit
	mh := canvas.Height / canvas.PixelsPerUnit
	if mw == 0 || mh == 0 {
		return math.Identity()
	}

	ma := mw / mh
	va := float32(viewW) / float32(viewH)

	var sx, sy float32
	if va > ma {
		sy = 2 / mh
		sx = sy * (float32(viewH) / float32(viewW))
	} else {
		sx = 2 / mw
		sy = sx * (float32(viewW) / float32(viewH))
	}

	centerX := (canvas.Width/2 - canvas.OriginX) / canvas.PixelsPerUnit
	centerY := (canvas.OriginY - canvas.Height/2) / canvas.PixelsPerUnit
	tx := -centerX * sx
	ty := -centerY * sy

	sx *= view.Scale
	sy *= view.Scale
	tx = tx*view.Scale + view.OffsetX
	ty = ty*view.Scale + view.OffsetY

	return math.ScaleTranslate2D(sx, sy, tx, ty)
}
