// Package texture provides image decoding and texture processing utilities.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// MaxDimension is the largest texture edge uploaded to the GPU. Larger
// images are halved until both edges fit.
const MaxDimension = 2048

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// DecodePNG decodes a PNG file into an RGBA image ready for GL upload:
// rows are flipped so the first row is the bottom of the image, and the
// result is downsampled until both edges are at most MaxDimension.
func DecodePNG(data []byte) (*image.RGBA, error) {
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return nil, fmt.Errorf("not a PNG file")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding PNG: %w", err)
	}

	rgba := ImageToRGBA(img)
	FlipVertical(rgba)

	for rgba.Bounds().Dx() > MaxDimension || rgba.Bounds().Dy() > MaxDimension {
		rgba = Halve(rgba)
	}

	return rgba, nil
}

// FlipVertical mirrors an RGBA image in place along the horizontal axis.
func FlipVertical(img *image.RGBA) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	rowLen := width * 4

	tmp := make([]byte, rowLen)
	for y := 0; y < height/2; y++ {
		top := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		bot := img.Pix[(height-1-y)*img.Stride : (height-1-y)*img.Stride+rowLen]
		copy(tmp, top)
		copy(top, bot)
		copy(bot, tmp)
	}
}

// Halve returns a new image at half resolution using a 2x2 box filter.
// Odd dimensions round down but never below one pixel.
func Halve(img *image.RGBA) *image.RGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	dstW := max(srcW/2, 1)
	dstH := max(srcH/2, 1)

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			sx := min(x*2, srcW-1)
			sy := min(y*2, srcH-1)
			sx1 := min(sx+1, srcW-1)
			sy1 := min(sy+1, srcH-1)

			di := dst.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				sum := int(img.Pix[img.PixOffset(sx, sy)+c]) +
					int(img.Pix[img.PixOffset(sx1, sy)+c]) +
					int(img.Pix[img.PixOffset(sx, sy1)+c]) +
					int(img.Pix[img.PixOffset(sx1, sy1)+c])
				dst.Pix[di+c] = uint8(sum / 4)
			}
		}
	}
	return dst
}

// ImageToRGBA converts any image.Image to *image.RGBA.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.At(x, y)
			r16, g16, b16, a16 := c.RGBA()
			// Convert from 16-bit to 8-bit
			rgba.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{
				R: uint8(r16 >> 8),
				G: uint8(g16 >> 8),
				B: uint8(b16 >> 8),
				A: uint8(a16 >> 8),
			})
		}
	}

	return rgba
}
