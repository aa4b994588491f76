// Package preprocess turns a camera frame into a two-level bitmap suited for OCR.
package preprocess

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

const (
	// ContrastFactor stretches luminance away from the image's mean
	ContrastFactor = 2.0
	// BinarizeLevel is the luminance at or above which a pixel becomes white
	BinarizeLevel uint8 = 128
	// MinWidth below which captures are upscaled
	MinWidth = 300
	// UpscaleFactor applied to both dimensions of narrow captures
	UpscaleFactor = 2
)

// Preprocessor prepares images for OCR
type Preprocessor interface {
	Preprocess(img image.Image) *image.Gray
}

type preprocessor struct{}

// NewPreprocessor returns the fixed grayscale/contrast/binarize/upscale pipeline
func NewPreprocessor() Preprocessor {
	return &preprocessor{}
}

// Preprocess is total for any decoded image. The result is always strictly
// black and white, including after upscaling.
func (p *preprocessor) Preprocess(img image.Image) *image.Gray {
	gray := imaging.Grayscale(img)
	contrasted := stretchContrast(gray, ContrastFactor)
	binary := segment.Threshold(contrasted, BinarizeLevel)

	bounds := binary.Bounds()
	if bounds.Dx() >= MinWidth {
		return binary
	}

	// Lanczos introduces intermediate grays along edges, so threshold again
	upscaled := imaging.Resize(binary, bounds.Dx()*UpscaleFactor, bounds.Dy()*UpscaleFactor, imaging.Lanczos)
	return segment.Threshold(upscaled, BinarizeLevel)
}

// stretchContrast maps every pixel v of a grayscale image to mean+factor*(v-mean).
// The pivot is the rounded mean luminance, not mid-gray, so faint ink on a
// bright page is pushed below the binarization level.
func stretchContrast(gray *image.NRGBA, factor float64) *image.NRGBA {
	mean := meanLuminance(gray)
	return imaging.AdjustFunc(gray, func(c color.NRGBA) color.NRGBA {
		v := mean + factor*(float64(c.R)-mean)
		y := uint8(math.Max(0, math.Min(255, v)))
		return color.NRGBA{R: y, G: y, B: y, A: c.A}
	})
}

// meanLuminance expects R == G == B, as produced by imaging.Grayscale
func meanLuminance(gray *image.NRGBA) float64 {
	b := gray.Bounds()
	if b.Empty() {
		return 0
	}
	var sum uint64
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			sum += uint64(row[i])
		}
	}
	return math.Floor(float64(sum)/float64(b.Dx()*b.Dy()) + 0.5)
}
