package jobs

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Kind identifies a transform step.
type Kind string

const (
	KindResize    Kind = "resize"
	KindBlur      Kind = "blur"
	KindSharpen   Kind = "sharpen"
	KindContrast  Kind = "contrast"
	KindBrighten  Kind = "brighten"
	KindHueRotate Kind = "huerotate"
	KindFlipV     Kind = "flipv"
	KindFlipH     Kind = "fliph"
	KindRotate90  Kind = "rotate90"
	KindRotate180 Kind = "rotate180"
	KindRotate270 Kind = "rotate270"
	KindGrayscale Kind = "grayscale"
	KindInvert    Kind = "invert"
)

// Step is one transform in a chain. Apply is total over a decoded image.
type Step struct {
	Kind        Kind
	Description string
	Fields      []any // key/value pairs for structured logging
	Apply       func(image.Image) image.Image
}

// Build returns the steps enabled by s, always in the order
// resize, blur, sharpen, contrast, brighten, huerotate, flipv, fliph,
// rotate90, rotate180, rotate270, grayscale, invert.
func Build(s Settings) []Step {
	var steps []Step

	if s.Resize != nil {
		steps = append(steps, resizeStep(s.Resize.Size, s.Filter()))
	}
	if s.Blur != nil {
		sigma := *s.Blur
		steps = append(steps, Step{
			Kind:        KindBlur,
			Description: fmt.Sprintf("with a blur of %g", sigma),
			Fields:      []any{"sigma", sigma},
			Apply:       func(img image.Image) image.Image { return imaging.Blur(img, sigma) },
		})
	}
	if s.Sharpen != nil {
		amount := *s.Sharpen
		steps = append(steps, Step{
			Kind:        KindSharpen,
			Description: fmt.Sprintf("with sharpening level %d", amount),
			Fields:      []any{"amount", amount},
			Apply:       func(img image.Image) image.Image { return imaging.Sharpen(img, float64(amount)) },
		})
	}
	if s.Contrast != nil {
		pct := *s.Contrast
		steps = append(steps, Step{
			Kind:        KindContrast,
			Description: fmt.Sprintf("with contrast level %g", pct),
			Fields:      []any{"contrast", pct},
			Apply:       func(img image.Image) image.Image { return imaging.AdjustContrast(img, pct) },
		})
	}
	if s.Brighten != nil {
		delta := *s.Brighten
		steps = append(steps, Step{
			Kind:        KindBrighten,
			Description: fmt.Sprintf("with brightness level %d", delta),
			Fields:      []any{"delta", delta},
			Apply:       func(img image.Image) image.Image { return brighten(img, delta) },
		})
	}
	if s.HueRotate != nil {
		deg := *s.HueRotate
		steps = append(steps, Step{
			Kind:        KindHueRotate,
			Description: fmt.Sprintf("with hue rotation of %d", deg),
			Fields:      []any{"degrees", deg},
			Apply:       func(img image.Image) image.Image { return hueRotate(img, deg) },
		})
	}
	if s.FlipV {
		steps = append(steps, simple(KindFlipV, "and flipping vertically", imaging.FlipV))
	}
	if s.FlipH {
		steps = append(steps, simple(KindFlipH, "and flipping horizontally", imaging.FlipH))
	}
	// imaging rotates counter-clockwise; the configured rotations are clockwise.
	if s.Rotate90 {
		steps = append(steps, simple(KindRotate90, "and rotating 90 degrees", imaging.Rotate270))
	}
	if s.Rotate180 {
		steps = append(steps, simple(KindRotate180, "and rotating 180 degrees", imaging.Rotate180))
	}
	if s.Rotate270 {
		steps = append(steps, simple(KindRotate270, "and rotating 270 degrees", imaging.Rotate90))
	}
	if s.Grayscale {
		steps = append(steps, simple(KindGrayscale, "and changing image to grayscale", imaging.Grayscale))
	}
	if s.Invert {
		steps = append(steps, simple(KindInvert, "and inverting image", imaging.Invert))
	}
	return steps
}

// Kinds lists the kinds of steps, in order.
func Kinds(steps []Step) []Kind {
	out := make([]Kind, len(steps))
	for i, s := range steps {
		out[i] = s.Kind
	}
	return out
}

func simple(kind Kind, desc string, fn func(image.Image) *image.NRGBA) Step {
	return Step{
		Kind:        kind,
		Description: desc,
		Apply:       func(img image.Image) image.Image { return fn(img) },
	}
}

func resizeStep(size Size, filter Filter) Step {
	fields := []any{"filter", filter.String()}
	switch size.Kind {
	case SizeWidth:
		fields = append(fields, "width", size.Width)
	case SizeHeight:
		fields = append(fields, "height", size.Height)
	default:
		fields = append(fields, "width", size.Width, "height", size.Height)
	}
	return Step{
		Kind:        KindResize,
		Description: fmt.Sprintf("with %s using %s filter", size, filter),
		Fields:      fields,
		Apply: func(img image.Image) image.Image {
			b := img.Bounds()
			w, h := FitDimensions(b.Dx(), b.Dy(), size)
			return imaging.Resize(img, w, h, filter.resample())
		},
	}
}
