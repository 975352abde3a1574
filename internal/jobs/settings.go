package jobs

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Filter is the resampling filter used by the resize step.
type Filter int

const (
	Nearest Filter = iota
	Triangle
	CatmullRom
	Gaussian
	Lanczos3
)

// DefaultFilter is used when neither the file nor the shared settings name one.
const DefaultFilter = Gaussian

var filterNames = map[Filter]string{
	Nearest:    "Nearest",
	Triangle:   "Triangle",
	CatmullRom: "CatmullRom",
	Gaussian:   "Gaussian",
	Lanczos3:   "Lanczos3",
}

// ParseFilter maps a configuration name (e.g. "Lanczos3") to a Filter.
func ParseFilter(name string) (Filter, error) {
	for f, n := range filterNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown resize_filter %q", name)
}

func (f Filter) String() string {
	if n, ok := filterNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

func (f Filter) resample() imaging.ResampleFilter {
	switch f {
	case Nearest:
		return imaging.NearestNeighbor
	case Triangle:
		return imaging.Linear
	case CatmullRom:
		return imaging.CatmullRom
	case Lanczos3:
		return imaging.Lanczos
	default:
		return imaging.Gaussian
	}
}

// SizeKind says which dimensions of a Size are set.
type SizeKind int

const (
	SizeWidth SizeKind = iota
	SizeHeight
	SizeWidthHeight
)

// Size is the resize target. With both dimensions set the image is fitted
// inside the box while keeping its aspect ratio.
type Size struct {
	Kind   SizeKind
	Width  int
	Height int
}

func Width(w int) Size          { return Size{Kind: SizeWidth, Width: w} }
func Height(h int) Size         { return Size{Kind: SizeHeight, Height: h} }
func WidthHeight(w, h int) Size { return Size{Kind: SizeWidthHeight, Width: w, Height: h} }

func (s Size) String() string {
	switch s.Kind {
	case SizeWidth:
		return fmt.Sprintf("new width %dpx", s.Width)
	case SizeHeight:
		return fmt.Sprintf("new height %dpx", s.Height)
	default:
		return fmt.Sprintf("as close as possible to width %dpx and height %dpx while keeping aspect ratio", s.Width, s.Height)
	}
}

// Resize configures the resize step.
type Resize struct {
	Size Size
}

// Jobs holds the optional adjustments for one image. Nil pointers are absent
// jobs; each field toggles exactly one step.
type Jobs struct {
	Resize    *Resize
	Blur      *float64
	Sharpen   *int
	Contrast  *float64
	Brighten  *int
	HueRotate *int

	FlipV     bool
	FlipH     bool
	Rotate90  bool
	Rotate180 bool
	Rotate270 bool
	Grayscale bool
	Invert    bool
}

// Settings is the shape shared by per-file settings and the global defaults.
type Settings struct {
	Jobs
	ResizeFilter *Filter
}

// Filter returns the resolved resize filter.
func (s Settings) Filter() Filter {
	if s.ResizeFilter != nil {
		return *s.ResizeFilter
	}
	return DefaultFilter
}

// Merge combines per-file settings with the shared defaults. Optional fields
// take the file value when present and fall back to the global one; boolean
// toggles are enabled if either side enables them.
func Merge(file, global Settings) Settings {
	return Settings{
		Jobs: Jobs{
			Resize:    firstSet(file.Resize, global.Resize),
			Blur:      firstSet(file.Blur, global.Blur),
			Sharpen:   firstSet(file.Sharpen, global.Sharpen),
			Contrast:  firstSet(file.Contrast, global.Contrast),
			Brighten:  firstSet(file.Brighten, global.Brighten),
			HueRotate: firstSet(file.HueRotate, global.HueRotate),

			FlipV:     file.FlipV || global.FlipV,
			FlipH:     file.FlipH || global.FlipH,
			Rotate90:  file.Rotate90 || global.Rotate90,
			Rotate180: file.Rotate180 || global.Rotate180,
			Rotate270: file.Rotate270 || global.Rotate270,
			Grayscale: file.Grayscale || global.Grayscale,
			Invert:    file.Invert || global.Invert,
		},
		ResizeFilter: firstSet(file.ResizeFilter, global.ResizeFilter),
	}
}

func firstSet[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}
