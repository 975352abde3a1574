package jobs

import (
	"image"
	"image/color"
	"reflect"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func allEnabled() Settings {
	return Settings{Jobs: Jobs{
		Resize:    &Resize{Size: Width(10)},
		Blur:      ptr(1.5),
		Sharpen:   ptr(2),
		Contrast:  ptr(10.0),
		Brighten:  ptr(5),
		HueRotate: ptr(90),
		FlipV:     true,
		FlipH:     true,
		Rotate90:  true,
		Rotate180: true,
		Rotate270: true,
		Grayscale: true,
		Invert:    true,
	}}
}

func TestBuild_FixedOrder(t *testing.T) {
	want := []Kind{
		KindResize, KindBlur, KindSharpen, KindContrast, KindBrighten, KindHueRotate,
		KindFlipV, KindFlipH, KindRotate90, KindRotate180, KindRotate270, KindGrayscale, KindInvert,
	}
	got := Kinds(Build(allEnabled()))
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("chain order mismatch:\n got  %v\n want %v", got, want)
	}
}

func TestBuild_SkipsAbsentJobs(t *testing.T) {
	s := Settings{Jobs: Jobs{Invert: true, Blur: ptr(0.0), Grayscale: false}}
	got := Kinds(Build(s))
	want := []Kind{KindBlur, KindInvert}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if steps := Build(Settings{}); len(steps) != 0 {
		t.Fatalf("empty settings should build no steps, got %d", len(steps))
	}
}

func TestBuild_ResizeFilterResolution(t *testing.T) {
	s := Settings{Jobs: Jobs{Resize: &Resize{Size: Width(100)}}}
	if got := Build(s)[0].Fields[1]; got != "Gaussian" {
		t.Fatalf("default filter = %v, want Gaussian", got)
	}
	s.ResizeFilter = ptr(Lanczos3)
	if got := Build(s)[0].Fields[1]; got != "Lanczos3" {
		t.Fatalf("filter = %v, want Lanczos3", got)
	}
}

func TestMerge_OptionalFieldsOverride(t *testing.T) {
	global := Settings{
		Jobs: Jobs{
			Resize:   &Resize{Size: Width(200)},
			Blur:     ptr(3.0),
			Sharpen:  ptr(7),
			Brighten: ptr(-10),
		},
		ResizeFilter: ptr(Nearest),
	}
	file := Settings{
		Jobs: Jobs{
			Resize:    &Resize{Size: Height(50)},
			Blur:      ptr(0.5),
			HueRotate: ptr(45),
		},
	}

	m := Merge(file, global)
	if m.Resize.Size != Height(50) {
		t.Fatalf("resize: file value should win, got %+v", m.Resize.Size)
	}
	if *m.Blur != 0.5 {
		t.Fatalf("blur: file value should win, got %v", *m.Blur)
	}
	if m.Sharpen == nil || *m.Sharpen != 7 {
		t.Fatalf("sharpen: should fall back to global, got %v", m.Sharpen)
	}
	if m.Brighten == nil || *m.Brighten != -10 {
		t.Fatalf("brighten: should fall back to global, got %v", m.Brighten)
	}
	if m.HueRotate == nil || *m.HueRotate != 45 {
		t.Fatalf("huerotate: file-only value lost, got %v", m.HueRotate)
	}
	if m.Contrast != nil {
		t.Fatalf("contrast: absent on both sides should stay absent, got %v", *m.Contrast)
	}
	if m.Filter() != Nearest {
		t.Fatalf("filter: should fall back to global, got %v", m.Filter())
	}
}

func TestMerge_BooleansAreUnion(t *testing.T) {
	cases := []struct {
		file, global, want bool
	}{
		{false, false, false},
		{true, false, true},
		{false, true, true},
		{true, true, true},
	}
	for _, tc := range cases {
		f := Settings{Jobs: Jobs{FlipV: tc.file, Grayscale: tc.file, Rotate270: tc.file}}
		g := Settings{Jobs: Jobs{FlipV: tc.global, Grayscale: tc.global, Rotate270: tc.global}}
		m := Merge(f, g)
		if m.FlipV != tc.want || m.Grayscale != tc.want || m.Rotate270 != tc.want {
			t.Fatalf("file=%v global=%v: got flipv=%v grayscale=%v rotate270=%v, want %v",
				tc.file, tc.global, m.FlipV, m.Grayscale, m.Rotate270, tc.want)
		}
	}
}

func TestFitDimensions(t *testing.T) {
	cases := []struct {
		name         string
		w, h         int
		size         Size
		wantW, wantH int
	}{
		{"width only", 400, 200, Width(100), 100, 50},
		{"box", 400, 200, WidthHeight(100, 100), 100, 50},
		{"height only", 400, 200, Height(50), 100, 50},
		{"upscale", 10, 20, Width(40), 40, 80},
		{"min one pixel", 1000, 10, Width(10), 10, 1},
		{"rounds down", 333, 100, Width(100), 100, 30},
		{"exact thirds", 300, 900, Width(100), 100, 300},
		{"box limited by height", 200, 400, WidthHeight(100, 100), 50, 100},
		{"zero width", 400, 200, Width(0), 1, 1},
	}
	for _, tc := range cases {
		w, h := FitDimensions(tc.w, tc.h, tc.size)
		if w != tc.wantW || h != tc.wantH {
			t.Fatalf("%s: got %dx%d, want %dx%d", tc.name, w, h, tc.wantW, tc.wantH)
		}
	}
}

func TestResizeStep_Scenarios(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 400, 200))
	for _, size := range []Size{Width(100), WidthHeight(100, 100)} {
		steps := Build(Settings{Jobs: Jobs{Resize: &Resize{Size: size}}})
		out := steps[0].Apply(src)
		if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
			t.Fatalf("%v: got %dx%d, want 100x50", size, b.Dx(), b.Dy())
		}
	}
}

func TestRotate90_IsClockwise(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, red)
	src.SetNRGBA(1, 0, blue)

	out := Build(Settings{Jobs: Jobs{Rotate90: true}})[0].Apply(src)
	if b := out.Bounds(); b.Dx() != 1 || b.Dy() != 2 {
		t.Fatalf("rotated bounds = %v", b)
	}
	if got := color.NRGBAModel.Convert(out.At(0, 0)); got != red {
		t.Fatalf("top pixel = %v, want red", got)
	}
}

func TestBrighten_Clamps(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 250, G: 10, B: 100, A: 200})
	out := brighten(src, 20)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, G: 30, B: 120, A: 200}) {
		t.Fatalf("brighten = %v", got)
	}
	out = brighten(src, -50)
	if got := out.NRGBAAt(0, 0); got.G != 0 || got.R != 200 {
		t.Fatalf("darken = %v", got)
	}
}

func TestHueRotate_ZeroIsIdentity(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	src.SetNRGBA(0, 0, c)
	got := hueRotate(src, 0).NRGBAAt(0, 0)
	for _, d := range []int{int(got.R) - int(c.R), int(got.G) - int(c.G), int(got.B) - int(c.B)} {
		if d < -1 || d > 1 {
			t.Fatalf("hue rotate by 0 changed color: %v -> %v", c, got)
		}
	}
}

func TestParseFilter(t *testing.T) {
	for _, name := range []string{"Nearest", "Triangle", "CatmullRom", "Gaussian", "Lanczos3"} {
		f, err := ParseFilter(name)
		if err != nil {
			t.Fatalf("ParseFilter(%q): %v", name, err)
		}
		if f.String() != name {
			t.Fatalf("round trip %q -> %q", name, f.String())
		}
	}
	if _, err := ParseFilter("bicubic"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}
