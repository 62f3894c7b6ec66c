package dimension

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestConvertDimensionsRoundTrip(t *testing.T) {
	t.Parallel()
	units := []Unit{UnitMillimeter, UnitCentimeter, UnitInch, UnitPixel}
	values := []float64{0.5, 1, 12.7, 210, 297, 1024, 98765.4321}
	for _, from := range units {
		for _, to := range units {
			for _, v := range values {
				got := ConvertDimensions(ConvertDimensions(v, from, to), to, from)
				if math.Abs(got-v) > 1e-9*math.Max(1, v) {
					t.Fatalf("round trip %g %s->%s = %g", v, from, to, got)
				}
			}
		}
	}
}

func TestConvertDimensionsSameUnitIsIdentity(t *testing.T) {
	for _, u := range []Unit{UnitMillimeter, UnitCentimeter, UnitInch, UnitPixel, UnitUnknown} {
		if got := ConvertDimensions(3.3333, u, u); got != 3.3333 {
			t.Fatalf("ConvertDimensions(%s,%s) = %g, want 3.3333", u, u, got)
		}
	}
}

func TestToMillimeters(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		v    float64
		unit Unit
		want float64
	}{
		{name: "mm", v: 10, unit: UnitMillimeter, want: 10},
		{name: "cm", v: 2, unit: UnitCentimeter, want: 20},
		{name: "inch", v: 1, unit: UnitInch, want: 25.4},
		{name: "pixel", v: 96, unit: UnitPixel, want: 25.4},
		{name: "unknown passes through", v: 42, unit: Unit("furlong"), want: 42},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ToMillimeters(tc.v, tc.unit)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ToMillimeters(%g, %s) = %g, want %g", tc.v, tc.unit, got, tc.want)
			}
		})
	}
}

func TestParseUnitAliases(t *testing.T) {
	cases := map[string]Unit{
		"mm":     UnitMillimeter,
		"CM":     UnitCentimeter,
		"in":     UnitInch,
		"inches": UnitInch,
		"px":     UnitPixel,
		"pixels": UnitPixel,
		"yards":  UnitUnknown,
	}
	for in, want := range cases {
		if got := ParseUnit(in); got != want {
			t.Fatalf("ParseUnit(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAspectRatioZeroHeight(t *testing.T) {
	if got := AspectRatio(100, 0); got != 1 {
		t.Fatalf("AspectRatio(100, 0) = %g, want 1", got)
	}
	if got := AspectRatio(200, 100); got != 2 {
		t.Fatalf("AspectRatio(200, 100) = %g, want 2", got)
	}
}

func TestNewDimensionSpecRejectsNonPositive(t *testing.T) {
	if _, err := NewDimensionSpec(0, 10, UnitMillimeter); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("err = %v, want ErrInvalidDimension", err)
	}
	if _, err := NewDimensionSpec(10, -1, UnitMillimeter); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("err = %v, want ErrInvalidDimension", err)
	}
}

func TestLookupNamedSizeCaseInsensitive(t *testing.T) {
	lower, ok := LookupNamedSize("a4")
	if !ok {
		t.Fatal("a4 not found")
	}
	upper, ok := LookupNamedSize("A4")
	if !ok {
		t.Fatal("A4 not found")
	}
	want := DimensionSpec{Width: 210, Height: 297, Unit: UnitMillimeter}
	if lower != want || upper != want {
		t.Fatalf("a4 = %+v, A4 = %+v, want %+v", lower, upper, want)
	}
	if _, ok := LookupNamedSize("letter"); !ok {
		t.Fatal("letter not found")
	}
	if _, ok := LookupNamedSize("B7"); ok {
		t.Fatal("B7 should not be found")
	}
}

func TestNamedSizesSorted(t *testing.T) {
	sizes := NamedSizes()
	if len(sizes) != 6 {
		t.Fatalf("len(sizes) = %d, want 6", len(sizes))
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i-1].Name > sizes[i].Name {
			t.Fatalf("sizes not sorted: %q before %q", sizes[i-1].Name, sizes[i].Name)
		}
	}
}

func TestLoadPapersRejectsInvalidRow(t *testing.T) {
	_, err := loadPapers([]byte("sizes:\n  - name: Z\n    width: 0\n    height: 10\n"))
	if err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestComputeViewportNeverShrinks(t *testing.T) {
	t.Parallel()
	specs := []DimensionSpec{
		{Width: 210, Height: 297, Unit: UnitMillimeter},
		{Width: 8.5, Height: 11, Unit: UnitInch},
		{Width: 1920, Height: 1080, Unit: UnitPixel},
		{Width: 5, Height: 30, Unit: UnitCentimeter},
	}
	ratios := []float64{0.25, 0.7071, 1, 1.5, 16.0 / 9.0, 4}
	for _, spec := range specs {
		for _, r := range ratios {
			r := r
			vp := ComputeViewport(spec, &r)
			wantW := ToPixels(spec.Width, spec.Unit)
			wantH := ToPixels(spec.Height, spec.Unit)
			if vp.RawWidth+1e-9 < wantW || vp.RawHeight+1e-9 < wantH {
				t.Fatalf("viewport %+v shrank below %gx%g for ratio %g", vp, wantW, wantH, r)
			}
			if math.Abs(vp.RawWidth/vp.RawHeight-r) > 1e-9 {
				t.Fatalf("viewport ratio = %g, want %g", vp.RawWidth/vp.RawHeight, r)
			}
			if vp.Width < round2(wantW) || vp.Height < round2(wantH) {
				t.Fatalf("rounded viewport %gx%g below %gx%g", vp.Width, vp.Height, wantW, wantH)
			}
		}
	}
}

func TestComputeViewportA4(t *testing.T) {
	spec, _ := LookupNamedSize("A4")
	ratio := spec.AspectRatio()
	vp := ComputeViewport(spec, &ratio)
	if vp.Width != 793.7 || vp.Height != 1122.52 {
		t.Fatalf("viewport = %gx%g, want 793.7x1122.52", vp.Width, vp.Height)
	}
	if !strings.HasPrefix(vp.ViewBox, "0 0 793.7007874015") {
		t.Fatalf("viewBox = %q, want unrounded width", vp.ViewBox)
	}
}

func TestComputeViewportWithoutRatio(t *testing.T) {
	vp := ComputeViewport(DimensionSpec{Width: 2, Height: 1, Unit: UnitInch}, nil)
	if vp.Width != 192 || vp.Height != 96 {
		t.Fatalf("viewport = %gx%g, want 192x96", vp.Width, vp.Height)
	}
	if vp.ViewBox != "0 0 192 96" {
		t.Fatalf("viewBox = %q, want %q", vp.ViewBox, "0 0 192 96")
	}
}

func TestViewportFromPixels(t *testing.T) {
	vp := ViewportFromPixels(1024, 768)
	if vp.Width != 1024 || vp.Height != 768 || vp.ViewBox != "0 0 1024 768" {
		t.Fatalf("viewport = %+v", vp)
	}
}
