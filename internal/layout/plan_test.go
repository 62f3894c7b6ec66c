package layout

import (
	"math"
	"testing"
)

const eps = 0.01

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func inside(t *testing.T, p Placement, w, h int) {
	t.Helper()
	if p.X < -eps || p.Y < -eps || p.X+p.Width > float64(w)+eps || p.Y+p.Height > float64(h)+eps {
		t.Fatalf("placement %+v escapes %dx%d canvas", p, w, h)
	}
}

func TestPlanCenteredSingleKeepsRatio(t *testing.T) {
	got := Plan(1000, 1000, []Source{{Ref: "wide", Width: 400, Height: 200}}, 1)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	p := got[0]
	if !near(p.Width/p.Height, 2) {
		t.Fatalf("ratio = %v, want 2", p.Width/p.Height)
	}
	if !near(p.X+p.Width/2, 500) || !near(p.Y+p.Height/2, 500) {
		t.Fatalf("placement %+v is not centered", p)
	}
	if p.Ref != "wide" {
		t.Fatalf("ref = %q, want wide", p.Ref)
	}
}

func TestPlanSingleArchetypesPreserveRatio(t *testing.T) {
	sources := []Source{
		{Ref: "wide", Width: 1600, Height: 400},
		{Ref: "tall", Width: 300, Height: 1200},
		{Ref: "square", Width: 500, Height: 500},
	}
	for _, s := range sources {
		for v := 0; v < 4; v++ {
			p := Plan(800, 600, []Source{s}, v)[0]
			if !near(p.Width/p.Height, s.ratio()) {
				t.Fatalf("%s variation %d: ratio = %v, want %v", s.Ref, v, p.Width/p.Height, s.ratio())
			}
			inside(t, p, 800, 600)
		}
	}
}

func TestPlanOffsetArchetypesMirror(t *testing.T) {
	s := []Source{{Width: 100, Height: 100}}
	left := Plan(1000, 800, s, 2)[0]
	right := Plan(1000, 800, s, 3)[0]
	if !near(left.X, 1000-right.X-right.Width) {
		t.Fatalf("offset left %+v and right %+v are not mirrored", left, right)
	}
	top := Plan(1000, 800, s, 0)[0]
	if top.Y != 0 {
		t.Fatalf("full bleed top y = %v, want 0", top.Y)
	}
}

func TestChoose(t *testing.T) {
	cases := []struct {
		n, variation int
		want         Archetype
	}{
		{0, 0, ArchetypeNone},
		{1, 0, ArchetypeFullBleedTop},
		{1, 5, ArchetypeCentered},
		{1, -1, ArchetypeOffsetRight},
		{2, 0, ArchetypeLShape},
		{2, 1, ArchetypeSideBySide},
		{2, 2, ArchetypeOverlapping},
		{2, 7, ArchetypeDiagonal},
		{3, 0, ArchetypeThreeFeature},
		{3, 4, ArchetypeThreeFeature},
		{3, 1, ArchetypeGrid},
		{4, 0, ArchetypeGrid},
		{7, 2, ArchetypeGrid},
	}
	for _, tc := range cases {
		if got := Choose(tc.n, tc.variation); got != tc.want {
			t.Fatalf("Choose(%d, %d) = %s, want %s", tc.n, tc.variation, got, tc.want)
		}
	}
}

func TestPlanPairArchetypes(t *testing.T) {
	sources := []Source{{Ref: "a", Width: 400, Height: 300}, {Ref: "b", Width: 300, Height: 400}}
	for v := 0; v < 4; v++ {
		got := Plan(1200, 900, sources, v)
		if len(got) != 2 {
			t.Fatalf("variation %d: len = %d, want 2", v, len(got))
		}
		for i, p := range got {
			if p.Ref != sources[i].Ref {
				t.Fatalf("variation %d: order %q, want %q", v, p.Ref, sources[i].Ref)
			}
			if !near(p.Width/p.Height, sources[i].ratio()) {
				t.Fatalf("variation %d: ratio %v, want %v", v, p.Width/p.Height, sources[i].ratio())
			}
			inside(t, p, 1200, 900)
		}
	}
	side := Plan(1200, 900, sources, 1)
	if side[0].X+side[0].Width > side[1].X {
		t.Fatalf("side by side placements overlap: %+v", side)
	}
}

func TestPlanThreeFeature(t *testing.T) {
	sources := []Source{{Width: 100, Height: 100}, {Width: 100, Height: 100}, {Width: 300, Height: 100}}
	got := Plan(1200, 900, sources, 0)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Y >= got[1].Y {
		t.Fatalf("left column not stacked: %+v", got[:2])
	}
	if got[2].X <= got[0].X+got[0].Width {
		t.Fatalf("feature image should sit right of the column: %+v", got)
	}
	for _, p := range got {
		inside(t, p, 1200, 900)
	}
}

func TestPlanGrid(t *testing.T) {
	cases := []struct {
		name       string
		n          int
		cols, rows int
	}{
		{name: "three odd variation", n: 3, cols: 2, rows: 2},
		{name: "four", n: 4, cols: 2, rows: 2},
		{name: "five", n: 5, cols: 3, rows: 2},
		{name: "seven", n: 7, cols: 3, rows: 3},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sources := make([]Source, tc.n)
			for i := range sources {
				sources[i] = Source{Width: 200, Height: 100}
			}
			got := Plan(1200, 1200, sources, 1)
			cellW := (1200 - float64(tc.cols+1)*gridGap) / float64(tc.cols)
			cellH := (1200 - float64(tc.rows+1)*gridGap) / float64(tc.rows)
			for i, p := range got {
				col, row := i%tc.cols, i/tc.cols
				cx := gridGap + float64(col)*(cellW+gridGap) + cellW/2
				cy := gridGap + float64(row)*(cellH+gridGap) + cellH/2
				if !near(p.X+p.Width/2, cx) || !near(p.Y+p.Height/2, cy) {
					t.Fatalf("image %d at %+v, want centered on (%v, %v)", i, p, cx, cy)
				}
				if p.Width > cellW-2*gridCellPadding+eps {
					t.Fatalf("image %d wider than its padded cell", i)
				}
				inside(t, p, 1200, 1200)
			}
		})
	}
}

func TestPlanEmpty(t *testing.T) {
	got := Plan(800, 600, nil, 0)
	if got == nil || len(got) != 0 {
		t.Fatalf("Plan(nil) = %#v, want empty slice", got)
	}
}

func TestDecorations(t *testing.T) {
	p := Placement{X: 100, Y: 100, Width: 200, Height: 100}
	d := Decorations(p)
	if len(d.Shadow) != shadowSteps {
		t.Fatalf("shadow steps = %d, want %d", len(d.Shadow), shadowSteps)
	}
	for i := 1; i < len(d.Shadow); i++ {
		if d.Shadow[i].Color.A >= d.Shadow[i-1].Color.A {
			t.Fatalf("shadow alpha not decreasing at step %d", i)
		}
		if d.Shadow[i].Rect.X-d.Shadow[i-1].Rect.X != shadowStepOffset {
			t.Fatalf("shadow offset step = %v, want %v", d.Shadow[i].Rect.X-d.Shadow[i-1].Rect.X, shadowStepOffset)
		}
	}
	if len(d.Frame) != 2 {
		t.Fatalf("frame layers = %d, want 2", len(d.Frame))
	}
	if d.Frame[1].Color != innerRuleColor || d.Frame[1].Rect != p.Rect() {
		t.Fatalf("inner rule = %+v", d.Frame[1])
	}
	if d.Frame[0].Rect.Width <= d.Frame[1].Rect.Width {
		t.Fatalf("outer rule should enclose the inner rule")
	}
}
