package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/juliusiqbal/ai-img-gen/internal/dimension"
	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/layout"
	"github.com/juliusiqbal/ai-img-gen/internal/promptsynth"
	imageprovider "github.com/juliusiqbal/ai-img-gen/internal/providers/image"
	"github.com/juliusiqbal/ai-img-gen/internal/providers/vision"
	"github.com/juliusiqbal/ai-img-gen/internal/vector"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 0x20, G: 0x80, B: 0xc0, A: 0xff})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

type stubPrompts struct {
	lastReq promptsynth.Request
	err     error
}

func (s *stubPrompts) SynthesizeBatch(ctx context.Context, req promptsynth.Request, count int) ([]promptsynth.GeneratedPrompt, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	out := make([]promptsynth.GeneratedPrompt, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, promptsynth.GeneratedPrompt{Text: fmt.Sprintf("prompt %d", i), Variation: i, Strategy: promptsynth.StrategyBasic})
	}
	return out, nil
}

type stubGenerator struct {
	mu     sync.Mutex
	data   []byte
	failOn map[int]error
	calls  int
	times  []time.Time
}

func (s *stubGenerator) Generate(ctx context.Context, req imageprovider.GenerateRequest) ([]imageprovider.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.times = append(s.times, time.Now())
	if err, ok := s.failOn[s.calls]; ok {
		return nil, err
	}
	return []imageprovider.Asset{{Data: s.data, Format: "image/png", RevisedPrompt: "revised " + req.Prompt}}, nil
}

type stubTracer struct {
	viewports []dimension.ViewportSpec
}

func (s *stubTracer) Trace(ctx context.Context, req vector.TraceRequest) ([]byte, error) {
	s.viewports = append(s.viewports, req.Viewport)
	return vector.Wrap(req.Raster, req.MIME, req.Viewport)
}

type memoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: make(map[string][]byte)}
}

func (m *memoryStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return key, nil
}

func (m *memoryStore) Read(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *memoryStore) URL(key string) string { return "/static/" + key }

type memoryTemplates struct {
	created []domain.Template
}

func (m *memoryTemplates) Create(ctx context.Context, t *domain.Template) error {
	t.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *t)
	return nil
}

func (m *memoryTemplates) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	return nil, domain.ErrNotFound
}

func (m *memoryTemplates) List(ctx context.Context, categoryID int64) ([]domain.Template, error) {
	return m.created, nil
}

func (m *memoryTemplates) ListByIDs(ctx context.Context, ids []int64) ([]domain.Template, error) {
	return nil, nil
}

func (m *memoryTemplates) ListByProject(ctx context.Context, projectName string) ([]domain.Template, error) {
	return nil, nil
}

type credentials bool

func (c credentials) HasCredentials() bool { return bool(c) }

type stubDescriber struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
	calls int
}

func (s *stubDescriber) Describe(ctx context.Context, img vision.Image, hint string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.texts[img.Ref], nil
}

type fixture struct {
	prompts   *stubPrompts
	images    *stubGenerator
	tracer    *stubTracer
	store     *memoryStore
	templates *memoryTemplates
	describer *stubDescriber
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		prompts:   &stubPrompts{},
		images:    &stubGenerator{data: pngBytes(t, 64, 48)},
		tracer:    &stubTracer{},
		store:     newMemoryStore(),
		templates: &memoryTemplates{},
		describer: &stubDescriber{},
	}
}

func (f *fixture) orchestrator(interval time.Duration) *Orchestrator {
	return New(Options{
		Prompts:     f.prompts,
		Images:      f.images,
		Describer:   f.describer,
		Tracer:      f.tracer,
		Store:       f.store,
		Templates:   f.templates,
		Credentials: credentials(true),
		Interval:    interval,
		Logger:      zerolog.Nop(),
	})
}

var restaurant = domain.Category{ID: 3, Name: "restaurant"}

func TestGenerateSkipsFailedVariation(t *testing.T) {
	f := newFixture(t)
	f.images.failOn = map[int]error{2: &domain.ExternalServiceError{Kind: domain.ExternalGeneric, Service: "openai", Status: 500}}

	res, err := f.orchestrator(0).Generate(context.Background(), Request{Category: restaurant, Count: 4})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(res.Templates) != 3 {
		t.Fatalf("templates = %d, want 3", len(res.Templates))
	}
	if len(res.Failures) != 1 || res.Failures[0].Variation != 1 || res.Failures[0].Stage != StageGenerate {
		t.Fatalf("failures = %#v", res.Failures)
	}
	if len(f.templates.created) != 3 {
		t.Fatalf("persisted = %d, want 3", len(f.templates.created))
	}
	if len(f.store.blobs) != 6 {
		t.Fatalf("stored blobs = %d, want 6", len(f.store.blobs))
	}
	first := res.Templates[0]
	if first.PromptUsed != "revised prompt 0" || first.GenerationPrompt != "prompt 0" {
		t.Fatalf("prompts = %q / %q", first.PromptUsed, first.GenerationPrompt)
	}
	if first.Dimensions != (domain.PixelSize{Width: 64, Height: 48}) {
		t.Fatalf("dimensions = %#v", first.Dimensions)
	}
	if !strings.HasSuffix(first.SVGPath, ".svg") || !strings.HasSuffix(first.OriginalImagePath, ".png") {
		t.Fatalf("paths = %q, %q", first.SVGPath, first.OriginalImagePath)
	}
	if f.tracer.viewports[0].ViewBox != "0 0 64 48" {
		t.Fatalf("viewBox = %q, want natural raster size", f.tracer.viewports[0].ViewBox)
	}
	if first.Category == nil || first.Category.Name != "restaurant" {
		t.Fatalf("category = %#v", first.Category)
	}
}

func TestGenerateAllVariationsFail(t *testing.T) {
	f := newFixture(t)
	quota := &domain.ExternalServiceError{Kind: domain.ExternalQuotaExhausted, Service: "openai", Status: 402}
	f.images.failOn = map[int]error{1: quota, 2: quota, 3: quota, 4: quota}

	_, err := f.orchestrator(0).Generate(context.Background(), Request{Category: restaurant, Count: 4})
	if !errors.Is(err, domain.ErrNoVariations) {
		t.Fatalf("err = %v, want ErrNoVariations", err)
	}
	var external *domain.ExternalServiceError
	if !errors.As(err, &external) || external.Kind != domain.ExternalQuotaExhausted {
		t.Fatalf("err = %v, want wrapped quota error", err)
	}
	if len(f.templates.created) != 0 {
		t.Fatalf("persisted = %d, want 0", len(f.templates.created))
	}
}

func TestGenerateRequiresCredentials(t *testing.T) {
	f := newFixture(t)
	o := f.orchestrator(0)
	o.credentials = credentials(false)

	_, err := o.Generate(context.Background(), Request{Category: restaurant, Count: 2})
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Setting != "OPENAI_API_KEY" {
		t.Fatalf("err = %v, want ConfigurationError for OPENAI_API_KEY", err)
	}
	if f.images.calls != 0 {
		t.Fatalf("generator calls = %d, want 0", f.images.calls)
	}
}

func TestGenerateUsesNamedPrintSize(t *testing.T) {
	f := newFixture(t)
	res, err := f.orchestrator(0).Generate(context.Background(), Request{Category: restaurant, Count: 1, StandardSize: "a4"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	vp := f.tracer.viewports[0]
	if vp.Width != 793.7 || vp.Height != 1122.52 {
		t.Fatalf("viewport = %vx%v, want 793.7x1122.52", vp.Width, vp.Height)
	}
	pd := res.Templates[0].PrintingDimensions
	if pd == nil || pd.Width != 210 || pd.Height != 297 || pd.Unit != "mm" {
		t.Fatalf("printing dimensions = %#v", pd)
	}
}

func TestGenerateDescribesReferenceImages(t *testing.T) {
	cases := []struct {
		name      string
		texts     map[string]string
		err       error
		images    []vision.Image
		want      string
		wantCalls int
	}{
		{
			name:      "combined descriptions",
			texts:     map[string]string{"a": "a red awning", "b": "a wood oven"},
			images:    []vision.Image{{Ref: "a"}, {Ref: "b"}},
			want:      "Image 1: a red awning. Image 2: a wood oven.",
			wantCalls: 2,
		},
		{
			name:      "empty description falls back",
			images:    []vision.Image{{Ref: "a"}},
			want:      vision.DefaultDescription("restaurant", false),
			wantCalls: 1,
		},
		{
			name:      "errors fall back to the multi image default",
			err:       errors.New("vision down"),
			images:    []vision.Image{{Ref: "a"}, {Ref: "b"}, {Ref: "c"}},
			want:      vision.DefaultDescription("restaurant", true),
			wantCalls: 3,
		},
		{
			name: "no images",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.describer.texts = tc.texts
			f.describer.err = tc.err
			if _, err := f.orchestrator(0).Generate(context.Background(), Request{Category: restaurant, Images: tc.images}); err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			if got := f.prompts.lastReq.ImageDescription; got != tc.want {
				t.Fatalf("ImageDescription = %q, want %q", got, tc.want)
			}
			if f.describer.calls != tc.wantCalls {
				t.Fatalf("describer calls = %d, want %d", f.describer.calls, tc.wantCalls)
			}
		})
	}
}

func TestGeneratePacesGeneratorCalls(t *testing.T) {
	f := newFixture(t)
	if _, err := f.orchestrator(25*time.Millisecond).Generate(context.Background(), Request{Category: restaurant, Count: 3}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(f.images.times) != 3 {
		t.Fatalf("generator calls = %d, want 3", len(f.images.times))
	}
	if gap := f.images.times[2].Sub(f.images.times[0]); gap < 45*time.Millisecond {
		t.Fatalf("calls spread over %v, want at least 45ms", gap)
	}
}

func TestGeneratePromptFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.prompts.err = promptsynth.ErrNoPrompts
	_, err := f.orchestrator(0).Generate(context.Background(), Request{Category: restaurant, Count: 2})
	if !errors.Is(err, domain.ErrNoVariations) || !errors.Is(err, promptsynth.ErrNoPrompts) {
		t.Fatalf("err = %v, want ErrNoVariations wrapping ErrNoPrompts", err)
	}
}

func TestGenerateLocalMode(t *testing.T) {
	f := newFixture(t)
	o := f.orchestrator(0)
	o.credentials = credentials(false)
	o.tracer = vector.WrapTracer{}

	req := Request{
		Category: restaurant,
		Count:    2,
		Mode:     ModeLocal,
		Images:   []vision.Image{{Ref: "a", Data: pngBytes(t, 40, 20)}, {Ref: "b", Data: pngBytes(t, 20, 40)}},
		Width:    100,
		Height:   50,
		Unit:     "px",
	}
	res, err := o.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(res.Templates) != 2 {
		t.Fatalf("templates = %d, want 2", len(res.Templates))
	}
	if res.Templates[0].Dimensions != (domain.PixelSize{Width: 100, Height: 50}) {
		t.Fatalf("dimensions = %#v", res.Templates[0].Dimensions)
	}
	svg := f.store.blobs[res.Templates[0].SVGPath]
	if !bytes.Contains(svg, []byte(`viewBox="0 0 100 50"`)) {
		t.Fatalf("svg = %s", svg)
	}
	if f.images.calls != 0 || f.describer.calls != 0 {
		t.Fatalf("remote calls = %d/%d, want none", f.images.calls, f.describer.calls)
	}
}

type recordingCompositor struct {
	sizes [][2]int
	png   []byte
}

func (r *recordingCompositor) ComposePNG(ctx context.Context, w, h int, images []layout.Image, variation int) ([]byte, []layout.Placement, error) {
	r.sizes = append(r.sizes, [2]int{w, h})
	return r.png, []layout.Placement{{Width: float64(w), Height: float64(h)}}, nil
}

func TestGenerateLocalModeBoundsCanvas(t *testing.T) {
	f := newFixture(t)
	comp := &recordingCompositor{png: pngBytes(t, 8, 4)}
	o := f.orchestrator(0)
	o.compositor = comp

	req := Request{
		Category: restaurant,
		Count:    1,
		Mode:     ModeLocal,
		Images:   []vision.Image{{Ref: "a", Data: pngBytes(t, 40, 20)}},
		Width:    2000,
		Height:   1000,
		Unit:     "mm",
	}
	res, err := o.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(comp.sizes) != 1 || comp.sizes[0] != [2]int{layout.MaxCanvasSide, 2048} {
		t.Fatalf("canvas sizes = %v, want [[4096 2048]]", comp.sizes)
	}
	if got := res.Templates[0].Dimensions; got != (domain.PixelSize{Width: 4096, Height: 2048}) {
		t.Fatalf("dimensions = %#v, want 4096x2048", got)
	}
}

func TestGenerateLocalModeNeedsImages(t *testing.T) {
	f := newFixture(t)
	_, err := f.orchestrator(0).Generate(context.Background(), Request{Category: restaurant, Mode: ModeLocal})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGenerateLocalModeUndecodableImages(t *testing.T) {
	f := newFixture(t)
	req := Request{Category: restaurant, Mode: ModeLocal, Count: 2, Images: []vision.Image{{Ref: "bad", Data: []byte("nope")}}}
	_, err := f.orchestrator(0).Generate(context.Background(), req)
	if !errors.Is(err, domain.ErrNoVariations) || !errors.Is(err, domain.ErrCompositionEmpty) {
		t.Fatalf("err = %v, want ErrNoVariations wrapping ErrCompositionEmpty", err)
	}
}

func TestResolveDimensions(t *testing.T) {
	cases := []struct {
		name   string
		width  float64
		height float64
		unit   string
		size   string
		want   dimension.DimensionSpec
		ok     bool
		err    bool
	}{
		{name: "named size wins", width: 10, height: 10, unit: "cm", size: "Letter", want: dimension.DimensionSpec{Width: 216, Height: 279, Unit: dimension.UnitMillimeter}, ok: true},
		{name: "explicit inches", width: 8.5, height: 11, unit: "inches", want: dimension.DimensionSpec{Width: 8.5, Height: 11, Unit: dimension.UnitInch}, ok: true},
		{name: "unit defaults to mm", width: 100, height: 50, want: dimension.DimensionSpec{Width: 100, Height: 50, Unit: dimension.UnitMillimeter}, ok: true},
		{name: "unknown named size uses explicit", width: 5, height: 5, unit: "cm", size: "B7", want: dimension.DimensionSpec{Width: 5, Height: 5, Unit: dimension.UnitCentimeter}, ok: true},
		{name: "nothing"},
		{name: "half given", width: 100, err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := ResolveDimensions(tc.width, tc.height, tc.unit, tc.size)
			if tc.err {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("err = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveDimensions returned error: %v", err)
			}
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ResolveDimensions = %#v, %v, want %#v, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}
