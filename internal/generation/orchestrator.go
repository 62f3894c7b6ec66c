// Package generation turns a category, reference images and print
// dimensions into persisted SVG templates.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdimage "image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/juliusiqbal/ai-img-gen/internal/dimension"
	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/layout"
	"github.com/juliusiqbal/ai-img-gen/internal/promptsynth"
	imageprovider "github.com/juliusiqbal/ai-img-gen/internal/providers/image"
	"github.com/juliusiqbal/ai-img-gen/internal/providers/vision"
	"github.com/juliusiqbal/ai-img-gen/internal/storage"
	"github.com/juliusiqbal/ai-img-gen/internal/vector"
)

const (
	// DefaultInterval spaces successive calls to the image generator.
	DefaultInterval = time.Second
	// describeConcurrency bounds parallel vision requests.
	describeConcurrency = 3
	// localCanvasSize is the square canvas used by local mode without print dimensions.
	localCanvasSize = 1024
)

// Mode selects how variations are rendered.
type Mode string

const (
	ModeAI    Mode = "ai"
	ModeLocal Mode = "local"
)

// Stage names the step of a variation that failed.
type Stage string

const (
	StageGenerate Stage = "generate"
	StageDownload Stage = "download"
	StageCompose  Stage = "compose"
	StageTrace    Stage = "trace"
	StageStore    Stage = "store"
	StagePersist  Stage = "persist"
)

// Request describes one generation batch. Category must already exist.
type Request struct {
	Category     domain.Category
	Details      string
	ProjectName  string
	Images       []vision.Image
	Width        float64
	Height       float64
	Unit         string
	StandardSize string
	Count        int
	Mode         Mode
	Preferences  *promptsynth.DesignPreferences
	RequestID    string
}

// Failure records a skipped variation.
type Failure struct {
	Variation int
	Stage     Stage
	Err       error
}

// Result is the outcome of a batch with at least one template.
type Result struct {
	Templates []domain.Template
	Prompts   []promptsynth.GeneratedPrompt
	Failures  []Failure
}

// PromptSynthesizer produces the prompts of a batch.
type PromptSynthesizer interface {
	SynthesizeBatch(ctx context.Context, req promptsynth.Request, count int) ([]promptsynth.GeneratedPrompt, error)
}

// Compositor renders local layouts.
type Compositor interface {
	ComposePNG(ctx context.Context, canvasW, canvasH int, images []layout.Image, variation int) ([]byte, []layout.Placement, error)
}

// CredentialChecker reports whether the remote collaborators can be called.
type CredentialChecker interface {
	HasCredentials() bool
}

// Options wires the collaborators of an Orchestrator.
type Options struct {
	Prompts     PromptSynthesizer
	Images      imageprovider.Generator
	Describer   vision.Describer
	Tracer      vector.Tracer
	Compositor  Compositor
	Store       storage.BlobStore
	Templates   domain.TemplateRepository
	Credentials CredentialChecker
	// Interval is the minimum pause between image generator calls. Zero disables pacing.
	Interval time.Duration
	Logger   zerolog.Logger
}

// Orchestrator runs generation batches.
type Orchestrator struct {
	prompts     PromptSynthesizer
	images      imageprovider.Generator
	describer   vision.Describer
	tracer      vector.Tracer
	compositor  Compositor
	store       storage.BlobStore
	templates   domain.TemplateRepository
	credentials CredentialChecker
	interval    time.Duration
	logger      zerolog.Logger
}

// New builds an Orchestrator. A nil Tracer wraps rasters without tracing.
func New(opts Options) *Orchestrator {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = vector.WrapTracer{}
	}
	compositor := opts.Compositor
	if compositor == nil {
		compositor = layout.NewComposer(opts.Logger)
	}
	interval := opts.Interval
	if interval < 0 {
		interval = 0
	}
	return &Orchestrator{
		prompts:     opts.Prompts,
		images:      opts.Images,
		describer:   opts.Describer,
		tracer:      tracer,
		compositor:  compositor,
		store:       opts.Store,
		templates:   opts.Templates,
		credentials: opts.Credentials,
		interval:    interval,
		logger:      opts.Logger,
	}
}

// batch carries the values resolved once per Generate call.
type batch struct {
	req         Request
	spec        *dimension.DimensionSpec
	ratio       *float64
	printing    *domain.PrintDimensions
	preferences json.RawMessage
	failures    []Failure
	lastCause   error
}

// Generate runs one batch. Variations that fail are logged and skipped; the
// call fails only for configuration problems, invalid input or when no
// variation succeeded.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Category.ID <= 0 || strings.TrimSpace(req.Category.Name) == "" {
		return nil, fmt.Errorf("generation category: %w", domain.ErrInvalidInput)
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Mode == "" {
		req.Mode = ModeAI
	}
	if err := o.checkConfiguration(req.Mode); err != nil {
		return nil, err
	}

	b := &batch{req: req}
	if spec, ok, err := ResolveDimensions(req.Width, req.Height, req.Unit, req.StandardSize); err != nil {
		return nil, err
	} else if ok {
		ratio := spec.AspectRatio()
		b.spec = &spec
		b.ratio = &ratio
		b.printing = &domain.PrintDimensions{Width: spec.Width, Height: spec.Height, Unit: spec.Unit.String()}
	}
	if req.Preferences != nil {
		encoded, err := json.Marshal(req.Preferences)
		if err != nil {
			return nil, fmt.Errorf("encode design preferences: %w", err)
		}
		b.preferences = encoded
	}

	var (
		result *Result
		err    error
	)
	switch req.Mode {
	case ModeLocal:
		result, err = o.generateLocal(ctx, b)
	case ModeAI:
		result, err = o.generateAI(ctx, b)
	default:
		return nil, fmt.Errorf("generation mode %q: %w", req.Mode, domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	result.Failures = b.failures
	if len(result.Templates) == 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if b.lastCause != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrNoVariations, b.lastCause)
		}
		return nil, domain.ErrNoVariations
	}
	return result, nil
}

func (o *Orchestrator) checkConfiguration(mode Mode) error {
	if o.store == nil {
		return &domain.ConfigurationError{Setting: "blob store"}
	}
	if o.templates == nil {
		return &domain.ConfigurationError{Setting: "template repository"}
	}
	if mode != ModeAI {
		return nil
	}
	if o.prompts == nil {
		return &domain.ConfigurationError{Setting: "prompt synthesizer"}
	}
	if o.images == nil {
		return &domain.ConfigurationError{Setting: "image generator"}
	}
	if o.credentials != nil && !o.credentials.HasCredentials() {
		return &domain.ConfigurationError{Setting: "OPENAI_API_KEY", Reason: "is not configured; set it in the environment to enable AI generation"}
	}
	return nil
}

// ResolveDimensions picks the print size from a named size first, then from
// explicit width and height. ok is false when neither was given.
func ResolveDimensions(width, height float64, unit, standardSize string) (spec dimension.DimensionSpec, ok bool, err error) {
	if name := strings.TrimSpace(standardSize); name != "" {
		if named, found := dimension.LookupNamedSize(name); found {
			return named, true, nil
		}
	}
	if width <= 0 && height <= 0 {
		return dimension.DimensionSpec{}, false, nil
	}
	u := dimension.ParseUnit(unit)
	if strings.TrimSpace(unit) == "" {
		u = dimension.UnitMillimeter
	}
	spec, err = dimension.NewDimensionSpec(width, height, u)
	if err != nil {
		return dimension.DimensionSpec{}, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return spec, true, nil
}

// describe returns the combined reference clause for the request images.
func (o *Orchestrator) describe(ctx context.Context, req Request) string {
	if len(req.Images) == 0 {
		return ""
	}
	multiple := len(req.Images) > 1
	if o.describer == nil {
		return vision.DefaultDescription(req.Category.Name, multiple)
	}
	descriptions := make([]string, len(req.Images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(describeConcurrency)
	for i, img := range req.Images {
		i, img := i, img
		g.Go(func() error {
			text, err := o.describer.Describe(gctx, img, req.Category.Name)
			if err != nil {
				o.logger.Warn().Err(err).Str("category", req.Category.Name).Str("image", img.Ref).Msg("generation: describe image failed")
				return nil
			}
			descriptions[i] = text
			return nil
		})
	}
	_ = g.Wait()
	if combined := vision.Combine(descriptions); combined != "" {
		return combined
	}
	return vision.DefaultDescription(req.Category.Name, multiple)
}

func (o *Orchestrator) generateAI(ctx context.Context, b *batch) (*Result, error) {
	req := b.req
	prompts, err := o.prompts.SynthesizeBatch(ctx, promptsynth.Request{
		Category:         req.Category.Name,
		Details:          req.Details,
		ImageDescription: o.describe(ctx, req),
		Preferences:      req.Preferences,
	}, req.Count)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrNoVariations, err)
	}

	var limiter *rate.Limiter
	if o.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(o.interval), 1)
	}
	result := &Result{Prompts: prompts, Templates: make([]domain.Template, 0, len(prompts))}
	for _, prompt := range prompts {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				b.fail(o.logger, prompt.Variation, StageGenerate, err)
				break
			}
		}
		tpl, stage, err := o.renderAI(ctx, b, prompt)
		if err != nil {
			b.fail(o.logger, prompt.Variation, stage, err)
			continue
		}
		result.Templates = append(result.Templates, *tpl)
	}
	return result, nil
}

func (o *Orchestrator) renderAI(ctx context.Context, b *batch, prompt promptsynth.GeneratedPrompt) (*domain.Template, Stage, error) {
	assets, err := o.images.Generate(ctx, imageprovider.GenerateRequest{
		Prompt:    prompt.Text,
		Quantity:  1,
		RequestID: b.req.RequestID,
	})
	if err != nil {
		return nil, StageGenerate, err
	}
	if len(assets) == 0 || len(assets[0].Data) == 0 {
		return nil, StageDownload, errors.New("image generator returned no image data")
	}
	asset := assets[0]
	width, height := asset.Width, asset.Height
	if width <= 0 || height <= 0 {
		cfg, _, err := stdimage.DecodeConfig(bytes.NewReader(asset.Data))
		if err != nil {
			return nil, StageDownload, &domain.DecodeError{Ref: asset.URL, Err: err}
		}
		width, height = cfg.Width, cfg.Height
	}
	used := strings.TrimSpace(asset.RevisedPrompt)
	if used == "" {
		used = prompt.Text
	}
	tpl := &domain.Template{
		PromptUsed:       used,
		GenerationPrompt: prompt.Text,
	}
	if prompt.Preferences != nil {
		if encoded, err := json.Marshal(prompt.Preferences); err == nil {
			tpl.DesignPreferences = encoded
		}
	}
	stage, err := o.finish(ctx, b, tpl, prompt.Variation, asset.Data, asset.Format, width, height)
	if err != nil {
		return nil, stage, err
	}
	return tpl, "", nil
}

func (o *Orchestrator) generateLocal(ctx context.Context, b *batch) (*Result, error) {
	req := b.req
	if len(req.Images) == 0 {
		return nil, fmt.Errorf("local composition needs at least one image: %w", domain.ErrInvalidInput)
	}
	sources := make([]layout.Image, 0, len(req.Images))
	for _, img := range req.Images {
		sources = append(sources, layout.Image{Ref: img.Ref, Data: img.Data})
	}
	canvasW, canvasH := localCanvasSize, localCanvasSize
	if b.spec != nil {
		vp := dimension.ComputeViewport(*b.spec, b.ratio)
		canvasW, canvasH = layout.FitCanvas(roundUp(vp.RawWidth), roundUp(vp.RawHeight))
	}

	result := &Result{Templates: make([]domain.Template, 0, req.Count)}
	for variation := 0; variation < req.Count; variation++ {
		if err := ctx.Err(); err != nil {
			b.fail(o.logger, variation, StageCompose, err)
			break
		}
		raster, _, err := o.compositor.ComposePNG(ctx, canvasW, canvasH, sources, variation)
		if err != nil {
			b.fail(o.logger, variation, StageCompose, err)
			continue
		}
		tpl := &domain.Template{DesignPreferences: b.preferences}
		if stage, err := o.finish(ctx, b, tpl, variation, raster, "image/png", canvasW, canvasH); err != nil {
			b.fail(o.logger, variation, stage, err)
			continue
		}
		result.Templates = append(result.Templates, *tpl)
	}
	return result, nil
}

// finish runs viewport, trace, store and persist for one raster and fills tpl.
func (o *Orchestrator) finish(ctx context.Context, b *batch, tpl *domain.Template, variation int, raster []byte, mime string, width, height int) (Stage, error) {
	req := b.req
	rasterKey, err := o.store.Write(ctx, storage.TemplateKey(req.Category.ID, variation, storage.ExtensionFor(mime)), raster)
	if err != nil {
		return StageStore, err
	}

	vp := dimension.ViewportFromPixels(width, height)
	if b.spec != nil {
		vp = dimension.ComputeViewport(*b.spec, b.ratio)
	}
	svg, err := o.tracer.Trace(ctx, vector.TraceRequest{Ref: rasterKey, Raster: raster, MIME: mime, Viewport: vp})
	if err != nil {
		return StageTrace, &domain.TracingError{Err: err}
	}
	svgKey, err := o.store.Write(ctx, storage.TemplateKey(req.Category.ID, variation, ".svg"), svg)
	if err != nil {
		return StageStore, err
	}

	tpl.CategoryID = req.Category.ID
	tpl.ProjectName = req.ProjectName
	tpl.OriginalImagePath = rasterKey
	tpl.SVGPath = svgKey
	tpl.Dimensions = domain.PixelSize{Width: width, Height: height}
	tpl.PrintingDimensions = b.printing
	if tpl.DesignPreferences == nil {
		tpl.DesignPreferences = b.preferences
	}
	if err := o.templates.Create(ctx, tpl); err != nil {
		return StagePersist, err
	}
	category := req.Category
	tpl.Category = &category
	return "", nil
}

func (b *batch) fail(logger zerolog.Logger, variation int, stage Stage, err error) {
	logger.Error().Err(err).
		Str("category", b.req.Category.Name).
		Int("variation", variation).
		Str("stage", string(stage)).
		Msg("generation: variation failed")
	b.failures = append(b.failures, Failure{Variation: variation, Stage: stage, Err: err})
	b.lastCause = err
}

func roundUp(v float64) int {
	return max(int(math.Ceil(v)), 1)
}
