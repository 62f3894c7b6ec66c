package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/domain/jsoncfg"
	"github.com/juliusiqbal/ai-img-gen/internal/generation"
	"github.com/juliusiqbal/ai-img-gen/internal/promptsynth"
	"github.com/juliusiqbal/ai-img-gen/internal/providers/vision"
	"github.com/juliusiqbal/ai-img-gen/internal/storage"
)

// maxReferenceImages bounds the files accepted by one generate request.
const maxReferenceImages = 10

type generateResponse struct {
	Message   string           `json:"message"`
	Category  *domain.Category `json:"category"`
	Templates []templateView   `json:"templates"`
	JobID     int64            `json:"job_id"`
	Failures  int              `json:"failed_variations,omitempty"`
}

// Generate creates a job, runs a generation batch and returns the persisted templates.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	req, uploads, err := a.decodeGenerate(w, r)
	if err != nil {
		a.fail(w, r, "Generation failed", err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		a.fail(w, r, "Generation failed", err)
		return
	}
	ctx := r.Context()

	category, err := a.resolveCategory(r, req.CategoryID, req.CategoryName, req.CategoryDetails)
	if err != nil {
		a.fail(w, r, "Generation failed", err)
		return
	}

	images := make([]vision.Image, 0, len(uploads))
	for _, up := range uploads {
		key, err := a.Store.Write(ctx, storage.UploadKey(category.Name, storage.ExtensionFor(up.MIME)), up.Data)
		if err != nil {
			a.fail(w, r, "Generation failed", fmt.Errorf("store upload %s: %w", up.Name, err))
			return
		}
		images = append(images, vision.Image{Ref: key, Data: up.Data, MIME: up.MIME})
	}

	job := &domain.GenerationJob{
		CategoryID:  category.ID,
		Status:      domain.JobStatusProcessing,
		RequestData: jsoncfg.MustMarshal(req),
	}
	if err := a.Jobs.Create(ctx, job); err != nil {
		a.fail(w, r, "Generation failed", err)
		return
	}

	result, err := a.Generator.Generate(ctx, generation.Request{
		Category:     *category,
		Details:      category.Details,
		ProjectName:  req.ProjectName,
		Images:       images,
		Width:        req.Width,
		Height:       req.Height,
		Unit:         req.Unit,
		StandardSize: req.StandardSize,
		Count:        req.TemplateCount,
		Mode:         generation.Mode(req.Mode),
		Preferences:  preferencesFor(req.Style, req.ProjectName, category),
		RequestID:    middleware.GetReqID(ctx),
	})
	if err != nil {
		if uerr := a.Jobs.UpdateStatus(ctx, job.ID, domain.JobStatusFailed, err.Error()); uerr != nil {
			a.Logger.Error().Err(uerr).Int64("job_id", job.ID).Msg("mark job failed")
		}
		a.fail(w, r, "Generation failed", err)
		return
	}
	if err := a.Jobs.UpdateStatus(ctx, job.ID, domain.JobStatusCompleted, ""); err != nil {
		a.Logger.Error().Err(err).Int64("job_id", job.ID).Msg("mark job completed")
	}

	a.Logger.Info().
		Int64("job_id", job.ID).
		Int64("category_id", category.ID).
		Int("templates", len(result.Templates)).
		Int("failed", len(result.Failures)).
		Msg("generation completed")

	category.TemplatesCount += len(result.Templates)
	a.json(w, http.StatusCreated, generateResponse{
		Message:   "Templates generated successfully",
		Category:  category,
		Templates: a.templateViews(result.Templates),
		JobID:     job.ID,
		Failures:  len(result.Failures),
	})
}

// resolveCategory loads the category by id, or finds or creates it by name.
// Non-empty details replace the stored details.
func (a *App) resolveCategory(r *http.Request, id int64, name, details string) (*domain.Category, error) {
	ctx := r.Context()
	var (
		category *domain.Category
		err      error
	)
	if id > 0 {
		category, err = a.Categories.GetByID(ctx, id)
	} else {
		category, err = a.Categories.FirstOrCreate(ctx, name, "", details)
	}
	if err != nil {
		return nil, err
	}
	if details != "" && details != category.Details {
		if err := a.Categories.UpdateDetails(ctx, category.ID, details); err != nil {
			return nil, err
		}
		category.Details = details
	}
	return category, nil
}

// preferencesFor returns nil unless the style selects structured synthesis.
func preferencesFor(style jsoncfg.Style, projectName string, category *domain.Category) *promptsynth.DesignPreferences {
	if !style.Structured() {
		return nil
	}
	return &promptsynth.DesignPreferences{
		TemplateType:    style.TemplateType,
		Keywords:        style.Keywords,
		FontFamily:      style.FontFamily,
		FontSizes:       append([]string(nil), style.FontSizes...),
		ColorTheme:      style.ColorTheme,
		BackgroundColor: style.BackgroundColor,
		ImageStyle:      style.ImageStyle,
		ProjectName:     projectName,
		CategoryName:    category.Name,
		CategoryDetails: category.Details,
	}
}

func (a *App) decodeGenerate(w http.ResponseWriter, r *http.Request) (*jsoncfg.GenerateRequest, []*uploadedImage, error) {
	limit := a.maxUploadBytes()
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req jsoncfg.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: invalid payload: %v", domain.ErrInvalidInput, err)
		}
		return &req, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit*maxReferenceImages+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid multipart form: %v", domain.ErrInvalidInput, err)
	}
	req, err := generateFromForm(r.MultipartForm)
	if err != nil {
		return nil, nil, err
	}
	files := formFiles(r.MultipartForm, "images[]", "images", "image")
	if len(files) > maxReferenceImages {
		return nil, nil, fmt.Errorf("%w: at most %d images are allowed", domain.ErrInvalidInput, maxReferenceImages)
	}
	uploads := make([]*uploadedImage, 0, len(files))
	for _, fh := range files {
		img, err := a.readImage(fh)
		if err != nil {
			return nil, nil, err
		}
		uploads = append(uploads, img)
	}
	return req, uploads, nil
}

func generateFromForm(form *multipart.Form) (*jsoncfg.GenerateRequest, error) {
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	req := &jsoncfg.GenerateRequest{
		CategoryName:    value("category_name"),
		CategoryDetails: value("category_details"),
		Unit:            value("unit"),
		StandardSize:    value("standard_size"),
		Mode:            value("mode"),
		ProjectName:     value("project_name"),
		Style: jsoncfg.Style{
			TemplateType:    value("template_type"),
			Keywords:        value("keywords"),
			FontFamily:      value("font_family"),
			ColorTheme:      value("color_theme"),
			BackgroundColor: value("background_color"),
			ImageStyle:      value("image_style"),
		},
	}
	for _, key := range []string{"font_sizes[]", "font_sizes"} {
		req.FontSizes = append(req.FontSizes, form.Value[key]...)
	}
	var err error
	if v := value("category_id"); v != "" {
		if req.CategoryID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("%w: category_id must be an integer", domain.ErrInvalidInput)
		}
	}
	if v := value("template_count"); v != "" {
		if req.TemplateCount, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("%w: template_count must be an integer", domain.ErrInvalidInput)
		}
	}
	for key, dst := range map[string]*float64{"width": &req.Width, "height": &req.Height} {
		if v := value(key); v != "" {
			if *dst, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("%w: %s must be numeric", domain.ErrInvalidInput, key)
			}
		}
	}
	return req, nil
}

func formFiles(form *multipart.Form, keys ...string) []*multipart.FileHeader {
	var out []*multipart.FileHeader
	for _, key := range keys {
		out = append(out, form.File[key]...)
	}
	return out
}

// PreviewPrompts returns synthesized prompts without generating images.
func (a *App) PreviewPrompts(w http.ResponseWriter, r *http.Request) {
	var req jsoncfg.PreviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		a.fail(w, r, "Failed to preview prompts", err)
		return
	}
	name, details := req.CategoryName, req.CategoryDetails
	if req.CategoryID > 0 {
		category, err := a.Categories.GetByID(r.Context(), req.CategoryID)
		if err != nil {
			a.fail(w, r, "Failed to preview prompts", err)
			return
		}
		name = category.Name
		if details == "" {
			details = category.Details
		}
	}
	category := &domain.Category{Name: name, Details: details}
	prompts, err := a.Prompts.SynthesizeBatch(r.Context(), promptsynth.Request{
		Category:    name,
		Details:     details,
		Preferences: preferencesFor(req.Style, "", category),
	}, req.NumberOfTemplates)
	if err != nil {
		a.fail(w, r, "Failed to preview prompts", err)
		return
	}
	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, p.Text)
	}
	a.json(w, http.StatusOK, map[string]any{"prompts": out, "count": len(out)})
}

// Regenerate produces one new template from a stored template's preferences.
func (a *App) Regenerate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid template id")
		return
	}
	var overrides jsoncfg.RegenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := overrides.Validate(); err != nil {
		a.fail(w, r, "Regeneration failed", err)
		return
	}
	ctx := r.Context()
	tpl, err := a.Templates.GetByID(ctx, id)
	if err != nil {
		a.fail(w, r, "Regeneration failed", err)
		return
	}
	category, err := a.Categories.GetByID(ctx, tpl.CategoryID)
	if err != nil {
		a.fail(w, r, "Regeneration failed", err)
		return
	}

	var stored promptsynth.DesignPreferences
	if len(tpl.DesignPreferences) > 0 {
		if err := json.Unmarshal(tpl.DesignPreferences, &stored); err != nil {
			a.Logger.Warn().Err(err).Int64("template_id", tpl.ID).Msg("ignore unreadable design preferences")
			stored = promptsynth.DesignPreferences{}
		}
	}
	style := overrides.Apply(jsoncfg.Style{
		TemplateType:    stored.TemplateType,
		Keywords:        stored.Keywords,
		FontFamily:      stored.FontFamily,
		FontSizes:       stored.FontSizes,
		ColorTheme:      stored.ColorTheme,
		BackgroundColor: stored.BackgroundColor,
		ImageStyle:      stored.ImageStyle,
	})
	projectName := tpl.ProjectName
	if projectName == "" {
		projectName = stored.ProjectName
	}
	prefs := preferencesFor(style, projectName, category)
	if prefs != nil && stored.CategoryDetails != "" {
		prefs.CategoryDetails = stored.CategoryDetails
	}

	req := generation.Request{
		Category:    *category,
		Details:     category.Details,
		ProjectName: projectName,
		Count:       1,
		Mode:        generation.ModeAI,
		Preferences: prefs,
		RequestID:   middleware.GetReqID(ctx),
	}
	if pd := tpl.PrintingDimensions; pd != nil {
		req.Width, req.Height, req.Unit = pd.Width, pd.Height, pd.Unit
	}
	result, err := a.Generator.Generate(ctx, req)
	if err != nil {
		a.fail(w, r, "Regeneration failed", err)
		return
	}
	if len(result.Templates) == 0 {
		a.fail(w, r, "Regeneration failed", domain.ErrNoVariations)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"message":  "Template regenerated successfully",
		"template": a.templateView(result.Templates[0]),
	})
}
