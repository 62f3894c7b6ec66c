package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/pkg/zip"
)

type downloadRequest struct {
	TemplateIDs []int64 `json:"template_ids"`
	ProjectName string  `json:"project_name"`
}

func (a *App) DownloadBatch(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.TemplateIDs) == 0 {
		a.error(w, http.StatusUnprocessableEntity, "validation_failed", "template_ids is required")
		return
	}
	templates, err := a.Templates.ListByIDs(r.Context(), req.TemplateIDs)
	if err != nil {
		a.fail(w, r, "Download failed", err)
		return
	}
	a.sendArchive(w, r, "templates.zip", templates, templateEntryName)
}

func (a *App) DownloadAll(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.ProjectName = strings.TrimSpace(req.ProjectName)

	var (
		templates []domain.Template
		err       error
	)
	switch {
	case len(req.TemplateIDs) > 0:
		templates, err = a.Templates.ListByIDs(r.Context(), req.TemplateIDs)
	case req.ProjectName != "":
		templates, err = a.Templates.ListByProject(r.Context(), req.ProjectName)
	default:
		templates, err = a.Templates.List(r.Context(), 0)
	}
	if err != nil {
		a.fail(w, r, "Download failed", err)
		return
	}
	if len(templates) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "No templates found")
		return
	}
	name := "all_templates.zip"
	if req.ProjectName != "" {
		name = req.ProjectName + "_templates.zip"
	}
	a.sendArchive(w, r, name, templates, projectEntryName)
}

func (a *App) DownloadCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid category id")
		return
	}
	category, err := a.Categories.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, "Category not found", err)
		return
	}
	templates, err := a.Templates.List(r.Context(), id)
	if err != nil {
		a.fail(w, r, "Download failed", err)
		return
	}
	if len(templates) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "No templates found in this category")
		return
	}
	a.sendArchive(w, r, category.Name+"_templates.zip", templates, templateEntryName)
}

func templateEntryName(t domain.Template) string {
	return fmt.Sprintf("template_%d_%s", t.ID, path.Base(t.SVGPath))
}

func projectEntryName(t domain.Template) string {
	if t.ProjectName != "" {
		return fmt.Sprintf("%s_%d_%s", t.ProjectName, t.ID, path.Base(t.SVGPath))
	}
	return templateEntryName(t)
}

// sendArchive zips the SVG of every template whose file is still stored.
func (a *App) sendArchive(w http.ResponseWriter, r *http.Request, filename string, templates []domain.Template, entryName func(domain.Template) string) {
	assets, err := a.collectSVGs(r.Context(), templates, entryName)
	if err != nil {
		a.fail(w, r, "Download failed", err)
		return
	}
	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.fail(w, r, "Cannot create ZIP file", err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) collectSVGs(ctx context.Context, templates []domain.Template, entryName func(domain.Template) string) ([]zip.Asset, error) {
	assets := make([]zip.Asset, 0, len(templates))
	for _, t := range templates {
		if t.SVGPath == "" {
			continue
		}
		data, err := a.Store.Read(ctx, t.SVGPath)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.Logger.Warn().Int64("template_id", t.ID).Str("svg_path", t.SVGPath).Msg("download: svg missing from storage")
				continue
			}
			return nil, err
		}
		assets = append(assets, zip.Asset{Filename: entryName(t), MIME: "image/svg+xml", Data: data, Modified: t.UpdatedAt})
	}
	return assets, nil
}
