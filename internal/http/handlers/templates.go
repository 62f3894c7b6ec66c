package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
)

func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid category_id")
			return
		}
		categoryID = id
	}
	templates, err := a.Templates.List(r.Context(), categoryID)
	if err != nil {
		a.fail(w, r, "Failed to list templates", err)
		return
	}
	a.json(w, http.StatusOK, a.templateViews(templates))
}

func (a *App) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid template id")
		return
	}
	tpl, err := a.Templates.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, "Template not found", err)
		return
	}
	if tpl.SVGPath == "" {
		a.error(w, http.StatusNotFound, "not_found", "SVG file not found")
		return
	}
	data, err := a.Store.Read(r.Context(), tpl.SVGPath)
	if err != nil {
		a.fail(w, r, "SVG file not found", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(tpl.SVGPath)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
