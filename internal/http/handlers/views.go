package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
)

type templateView struct {
	domain.Template
	SVGURL      string `json:"svg_url,omitempty"`
	OriginalURL string `json:"original_image_url,omitempty"`
}

func (a *App) templateViews(templates []domain.Template) []templateView {
	out := make([]templateView, 0, len(templates))
	for _, t := range templates {
		out = append(out, a.templateView(t))
	}
	return out
}

func (a *App) templateView(t domain.Template) templateView {
	v := templateView{Template: t}
	if a.Store != nil {
		if t.SVGPath != "" {
			v.SVGURL = a.Store.URL(t.SVGPath)
		}
		if t.OriginalImagePath != "" {
			v.OriginalURL = a.Store.URL(t.OriginalImagePath)
		}
	}
	return v
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
