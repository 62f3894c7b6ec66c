package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
)

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *App) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.Categories.List(r.Context())
	if err != nil {
		a.fail(w, r, "Failed to list categories", err)
		return
	}
	a.json(w, http.StatusOK, categories)
}

func (a *App) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 255 {
		a.error(w, http.StatusUnprocessableEntity, "validation_failed", "name is required and must be at most 255 characters")
		return
	}
	category, err := a.Categories.FirstOrCreate(r.Context(), req.Name, strings.TrimSpace(req.Description), "")
	if err != nil {
		a.fail(w, r, "Failed to create category", err)
		return
	}
	a.json(w, http.StatusCreated, category)
}

func (a *App) ShowCategory(w http.ResponseWriter, r *http.Request) {
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
		a.fail(w, r, "Failed to load templates", err)
		return
	}
	for i := range templates {
		templates[i].Category = nil
	}
	a.json(w, http.StatusOK, struct {
		*domain.Category
		Templates []templateView `json:"templates"`
	}{Category: category, Templates: a.templateViews(templates)})
}

func (a *App) CategoryTemplates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid category id")
		return
	}
	if _, err := a.Categories.GetByID(r.Context(), id); err != nil {
		a.fail(w, r, "Category not found", err)
		return
	}
	templates, err := a.Templates.List(r.Context(), id)
	if err != nil {
		a.fail(w, r, "Failed to load templates", err)
		return
	}
	a.json(w, http.StatusOK, a.templateViews(templates))
}
