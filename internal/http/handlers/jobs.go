package handlers

import (
	"net/http"

	"github.com/juliusiqbal/ai-img-gen/internal/dimension"
)

// ShowJob reports a generation job with its category.
func (a *App) ShowJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid job id")
		return
	}
	job, err := a.Jobs.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, "Job not found", err)
		return
	}
	if category, err := a.Categories.GetByID(r.Context(), job.CategoryID); err == nil {
		job.Category = category
	}
	a.json(w, http.StatusOK, job)
}

func (a *App) ListSizes(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, dimension.NamedSizes())
}
