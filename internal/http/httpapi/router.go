package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/juliusiqbal/ai-img-gen/internal/http/handlers"
	"github.com/juliusiqbal/ai-img-gen/internal/middleware"
)

// Options tunes the router's middleware stack.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	// FilesPrefix and Files serve locally stored blobs, e.g. "/storage".
	FilesPrefix string
	Files       http.FileSystem
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	if opts.Files != nil && opts.FilesPrefix != "" {
		prefix := "/" + strings.Trim(opts.FilesPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(opts.Files)))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", app.ListCategories)
			r.Post("/", app.CreateCategory)
			r.Get("/{id}", app.ShowCategory)
			r.Get("/{id}/templates", app.CategoryTemplates)
			r.Get("/{id}/download", app.DownloadCategory)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", app.ListTemplates)
			r.Get("/{id}/download", app.DownloadTemplate)
			r.Post("/download-batch", app.DownloadBatch)
			r.Post("/download-all", app.DownloadAll)
		})

		r.Post("/upload", app.UploadImage)

		r.Route("/generate", func(r chi.Router) {
			r.Post("/", app.Generate)
			r.Post("/preview-prompts", app.PreviewPrompts)
			r.Post("/regenerate/{id}", app.Regenerate)
		})

		r.Get("/jobs/{id}", app.ShowJob)
		r.Get("/sizes", app.ListSizes)
	})

	return r
}
