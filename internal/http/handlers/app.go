package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/generation"
	"github.com/juliusiqbal/ai-img-gen/internal/promptsynth"
	"github.com/juliusiqbal/ai-img-gen/internal/storage"
)

// DefaultMaxUploadBytes caps a single uploaded image.
const DefaultMaxUploadBytes = 10 << 20

// Generator runs a generation batch.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// PromptPreviewer synthesizes prompts without generating images.
type PromptPreviewer interface {
	SynthesizeBatch(ctx context.Context, req promptsynth.Request, count int) ([]promptsynth.GeneratedPrompt, error)
}

// App holds the dependencies shared by the HTTP handlers.
type App struct {
	Categories     domain.CategoryRepository
	Templates      domain.TemplateRepository
	Jobs           domain.JobRepository
	Store          storage.BlobStore
	Generator      Generator
	Prompts        PromptPreviewer
	Logger         zerolog.Logger
	MaxUploadBytes int64
	// Debug adds the raw error text to failure responses.
	Debug bool
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorResponse{Error: errCode, Message: message})
}

// fail maps err onto a status code and a user facing message.
func (a *App) fail(w http.ResponseWriter, r *http.Request, title string, err error) {
	code, message := classify(err)
	if code >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg(strings.ToLower(title))
	} else {
		a.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg(strings.ToLower(title))
	}
	resp := errorResponse{Error: title, Message: message}
	if a.Debug {
		resp.Details = err.Error()
	}
	a.json(w, code, resp)
}

func classify(err error) (int, string) {
	var external *domain.ExternalServiceError
	if errors.As(err, &external) {
		switch external.Kind {
		case domain.ExternalQuotaExhausted:
			if strings.Contains(strings.ToLower(external.Code+" "+external.Message), "billing") {
				return http.StatusPaymentRequired, "OpenAI API billing limit reached. Please add credits to your OpenAI account or check your billing settings."
			}
			return http.StatusPaymentRequired, "Insufficient API quota. Please check your OpenAI account balance."
		case domain.ExternalUnauthorized:
			return http.StatusUnauthorized, "Invalid OpenAI API key. Please check your API key in the .env file."
		case domain.ExternalRateLimited:
			return http.StatusTooManyRequests, "API rate limit exceeded. Please try again in a few moments."
		}
	}
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, cfgErr.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrNoVariations):
		return http.StatusInternalServerError, domain.ErrNoVariations.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
