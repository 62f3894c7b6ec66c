package image

import (
	"context"
	"strings"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/providers/openai"
)

type openAIImageClient interface {
	GenerateImage(context.Context, openai.ImageRequest) (*openai.ImageAsset, error)
	HasCredentials() bool
	ImageModel() string
}

// OpenAIGenerator produces images through the OpenAI images API. Retries are
// left to the client so one variation stays within its attempt budget.
type OpenAIGenerator struct {
	client openAIImageClient
}

// NewOpenAIGenerator wraps client.
func NewOpenAIGenerator(client openAIImageClient) *OpenAIGenerator {
	return &OpenAIGenerator{client: client}
}

// Generate fulfils the Generator interface.
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) ([]Asset, error) {
	if g == nil || g.client == nil {
		return nil, &domain.ConfigurationError{Setting: "image generator"}
	}
	if !g.client.HasCredentials() {
		return nil, openai.ErrMissingAPIKey
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	assets := make([]Asset, 0, quantity)
	for i := 0; i < quantity; i++ {
		asset, err := g.client.GenerateImage(ctx, openai.ImageRequest{
			Prompt:    strings.TrimSpace(req.Prompt),
			Size:      strings.TrimSpace(req.Size),
			Quality:   strings.TrimSpace(req.Quality),
			RequestID: req.RequestID,
		})
		if err != nil {
			return nil, err
		}
		assets = append(assets, Asset{
			URL:           asset.URL,
			Format:        normalizeFormat(asset.Format),
			Width:         asset.Width,
			Height:        asset.Height,
			Data:          asset.Data,
			RevisedPrompt: asset.RevisedPrompt,
		})
	}
	return assets, nil
}

func (g *OpenAIGenerator) String() string {
	if g == nil || g.client == nil {
		return "openai"
	}
	return g.client.ImageModel()
}

var _ Generator = (*OpenAIGenerator)(nil)
