package promptsynth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/juliusiqbal/ai-img-gen/internal/textextract"
)

const refineSystem = "You are an expert art director writing prompts for a text-to-image model that produces print advertisements. " +
	"Every prompt you write describes a real photograph with natural lighting, realistic materials and depth; never an illustration, vector, cartoon, flat design, digital art, or animation. " +
	"Describe the layout explicitly: where the main subject sits, where each text block goes, and which areas stay clear for text. " +
	"Text must be perfectly horizontal, rendered exactly as given, in its original language, with high contrast on a solid, gradient-free background area. " +
	"Respond with the prompt text only, as a single paragraph under 900 characters."

func (s *Synthesizer) refine(ctx context.Context, req Request, strategy Strategy, variation int) GeneratedPrompt {
	details := req.freeFormDetails()
	elements := textextract.Extract(details)
	raw, err := s.model.Complete(ctx, refineCompletion(req, strategy, details, elements, variation))
	if err != nil {
		s.fallback("refine_request", err)
		return s.basicPrompt(req, variation)
	}
	text := cleanModelText(raw)
	if len([]rune(text)) < minPromptLineLength {
		s.fallback("refine_empty", errors.New("empty refinement"))
		return s.basicPrompt(req, variation)
	}
	if !strings.Contains(text, "MANDATORY RULES") {
		text = hardConstraints + " " + text
	}
	return GeneratedPrompt{
		Text:      truncateRunes(text, MaxPromptLength),
		Variation: variation,
		Strategy:  strategy,
	}
}

func refineCompletion(req Request, strategy Strategy, details string, elements []string, variation int) Completion {
	category := strings.TrimSpace(req.Category)
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Write one image generation prompt for a %s design. ", category)
	fmt.Fprintf(sb, "Client request: %s. ", strings.TrimRight(details, ". "))
	maxTokens := 350
	if strategy == StrategyRefinedEnhanced {
		maxTokens = 600
		if len(elements) > 0 {
			fmt.Fprintf(sb, "The artwork must show this text exactly as written, each as its own horizontal block: %s. ", quoteAll(elements))
			sb.WriteString("Assign each text block a clear zone (headline in the top third, offer or details in the middle, name or contact at the bottom). ")
		}
		if d := strings.TrimSpace(req.ImageDescription); d != "" {
			fmt.Fprintf(sb, "Base the scene on these reference images: %s. Convert any non-photographic reference into a photorealistic style. ", strings.TrimRight(d, ". "))
		}
	}
	fmt.Fprintf(sb, "Style direction for this variation: %s", VariationNudge(variation))
	return Completion{
		System:      refineSystem,
		User:        sb.String(),
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}
}
