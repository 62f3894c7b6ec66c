package promptsynth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/juliusiqbal/ai-img-gen/internal/textextract"
)

const (
	minPromptLineLength = 20
	maxTextBlocks       = 3
	maxTextBlockLength  = 60
)

var listMarkerPattern = regexp.MustCompile(`(?i)^\s*(?:(?:prompt|variation)\s*#?\d*\s*[:.\-)]\s*|\d+\s*[.):\-]\s*|[-*•]+\s*|#+\s*)`)

const structuredSystem = "You are an expert prompt engineer for photorealistic marketing print designs. " +
	"You write complete, self-contained prompts for a text-to-image model. Respond with prompts only."

const textBlocksSystem = "You are a concise marketing copywriter. Respond only with valid JSON."

type textBlocksPayload struct {
	TextBlocks []string `json:"text_blocks"`
}

// structured returns exactly count prompts plus the populated preferences.
// Missing prompts are filled with basic prompts for their index.
func (s *Synthesizer) structured(ctx context.Context, req Request, count int) ([]string, DesignPreferences) {
	base := DesignPreferences{}
	if req.Preferences != nil {
		base = *req.Preferences
	}
	builder := NewPreferencesBuilder(base).WithCategory(req.Category, req.Details).WithCount(count)

	var limiter *rate.Limiter
	if s.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(s.interval), 1)
	}
	wait := func() error {
		if limiter == nil {
			return nil
		}
		return limiter.Wait(ctx)
	}

	if len(base.TextBlocks) == 0 {
		current := builder.Build()
		blocks, err := s.textBlocks(ctx, current, wait)
		if err != nil {
			s.fallback("text_blocks", err)
			blocks = fallbackTextBlocks(current)
		}
		builder.WithTextBlocks(blocks)
	}
	prefs := builder.Build()

	var prompts []string
	if err := wait(); err != nil {
		s.fallback("structured_pacing", err)
	} else if raw, err := s.model.Complete(ctx, structuredCompletion(prefs, req.ImageDescription, count)); err != nil {
		s.fallback("structured_prompts", err)
	} else if prompts = ParsePromptLines(raw, count); len(prompts) == 0 {
		s.fallback("structured_empty", errors.New("no usable prompt lines"))
	}

	basicReq := req
	basicReq.Preferences = &prefs
	for i := len(prompts); i < count; i++ {
		prompts = append(prompts, s.Basic(basicReq, i))
	}
	for i := range prompts {
		prompts[i] = truncateRunes(prompts[i], MaxPromptLength)
	}
	return prompts, prefs
}

func (s *Synthesizer) textBlocks(ctx context.Context, prefs DesignPreferences, wait func() error) ([]string, error) {
	if err := wait(); err != nil {
		return nil, err
	}
	raw, err := s.model.Complete(ctx, Completion{
		System:      textBlocksSystem,
		User:        textBlocksPrompt(prefs),
		Temperature: 0.7,
		MaxTokens:   200,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}
	payload, err := parseModelPayload[textBlocksPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("parse text blocks: %w", err)
	}
	var blocks []string
	for _, block := range payload.TextBlocks {
		block = strings.Trim(strings.TrimSpace(block), `"`)
		if block == "" {
			continue
		}
		blocks = append(blocks, truncateRunes(block, maxTextBlockLength))
		if len(blocks) == maxTextBlocks {
			break
		}
	}
	if len(blocks) == 0 {
		return nil, errors.New("no text blocks returned")
	}
	return blocks, nil
}

func textBlocksPrompt(p DesignPreferences) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Write 2 to 3 short marketing text blocks (a headline, a supporting line, optionally a call to action) for a %s. ", coalesce(p.TemplateType, "poster"))
	fmt.Fprintf(sb, "Category: %q. ", p.CategoryName)
	if p.CategoryDetails != "" {
		fmt.Fprintf(sb, "Details: %q. ", p.CategoryDetails)
	}
	if p.Keywords != "" {
		fmt.Fprintf(sb, "Keywords: %q. ", p.Keywords)
	}
	if p.ProjectName != "" {
		fmt.Fprintf(sb, "Project: %q. ", p.ProjectName)
	}
	fmt.Fprintf(sb, "Each block must be under %d characters and in the same language as the input. ", maxTextBlockLength)
	sb.WriteString(`Respond strictly as JSON: {"text_blocks":[string]}.`)
	return sb.String()
}

// fallbackTextBlocks derives text blocks locally when the model is unavailable.
func fallbackTextBlocks(p DesignPreferences) []string {
	source := strings.TrimSpace(p.CategoryDetails + " " + p.Keywords)
	blocks := textextract.Extract(source)
	if len(blocks) > maxTextBlocks {
		blocks = blocks[:maxTextBlocks]
	}
	if len(blocks) == 0 {
		title := cases.Title(language.English).String(coalesce(p.ProjectName, p.CategoryName))
		if title != "" {
			blocks = []string{title}
		}
	}
	return blocks
}

func structuredCompletion(p DesignPreferences, imageDescription string, count int) Completion {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Write exactly %d distinct image generation prompts for a %s design in the %q category. ", count, coalesce(p.TemplateType, "poster"), p.CategoryName)
	if p.CategoryDetails != "" {
		fmt.Fprintf(sb, "Category details: %s. ", p.CategoryDetails)
	}
	if p.Keywords != "" {
		fmt.Fprintf(sb, "Keywords: %s. ", p.Keywords)
	}
	if len(p.TextBlocks) > 0 {
		sb.WriteString("Text blocks to render exactly as written: ")
		for i, block := range p.TextBlocks {
			if i > 0 {
				sb.WriteString("; ")
			}
			size := PlaceholderFontSize
			if i < len(p.FontSizes) {
				size = p.FontSizes[i]
			}
			fmt.Fprintf(sb, "%q (size %s)", block, size)
		}
		sb.WriteString(". ")
	}
	if p.FontFamily != "" {
		fmt.Fprintf(sb, "Font family: %s. ", p.FontFamily)
	}
	if p.ColorTheme != "" {
		fmt.Fprintf(sb, "Color theme: %s. ", p.ColorTheme)
	}
	if p.BackgroundColor != "" {
		fmt.Fprintf(sb, "Background color: %s. ", p.BackgroundColor)
	}
	fmt.Fprintf(sb, "Image style: %s. ", coalesce(p.ImageStyle, "realistic"))
	if d := strings.TrimSpace(imageDescription); d != "" {
		fmt.Fprintf(sb, "Reference images show: %s. Convert any non-photographic reference into a photorealistic style. ", d)
	}
	sb.WriteString("Every prompt must state these rules: ")
	sb.WriteString(hardConstraints)
	sb.WriteString(" Each prompt must describe a real photograph, not an illustration, and vary composition, color emphasis, and visual elements from the others. ")
	sb.WriteString("Output one prompt per line with no numbering, bullets, headings, or blank lines.")
	return Completion{
		System:      structuredSystem,
		User:        sb.String(),
		Temperature: 0.8,
		MaxTokens:   400 * count,
	}
}

// ParsePromptLines splits a model reply into at most n prompts, stripping list
// markers and discarding lines shorter than 20 characters.
func ParsePromptLines(raw string, n int) []string {
	var out []string
	for _, line := range strings.Split(trimCodeFence(raw), "\n") {
		line = strings.TrimSpace(line)
		line = listMarkerPattern.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		line = strings.TrimSpace(line)
		if len([]rune(line)) < minPromptLineLength {
			continue
		}
		out = append(out, line)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}
