// Package promptsynth builds image generation prompts from a category,
// optional free-form details, reference image descriptions and structured
// design preferences.
package promptsynth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/profile"
	"github.com/juliusiqbal/ai-img-gen/internal/textextract"
)

// DefaultInterval spaces successive language model calls within one batch.
const DefaultInterval = time.Second

// MaxPromptLength bounds prompts sent to the image model.
const MaxPromptLength = 4000

// Request is the input to prompt synthesis.
type Request struct {
	Category         string
	Details          string
	ImageDescription string
	Preferences      *DesignPreferences
}

func (r Request) freeFormDetails() string {
	if d := strings.TrimSpace(r.Details); d != "" {
		return d
	}
	if r.Preferences != nil {
		return strings.TrimSpace(r.Preferences.CategoryDetails)
	}
	return ""
}

// GeneratedPrompt is a prompt produced for one variation index.
type GeneratedPrompt struct {
	Text      string
	Variation int
	Strategy  Strategy
	// Preferences holds the populated preferences used by the structured path.
	Preferences *DesignPreferences
}

// Completion is a single chat request to a language model.
type Completion struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	JSON        bool
}

// LanguageModel answers chat completions.
type LanguageModel interface {
	Complete(ctx context.Context, c Completion) (string, error)
}

// Options configures a Synthesizer.
type Options struct {
	Model    LanguageModel
	Profiles *profile.Table
	// Interval is the minimum pause between language model calls in a batch.
	Interval   time.Duration
	Logger     zerolog.Logger
	OnFallback func(reason string, err error)
}

// Synthesizer selects a Strategy per request and produces prompts.
type Synthesizer struct {
	model      LanguageModel
	profiles   *profile.Table
	interval   time.Duration
	logger     zerolog.Logger
	onFallback func(reason string, err error)
}

// New builds a Synthesizer. A nil Model restricts it to the basic path.
func New(opts Options) *Synthesizer {
	profiles := opts.Profiles
	if profiles == nil {
		profiles = profile.Default()
	}
	interval := opts.Interval
	if interval < 0 {
		interval = 0
	}
	return &Synthesizer{
		model:      opts.Model,
		profiles:   profiles,
		interval:   interval,
		logger:     opts.Logger,
		onFallback: opts.OnFallback,
	}
}

// Strategy returns the strategy that would run for req.
func (s *Synthesizer) Strategy(req Request) Strategy {
	strategy := SelectStrategy(req, textextract.Extract(req.freeFormDetails()))
	if s.model == nil && strategy != StrategyBasic {
		return StrategyBasic
	}
	return strategy
}

// Basic builds the deterministic prompt for variation.
func (s *Synthesizer) Basic(req Request, variation int) string {
	return buildBasic(s.profiles, req, variation)
}

// Synthesize produces the prompt for one variation. Negative variations are
// rejected with domain.ErrInvalidInput.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request, variation int) (GeneratedPrompt, error) {
	if err := ctx.Err(); err != nil {
		return GeneratedPrompt{}, err
	}
	if variation < 0 {
		return GeneratedPrompt{}, fmt.Errorf("variation %d: %w", variation, domain.ErrInvalidInput)
	}
	strategy := s.Strategy(req)
	switch {
	case strategy == StrategyStructured:
		prompts, prefs := s.structured(ctx, req, variation+1)
		return GeneratedPrompt{Text: prompts[variation], Variation: variation, Strategy: strategy, Preferences: &prefs}, nil
	case strategy.Refined():
		return s.refine(ctx, req, strategy, variation), nil
	default:
		return s.basicPrompt(req, variation), nil
	}
}

// SynthesizeBatch produces count prompts with variation indices 0..count-1.
// Language model calls are paced by the configured interval. A variation that
// fails is logged and skipped; the caller decides whether the remainder is
// enough.
func (s *Synthesizer) SynthesizeBatch(ctx context.Context, req Request, count int) ([]GeneratedPrompt, error) {
	if count <= 0 {
		return nil, nil
	}
	strategy := s.Strategy(req)
	if strategy == StrategyStructured {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prompts, prefs := s.structured(ctx, req, count)
		out := make([]GeneratedPrompt, 0, count)
		for i, text := range prompts {
			out = append(out, GeneratedPrompt{Text: text, Variation: i, Strategy: strategy, Preferences: &prefs})
		}
		return out, nil
	}

	var limiter *rate.Limiter
	if strategy.Refined() && s.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(s.interval), 1)
	}
	out := make([]GeneratedPrompt, 0, count)
	for i := 0; i < count; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				s.logger.Warn().Err(err).Int("variation", i).Str("strategy", strategy.String()).Msg("prompt pacing interrupted")
				continue
			}
		}
		prompt, err := s.Synthesize(ctx, req, i)
		if err != nil {
			s.logger.Warn().Err(err).Int("variation", i).Str("strategy", strategy.String()).Msg("prompt synthesis failed")
			continue
		}
		if strings.TrimSpace(prompt.Text) == "" {
			continue
		}
		out = append(out, prompt)
	}
	if len(out) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoPrompts
	}
	return out, nil
}

// ErrNoPrompts is returned when a batch produced nothing.
var ErrNoPrompts = errors.New("promptsynth: no prompts produced")

func (s *Synthesizer) basicPrompt(req Request, variation int) GeneratedPrompt {
	return GeneratedPrompt{Text: s.Basic(req, variation), Variation: variation, Strategy: StrategyBasic}
}

func (s *Synthesizer) fallback(reason string, err error) {
	s.logger.Warn().Err(err).Str("reason", reason).Msg("prompt synthesis falling back to basic")
	if s.onFallback != nil {
		s.onFallback(reason, err)
	}
}
