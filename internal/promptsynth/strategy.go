package promptsynth

import (
	"regexp"
	"strings"
)

// Strategy selects which prompt construction path runs.
type Strategy int

const (
	StrategyBasic Strategy = iota
	StrategyStructured
	StrategyRefinedStandard
	StrategyRefinedEnhanced
)

func (s Strategy) String() string {
	switch s {
	case StrategyStructured:
		return "structured"
	case StrategyRefinedStandard:
		return "gpt_refined_standard"
	case StrategyRefinedEnhanced:
		return "gpt_refined_enhanced"
	default:
		return "basic"
	}
}

// Refined reports whether s is one of the language-model refinement paths.
func (s Strategy) Refined() bool {
	return s == StrategyRefinedStandard || s == StrategyRefinedEnhanced
}

const longDetailsThreshold = 100

var adKeywords = map[string]struct{}{
	"advertisement": {},
	"advert":        {},
	"ad":            {},
	"promo":         {},
	"promotion":     {},
	"promotional":   {},
	"marketing":     {},
	"poster":        {},
	"banner":        {},
	"flyer":         {},
	"brochure":      {},
	"campaign":      {},
}

var (
	wordPattern   = regexp.MustCompile(`[a-z]+`)
	intentPattern = regexp.MustCompile(`(?i)\b(?:need|want|create|make|design|generate)\s+(?:an?\s+|the\s+|some\s+)?(?:image|picture|photo|graphic|visual|ad|post)s?\b|\b(?:add|include|show|mention)\s+(?:the\s+|our\s+)?(?:text|logo|price|discount|offer|name|slogan|tagline|agency|company|contact|phone)\b`)
)

// SelectStrategy applies the fixed precedence: structured preferences first,
// then language-model refinement for advert-like or long details, then basic.
func SelectStrategy(req Request, textElements []string) Strategy {
	if req.Preferences != nil && req.Preferences.Structured() {
		return StrategyStructured
	}
	details := strings.TrimSpace(req.Details)
	if details == "" {
		return StrategyBasic
	}
	if IsAdvertLike(details) || len(details) > longDetailsThreshold || intentPattern.MatchString(details) {
		if strings.TrimSpace(req.ImageDescription) != "" || len(textElements) > 0 {
			return StrategyRefinedEnhanced
		}
		return StrategyRefinedStandard
	}
	return StrategyBasic
}

// IsAdvertLike reports whether details contain an advertising keyword.
func IsAdvertLike(details string) bool {
	for _, w := range wordPattern.FindAllString(strings.ToLower(details), -1) {
		if _, ok := adKeywords[w]; ok {
			return true
		}
	}
	return false
}
