// Package textextract pulls literal phrases out of free-form requirement text
// so they can be rendered verbatim in generated artwork.
package textextract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	locationPattern = regexp.MustCompile(`(?i)\b(?:in|for|to|visit|travel|tour)\s+([a-z][a-z'-]*(?:\s+[a-z][a-z'-]*){0,3})`)
	discountPattern = regexp.MustCompile(`(?i)(?:\badd\s+)?\b(\d{1,3})\s*%?\s*(?:off|discount|disc|percent)\b`)
	orgAddPattern   = regexp.MustCompile(`(?i)\badd\s+(?:agency|company|name)(?:\s+name)?\s+([a-z0-9][\w'&-]*(?:\s+[a-z0-9&][\w'&-]*){0,6})`)
	orgCapsPattern  = regexp.MustCompile(`\b([A-Z][\w'-]*(?:\s+(?:[A-Z][\w'-]*|and|&))+)`)
	quotedPattern   = regexp.MustCompile(`"([^"]+)"|(?:^|[^\w])'([^']+)'`)
)

var orgKeywords = map[string]struct{}{
	"tour":    {},
	"tours":   {},
	"travel":  {},
	"travels": {},
	"agency":  {},
	"company": {},
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "with": {}, "our": {}, "your": {}, "this": {}, "that": {},
	"add": {}, "name": {}, "from": {}, "all": {}, "new": {}, "off": {}, "discount": {},
	"disc": {}, "percent": {}, "poster": {}, "banner": {}, "flyer": {}, "design": {},
	"template": {}, "people": {}, "customers": {}, "everyone": {}, "only": {},
}

// small words kept lower-case when title-casing organization names
var minorWords = map[string]struct{}{"and": {}, "of": {}, "the": {}, "&": {}}

// Extract returns the literal strings found in text: locations, discounts,
// organization names, then quoted phrases. Exact duplicates are removed and
// blank entries dropped; order follows pass then first occurrence.
func Extract(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []string
	seen := map[string]struct{}{}
	add := func(items []string) {
		for _, item := range items {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	add(Locations(text))
	add(Discounts(text))
	add(Organizations(text))
	add(Quoted(text))
	return out
}

// Locations finds place names introduced by travel prepositions.
func Locations(text string) []string {
	var out []string
	caser := cases.Title(language.English)
	for _, m := range locationPattern.FindAllStringSubmatch(text, -1) {
		var kept []string
		for _, w := range strings.Fields(m[1]) {
			lw := strings.ToLower(w)
			if len(lw) <= 2 {
				continue
			}
			if _, stop := stopWords[lw]; stop {
				continue
			}
			if _, org := orgKeywords[lw]; org {
				continue
			}
			kept = append(kept, caser.String(lw))
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, " "))
		}
	}
	return out
}

// Discounts normalizes percentage offers to "<n>% OFF".
func Discounts(text string) []string {
	var out []string
	for _, m := range discountPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1]+"% OFF")
	}
	return out
}

// Organizations finds agency or company names, both from "add agency name ..."
// instructions and from capitalized phrases.
func Organizations(text string) []string {
	var out []string
	for _, m := range orgAddPattern.FindAllStringSubmatch(text, -1) {
		if name := trimToLastKeyword(strings.Fields(m[1])); name != "" {
			out = append(out, titleWords(name))
		}
	}
	for _, m := range orgCapsPattern.FindAllStringSubmatch(text, -1) {
		if containsKeyword(strings.Fields(m[1])) {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	return out
}

// Quoted returns single- or double-quoted substrings verbatim.
func Quoted(text string) []string {
	var out []string
	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			out = append(out, m[1])
		} else if m[2] != "" {
			out = append(out, m[2])
		}
	}
	return out
}

func trimToLastKeyword(words []string) string {
	last := -1
	for i, w := range words {
		if _, ok := orgKeywords[strings.ToLower(strings.Trim(w, ",.;:!"))]; ok {
			last = i
		}
	}
	if last < 0 {
		return ""
	}
	words = words[:last+1]
	words[last] = strings.Trim(words[last], ",.;:!")
	return strings.Join(words, " ")
}

func containsKeyword(words []string) bool {
	for _, w := range words {
		if _, ok := orgKeywords[strings.ToLower(strings.Trim(w, ",.;:!"))]; ok {
			return true
		}
	}
	return false
}

func titleWords(s string) string {
	words := strings.Fields(s)
	caser := cases.Title(language.English)
	for i, w := range words {
		lw := strings.ToLower(w)
		if _, minor := minorWords[lw]; minor && i > 0 {
			words[i] = lw
			continue
		}
		words[i] = caser.String(lw)
	}
	return strings.Join(words, " ")
}
