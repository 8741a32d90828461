package suggestions

import (
	"slices"
	"strings"
	"unicode"

	"resume-scorer/internal/scoring"
)

const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

const maxTitleRunes = 80

// formatTerms match at the start of a word, so "formatting" counts and
// "information" does not. formatWords must match a whole word.
var (
	formatTerms = []string{"format", "layout", "font", "bullet", "heading", "header", "section", "length", "page", "spacing", "template", "column", "table"}
	formatWords = []string{"ats"}
)

// Derive builds default suggestions from a stored result without a model
// call. Improvements become content or format edits, missing keywords become
// keyword edits, and the custom category starts empty.
func Derive(result scoring.Result) Set {
	set := NewSet()
	seen := make(map[string]bool)

	for _, improvement := range result.Improvements {
		text := strings.TrimSpace(improvement)
		if text == "" {
			continue
		}
		category, score := CategoryContent, result.Content
		if isFormatting(text) {
			category, score = CategoryFormat, minScore(result.Format, result.ATSCompatibility)
		}
		id := string(category) + "-" + slugify(text)
		if seen[id] {
			continue
		}
		seen[id] = true
		set.add(category, Suggestion{
			ID:          id,
			Title:       headline(text),
			Description: text,
			Impact:      impactFor(score),
		})
	}

	for _, km := range result.KeywordMatch {
		keyword := strings.TrimSpace(km.Keyword)
		if km.Found || keyword == "" {
			continue
		}
		id := "keywords-" + slugify(keyword)
		if seen[id] {
			continue
		}
		seen[id] = true
		set.add(CategoryKeywords, Suggestion{
			ID:          id,
			Title:       `Add "` + keyword + `"`,
			Description: `The job description asks for "` + keyword + `" but the resume does not mention it. Work it into your skills or an experience bullet where it is true.`,
			After:       keyword,
			Impact:      impactFor(result.Keywords),
		})
	}
	return set
}

func isFormatting(text string) bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		if slices.Contains(formatWords, word) {
			return true
		}
		for _, term := range formatTerms {
			if strings.HasPrefix(word, term) {
				return true
			}
		}
	}
	return false
}

func impactFor(score float64) string {
	switch {
	case score < 60:
		return ImpactHigh
	case score < 80:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

func minScore(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// headline shortens an improvement to its first clause.
func headline(text string) string {
	end := len(text)
	for _, sep := range []string{". ", "; ", ": "} {
		if i := strings.Index(text, sep); i > 0 && i < end {
			end = i
		}
	}
	title := []rune(strings.TrimRight(text[:end], "."))
	if len(title) <= maxTitleRunes {
		return string(title)
	}
	cut := maxTitleRunes
	for i := maxTitleRunes; i > 0; i-- {
		if title[i] == ' ' {
			cut = i
			break
		}
	}
	return string(title[:cut]) + "..."
}

func slugify(input string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if r := []rune(out); len(r) > 48 {
		out = strings.TrimRight(string(r[:48]), "-")
	}
	if out == "" {
		return "item"
	}
	return out
}
