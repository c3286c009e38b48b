package scholarship

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"
)

// Point values of the scoring rules.
const (
	PointsAcademic   = 20
	PenaltyAcademic  = -15
	PointsEconomic   = 25
	PointsField      = 15
	PointsGeographic = 20
	PointsState      = 10
	PointsThematic   = 5
	MaxScore         = 100
)

// themeTags are record tags that qualify for the thematic bonus.
var themeTags = []string{"rural", "vulnerable", "comunidades", "indígena"}

// themeKeywords must appear in the profile description for the thematic bonus.
var themeKeywords = []string{"rural", "comunidad", "indígena", "vulnerable"}

// MatchAll scores every catalog record against the profile and returns the records
// with a positive score, sorted by score descending. Ties keep catalog order.
func MatchAll(p Profile, catalog []Record) []Match {
	matches := make([]Match, 0, len(catalog))
	for _, r := range catalog {
		score, reasons, eligible := Score(p, r)
		if !eligible || score <= 0 {
			continue
		}
		matches = append(matches, Match{Record: r, Score: score, Reasons: reasons})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Score applies the rule set to a single record.
// eligible is false when the level gate rejects the record; score is 0 in that case.
// The returned score is clamped above at MaxScore but may be negative.
func Score(p Profile, r Record) (score int, reasons []string, eligible bool) {
	if !containsFold(r.Levels, p.Level) {
		return 0, nil, false
	}

	if r.MinAverage != nil {
		if p.Average != nil && *p.Average >= *r.MinAverage {
			score += PointsAcademic
			reasons = append(reasons, fmt.Sprintf("Tu promedio (%.1f) cumple el requisito", *p.Average))
		} else {
			score += PenaltyAcademic
			reasons = append(reasons, fmt.Sprintf("Promedio mínimo requerido: %.1f", *r.MinAverage))
		}
	}

	if p.EconomicStatus != "" && containsFold(r.EconomicBrackets, p.EconomicStatus) {
		score += PointsEconomic
		reasons = append(reasons, "Tu situación económica coincide con los requisitos")
	}

	if p.FieldOfStudy != "" && containsFold(r.Fields, p.FieldOfStudy) {
		score += PointsField
		reasons = append(reasons, fmt.Sprintf("Beca enfocada en tu área de interés (%s)", p.FieldOfStudy))
	}

	if p.Location != "" && matchesGeography(p.Location, r.GeographicPriority) {
		score += PointsGeographic
		reasons = append(reasons, fmt.Sprintf("Prioridad geográfica para tu ubicación (%s)", p.Location))
	}

	if state := trailingSegment(p.Location); state != "" {
		inInstitution := strings.Contains(strings.ToLower(r.Institution), state)
		inTags := strings.Contains(strings.ToLower(strings.Join(r.Tags, " ")), state)
		if inInstitution || inTags {
			score += PointsState
			reasons = append(reasons, "Beca específica para tu estado")
		}
	}

	if hasThemeTag(r.Tags) && mentionsTheme(p.Description) {
		score += PointsThematic
		reasons = append(reasons, "Beca orientada a comunidades rurales, indígenas o vulnerables")
	}

	return min(score, MaxScore), reasons, true
}

// matchesGeography reports whether location contains any priority phrase,
// either as a substring or through any of the phrase's words as a whole word.
func matchesGeography(location string, phrases []string) bool {
	loc := strings.ToLower(location)
	words := splitWords(loc)
	for _, phrase := range phrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if strings.Contains(loc, phrase) {
			return true
		}
		for _, w := range splitWords(phrase) {
			if slices.Contains(words, w) {
				return true
			}
		}
	}
	return false
}

// trailingSegment returns the lowercase text after the last comma (the whole string without one).
func trailingSegment(location string) string {
	if i := strings.LastIndex(location, ","); i >= 0 {
		location = location[i+1:]
	}
	return strings.ToLower(strings.TrimSpace(location))
}

func hasThemeTag(tags []string) bool {
	for _, t := range tags {
		if slices.Contains(themeTags, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func mentionsTheme(description string) bool {
	d := strings.ToLower(description)
	for _, kw := range themeKeywords {
		if strings.Contains(d, kw) {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsFold(set []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
