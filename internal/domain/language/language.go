// Package language normalizes language codes across providers that disagree
// on metadata formats (ISO 639-1, ISO 639-2, English names, native names).
package language

import "strings"

var variants = map[string][]string{
	"en": {"en", "eng", "english"},
	"es": {"es", "spa", "spanish", "español"},
	"fr": {"fr", "fre", "fra", "french", "français"},
	"de": {"de", "ger", "deu", "german", "deutsch"},
	"it": {"it", "ita", "italian", "italiano"},
	"pt": {"pt", "por", "portuguese", "português"},
	"zh": {"zh", "chi", "zho", "chinese"},
	"ja": {"ja", "jpn", "japanese"},
	"ko": {"ko", "kor", "korean"},
	"ar": {"ar", "ara", "arabic"},
	"ru": {"ru", "rus", "russian"},
}

// Variants returns all accepted spellings of a language code.
// Unknown codes map to themselves.
func Variants(code string) []string {
	code = strings.ToLower(strings.TrimSpace(code))
	if v, ok := variants[code]; ok {
		return v
	}
	return []string{code}
}

// Matches reports whether a document tagged with docLangs is in the target language.
// Documents without language metadata match everything.
func Matches(docLangs []string, target string) bool {
	normalized := make([]string, 0, len(docLangs))
	for _, l := range docLangs {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			normalized = append(normalized, l)
		}
	}
	if len(normalized) == 0 {
		return true
	}

	for _, v := range Variants(target) {
		for _, l := range normalized {
			if strings.Contains(l, v) || strings.Contains(v, l) {
				return true
			}
		}
	}
	return false
}
