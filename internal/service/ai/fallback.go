package ai

import (
	"strings"

	"github.com/contentforge/seo_editor/internal/service/document"
)

// maxFallbackKeywords caps the matches returned by the static keyword path.
const maxFallbackKeywords = 10

// weakWord is one entry of the static fallback table: a generic or weak word
// with a reason and replacement suggestions.
type weakWord struct {
	word        string
	reason      string
	suggestions []string
}

// weakWords is the fixed table used when the remote model is unavailable.
var weakWords = []weakWord{
	{"good", "Vague praise that carries no specific meaning", []string{"effective", "valuable", "high-quality"}},
	{"great", "Overused superlative that weakens the claim", []string{"exceptional", "impressive", "remarkable"}},
	{"very", "Empty intensifier; pick a stronger base word instead", []string{"highly", "extremely"}},
	{"really", "Filler intensifier that adds no information", []string{"genuinely", "notably"}},
	{"nice", "Bland descriptor that says little", []string{"pleasant", "appealing", "polished"}},
	{"stuff", "Imprecise noun; name the actual items", []string{"materials", "resources", "equipment"}},
	{"things", "Imprecise noun; name the actual items", []string{"elements", "aspects", "factors"}},
	{"a lot", "Vague quantity; quantify or qualify it", []string{"many", "numerous", "a significant number"}},
	{"many", "Unspecific quantity; a figure is more convincing", []string{"dozens of", "a majority of"}},
	{"some", "Weak qualifier that undercuts the statement", []string{"several", "certain", "specific"}},
	{"big", "Plain descriptor; scale words read stronger", []string{"substantial", "significant", "major"}},
	{"small", "Plain descriptor; scale words read stronger", []string{"minor", "modest", "compact"}},
	{"get", "Weak verb; a precise verb reads better", []string{"obtain", "acquire", "receive"}},
	{"make", "Weak verb; a precise verb reads better", []string{"create", "build", "produce"}},
	{"use", "Weak verb; a precise verb reads better", []string{"apply", "employ", "leverage"}},
	{"interesting", "Tells instead of shows; explain what makes it so", []string{"compelling", "noteworthy"}},
}

// FallbackKeywords scans the document for the static weak-word table with
// case-insensitive whole-word matching. Matches are capped at 10, in table
// order.
func FallbackKeywords(doc *document.ParsedDocument) []KeywordSuggestion {
	text := strings.ToLower(doc.PlainText())

	matches := []KeywordSuggestion{}
	for _, entry := range weakWords {
		if !containsWholeWord(text, entry.word) {
			continue
		}
		matches = append(matches, KeywordSuggestion{
			Word:        entry.word,
			Reason:      entry.reason,
			Suggestions: entry.suggestions,
		})
		if len(matches) >= maxFallbackKeywords {
			break
		}
	}
	return matches
}

// containsWholeWord reports whether term occurs in text flanked by non-word
// characters or the string boundary. Both inputs must already be lowercase.
func containsWholeWord(text, term string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start

		if wholeWordAt(text, idx, len(term)) {
			return true
		}
		start = idx + 1
	}
}

// wholeWordAt checks the characters immediately around text[idx:idx+length]
// for word-boundary membership, treating string edges as virtual spaces.
func wholeWordAt(text string, idx, length int) bool {
	if idx > 0 && isWordChar(rune(text[idx-1])) {
		return false
	}
	end := idx + length
	if end < len(text) && isWordChar(rune(text[end])) {
		return false
	}
	return true
}

// isWordChar mirrors the \w character class: letters, digits and underscore.
func isWordChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
