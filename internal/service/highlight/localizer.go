// Package highlight locates target words inside a live document's flattened
// text-node coordinate space and manages the mark operations that apply the
// resulting ranges back onto the editing surface.
package highlight

import (
	"fmt"
	"strings"
)

// TextNode is one text-bearing leaf of the document, with its starting
// offset in the flattened document coordinate space.
type TextNode struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
}

// Keyword is a term to locate, with the metadata each match carries.
type Keyword struct {
	Word       string `json:"word"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

// HighlightRange is one whole-word match in document coordinates. Ranges are
// recomputed per pass, never persisted.
type HighlightRange struct {
	ID         string `json:"id"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	SourceWord string `json:"sourceWord"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

// Localize scans every text node for every keyword and returns the valid
// whole-word matches as document-coordinate ranges. Ranges that fail
// 0 <= from < to <= docLen are dropped rather than emitted, since applying
// an invalid range would corrupt the document.
func Localize(docLen int, nodes []TextNode, keywords []Keyword) []HighlightRange {
	ranges := []HighlightRange{}

	for ki, kw := range keywords {
		term := strings.ToLower(kw.Word)
		if term == "" {
			continue
		}

		// One counter per keyword across all nodes, so every range id stays
		// unique even when the keyword matches in several nodes.
		matchIndex := 0

		for _, node := range nodes {
			text := strings.ToLower(node.Text)

			// The scan start advances by 1 past each found index, not past
			// the full match length, so adjacent and repeated substrings
			// are never skipped.
			for start := 0; start <= len(text)-len(term); {
				idx := strings.Index(text[start:], term)
				if idx < 0 {
					break
				}
				idx += start

				if isWholeWord(text, idx, len(term)) {
					from := node.Offset + idx
					to := from + len(term)
					if from >= 0 && from < to && to <= docLen {
						ranges = append(ranges, HighlightRange{
							ID:         fmt.Sprintf("hl-%d-%d", ki, matchIndex),
							From:       from,
							To:         to,
							SourceWord: kw.Word,
							Suggestion: kw.Suggestion,
							Reason:     kw.Reason,
						})
					}
					matchIndex++
				}
				start = idx + 1
			}
		}
	}

	return ranges
}

// isWholeWord checks that the characters immediately before and after the
// match (or a virtual space at the string edges) are both non-word
// characters, rejecting partial-word matches like "cat" inside "category".
func isWholeWord(text string, idx, length int) bool {
	if idx > 0 && isWordChar(text[idx-1]) {
		return false
	}
	end := idx + length
	if end < len(text) && isWordChar(text[end]) {
		return false
	}
	return true
}

// isWordChar mirrors the \w character class: letters, digits and underscore.
func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
