// Package textmetrics provides pure, stateless readability metrics over plain
// text. Callers are responsible for guarding zero counts on empty input.
package textmetrics

import (
	"regexp"
	"strings"
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	vowelRunRe      = regexp.MustCompile(`[aeiouy]{1,2}`)
	trailingRe      = regexp.MustCompile(`[^aeiouy](?:es|ed|e)$`)
	leadingYRe      = regexp.MustCompile(`^y`)
)

// WordCount counts whitespace-separated tokens. No normalization is applied,
// so punctuation glued to a token still counts as part of it.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Words returns the whitespace-separated tokens of the text.
func Words(text string) []string {
	return strings.Fields(text)
}

// Sentences splits text on runs of '.', '!' and '?' and drops empty or
// whitespace-only segments.
func Sentences(text string) []string {
	segments := sentenceSplitRe.Split(text, -1)
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// SyllableCount estimates the syllables in a single word. Words of three or
// fewer characters count as one syllable; a trailing silent e/ed/es and a
// leading y are stripped before counting maximal 1-2 character vowel runs.
func SyllableCount(word string) int {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return 0
	}
	if len(word) <= 3 {
		return 1
	}

	word = trailingRe.ReplaceAllString(word, "")
	word = leadingYRe.ReplaceAllString(word, "")

	runs := vowelRunRe.FindAllString(word, -1)
	if len(runs) == 0 {
		return 1
	}
	return len(runs)
}

// TotalSyllables sums the syllable estimate over every token of the text.
func TotalSyllables(text string) int {
	total := 0
	for _, w := range Words(text) {
		total += SyllableCount(w)
	}
	return total
}

// FleschReadingEase computes the Flesch reading-ease score:
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words).
// A score of 60 or above is conventionally read as "easily understood".
// Empty text returns 0.
func FleschReadingEase(text string) float64 {
	words := WordCount(text)
	sentences := len(Sentences(text))
	if words == 0 || sentences == 0 {
		return 0
	}

	syllables := TotalSyllables(text)
	return 206.835 - 1.015*(float64(words)/float64(sentences)) - 84.6*(float64(syllables)/float64(words))
}

// AvgSentenceLength returns the mean number of words per sentence, or 0 for
// empty text.
func AvgSentenceLength(text string) float64 {
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return 0
	}
	return float64(WordCount(text)) / float64(len(sentences))
}

// UniqueWordRatio returns the case-insensitive distinct token count divided
// by the total token count, or 0 for empty text.
func UniqueWordRatio(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[strings.ToLower(w)] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}
