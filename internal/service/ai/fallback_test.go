package ai

import (
	"strings"
	"testing"

	"github.com/contentforge/seo_editor/internal/service/document"
)

func docWithText(text string) *document.ParsedDocument {
	return document.New("Title", "", []document.ContentBlock{
		{ID: "1", Type: document.BlockParagraph, Content: text},
	}, "")
}

func TestFallbackKeywords(t *testing.T) {
	matches := FallbackKeywords(docWithText("This is a good way to make stuff."))

	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = m.Word
	}

	want := []string{"good", "stuff", "make"}
	if len(words) != len(want) {
		t.Fatalf("matched %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("match %d = %q, want %q (table order)", i, words[i], want[i])
		}
	}

	for _, m := range matches {
		if m.Reason == "" {
			t.Errorf("match %q has no reason", m.Word)
		}
		if len(m.Suggestions) == 0 {
			t.Errorf("match %q has no suggestions", m.Word)
		}
		if m.Suggestion != "" {
			t.Errorf("match %q set the AI-path field", m.Word)
		}
	}
}

func TestFallbackKeywordsWholeWordOnly(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"embedded", "goodness gracious", 0},
		{"prefix", "the usefulness of it", 0},
		{"exact", "a good result", 1},
		{"case insensitive", "GOOD work", 1},
		{"punctuation boundary", "Is it good? Yes.", 1},
		{"hyphen boundary", "feel-good story", 1},
		{"underscore is a word char", "good_name here", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := FallbackKeywords(docWithText(tt.text))
			if len(matches) != tt.want {
				t.Errorf("matched %d entries in %q, want %d", len(matches), tt.text, tt.want)
			}
		})
	}
}

func TestFallbackKeywordsMultiWordEntry(t *testing.T) {
	matches := FallbackKeywords(docWithText("There is a lot to cover here."))

	found := false
	for _, m := range matches {
		if m.Word == "a lot" {
			found = true
		}
	}
	if !found {
		t.Error("expected the multi-word entry to match")
	}
}

func TestFallbackKeywordsCap(t *testing.T) {
	var all []string
	for _, entry := range weakWords {
		all = append(all, entry.word)
	}
	matches := FallbackKeywords(docWithText(strings.Join(all, ". ")))

	if len(matches) != maxFallbackKeywords {
		t.Errorf("matched %d entries, want capped at %d", len(matches), maxFallbackKeywords)
	}
	for i, m := range matches {
		if m.Word != weakWords[i].word {
			t.Errorf("match %d = %q, want %q (table order)", i, m.Word, weakWords[i].word)
		}
	}
}

func TestFallbackKeywordsEmptyDocument(t *testing.T) {
	matches := FallbackKeywords(docWithText(""))
	if matches == nil {
		t.Error("want an empty slice, not nil")
	}
	if len(matches) != 0 {
		t.Errorf("matched %d entries in empty text", len(matches))
	}
}
