package ai

import (
	"fmt"
	"strings"

	"github.com/contentforge/seo_editor/internal/service/document"
	"github.com/contentforge/seo_editor/internal/service/textmetrics"
)

// Content windows for remote prompts. Full documents are never sent
// unbounded to the model.
const (
	scorePromptWordLimit   = 800
	keywordPromptWordLimit = 500
)

// truncateWords bounds text to at most limit whitespace-separated words.
func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ")
}

// buildScorePrompt creates the prompt for score-mode analysis.
func buildScorePrompt(doc *document.ParsedDocument, targetKeyword string, previousScore *int) string {
	text := doc.PlainText()
	keyword := targetKeyword
	if strings.TrimSpace(keyword) == "" {
		keyword = "None"
	}

	var sb strings.Builder
	sb.WriteString("You are an expert SEO content analyst.\n\n")
	sb.WriteString("Analyze the following article and score it for search engine optimization.\n\n")
	sb.WriteString(fmt.Sprintf("Title: %q\n", doc.Title))
	sb.WriteString(fmt.Sprintf("Target keyword: %s\n", keyword))
	sb.WriteString(fmt.Sprintf("Word count: %d\n", textmetrics.WordCount(text)))
	sb.WriteString(fmt.Sprintf("Heading count: %d\n\n", doc.HeadingCount()))

	if previousScore != nil {
		sb.WriteString(fmt.Sprintf("The content scored %d in a previous analysis and may already be optimized; score the current state on its own merits.\n\n", *previousScore))
	}

	sb.WriteString("Content sample:\n")
	sb.WriteString(truncateWords(text, scorePromptWordLimit))
	sb.WriteString("\n\n")
	sb.WriteString("Response format: JSON with an integer field 'overall' (0-100), a 'breakdown' object with keys ")
	sb.WriteString("'contentQuality', 'keywordOptimization', 'readability', 'structure', 'metaData' ")
	sb.WriteString("(each holding 'score' 0-100 and a 'details' string array), and a 'recommendations' string array.\n")
	sb.WriteString("Do not include any explanations, just return the JSON object.")

	return sb.String()
}

// buildKeywordPrompt creates the prompt for keyword-mode analysis.
func buildKeywordPrompt(doc *document.ParsedDocument, targetKeyword string) string {
	text := doc.PlainText()
	keyword := targetKeyword
	if strings.TrimSpace(keyword) == "" {
		keyword = "None"
	}

	var sb strings.Builder
	sb.WriteString("You are an expert SEO copy editor.\n\n")
	sb.WriteString("Find weak or vague words in the following article that could be replaced with stronger, more specific alternatives.\n\n")
	sb.WriteString(fmt.Sprintf("Title: %q\n", doc.Title))
	sb.WriteString(fmt.Sprintf("Target keyword: %s\n\n", keyword))
	sb.WriteString("Content sample:\n")
	sb.WriteString(truncateWords(text, keywordPromptWordLimit))
	sb.WriteString("\n\n")
	sb.WriteString("Response format: JSON with a 'keywords' array of objects, each holding 'word', 'suggestion' and 'reason'.\n")
	sb.WriteString("Only include words that literally appear in the content. Do not include any explanations, just return the JSON object.")

	return sb.String()
}
