// Package scorer implements the deterministic SEO scoring algorithm. Scoring
// is a pure function of the document snapshot and the analysis parameters, so
// repeated calls on identical input always produce identical breakdowns.
package scorer

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/contentforge/seo_editor/internal/service/document"
	"github.com/contentforge/seo_editor/internal/service/textmetrics"
)

// Status classifies a metric score into a quality band.
type Status string

const (
	StatusExcellent        Status = "excellent"
	StatusGood             Status = "good"
	StatusNeedsImprovement Status = "needs-improvement"
	StatusPoor             Status = "poor"
)

// Fixed metric weights. They happen to sum to 1.0 today, but the overall
// score always normalizes by the computed weight sum.
const (
	WeightContentQuality      = 0.25
	WeightKeywordOptimization = 0.30
	WeightReadability         = 0.20
	WeightStructure           = 0.15
	WeightMetaData            = 0.10
)

// maxRecommendations caps the actionable suggestions returned per analysis.
const maxRecommendations = 5

// transitionWords is the fixed set checked by the readability metric.
var transitionWords = []string{
	"however", "therefore", "furthermore", "moreover", "consequently", "additionally",
}

// Metric is one scored sub-dimension of the analysis.
type Metric struct {
	Score   int      `json:"score"`
	Status  Status   `json:"status"`
	Details []string `json:"details"`
	Weight  float64  `json:"weight"`
}

// Breakdown holds the five fixed metrics. Field order is the metric
// declaration order used when collecting recommendations.
type Breakdown struct {
	ContentQuality      Metric `json:"contentQuality"`
	KeywordOptimization Metric `json:"keywordOptimization"`
	Readability         Metric `json:"readability"`
	Structure           Metric `json:"structure"`
	MetaData            Metric `json:"metaData"`
}

// ordered returns the metrics in declaration order.
func (b *Breakdown) ordered() []Metric {
	return []Metric{b.ContentQuality, b.KeywordOptimization, b.Readability, b.Structure, b.MetaData}
}

// SEOScore is the immutable result of one scoring pass.
type SEOScore struct {
	Overall         int       `json:"overall"`
	Breakdown       Breakdown `json:"breakdown"`
	Recommendations []string  `json:"recommendations"`
	Timestamp       time.Time `json:"timestamp"`
	PreviousScore   *int      `json:"previousScore,omitempty"`
	Improvement     string    `json:"improvement,omitempty"`
}

// StatusFor maps a score to its quality band. The thresholds are fixed:
// >=90 excellent, >=70 good, >=50 needs-improvement, else poor.
func StatusFor(score int) Status {
	switch {
	case score >= 90:
		return StatusExcellent
	case score >= 70:
		return StatusGood
	case score >= 50:
		return StatusNeedsImprovement
	default:
		return StatusPoor
	}
}

// newMetric builds a metric with its status derived from the score, keeping
// the status-is-a-function-of-score invariant in one place.
func newMetric(score int, weight float64, details []string) Metric {
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	if details == nil {
		details = []string{}
	}
	return Metric{
		Score:   score,
		Status:  StatusFor(score),
		Details: details,
		Weight:  weight,
	}
}

// Score runs the full deterministic analysis. targetKeyword may be empty;
// previousScore, when non-nil, populates the improvement fields.
func Score(doc *document.ParsedDocument, targetKeyword string, previousScore *int) *SEOScore {
	text := doc.PlainText()

	breakdown := Breakdown{
		ContentQuality:      scoreContentQuality(doc, text),
		KeywordOptimization: scoreKeywordOptimization(doc, text, targetKeyword),
		Readability:         scoreReadability(text),
		Structure:           scoreStructure(doc),
		MetaData:            scoreMetaData(doc),
	}

	result := &SEOScore{
		Overall:         overall(&breakdown),
		Breakdown:       breakdown,
		Recommendations: recommendations(&breakdown),
		Timestamp:       time.Now().UTC(),
	}

	if previousScore != nil {
		prev := *previousScore
		result.PreviousScore = &prev
		result.Improvement = ImprovementText(result.Overall, prev)
	}

	return result
}

// overall combines the weighted metric scores, normalizing by the computed
// weight sum so a future weight change cannot skew the scale.
func overall(b *Breakdown) int {
	var weighted, weightSum float64
	for _, m := range b.ordered() {
		weighted += float64(m.Score) * m.Weight
		weightSum += m.Weight
	}
	if weightSum == 0 {
		return 0
	}
	return int(math.Round(weighted / weightSum))
}

// recommendations collects actionable detail strings from metrics in the
// poor or needs-improvement bands, in metric declaration order. Details
// containing a literal colon carry embedded figures and are informational,
// not actionable, so they are skipped.
func recommendations(b *Breakdown) []string {
	recs := []string{}
	for _, m := range b.ordered() {
		if m.Status != StatusPoor && m.Status != StatusNeedsImprovement {
			continue
		}
		for _, detail := range m.Details {
			if strings.Contains(detail, ":") {
				continue
			}
			recs = append(recs, detail)
			if len(recs) >= maxRecommendations {
				return recs
			}
		}
	}
	return recs
}

// ImprovementText renders the delta against a prior overall score.
func ImprovementText(current, previous int) string {
	diff := current - previous
	switch {
	case diff > 0:
		return fmt.Sprintf("+%d points better", diff)
	case diff < 0:
		return fmt.Sprintf("%d points worse", -diff)
	default:
		return "No change"
	}
}

func scoreContentQuality(doc *document.ParsedDocument, text string) Metric {
	score := 0
	var details []string

	wordCount := textmetrics.WordCount(text)
	if wordCount >= 300 {
		score += 30
		details = append(details, fmt.Sprintf("Good content length: %d words", wordCount))
	} else {
		details = append(details, "Content is too short. Aim for at least 300 words")
	}

	paragraphs := doc.Paragraphs()
	avgParagraphLen := 0.0
	if len(paragraphs) > 0 {
		total := 0
		for _, p := range paragraphs {
			total += textmetrics.WordCount(p.Content)
		}
		avgParagraphLen = float64(total) / float64(len(paragraphs))
	}
	switch {
	case avgParagraphLen >= 50 && avgParagraphLen <= 150:
		score += 25
		details = append(details, fmt.Sprintf("Paragraph length is well balanced: %.0f words on average", avgParagraphLen))
	case avgParagraphLen > 150:
		details = append(details, "Paragraphs are too long. Break them into smaller chunks")
	default:
		details = append(details, "Paragraphs are too short. Develop each idea more fully")
	}

	avgSentenceLen := textmetrics.AvgSentenceLength(text)
	if avgSentenceLen >= 15 && avgSentenceLen <= 25 {
		score += 20
		details = append(details, fmt.Sprintf("Sentence length is in the ideal range: %.1f words on average", avgSentenceLen))
	} else {
		details = append(details, "Adjust sentence length to 15-25 words for better flow")
	}

	if textmetrics.UniqueWordRatio(text) > 0.5 {
		score += 25
		details = append(details, "Vocabulary variety is good")
	} else {
		details = append(details, "Use more varied vocabulary to keep readers engaged")
	}

	return newMetric(score, WeightContentQuality, details)
}

func scoreKeywordOptimization(doc *document.ParsedDocument, text, targetKeyword string) Metric {
	// Sentinel value when no keyword was supplied, not a computed score.
	if strings.TrimSpace(targetKeyword) == "" {
		return Metric{
			Score:   50,
			Status:  StatusNeedsImprovement,
			Details: []string{"No target keyword specified"},
			Weight:  WeightKeywordOptimization,
		}
	}

	score := 0
	var details []string
	keyword := strings.ToLower(targetKeyword)

	if strings.Contains(strings.ToLower(doc.Title), keyword) {
		score += 30
		details = append(details, "Keyword appears in the title")
	} else {
		details = append(details, "Include the target keyword in your title")
	}

	wordCount := textmetrics.WordCount(text)
	density := 0.0
	if wordCount > 0 {
		occurrences := strings.Count(strings.ToLower(text), keyword)
		density = float64(occurrences) / float64(wordCount) * 100
	}
	switch {
	case density >= 1 && density <= 3:
		score += 40
		details = append(details, fmt.Sprintf("Keyword density is good: %.1f%%", density))
	case density > 3:
		score += 20
		details = append(details, "Keyword density is too high, reduce keyword usage")
	default:
		details = append(details, "Keyword density is too low. Use the keyword more naturally")
	}

	inHeading := false
	for _, b := range doc.Blocks {
		if b.IsHeading() && strings.Contains(strings.ToLower(b.Content), keyword) {
			inHeading = true
			break
		}
	}
	if inHeading {
		score += 30
		details = append(details, "Keyword appears in a heading")
	} else {
		details = append(details, "Add the target keyword to at least one heading")
	}

	return newMetric(score, WeightKeywordOptimization, details)
}

func scoreReadability(text string) Metric {
	score := 0
	var details []string

	flesch := textmetrics.FleschReadingEase(text)
	if textmetrics.WordCount(text) > 0 && flesch >= 60 {
		score += 40
		details = append(details, fmt.Sprintf("Reading ease is good: %.1f", flesch))
	} else {
		details = append(details, "Simplify your writing for easier reading")
	}

	avgSentenceLen := textmetrics.AvgSentenceLength(text)
	if textmetrics.WordCount(text) > 0 && avgSentenceLen <= 20 {
		score += 30
		details = append(details, fmt.Sprintf("Average sentence length: %.1f words", avgSentenceLen))
	} else {
		details = append(details, "Shorten sentences to improve readability")
	}

	lower := strings.ToLower(text)
	hasTransition := false
	for _, w := range transitionWords {
		if strings.Contains(lower, w) {
			hasTransition = true
			break
		}
	}
	if hasTransition {
		score += 30
		details = append(details, "Transition words are present")
	} else {
		details = append(details, "Add transition words to improve flow")
	}

	return newMetric(score, WeightReadability, details)
}

func scoreStructure(doc *document.ParsedDocument) Metric {
	score := 0
	var details []string

	if strings.TrimSpace(doc.Title) != "" {
		score += 20
		details = append(details, "Title is present")
	} else {
		details = append(details, "Add a title to the document")
	}

	if strings.TrimSpace(doc.Description) != "" {
		score += 20
		details = append(details, "Description is present")
	} else {
		details = append(details, "Add a meta description")
	}

	if doc.HeadingCount() >= 2 {
		score += 30
		details = append(details, fmt.Sprintf("Heading count: %d", doc.HeadingCount()))
	} else {
		details = append(details, "Add more headings to organize the content")
	}

	if len(doc.Paragraphs()) >= 3 {
		score += 30
		details = append(details, fmt.Sprintf("Paragraph count: %d", len(doc.Paragraphs())))
	} else {
		details = append(details, "Break the content into more paragraphs")
	}

	return newMetric(score, WeightStructure, details)
}

func scoreMetaData(doc *document.ParsedDocument) Metric {
	score := 0
	var details []string

	titleLen := utf8.RuneCountInString(doc.Title)
	switch {
	case titleLen >= 30 && titleLen <= 60:
		score += 50
		details = append(details, fmt.Sprintf("Title length is optimal: %d characters", titleLen))
	case titleLen > 60:
		details = append(details, "Title is too long (maximum 60 characters recommended)")
	default:
		details = append(details, "Title is too short (aim for 30-60 characters)")
	}

	descLen := utf8.RuneCountInString(doc.Description)
	switch {
	case descLen >= 120 && descLen <= 160:
		score += 50
		details = append(details, fmt.Sprintf("Description length is optimal: %d characters", descLen))
	case descLen == 0:
		details = append(details, "Add a meta description of 120-160 characters")
	case descLen > 160:
		details = append(details, "Meta description is too long (maximum 160 characters recommended)")
	default:
		details = append(details, "Meta description is too short (aim for 120-160 characters)")
	}

	return newMetric(score, WeightMetaData, details)
}
