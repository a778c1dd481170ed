package scorer

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/contentforge/seo_editor/internal/service/document"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		score int
		want  Status
	}{
		{100, StatusExcellent},
		{90, StatusExcellent},
		{89, StatusGood},
		{70, StatusGood},
		{69, StatusNeedsImprovement},
		{50, StatusNeedsImprovement},
		{49, StatusPoor},
		{0, StatusPoor},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.score); got != tt.want {
			t.Errorf("StatusFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func paragraph(content string) document.ContentBlock {
	return document.ContentBlock{ID: "p", Type: document.BlockParagraph, Content: content}
}

func heading(content string) document.ContentBlock {
	return document.ContentBlock{ID: "h", Type: document.BlockHeading, Content: content, Level: 1}
}

func sampleDocument() *document.ParsedDocument {
	return document.New(
		"Practical Guide to Container Gardening",
		"Learn how to grow vegetables and herbs in containers on a balcony or patio, with soil, watering and sunlight advice for beginners starting their first garden.",
		[]document.ContentBlock{
			heading("Container Gardening Basics"),
			paragraph("Container gardening lets anyone grow fresh vegetables without a yard. However, choosing the right pot size matters more than most beginners expect."),
			heading("Choosing Containers"),
			paragraph("Deep containers hold moisture longer. Therefore, tomatoes and peppers thrive in pots of at least five gallons."),
			paragraph("Drainage holes prevent root rot. Furthermore, a layer of gravel keeps soil from washing out."),
		},
		"",
	)
}

func TestScoreDeterminism(t *testing.T) {
	doc := sampleDocument()

	first := Score(doc, "container gardening", nil)
	second := Score(doc, "container gardening", nil)

	if first.Overall != second.Overall {
		t.Errorf("overall differs across runs: %d vs %d", first.Overall, second.Overall)
	}
	if !reflect.DeepEqual(first.Breakdown, second.Breakdown) {
		t.Error("breakdown differs across identical runs")
	}
	if !reflect.DeepEqual(first.Recommendations, second.Recommendations) {
		t.Error("recommendations differ across identical runs")
	}
}

func TestScoreRange(t *testing.T) {
	docs := map[string]*document.ParsedDocument{
		"empty":  document.New("Title", "", []document.ContentBlock{}, ""),
		"sample": sampleDocument(),
		"single": document.New("T", "", []document.ContentBlock{paragraph("One line.")}, ""),
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			result := Score(doc, "keyword", nil)
			if result.Overall < 0 || result.Overall > 100 {
				t.Errorf("overall = %d, want within [0, 100]", result.Overall)
			}
			for i, m := range result.Breakdown.ordered() {
				if m.Score < 0 || m.Score > 100 {
					t.Errorf("metric %d score = %d, want within [0, 100]", i, m.Score)
				}
				if m.Status != StatusFor(m.Score) {
					t.Errorf("metric %d status = %s, inconsistent with score %d", i, m.Status, m.Score)
				}
			}
		})
	}
}

func TestOverallIsWeightedMean(t *testing.T) {
	result := Score(sampleDocument(), "container gardening", nil)

	var weighted, weightSum float64
	for _, m := range result.Breakdown.ordered() {
		weighted += float64(m.Score) * m.Weight
		weightSum += m.Weight
	}
	want := int(math.Round(weighted / weightSum))

	if result.Overall != want {
		t.Errorf("overall = %d, want weighted mean %d", result.Overall, want)
	}
}

func TestKeywordOptimizationNoKeyword(t *testing.T) {
	result := Score(sampleDocument(), "", nil)

	metric := result.Breakdown.KeywordOptimization
	if metric.Score != 50 {
		t.Errorf("score = %d, want sentinel 50", metric.Score)
	}
	if metric.Status != StatusNeedsImprovement {
		t.Errorf("status = %s, want %s", metric.Status, StatusNeedsImprovement)
	}
	if len(metric.Details) != 1 || metric.Details[0] != "No target keyword specified" {
		t.Errorf("details = %v, want the no-keyword sentinel detail", metric.Details)
	}
}

func TestKeywordDensityTooHigh(t *testing.T) {
	doc := document.New("All about golf", "", []document.ContentBlock{
		paragraph("golf golf tips"),
	}, "")

	result := Score(doc, "golf", nil)
	metric := result.Breakdown.KeywordOptimization

	// Title +30, density 66.7% (too high) +20, no heading match.
	if metric.Score != 50 {
		t.Errorf("score = %d, want 50", metric.Score)
	}

	found := false
	for _, d := range metric.Details {
		if d == "Keyword density is too high, reduce keyword usage" {
			found = true
		}
	}
	if !found {
		t.Errorf("details = %v, want the density-too-high warning", metric.Details)
	}
}

func TestKeywordDensityIdeal(t *testing.T) {
	words := make([]string, 0, 100)
	words = append(words, "golf")
	for i := 0; i < 49; i++ {
		words = append(words, "filler", "words")
	}
	doc := document.New("A Beginner's Guide to Golf", "", []document.ContentBlock{
		heading("Golf Fundamentals"),
		paragraph(strings.Join(words, " ")),
	}, "")

	result := Score(doc, "golf", nil)
	metric := result.Breakdown.KeywordOptimization

	// Title +30, density 2/101 words within [1, 3] +40, heading +30.
	if metric.Score != 100 {
		t.Errorf("score = %d, want 100", metric.Score)
	}
	if metric.Status != StatusExcellent {
		t.Errorf("status = %s, want %s", metric.Status, StatusExcellent)
	}
}

func TestRecommendations(t *testing.T) {
	// A bare document fails nearly every check, so the cap applies.
	doc := document.New("Hi", "", []document.ContentBlock{paragraph("Short text.")}, "")
	result := Score(doc, "missing", nil)

	if len(result.Recommendations) == 0 {
		t.Fatal("expected recommendations for a weak document")
	}
	if len(result.Recommendations) > 5 {
		t.Errorf("got %d recommendations, want at most 5", len(result.Recommendations))
	}
	for _, rec := range result.Recommendations {
		if strings.Contains(rec, ":") {
			t.Errorf("recommendation %q carries embedded figures", rec)
		}
	}
}

func TestRecommendationsSkipGoodMetrics(t *testing.T) {
	result := Score(sampleDocument(), "container gardening", nil)

	for _, rec := range result.Recommendations {
		for _, m := range result.Breakdown.ordered() {
			if m.Status == StatusExcellent || m.Status == StatusGood {
				for _, d := range m.Details {
					if d == rec {
						t.Errorf("recommendation %q came from a metric in a passing band", rec)
					}
				}
			}
		}
	}
}

func TestMetaDataCountsCharactersNotBytes(t *testing.T) {
	// 25 characters, 50 bytes: a byte count would land in the 30-60 band.
	shortTitle := strings.Repeat("é", 25)
	doc := document.New(shortTitle, "", []document.ContentBlock{paragraph("Text.")}, "")

	metric := Score(doc, "", nil).Breakdown.MetaData
	found := false
	for _, d := range metric.Details {
		if d == "Title is too short (aim for 30-60 characters)" {
			found = true
		}
	}
	if !found {
		t.Errorf("details = %v, want the too-short warning for a 25-character title", metric.Details)
	}

	// 40 characters of multibyte text is inside the optimal band.
	optimal := document.New(strings.Repeat("é", 40), strings.Repeat("ü", 130), []document.ContentBlock{paragraph("Text.")}, "")
	metric = Score(optimal, "", nil).Breakdown.MetaData
	if metric.Score != 100 {
		t.Errorf("score = %d, want 100 for optimal title and description lengths", metric.Score)
	}
}

func TestScoreWithPreviousScore(t *testing.T) {
	prev := 40
	result := Score(sampleDocument(), "container gardening", &prev)

	if result.PreviousScore == nil || *result.PreviousScore != 40 {
		t.Fatalf("previousScore = %v, want 40", result.PreviousScore)
	}
	if result.Improvement != ImprovementText(result.Overall, 40) {
		t.Errorf("improvement = %q, inconsistent with overall %d", result.Improvement, result.Overall)
	}
}

func TestImprovementText(t *testing.T) {
	tests := []struct {
		current, previous int
		want              string
	}{
		{80, 70, "+10 points better"},
		{70, 80, "10 points worse"},
		{70, 70, "No change"},
		{1, 0, "+1 points better"},
	}

	for _, tt := range tests {
		if got := ImprovementText(tt.current, tt.previous); got != tt.want {
			t.Errorf("ImprovementText(%d, %d) = %q, want %q", tt.current, tt.previous, got, tt.want)
		}
	}
}
