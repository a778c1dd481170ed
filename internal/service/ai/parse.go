package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/contentforge/seo_editor/internal/service/scorer"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?(.+?)```")

// ErrBadResponse marks a remote response that could not be used after
// fence-stripping and shape validation. It always triggers the fallback path.
var ErrBadResponse = errors.New("unusable model response")

// stripCodeFences removes a Markdown code-fence wrapper from model output.
func stripCodeFences(text string) string {
	if matches := codeBlockRe.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// The remote output is an untrusted variant: every field is optional until
// validated, and any shape mismatch falls back to deterministic analysis.
type remoteMetric struct {
	Score   *float64 `json:"score"`
	Details []string `json:"details"`
}

type remoteScore struct {
	Overall         *float64                `json:"overall"`
	Breakdown       map[string]remoteMetric `json:"breakdown"`
	Recommendations []string                `json:"recommendations"`
}

type remoteKeyword struct {
	Word       string `json:"word"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

type remoteKeywords struct {
	Keywords []remoteKeyword `json:"keywords"`
}

// metricWeights maps breakdown keys to their fixed weights, in metric
// declaration order.
var metricWeights = []struct {
	key    string
	weight float64
}{
	{"contentQuality", scorer.WeightContentQuality},
	{"keywordOptimization", scorer.WeightKeywordOptimization},
	{"readability", scorer.WeightReadability},
	{"structure", scorer.WeightStructure},
	{"metaData", scorer.WeightMetaData},
}

// parseScoreResponse validates a score-mode model response and converts it
// into an SEOScore. Statuses are always re-derived locally from the scores;
// the remote status claim is never trusted.
func parseScoreResponse(raw string) (*scorer.SEOScore, error) {
	var remote remoteScore
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &remote); err != nil {
		return nil, ErrBadResponse
	}
	if remote.Overall == nil || remote.Breakdown == nil {
		return nil, ErrBadResponse
	}

	metrics := make([]scorer.Metric, 0, len(metricWeights))
	for _, mw := range metricWeights {
		rm, ok := remote.Breakdown[mw.key]
		if !ok || rm.Score == nil {
			return nil, ErrBadResponse
		}
		score := clampScore(int(*rm.Score))
		metrics = append(metrics, scorer.Metric{
			Score:   score,
			Status:  scorer.StatusFor(score),
			Details: nonNil(rm.Details),
			Weight:  mw.weight,
		})
	}

	recs := nonNil(remote.Recommendations)
	if len(recs) > 5 {
		recs = recs[:5]
	}

	return &scorer.SEOScore{
		Overall: clampScore(int(*remote.Overall)),
		Breakdown: scorer.Breakdown{
			ContentQuality:      metrics[0],
			KeywordOptimization: metrics[1],
			Readability:         metrics[2],
			Structure:           metrics[3],
			MetaData:            metrics[4],
		},
		Recommendations: recs,
		Timestamp:       time.Now().UTC(),
	}, nil
}

// parseKeywordResponse validates a keyword-mode model response.
func parseKeywordResponse(raw string) ([]KeywordSuggestion, error) {
	var remote remoteKeywords
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &remote); err != nil {
		return nil, ErrBadResponse
	}
	if remote.Keywords == nil {
		return nil, ErrBadResponse
	}

	suggestions := make([]KeywordSuggestion, 0, len(remote.Keywords))
	for _, kw := range remote.Keywords {
		if strings.TrimSpace(kw.Word) == "" {
			continue
		}
		suggestions = append(suggestions, KeywordSuggestion{
			Word:       kw.Word,
			Suggestion: kw.Suggestion,
			Reason:     kw.Reason,
		})
	}
	if len(suggestions) == 0 {
		return nil, ErrBadResponse
	}
	return suggestions, nil
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
