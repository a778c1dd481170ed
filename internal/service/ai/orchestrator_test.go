package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/contentforge/seo_editor/internal/service/document"
)

// fakeProvider replays a scripted sequence of responses.
type fakeProvider struct {
	responses []fakeResponse
	calls     int
	prompts   []string
}

type fakeResponse struct {
	text string
	err  error
}

func (p *fakeProvider) GenerateText(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	idx := p.calls
	p.calls++
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	r := p.responses[idx]
	return r.text, r.err
}

func (p *fakeProvider) Name() string { return "fake" }
func (p *fakeProvider) Close() error { return nil }

func newTestService(provider Provider) *Service {
	return NewService(Options{
		Provider:  provider,
		RateLimit: rate.Inf,
		Retry: RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
	})
}

func testInput() AnalyzeInput {
	return AnalyzeInput{
		Document: document.New("A Guide to Growing Tomatoes", "", []document.ContentBlock{
			{ID: "1", Type: document.BlockHeading, Content: "Growing Tomatoes", Level: 1},
			{ID: "2", Type: document.BlockParagraph, Content: "Tomatoes need sun and very good soil to thrive."},
		}, ""),
		TargetKeyword: "tomatoes",
	}
}

func TestAnalyzeContentAISource(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{text: "```json\n" + validScoreJSON + "\n```"},
	}}
	svc := newTestService(provider)

	result, err := svc.AnalyzeContent(context.Background(), NewSession(), testInput())
	if err != nil {
		t.Fatalf("AnalyzeContent returned error: %v", err)
	}
	if result.Source != SourceAI {
		t.Errorf("source = %s, want ai", result.Source)
	}
	if result.Score == nil || result.Score.Overall != 78 {
		t.Errorf("score = %+v, want the parsed model score", result.Score)
	}
	if result.Message != "" {
		t.Errorf("message = %q, want empty on the AI path", result.Message)
	}
}

func TestAnalyzeContentFallsBackOnProviderError(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: &APIError{StatusCode: 400, Message: "invalid request"}},
	}}
	svc := newTestService(provider)

	result, err := svc.AnalyzeContent(context.Background(), NewSession(), testInput())
	if err != nil {
		t.Fatalf("remote failure must not surface as a hard error, got %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("source = %s, want fallback", result.Source)
	}
	if result.Score == nil {
		t.Fatal("fallback result has no score")
	}
	if result.Message == "" {
		t.Error("fallback result should explain itself")
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (no retry on non-overload)", provider.calls)
	}
}

func TestAnalyzeContentFallsBackOnBadResponse(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{text: "Sorry, I cannot help with that."},
	}}
	svc := newTestService(provider)

	result, err := svc.AnalyzeContent(context.Background(), NewSession(), testInput())
	if err != nil {
		t.Fatalf("unparseable response must not surface as a hard error, got %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("source = %s, want fallback", result.Source)
	}
}

func TestAnalyzeContentRetriesOverload(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: overloadedErr()},
		{err: overloadedErr()},
		{text: validScoreJSON},
	}}
	svc := newTestService(provider)

	result, err := svc.AnalyzeContent(context.Background(), NewSession(), testInput())
	if err != nil {
		t.Fatalf("AnalyzeContent returned error: %v", err)
	}
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}
	if result.Source != SourceAI {
		t.Errorf("source = %s, want ai after successful retry", result.Source)
	}
}

func TestAnalyzeContentNilProvider(t *testing.T) {
	svc := newTestService(nil)

	result, err := svc.AnalyzeContent(context.Background(), NewSession(), testInput())
	if err != nil {
		t.Fatalf("AnalyzeContent returned error: %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("source = %s, want fallback without a provider", result.Source)
	}
}

func TestAnalyzeContentValidationError(t *testing.T) {
	svc := newTestService(nil)

	input := AnalyzeInput{Document: &document.ParsedDocument{Title: "", Blocks: []document.ContentBlock{}}}
	if _, err := svc.AnalyzeContent(context.Background(), NewSession(), input); !errors.Is(err, document.ErrMissingTitle) {
		t.Errorf("err = %v, want ErrMissingTitle", err)
	}
}

func TestAnalyzeContentDeduplicates(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{text: validScoreJSON},
	}}
	svc := newTestService(provider)
	session := NewSession()
	input := testInput()

	first, err := svc.AnalyzeContent(context.Background(), session, input)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.AnalyzeContent(context.Background(), session, input)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (second call deduplicated)", provider.calls)
	}
	if first != second {
		t.Error("deduplicated call should return the cached result")
	}

	// A changed keyword is a different request.
	changed := input
	changed.TargetKeyword = "peppers"
	if _, err := svc.AnalyzeContent(context.Background(), session, changed); err != nil {
		t.Fatalf("changed call: %v", err)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2 after keyword change", provider.calls)
	}
}

func TestAnalyzeContentRecoversAfterFallback(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: &APIError{StatusCode: 500, Message: "internal"}},
		{text: validScoreJSON},
	}}
	svc := newTestService(provider)
	session := NewSession()
	input := testInput()

	first, err := svc.AnalyzeContent(context.Background(), session, input)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.Source != SourceFallback {
		t.Fatalf("first source = %s, want fallback", first.Source)
	}

	// The degraded result must not be deduplicated; the identical retry
	// reaches the model and recovers the AI path.
	second, err := svc.AnalyzeContent(context.Background(), session, input)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.Source != SourceAI {
		t.Errorf("second source = %s, want ai", second.Source)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestSuggestKeywordsRecoversAfterFallback(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: &APIError{StatusCode: 500, Message: "internal"}},
		{text: `{"keywords": [{"word": "very", "suggestion": "highly", "reason": "Empty intensifier"}]}`},
	}}
	svc := newTestService(provider)
	session := NewSession()
	input := testInput()

	first, err := svc.SuggestKeywords(context.Background(), session, input)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if !first.Fallback {
		t.Fatal("first call should be fallback-tagged")
	}

	second, err := svc.SuggestKeywords(context.Background(), session, input)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.Source != SourceAI {
		t.Errorf("second source = %s, want ai", second.Source)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestAnalyzeContentSessionsAreIsolated(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{text: validScoreJSON},
	}}
	svc := newTestService(provider)
	input := testInput()

	if _, err := svc.AnalyzeContent(context.Background(), NewSession(), input); err != nil {
		t.Fatalf("first session: %v", err)
	}
	if _, err := svc.AnalyzeContent(context.Background(), NewSession(), input); err != nil {
		t.Fatalf("second session: %v", err)
	}

	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (sessions must not share state)", provider.calls)
	}
}

func TestAnalyzeContentAppliesPreviousScore(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{text: validScoreJSON},
	}}
	svc := newTestService(provider)

	prev := 70
	input := testInput()
	input.PreviousScore = &prev

	result, err := svc.AnalyzeContent(context.Background(), NewSession(), input)
	if err != nil {
		t.Fatalf("AnalyzeContent returned error: %v", err)
	}
	if result.Score.PreviousScore == nil || *result.Score.PreviousScore != 70 {
		t.Fatalf("previousScore = %v, want 70", result.Score.PreviousScore)
	}
	if result.Score.Improvement != "+8 points better" {
		t.Errorf("improvement = %q, want +8 points better", result.Score.Improvement)
	}
}

func TestSuggestKeywordsAISource(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{text: `{"keywords": [{"word": "very", "suggestion": "highly", "reason": "Empty intensifier"}]}`},
	}}
	svc := newTestService(provider)

	result, err := svc.SuggestKeywords(context.Background(), NewSession(), testInput())
	if err != nil {
		t.Fatalf("SuggestKeywords returned error: %v", err)
	}
	if result.Source != SourceAI {
		t.Errorf("source = %s, want ai", result.Source)
	}
	if result.Fallback {
		t.Error("fallback flag set on the AI path")
	}
	if len(result.Keywords) != 1 || result.Keywords[0].Word != "very" {
		t.Errorf("keywords = %+v", result.Keywords)
	}
}

func TestSuggestKeywordsFallsBack(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: &APIError{StatusCode: 500, Message: "internal"}},
	}}
	svc := newTestService(provider)

	result, err := svc.SuggestKeywords(context.Background(), NewSession(), testInput())
	if err != nil {
		t.Fatalf("remote failure must not surface as a hard error, got %v", err)
	}
	if result.Source != SourceFallback || !result.Fallback {
		t.Errorf("result = %+v, want fallback-tagged", result)
	}

	// The test document says "very good", both in the static table.
	if len(result.Keywords) == 0 {
		t.Error("expected static weak-word matches")
	}
	for _, kw := range result.Keywords {
		if len(kw.Suggestions) == 0 {
			t.Errorf("fallback match %q has no suggestions", kw.Word)
		}
	}
}

func TestSessionSeparatesModes(t *testing.T) {
	scoreProvider := &fakeProvider{responses: []fakeResponse{
		{text: validScoreJSON},
	}}
	svc := newTestService(scoreProvider)
	session := NewSession()
	input := testInput()

	if _, err := svc.AnalyzeContent(context.Background(), session, input); err != nil {
		t.Fatalf("score call: %v", err)
	}

	// A keyword call on the same fingerprint must not reuse the score result.
	result, err := svc.SuggestKeywords(context.Background(), session, input)
	if err != nil {
		t.Fatalf("keyword call: %v", err)
	}
	if result == nil || len(result.Keywords) == 0 {
		t.Fatal("keyword call returned nothing")
	}
	if scoreProvider.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (modes cached independently)", scoreProvider.calls)
	}
}
