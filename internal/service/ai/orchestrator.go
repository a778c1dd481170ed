// Package ai orchestrates AI-assisted SEO analysis: it builds prompts from
// document snapshots, invokes the remote model under a retry-with-backoff
// policy, validates the structured output and degrades to the deterministic
// scorer whenever the remote path is unusable. Remote failures are never
// surfaced to callers as hard errors.
package ai

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/contentforge/seo_editor/internal/service/document"
	"github.com/contentforge/seo_editor/internal/service/scorer"
)

// Source tags a result with its provenance.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// KeywordSuggestion describes a single weak or improvable term. The AI path
// fills Suggestion; the deterministic fallback fills Suggestions.
type KeywordSuggestion struct {
	Word        string   `json:"word"`
	Suggestion  string   `json:"suggestion,omitempty"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ScoreResult is the score-mode analysis output.
type ScoreResult struct {
	Score   *scorer.SEOScore `json:"score"`
	Source  Source           `json:"source"`
	Message string           `json:"message,omitempty"`
}

// KeywordResult is the keyword-mode analysis output.
type KeywordResult struct {
	Keywords  []KeywordSuggestion `json:"keywords"`
	Source    Source              `json:"source"`
	Fallback  bool                `json:"fallback,omitempty"`
	Message   string              `json:"message,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// AnalyzeInput carries one analysis request.
type AnalyzeInput struct {
	Document      *document.ParsedDocument
	TargetKeyword string
	PreviousScore *int
}

// Session holds per-caller request-deduplication state: the fingerprint of
// the last AI-sourced result. Fallback results are never stored, so an
// identical retry can reach the model again. The session is owned by the
// caller and passed in explicitly, so state never leaks across sessions.
type Session struct {
	mu              sync.Mutex
	lastFingerprint string
	lastScore       *ScoreResult
	lastKeywords    *KeywordResult
}

// NewSession creates an empty session state.
func NewSession() *Session {
	return &Session{}
}

func (s *Session) cachedScore(fingerprint string) *ScoreResult {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFingerprint == fingerprint {
		return s.lastScore
	}
	return nil
}

func (s *Session) cachedKeywords(fingerprint string) *KeywordResult {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFingerprint == fingerprint {
		return s.lastKeywords
	}
	return nil
}

func (s *Session) storeScore(fingerprint string, result *ScoreResult) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFingerprint != fingerprint {
		s.lastKeywords = nil
	}
	s.lastFingerprint = fingerprint
	s.lastScore = result
}

func (s *Session) storeKeywords(fingerprint string, result *KeywordResult) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFingerprint != fingerprint {
		s.lastScore = nil
	}
	s.lastFingerprint = fingerprint
	s.lastKeywords = result
}

// Options configures the orchestrator service.
type Options struct {
	Provider  Provider
	Retry     RetryPolicy
	RateLimit rate.Limit
	RateBurst int
	Logger    Logger
}

// Service is the AI analysis orchestrator.
type Service struct {
	provider Provider
	retry    RetryPolicy
	limiter  *rate.Limiter
	logger   Logger
}

// NewService creates an orchestrator. A nil provider is allowed; every call
// then takes the deterministic fallback path.
func NewService(opts Options) *Service {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = rate.Limit(10)
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = 1
	}
	if opts.Logger == nil {
		opts.Logger = &DefaultLogger{}
	}

	return &Service{
		provider: opts.Provider,
		retry:    opts.Retry,
		limiter:  rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		logger:   opts.Logger,
	}
}

// AnalyzeContent runs score-mode analysis. The only hard errors are
// caller-input errors from document validation; remote failures degrade to
// the deterministic scorer and tag the result as fallback-sourced.
func (s *Service) AnalyzeContent(ctx context.Context, session *Session, input AnalyzeInput) (*ScoreResult, error) {
	if err := input.Document.Validate(); err != nil {
		return nil, err
	}

	fingerprint := input.Document.Fingerprint(input.TargetKeyword)
	if cached := session.cachedScore(fingerprint); cached != nil {
		s.logger.Debug("Score analysis deduplicated", "fingerprint", fingerprint)
		return cached, nil
	}

	raw, err := s.callModel(ctx, buildScorePrompt(input.Document, input.TargetKeyword, input.PreviousScore))
	if err == nil {
		if score, parseErr := parseScoreResponse(raw); parseErr == nil {
			applyPreviousScore(score, input.PreviousScore)
			result := &ScoreResult{Score: score, Source: SourceAI}
			session.storeScore(fingerprint, result)
			return result, nil
		}
		s.logger.Info("Model response failed validation, using deterministic scoring")
	} else {
		s.logger.Info("Model call failed, using deterministic scoring", "error", err)
	}

	// Fallback results are not stored for dedup, so repeating the identical
	// request after an outage can recover the AI path.
	return &ScoreResult{
		Score:   scorer.Score(input.Document, input.TargetKeyword, input.PreviousScore),
		Source:  SourceFallback,
		Message: "AI analysis was unavailable; the score was computed deterministically",
	}, nil
}

// SuggestKeywords runs keyword-mode analysis with the same degradation
// contract as AnalyzeContent.
func (s *Service) SuggestKeywords(ctx context.Context, session *Session, input AnalyzeInput) (*KeywordResult, error) {
	if err := input.Document.Validate(); err != nil {
		return nil, err
	}

	fingerprint := input.Document.Fingerprint(input.TargetKeyword)
	if cached := session.cachedKeywords(fingerprint); cached != nil {
		s.logger.Debug("Keyword analysis deduplicated", "fingerprint", fingerprint)
		return cached, nil
	}

	raw, err := s.callModel(ctx, buildKeywordPrompt(input.Document, input.TargetKeyword))
	if err == nil {
		if keywords, parseErr := parseKeywordResponse(raw); parseErr == nil {
			result := &KeywordResult{
				Keywords:  keywords,
				Source:    SourceAI,
				Timestamp: time.Now().UTC(),
			}
			session.storeKeywords(fingerprint, result)
			return result, nil
		}
		s.logger.Info("Model response failed validation, using static keyword table")
	} else {
		s.logger.Info("Model call failed, using static keyword table", "error", err)
	}

	return &KeywordResult{
		Keywords:  FallbackKeywords(input.Document),
		Source:    SourceFallback,
		Fallback:  true,
		Message:   "AI suggestions were unavailable; matches come from the static weak-word list",
		Timestamp: time.Now().UTC(),
	}, nil
}

// callModel invokes the provider through the rate limiter and retry policy.
func (s *Service) callModel(ctx context.Context, prompt string) (string, error) {
	if s.provider == nil {
		return "", &APIError{Message: "no model provider configured"}
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return s.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.provider.GenerateText(ctx, prompt)
	})
}

// applyPreviousScore fills the improvement fields on an AI-produced score.
func applyPreviousScore(score *scorer.SEOScore, previous *int) {
	if previous == nil {
		return
	}
	prev := *previous
	score.PreviousScore = &prev
	score.Improvement = scorer.ImprovementText(score.Overall, prev)
}
