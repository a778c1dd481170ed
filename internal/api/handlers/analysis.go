package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	ws "github.com/contentforge/seo_editor/internal/api/websocket"
	"github.com/contentforge/seo_editor/internal/config"
	"github.com/contentforge/seo_editor/internal/repository"
	"github.com/contentforge/seo_editor/internal/repository/cache"
	"github.com/contentforge/seo_editor/internal/service/ai"
	"github.com/contentforge/seo_editor/internal/service/document"
	"github.com/contentforge/seo_editor/internal/service/highlight"
)

// AnalysisHandler handles content analysis requests
type AnalysisHandler struct {
	Config *config.Config
	Scores repository.ScoreRepository
	Cache  *cache.Repository
	AI     *ai.Service
	Hub    *ws.Hub

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionState
}

// sessionState bundles the per-session orchestrator dedup state with the
// highlight manager for that session's document.
type sessionState struct {
	ai        *ai.Session
	highlight *highlight.Manager
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(cfg *config.Config, scores repository.ScoreRepository, cacheRepo *cache.Repository, aiService *ai.Service, hub *ws.Hub) *AnalysisHandler {
	return &AnalysisHandler{
		Config:   cfg,
		Scores:   scores,
		Cache:    cacheRepo,
		AI:       aiService,
		Hub:      hub,
		sessions: make(map[uuid.UUID]*sessionState),
	}
}

// AnalyzeRequest represents a request to analyze a document. The document can
// be supplied as structured blocks or as an HTML fragment.
type AnalyzeRequest struct {
	Document      *document.ParsedDocument `json:"document"`
	HTML          string                   `json:"html"`
	OriginalURL   string                   `json:"original_url"`
	TargetKeyword string                   `json:"target_keyword"`
	UsePrior      bool                     `json:"use_prior"`
}

// HighlightRequest carries the live document's flattened text nodes and the
// keywords to localize.
type HighlightRequest struct {
	DocumentLength int                  `json:"document_length"`
	Nodes          []highlight.TextNode `json:"nodes"`
	Keywords       []highlight.Keyword  `json:"keywords"`
}

// session returns the state for an editor session, creating it on first use.
func (h *AnalysisHandler) session(id uuid.UUID) *sessionState {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.sessions[id]
	if !ok {
		state = &sessionState{
			ai:        ai.NewSession(),
			highlight: highlight.NewManager(newBroadcastMarker(h.Hub, id)),
		}
		h.sessions[id] = state
	}
	return state
}

// resolveDocument builds the document snapshot from the request and enforces
// the input ceiling.
func (h *AnalysisHandler) resolveDocument(req *AnalyzeRequest) (*document.ParsedDocument, error) {
	doc := req.Document
	if doc == nil {
		if req.HTML == "" {
			return nil, document.ErrMissingBlocks
		}
		parsed, err := document.FromHTML(req.HTML, req.OriginalURL)
		if err != nil {
			return nil, err
		}
		doc = parsed
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.Length() > h.Config.MaxDocumentChars {
		return nil, errDocumentTooLarge
	}
	return doc, nil
}

var errDocumentTooLarge = errors.New("document exceeds the maximum analyzable length")

// AnalyzeContent handles score-mode analysis of a document
func (h *AnalysisHandler) AnalyzeContent(c *fiber.Ctx) error {
	sessionID := c.Locals("sessionID").(uuid.UUID)

	req := new(AnalyzeRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
	}

	doc, err := h.resolveDocument(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	fingerprint := doc.Fingerprint(req.TargetKeyword)

	// Unchanged requests are served from the cross-session cache; prior-score
	// requests recompute so the improvement fields reflect the stored history.
	if h.Cache != nil && !req.UsePrior {
		if cached, err := h.Cache.GetScoreResult(fingerprint); err == nil && cached != nil {
			h.Hub.BroadcastToSession(sessionID, ws.Message{Type: ws.TypeScore, Data: cached})
			return c.JSON(fiber.Map{
				"success":     true,
				"fingerprint": fingerprint,
				"data":        cached,
			})
		}
	}

	input := ai.AnalyzeInput{
		Document:      doc,
		TargetKeyword: req.TargetKeyword,
	}
	if req.UsePrior {
		input.PreviousScore = h.lookupPriorScore(fingerprint)
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.Config.AnalysisTimeout)
	defer cancel()

	result, err := h.AI.AnalyzeContent(ctx, h.session(sessionID).ai, input)
	if err != nil {
		// Only caller-input errors surface here
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	h.persistScore(fingerprint, doc, req.TargetKeyword, result)
	h.Hub.BroadcastToSession(sessionID, ws.Message{Type: ws.TypeScore, Data: result})

	return c.JSON(fiber.Map{
		"success":     true,
		"fingerprint": fingerprint,
		"data":        result,
	})
}

// SuggestKeywords handles keyword-mode analysis of a document
func (h *AnalysisHandler) SuggestKeywords(c *fiber.Ctx) error {
	sessionID := c.Locals("sessionID").(uuid.UUID)

	req := new(AnalyzeRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
	}

	doc, err := h.resolveDocument(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.Config.AnalysisTimeout)
	defer cancel()

	result, err := h.AI.SuggestKeywords(ctx, h.session(sessionID).ai, ai.AnalyzeInput{
		Document:      doc,
		TargetKeyword: req.TargetKeyword,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	h.Hub.BroadcastToSession(sessionID, ws.Message{Type: ws.TypeKeywords, Data: result})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// ApplyHighlights localizes the given keywords against the live document's
// text nodes and streams the resulting mark operations to the session's
// editor clients in clear-then-apply order.
func (h *AnalysisHandler) ApplyHighlights(c *fiber.Ctx) error {
	sessionID := c.Locals("sessionID").(uuid.UUID)

	req := new(HighlightRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
	}
	if req.DocumentLength < 0 || req.DocumentLength > h.Config.MaxDocumentChars {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   errDocumentTooLarge.Error(),
		})
	}

	ranges, err := h.session(sessionID).highlight.Refresh(c.Context(), req.DocumentLength, req.Nodes, req.Keywords)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Superseded by a newer pass; nothing was applied
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "highlight pass superseded by a newer request",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	h.Hub.BroadcastToSession(sessionID, ws.Message{Type: ws.TypeHighlights, Data: ranges})

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"ranges": ranges,
		},
	})
}

// GetScoreHistory returns the recorded scores for a document fingerprint
func (h *AnalysisHandler) GetScoreHistory(c *fiber.Ctx) error {
	fingerprint := c.Params("fingerprint")
	if fingerprint == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "fingerprint is required",
		})
	}

	records, err := h.Scores.History(fingerprint, c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load score history: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
	})
}

// lookupPriorScore consults the cache first, then the score history.
func (h *AnalysisHandler) lookupPriorScore(fingerprint string) *int {
	if h.Cache != nil {
		if overall, ok, err := h.Cache.GetPriorScore(fingerprint); err == nil && ok {
			return &overall
		}
	}
	if h.Scores != nil {
		if overall, ok, err := h.Scores.LatestOverall(fingerprint); err == nil && ok {
			return &overall
		}
	}
	return nil
}

// persistScore records a completed pass in the history and caches; failures
// are logged by the repositories and never fail the request.
func (h *AnalysisHandler) persistScore(fingerprint string, doc *document.ParsedDocument, targetKeyword string, result *ai.ScoreResult) {
	if result == nil || result.Score == nil {
		return
	}
	if h.Scores != nil {
		if docRow, err := h.Scores.EnsureDocument(fingerprint, doc.Title, doc.OriginalURL); err == nil {
			_ = h.Scores.RecordScore(docRow.ID, result.Score, string(result.Source), targetKeyword)
		}
	}
	if h.Cache != nil {
		// Degraded results stay out of the result cache so a later retry of
		// the same request can reach the model; the overall score is still a
		// valid prior either way.
		if result.Source == ai.SourceAI {
			_ = h.Cache.CacheScoreResult(fingerprint, result)
		}
		_ = h.Cache.CachePriorScore(fingerprint, result.Score.Overall)
	}
}
