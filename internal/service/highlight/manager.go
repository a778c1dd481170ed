package highlight

import (
	"context"
	"fmt"
	"sync"
)

// Marker is the document owner's side of highlight application. The core
// never writes to the document directly; it requests discrete mark
// operations which the editing surface executes.
type Marker interface {
	// ClearAll removes every existing highlight mark. It must complete
	// before any new mark is applied.
	ClearAll(ctx context.Context) error

	// Apply adds one highlight mark for the given range.
	Apply(ctx context.Context, r HighlightRange) error

	// ResetSelection moves the cursor to a neutral position (document start)
	// after a pass, so the applied marks do not leave an arbitrary selection.
	ResetSelection(ctx context.Context) error
}

// Manager sequences highlight passes over a document. Every pass discards
// all prior ranges and recomputes from scratch; passes are ordered by an
// explicit completion chain (clear, then apply, then reset), never by timing
// gaps.
type Manager struct {
	marker Marker

	mu     sync.Mutex
	passID uint64
}

// NewManager creates a highlight manager for one document's marker.
func NewManager(marker Marker) *Manager {
	return &Manager{marker: marker}
}

// Refresh runs one full clear-all, re-scan, apply-each pass and returns the
// ranges that were applied. A pass superseded by a newer Refresh call stops
// before applying stale marks.
func (m *Manager) Refresh(ctx context.Context, docLen int, nodes []TextNode, keywords []Keyword) ([]HighlightRange, error) {
	m.mu.Lock()
	m.passID++
	pass := m.passID
	m.mu.Unlock()

	if err := m.marker.ClearAll(ctx); err != nil {
		return nil, fmt.Errorf("clearing highlights: %w", err)
	}

	ranges := Localize(docLen, nodes, keywords)

	for _, r := range ranges {
		if m.stale(pass) {
			return nil, context.Canceled
		}
		if err := m.marker.Apply(ctx, r); err != nil {
			return nil, fmt.Errorf("applying highlight %s: %w", r.ID, err)
		}
	}

	if m.stale(pass) {
		return nil, context.Canceled
	}
	if err := m.marker.ResetSelection(ctx); err != nil {
		return nil, fmt.Errorf("resetting selection: %w", err)
	}

	return ranges, nil
}

// stale reports whether a newer pass has started since pass was issued.
func (m *Manager) stale(pass uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passID != pass
}
