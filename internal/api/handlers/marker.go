package handlers

import (
	"context"

	"github.com/google/uuid"

	ws "github.com/contentforge/seo_editor/internal/api/websocket"
	"github.com/contentforge/seo_editor/internal/service/highlight"
)

// broadcastMarker implements highlight.Marker by streaming mark operations
// to the session's editor clients over the websocket hub. The editing
// surface owns the document and executes the operations in arrival order.
type broadcastMarker struct {
	hub       *ws.Hub
	sessionID uuid.UUID
}

func newBroadcastMarker(hub *ws.Hub, sessionID uuid.UUID) *broadcastMarker {
	return &broadcastMarker{hub: hub, sessionID: sessionID}
}

func (m *broadcastMarker) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.hub.BroadcastToSession(m.sessionID, ws.Message{Type: ws.TypeHighlightClear})
	return nil
}

func (m *broadcastMarker) Apply(ctx context.Context, r highlight.HighlightRange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.hub.BroadcastToSession(m.sessionID, ws.Message{Type: ws.TypeHighlightApply, Data: r})
	return nil
}

func (m *broadcastMarker) ResetSelection(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.hub.BroadcastToSession(m.sessionID, ws.Message{Type: ws.TypeSelectionReset})
	return nil
}
