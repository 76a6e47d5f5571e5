package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/lexforge/lexforge/internal/domain/query"
)

// Event type constants for WebSocket messages.
const (
	EventQueryStarted   = "query.started"
	EventQueryEngine    = "query.engine"
	EventQueryCompleted = "query.completed"
)

// QueryStartedEvent is broadcast when orchestration of a query begins.
type QueryStartedEvent struct {
	QueryID         string           `json:"query_id"`
	MatterID        string           `json:"matter_id"`
	RequiredEngines []query.EngineID `json:"required_engines"`
}

// QueryEngineEvent is broadcast when one engine finishes.
type QueryEngineEvent struct {
	QueryID   string         `json:"query_id"`
	MatterID  string         `json:"matter_id"`
	Engine    query.EngineID `json:"engine"`
	Success   bool           `json:"success"`
	ElapsedMS int64          `json:"elapsed_ms"`
}

// QueryCompletedEvent is broadcast when the orchestrator result is ready.
type QueryCompletedEvent struct {
	QueryID           string           `json:"query_id"`
	MatterID          string           `json:"matter_id"`
	SuccessfulEngines []query.EngineID `json:"successful_engines"`
	FailedEngines     []query.EngineID `json:"failed_engines"`
	WallClockMS       int64            `json:"wall_clock_ms"`
}

// BroadcastEvent marshals a typed event and broadcasts it to the
// matter's clients. Implements the broadcast port.
func (h *Hub) BroadcastEvent(ctx context.Context, matterID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, matterID, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
