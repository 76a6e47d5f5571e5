// Package broadcast defines the port for pushing real-time query
// lifecycle events to connected review clients.
package broadcast

import "context"

// Broadcaster sends real-time events to the clients watching a matter.
// Events for one matter must never reach another matter's clients.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to the matter's clients.
	BroadcastEvent(ctx context.Context, matterID, eventType string, payload any)
}
