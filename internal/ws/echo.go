package ws

import (
	"context"
	"encoding/json"
)

// handleEcho returns the inbound message unchanged under data.
func (r *Router) handleEcho(_ context.Context, raw []byte) (Outbound, error) {
	return Outbound{
		Type:      TypeEcho,
		Message:   "Echo received",
		Data:      json.RawMessage(raw),
		Timestamp: r.timestamp(),
	}, nil
}
