package services

import (
	"context"

	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/metrics"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/ws"
)

// PresenceLookup is the part of the presence registry the dispatcher needs.
type PresenceLookup interface {
	Lookup(userID string) (ws.Conn, bool)
}

// Dispatcher pushes targeted realtime events. Delivery is best effort: an
// offline user or a failed write is logged and counted, never returned.
type Dispatcher struct {
	presence PresenceLookup
	metrics  *metrics.Metrics
}

func NewDispatcher(presence PresenceLookup, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{presence: presence, metrics: m}
}

// Push sends event to userID if connected. Reports whether it was queued.
func (d *Dispatcher) Push(ctx context.Context, userID, event string, data any) bool {
	conn, ok := d.presence.Lookup(userID)
	if !ok {
		d.metrics.RecordEvent(event, metrics.OutcomeOffline)
		return false
	}

	if err := conn.Emit(event, data); err != nil {
		d.metrics.RecordEvent(event, metrics.OutcomeDropped)
		logger.RealtimeLog(event, userID, err)
		return false
	}

	d.metrics.RecordEvent(event, metrics.OutcomeDelivered)
	logger.CtxDebug(ctx, "Realtime event queued", "event", event, "recipient", userID)
	return true
}

// Notify sends a notification event to ownerID.
func (d *Dispatcher) Notify(ctx context.Context, ownerID string, n models.Notification) {
	d.Push(ctx, ownerID, ws.EventNotification, n)
}
