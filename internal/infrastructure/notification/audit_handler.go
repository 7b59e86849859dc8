package notification

import (
	"context"

	"github.com/boardpay/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler subscribes to bill lifecycle events and records them
// as an audit trail. It registers for all event types so newly added
// events are captured without wiring changes.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

// EventTypes returns an empty slice: the handler receives all events
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle records one domain event
func (h *AuditLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
