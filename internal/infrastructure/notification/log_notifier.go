package notification

import (
	"context"

	"github.com/boardpay/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// LogNotifier emits billing notifications as structured log records.
// Actual delivery channels (SMS, chat) consume these records from the
// log pipeline; the engine only needs a sink that acknowledges
// emission.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify emits one notification record for a bill
func (n *LogNotifier) Notify(_ context.Context, bill *billing.Bill, kind billing.EventKind) error {
	n.logger.Info("billing notification",
		zap.String("kind", string(kind)),
		zap.String("bill_id", bill.ID.String()),
		zap.String("tenant_id", bill.TenantID.String()),
		zap.String("period", bill.Period().String()),
		zap.Time("due_date", bill.DueDate),
		zap.String("total", bill.TotalAmount().String()),
		zap.String("outstanding", bill.Outstanding().String()),
	)
	return nil
}

var _ billing.Notifier = (*LogNotifier)(nil)
