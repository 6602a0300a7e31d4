// Package notification sends order-confirmation mail through an external
// mail collaborator. Sending is asynchronous and best-effort: a failed
// send never affects the order that triggered it.
package notification

import (
	"context"
	"time"

	"fruitshop-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ConfirmationLine struct {
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

type OrderConfirmation struct {
	OrderID               uuid.UUID
	CustomerName          string
	CustomerEmail         string
	TotalPrice            decimal.Decimal
	EstimatedDeliveryDate *time.Time
	Lines                 []ConfirmationLine
}

// Mailer is the outbound-mail collaborator. Implementations talk to the
// actual mail provider; the core only hands over an assembled message.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error
}

// LogMailer is the default Mailer: it records the confirmation in the
// log instead of sending anything. Useful for development and tests.
type LogMailer struct {
	From string
}

func (m *LogMailer) SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error {
	logger.FromCtx(ctx).Info("order confirmation mail",
		zap.String("from", m.From),
		zap.String("to", msg.CustomerEmail),
		zap.String("order_id", msg.OrderID.String()),
		zap.String("total_price", msg.TotalPrice.String()),
		zap.Int("line_count", len(msg.Lines)),
	)
	return nil
}
