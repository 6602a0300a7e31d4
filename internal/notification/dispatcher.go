package notification

import (
	"context"
	"sync"
	"time"

	"fruitshop-be/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const sendTimeout = 30 * time.Second

// Dispatcher fans confirmation mail out to the Mailer on background
// goroutines, throttled so a burst of orders cannot flood the mail
// provider.
type Dispatcher struct {
	mailer  Mailer
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

// NewDispatcher builds a dispatcher sending at most ratePerMin messages
// per minute, with a small burst allowance.
func NewDispatcher(mailer Mailer, ratePerMin int) *Dispatcher {
	if ratePerMin <= 0 {
		ratePerMin = 60
	}

	return &Dispatcher{
		mailer:  mailer,
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerMin)/60.0), 5),
	}
}

// Dispatch queues msg for delivery and returns immediately. Delivery
// failures are logged, never returned: mail must not roll back an order.
func (d *Dispatcher) Dispatch(msg OrderConfirmation) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := d.limiter.Wait(ctx); err != nil {
			logger.L().Warn("mail dispatch timed out waiting for rate limiter",
				zap.String("order_id", msg.OrderID.String()),
				zap.Error(err),
			)
			return
		}

		if err := d.mailer.SendOrderConfirmation(ctx, msg); err != nil {
			logger.L().Warn("failed to send order confirmation",
				zap.String("order_id", msg.OrderID.String()),
				zap.String("to", msg.CustomerEmail),
				zap.Error(err),
			)
		}
	}()
}

// Close waits for in-flight sends to finish.
func (d *Dispatcher) Close() {
	d.wg.Wait()
}
