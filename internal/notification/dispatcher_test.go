package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []OrderConfirmation
	err  error
}

func (m *captureMailer) SendOrderConfirmation(_ context.Context, msg OrderConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func testConfirmation() OrderConfirmation {
	return OrderConfirmation{
		OrderID:       uuid.New(),
		CustomerName:  "Nguyễn Văn A",
		CustomerEmail: "a@example.com",
		TotalPrice:    decimal.NewFromInt(135000),
		Lines: []ConfirmationLine{
			{ProductName: "Xoài cát Hòa Lộc", Quantity: 3, Price: decimal.NewFromInt(135000)},
		},
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("DeliversAsynchronously", func(t *testing.T) {
		mailer := &captureMailer{}
		d := NewDispatcher(mailer, 600)

		msg := testConfirmation()
		d.Dispatch(msg)
		d.Close()

		require.Equal(t, 1, mailer.count())
		assert.Equal(t, msg.OrderID, mailer.sent[0].OrderID)
		assert.Equal(t, "a@example.com", mailer.sent[0].CustomerEmail)
	})

	t.Run("SendFailureIsSwallowed", func(t *testing.T) {
		mailer := &captureMailer{err: errors.New("smtp down")}
		d := NewDispatcher(mailer, 600)

		d.Dispatch(testConfirmation())

		// Close returns once the failed send has finished; nothing panics
		// and nothing is retried.
		done := make(chan struct{})
		go func() {
			d.Close()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("dispatcher did not drain after a failed send")
		}
		assert.Equal(t, 1, mailer.count())
	})

	t.Run("BurstWithinLimiterAllowance", func(t *testing.T) {
		mailer := &captureMailer{}
		d := NewDispatcher(mailer, 6000)

		for i := 0; i < 5; i++ {
			d.Dispatch(testConfirmation())
		}
		d.Close()

		assert.Equal(t, 5, mailer.count())
	})

	t.Run("DefaultsRateWhenNonPositive", func(t *testing.T) {
		mailer := &captureMailer{}
		d := NewDispatcher(mailer, 0)

		d.Dispatch(testConfirmation())
		d.Close()

		assert.Equal(t, 1, mailer.count())
	})
}
