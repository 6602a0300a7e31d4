package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fruitshop-be/internal/catalog"
	"fruitshop-be/internal/customer"
	"fruitshop-be/internal/logger"
	"fruitshop-be/internal/metrics"
	"fruitshop-be/internal/notification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier queues an order confirmation for asynchronous delivery.
type Notifier interface {
	Dispatch(msg notification.OrderConfirmation)
}

type Service interface {
	// CreateOrder turns a submitted cart into a persisted order. The
	// order, its items, the stock decrements, and any brand-new customer
	// commit as one transaction; customer aggregates update afterwards.
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Search(ctx context.Context, filter *OrderFilter, page, size int32, sortBy, direction string) (*OrderListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) (*Order, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type service struct {
	repo         Repository
	catalogRepo  catalog.Repository
	customerRepo customer.Repository
	notifier     Notifier
	metrics      *metrics.OrderMetrics
}

func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	customerRepo customer.Repository,
	notifier Notifier,
	m *metrics.OrderMetrics,
) Service {
	return &service{
		repo:         repo,
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
		metrics:      m,
	}
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("customer_name", input.CustomerName),
		zap.Int("line_count", len(input.Lines)),
	)

	start := time.Now()

	if len(input.Lines) == 0 {
		log.Warn("order rejected: no line items")
		s.countFailure("empty_order")
		return nil, ErrEmptyOrder
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		s.countFailure("invalid_input")
		return nil, fmt.Errorf("%w: customer name is required", customer.ErrInvalidInput)
	}

	// Resolve the customer up front; a brand-new one is only inserted
	// inside the order transaction. On a name match the request's contact
	// fields are ignored (deliberate dedup for repeat phone orders).
	existing, err := s.customerRepo.FindOneByNameContaining(ctx, input.CustomerName)
	if err != nil {
		return nil, err
	}

	var newCustomer *customer.Customer
	cust := existing
	if cust == nil {
		newCustomer = &customer.Customer{
			ID:          uuid.New(),
			Name:        input.CustomerName,
			PhoneNumber: input.CustomerPhone,
			Address:     input.CustomerAddress,
			Email:       input.CustomerEmail,
		}
		cust = newCustomer
	}

	o := &Order{
		ID:                    uuid.New(),
		CustomerID:            &cust.ID,
		CustomerName:          cust.Name,
		EstimatedDeliveryDate: input.EstimatedDeliveryDate,
		Note:                  input.Note,
		Status:                StatusNew,
	}

	total := decimal.Zero
	for i, line := range input.Lines {
		logLine := log.With(
			zap.Int("index", i),
			zap.String("product_id", line.ProductID.String()),
			zap.Int("quantity", line.Quantity),
		)

		product, err := s.catalogRepo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				logLine.Warn("order rejected: unknown product")
				s.countFailure("product_not_found")
			}
			return nil, err
		}

		price, err := LineTotal(product.SellingPrice, product.DiscountPercentage, line.Quantity)
		if err != nil {
			logLine.Warn("order rejected: pricing", zap.Error(err))
			s.countFailure("invalid_pricing")
			return nil, err
		}

		o.Items = append(o.Items, OrderItem{
			ID:                        uuid.New(),
			ProductID:                 product.ID,
			ProductName:               product.Name,
			ProductOrigin:             product.Origin,
			ProductSellingPrice:       product.SellingPrice,
			ProductDiscountPercentage: product.DiscountPercentage,
			Quantity:                  line.Quantity,
			Price:                     price,
		})

		total = total.Add(price)
	}
	o.TotalPrice = total

	if err := s.repo.CreateOrderTx(ctx, o, newCustomer); err != nil {
		if errors.Is(err, catalog.ErrInsufficientStock) {
			s.countFailure("insufficient_stock")
			if s.metrics != nil {
				s.metrics.StockRejected()
			}
		}
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	// The order is durable from here on; the aggregate bump is advisory
	// and must not undo it.
	if err := s.customerRepo.RecordOrder(ctx, cust.ID, o.CreatedAt); err != nil {
		log.Error("failed to update customer order stats",
			zap.String("customer_id", cust.ID.String()),
			zap.Error(err),
		)
	}

	if s.metrics != nil {
		s.metrics.OrderCreated(time.Since(start).Seconds())
	}

	if s.notifier != nil && cust.Email != "" {
		s.notifier.Dispatch(s.buildConfirmation(o, cust))
	}

	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("total_price", o.TotalPrice.String()),
		zap.Duration("duration", time.Since(start)),
	)

	return o, nil
}

func (s *service) buildConfirmation(o *Order, cust *customer.Customer) notification.OrderConfirmation {
	msg := notification.OrderConfirmation{
		OrderID:               o.ID,
		CustomerName:          cust.Name,
		CustomerEmail:         cust.Email,
		TotalPrice:            o.TotalPrice,
		EstimatedDeliveryDate: o.EstimatedDeliveryDate,
	}
	for _, item := range o.Items {
		msg.Lines = append(msg.Lines, notification.ConfirmationLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return msg
}

func (s *service) countFailure(reason string) {
	if s.metrics != nil {
		s.metrics.OrderFailed(reason)
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Search(
	ctx context.Context,
	filter *OrderFilter,
	page, size int32,
	sortBy, direction string,
) (*OrderListResult, error) {

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	} else if size > 100 {
		size = 100
	}

	if filter != nil && filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *filter.Status)
	}

	orders, total, err := s.repo.Search(ctx, filter, size, page, sortBy, direction)
	if err != nil {
		return nil, err
	}

	return &OrderListResult{
		Items:      orders,
		TotalCount: total,
		Page:       page,
		Size:       size,
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) (*Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(status)),
	)

	return s.repo.GetByID(ctx, id)
}

func (s *service) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.DeleteByIDs(ctx, ids)
}
