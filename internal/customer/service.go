package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fruitshop-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	// FindOrCreate matches an existing customer by case-insensitive name
	// fragment; when none matches, it creates one from the given fields.
	FindOrCreate(ctx context.Context, input CreateCustomerInput) (*Customer, bool, error)
	Search(ctx context.Context, name string, page, size int32, sortBy, direction string) (*CustomerListResult, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	RecordOrder(ctx context.Context, customerID uuid.UUID, orderCreatedAt time.Time) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindOrCreate(ctx context.Context, input CreateCustomerInput) (*Customer, bool, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, false, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	existing, err := s.repo.FindOneByNameContaining(ctx, input.Name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		// Contact fields on the request are ignored for a name match:
		// phone orders from known customers arrive with wildly varying
		// contact spellings.
		return existing, false, nil
	}

	c := &Customer{
		ID:          uuid.New(),
		Name:        input.Name,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
		Email:       input.Email,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, false, err
	}

	logger.FromCtx(ctx).Info("customer created",
		zap.String("customer_id", c.ID.String()),
		zap.String("name", c.Name),
	)

	return c, true, nil
}

func (s *service) Search(
	ctx context.Context,
	name string,
	page, size int32,
	sortBy, direction string,
) (*CustomerListResult, error) {

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	} else if size > 100 {
		size = 100
	}

	customers, total, err := s.repo.Search(ctx, name, size, page, sortBy, direction)
	if err != nil {
		return nil, err
	}

	return &CustomerListResult{
		Items:      customers,
		TotalCount: total,
		Page:       page,
		Size:       size,
	}, nil
}

func (s *service) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.DeleteByIDs(ctx, ids)
}

func (s *service) RecordOrder(ctx context.Context, customerID uuid.UUID, orderCreatedAt time.Time) error {
	return s.repo.RecordOrder(ctx, customerID, orderCreatedAt)
}
