package feedback

import (
	"context"
	"fmt"
	"strings"

	"fruitshop-be/internal/catalog"
	"fruitshop-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// Create resolves the product by name and snapshots its id and name
	// onto the feedback row.
	Create(ctx context.Context, input CreateFeedbackInput) (*Feedback, error)
	Search(ctx context.Context, productName string, page, size int32) (*FeedbackListResult, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type service struct {
	repo        Repository
	catalogRepo catalog.Repository
}

func NewService(repo Repository, catalogRepo catalog.Repository) Service {
	return &service{repo: repo, catalogRepo: catalogRepo}
}

func (s *service) Create(ctx context.Context, input CreateFeedbackInput) (*Feedback, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", catalog.ErrInvalidInput)
	}

	product, err := s.catalogRepo.GetProductByName(ctx, input.ProductName)
	if err != nil {
		return nil, err
	}

	f := &Feedback{
		ID:                  uuid.New(),
		CustomerName:        input.CustomerName,
		CustomerPhoneNumber: input.CustomerPhoneNumber,
		Content:             input.Content,
		ProductID:           product.ID,
		ProductName:         product.Name,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("feedback created",
		zap.String("feedback_id", f.ID.String()),
		zap.String("product_id", f.ProductID.String()),
	)

	return f, nil
}

func (s *service) Search(ctx context.Context, productName string, page, size int32) (*FeedbackListResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	} else if size > 100 {
		size = 100
	}

	feedbacks, total, err := s.repo.SearchByProductName(ctx, productName, size, page)
	if err != nil {
		return nil, err
	}

	return &FeedbackListResult{
		Items:      feedbacks,
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
