package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fruitshop-be/internal/assets"
	"fruitshop-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

type Service interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductByName(ctx context.Context, name string) (*Product, error)
	SearchProducts(ctx context.Context, filter *ProductFilter, page, size int32, sortBy, direction string) (*ProductListResult, error)
	NewestProducts(ctx context.Context, n int) ([]*Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, input UpdateProductInput) (*Product, error)
	DeleteProducts(ctx context.Context, ids []uuid.UUID) error
	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	CreateCategory(ctx context.Context, name string, thumbnail []byte) (*Category, error)
	ReduceStock(ctx context.Context, productID uuid.UUID, quantity int) error
	ReduceStockBulk(ctx context.Context, lines []StockLine) error
}

type service struct {
	repo     Repository
	uploader assets.Uploader
}

func NewService(repo Repository, uploader assets.Uploader) Service {
	return &service{repo: repo, uploader: uploader}
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *service) GetProductByName(ctx context.Context, name string) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.repo.GetProductByName(ctx, name)
}

func (s *service) SearchProducts(
	ctx context.Context,
	filter *ProductFilter,
	page, size int32,
	sortBy, direction string,
) (*ProductListResult, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SearchProducts"),
	)

	start := time.Now()

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	} else if size > 100 {
		size = 100
	}

	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	products, total, err := s.repo.SearchProducts(ctx, filter, size, page, sortBy, direction)
	if err != nil {
		log.Error("failed to search products",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	log.Info("products searched",
		zap.Int("count", len(products)),
		zap.Int64("total", total),
		zap.Int32("page", page),
		zap.Int32("size", size),
		zap.Duration("duration", time.Since(start)),
	)

	return &ProductListResult{
		Items:      products,
		TotalCount: total,
		Page:       page,
		Size:       size,
	}, nil
}

func validateFilter(filter *ProductFilter) error {
	if filter == nil {
		return nil
	}

	if filter.MinPrice != nil && filter.MinPrice.IsNegative() {
		return fmt.Errorf("%w: minPrice cannot be negative", ErrInvalidInput)
	}
	if filter.MaxPrice != nil && filter.MaxPrice.IsNegative() {
		return fmt.Errorf("%w: maxPrice cannot be negative", ErrInvalidInput)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return fmt.Errorf("%w: minPrice greater than maxPrice", ErrInvalidInput)
	}

	return nil
}

func (s *service) NewestProducts(ctx context.Context, n int) ([]*Product, error) {
	if n <= 0 {
		n = 8
	}
	return s.repo.NewestProducts(ctx, n)
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
		zap.String("name", input.Name),
	)

	if err := validateProductFields(input.Name, input.SellingPrice, input.DiscountPercentage, input.Stock); err != nil {
		return nil, err
	}

	_, err := s.repo.GetProductByName(ctx, input.Name)
	if err == nil {
		return nil, ErrDuplicateProduct
	}
	if !errors.Is(err, ErrProductNotFound) {
		return nil, err
	}

	category, err := s.repo.GetCategoryByName(ctx, input.CategoryName)
	if err != nil {
		return nil, err
	}

	p := &Product{
		ID:                 uuid.New(),
		Name:               input.Name,
		Origin:             input.Origin,
		Description:        input.Description,
		OriginalPrice:      input.OriginalPrice,
		SellingPrice:       input.SellingPrice,
		DiscountPercentage: input.DiscountPercentage,
		Unit:               input.Unit,
		Stock:              input.Stock,
		MinUnitToOrder:     input.MinUnitToOrder,
		CategoryID:         category.ID,
		CategoryName:       category.Name,
	}

	if len(input.Thumbnail) > 0 {
		url, err := s.uploader.Upload(ctx, input.Thumbnail)
		if err != nil {
			return nil, fmt.Errorf("upload thumbnail: %w", err)
		}
		p.ThumbnailImage = &url
	}

	for _, img := range input.Images {
		url, err := s.uploader.Upload(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("upload product image: %w", err)
		}
		p.Images = append(p.Images, url)
	}

	if err := s.repo.InsertProduct(ctx, p); err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.String("product_id", p.ID.String()))

	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, input UpdateProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", input.ID.String()),
	)

	if err := validateProductFields(input.Name, input.SellingPrice, input.DiscountPercentage, input.Stock); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetProductByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	category, err := s.repo.GetCategoryByName(ctx, input.CategoryName)
	if err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Origin = input.Origin
	existing.Description = input.Description
	existing.OriginalPrice = input.OriginalPrice
	existing.SellingPrice = input.SellingPrice
	existing.DiscountPercentage = input.DiscountPercentage
	existing.Unit = input.Unit
	existing.Stock = input.Stock
	existing.MinUnitToOrder = input.MinUnitToOrder
	existing.CategoryID = category.ID
	existing.CategoryName = category.Name

	oldThumbnail := existing.ThumbnailImage

	if len(input.Thumbnail) > 0 {
		url, err := s.uploader.Upload(ctx, input.Thumbnail)
		if err != nil {
			return nil, fmt.Errorf("upload thumbnail: %w", err)
		}
		existing.ThumbnailImage = &url

		if oldThumbnail != nil && *oldThumbnail != "" {
			s.deleteHostedAsset(ctx, *oldThumbnail, log)
		}
	}

	var added []string
	for _, img := range input.NewImages {
		url, err := s.uploader.Upload(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("upload product image: %w", err)
		}
		added = append(added, url)
	}

	if err := s.repo.UpdateProduct(ctx, existing, input.RemovedImageURLs, added); err != nil {
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}

	for _, url := range input.RemovedImageURLs {
		s.deleteHostedAsset(ctx, url, log)
	}

	log.Info("product updated")

	return existing, nil
}

// deleteHostedAsset is best-effort: the row is already gone, a stale file
// on the asset host is not worth failing the request over.
func (s *service) deleteHostedAsset(ctx context.Context, url string, log *zap.Logger) {
	publicID, err := assets.PublicIDFromURL(url)
	if err != nil {
		log.Warn("could not parse asset url", zap.String("url", url), zap.Error(err))
		return
	}
	if err := s.uploader.Delete(ctx, publicID); err != nil {
		log.Warn("failed to delete hosted asset", zap.String("public_id", publicID), zap.Error(err))
	}
}

func validateProductFields(name string, sellingPrice, discount decimal.Decimal, stock int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if sellingPrice.IsNegative() {
		return fmt.Errorf("%w: selling price cannot be negative", ErrInvalidInput)
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount percentage must be between 0 and 100", ErrInvalidInput)
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (s *service) DeleteProducts(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.DeleteProductsByIDs(ctx, ids)
}

func (s *service) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.repo.GetCategoryByName(ctx, name)
}

func (s *service) CreateCategory(ctx context.Context, name string, thumbnail []byte) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}

	var thumbnailURL *string
	if len(thumbnail) > 0 {
		url, err := s.uploader.Upload(ctx, thumbnail)
		if err != nil {
			return nil, fmt.Errorf("upload category thumbnail: %w", err)
		}
		thumbnailURL = &url
	}

	return s.repo.CreateCategory(ctx, name, thumbnailURL)
}

func (s *service) ReduceStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	return s.repo.ReduceStock(ctx, productID, quantity)
}

func (s *service) ReduceStockBulk(ctx context.Context, lines []StockLine) error {
	for _, line := range lines {
		if line.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
		}
	}
	return s.repo.ReduceStockBulk(ctx, lines)
}
