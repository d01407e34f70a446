package services

import (
	"context"
	"errors"
	"game-store/models"
	"game-store/repositories"
	"log/slog"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// priceScale matches the NUMERIC(12,2) price column.
const priceScale = 2

func validPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.Equal(p.Round(priceScale))
}

// ProductService is the catalog. Stock is changed only through the
// InventoryLedger; catalog edits never touch it.
type ProductService struct {
	productRepo repositories.ProductRepository
}

func NewProductService(productRepo repositories.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) GetAllProducts(ctx context.Context, search string, page, limit int) ([]models.Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	// No catalog is this large; the guard keeps the offset from overflowing.
	if page > math.MaxInt32/limit {
		return []models.Product{}, nil
	}

	products, err := s.productRepo.List(ctx, models.ProductFilter{
		Search: strings.TrimSpace(search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, unavailable("list products", err)
	}
	return products, nil
}

func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, unavailable("get product", notFoundAs(err, id))
	}
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if !validPrice(req.Price) {
		return nil, ErrInvalidPrice
	}
	if req.Stock < 0 {
		return nil, &InvalidQuantityError{Quantity: req.Stock}
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, unavailable("create product", err)
	}

	slog.InfoContext(ctx, "product created", slog.Int64("product_id", product.ID), slog.String("name", product.Name))
	return product, nil
}

// UpdateProduct changes catalog fields. Cart quotes pick up a new price
// immediately; orders already placed keep their snapshot.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, unavailable("update product", notFoundAs(err, id))
	}

	if req.Name != nil && *req.Name != "" {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if !validPrice(*req.Price) {
			return nil, ErrInvalidPrice
		}
		product.Price = *req.Price
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, unavailable("update product", notFoundAs(err, id))
	}
	return product, nil
}

// DeleteProduct removes the product from the catalog. Existing cart lines
// stay but fail checkout with ErrProductNotFound.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	err := s.productRepo.Deactivate(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return &ProductNotFoundError{ProductID: id}
	}
	return unavailable("delete product", err)
}
