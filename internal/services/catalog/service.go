// Package catalog manages the product catalog.
package catalog

import (
	"context"
	"errors"
	"strings"

	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/validation"

	"github.com/lib/pq"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Service interface {
	CreateProduct(ctx context.Context, sellerID uint, input ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	SearchProducts(ctx context.Context, query, category string, skip, limit int) (*SearchResult, error)
	GetProductsByCategory(ctx context.Context, category string, skip, limit int) (*SearchResult, error)
	UpdateProduct(ctx context.Context, id uint, update ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	UpdateStock(ctx context.Context, id uint, quantity int) (*models.Product, error)
}

type ProductInput struct {
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	SKU            string      `json:"sku"`
	Price          float64     `json:"price"`
	Category       string      `json:"category"`
	Stock          int         `json:"stock"`
	Images         []string    `json:"images"`
	Specifications models.JSON `json:"specifications"`
}

// ProductUpdate carries the fields to change; nil fields are left alone.
type ProductUpdate struct {
	Name           *string     `json:"name"`
	Description    *string     `json:"description"`
	Price          *float64    `json:"price"`
	Category       *string     `json:"category"`
	Stock          *int        `json:"stock"`
	Images         []string    `json:"images"`
	Specifications models.JSON `json:"specifications"`
	IsActive       *bool       `json:"isActive"`
	Rating         *float64    `json:"rating"`
}

type SearchResult struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

type service struct {
	repo repositories.ProductRepository
}

func NewService(repo repositories.ProductRepository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProduct(ctx context.Context, sellerID uint, input ProductInput) (*models.Product, error) {
	p := &models.Product{
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		SKU:            strings.ToUpper(strings.TrimSpace(input.SKU)),
		Price:          input.Price,
		Currency:       models.CurrencyUSD,
		Category:       strings.ToLower(strings.TrimSpace(input.Category)),
		Stock:          input.Stock,
		Images:         pq.StringArray(input.Images),
		Specifications: input.Specifications,
		SellerID:       sellerID,
		IsActive:       true,
	}

	v := validation.New()
	v.Product(p)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *service) SearchProducts(ctx context.Context, query, category string, skip, limit int) (*SearchResult, error) {
	skip, limit = clampPage(skip, limit)
	products, total, err := s.repo.Search(ctx, repositories.SearchQuery{
		Text:     strings.TrimSpace(query),
		Category: strings.ToLower(strings.TrimSpace(category)),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return &SearchResult{Products: products, Total: total, Skip: skip, Limit: limit}, nil
}

func (s *service) GetProductsByCategory(ctx context.Context, category string, skip, limit int) (*SearchResult, error) {
	return s.SearchProducts(ctx, "", category, skip, limit)
}

func (s *service) UpdateProduct(ctx context.Context, id uint, update ProductUpdate) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		p.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		p.Description = strings.TrimSpace(*update.Description)
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Category != nil {
		p.Category = strings.ToLower(strings.TrimSpace(*update.Category))
	}
	if update.Stock != nil {
		p.Stock = *update.Stock
	}
	if update.Images != nil {
		p.Images = pq.StringArray(update.Images)
	}
	if update.Specifications != nil {
		p.Specifications = update.Specifications
	}
	if update.IsActive != nil {
		p.IsActive = *update.IsActive
	}
	if update.Rating != nil {
		p.Rating = *update.Rating
	}

	v := validation.New()
	v.Product(p)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *service) UpdateStock(ctx context.Context, id uint, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, ErrInvalidStock
	}
	if err := s.repo.UpdateStock(ctx, id, quantity); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}
