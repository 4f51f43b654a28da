package repositories

import (
	"context"
	"errors"
	"time"

	"tcw1/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrListingNotFound = errors.New("listing not found")
)

// SearchQuery is the shared filter for product and listing searches.
type SearchQuery struct {
	Text     string
	Category string
	Skip     int
	Limit    int
}

func likePattern(text string) string {
	return "%" + text + "%"
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query SearchQuery) ([]models.Product, int64, error)
	UpdateStock(ctx context.Context, id uint, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return &product, nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Search(ctx context.Context, query SearchQuery) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if query.Text != "" {
		pattern := likePattern(query.Text)
		q = q.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := q.Order("created_at DESC").Offset(query.Skip).Limit(query.Limit).Find(&products).Error
	return products, total, err
}

func (r *productRepository) UpdateStock(ctx context.Context, id uint, quantity int) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("stock", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.MarketplaceListing) error
	GetByID(ctx context.Context, id uint) (*models.MarketplaceListing, error)
	Update(ctx context.Context, listing *models.MarketplaceListing) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query SearchQuery) ([]models.MarketplaceListing, int64, error)
	ListBySeller(ctx context.Context, sellerID uint) ([]models.MarketplaceListing, error)
	IncrementSales(ctx context.Context, id uint) error
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.MarketplaceListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (*models.MarketplaceListing, error) {
	var listing models.MarketplaceListing
	if err := r.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		return nil, notFound(err, ErrListingNotFound)
	}
	return &listing, nil
}

func (r *listingRepository) Update(ctx context.Context, listing *models.MarketplaceListing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *listingRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.MarketplaceListing{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *listingRepository) Search(ctx context.Context, query SearchQuery) ([]models.MarketplaceListing, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.MarketplaceListing{}).Where("status = ?", models.ListingStatusActive)
	if query.Text != "" {
		pattern := likePattern(query.Text)
		q = q.Where("title ILIKE ? OR description ILIKE ? OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE ?)",
			pattern, pattern, pattern)
	}
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.MarketplaceListing
	err := q.Order("created_at DESC").Offset(query.Skip).Limit(query.Limit).Find(&listings).Error
	return listings, total, err
}

func (r *listingRepository) ListBySeller(ctx context.Context, sellerID uint) ([]models.MarketplaceListing, error) {
	var listings []models.MarketplaceListing
	err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&listings).Error
	return listings, err
}

func (r *listingRepository) IncrementSales(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.MarketplaceListing{}).Where("id = ?", id).
		UpdateColumn("sales", gorm.Expr("sales + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *listingRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.MarketplaceListing{}).
		Where("status = ? AND expires_at <= ?", models.ListingStatusActive, now).
		Update("status", models.ListingStatusExpired)
	return result.RowsAffected, result.Error
}
