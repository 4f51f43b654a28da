// Package marketplace manages user-to-user listings.
package marketplace

import (
	"context"
	"errors"
	"strings"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/validation"

	"github.com/lib/pq"
)

const (
	// ListingLifetime is how long a listing stays active before it expires.
	ListingLifetime = 60 * 24 * time.Hour

	DefaultLimit = 20
	MaxLimit     = 100
)

type Service interface {
	CreateListing(ctx context.Context, sellerID uint, input ListingInput) (*models.MarketplaceListing, error)
	GetListing(ctx context.Context, id uint) (*models.MarketplaceListing, error)
	SearchListings(ctx context.Context, query, category string, skip, limit int) (*SearchResult, error)
	GetSellerListings(ctx context.Context, sellerID uint) ([]models.MarketplaceListing, error)
	UpdateListing(ctx context.Context, id uint, actor Actor, update ListingUpdate) (*models.MarketplaceListing, error)
	DeleteListing(ctx context.Context, id uint, actor Actor) error
	MarkAsSold(ctx context.Context, id uint, actor Actor) (*models.MarketplaceListing, error)
	IncrementSales(ctx context.Context, id uint, actor Actor) (*models.MarketplaceListing, error)
	ExpireOldListings(ctx context.Context) (int64, error)
}

// Actor is the caller changing a listing.
type Actor struct {
	UserID  uint
	IsAdmin bool
}

type ListingInput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Condition     string   `json:"condition"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	Quantity      int      `json:"quantity"`
	Images        []string `json:"images"`
	Tags          []string `json:"tags"`
	Location      string   `json:"location"`
	ShipsTo       []string `json:"shipsTo"`
	ShippingCost  float64  `json:"shippingCost"`
	AcceptsOffers *bool    `json:"acceptsOffers"`
}

// ListingUpdate carries the fields to change; nil fields are left alone.
type ListingUpdate struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Condition     *string  `json:"condition"`
	Price         *float64 `json:"price"`
	Quantity      *int     `json:"quantity"`
	Images        []string `json:"images"`
	Tags          []string `json:"tags"`
	Location      *string  `json:"location"`
	ShipsTo       []string `json:"shipsTo"`
	ShippingCost  *float64 `json:"shippingCost"`
	AcceptsOffers *bool    `json:"acceptsOffers"`
	Status        *string  `json:"status"`
}

type SearchResult struct {
	Listings []models.MarketplaceListing `json:"listings"`
	Total    int64                       `json:"total"`
	Skip     int                         `json:"skip"`
	Limit    int                         `json:"limit"`
}

type service struct {
	repo repositories.ListingRepository
	now  func() time.Time
}

func NewService(repo repositories.ListingRepository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) CreateListing(ctx context.Context, sellerID uint, input ListingInput) (*models.MarketplaceListing, error) {
	now := s.now().UTC()
	l := &models.MarketplaceListing{
		SellerID:      sellerID,
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Category:      strings.ToLower(strings.TrimSpace(input.Category)),
		Condition:     strings.ToLower(strings.TrimSpace(input.Condition)),
		Price:         input.Price,
		Currency:      strings.ToUpper(strings.TrimSpace(input.Currency)),
		Quantity:      input.Quantity,
		Images:        pq.StringArray(input.Images),
		Tags:          normalizeTags(input.Tags),
		Location:      strings.TrimSpace(input.Location),
		ShipsTo:       pq.StringArray(input.ShipsTo),
		ShippingCost:  input.ShippingCost,
		AcceptsOffers: true,
		Status:        models.ListingStatusActive,
		ExpiresAt:     now.Add(ListingLifetime),
	}
	if l.Condition == "" {
		l.Condition = models.ConditionGood
	}
	if l.Currency == "" {
		l.Currency = models.CurrencyUSD
	}
	if l.Quantity == 0 {
		l.Quantity = 1
	}
	if input.AcceptsOffers != nil {
		l.AcceptsOffers = *input.AcceptsOffers
	}

	v := validation.New()
	v.Listing(l)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	logger.Log.Infow("🛒 Listing created", "listing_id", l.ID, "seller_id", sellerID)
	return l, nil
}

func (s *service) GetListing(ctx context.Context, id uint) (*models.MarketplaceListing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *service) SearchListings(ctx context.Context, query, category string, skip, limit int) (*SearchResult, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	listings, total, err := s.repo.Search(ctx, repositories.SearchQuery{
		Text:     strings.TrimSpace(query),
		Category: strings.ToLower(strings.TrimSpace(category)),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []models.MarketplaceListing{}
	}
	return &SearchResult{Listings: listings, Total: total, Skip: skip, Limit: limit}, nil
}

func (s *service) GetSellerListings(ctx context.Context, sellerID uint) ([]models.MarketplaceListing, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

func (s *service) UpdateListing(ctx context.Context, id uint, actor Actor, update ListingUpdate) (*models.MarketplaceListing, error) {
	l, err := s.owned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		l.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		l.Description = strings.TrimSpace(*update.Description)
	}
	if update.Category != nil {
		l.Category = strings.ToLower(strings.TrimSpace(*update.Category))
	}
	if update.Condition != nil {
		l.Condition = strings.ToLower(strings.TrimSpace(*update.Condition))
	}
	if update.Price != nil {
		l.Price = *update.Price
	}
	if update.Quantity != nil {
		l.Quantity = *update.Quantity
	}
	if update.Images != nil {
		l.Images = pq.StringArray(update.Images)
	}
	if update.Tags != nil {
		l.Tags = normalizeTags(update.Tags)
	}
	if update.Location != nil {
		l.Location = strings.TrimSpace(*update.Location)
	}
	if update.ShipsTo != nil {
		l.ShipsTo = pq.StringArray(update.ShipsTo)
	}
	if update.ShippingCost != nil {
		l.ShippingCost = *update.ShippingCost
	}
	if update.AcceptsOffers != nil {
		l.AcceptsOffers = *update.AcceptsOffers
	}

	v := validation.New()
	v.Listing(l)
	if update.Status != nil {
		v.OneOf("status", *update.Status, models.ListingStatuses...)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if update.Status != nil {
		l.Status = *update.Status
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) DeleteListing(ctx context.Context, id uint, actor Actor) error {
	if _, err := s.owned(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	return nil
}

func (s *service) MarkAsSold(ctx context.Context, id uint, actor Actor) (*models.MarketplaceListing, error) {
	l, err := s.owned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	l.Status = models.ListingStatusSold
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// IncrementSales records one more sale of the listing. The counter is bumped
// in SQL so concurrent sales are not lost.
func (s *service) IncrementSales(ctx context.Context, id uint, actor Actor) (*models.MarketplaceListing, error) {
	l, err := s.owned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementSales(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	l.Sales++
	return l, nil
}

// ExpireOldListings moves active listings past their expiry to expired.
func (s *service) ExpireOldListings(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireBefore(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Infow("⌛ Listings expired", "count", n)
	}
	return n, nil
}

func (s *service) owned(ctx context.Context, id uint, actor Actor) (*models.MarketplaceListing, error) {
	l, err := s.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.SellerID != actor.UserID && !actor.IsAdmin {
		return nil, ErrNotOwner
	}
	return l, nil
}

func normalizeTags(tags []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
