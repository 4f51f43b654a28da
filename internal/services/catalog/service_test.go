package catalog

import (
	"context"
	"testing"

	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*models.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) Search(ctx context.Context, q repositories.SearchQuery) ([]models.Product, int64, error) {
	args := m.Called(ctx, q)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, id uint, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func validInput() ProductInput {
	return ProductInput{
		Name:        "Ledger Nano X",
		Description: "Hardware wallet",
		SKU:         "ldg-nano-x",
		Price:       149,
		Category:    "Hardware",
		Stock:       10,
	}
}

func TestService_CreateProduct(t *testing.T) {
	repo := new(MockProductRepository)
	s := NewService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	p, err := s.CreateProduct(context.Background(), 5, validInput())
	require.NoError(t, err)
	assert.Equal(t, "LDG-NANO-X", p.SKU)
	assert.Equal(t, "hardware", p.Category)
	assert.Equal(t, models.CurrencyUSD, p.Currency)
	assert.Equal(t, uint(5), p.SellerID)
	assert.True(t, p.IsActive)

	bad := validInput()
	bad.Price = -1
	bad.Name = ""
	_, err = s.CreateProduct(context.Background(), 5, bad)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "price")
	assert.Contains(t, verr.Fields, "name")
}

func TestService_SearchProducts(t *testing.T) {
	repo := new(MockProductRepository)
	s := NewService(repo)

	repo.On("Search", mock.Anything, repositories.SearchQuery{Text: "nano", Category: "hardware", Skip: 0, Limit: MaxLimit}).
		Return([]models.Product{{ID: 1}}, int64(1), nil)
	repo.On("Search", mock.Anything, repositories.SearchQuery{Category: "books", Limit: DefaultLimit}).
		Return(nil, int64(0), nil)

	res, err := s.SearchProducts(context.Background(), " nano ", "Hardware", -3, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, MaxLimit, res.Limit)

	res, err = s.GetProductsByCategory(context.Background(), "books", 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, res.Products)
	assert.Empty(t, res.Products)
}

func TestService_UpdateProduct(t *testing.T) {
	repo := new(MockProductRepository)
	s := NewService(repo)

	existing := &models.Product{ID: 1, Name: "Old", Description: "d", SKU: "A", Category: "c", Price: 10, IsActive: true}
	repo.On("GetByID", mock.Anything, uint(1)).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	price := 12.5
	got, err := s.UpdateProduct(context.Background(), 1, ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Price)
	assert.Equal(t, "Old", got.Name)

	rating := 7.0
	_, err = s.UpdateProduct(context.Background(), 1, ProductUpdate{Rating: &rating})
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)
}

func TestService_UpdateStock(t *testing.T) {
	repo := new(MockProductRepository)
	s := NewService(repo)

	_, err := s.UpdateStock(context.Background(), 1, -1)
	assert.ErrorIs(t, err, ErrInvalidStock)

	repo.On("UpdateStock", mock.Anything, uint(1), 4).Return(nil)
	repo.On("GetByID", mock.Anything, uint(1)).Return(&models.Product{ID: 1, Stock: 4}, nil)
	p, err := s.UpdateStock(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Stock)

	repo.On("UpdateStock", mock.Anything, uint(2), 1).Return(repositories.ErrProductNotFound)
	_, err = s.UpdateStock(context.Background(), 2, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_DeleteProduct(t *testing.T) {
	repo := new(MockProductRepository)
	s := NewService(repo)
	repo.On("Delete", mock.Anything, uint(3)).Return(repositories.ErrProductNotFound)

	assert.ErrorIs(t, s.DeleteProduct(context.Background(), 3), ErrProductNotFound)
}
