package validation

import (
	"tcw1/internal/models"
)

// Signup validates a new account.
func (v *Validator) Signup(email, password, firstName, lastName string) {
	v.Required("email", email)
	v.Email("email", email)
	v.Password("password", password)
	v.Required("firstName", firstName)
	v.MaxLength("firstName", firstName, MaxNameLength)
	v.Required("lastName", lastName)
	v.MaxLength("lastName", lastName, MaxNameLength)
}

// Trade validates a currency swap.
func (v *Validator) Trade(from, to string, amount float64) {
	v.OneOf("fromCurrency", from, models.CryptoCurrencies...)
	v.OneOf("toCurrency", to, models.CryptoCurrencies...)
	v.Check(from != to, "toCurrency", "must differ from fromCurrency")
	v.Positive("amount", amount)
	v.Check(amount <= MaxTradeAmount, "amount", "exceeds the maximum trade size")
}

// Deposit validates a deposit confirmation request.
func (v *Validator) Deposit(d *models.DepositConfirmation) {
	v.Positive("depositAmount", d.DepositAmount)
	v.OneOf("currency", d.Currency, models.CurrencyBTC, models.CurrencyETH, models.CurrencyUSDT, models.CurrencyUSD)
	v.Check(d.RequiredConfirmations >= 1, "requiredConfirmations", "must be at least 1")
}

// Product validates a catalog item.
func (v *Validator) Product(p *models.Product) {
	v.Required("name", p.Name)
	v.MaxLength("name", p.Name, MaxTitleLength)
	v.Required("description", p.Description)
	v.MaxLength("description", p.Description, MaxDescriptionLength)
	v.Required("sku", p.SKU)
	v.Required("category", p.Category)
	v.Range("price", p.Price, 0, MaxPrice)
	v.NonNegative("stock", float64(p.Stock))
	v.Range("rating", p.Rating, 0, 5)
}

// Listing validates a marketplace listing.
func (v *Validator) Listing(l *models.MarketplaceListing) {
	v.Required("title", l.Title)
	v.MaxLength("title", l.Title, MaxTitleLength)
	v.Required("description", l.Description)
	v.MaxLength("description", l.Description, MaxDescriptionLength)
	v.Required("category", l.Category)
	v.OneOf("condition", l.Condition, models.ListingConditions...)
	v.Range("price", l.Price, 0, MaxPrice)
	v.Check(l.Quantity >= 1, "quantity", "must be at least 1")
	v.NonNegative("shippingCost", l.ShippingCost)
	v.Range("rating", l.Rating, 0, 5)
}

// OrderItems validates the lines of a new order.
func (v *Validator) OrderItems(items []models.OrderItem) {
	v.Check(len(items) > 0, "items", "must contain at least one item")
	for _, item := range items {
		if item.Quantity < 1 {
			v.AddError("items", "quantity must be at least 1")
		}
		if item.Price < 0 {
			v.AddError("items", "price must not be negative")
		}
		if item.ProductName == "" {
			v.AddError("items", "productName must not be empty")
		}
	}
}

// ShippingAddress validates a delivery address.
func (v *Validator) ShippingAddress(a models.ShippingAddress) {
	v.Required("shippingAddress.street", a.Street)
	v.Required("shippingAddress.city", a.City)
	v.Required("shippingAddress.zipCode", a.ZipCode)
	v.Required("shippingAddress.country", a.Country)
}
