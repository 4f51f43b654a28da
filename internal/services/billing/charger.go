// Package billing charges recurring membership fees.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

var (
	ErrInvalidAmount = errors.New("charge amount must be positive")
	ErrPaymentFailed = errors.New("payment failed")
	ErrMissingAPIKey = errors.New("stripe secret key not provided")
)

const (
	StatusSucceeded = "succeeded"
	// StatusExternal marks a charge settled outside Stripe (crypto, PayPal, bank transfer).
	StatusExternal = "external"
	StatusSkipped  = "skipped"
)

// Charge describes one recurring payment.
type Charge struct {
	UserID         uint
	Amount         float64
	Currency       string
	PaymentMethod  string
	Description    string
	IdempotencyKey string
}

type Result struct {
	ID     string
	Status string
}

type Charger interface {
	Charge(ctx context.Context, charge Charge) (*Result, error)
}

// NoopCharger accepts every charge without moving money.
type NoopCharger struct{}

func (NoopCharger) Charge(_ context.Context, charge Charge) (*Result, error) {
	if charge.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	return &Result{Status: StatusSkipped}, nil
}

// StripeCharger confirms a PaymentIntent against a stored Stripe payment method.
type StripeCharger struct {
	api *client.API
}

// NewStripeCharger builds a charger; nil backends means the live Stripe API.
func NewStripeCharger(secretKey string, backends *stripe.Backends) (*StripeCharger, error) {
	if secretKey == "" {
		return nil, ErrMissingAPIKey
	}
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeCharger{api: api}, nil
}

// NewCharger returns a StripeCharger when a key is configured and a NoopCharger otherwise.
func NewCharger(secretKey string) Charger {
	c, err := NewStripeCharger(secretKey, nil)
	if err != nil {
		return NoopCharger{}
	}
	return c
}

func (c *StripeCharger) Charge(ctx context.Context, charge Charge) (*Result, error) {
	if charge.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !strings.HasPrefix(charge.PaymentMethod, "pm_") {
		return &Result{Status: StatusExternal}, nil
	}

	currency := strings.ToLower(charge.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(charge.Amount)),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(charge.PaymentMethod),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
		Description:   stripe.String(charge.Description),
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatUint(uint64(charge.UserID), 10))
	if charge.IdempotencyKey != "" {
		params.SetIdempotencyKey(charge.IdempotencyKey)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent %s is %s", ErrPaymentFailed, pi.ID, pi.Status)
	}
	return &Result{ID: pi.ID, Status: StatusSucceeded}, nil
}

func toMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
