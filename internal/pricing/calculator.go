package pricing

import (
	"github.com/shopspring/decimal"
)

const (
	// DiscountRate is the fixed reduction applied to the current premium.
	DiscountRate = 0.10
	// FallbackPremium stands in for an absent premium.
	FallbackPremium = 3_500.0
)

// Quote is the priced offer for an eligible policy.
type Quote struct {
	CurrentPremium float64 `json:"current_premium"`
	OurPrice       float64 `json:"our_price"`
	Savings        float64 `json:"savings"`
	SavingsPercent float64 `json:"savings_percent"`
}

// Calculator prices an alternative quote from the current premium.
type Calculator struct {
	rate     decimal.Decimal
	fallback float64
}

func NewCalculator(discountRate, fallbackPremium float64) *Calculator {
	if discountRate <= 0 || discountRate >= 1 {
		discountRate = DiscountRate
	}
	if fallbackPremium <= 0 {
		fallbackPremium = FallbackPremium
	}
	return &Calculator{rate: decimal.NewFromFloat(discountRate), fallback: fallbackPremium}
}

// Price computes our_price = round(premium*(1-rate), 2) and
// savings = round(premium-our_price, 2). A nil premium uses the fallback.
func (c *Calculator) Price(premium *float64) Quote {
	p := c.fallback
	if premium != nil {
		p = *premium
	}
	current := decimal.NewFromFloat(p)
	ours := current.Mul(decimal.NewFromInt(1).Sub(c.rate)).Round(2)
	savings := current.Sub(ours).Round(2)

	return Quote{
		CurrentPremium: p,
		OurPrice:       ours.InexactFloat64(),
		Savings:        savings.InexactFloat64(),
		SavingsPercent: c.rate.Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64(),
	}
}

// Price prices premium with the default 10% discount.
func Price(premium *float64) Quote {
	return NewCalculator(DiscountRate, FallbackPremium).Price(premium)
}
