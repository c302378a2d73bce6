package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/coi-quote/internal/coi"
)

var fixedNow = time.Date(2026, time.October, 19, 15, 30, 0, 0, time.UTC)

func newTestEngine(rules Rules) *Engine {
	return NewEngine(rules, WithClock(func() time.Time { return fixedNow }))
}

func result(ga *float64, exp *string, premium *float64) coi.ExtractionResult {
	return coi.ExtractionResult{GeneralAggregate: ga, ExpirationDate: exp, Premium: premium, ExtractionSuccess: true}
}

func inDays(n int) *string {
	return coi.String(fixedNow.AddDate(0, 0, n).Format("01/02/2006"))
}

func TestEvaluate_AggregateGate(t *testing.T) {
	e := newTestEngine(DefaultRules())

	t.Run("absent", func(t *testing.T) {
		d := e.Evaluate(result(nil, inDays(90), coi.Float64(3500)))
		assert.False(t, d.Eligible)
		assert.Equal(t, GateAggregate, d.Gate)
		assert.Equal(t, "Unable to determine General Aggregate limit", d.Reason)
		assert.Zero(t, d.OurPrice)
	})

	t.Run("above maximum", func(t *testing.T) {
		d := e.Evaluate(result(coi.Float64(5_000_000), inDays(90), coi.Float64(3500)))
		assert.False(t, d.Eligible)
		assert.Equal(t, GateAggregate, d.Gate)
		assert.Contains(t, d.Reason, "$5,000,000")
		assert.Contains(t, d.Reason, "$2,000,000")
		assert.Zero(t, d.OurPrice)
		assert.Zero(t, d.Savings)
		assert.Zero(t, d.SavingsPercent)
	})

	t.Run("just above maximum", func(t *testing.T) {
		d := e.Evaluate(result(coi.Float64(2_000_000.01), inDays(90), coi.Float64(3500)))
		assert.False(t, d.Eligible)
	})

	t.Run("exactly maximum", func(t *testing.T) {
		d := e.Evaluate(result(coi.Float64(2_000_000), inDays(90), coi.Float64(3500)))
		assert.True(t, d.Eligible)
		assert.Equal(t, GateAccepted, d.Gate)
	})
}

func TestEvaluate_ExpiryGate(t *testing.T) {
	e := newTestEngine(DefaultRules())
	tests := []struct {
		name     string
		days     int
		eligible bool
	}{
		{name: "already expired", days: -1, eligible: false},
		{name: "today", days: 0, eligible: false},
		{name: "29 days", days: 29, eligible: false},
		{name: "30 days", days: 30, eligible: true},
		{name: "31 days", days: 31, eligible: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Evaluate(result(coi.Float64(1_000_000), inDays(tt.days), coi.Float64(3500)))
			assert.Equal(t, tt.eligible, d.Eligible)
			require.NotNil(t, d.DaysToExpiry)
			assert.Equal(t, tt.days, *d.DaysToExpiry)
			if !tt.eligible {
				assert.Equal(t, GateExpiry, d.Gate)
				assert.Contains(t, d.Reason, "minimum 30 days required")
			}
		})
	}

	d := e.Evaluate(result(coi.Float64(1_000_000), inDays(29), coi.Float64(3500)))
	assert.Equal(t, "Policy expires in 29 days (minimum 30 days required)", d.Reason)
}

func TestEvaluate_UnparseableExpiry(t *testing.T) {
	bad := coi.String("13/45/2026")

	t.Run("lenient by default", func(t *testing.T) {
		d := newTestEngine(DefaultRules()).Evaluate(result(coi.Float64(1_000_000), bad, coi.Float64(3500)))
		assert.True(t, d.Eligible)
		assert.Nil(t, d.DaysToExpiry)
		require.Len(t, d.Warnings, 1)
		assert.Contains(t, d.Warnings[0], "13/45/2026")
	})

	t.Run("strict when configured", func(t *testing.T) {
		rules := DefaultRules()
		rules.RejectUnparseableExpiry = true
		d := newTestEngine(rules).Evaluate(result(coi.Float64(1_000_000), bad, coi.Float64(3500)))
		assert.False(t, d.Eligible)
		assert.Equal(t, GateExpiry, d.Gate)
	})

	t.Run("absent date skips gate", func(t *testing.T) {
		d := newTestEngine(DefaultRules()).Evaluate(result(coi.Float64(1_000_000), nil, coi.Float64(3500)))
		assert.True(t, d.Eligible)
	})
}

func TestEvaluate_Pricing(t *testing.T) {
	e := newTestEngine(DefaultRules())

	d := e.Evaluate(result(coi.Float64(2_000_000), coi.String("12/31/2099"), coi.Float64(3500)))
	require.True(t, d.Eligible)
	assert.Equal(t, AcceptedReason, d.Reason)
	assert.Equal(t, 3150.0, d.OurPrice)
	assert.Equal(t, 350.0, d.Savings)
	assert.Equal(t, 10.0, d.SavingsPercent)

	d = e.Evaluate(result(coi.Float64(2_000_000), coi.String("12/31/2099"), nil))
	require.True(t, d.Eligible)
	assert.Equal(t, 3150.0, d.OurPrice)
	assert.NotEmpty(t, d.Warnings)
}

func TestEvaluate_ExtractedScenarios(t *testing.T) {
	e := newTestEngine(DefaultRules())

	d := e.Evaluate(coi.ExtractFields("GENERAL AGGREGATE $2,000,000 ... TOTAL ANNUAL PREMIUM $3,500.00 ... EXP 12/31/2099"))
	assert.True(t, d.Eligible)
	assert.Equal(t, 3150.0, d.OurPrice)
	assert.Equal(t, 350.0, d.Savings)
	assert.Equal(t, 10.0, d.SavingsPercent)

	d = e.Evaluate(coi.ExtractFields("GENERAL AGGREGATE $5,000,000"))
	assert.False(t, d.Eligible)
	assert.Contains(t, d.Reason, "$5,000,000")
	assert.Contains(t, d.Reason, "$2,000,000")
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, time.October, 19, 23, 59, 0, 0, time.UTC)
	exp := time.Date(2026, time.November, 18, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysUntil(exp, now))
	assert.Equal(t, -1, DaysUntil(now.AddDate(0, 0, -1), now))
	assert.Equal(t, 2_912_151, DaysUntil(time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, -375_030, DaysUntil(time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$5,000,000", FormatUSD(5_000_000))
	assert.Equal(t, "$2,000,000", FormatUSD(2_000_000))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "ELIGIBLE: our price $3,150 (save $350, 10%)",
		Summary(Decision{Eligible: true, OurPrice: 3150, Savings: 350, SavingsPercent: 10}))
	assert.Equal(t, "NOT ELIGIBLE: Unable to determine General Aggregate limit",
		Summary(Decision{Reason: "Unable to determine General Aggregate limit"}))
}
