package eligibility

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/joseph-ayodele/coi-quote/internal/coi"
	"github.com/joseph-ayodele/coi-quote/internal/pricing"
)

// DateLayout is the month/day/year form COIs print (leading zeros optional).
const DateLayout = "1/2/2006"

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// Engine applies the quoting gates in order and stops at the first failure.
type Engine struct {
	rules  Rules
	calc   *pricing.Calculator
	now    Clock
	logger *slog.Logger
}

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.now = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(rules Rules, opts ...Option) *Engine {
	rules.applyDefaults()
	e := &Engine{
		rules:  rules,
		calc:   pricing.NewCalculator(rules.DiscountRate, rules.FallbackPremium),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Rules returns the thresholds the engine was built with.
func (e *Engine) Rules() Rules { return e.rules }

// Evaluate decides whether an alternative quote can be offered for r.
func (e *Engine) Evaluate(r coi.ExtractionResult) Decision {
	// 1) aggregate gate
	if r.GeneralAggregate == nil {
		return e.reject(GateAggregate, "Unable to determine General Aggregate limit", nil, nil)
	}
	if ga := *r.GeneralAggregate; ga > e.rules.MaxGeneralAggregate {
		return e.reject(GateAggregate, fmt.Sprintf("General Aggregate %s exceeds our maximum limit of %s",
			FormatUSD(ga), FormatUSD(e.rules.MaxGeneralAggregate)), nil, nil)
	}

	// 2) expiry gate
	var warnings []string
	var days *int
	if r.ExpirationDate != nil && strings.TrimSpace(*r.ExpirationDate) != "" {
		raw := strings.TrimSpace(*r.ExpirationDate)
		exp, err := time.Parse(DateLayout, raw)
		switch {
		case err != nil && e.rules.RejectUnparseableExpiry:
			return e.reject(GateExpiry, fmt.Sprintf("Could not parse expiration date %q", raw), nil, nil)
		case err != nil:
			e.logger.Warn("could not parse expiration date, skipping expiry gate", "expiration_date", raw, "error", err)
			warnings = append(warnings, fmt.Sprintf("could not parse expiration date %q; expiry rule not applied", raw))
		default:
			d := DaysUntil(exp, e.now())
			days = &d
			if d < e.rules.MinDaysToExpiry {
				return e.reject(GateExpiry, fmt.Sprintf("Policy expires in %d days (minimum %d days required)",
					d, e.rules.MinDaysToExpiry), days, warnings)
			}
		}
	}

	// 3) accept and price
	q := e.calc.Price(r.Premium)
	if r.Premium == nil {
		warnings = append(warnings, fmt.Sprintf("premium unknown; priced from fallback premium %s", FormatUSD(q.CurrentPremium)))
	}
	e.logger.Debug("quote eligible", "our_price", q.OurPrice, "savings", q.Savings)
	return Decision{
		Eligible:       true,
		Reason:         AcceptedReason,
		Gate:           GateAccepted,
		OurPrice:       q.OurPrice,
		Savings:        q.Savings,
		SavingsPercent: q.SavingsPercent,
		DaysToExpiry:   days,
		Warnings:       warnings,
	}
}

func (e *Engine) reject(g Gate, reason string, days *int, warnings []string) Decision {
	e.logger.Debug("quote rejected", "gate", g, "reason", reason)
	return Decision{Gate: g, Reason: reason, DaysToExpiry: days, Warnings: warnings}
}

// DaysUntil counts whole calendar days from now's date to exp's date.
func DaysUntil(exp, now time.Time) int {
	ny, nm, nd := now.Date()
	ey, em, ed := exp.Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	target := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int((target.Unix() - today.Unix()) / 86400)
}

var usd = message.NewPrinter(language.English)

// FormatUSD renders 5000000 as "$5,000,000" and 1234.5 as "$1,234.5".
func FormatUSD(v float64) string {
	return usd.Sprintf("$%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

// Evaluate runs the default rules against r at the current time.
func Evaluate(r coi.ExtractionResult) Decision {
	return NewEngine(DefaultRules()).Evaluate(r)
}
