package coi

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Premium sweep bounds (inclusive): a plausible annual premium.
const (
	MinPlausiblePremium = 1_000.0
	MaxPlausiblePremium = 10_000.0
)

// Strategy names, reported in FieldReport.Strategy.
const (
	StrategyAggregateLabel  = "general_aggregate_label"
	StrategyExpBeforeDate   = "exp_before_date"
	StrategyExpAfterDate    = "exp_after_date"
	StrategyAnyDate         = "any_date"
	StrategyTotalAnnualPrem = "total_annual_premium_label"
	StrategyPremiumLabel    = "premium_label"
	StrategyAmountAnnual    = "amount_before_annual"
	StrategyAmountInRange   = "amount_in_plausible_range"
)

const datePattern = `\d{1,2}/\d{1,2}/\d{4}`

var (
	// The aggregate label and its amount may sit on different lines of a COI table.
	reGeneralAggregate = regexp.MustCompile(`(?is)GENERAL\s+AGGREGATE.*?(\$[\d,]+(?:\.\d+)?)`)

	reExpBeforeDate = regexp.MustCompile(`EXP.*?(` + datePattern + `)`)
	reExpAfterDate  = regexp.MustCompile(`(` + datePattern + `).*?EXP`)
	reAnyDate       = regexp.MustCompile(`(` + datePattern + `)`)

	reTotalAnnualPremium = regexp.MustCompile(`(?i)TOTAL\s+ANNUAL\s+PREMIUM.*?(\$[\d,]+\.?\d*)`)
	rePremiumLabel       = regexp.MustCompile(`(?i)PREMIUM.*?(\$[\d,]+\.?\d*)`)
	reAmountAnnual       = regexp.MustCompile(`(?i)(\$[\d,]+\.?\d*).*?ANNUAL`)

	reAnyAmount = regexp.MustCompile(`\$[\d,]+\.?\d*`)
)

// AggregateCascade finds the general aggregate limit.
var AggregateCascade = Cascade{
	{Name: StrategyAggregateLabel, Pattern: reGeneralAggregate},
}

// ExpirationCascade finds the policy expiration date.
var ExpirationCascade = Cascade{
	{Name: StrategyExpBeforeDate, Pattern: reExpBeforeDate},
	{Name: StrategyExpAfterDate, Pattern: reExpAfterDate},
	{Name: StrategyAnyDate, Pattern: reAnyDate},
}

// PremiumCascade finds the current annual premium.
var PremiumCascade = Cascade{
	{Name: StrategyTotalAnnualPrem, Pattern: reTotalAnnualPremium},
	{Name: StrategyPremiumLabel, Pattern: rePremiumLabel},
	{Name: StrategyAmountAnnual, Pattern: reAmountAnnual},
}

var errEmptyAmount = errors.New("empty amount")

// ParseAmount turns "$3,500.00" into 3500.
func ParseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	if clean == "" {
		return 0, errEmptyAmount
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

// FieldExtractor owns the per-field cascades and turns matches into typed values.
type FieldExtractor struct {
	aggregate  Cascade
	expiration Cascade
	premium    Cascade
	logger     *slog.Logger
}

func NewFieldExtractor(logger *slog.Logger) *FieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldExtractor{
		aggregate:  AggregateCascade,
		expiration: ExpirationCascade,
		premium:    PremiumCascade,
		logger:     logger,
	}
}

// GeneralAggregate extracts the aggregate limit, falling back to DefaultGeneralAggregate.
func (x *FieldExtractor) GeneralAggregate(text string) (float64, FieldReport) {
	var value float64
	m, rejected, ok := x.aggregate.Search(text, func(m Match) error {
		v, err := ParseAmount(m.Value)
		if err == nil {
			value = v
		}
		return err
	})
	if ok {
		return value, FieldReport{Outcome: OutcomeMatched, Strategy: m.Strategy, Raw: m.Value}
	}
	rep := missReport(rejected)
	x.logger.Debug("general aggregate not found, using default", "outcome", rep.Outcome, "default", DefaultGeneralAggregate)
	return DefaultGeneralAggregate, rep
}

// ExpirationDate extracts the first date-shaped token the cascade accepts.
func (x *FieldExtractor) ExpirationDate(text string) (string, FieldReport) {
	if m, ok := x.expiration.Find(text); ok {
		return m.Value, FieldReport{Outcome: OutcomeMatched, Strategy: m.Strategy, Raw: m.Value}
	}
	x.logger.Debug("expiration date not found, using default", "default", DefaultExpirationDate)
	return DefaultExpirationDate, FieldReport{Outcome: OutcomeAbsent}
}

// Premium runs the premium cascade, then sweeps every amount in the text for
// the first one inside the plausible premium range.
func (x *FieldExtractor) Premium(text string) (float64, FieldReport) {
	var value float64
	m, rejected, ok := x.premium.Search(text, func(m Match) error {
		v, err := ParseAmount(m.Value)
		if err == nil {
			value = v
		}
		return err
	})
	if ok {
		return value, FieldReport{Outcome: OutcomeMatched, Strategy: m.Strategy, Raw: m.Value}
	}

	for _, raw := range reAnyAmount.FindAllString(text, -1) {
		v, err := ParseAmount(raw)
		if err != nil {
			continue
		}
		if v >= MinPlausiblePremium && v <= MaxPlausiblePremium {
			return v, FieldReport{Outcome: OutcomeMatched, Strategy: StrategyAmountInRange, Raw: raw}
		}
	}

	rep := missReport(rejected)
	x.logger.Debug("premium not found, using default", "outcome", rep.Outcome, "default", DefaultPremium)
	return DefaultPremium, rep
}

func missReport(rejected []Rejection) FieldReport {
	if len(rejected) == 0 {
		return FieldReport{Outcome: OutcomeAbsent}
	}
	return FieldReport{Outcome: OutcomeMalformed, Strategy: rejected[0].Strategy, Raw: rejected[0].Value}
}
