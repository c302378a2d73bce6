package eligibility

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/coi-quote/internal/pricing"
)

// Rules holds the business thresholds of the engine.
type Rules struct {
	MaxGeneralAggregate float64 `yaml:"max_general_aggregate"`
	MinDaysToExpiry     int     `yaml:"min_days_to_expiry"`
	DiscountRate        float64 `yaml:"discount_rate"`
	FallbackPremium     float64 `yaml:"fallback_premium"`
	// RejectUnparseableExpiry turns an unreadable expiration date into a
	// rejection instead of skipping the expiry gate.
	RejectUnparseableExpiry bool `yaml:"reject_unparseable_expiry"`
}

func DefaultRules() Rules {
	return Rules{
		MaxGeneralAggregate: 2_000_000,
		MinDaysToExpiry:     30,
		DiscountRate:        pricing.DiscountRate,
		FallbackPremium:     pricing.FallbackPremium,
	}
}

// LoadRules reads rules from a YAML file.
// If the file doesn't exist, it returns the default rules and no error.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRules(), nil
		}
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}

	var wrapper struct {
		Rules Rules `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Rules{}, fmt.Errorf("parse rules %s: %w", path, err)
	}
	r := wrapper.Rules
	r.applyDefaults()
	return r, nil
}

func (r *Rules) applyDefaults() {
	d := DefaultRules()
	if r.MaxGeneralAggregate <= 0 {
		r.MaxGeneralAggregate = d.MaxGeneralAggregate
	}
	if r.MinDaysToExpiry <= 0 {
		r.MinDaysToExpiry = d.MinDaysToExpiry
	}
	if r.DiscountRate <= 0 || r.DiscountRate >= 1 {
		r.DiscountRate = d.DiscountRate
	}
	if r.FallbackPremium <= 0 {
		r.FallbackPremium = d.FallbackPremium
	}
}
