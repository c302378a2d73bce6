package eligibility

import (
	"fmt"
	"strconv"
)

// Gate names the rule that produced a decision.
type Gate string

const (
	GateAggregate Gate = "AGGREGATE"
	GateExpiry    Gate = "EXPIRY"
	GateAccepted  Gate = "ACCEPTED"
)

// AcceptedReason is the message attached to every eligible decision.
const AcceptedReason = "Eligible for quote - we can match your coverage and save you money!"

// Decision is the outcome of evaluating one ExtractionResult.
// Price fields are zero unless Eligible.
type Decision struct {
	Eligible       bool     `json:"eligible"`
	Reason         string   `json:"reason"`
	Gate           Gate     `json:"gate"`
	OurPrice       float64  `json:"our_price"`
	Savings        float64  `json:"savings"`
	SavingsPercent float64  `json:"savings_percent"`
	DaysToExpiry   *int     `json:"days_to_expiry,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Summary renders d as a single human-readable line.
func Summary(d Decision) string {
	if !d.Eligible {
		return "NOT ELIGIBLE: " + d.Reason
	}
	return fmt.Sprintf("ELIGIBLE: our price %s (save %s, %s%%)",
		FormatUSD(d.OurPrice), FormatUSD(d.Savings), strconv.FormatFloat(d.SavingsPercent, 'f', -1, 64))
}
