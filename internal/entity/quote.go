package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/coi-quote/constants"
)

// Quote is one evaluated certificate, as stored and exported.
type Quote struct {
	ID           uuid.UUID `json:"id"`
	SourceName   string    `json:"source_name"`
	SourceHash   string    `json:"source_hash"`
	SourceFormat string    `json:"source_format"`
	TextMethod   string    `json:"text_method,omitempty"`

	GeneralAggregate  *float64 `json:"general_aggregate"`
	ExpirationDate    *string  `json:"expiration_date"`
	Premium           *float64 `json:"premium"`
	ExtractionSuccess bool     `json:"extraction_success"`

	Eligible       bool                  `json:"eligible"`
	Gate           string                `json:"gate"`
	Reason         string                `json:"reason"`
	OurPrice       float64               `json:"our_price"`
	Savings        float64               `json:"savings"`
	SavingsPercent float64               `json:"savings_percent"`
	DaysToExpiry   *int                  `json:"days_to_expiry,omitempty"`
	Status         constants.QuoteStatus `json:"status"`
	Warnings       []string              `json:"warnings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// StatusFor derives the stored status from the extraction and decision flags.
func StatusFor(extractionSuccess, eligible bool) constants.QuoteStatus {
	switch {
	case !extractionSuccess:
		return constants.QuoteStatusDegraded
	case eligible:
		return constants.QuoteStatusEligible
	default:
		return constants.QuoteStatusIneligible
	}
}
