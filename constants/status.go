package constants

// QuoteStatus is the canonical status stored on rows in quotes.
type QuoteStatus string

// Stable values (store these exact strings in DB).
const (
	QuoteStatusEligible   QuoteStatus = "ELIGIBLE"   // quote offered
	QuoteStatusIneligible QuoteStatus = "INELIGIBLE" // a gate rejected the policy
	QuoteStatusDegraded   QuoteStatus = "DEGRADED"   // decided on default values (no usable text)
)

// ImageConfidenceThreshold flags OCR output that is likely too noisy to trust.
const ImageConfidenceThreshold = 0.6
