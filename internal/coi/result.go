package coi

// Field names as they appear in JSON and logs.
const (
	FieldGeneralAggregate = "general_aggregate"
	FieldExpirationDate   = "expiration_date"
	FieldPremium          = "premium"
)

// Values used when a field cannot be recovered from the document text.
const (
	DefaultGeneralAggregate = 2_000_000.0
	DefaultExpirationDate   = "01/01/2026"
	DefaultPremium          = 3_500.0
)

// Outcome tells callers how a field value was obtained.
type Outcome string

const (
	OutcomeMatched     Outcome = "MATCHED"     // a strategy matched and parsed
	OutcomeAbsent      Outcome = "ABSENT"      // nothing matched; default used
	OutcomeMalformed   Outcome = "MALFORMED"   // matched text did not parse; default used
	OutcomeUnavailable Outcome = "UNAVAILABLE" // no usable text; default used
)

// FieldReport describes the extraction of a single field.
type FieldReport struct {
	Outcome  Outcome `json:"outcome"`
	Strategy string  `json:"strategy,omitempty"`
	Raw      string  `json:"raw,omitempty"`
}

// Defaulted reports whether the field value is a fallback rather than document data.
func (r FieldReport) Defaulted() bool { return r.Outcome != OutcomeMatched }

// ExtractionResult is the structured record recovered from one COI.
// A nil value is the absent marker; the extractor itself never leaves one nil.
type ExtractionResult struct {
	GeneralAggregate  *float64               `json:"general_aggregate"`
	ExpirationDate    *string                `json:"expiration_date"`
	Premium           *float64               `json:"premium"`
	ExtractionSuccess bool                   `json:"extraction_success"`
	Fields            map[string]FieldReport `json:"fields,omitempty"`
}

// Defaults returns a result populated with fallback values only.
func Defaults(success bool, outcome Outcome) ExtractionResult {
	ga, exp, prem := DefaultGeneralAggregate, DefaultExpirationDate, DefaultPremium
	return ExtractionResult{
		GeneralAggregate:  &ga,
		ExpirationDate:    &exp,
		Premium:           &prem,
		ExtractionSuccess: success,
		Fields: map[string]FieldReport{
			FieldGeneralAggregate: {Outcome: outcome},
			FieldExpirationDate:   {Outcome: outcome},
			FieldPremium:          {Outcome: outcome},
		},
	}
}

// Report returns the report for name, or an empty report.
func (r ExtractionResult) Report(name string) FieldReport {
	if r.Fields == nil {
		return FieldReport{}
	}
	return r.Fields[name]
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// SampleResult is the built-in demo certificate: a $2,000,000 aggregate,
// expiring 01/01/2026, with a $3,500 annual premium.
func SampleResult() ExtractionResult {
	return ExtractionResult{
		GeneralAggregate:  Float64(DefaultGeneralAggregate),
		ExpirationDate:    String(DefaultExpirationDate),
		Premium:           Float64(DefaultPremium),
		ExtractionSuccess: true,
	}
}
