package coi

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/coi-quote/internal/extract"
)

var defaultExtractor = NewFieldExtractor(nil)

// ExtractFields runs every field cascade over text using the package extractor.
func ExtractFields(text string) ExtractionResult {
	return defaultExtractor.Extract(text)
}

// Extract assembles an ExtractionResult from text. It never fails: fields that
// cannot be recovered carry their default value and a non-MATCHED report.
func (x *FieldExtractor) Extract(text string) ExtractionResult {
	ga, gaRep := x.GeneralAggregate(text)
	exp, expRep := x.ExpirationDate(text)
	prem, premRep := x.Premium(text)

	return ExtractionResult{
		GeneralAggregate:  &ga,
		ExpirationDate:    &exp,
		Premium:           &prem,
		ExtractionSuccess: true,
		Fields: map[string]FieldReport{
			FieldGeneralAggregate: gaRep,
			FieldExpirationDate:   expRep,
			FieldPremium:          premRep,
		},
	}
}

// FromDocument converts doc to text with tx and extracts the fields. A nil
// extractor, an extraction error or blank text all yield defaults with
// ExtractionSuccess=false; none of them is returned as an error.
func (x *FieldExtractor) FromDocument(ctx context.Context, tx extract.TextExtractor, doc []byte) (ExtractionResult, extract.TextExtractionResult) {
	if tx == nil {
		x.logger.Warn("no text extractor configured, using default field values")
		return Defaults(false, OutcomeUnavailable), extract.TextExtractionResult{}
	}
	res, err := tx.Extract(ctx, doc)
	if err != nil {
		x.logger.Warn("text extraction failed, using default field values", "error", err)
		return Defaults(false, OutcomeUnavailable), res
	}
	if !res.Usable() {
		x.logger.Warn("text extraction produced no text, using default field values",
			"method", res.Method, "pages", res.Pages)
		return Defaults(false, OutcomeUnavailable), res
	}
	x.logger.Debug("document text extracted", "method", res.Method, "pages", res.Pages, "bytes", len(res.Text))
	return x.Extract(res.Text), res
}

// FromDocument is FieldExtractor.FromDocument with the package extractor.
func FromDocument(ctx context.Context, tx extract.TextExtractor, doc []byte) ExtractionResult {
	r, _ := defaultExtractor.FromDocument(ctx, tx, doc)
	return r
}

// LogValue lets results be logged as a single structured attribute.
func (r ExtractionResult) LogValue() slog.Value {
	attrs := []slog.Attr{slog.Bool("extraction_success", r.ExtractionSuccess)}
	if r.GeneralAggregate != nil {
		attrs = append(attrs, slog.Float64(FieldGeneralAggregate, *r.GeneralAggregate))
	}
	if r.ExpirationDate != nil {
		attrs = append(attrs, slog.String(FieldExpirationDate, *r.ExpirationDate))
	}
	if r.Premium != nil {
		attrs = append(attrs, slog.Float64(FieldPremium, *r.Premium))
	}
	return slog.GroupValue(attrs...)
}
