package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/coi-quote/constants"
	"github.com/joseph-ayodele/coi-quote/internal/coi"
	"github.com/joseph-ayodele/coi-quote/internal/eligibility"
	"github.com/joseph-ayodele/coi-quote/internal/entity"
	"github.com/joseph-ayodele/coi-quote/internal/extract"
	"github.com/joseph-ayodele/coi-quote/internal/ingest"
	"github.com/joseph-ayodele/coi-quote/internal/repository"
)

// Outcome is everything one pass over a certificate produced.
type Outcome struct {
	Quote      *entity.Quote                `json:"quote"`
	Extraction coi.ExtractionResult         `json:"extraction"`
	Decision   eligibility.Decision         `json:"decision"`
	Text       extract.TextExtractionResult `json:"-"`
}

// Processor coordinates text extraction, field extraction, the eligibility
// gates and, when a repository is configured, persistence of the quote.
type Processor struct {
	Logger   *slog.Logger
	Text     extract.TextExtractor
	Fields   *coi.FieldExtractor
	Engine   *eligibility.Engine
	Quotes   repository.QuoteRepository // optional
	Ingestor *ingest.FSIngestor
}

func NewProcessor(logger *slog.Logger, text extract.TextExtractor, engine *eligibility.Engine, quotes repository.QuoteRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = eligibility.NewEngine(eligibility.DefaultRules(), eligibility.WithLogger(logger))
	}
	return &Processor{
		Logger:   logger,
		Text:     text,
		Fields:   coi.NewFieldExtractor(logger),
		Engine:   engine,
		Quotes:   quotes,
		Ingestor: ingest.NewFSIngestor(logger),
	}
}

// ProcessFile reads path from disk and runs Process on it.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Outcome, error) {
	doc, err := p.Ingestor.ReadDocument(ctx, path)
	if err != nil {
		p.Logger.Error("processor.read.failed", "path", path, "err", err)
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Process(ctx, doc)
}

// Process quotes one certificate. Extraction problems degrade to default field
// values rather than failing; only persistence errors are returned.
func (p *Processor) Process(ctx context.Context, doc ingest.Document) (*Outcome, error) {
	start := time.Now()

	// 1) document -> text -> fields
	fields, text := p.Fields.FromDocument(ctx, p.Text, doc.Data)
	p.Logger.Info("processor.extract.ok",
		"source", doc.Name,
		"method", text.Method,
		"pages", text.Pages,
		"confidence", text.Confidence,
		"fields", fields,
	)

	// 2) fields -> decision
	decision := p.Engine.Evaluate(fields)

	format := doc.Format
	if format == "" {
		format = text.SourceType
	}
	if format == "" && len(doc.Data) > 0 {
		format = constants.SniffFormat(doc.Data)
	}

	warnings := append([]string(nil), text.Warnings...)
	if format == constants.IMAGE && text.Confidence > 0 && text.Confidence < constants.ImageConfidenceThreshold {
		p.Logger.Warn("image ocr confidence low; needs review", "source", doc.Name, "conf", text.Confidence)
		warnings = append(warnings, fmt.Sprintf("low ocr confidence %.2f; review extracted values", text.Confidence))
	}
	warnings = append(warnings, decision.Warnings...)

	q := &entity.Quote{
		SourceName:        doc.Name,
		SourceHash:        doc.HashHex,
		SourceFormat:      format,
		TextMethod:        text.Method,
		GeneralAggregate:  fields.GeneralAggregate,
		ExpirationDate:    fields.ExpirationDate,
		Premium:           fields.Premium,
		ExtractionSuccess: fields.ExtractionSuccess,
		Eligible:          decision.Eligible,
		Gate:              string(decision.Gate),
		Reason:            decision.Reason,
		OurPrice:          decision.OurPrice,
		Savings:           decision.Savings,
		SavingsPercent:    decision.SavingsPercent,
		DaysToExpiry:      decision.DaysToExpiry,
		Status:            entity.StatusFor(fields.ExtractionSuccess, decision.Eligible),
		Warnings:          warnings,
	}

	// 3) persist
	if p.Quotes != nil {
		if err := p.Quotes.Save(ctx, q); err != nil {
			p.Logger.Error("processor.save.failed", "source", doc.Name, "err", err)
			return nil, err
		}
	}

	p.Logger.Info("processor.quote.ok",
		"source", doc.Name,
		"status", q.Status,
		"gate", decision.Gate,
		"eligible", decision.Eligible,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Outcome{Quote: q, Extraction: fields, Decision: decision, Text: text}, nil
}
