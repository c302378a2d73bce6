package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/coi-quote/constants"
	"github.com/joseph-ayodele/coi-quote/internal/eligibility"
	"github.com/joseph-ayodele/coi-quote/internal/extract"
	"github.com/joseph-ayodele/coi-quote/internal/ingest"
	"github.com/joseph-ayodele/coi-quote/internal/repository"
)

const certificate = `CERTIFICATE OF LIABILITY INSURANCE
GENERAL AGGREGATE $2,000,000
TOTAL ANNUAL PREMIUM $3,500.00
POLICY EXP 12/31/2027`

var now = time.Date(2026, time.October, 19, 15, 30, 0, 0, time.UTC)

type stubText struct {
	res extract.TextExtractionResult
	err error
}

func (s stubText) Extract(context.Context, []byte) (extract.TextExtractionResult, error) {
	return s.res, s.err
}

func newProcessor(t *testing.T, tx extract.TextExtractor, withRepo bool) (*Processor, repository.QuoteRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := eligibility.NewEngine(eligibility.DefaultRules(),
		eligibility.WithClock(func() time.Time { return now }),
		eligibility.WithLogger(logger))

	var repo repository.QuoteRepository
	if withRepo {
		db, err := repository.Open(context.Background(), repository.Config{Driver: "sqlite", DSN: ":memory:"}, logger)
		require.NoError(t, err)
		t.Cleanup(db.Close)
		repo = repository.NewQuoteRepository(db, logger)
		require.NoError(t, repo.Migrate(context.Background()))
	}
	return NewProcessor(logger, tx, engine, repo), repo
}

func TestProcess_EligibleAndPersisted(t *testing.T) {
	ctx := context.Background()
	p, repo := newProcessor(t, stubText{res: extract.TextExtractionResult{Text: certificate, Method: "plain-text", SourceType: constants.TEXT}}, true)

	out, err := p.Process(ctx, ingest.Document{Name: "acme.txt", HashHex: "h1", Format: constants.TEXT, Data: []byte(certificate)})
	require.NoError(t, err)

	assert.True(t, out.Decision.Eligible)
	assert.Equal(t, eligibility.GateAccepted, out.Decision.Gate)
	assert.Equal(t, 3_150.0, out.Decision.OurPrice)
	assert.Equal(t, 350.0, out.Decision.Savings)
	assert.Equal(t, constants.QuoteStatusEligible, out.Quote.Status)
	assert.Equal(t, "plain-text", out.Quote.TextMethod)

	stored, err := repo.GetByID(ctx, out.Quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme.txt", stored.SourceName)
	assert.Equal(t, 2_000_000.0, *stored.GeneralAggregate)
	assert.Equal(t, "12/31/2027", *stored.ExpirationDate)
	assert.True(t, stored.Eligible)
}

func TestProcess_IneligibleAggregate(t *testing.T) {
	text := "GENERAL AGGREGATE $5,000,000\nTOTAL ANNUAL PREMIUM $3,500.00\nEXP 12/31/2027"
	p, _ := newProcessor(t, stubText{res: extract.TextExtractionResult{Text: text}}, false)

	out, err := p.Process(context.Background(), ingest.Document{Name: "big.txt", Data: []byte(text)})
	require.NoError(t, err)
	assert.False(t, out.Decision.Eligible)
	assert.Equal(t, eligibility.GateAggregate, out.Decision.Gate)
	assert.Equal(t, "General Aggregate $5,000,000 exceeds our maximum limit of $2,000,000", out.Decision.Reason)
	assert.Equal(t, constants.QuoteStatusIneligible, out.Quote.Status)
	assert.Equal(t, constants.TEXT, out.Quote.SourceFormat)
}

func TestProcess_ExtractionFailureDegrades(t *testing.T) {
	p, _ := newProcessor(t, stubText{err: errors.New("tesseract missing")}, false)

	out, err := p.Process(context.Background(), ingest.Document{Name: "scan.png", Format: constants.IMAGE, Data: []byte("\x89PNG\r\n\x1a\n")})
	require.NoError(t, err)
	assert.False(t, out.Extraction.ExtractionSuccess)
	assert.Equal(t, constants.QuoteStatusDegraded, out.Quote.Status)
	// default expiration 01/01/2026 is already past
	assert.Equal(t, eligibility.GateExpiry, out.Decision.Gate)
}

func TestProcess_LowConfidenceImageWarns(t *testing.T) {
	p, _ := newProcessor(t, stubText{res: extract.TextExtractionResult{Text: certificate, Confidence: 0.4, SourceType: constants.IMAGE}}, false)

	out, err := p.Process(context.Background(), ingest.Document{Name: "scan.png", Data: []byte("img")})
	require.NoError(t, err)
	require.NotEmpty(t, out.Quote.Warnings)
	assert.Contains(t, out.Quote.Warnings[0], "low ocr confidence")
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acme.txt")
	require.NoError(t, os.WriteFile(path, []byte(certificate), 0o644))

	p, _ := newProcessor(t, stubText{res: extract.TextExtractionResult{Text: certificate}}, false)
	out, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "acme.txt", out.Quote.SourceName)
	assert.Len(t, out.Quote.SourceHash, 64)

	_, err = p.ProcessFile(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}
