package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/coi-quote/internal/entity"
	"github.com/joseph-ayodele/coi-quote/internal/repository"
)

const sheet = "Quotes"

var headers = []string{
	"Created At",
	"Source",
	"Status",
	"General Aggregate",
	"Expiration Date",
	"Current Premium",
	"Our Price",
	"Savings",
	"Savings %",
	"Days To Expiry",
	"Reason",
	"Warnings",
}

// Service produces XLSX workbooks of stored quotes.
type Service struct {
	quotes repository.QuoteRepository
	logger *slog.Logger
}

func NewService(quotes repository.QuoteRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{quotes: quotes, logger: logger}
}

// ExportQuotesXLSX returns an XLSX workbook (as bytes) of quotes created in [from, to].
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all quotes.
func (s *Service) ExportQuotesXLSX(ctx context.Context, from, to *time.Time, eligibleOnly bool) ([]byte, error) {
	start := time.Now()

	filter := repository.ListFilter{EligibleOnly: eligibleOnly}
	if from != nil {
		filter.From = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	}
	if to != nil {
		// inclusive of the whole "to" day
		filter.To = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}
	if from != nil && to == nil {
		today := time.Now().UTC()
		filter.To = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}

	quotes, err := s.quotes.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}

	b, err := WriteQuotesXLSX(quotes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"rows", len(quotes),
		"eligible_only", eligibleOnly,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// WriteQuotesXLSX renders quotes into a single-sheet workbook.
func WriteQuotesXLSX(quotes []*entity.Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}
	money, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00

	for i, q := range quotes {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		writeMoney := func(col int, v any) {
			write(col, v)
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellStyle(sheet, cell, cell, money)
		}

		write(1, q.CreatedAt.UTC().Format(time.RFC3339))
		write(2, q.SourceName)
		write(3, string(q.Status))
		if q.GeneralAggregate != nil {
			writeMoney(4, *q.GeneralAggregate)
		}
		if q.ExpirationDate != nil {
			write(5, *q.ExpirationDate)
		}
		if q.Premium != nil {
			writeMoney(6, *q.Premium)
		}
		if q.Eligible {
			writeMoney(7, q.OurPrice)
			writeMoney(8, q.Savings)
			write(9, q.SavingsPercent)
		}
		if q.DaysToExpiry != nil {
			write(10, *q.DaysToExpiry)
		}
		write(11, truncate(q.Reason, 140))
		write(12, strings.Join(q.Warnings, "; "))
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 22) // created
	_ = f.SetColWidth(sheet, "B", "B", 32) // source
	_ = f.SetColWidth(sheet, "C", "C", 12) // status
	_ = f.SetColWidth(sheet, "D", "I", 16) // amounts
	_ = f.SetColWidth(sheet, "K", "L", 60) // reason, warnings

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
