package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/coi-quote/internal/coi"
	"github.com/joseph-ayodele/coi-quote/internal/common"
	"github.com/joseph-ayodele/coi-quote/internal/eligibility"
	"github.com/joseph-ayodele/coi-quote/internal/export"
	"github.com/joseph-ayodele/coi-quote/internal/ingest"
	"github.com/joseph-ayodele/coi-quote/internal/pipeline"
	"github.com/joseph-ayodele/coi-quote/internal/repository"
)

// MaxDocumentBytes bounds an uploaded certificate.
const MaxDocumentBytes = 16 << 20

type documentRequest struct {
	SourceName     string `json:"source_name"`
	DocumentBase64 string `json:"document_base64"`
	Text           string `json:"text"`
}

type listRequest struct {
	ID           string  `json:"id"`
	FromDate     string  `json:"from_date"`
	ToDate       string  `json:"to_date"`
	EligibleOnly bool    `json:"eligible_only"`
	Limit        float64 `json:"limit"`
}

// QuoteServer implements QuoteServiceServer on top of the quoting pipeline.
type QuoteServer struct {
	proc   *pipeline.Processor
	quotes repository.QuoteRepository
	export *export.Service
	logger *slog.Logger
}

var errNoStorage = common.NewAppError("STORAGE_UNCONFIGURED", "quote storage is not configured", common.ErrInternal)

func NewQuoteServer(proc *pipeline.Processor, quotes repository.QuoteRepository, logger *slog.Logger) *QuoteServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &QuoteServer{proc: proc, quotes: quotes, logger: logger}
	if quotes != nil {
		s.export = export.NewService(quotes, logger)
	}
	return s
}

// ExtractFields returns the extraction result for {text} or {document_base64}.
func (s *QuoteServer) ExtractFields(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	doc, err := s.readDocument(req)
	if err != nil {
		log.Error("invalid extract request", "error", err)
		return nil, common.ToStatus(err)
	}
	result, text := s.proc.Fields.FromDocument(ctx, s.proc.Text, doc.Data)
	log.Info("fields extracted", "source", doc.Name, "method", text.Method, "fields", result)
	return toStruct(map[string]any{
		"result":      result,
		"text_method": text.Method,
		"pages":       text.Pages,
	})
}

// Evaluate applies the eligibility gates to {result: ExtractionResult}.
func (s *QuoteServer) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	raw, err := rawField(req, "result")
	if err != nil || raw == nil {
		return nil, common.InvalidArgumentError("result is required")
	}
	result, err := coi.DecodeResult(raw)
	if err != nil {
		log.Error("evaluate request failed schema validation", "error", err)
		return nil, common.InvalidArgumentErrorf("result invalid: %v", err)
	}
	d := s.proc.Engine.Evaluate(result)
	log.Info("evaluated", "eligible", d.Eligible, "gate", d.Gate)
	return toStruct(d)
}

// Quote runs the whole pipeline on an uploaded certificate and stores the quote.
func (s *QuoteServer) Quote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	doc, err := s.readDocument(req)
	if err != nil {
		log.Error("invalid quote request", "error", err)
		return nil, common.ToStatus(err)
	}
	out, err := s.proc.Process(ctx, doc)
	if err != nil {
		log.Error("quote failed", "source", doc.Name, "error", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{
		"quote":      out.Quote,
		"extraction": out.Extraction,
		"decision":   out.Decision,
		"summary":    eligibility.Summary(out.Decision),
	})
}

func (s *QuoteServer) GetQuote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	if s.quotes == nil {
		return nil, common.ToStatus(errNoStorage)
	}
	var r listRequest
	if err := decodeStruct(req, &r); err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	v := common.NewValidator().Field("id", strings.TrimSpace(r.ID), common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	q, err := s.quotes.GetByID(ctx, uuid.MustParse(strings.TrimSpace(r.ID)))
	if err != nil {
		log.Error("failed to get quote", "id", r.ID, "error", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{"quote": q})
}

// ListQuotes returns stored quotes newest first, optionally bounded by
// from_date/to_date (YYYY-MM-DD, inclusive).
func (s *QuoteServer) ListQuotes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	if s.quotes == nil {
		return nil, common.ToStatus(errNoStorage)
	}
	r, from, to, err := decodeWindow(req)
	if err != nil {
		return nil, err
	}
	f := repository.ListFilter{EligibleOnly: r.EligibleOnly, Limit: int(r.Limit)}
	if from != nil {
		f.From = *from
	}
	if to != nil {
		f.To = to.AddDate(0, 0, 1)
	}
	quotes, err := s.quotes.List(ctx, f)
	if err != nil {
		log.Error("failed to list quotes", "error", err)
		return nil, common.ToStatus(err)
	}
	log.Info("quotes listed", "count", len(quotes))
	return toStruct(map[string]any{"quotes": quotes, "count": len(quotes)})
}

// ExportQuotes returns an XLSX workbook as xlsx_base64.
func (s *QuoteServer) ExportQuotes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	if s.export == nil {
		return nil, common.ToStatus(errNoStorage)
	}
	r, from, to, err := decodeWindow(req)
	if err != nil {
		return nil, err
	}
	b, err := s.export.ExportQuotesXLSX(ctx, from, to, r.EligibleOnly)
	if err != nil {
		log.Error("export failed", "error", err)
		return nil, common.InternalErrorf("export failed: %v", err)
	}
	return toStruct(map[string]any{
		"filename":    "quotes.xlsx",
		"xlsx_base64": base64.StdEncoding.EncodeToString(b),
	})
}

func (s *QuoteServer) readDocument(req *structpb.Struct) (ingest.Document, error) {
	var r documentRequest
	if err := decodeStruct(req, &r); err != nil {
		return ingest.Document{}, common.NewAppError("BAD_REQUEST", err.Error(), common.ErrInvalidInput)
	}
	var data []byte
	switch {
	case r.DocumentBase64 != "":
		b, err := base64.StdEncoding.DecodeString(r.DocumentBase64)
		if err != nil {
			return ingest.Document{}, common.NewAppError("BAD_REQUEST", "document_base64 is not valid base64", common.ErrInvalidInput)
		}
		data = b
	default:
		data = []byte(r.Text)
	}
	v := common.NewValidator().Field("document", data, common.Required, common.MaxBytes(MaxDocumentBytes))
	if err := v.Err(); err != nil {
		return ingest.Document{}, err
	}
	name := strings.TrimSpace(r.SourceName)
	if name == "" {
		name = "upload"
	}
	return ingest.Document{Name: name, HashHex: ingest.HashBytes(data), Data: data, ReceivedAt: time.Now().UTC()}, nil
}

func decodeWindow(req *structpb.Struct) (listRequest, *time.Time, *time.Time, error) {
	var r listRequest
	if err := decodeStruct(req, &r); err != nil {
		return r, nil, nil, common.InvalidArgumentError(err.Error())
	}
	parse := func(field, s string) (*time.Time, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, common.InvalidArgumentErrorf("%s must be YYYY-MM-DD", field)
		}
		return &t, nil
	}
	from, err := parse("from_date", r.FromDate)
	if err != nil {
		return r, nil, nil, err
	}
	to, err := parse("to_date", r.ToDate)
	if err != nil {
		return r, nil, nil, err
	}
	if from != nil && to != nil {
		if verr := common.TimeOrder(*from, *to); verr != nil {
			return r, nil, nil, common.InvalidArgumentError(verr.Error())
		}
	}
	return r, from, to, nil
}
