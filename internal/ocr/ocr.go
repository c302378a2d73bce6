package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/coi-quote/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir         string
	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	// MinTextChars is the smallest text layer accepted before a PDF is OCR'd instead.
	MinTextChars int
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | constants.TEXT
	Method     string // "plain-text" | "pdf-text" | "pdf-ocr" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 40
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner (tests use a fake).
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	case constants.TEXT:
		res, err = e.extractPlain(path)
	default:
		e.logger.Error("unsupported document extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	return res, err
}

// ExtractBytes sniffs the document format, stages the bytes in a temp file
// for the external tools, and extracts text from it.
func (e *Extractor) ExtractBytes(ctx context.Context, doc []byte) (ExtractionResult, error) {
	if len(doc) == 0 {
		return ExtractionResult{}, fmt.Errorf("empty document")
	}
	format := constants.SniffFormat(doc)
	if format == constants.TEXT {
		start := time.Now()
		txt := Normalize(string(doc))
		return ExtractionResult{
			Text:       txt,
			Pages:      1,
			SourceType: constants.TEXT,
			Method:     "plain-text",
			Duration:   time.Since(start),
			Confidence: heuristicConfidence(txt),
		}, nil
	}

	tmp, err := os.CreateTemp("", "coi-*"+constants.ExtForFormat(format))
	if err != nil {
		return ExtractionResult{SourceType: format}, fmt.Errorf("stage document: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil {
			e.logger.Warn("failed to remove temp document", "path", tmp.Name(), "error", rmErr)
		}
	}()
	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return ExtractionResult{SourceType: format}, fmt.Errorf("stage document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return ExtractionResult{SourceType: format}, fmt.Errorf("stage document: %w", err)
	}

	start := time.Now()
	var res ExtractionResult
	if format == constants.PDF {
		res, err = e.extractPDF(ctx, tmp.Name())
	} else {
		res, err = e.extractImage(ctx, tmp.Name())
	}
	res.Duration = time.Since(start)
	return res, err
}

func (e *Extractor) extractPlain(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.TEXT}, fmt.Errorf("read %s: %w", path, err)
	}
	txt := Normalize(string(b))
	return ExtractionResult{
		Text:       txt,
		Pages:      1,
		SourceType: constants.TEXT,
		Method:     "plain-text",
		Confidence: heuristicConfidence(txt),
	}, nil
}
