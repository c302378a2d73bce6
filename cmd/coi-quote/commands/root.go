package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/common"
	"github.com/joseph-ayodele/coi-quote/internal/eligibility"
	"github.com/joseph-ayodele/coi-quote/internal/extract"
	"github.com/joseph-ayodele/coi-quote/internal/ocr"
	"github.com/joseph-ayodele/coi-quote/internal/pipeline"
	"github.com/joseph-ayodele/coi-quote/internal/repository"
	"github.com/joseph-ayodele/coi-quote/internal/server"
)

// app is the dependency graph shared by subcommands.
type app struct {
	cfg    *common.Config
	logger *slog.Logger
	engine *eligibility.Engine
	text   extract.TextExtractor
	proc   *pipeline.Processor
}

var (
	rulesFile  string
	dbDriver   string
	dbURL      string
	logLevel   string
	logFormat  string
	jsonOutput bool

	appCtx *app
)

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coi-quote",
		Short:         "Quote commercial general liability policies from certificates of insurance",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rulesFile, "rules", "", "rules YAML file (default $RULES_FILE or rules.yaml)")
	root.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "sqlite or postgres (default $DB_DRIVER)")
	root.PersistentFlags().StringVar(&dbURL, "db-url", "", "database DSN (default $DB_URL)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json (default $LOG_FORMAT)")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")

	root.AddCommand(
		extractCmd(),
		evaluateCmd(),
		quoteCmd(),
		sampleCmd(),
		batchCmd(),
		watchCmd(),
		exportCmd(),
		serveCmd(),
		ocrCmd(),
		dbHealthCmd(),
	)
	return root
}

func newApp(logOut io.Writer) (*app, error) {
	cfg := common.LoadConfig()
	if rulesFile != "" {
		cfg.RulesFile = rulesFile
	}
	if dbDriver != "" {
		cfg.Database.Driver = dbDriver
	}
	if dbURL != "" {
		cfg.Database.DSN = dbURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Log.NewLogger(logOut)
	slog.SetDefault(logger)

	rules, err := eligibility.LoadRules(cfg.RulesFile)
	if err != nil {
		logger.Error("failed to load rules", "path", cfg.RulesFile, "error", err)
		return nil, err
	}
	engine := eligibility.NewEngine(rules, eligibility.WithLogger(logger))

	ex := ocr.NewExtractor(ocr.Config{
		Pdftotext:           cfg.OCR.Pdftotext,
		Pdftoppm:            cfg.OCR.Pdftoppm,
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		MaxPages:            cfg.OCR.MaxPages,
		EnableTSVConfidence: true,
		PSM:                 6,
	}, logger)
	text := extract.NewOCRAdapter(ex, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		text:   text,
		proc:   pipeline.NewProcessor(logger, text, engine, nil),
	}, nil
}

// openStore connects to the configured database and attaches it to the processor.
func (a *app) openStore(ctx context.Context) (*repository.DB, repository.QuoteRepository, error) {
	db, quotes, err := server.ConnectDB(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return nil, nil, err
	}
	a.proc.Quotes = quotes
	return db, quotes, nil
}

// withTimeout bounds one document's processing by the OCR timeout.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.OCR.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.OCR.Timeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
