package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/coi-quote/constants"
	"github.com/joseph-ayodele/coi-quote/internal/common"
	"github.com/joseph-ayodele/coi-quote/internal/entity"
)

const quotesTable = "quotes"

var quoteColumns = []string{
	"id", "source_name", "source_hash", "source_format", "text_method",
	"general_aggregate", "expiration_date", "premium", "extraction_success",
	"eligible", "gate", "reason", "our_price", "savings", "savings_percent",
	"days_to_expiry", "status", "warnings", "created_at",
}

// ListFilter narrows List. Zero values mean "no bound".
type ListFilter struct {
	From         time.Time
	To           time.Time
	EligibleOnly bool
	SourceHash   string
	Limit        int
}

type QuoteRepository interface {
	Migrate(ctx context.Context) error
	Save(ctx context.Context, q *entity.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error)
	List(ctx context.Context, f ListFilter) ([]*entity.Quote, error)
}

type quoteRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewQuoteRepository(db *DB, logger *slog.Logger) QuoteRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &quoteRepository{db: db, logger: logger}
}

// Migrate creates the quotes table and its index when missing.
func (r *quoteRepository) Migrate(ctx context.Context) error {
	float, boolean, bigint := "REAL", "BOOLEAN", "INTEGER"
	if r.db.Dialect == dialect.Postgres {
		float, bigint = "DOUBLE PRECISION", "BIGINT"
	}
	query, args := r.db.Builder().CreateTable(quotesTable).IfNotExists().
		Columns(
			entsql.Column("id").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("source_name").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("source_hash").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("source_format").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("text_method").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("general_aggregate").Type(float),
			entsql.Column("expiration_date").Type("TEXT"),
			entsql.Column("premium").Type(float),
			entsql.Column("extraction_success").Type(boolean).Attr("NOT NULL"),
			entsql.Column("eligible").Type(boolean).Attr("NOT NULL"),
			entsql.Column("gate").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("reason").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("our_price").Type(float).Attr("NOT NULL"),
			entsql.Column("savings").Type(float).Attr("NOT NULL"),
			entsql.Column("savings_percent").Type(float).Attr("NOT NULL"),
			entsql.Column("days_to_expiry").Type(bigint),
			entsql.Column("status").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("warnings").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("created_at").Type(bigint).Attr("NOT NULL"),
		).
		PrimaryKey("id").
		Query()

	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to create quotes table", "error", err)
		return common.WrapError(err, "migrate quotes")
	}
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS quotes_created_at ON quotes (created_at)",
		"CREATE INDEX IF NOT EXISTS quotes_source_hash ON quotes (source_hash)",
	} {
		if err := r.db.Driver.Exec(ctx, stmt, []any{}, nil); err != nil {
			r.logger.Error("failed to create quotes index", "error", err)
			return common.WrapError(err, "migrate quotes")
		}
	}
	r.logger.Debug("quotes table ready", "dialect", r.db.Dialect)
	return nil
}

// Save inserts q, assigning an ID and CreatedAt when they are unset.
func (r *quoteRepository) Save(ctx context.Context, q *entity.Quote) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if q.Status == "" {
		q.Status = entity.StatusFor(q.ExtractionSuccess, q.Eligible)
	}
	warnings := q.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	wb, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}

	query, args := r.db.Builder().Insert(quotesTable).
		Columns(quoteColumns...).
		Values(
			q.ID.String(), q.SourceName, q.SourceHash, q.SourceFormat, q.TextMethod,
			nullFloat(q.GeneralAggregate), nullString(q.ExpirationDate), nullFloat(q.Premium), q.ExtractionSuccess,
			q.Eligible, q.Gate, q.Reason, q.OurPrice, q.Savings, q.SavingsPercent,
			nullInt(q.DaysToExpiry), string(q.Status), string(wb), q.CreatedAt.UTC().UnixMicro(),
		).
		Query()

	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to save quote", "id", q.ID, "source", q.SourceName, "error", err)
		return common.NewAppError("DB_ERROR", "save quote", errors.Join(common.ErrDatabase, err))
	}
	r.logger.Debug("quote saved", "id", q.ID, "status", q.Status)
	return nil
}

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	b := r.db.Builder()
	query, args := b.Select(quoteColumns...).
		From(b.Table(quotesTable)).
		Where(entsql.EQ("id", id.String())).
		Query()

	quotes, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to get quote", "id", id, "error", err)
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("quote %s", id), common.ErrNotFound)
	}
	return quotes[0], nil
}

// List returns quotes newest first.
func (r *quoteRepository) List(ctx context.Context, f ListFilter) ([]*entity.Quote, error) {
	b := r.db.Builder()
	sel := b.Select(quoteColumns...).From(b.Table(quotesTable))
	if !f.From.IsZero() {
		sel = sel.Where(entsql.GTE("created_at", f.From.UTC().UnixMicro()))
	}
	if !f.To.IsZero() {
		sel = sel.Where(entsql.LT("created_at", f.To.UTC().UnixMicro()))
	}
	if f.EligibleOnly {
		sel = sel.Where(entsql.EQ("eligible", true))
	}
	if f.SourceHash != "" {
		sel = sel.Where(entsql.EQ("source_hash", f.SourceHash))
	}
	sel = sel.OrderBy(entsql.Desc("created_at"), "id")
	if f.Limit > 0 {
		sel = sel.Limit(f.Limit)
	}
	query, args := sel.Query()

	quotes, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to list quotes", "error", err)
		return nil, err
	}
	return quotes, nil
}

func (r *quoteRepository) query(ctx context.Context, query string, args []any) ([]*entity.Quote, error) {
	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return out, nil
}

func scanQuote(rows *entsql.Rows) (*entity.Quote, error) {
	var (
		q         entity.Quote
		id        string
		status    string
		warnings  string
		createdAt int64
		ga, prem  sql.NullFloat64
		exp       sql.NullString
		days      sql.NullInt64
	)
	err := rows.Scan(
		&id, &q.SourceName, &q.SourceHash, &q.SourceFormat, &q.TextMethod,
		&ga, &exp, &prem, &q.ExtractionSuccess,
		&q.Eligible, &q.Gate, &q.Reason, &q.OurPrice, &q.Savings, &q.SavingsPercent,
		&days, &status, &warnings, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan quote: %w", err)
	}
	if q.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse quote id %q: %w", id, err)
	}
	if ga.Valid {
		q.GeneralAggregate = &ga.Float64
	}
	if exp.Valid {
		q.ExpirationDate = &exp.String
	}
	if prem.Valid {
		q.Premium = &prem.Float64
	}
	if days.Valid {
		d := int(days.Int64)
		q.DaysToExpiry = &d
	}
	if warnings != "" {
		if err := json.Unmarshal([]byte(warnings), &q.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
	}
	if len(q.Warnings) == 0 {
		q.Warnings = nil
	}
	q.Status = constants.QuoteStatus(status)
	q.CreatedAt = time.UnixMicro(createdAt).UTC()
	return &q, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
