package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/coi-quote/internal/common"
	repo "github.com/joseph-ayodele/coi-quote/internal/repository"
)

// ConnectDB opens the configured database, pings it and makes sure the
// quotes table exists.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repo.DB, repo.QuoteRepository, error) {
	db, err := repo.Open(ctx, repo.Config{
		Driver:           cfg.Driver,
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := PingDB(ctx, db, 3*time.Second); err != nil {
		db.Close()
		return nil, nil, err
	}

	quotes := repo.NewQuoteRepository(db, logger)
	if err := quotes.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, quotes, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repo.DB, timeout time.Duration) error {
	return db.HealthCheck(ctx, timeout)
}
