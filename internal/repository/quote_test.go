package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/coi-quote/constants"
	"github.com/joseph-ayodele/coi-quote/internal/common"
	"github.com/joseph-ayodele/coi-quote/internal/entity"
)

func newTestRepo(t *testing.T) QuoteRepository {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := Open(ctx, Config{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.HealthCheck(ctx, time.Second))

	repo := NewQuoteRepository(db, logger)
	require.NoError(t, repo.Migrate(ctx))
	// idempotent
	require.NoError(t, repo.Migrate(ctx))
	return repo
}

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }
func intp(v int) *int        { return &v }

func TestQuoteRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created := time.Date(2026, 10, 19, 15, 30, 0, 123000, time.UTC)
	q := &entity.Quote{
		SourceName:        "acme.pdf",
		SourceHash:        "abc123",
		SourceFormat:      constants.PDF,
		TextMethod:        "pdftotext",
		GeneralAggregate:  f64(2_000_000),
		ExpirationDate:    str("12/31/2027"),
		Premium:           f64(3_500),
		ExtractionSuccess: true,
		Eligible:          true,
		Gate:              "ACCEPTED",
		Reason:            "ok",
		OurPrice:          3_150,
		Savings:           350,
		SavingsPercent:    10,
		DaysToExpiry:      intp(438),
		Warnings:          []string{"w1"},
		CreatedAt:         created,
	}
	require.NoError(t, repo.Save(ctx, q))
	require.NotEqual(t, uuid.Nil, q.ID)
	assert.Equal(t, constants.QuoteStatusEligible, q.Status)

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q, got)
}

func TestQuoteRepository_NullableFields(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	q := &entity.Quote{SourceName: "blank.txt", SourceHash: "h", SourceFormat: constants.TEXT, Gate: "AGGREGATE", Reason: "Unable to determine General Aggregate limit"}
	require.NoError(t, repo.Save(ctx, q))

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GeneralAggregate)
	assert.Nil(t, got.ExpirationDate)
	assert.Nil(t, got.Premium)
	assert.Nil(t, got.DaysToExpiry)
	assert.Nil(t, got.Warnings)
	assert.Equal(t, constants.QuoteStatusDegraded, got.Status)
}

func TestQuoteRepository_GetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestQuoteRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, eligible := range []bool{true, false, true, false} {
		require.NoError(t, repo.Save(ctx, &entity.Quote{
			SourceName:        "doc",
			SourceHash:        []string{"a", "b", "a", "c"}[i],
			SourceFormat:      constants.PDF,
			ExtractionSuccess: true,
			Eligible:          eligible,
			CreatedAt:         base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}

	all, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].CreatedAt.After(all[3].CreatedAt), "newest first")

	eligible, err := repo.List(ctx, ListFilter{EligibleOnly: true})
	require.NoError(t, err)
	assert.Len(t, eligible, 2)

	window, err := repo.List(ctx, ListFilter{From: base.Add(24 * time.Hour), To: base.Add(3 * 24 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	byHash, err := repo.List(ctx, ListFilter{SourceHash: "a"})
	require.NoError(t, err)
	assert.Len(t, byHash, 2)

	limited, err := repo.List(ctx, ListFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "c", limited[0].SourceHash)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"}, nil)
	assert.Error(t, err)
}
