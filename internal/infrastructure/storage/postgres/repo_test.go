package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"folio/internal/domain/model"
)

// setupRepo connects to FOLIO_TEST_POSTGRES_URL; without it the test is skipped.
func setupRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := os.Getenv("FOLIO_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("FOLIO_TEST_POSTGRES_URL not set")
	}
	repo, err := New(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestPostgresRepoRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	sym := fmt.Sprintf("T%d", time.Now().UnixNano())
	user := "test-" + sym

	id, err := repo.InsertAsset(ctx, &model.Asset{Symbol: sym, Type: model.AssetStock, Currency: "USD"})
	if err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}
	if _, err := repo.InsertAsset(ctx, &model.Asset{Symbol: sym, Type: model.AssetStock, Currency: "USD"}); !errors.Is(err, model.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, side := range []model.Side{model.SideBuy, model.SideSell} {
		if _, err := repo.InsertTransaction(ctx, &model.Transaction{User: user, AssetID: id, Side: side, Qty: 1, Price: 10, Timestamp: ts}); err != nil {
			t.Fatalf("InsertTransaction: %v", err)
		}
		ts = ts.Add(time.Hour)
	}
	txs, err := repo.ListTransactions(ctx, user, 10)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 2 || txs[0].Side != model.SideSell || txs[0].Symbol != sym {
		t.Errorf("unexpected listing: %+v", txs)
	}

	for _, c := range []float64{1, 2} {
		if err := repo.UpsertPrice(ctx, &model.PriceSample{AssetID: id, Date: "2024-01-02", Close: c, Source: "manual"}); err != nil {
			t.Fatalf("UpsertPrice: %v", err)
		}
	}
	latest, err := repo.LatestPrice(ctx, id)
	if err != nil || latest == nil || latest.Close != 2 {
		t.Errorf("expected overwritten close 2, got %+v, %v", latest, err)
	}
}
