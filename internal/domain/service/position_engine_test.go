package service

import (
	"math"
	"testing"
	"time"

	"folio/internal/domain/model"
)

var (
	aapl = model.Asset{ID: 1, Symbol: "AAPL", Type: model.AssetStock, Currency: "USD"}
	btc  = model.Asset{ID: 2, Symbol: "BTC", Type: model.AssetCrypto, Currency: "USD"}
	voo  = model.Asset{ID: 3, Symbol: "VOO", Type: model.AssetETF, Currency: "USD"}
)

func assetIndex(assets ...model.Asset) map[int64]model.Asset {
	m := make(map[int64]model.Asset, len(assets))
	for _, a := range assets {
		m[a.ID] = a
	}
	return m
}

func tx(assetID int64, side model.Side, qty, price, fee float64, day int) model.Transaction {
	return model.Transaction{
		User:      "you",
		AssetID:   assetID,
		Side:      side,
		Qty:       qty,
		Price:     price,
		Fee:       fee,
		Timestamp: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFoldClosedPositionOmitted(t *testing.T) {
	txs := []model.Transaction{
		tx(aapl.ID, model.SideBuy, 10, 100, 0, 1),
		tx(aapl.ID, model.SideSell, 10, 120, 0, 2),
	}
	got := Fold(txs, assetIndex(aapl), nil)
	if len(got) != 0 {
		t.Fatalf("expected closed position to be omitted, got %+v", got)
	}
}

func TestFoldAverageCostIgnoresSells(t *testing.T) {
	txs := []model.Transaction{
		tx(aapl.ID, model.SideBuy, 10, 100, 10, 1),
		tx(aapl.ID, model.SideBuy, 10, 120, 0, 2),
	}
	got := Fold(txs, assetIndex(aapl), nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 position, got %d", len(got))
	}
	if got[0].NetQty != 20 || got[0].AvgCost != 110.5 {
		t.Errorf("expected net=20 avg=110.5, got net=%v avg=%v", got[0].NetQty, got[0].AvgCost)
	}

	txs = append(txs, tx(aapl.ID, model.SideSell, 5, 130, 0, 3))
	got = Fold(txs, assetIndex(aapl), nil)
	if got[0].NetQty != 15 || got[0].AvgCost != 110.5 {
		t.Errorf("after sell expected net=15 avg=110.5, got net=%v avg=%v", got[0].NetQty, got[0].AvgCost)
	}
	if got[0].LastPrice != nil || got[0].MarketValue != 0 || got[0].UnrealizedPL != 0 {
		t.Errorf("expected no valuation without a price, got %+v", got[0])
	}
}

func TestFoldValuation(t *testing.T) {
	txs := []model.Transaction{
		tx(aapl.ID, model.SideBuy, 10, 100, 10, 1),
		tx(aapl.ID, model.SideBuy, 10, 120, 0, 2),
		tx(aapl.ID, model.SideSell, 5, 130, 0, 3),
	}
	latest := map[int64]model.PriceSample{aapl.ID: {AssetID: aapl.ID, Date: "2024-01-05", Close: 150, Source: "manual"}}
	got := Fold(txs, assetIndex(aapl), latest)
	p := got[0]
	if p.LastPrice == nil || *p.LastPrice != 150 {
		t.Fatalf("expected last price 150, got %v", p.LastPrice)
	}
	if !near(p.MarketValue, 2250) {
		t.Errorf("market value: expected 2250, got %v", p.MarketValue)
	}
	if !near(p.UnrealizedPL, 15*(150-110.5)) {
		t.Errorf("unrealized pl: expected %v, got %v", 15*(150-110.5), p.UnrealizedPL)
	}
}

func TestFoldShortHasZeroMarketValue(t *testing.T) {
	txs := []model.Transaction{
		tx(btc.ID, model.SideBuy, 5, 100, 0, 1),
		tx(btc.ID, model.SideSell, 10, 110, 0, 2),
	}
	latest := map[int64]model.PriceSample{btc.ID: {AssetID: btc.ID, Date: "2024-01-03", Close: 90, Source: "manual"}}
	got := Fold(txs, assetIndex(btc), latest)
	if len(got) != 1 {
		t.Fatalf("expected short position to be kept, got %d rows", len(got))
	}
	p := got[0]
	if p.NetQty != -5 {
		t.Errorf("expected net=-5, got %v", p.NetQty)
	}
	if p.MarketValue != 0 {
		t.Errorf("short position must have zero market value, got %v", p.MarketValue)
	}
	if !near(p.UnrealizedPL, -5*(90-100)) {
		t.Errorf("unrealized pl: expected 50, got %v", p.UnrealizedPL)
	}
}

func TestFoldSellOnlyHasZeroAverageCost(t *testing.T) {
	txs := []model.Transaction{tx(voo.ID, model.SideSell, 3, 400, 1, 1)}
	got := Fold(txs, assetIndex(voo), nil)
	if len(got) != 1 || got[0].AvgCost != 0 || got[0].NetQty != -3 {
		t.Fatalf("expected net=-3 avg=0, got %+v", got)
	}
}

func TestFoldCashFlowEventsIgnored(t *testing.T) {
	base := []model.Transaction{tx(aapl.ID, model.SideBuy, 10, 100, 0, 1)}
	want := Fold(base, assetIndex(aapl), nil)

	tests := []struct {
		name string
		side model.Side
	}{
		{"dividend", model.SideDividend},
		{"deposit", model.SideDeposit},
		{"withdrawal", model.SideWithdrawal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := append([]model.Transaction{}, base...)
			txs = append(txs, tx(aapl.ID, tt.side, 1000, 999, 5, 2))
			got := Fold(txs, assetIndex(aapl), nil)
			if len(got) != 1 || got[0].NetQty != want[0].NetQty || got[0].AvgCost != want[0].AvgCost {
				t.Errorf("%s changed the position: want %+v, got %+v", tt.name, want, got)
			}
		})
	}

	// an asset only ever touched by cash-flow events yields no row
	got := Fold([]model.Transaction{tx(btc.ID, model.SideDividend, 1, 1, 0, 1)}, assetIndex(btc), nil)
	if len(got) != 0 {
		t.Errorf("expected no positions from cash-flow only history, got %+v", got)
	}
}

func TestFoldSortedBySymbol(t *testing.T) {
	txs := []model.Transaction{
		tx(voo.ID, model.SideBuy, 1, 400, 0, 1),
		tx(btc.ID, model.SideBuy, 1, 40000, 0, 2),
		tx(aapl.ID, model.SideBuy, 1, 180, 0, 3),
		tx(btc.ID, model.SideBuy, 1, 42000, 0, 4),
	}
	got := Fold(txs, assetIndex(aapl, btc, voo), nil)
	want := []string{"AAPL", "BTC", "VOO"}
	if len(got) != len(want) {
		t.Fatalf("expected %d positions, got %d", len(want), len(got))
	}
	for i, sym := range want {
		if got[i].Symbol != sym {
			t.Errorf("position %d: expected %s, got %s", i, sym, got[i].Symbol)
		}
	}
}

func TestFoldEpsilonTreatsDustAsClosed(t *testing.T) {
	txs := []model.Transaction{
		tx(btc.ID, model.SideBuy, 0.1, 100, 0, 1),
		tx(btc.ID, model.SideBuy, 0.2, 100, 0, 2),
		tx(btc.ID, model.SideSell, 0.3, 100, 0, 3),
	}
	if got := Fold(txs, assetIndex(btc), nil); len(got) != 0 {
		t.Errorf("expected 0.1+0.2-0.3 to close the position, got %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	last := 10.0
	positions := []model.Position{
		{Symbol: "AAPL", MarketValue: 300, UnrealizedPL: 50, LastPrice: &last},
		{Symbol: "BTC", MarketValue: 100, UnrealizedPL: -20, LastPrice: &last},
		{Symbol: "VOO"},
	}
	s := Summarize("you", positions)
	if s.User != "you" || s.TotalValue != 400 || s.TotalPL != 30 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if len(s.Allocations) != 3 {
		t.Fatalf("expected 3 allocations, got %d", len(s.Allocations))
	}
	if !near(s.Allocations[0].Weight, 0.75) || !near(s.Allocations[1].Weight, 0.25) || s.Allocations[2].Weight != 0 {
		t.Errorf("unexpected weights: %+v", s.Allocations)
	}

	empty := Summarize("nobody", nil)
	if empty.TotalValue != 0 || len(empty.Allocations) != 0 {
		t.Errorf("expected empty summary, got %+v", empty)
	}
}
