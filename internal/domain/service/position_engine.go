package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"folio/internal/domain/model"
)

// ZeroQtyEpsilon below this absolute net quantity a position counts as closed.
var ZeroQtyEpsilon = decimal.New(1, -9)

// lotTotals accumulates one asset's buy/sell totals during a fold.
type lotTotals struct {
	buyQty  decimal.Decimal
	buyCost decimal.Decimal // qty*price + fee over every buy ever executed
	sellQty decimal.Decimal
}

// Fold derives positions from a user's transactions (timestamp ascending),
// the assets they reference and the latest known sample per asset.
//
// Accounting rules:
//   - sells reduce net quantity but never buy cost or buy quantity, so the
//     average cost reflects every buy lot ever executed;
//   - a net short position has zero market value;
//   - dividend, deposit and withdrawal events do not touch any position.
func Fold(txs []model.Transaction, assets map[int64]model.Asset, latest map[int64]model.PriceSample) []model.Position {
	totals := make(map[int64]*lotTotals)
	order := make([]int64, 0)

	for _, tx := range txs {
		if tx.Side.IsCashFlow() {
			continue
		}
		acc, ok := totals[tx.AssetID]
		if !ok {
			acc = &lotTotals{}
			totals[tx.AssetID] = acc
			order = append(order, tx.AssetID)
		}
		qty := decimal.NewFromFloat(tx.Qty)
		switch tx.Side {
		case model.SideBuy:
			acc.buyQty = acc.buyQty.Add(qty)
			acc.buyCost = acc.buyCost.Add(qty.Mul(decimal.NewFromFloat(tx.Price))).Add(decimal.NewFromFloat(tx.Fee))
		case model.SideSell:
			acc.sellQty = acc.sellQty.Add(qty)
		}
	}

	out := make([]model.Position, 0, len(order))
	for _, id := range order {
		acc := totals[id]
		net := acc.buyQty.Sub(acc.sellQty)
		if net.Abs().LessThan(ZeroQtyEpsilon) {
			continue
		}

		avg := decimal.Zero
		if acc.buyQty.IsPositive() {
			avg = acc.buyCost.Div(acc.buyQty)
		}

		asset := assets[id]
		pos := model.Position{
			AssetID:  id,
			Symbol:   asset.Symbol,
			Type:     asset.Type,
			Currency: asset.Currency,
			NetQty:   net.InexactFloat64(),
			AvgCost:  avg.InexactFloat64(),
		}

		if sample, ok := latest[id]; ok {
			last := decimal.NewFromFloat(sample.Close)
			held := decimal.Max(net, decimal.Zero)
			pos.LastPrice = &sample.Close
			pos.MarketValue = last.Mul(held).InexactFloat64()
			pos.UnrealizedPL = net.Mul(last.Sub(avg)).InexactFloat64()
		}
		out = append(out, pos)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.AssetID < b.AssetID
	})
	return out
}

// Summarize totals a position snapshot for one user.
func Summarize(user string, positions []model.Position) model.Summary {
	total := decimal.Zero
	pl := decimal.Zero
	for _, p := range positions {
		total = total.Add(decimal.NewFromFloat(p.MarketValue))
		pl = pl.Add(decimal.NewFromFloat(p.UnrealizedPL))
	}

	allocs := make([]model.Allocation, 0, len(positions))
	for _, p := range positions {
		w := decimal.Zero
		if total.IsPositive() {
			w = decimal.NewFromFloat(p.MarketValue).Div(total)
		}
		allocs = append(allocs, model.Allocation{
			Symbol:      p.Symbol,
			MarketValue: p.MarketValue,
			Weight:      w.InexactFloat64(),
		})
	}

	return model.Summary{
		User:        user,
		TotalValue:  total.InexactFloat64(),
		TotalPL:     pl.InexactFloat64(),
		Allocations: allocs,
	}
}
