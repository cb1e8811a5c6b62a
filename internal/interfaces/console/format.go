package console

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"folio/internal/domain/model"
)

// formatMoney renders amount in currency units; unknown codes fall back to
// two decimals followed by the code.
func formatMoney(amount float64, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, currency)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func formatQty(q float64) string {
	return decimal.NewFromFloat(q).String()
}

func formatPercent(w float64) string {
	return decimal.NewFromFloat(w).Shift(2).StringFixed(2) + "%"
}

func lastPrice(p model.Position) string {
	if p.LastPrice == nil {
		return "-"
	}
	return formatMoney(*p.LastPrice, p.Currency)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return cell(*s)
}

// cell keeps user text from breaking the table layout.
func cell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}

func assetsMarkdown(assets []model.Asset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Assets\n\n")
	if len(assets) == 0 {
		fmt.Fprintln(&b, "No assets registered.")
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Symbol | Type | Currency | Name |")
	fmt.Fprintln(&b, "|---:|:---|:---|:---|:---|")
	for _, a := range assets {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", a.ID, a.Symbol, a.Type, a.Currency, deref(a.Name))
	}
	return b.String()
}

func transactionsMarkdown(txs []model.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprintln(&b, "No transactions.")
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Time | Symbol | Side | Qty | Price | Fee | Note |")
	fmt.Fprintln(&b, "|---:|:---|:---|:---|---:|---:|---:|:---|")
	for _, t := range txs {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s |\n",
			t.ID,
			model.FormatTimestamp(t.Timestamp),
			t.Symbol,
			t.Side,
			formatQty(t.Qty),
			decimal.NewFromFloat(t.Price).StringFixed(2),
			decimal.NewFromFloat(t.Fee).StringFixed(2),
			deref(t.Note),
		)
	}
	return b.String()
}

func positionsMarkdown(user string, positions []model.Position) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Positions for %s\n\n", cell(user))
	if len(positions) == 0 {
		fmt.Fprintln(&b, "No open positions.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Symbol | Type | Net Qty | Avg Cost | Last | Market Value | Unrealized P/L |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|")
	for _, p := range positions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			p.Symbol,
			p.Type,
			formatQty(p.NetQty),
			formatMoney(p.AvgCost, p.Currency),
			lastPrice(p),
			formatMoney(p.MarketValue, p.Currency),
			formatMoney(p.UnrealizedPL, p.Currency),
		)
	}
	return b.String()
}

// summaryMarkdown totals are shown in the default currency; the ledger does
// no FX conversion.
func summaryMarkdown(s model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Summary for %s\n\n", cell(s.User))
	fmt.Fprintf(&b, "- **Total value:** %s\n", formatMoney(s.TotalValue, model.DefaultCurrency))
	fmt.Fprintf(&b, "- **Unrealized P/L:** %s\n\n", formatMoney(s.TotalPL, model.DefaultCurrency))
	if len(s.Allocations) == 0 {
		return b.String()
	}
	fmt.Fprintln(&b, "| Symbol | Market Value | Weight |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, a := range s.Allocations {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", a.Symbol, formatMoney(a.MarketValue, model.DefaultCurrency), formatPercent(a.Weight))
	}
	return b.String()
}
