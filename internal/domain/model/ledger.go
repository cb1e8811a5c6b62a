package model

import (
	"math"
	"strings"
	"time"
)

// ========== Enumerations ==========

// AssetType is the closed set of instrument kinds.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetETF    AssetType = "etf"
	AssetCrypto AssetType = "crypto"
)

// AssetTypes lists every valid asset type in declaration order.
var AssetTypes = []AssetType{AssetStock, AssetETF, AssetCrypto}

// ParseAssetType validates s once at the boundary (case-insensitive).
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(strings.ToLower(strings.TrimSpace(s)))
	names := make([]string, 0, len(AssetTypes))
	for _, known := range AssetTypes {
		if t == known {
			return t, nil
		}
		names = append(names, known.String())
	}
	return "", Invalid("asset_type", "%q is not one of %s", s, strings.Join(names, ", "))
}

func (t AssetType) String() string { return string(t) }

// Side is the closed set of ledger event kinds. Direction lives here, never in the sign of qty.
type Side string

const (
	SideBuy        Side = "buy"
	SideSell       Side = "sell"
	SideDividend   Side = "dividend"
	SideDeposit    Side = "deposit"
	SideWithdrawal Side = "withdrawal"
)

// ParseSide validates s once at the boundary (case-insensitive).
func ParseSide(s string) (Side, error) {
	switch side := Side(strings.ToLower(strings.TrimSpace(s))); side {
	case SideBuy, SideSell, SideDividend, SideDeposit, SideWithdrawal:
		return side, nil
	}
	return "", Invalid("side", "%q is not one of buy, sell, dividend, deposit, withdrawal", s)
}

func (s Side) String() string { return string(s) }

// IsCashFlow reports whether the event sits outside the position model.
func (s Side) IsCashFlow() bool {
	return s == SideDividend || s == SideDeposit || s == SideWithdrawal
}

// ========== Entities ==========

// DefaultCurrency applies when an asset is registered without one.
const DefaultCurrency = "USD"

// Asset is a registered tradable instrument. Immutable after creation.
type Asset struct {
	ID       int64     `json:"id"`
	Symbol   string    `json:"symbol"`
	Type     AssetType `json:"asset_type"`
	Currency string    `json:"currency"`
	Name     *string   `json:"name,omitempty"`
}

// NormalizeSymbol is the canonical form used for both registration and lookup.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Transaction is one immutable ledger event.
type Transaction struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	AssetID   int64     `json:"asset_id"`
	Symbol    string    `json:"symbol,omitempty"` // joined from assets for listings
	Side      Side      `json:"side"`
	Qty       float64   `json:"qty"`
	Price     float64   `json:"price"`
	Fee       float64   `json:"fee"`
	Timestamp time.Time `json:"ts"`
	Note      *string   `json:"note,omitempty"`
}

// Validate checks the numeric invariants of a ledger event.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.User) == "" {
		return Invalid("user", "must not be empty")
	}
	if !finite(t.Qty) || t.Qty <= 0 {
		return Invalid("qty", "must be > 0, got %v", t.Qty)
	}
	if !finite(t.Price) || t.Price < 0 {
		return Invalid("price", "must be >= 0, got %v", t.Price)
	}
	if !finite(t.Fee) || t.Fee < 0 {
		return Invalid("fee", "must be >= 0, got %v", t.Fee)
	}
	if t.Timestamp.IsZero() {
		return Invalid("ts", "must be set")
	}
	return nil
}

// TimestampLayout is the fixed-width UTC form persisted for transactions.
const TimestampLayout = "2006-01-02T15:04:05Z"

// ParseTimestamp accepts RFC 3339 or a bare YYYY-MM-DD date and returns UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC().Truncate(time.Second), nil
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d.UTC(), nil
	}
	return time.Time{}, Invalid("ts", "%q is neither RFC 3339 nor YYYY-MM-DD", s)
}

// FormatTimestamp renders ts in TimestampLayout.
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(TimestampLayout)
}

// DateLayout is the fixed-width ISO-8601 date used by price samples.
const DateLayout = "2006-01-02"

// PriceSample is one daily close for an asset; (AssetID, Date) is the key.
type PriceSample struct {
	AssetID int64   `json:"asset_id"`
	Date    string  `json:"date"` // YYYY-MM-DD, compared lexicographically
	Close   float64 `json:"close"`
	Source  string  `json:"source"`
}

// DefaultPriceSource tags samples entered by hand.
const DefaultPriceSource = "manual"

// Validate checks the date width and close price.
func (p *PriceSample) Validate() error {
	if _, err := time.Parse(DateLayout, p.Date); err != nil || len(p.Date) != len(DateLayout) {
		return Invalid("date", "%q is not YYYY-MM-DD", p.Date)
	}
	if !finite(p.Close) || p.Close < 0 {
		return Invalid("close", "must be >= 0, got %v", p.Close)
	}
	if strings.TrimSpace(p.Source) == "" {
		return Invalid("source", "must not be empty")
	}
	return nil
}

// ========== Derived views ==========

// Position is a derived holding snapshot; it is never persisted.
type Position struct {
	AssetID      int64     `json:"asset_id"`
	Symbol       string    `json:"symbol"`
	Type         AssetType `json:"asset_type"`
	Currency     string    `json:"currency"`
	NetQty       float64   `json:"net_qty"`
	AvgCost      float64   `json:"avg_cost"`
	LastPrice    *float64  `json:"last_price"` // nil when no sample exists
	MarketValue  float64   `json:"market_value"`
	UnrealizedPL float64   `json:"unrealized_pl"`
}

// Allocation is one position's share of the total market value.
type Allocation struct {
	Symbol      string  `json:"symbol"`
	MarketValue float64 `json:"market_value"`
	Weight      float64 `json:"weight"`
}

// Summary aggregates a position snapshot.
type Summary struct {
	User        string       `json:"user"`
	TotalValue  float64      `json:"total_value"`
	TotalPL     float64      `json:"total_pl"`
	Allocations []Allocation `json:"allocations"`
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
