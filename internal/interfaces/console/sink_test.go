package console

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"folio/internal/domain/model"
)

func plainSink(buf *bytes.Buffer) *Sink {
	return &Sink{w: buf, render: func(md string) (string, error) { return md, nil }}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{2250, "USD", "$2,250.00"},
		{110.5, "usd", "$110.50"},
		{0.125, "USD", "$0.13"},
		{12.5, "ZZZ", "12.50 ZZZ"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.amount, tt.currency); got != tt.want {
			t.Errorf("formatMoney(%v, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestPositionsMarkdown(t *testing.T) {
	last := 150.0
	md := positionsMarkdown("you", []model.Position{
		{Symbol: "AAPL", Type: model.AssetStock, Currency: "USD", NetQty: 15, AvgCost: 110.5, LastPrice: &last, MarketValue: 2250, UnrealizedPL: 592.5},
		{Symbol: "VOO", Type: model.AssetETF, Currency: "USD", NetQty: 2, AvgCost: 400},
	})

	for _, want := range []string{
		"# Positions for you",
		"| AAPL | stock | 15 | $110.50 | $150.00 | $2,250.00 | $592.50 |",
		"| VOO | etf | 2 | $400.00 | - | $0.00 | $0.00 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected markdown to contain %q, got:\n%s", want, md)
		}
	}

	if md := positionsMarkdown("you", nil); !strings.Contains(md, "No open positions.") {
		t.Errorf("expected empty message, got:\n%s", md)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	md := summaryMarkdown(model.Summary{
		User:       "you",
		TotalValue: 400,
		TotalPL:    30,
		Allocations: []model.Allocation{
			{Symbol: "AAPL", MarketValue: 300, Weight: 0.75},
			{Symbol: "BTC", MarketValue: 100, Weight: 0.25},
		},
	})
	for _, want := range []string{"$400.00", "$30.00", "| AAPL | $300.00 | 75.00% |", "| BTC | $100.00 | 25.00% |"} {
		if !strings.Contains(md, want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, md)
		}
	}
}

func TestTransactionsMarkdownEscapesNote(t *testing.T) {
	note := "split | adjusted"
	md := transactionsMarkdown([]model.Transaction{{
		ID: 3, Symbol: "AAPL", Side: model.SideBuy, Qty: 1.5, Price: 100, Fee: 1,
		Timestamp: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), Note: &note,
	}})
	want := "| 3 | 2024-01-02T10:00:00Z | AAPL | buy | 1.5 | 100.00 | 1.00 | split \\| adjusted |"
	if !strings.Contains(md, want) {
		t.Errorf("expected row %q, got:\n%s", want, md)
	}
}

func TestSinkHumanFallsBackToRawMarkdown(t *testing.T) {
	var buf bytes.Buffer
	s := &Sink{w: &buf, render: func(string) (string, error) { return "", errors.New("no terminal") }}
	if err := s.Assets([]model.Asset{{ID: 1, Symbol: "AAPL", Type: model.AssetStock, Currency: "USD"}}); err != nil {
		t.Fatalf("Assets failed: %v", err)
	}
	if !strings.Contains(buf.String(), "| 1 | AAPL | stock | USD |  |") {
		t.Errorf("expected raw markdown, got:\n%s", buf.String())
	}
}

func TestSinkJSON(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, true)

	if err := s.Positions("you", nil); err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	var got struct {
		User      string            `json:"user"`
		Positions []json.RawMessage `json:"positions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got.User != "you" || got.Positions == nil || len(got.Positions) != 0 {
		t.Errorf("expected empty positions array, got %s", buf.String())
	}

	buf.Reset()
	if err := s.Positions("you", []model.Position{{Symbol: "VOO", NetQty: 1}}); err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"last_price": null`) {
		t.Errorf("expected null last_price, got %s", buf.String())
	}

	buf.Reset()
	if err := s.Created("asset", 42); err != nil {
		t.Fatalf("Created failed: %v", err)
	}
	var created map[string]any
	if err := json.Unmarshal(buf.Bytes(), &created); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if created["kind"] != "asset" || created["id"] != float64(42) {
		t.Errorf("unexpected created payload: %v", created)
	}
}

func TestSinkPlainLines(t *testing.T) {
	var buf bytes.Buffer
	s := plainSink(&buf)
	if err := s.Created("transaction", 7); err != nil {
		t.Fatal(err)
	}
	if err := s.Done("schema ready"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "created transaction 7\nschema ready\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
