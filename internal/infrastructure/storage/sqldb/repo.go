// Package sqldb implements the ledger storage ports over database/sql.
// The sqlite and postgres packages supply the driver, pool sizing and Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"folio/internal/application/port"
	"folio/internal/domain/model"
)

// Dialect captures what differs between SQL backends.
type Dialect struct {
	Name string
	// Schema is executed as a single multi-statement Exec
	Schema string
	// Numbered placeholders ($1, $2 ...) instead of ?
	Numbered bool
	// IsUniqueViolation recognizes the driver's unique-constraint error
	IsUniqueViolation func(err error) bool
}

type Repo struct {
	db *sql.DB
	d  Dialect
}

func New(db *sql.DB, d Dialect) *Repo {
	return &Repo{db: db, d: d}
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) GetDB() *sql.DB {
	return r.db
}

func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.d.Schema); err != nil {
		return model.Persistence("migrate "+r.d.Name, err)
	}
	return nil
}

// rebind rewrites ? placeholders for dialects that number them.
func (r *Repo) rebind(q string) string {
	if !r.d.Numbered {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func (r *Repo) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if r.d.IsUniqueViolation != nil && r.d.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrDuplicate, err)
	}
	return model.Persistence(op, err)
}

// ========== Assets ==========

func (r *Repo) InsertAsset(ctx context.Context, a *model.Asset) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, r.rebind(`
		INSERT INTO assets(symbol, asset_type, currency, name)
		VALUES(?, ?, ?, ?)
		RETURNING id
	`), a.Symbol, string(a.Type), a.Currency, nullString(a.Name)).Scan(&id)
	if err != nil {
		return 0, r.wrap("insert asset", err)
	}
	a.ID = id
	return id, nil
}

func (r *Repo) GetAsset(ctx context.Context, id int64) (*model.Asset, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT id, symbol, asset_type, currency, name FROM assets WHERE id = ?
	`), id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: asset %d", model.ErrNotFound, id)
	}
	if err != nil {
		return nil, r.wrap("get asset", err)
	}
	return a, nil
}

func (r *Repo) FindAssetsBySymbol(ctx context.Context, symbol string) ([]model.Asset, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT id, symbol, asset_type, currency, name
		FROM assets
		WHERE symbol = ?
		ORDER BY asset_type
	`), symbol)
	if err != nil {
		return nil, r.wrap("find assets", err)
	}
	defer rows.Close()
	out, err := collectAssets(rows)
	return out, r.wrap("find assets", err)
}

func (r *Repo) ListAssets(ctx context.Context) ([]model.Asset, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, symbol, asset_type, currency, name
		FROM assets
		ORDER BY symbol, asset_type
	`)
	if err != nil {
		return nil, r.wrap("list assets", err)
	}
	defer rows.Close()
	out, err := collectAssets(rows)
	return out, r.wrap("list assets", err)
}

// ========== Transactions ==========

func (r *Repo) InsertTransaction(ctx context.Context, t *model.Transaction) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, r.rebind(`
		INSERT INTO transactions(user_name, asset_id, side, qty, price, fee, ts, note)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), t.User, t.AssetID, string(t.Side), t.Qty, t.Price, t.Fee,
		model.FormatTimestamp(t.Timestamp), nullString(t.Note)).Scan(&id)
	if err != nil {
		return 0, r.wrap("insert transaction", err)
	}
	t.ID = id
	return id, nil
}

const selectTransactions = `
		SELECT t.id, t.user_name, t.asset_id, a.symbol, t.side, t.qty, t.price, t.fee, t.ts, t.note
		FROM transactions t
		JOIN assets a ON a.id = t.asset_id
		WHERE t.user_name = ?`

func (r *Repo) ListTransactions(ctx context.Context, user string, limit int) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(selectTransactions+`
		ORDER BY t.ts DESC, t.id DESC
		LIMIT ?
	`), user, limit)
	if err != nil {
		return nil, r.wrap("list transactions", err)
	}
	defer rows.Close()
	out, err := collectTransactions(rows)
	return out, r.wrap("list transactions", err)
}

func (r *Repo) TransactionsForUser(ctx context.Context, user string) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(selectTransactions+`
		ORDER BY t.ts ASC, t.id ASC
	`), user)
	if err != nil {
		return nil, r.wrap("load transactions", err)
	}
	defer rows.Close()
	out, err := collectTransactions(rows)
	return out, r.wrap("load transactions", err)
}

// ========== Prices ==========

func (r *Repo) UpsertPrice(ctx context.Context, p *model.PriceSample) error {
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO prices(asset_id, date, close, source)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(asset_id, date) DO UPDATE SET
		close=excluded.close, source=excluded.source
	`), p.AssetID, p.Date, p.Close, p.Source)
	return r.wrap("upsert price", err)
}

func (r *Repo) LatestPrice(ctx context.Context, assetID int64) (*model.PriceSample, error) {
	var p model.PriceSample
	err := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT asset_id, date, close, source
		FROM prices
		WHERE asset_id = ?
		ORDER BY date DESC
		LIMIT 1
	`), assetID).Scan(&p.AssetID, &p.Date, &p.Close, &p.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.wrap("latest price", err)
	}
	return &p, nil
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanAsset(row scannable) (*model.Asset, error) {
	var a model.Asset
	var typ string
	var name sql.NullString
	if err := row.Scan(&a.ID, &a.Symbol, &typ, &a.Currency, &name); err != nil {
		return nil, err
	}
	a.Type = model.AssetType(typ)
	a.Name = stringPtr(name)
	return &a, nil
}

func collectAssets(rows *sql.Rows) ([]model.Asset, error) {
	out := make([]model.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func collectTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		var side, ts string
		var note sql.NullString
		if err := rows.Scan(&t.ID, &t.User, &t.AssetID, &t.Symbol, &side, &t.Qty, &t.Price, &t.Fee, &ts, &note); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(model.TimestampLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: bad ts %q: %w", t.ID, ts, err)
		}
		t.Side = model.Side(side)
		t.Timestamp = parsed
		t.Note = stringPtr(note)
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

var _ port.Repository = (*Repo)(nil)
