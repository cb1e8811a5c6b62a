package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"folio/internal/application/port"
	"folio/internal/infrastructure/storage/sqldb"
)

const schema = `
CREATE TABLE IF NOT EXISTS assets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL,
  asset_type TEXT NOT NULL CHECK(asset_type IN ('stock', 'etf', 'crypto')),
  currency TEXT NOT NULL DEFAULT 'USD',
  name TEXT,
  UNIQUE(symbol, asset_type)
);
CREATE INDEX IF NOT EXISTS idx_assets_symbol ON assets(symbol);

CREATE TABLE IF NOT EXISTS transactions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_name TEXT NOT NULL,
  asset_id INTEGER NOT NULL REFERENCES assets(id) ON DELETE RESTRICT,
  side TEXT NOT NULL CHECK(side IN ('buy', 'sell', 'dividend', 'deposit', 'withdrawal')),
  qty REAL NOT NULL CHECK(qty > 0),
  price REAL NOT NULL CHECK(price >= 0),
  fee REAL NOT NULL DEFAULT 0 CHECK(fee >= 0),
  ts TEXT NOT NULL,
  note TEXT
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_ts ON transactions(user_name, ts);

CREATE TABLE IF NOT EXISTS prices (
  asset_id INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
  date TEXT NOT NULL,
  close REAL NOT NULL,
  source TEXT NOT NULL,
  PRIMARY KEY(asset_id, date)
);
`

// Dialect is the SQLite flavour of the ledger schema.
var Dialect = sqldb.Dialect{
	Name:              "sqlite",
	Schema:            schema,
	IsUniqueViolation: isUniqueViolation,
}

type Repo struct {
	*sqldb.Repo
}

// New opens (creating if needed) the database at path and provisions the schema.
// path may carry a sqlite: or sqlite:// prefix.
func New(path string) (*Repo, error) {
	dsn := DSN(path)
	// ensure directory exists
	if file := strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:"); file != ":memory:" {
		if dir := filepath.Dir(file); dir != "." && dir != "" {
			_ = os.MkdirAll(dir, 0o755)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer at a time; the driver would serialize anyway
	db.SetMaxOpenConns(1)

	r := &Repo{Repo: sqldb.New(db, Dialect)}
	if err := r.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// DSN strips URL-ish prefixes and turns on foreign keys for every connection.
func DSN(path string) string {
	p := strings.TrimPrefix(strings.TrimPrefix(path, "sqlite://"), "sqlite:")
	sep := "?"
	if strings.Contains(p, "?") {
		sep = "&"
	}
	return p + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// primary code only when extended result codes are off
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}

var _ port.Repository = (*Repo)(nil)
