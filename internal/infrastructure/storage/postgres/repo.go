package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"folio/internal/application/port"
	"folio/internal/infrastructure/storage/sqldb"
)

const schema = `
CREATE TABLE IF NOT EXISTS assets (
  id BIGSERIAL PRIMARY KEY,
  symbol TEXT NOT NULL,
  asset_type TEXT NOT NULL CHECK(asset_type IN ('stock', 'etf', 'crypto')),
  currency TEXT NOT NULL DEFAULT 'USD',
  name TEXT,
  UNIQUE(symbol, asset_type)
);
CREATE INDEX IF NOT EXISTS idx_assets_symbol ON assets(symbol);

CREATE TABLE IF NOT EXISTS transactions (
  id BIGSERIAL PRIMARY KEY,
  user_name TEXT NOT NULL,
  asset_id BIGINT NOT NULL REFERENCES assets(id) ON DELETE RESTRICT,
  side TEXT NOT NULL CHECK(side IN ('buy', 'sell', 'dividend', 'deposit', 'withdrawal')),
  qty DOUBLE PRECISION NOT NULL CHECK(qty > 0),
  price DOUBLE PRECISION NOT NULL CHECK(price >= 0),
  fee DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(fee >= 0),
  ts TEXT NOT NULL,
  note TEXT
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_ts ON transactions(user_name, ts);

CREATE TABLE IF NOT EXISTS prices (
  asset_id BIGINT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
  date TEXT NOT NULL,
  close DOUBLE PRECISION NOT NULL,
  source TEXT NOT NULL,
  PRIMARY KEY(asset_id, date)
);
`

// Dialect is the Postgres flavour of the ledger schema.
var Dialect = sqldb.Dialect{
	Name:              "postgres",
	Schema:            schema,
	Numbered:          true,
	IsUniqueViolation: isUniqueViolation,
}

// MaxOpenConns bounds the session pool shared by all operations.
const MaxOpenConns = 5

type Repo struct {
	*sqldb.Repo
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(30 * time.Second)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	r := &Repo{Repo: sqldb.New(db, Dialect)}
	if err := r.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ port.Repository = (*Repo)(nil)
