package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenDB connects to the remote row-store. A postgres:// DSN selects the
// Postgres driver (the hosted store); anything else is treated as a sqlite
// file path, which keeps dev and tests self-contained.
func OpenDB(dsn string) (*sqlx.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if driver == "postgres" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	} else {
		// one writer; also keeps a :memory: database on a single connection
		db.SetMaxOpenConns(1)
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Cart rows, one per (user, product). The snapshot is the denormalized
-- product so historical cart contents survive upstream catalog changes.
CREATE TABLE IF NOT EXISTS cart(
  user_id          TEXT NOT NULL,
  product_id       TEXT NOT NULL,
  product_snapshot TEXT NOT NULL,
  quantity         INTEGER NOT NULL DEFAULT 1,
  created_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(user_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_cart_user ON cart(user_id);

-- Favorites rows, same key, plus the product-domain tag.
CREATE TABLE IF NOT EXISTS favorites(
  user_id          TEXT NOT NULL,
  product_id       TEXT NOT NULL,
  product_snapshot TEXT NOT NULL,
  domain           TEXT NOT NULL DEFAULT 'vehicle',
  created_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(user_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites(user_id);
`
	_, err := db.Exec(schema)
	return err
}
