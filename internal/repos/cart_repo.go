package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartRow struct {
	ProductSnapshot []byte `db:"product_snapshot"`
	Quantity        int    `db:"quantity"`
}

// Load returns the user's cart rows, newest first.
func (r *CartRepo) Load(userID string) ([]CartRow, error) {
	rows := []CartRow{}
	err := r.db.Select(&rows, r.db.Rebind(`
	  SELECT product_snapshot, quantity
	  FROM cart
	  WHERE user_id = ?
	  ORDER BY created_at DESC
	`), userID)
	return rows, err
}

// Quantity returns the stored quantity for one row, with ok=false when the
// row does not exist.
func (r *CartRepo) Quantity(userID, productID string) (int, bool, error) {
	var qty int
	err := r.db.Get(&qty, r.db.Rebind(`
	  SELECT quantity FROM cart WHERE user_id = ? AND product_id = ?
	`), userID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return qty, true, nil
}

// Upsert writes the full row snapshot, updating in place on conflict so at
// most one row exists per (user, product).
func (r *CartRepo) Upsert(userID, productID string, snapshot []byte, quantity int) error {
	_, err := r.db.Exec(r.db.Rebind(`
	  INSERT INTO cart(user_id, product_id, product_snapshot, quantity)
	  VALUES(?, ?, ?, ?)
	  ON CONFLICT(user_id, product_id) DO UPDATE
	  SET product_snapshot = excluded.product_snapshot, quantity = excluded.quantity
	`), userID, productID, snapshot, quantity)
	return err
}

func (r *CartRepo) SetQuantity(userID, productID string, quantity int) error {
	_, err := r.db.Exec(r.db.Rebind(`
	  UPDATE cart SET quantity = ? WHERE user_id = ? AND product_id = ?
	`), quantity, userID, productID)
	return err
}

func (r *CartRepo) Remove(userID, productID string) error {
	_, err := r.db.Exec(r.db.Rebind(`
	  DELETE FROM cart WHERE user_id = ? AND product_id = ?
	`), userID, productID)
	return err
}
