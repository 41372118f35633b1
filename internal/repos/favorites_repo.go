package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type FavoritesRepo struct{ db *sqlx.DB }

func NewFavoritesRepo(db *sqlx.DB) *FavoritesRepo { return &FavoritesRepo{db: db} }

type FavoriteRow struct {
	ProductSnapshot []byte `db:"product_snapshot"`
	Domain          string `db:"domain"`
}

// Load returns the user's favorites, newest first.
func (r *FavoritesRepo) Load(userID string) ([]FavoriteRow, error) {
	rows := []FavoriteRow{}
	err := r.db.Select(&rows, r.db.Rebind(`
	  SELECT product_snapshot, domain
	  FROM favorites
	  WHERE user_id = ?
	  ORDER BY created_at DESC
	`), userID)
	return rows, err
}

func (r *FavoritesRepo) Upsert(userID, productID string, snapshot []byte, domain string) error {
	_, err := r.db.Exec(r.db.Rebind(`
	  INSERT INTO favorites(user_id, product_id, product_snapshot, domain)
	  VALUES(?, ?, ?, ?)
	  ON CONFLICT(user_id, product_id) DO UPDATE
	  SET product_snapshot = excluded.product_snapshot, domain = excluded.domain
	`), userID, productID, snapshot, domain)
	return err
}

func (r *FavoritesRepo) Remove(userID, productID string) error {
	_, err := r.db.Exec(r.db.Rebind(`
	  DELETE FROM favorites WHERE user_id = ? AND product_id = ?
	`), userID, productID)
	return err
}

func (r *FavoritesRepo) Has(userID, productID string) (bool, error) {
	var one int
	err := r.db.Get(&one, r.db.Rebind(`
	  SELECT 1 FROM favorites WHERE user_id = ? AND product_id = ?
	`), userID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
