package services

import (
	"encoding/json"
	"fmt"

	"shopchat/internal/localstore"
	applog "shopchat/internal/log"
	"shopchat/internal/product"
	"shopchat/internal/repos"
)

const favoritesKey = "favorites"

// FavoritesService mirrors CartService without quantities: a product is
// either saved or not, keyed by product.ID, in the guest document or the
// remote row-store depending on userID.
type FavoritesService struct {
	Local *localstore.Store
	Repo  *repos.FavoritesRepo
}

func NewFavoritesService(local *localstore.Store, repo *repos.FavoritesRepo) *FavoritesService {
	return &FavoritesService{Local: local, Repo: repo}
}

func (s *FavoritesService) Load(sessionID, userID string) []product.Product {
	if userID == "" {
		return s.loadLocal(sessionID)
	}
	rows, err := s.Repo.Load(userID)
	if err != nil {
		applog.Error(nil, "favorites.load.fail", err, map[string]any{"user": userID})
		return []product.Product{}
	}
	items := make([]product.Product, 0, len(rows))
	for _, row := range rows {
		var p product.Product
		if err := json.Unmarshal(row.ProductSnapshot, &p); err != nil {
			applog.Error(nil, "favorites.snapshot.decode.fail", err, nil)
			continue
		}
		items = append(items, p)
	}
	return items
}

func (s *FavoritesService) Add(sessionID, userID string, p product.Product) error {
	if userID != "" {
		return s.upsertRemote(userID, p)
	}
	items := s.loadLocal(sessionID)
	for _, it := range items {
		if it.ID == p.ID {
			return nil
		}
	}
	return s.saveLocal(sessionID, append(items, p))
}

func (s *FavoritesService) Remove(sessionID, userID, productID string) error {
	if userID != "" {
		return s.Repo.Remove(userID, productID)
	}
	items := s.loadLocal(sessionID)
	kept := items[:0]
	for _, it := range items {
		if it.ID != productID {
			kept = append(kept, it)
		}
	}
	return s.saveLocal(sessionID, kept)
}

// Has reports whether the product is saved, scoped by the same store
// selection rule as Load. Remote lookup failures read as "not saved".
func (s *FavoritesService) Has(sessionID, userID, productID string) bool {
	if userID != "" {
		ok, err := s.Repo.Has(userID, productID)
		if err != nil {
			applog.Error(nil, "favorites.has.fail", err, map[string]any{"product": productID})
			return false
		}
		return ok
	}
	for _, it := range s.loadLocal(sessionID) {
		if it.ID == productID {
			return true
		}
	}
	return false
}

// MigrateLocalToRemote moves guest favorites into the user's rows on login,
// upserting before the guest document is cleared.
func (s *FavoritesService) MigrateLocalToRemote(sessionID, userID string) []product.Product {
	local := s.loadLocal(sessionID)
	if len(local) > 0 {
		migrated := true
		for _, p := range local {
			if err := s.upsertRemote(userID, p); err != nil {
				applog.Error(nil, "favorites.migrate.fail", err, map[string]any{"product": p.ID})
				migrated = false
				break
			}
		}
		if migrated {
			if err := s.Local.Remove(sessionID, favoritesKey); err != nil {
				applog.Error(nil, "favorites.migrate.clear.fail", err, nil)
			}
		}
	}
	return s.Load(sessionID, userID)
}

func (s *FavoritesService) upsertRemote(userID string, p product.Product) error {
	snap, err := json.Marshal(product.Snapshot(p))
	if err != nil {
		return fmt.Errorf("favorites add: %w", err)
	}
	return s.Repo.Upsert(userID, p.ID, snap, domainTag(p))
}

// domainTag labels the row with the product's type; untagged legacy records
// are vehicles.
func domainTag(p product.Product) string {
	if p.ProductType != "" {
		return string(p.ProductType)
	}
	return "vehicle"
}

func (s *FavoritesService) loadLocal(sessionID string) []product.Product {
	raw := s.Local.Get(sessionID, favoritesKey)
	if raw == nil {
		return []product.Product{}
	}
	var items []product.Product
	if err := json.Unmarshal(raw, &items); err != nil {
		return []product.Product{}
	}
	return items
}

func (s *FavoritesService) saveLocal(sessionID string, items []product.Product) error {
	return s.Local.Set(sessionID, favoritesKey, items)
}
