package services

import (
	"encoding/json"
	"fmt"

	"shopchat/internal/localstore"
	applog "shopchat/internal/log"
	"shopchat/internal/product"
	"shopchat/internal/repos"
)

const cartKey = "cart"

type CartItem struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// CartService keeps the cart in one of two stores: the guest session
// document when userID is empty, the remote row-store otherwise. Identity is
// product.ID in both.
type CartService struct {
	Local *localstore.Store
	Repo  *repos.CartRepo
}

func NewCartService(local *localstore.Store, repo *repos.CartRepo) *CartService {
	return &CartService{Local: local, Repo: repo}
}

// Load never fails: a broken guest document or unreachable row-store reads
// as an empty cart.
func (s *CartService) Load(sessionID, userID string) []CartItem {
	if userID == "" {
		return s.loadLocal(sessionID)
	}
	rows, err := s.Repo.Load(userID)
	if err != nil {
		applog.Error(nil, "cart.load.fail", err, map[string]any{"user": userID})
		return []CartItem{}
	}
	items := make([]CartItem, 0, len(rows))
	for _, row := range rows {
		var p product.Product
		if err := json.Unmarshal(row.ProductSnapshot, &p); err != nil {
			applog.Error(nil, "cart.snapshot.decode.fail", err, nil)
			continue
		}
		qty := row.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, CartItem{Product: p, Quantity: qty})
	}
	return items
}

func (s *CartService) Add(sessionID, userID string, p product.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if userID != "" {
		existing, _, err := s.Repo.Quantity(userID, p.ID)
		if err != nil {
			return fmt.Errorf("cart add: %w", err)
		}
		snap, err := json.Marshal(product.Snapshot(p))
		if err != nil {
			return fmt.Errorf("cart add: %w", err)
		}
		return s.Repo.Upsert(userID, p.ID, snap, existing+quantity)
	}

	items := s.loadLocal(sessionID)
	for i := range items {
		if items[i].Product.ID == p.ID {
			items[i].Quantity += quantity
			return s.saveLocal(sessionID, items)
		}
	}
	items = append(items, CartItem{Product: p, Quantity: quantity})
	return s.saveLocal(sessionID, items)
}

func (s *CartService) Remove(sessionID, userID, productID string) error {
	if userID != "" {
		return s.Repo.Remove(userID, productID)
	}
	items := s.loadLocal(sessionID)
	kept := items[:0]
	for _, it := range items {
		if it.Product.ID != productID {
			kept = append(kept, it)
		}
	}
	return s.saveLocal(sessionID, kept)
}

// SetQuantity updates a line; zero or negative removes it. A guest line that
// does not exist is left alone.
func (s *CartService) SetQuantity(sessionID, userID, productID string, quantity int) error {
	if userID != "" {
		if quantity <= 0 {
			return s.Repo.Remove(userID, productID)
		}
		return s.Repo.SetQuantity(userID, productID, quantity)
	}
	items := s.loadLocal(sessionID)
	for i := range items {
		if items[i].Product.ID != productID {
			continue
		}
		if quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
		} else {
			items[i].Quantity = quantity
		}
		return s.saveLocal(sessionID, items)
	}
	return nil
}

// MigrateLocalToRemote moves the guest cart into the user's rows on login.
// Every local line is upserted first and the guest document cleared only
// after all of them land, so an interrupted migration loses nothing. Local
// quantities overwrite on top of whatever the remote rows held.
func (s *CartService) MigrateLocalToRemote(sessionID, userID string) []CartItem {
	local := s.loadLocal(sessionID)
	if len(local) > 0 {
		migrated := true
		for _, it := range local {
			if err := s.Add(sessionID, userID, it.Product, it.Quantity); err != nil {
				applog.Error(nil, "cart.migrate.fail", err, map[string]any{"product": it.Product.ID})
				migrated = false
				break
			}
		}
		if migrated {
			if err := s.Local.Remove(sessionID, cartKey); err != nil {
				applog.Error(nil, "cart.migrate.clear.fail", err, nil)
			}
		}
	}
	return s.Load(sessionID, userID)
}

func (s *CartService) loadLocal(sessionID string) []CartItem {
	raw := s.Local.Get(sessionID, cartKey)
	if raw == nil {
		return []CartItem{}
	}
	var items []CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return []CartItem{}
	}
	for i := range items {
		if items[i].Quantity < 1 {
			items[i].Quantity = 1
		}
	}
	return items
}

func (s *CartService) saveLocal(sessionID string, items []CartItem) error {
	return s.Local.Set(sessionID, cartKey, items)
}
