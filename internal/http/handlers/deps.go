package handlers

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"shopchat/internal/chat"
	"shopchat/internal/config"
	"shopchat/internal/localstore"
	"shopchat/internal/repos"
	"shopchat/internal/services"
)

type Deps struct {
	ChatHandler      *ChatHandler
	CartHandler      *CartHandler
	FavoritesHandler *FavoritesHandler
	AuthHandler      *AuthHandler
}

func NewDeps(db *sqlx.DB, local *localstore.Store, cfg config.Config) *Deps {
	cartRepo := repos.NewCartRepo(db)
	favRepo := repos.NewFavoritesRepo(db)

	cartSvc := services.NewCartService(local, cartRepo)
	favSvc := services.NewFavoritesService(local, favRepo)

	return &Deps{
		ChatHandler:      &ChatHandler{Client: chat.NewClient(cfg.ChatAPIBaseURL), Sessions: chat.NewHistory()},
		CartHandler:      &CartHandler{Cart: cartSvc},
		FavoritesHandler: &FavoritesHandler{Favorites: favSvc},
		AuthHandler:      &AuthHandler{IdentityURL: cfg.IdentityURL, HTTPClient: &http.Client{}},
	}
}
