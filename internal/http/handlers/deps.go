package handlers

import (
	"beststore/internal/media"
	"beststore/internal/repos"
	"beststore/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	ProductHandler *ProductHandler
}

func NewDeps(db *sqlx.DB, images *media.Store) *Deps {
	prodRepo := repos.NewProductRepo(db)
	catalogSvc := services.NewCatalogService(prodRepo, images)

	return &Deps{
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
	}
}
