package services

import (
	"context"

	"library-web/internal/api"

	"github.com/rs/zerolog"
)

// Doer is the part of *api.Client the services need.
type Doer interface {
	Do(ctx context.Context, req api.Request, out any) error
}

// API groups the typed operations of the library API for one session.
type API struct {
	Auth   *AuthService
	Books  *BookService
	Orders *OrderService
	Admin  *AdminService
}

func NewAPI(client Doer, logger zerolog.Logger) *API {
	return &API{
		Auth:   NewAuthService(client, logger),
		Books:  NewBookService(client, logger),
		Orders: NewOrderService(client, logger),
		Admin:  NewAdminService(client, logger),
	}
}
