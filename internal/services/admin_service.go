package services

import (
	"context"
	"net/http"

	"library-web/internal/api"
	"library-web/internal/models"

	"github.com/rs/zerolog"
)

// AdminService reads the operational rosters. Both calls are read-only and
// return rows in the order the API sends them.
type AdminService struct {
	client Doer
	logger zerolog.Logger
}

func NewAdminService(client Doer, logger zerolog.Logger) *AdminService {
	return &AdminService{
		client: client,
		logger: logger,
	}
}

func (s *AdminService) ActiveOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/api/admin/orders"}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *AdminService) Reminders(ctx context.Context) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/api/admin/reminders"}, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}
