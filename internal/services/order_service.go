package services

import (
	"context"
	"net/http"

	"library-web/internal/api"
	"library-web/internal/models"

	"github.com/rs/zerolog"
)

type OrderService struct {
	client Doer
	logger zerolog.Logger
}

func NewOrderService(client Doer, logger zerolog.Logger) *OrderService {
	return &OrderService{
		client: client,
		logger: logger,
	}
}

func (s *OrderService) Place(ctx context.Context, bookID string, orderType models.OrderType) (*models.Order, error) {
	var order models.Order
	req := api.Request{
		Method: http.MethodPost,
		Path:   "/api/orders",
		Body:   models.CreateOrderRequest{BookID: bookID, Type: orderType},
	}
	if err := s.client.Do(ctx, req, &order); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("order_id", order.ID).
		Str("book_id", bookID).
		Str("type", string(orderType)).
		Msg("Order placed")
	return &order, nil
}

func (s *OrderService) Mine(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/api/orders/my"}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
