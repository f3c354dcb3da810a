package orders

import (
	"context"
	"fmt"

	"qr-admin-service/internal/models"
)

type DBLayer interface {
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderWithTickets(ctx context.Context, id string) (*models.OrderWithTickets, error)
	ListOrders(ctx context.Context, limit, offset int) ([]models.Order, error)
	CountOrders(ctx context.Context) (int, error)
}

type OrderService struct {
	DB DBLayer
}

func NewOrderService(db DBLayer) *OrderService {
	return &OrderService{DB: db}
}

// OrderPage is one page of the admin order table.
type OrderPage struct {
	Orders []models.Order `json:"orders"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order %s not found: %w", id, err)
	}
	return order, nil
}

func (s *OrderService) GetOrderWithTickets(ctx context.Context, id string) (*models.OrderWithTickets, error) {
	result, err := s.DB.GetOrderWithTickets(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order %s not found: %w", id, err)
	}
	return result, nil
}

func (s *OrderService) ListOrders(ctx context.Context, limit, offset int) (*OrderPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.DB.ListOrders(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	total, err := s.DB.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	if orders == nil {
		orders = []models.Order{}
	}

	return &OrderPage{
		Orders: orders,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}
