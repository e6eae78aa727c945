package repository

import (
	"context"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
)

type OrderFilter struct {
	Status domain.OrderStatus
	// Unrecorded keeps only orders without a point of sale reference.
	Unrecorded    bool
	CreatedBefore time.Time
	Limit         int
}

type OrderRepository interface {
	// WithOrderLock runs fn while holding the lock of order id. fn must use the
	// repo it is given; locking the same id again from inside fn deadlocks.
	WithOrderLock(ctx context.Context, id string, fn func(ctx context.Context, repo OrderRepository) error) error

	AddOrder(ctx context.Context, data domain.Order) (err error)
	GetOrderByID(ctx context.Context, id string) (data domain.Order, err error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, patch domain.OrderPatch) (data domain.Order, err error)
	GetOrders(ctx context.Context, filter OrderFilter) (data []domain.Order, err error)
}
